package toolkit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// JobSearchArgs is job_search's argument shape.
type JobSearchArgs struct {
	Query    string `json:"query" jsonschema:"required,description=Search terms, e.g. role and skills"`
	Location string `json:"location,omitempty" jsonschema:"description=Optional location filter"`
	Remote   bool   `json:"remote,omitempty" jsonschema:"description=Restrict to remote postings"`
}

// JobSearchTool queries a configured job board search endpoint. The endpoint
// itself is an external collaborator (spec.md §1 places individual domain
// tools' implementations out of scope, shape only); this tool only fixes
// the request/response contract and the scout agent's calling convention.
type JobSearchTool struct {
	Client   *http.Client
	Endpoint string // e.g. "https://jobs.example.com/api/search"
}

func NewJobSearchTool(endpoint string) *JobSearchTool {
	return &JobSearchTool{Client: &http.Client{Timeout: 10 * time.Second}, Endpoint: endpoint}
}

func (t *JobSearchTool) Info() Info {
	return Info{
		Name:        "job_search",
		Description: "Search job postings by query, optional location, and remote-only filter.",
		Parameters:  SchemaFor(JobSearchArgs{}),
	}
}

type jobSearchResult struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	URL      string `json:"url"`
}

func (t *JobSearchTool) Execute(ctx context.Context, args map[string]interface{}) (Result, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return Fail("query is required"), nil
	}
	location, _ := args["location"].(string)
	remote, _ := args["remote"].(bool)

	q := url.Values{}
	q.Set("q", query)
	if location != "" {
		q.Set("location", location)
	}
	if remote {
		q.Set("remote", "true")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return Fail(fmt.Sprintf("invalid request: %v", err)), nil
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return Fail(fmt.Sprintf("search failed: %v", err)), nil
	}
	defer resp.Body.Close()

	var results []jobSearchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Fail(fmt.Sprintf("decode failed: %v", err)), nil
	}

	jobs := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		jobs = append(jobs, map[string]interface{}{
			"title": r.Title, "company": r.Company, "location": r.Location, "url": r.URL,
		})
	}
	return Ok(map[string]interface{}{"jobs": jobs, "count": len(jobs)}), nil
}
