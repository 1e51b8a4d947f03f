package toolkit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// CompanyResearchArgs is company_research's argument shape.
type CompanyResearchArgs struct {
	Company string `json:"company" jsonschema:"required,description=Company name"`
	URL     string `json:"url,omitempty" jsonschema:"description=Optional company page URL to fetch directly"`
}

// CompanyResearchTool fetches a company's public page, when given one, and
// hands the raw text back for the calling agent to summarize; it reuses
// URLFetchTool's HTTP plumbing rather than duplicating it.
type CompanyResearchTool struct {
	Fetcher *URLFetchTool
}

func NewCompanyResearchTool() *CompanyResearchTool {
	return &CompanyResearchTool{Fetcher: NewURLFetchTool()}
}

func (t *CompanyResearchTool) Info() Info {
	return Info{Name: "company_research", Description: "Gather public information about a company.", Parameters: SchemaFor(CompanyResearchArgs{})}
}

func (t *CompanyResearchTool) Execute(ctx context.Context, args map[string]interface{}) (Result, error) {
	company, _ := args["company"].(string)
	if company == "" {
		return Fail("company is required"), nil
	}
	url, _ := args["url"].(string)
	if url == "" {
		return Ok(map[string]interface{}{"company": company, "content": ""}), nil
	}
	res, err := t.Fetcher.Execute(ctx, map[string]interface{}{"url": url})
	if err != nil {
		return Fail(fmt.Sprintf("fetch failed: %v", err)), nil
	}
	if !res.Succeeded() {
		return res, nil
	}
	return Ok(map[string]interface{}{"company": company, "content": res["content"]}), nil
}

// GitHubProfileArgs is github_profile_analyze's argument shape.
type GitHubProfileArgs struct {
	Username string `json:"username" jsonschema:"required,description=GitHub username"`
}

// GitHubProfileTool summarizes a public GitHub profile via the public REST
// API (no auth token required for public read endpoints).
type GitHubProfileTool struct {
	Client *http.Client
}

func NewGitHubProfileTool() *GitHubProfileTool {
	return &GitHubProfileTool{Client: &http.Client{Timeout: 10 * time.Second}}
}

type githubUser struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	Bio         string `json:"bio"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
}

func (t *GitHubProfileTool) Info() Info {
	return Info{Name: "github_profile_analyze", Description: "Summarize a public GitHub profile.", Parameters: SchemaFor(GitHubProfileArgs{})}
}

func (t *GitHubProfileTool) Execute(ctx context.Context, args map[string]interface{}) (Result, error) {
	username, _ := args["username"].(string)
	if username == "" {
		return Fail("username is required"), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.github.com/users/"+username, nil)
	if err != nil {
		return Fail(fmt.Sprintf("invalid request: %v", err)), nil
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return Fail(fmt.Sprintf("fetch failed: %v", err)), nil
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return Fail(fmt.Sprintf("github api returned %d", resp.StatusCode)), nil
	}

	var u githubUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return Fail(fmt.Sprintf("decode failed: %v", err)), nil
	}

	return Ok(map[string]interface{}{
		"login":        u.Login,
		"name":         u.Name,
		"bio":          u.Bio,
		"public_repos": u.PublicRepos,
		"followers":    u.Followers,
	}), nil
}

// SalaryResearchArgs is salary_research's argument shape.
type SalaryResearchArgs struct {
	Role     string `json:"role" jsonschema:"required,description=Role title"`
	Location string `json:"location,omitempty" jsonschema:"description=Optional location to narrow the estimate"`
}

// SalaryResearchTool queries a configured salary-data endpoint. As with
// job_search, the endpoint is an external collaborator (spec.md §6 names
// this tool by shape only); this tool fixes the request/response contract.
type SalaryResearchTool struct {
	Client   *http.Client
	Endpoint string
}

func NewSalaryResearchTool(endpoint string) *SalaryResearchTool {
	return &SalaryResearchTool{Client: &http.Client{Timeout: 10 * time.Second}, Endpoint: endpoint}
}

type salaryResult struct {
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	Median   int    `json:"median"`
	Currency string `json:"currency"`
}

func (t *SalaryResearchTool) Info() Info {
	return Info{Name: "salary_research", Description: "Look up typical compensation for a role and location.", Parameters: SchemaFor(SalaryResearchArgs{})}
}

func (t *SalaryResearchTool) Execute(ctx context.Context, args map[string]interface{}) (Result, error) {
	role, _ := args["role"].(string)
	if role == "" {
		return Fail("role is required"), nil
	}
	location, _ := args["location"].(string)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.Endpoint, nil)
	if err != nil {
		return Fail(fmt.Sprintf("invalid request: %v", err)), nil
	}
	q := req.URL.Query()
	q.Set("role", role)
	if location != "" {
		q.Set("location", location)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := t.Client.Do(req)
	if err != nil {
		return Fail(fmt.Sprintf("lookup failed: %v", err)), nil
	}
	defer resp.Body.Close()

	var res salaryResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return Fail(fmt.Sprintf("decode failed: %v", err)), nil
	}

	return Ok(map[string]interface{}{
		"role": role, "location": location,
		"min": res.Min, "max": res.Max, "median": res.Median, "currency": res.Currency,
	}), nil
}
