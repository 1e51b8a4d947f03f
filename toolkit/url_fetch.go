package toolkit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// URLFetchArgs is url_fetch's argument shape.
type URLFetchArgs struct {
	URL string `json:"url" jsonschema:"required,description=The URL to fetch"`
}

// URLFetchTool retrieves a web page's body text, used by company_research
// and similar tools that need to look at a specific URL. Tool HTTP calls use
// a default 10-second timeout, per spec.md §5.
type URLFetchTool struct {
	Client *http.Client
}

// NewURLFetchTool builds a URLFetchTool with the spec-mandated default
// timeout.
func NewURLFetchTool() *URLFetchTool {
	return &URLFetchTool{Client: &http.Client{Timeout: 10 * time.Second}}
}

func (t *URLFetchTool) Info() Info {
	return Info{
		Name:        "url_fetch",
		Description: "Fetch the text content of a URL.",
		Parameters:  SchemaFor(URLFetchArgs{}),
	}
}

func (t *URLFetchTool) Execute(ctx context.Context, args map[string]interface{}) (Result, error) {
	url, _ := args["url"].(string)
	if url == "" {
		return Fail("url is required"), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Fail(fmt.Sprintf("invalid url: %v", err)), nil
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return Fail(fmt.Sprintf("fetch failed: %v", err)), nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Fail(fmt.Sprintf("read failed: %v", err)), nil
	}
	if resp.StatusCode >= 400 {
		return Fail(fmt.Sprintf("http %d", resp.StatusCode)), nil
	}

	return Ok(map[string]interface{}{"content": string(body), "status_code": resp.StatusCode}), nil
}
