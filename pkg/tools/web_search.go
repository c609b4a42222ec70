// WebSearchTool implementation. Queries the DuckDuckGo HTML endpoint and
// scrapes result anchors; no API key required.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/openai/openai-go"
	"github.com/pkg/errors"
)

const (
	searchEndpoint   = "https://html.duckduckgo.com/html/"
	maxSearchResults = 5
	maxSearchBody    = 200 * 1024
)

// WebSearchTool performs a web search via DuckDuckGo.
type WebSearchTool struct {
	tc Context
}

// SearchResult is a single web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

func (t *WebSearchTool) Name() string { return "web_search" }

func (t *WebSearchTool) Definition() openai.ChatCompletionToolParam {
	return openai.ChatCompletionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name:        "web_search",
			Description: openai.String("Search the web for information."),
			Parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "The search query.",
					},
				},
				"required": []string{"query"},
			},
		},
	}
}

func (t *WebSearchTool) Execute(ctx context.Context, argText string) (string, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(argText), &args); err != nil {
		return marshalResponse(t.Name(), nil, errors.Wrap(err, "invalid arguments"))
	}
	if strings.TrimSpace(args.Query) == "" {
		return marshalResponse(t.Name(), nil, errors.New("query is required"))
	}

	results, err := t.search(ctx, args.Query)
	if err != nil {
		return marshalResponse(t.Name(), nil, err)
	}

	result := struct {
		Query   string         `json:"query"`
		Results []SearchResult `json:"results"`
	}{
		Query:   args.Query,
		Results: results,
	}
	return marshalResponse(t.Name(), result, nil)
}

func (t *WebSearchTool) search(ctx context.Context, query string) ([]SearchResult, error) {
	return t.searchAt(ctx, searchEndpoint, query)
}

func (t *WebSearchTool) searchAt(ctx context.Context, endpoint, query string) ([]SearchResult, error) {
	searchURL := fmt.Sprintf("%s?q=%s", endpoint, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	req.Header.Set("User-Agent", "gpt-cli/1.0")

	resp, err := t.tc.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "search request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("search returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSearchBody))
	if err != nil {
		return nil, errors.Wrap(err, "reading search response")
	}

	return parseSearchResults(string(body), maxSearchResults), nil
}

// parseSearchResults extracts results from the DuckDuckGo HTML page. Result
// links carry the class "result__a"; hrefs wrap the destination in a
// redirect with a uddg= parameter.
func parseSearchResults(page string, limit int) []SearchResult {
	var results []SearchResult

	parts := strings.Split(page, "result__a")
	for _, part := range parts[1:] {
		if len(results) >= limit {
			break
		}
		var r SearchResult

		if hrefIdx := strings.Index(part, `href="`); hrefIdx >= 0 {
			start := hrefIdx + len(`href="`)
			if end := strings.Index(part[start:], `"`); end > 0 {
				r.URL = unwrapRedirect(part[start : start+end])
			}
		}

		if gtIdx := strings.Index(part, ">"); gtIdx >= 0 {
			if closeIdx := strings.Index(part[gtIdx:], "</a>"); closeIdx > 0 {
				r.Title = stripHTMLTags(part[gtIdx+1 : gtIdx+closeIdx])
			}
		}

		if snipIdx := strings.Index(part, "result__snippet"); snipIdx >= 0 {
			rest := part[snipIdx:]
			if gtIdx := strings.Index(rest, ">"); gtIdx >= 0 {
				if closeIdx := strings.Index(rest[gtIdx:], "</a>"); closeIdx > 0 {
					r.Snippet = stripHTMLTags(rest[gtIdx+1 : gtIdx+closeIdx])
				}
			}
		}

		if r.Title != "" || r.URL != "" {
			results = append(results, r)
		}
	}
	return results
}

// unwrapRedirect extracts the destination from DuckDuckGo's uddg= redirect.
func unwrapRedirect(href string) string {
	idx := strings.Index(href, "uddg=")
	if idx < 0 {
		return href
	}
	dest := href[idx+len("uddg="):]
	if amp := strings.Index(dest, "&"); amp >= 0 {
		dest = dest[:amp]
	}
	if unescaped, err := url.QueryUnescape(dest); err == nil {
		return unescaped
	}
	return dest
}

// stripHTMLTags removes markup and unescapes entities.
func stripHTMLTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(html.UnescapeString(b.String()))
}
