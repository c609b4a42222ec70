package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResultsPage = `
<div class="result">
  <a rel="nofollow" class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2Fdoc%2F&amp;rut=abc">The Go <b>Documentation</b></a>
  <a class="result__snippet" href="#">Official Go docs &amp; tutorials.</a>
</div>
<div class="result">
  <a rel="nofollow" class="result__a" href="https://example.com/page">Example Page</a>
  <a class="result__snippet" href="#">An example snippet.</a>
</div>
`

func TestParseSearchResults(t *testing.T) {
	results := parseSearchResults(sampleResultsPage, 5)
	require.Len(t, results, 2)

	assert.Equal(t, "The Go Documentation", results[0].Title)
	assert.Equal(t, "https://go.dev/doc/", results[0].URL)
	assert.Equal(t, "Official Go docs & tutorials.", results[0].Snippet)

	assert.Equal(t, "Example Page", results[1].Title)
	assert.Equal(t, "https://example.com/page", results[1].URL)
}

func TestParseSearchResultsLimit(t *testing.T) {
	page := ""
	for i := 0; i < 10; i++ {
		page += fmt.Sprintf(`<a class="result__a" href="https://example.com/%d">Result %d</a>`, i, i)
	}
	results := parseSearchResults(page, 3)
	assert.Len(t, results, 3)
}

func TestUnwrapRedirect(t *testing.T) {
	assert.Equal(t, "https://go.dev/doc/", unwrapRedirect("//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2Fdoc%2F&rut=abc"))
	assert.Equal(t, "https://direct.example.com", unwrapRedirect("https://direct.example.com"))
}

func TestStripHTMLTags(t *testing.T) {
	assert.Equal(t, "bold and plain", stripHTMLTags("<b>bold</b> and plain"))
	assert.Equal(t, "a & b", stripHTMLTags("a &amp; b"))
}

func TestWebSearchToolAgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "golang testing", r.URL.Query().Get("q"))
		w.Write([]byte(sampleResultsPage))
	}))
	defer srv.Close()

	tool := &WebSearchTool{tc: Context{HTTPClient: srv.Client()}}
	results, err := tool.searchAt(context.Background(), srv.URL+"/html/", "golang testing")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "The Go Documentation", results[0].Title)
}

func TestWebSearchRequiresQuery(t *testing.T) {
	tool := &WebSearchTool{tc: Context{HTTPClient: http.DefaultClient}}
	out, err := tool.Execute(context.Background(), `{"query":"  "}`)
	require.NoError(t, err)

	var e envelope
	require.NoError(t, json.Unmarshal([]byte(out), &e))
	assert.False(t, e.OK)
	assert.Contains(t, e.Err, "query is required")
}
