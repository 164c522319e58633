package readwise

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveDocumentMinimalBody(t *testing.T) {
	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/save/", r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id": "doc-new", "url": "https://read.readwise.io/read/doc-new"}`)
	}))
	defer server.Close()

	reader := NewReader("test-token", WithBaseURL(server.URL))
	resp, err := reader.SaveDocument(context.Background(), NewDocument{
		URL: "https://example.com/article",
	})
	require.NoError(t, err)

	// Location and tags always travel, defaulted; nothing else does.
	assert.JSONEq(t, `{"url": "https://example.com/article", "location": "new", "tags": []}`, body)
	assert.JSONEq(t, `{"id": "doc-new", "url": "https://read.readwise.io/read/doc-new"}`, string(resp))
}

func TestSaveDocumentFullBody(t *testing.T) {
	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{}`)
	}))
	defer server.Close()

	publishedAt := time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)
	clean := false
	reader := NewReader("test-token", WithBaseURL(server.URL))
	_, err := reader.SaveDocument(context.Background(), NewDocument{
		URL:             "https://example.com/article",
		HTML:            "<p>hello</p>",
		ShouldCleanHTML: &clean,
		Title:           "An Article",
		Author:          "Someone",
		Summary:         "short",
		PublishedAt:     &publishedAt,
		ImageURL:        "https://example.com/cover.jpg",
		Location:        LocationLater,
		SavedUsing:      "go-readwise",
		Tags:            []string{"go", "http"},
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"url": "https://example.com/article",
		"location": "later",
		"tags": ["go", "http"],
		"html": "<p>hello</p>",
		"should_clean_html": false,
		"title": "An Article",
		"author": "Someone",
		"summary": "short",
		"published_at": "2024-02-03T00:00:00Z",
		"image_url": "https://example.com/cover.jpg",
		"saved_using": "go-readwise"
	}`, body)
}

func TestSaveDocumentRequiresURL(t *testing.T) {
	reader := NewReader("test-token")
	_, err := reader.SaveDocument(context.Background(), NewDocument{})
	assert.Error(t, err)
}

func TestDocumentsFilters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/list/", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "archive", q.Get("location"))
		assert.Equal(t, "article", q.Get("category"))
		assert.Equal(t, "2024-01-01T00:00:00Z", q.Get("updatedAfter"))
		io.WriteString(w, `{"nextPageCursor": null, "results": []}`)
	}))
	defer server.Close()

	updatedAfter := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	reader := NewReader("test-token", WithBaseURL(server.URL))
	it := reader.Documents(context.Background(), DocumentListOptions{
		Location:     LocationArchive,
		Category:     "article",
		UpdatedAfter: &updatedAfter,
	})

	assert.False(t, it.Next())
	assert.NoError(t, it.Err())
}
