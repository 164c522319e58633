package readwise

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTag(t *testing.T) {
	tag, err := DecodeTag([]byte(`{"id": 17, "name": "golang"}`))
	require.NoError(t, err)
	assert.Equal(t, Tag{ID: "17", Name: "golang"}, tag)

	tag, err = DecodeTag([]byte(`{"id": "abc", "name": "reader-tag"}`))
	require.NoError(t, err)
	assert.Equal(t, Tag{ID: "abc", Name: "reader-tag"}, tag)
}

func TestDecodeBook(t *testing.T) {
	data := []byte(`{
		"id": 1,
		"title": "Test Book",
		"author": "Test Author",
		"category": "articles",
		"source": "kindle",
		"num_highlights": 5,
		"last_highlight_at": "2020-01-01T00:00:00Z",
		"updated": "2020-06-01T12:30:00Z",
		"cover_image_url": "https://example.com/image.jpg",
		"highlights_url": "https://example.com/highlights",
		"source_url": "https://example.com/source",
		"asin": "B000000000",
		"tags": [{"id": 1, "name": "one"}, {"id": 2, "name": "two"}],
		"document_note": "a note"
	}`)

	book, err := DecodeBook(data)
	require.NoError(t, err)

	assert.Equal(t, "1", book.ID)
	assert.Equal(t, "Test Book", book.Title)
	assert.Equal(t, "Test Author", book.Author)
	assert.Equal(t, 5, book.NumHighlights)
	require.NotNil(t, book.LastHighlightAt)
	assert.True(t, book.LastHighlightAt.Equal(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, book.Updated)
	assert.True(t, book.Updated.Equal(time.Date(2020, 6, 1, 12, 30, 0, 0, time.UTC)))
	assert.Equal(t, []Tag{{ID: "1", Name: "one"}, {ID: "2", Name: "two"}}, book.Tags)
	assert.Equal(t, "a note", book.DocumentNote)
}

func TestDecodeBookNullTimestamps(t *testing.T) {
	data := []byte(`{
		"id": 2,
		"title": "Never Highlighted",
		"last_highlight_at": null,
		"updated": null,
		"tags": []
	}`)

	book, err := DecodeBook(data)
	require.NoError(t, err)

	// Absent means absent: a nil pointer, never some epoch sentinel.
	assert.Nil(t, book.LastHighlightAt)
	assert.Nil(t, book.Updated)
}

func TestDecodeBookMalformedTimestamp(t *testing.T) {
	data := []byte(`{"id": 3, "title": "Broken", "last_highlight_at": "not-a-date", "tags": []}`)

	_, err := DecodeBook(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "last_highlight_at")
}

func TestDecodeBookZonelessTimestamp(t *testing.T) {
	data := []byte(`{"id": 4, "title": "Naive", "updated": "2021-03-04T05:06:07.123456", "tags": []}`)

	book, err := DecodeBook(data)
	require.NoError(t, err)
	require.NotNil(t, book.Updated)
	assert.Equal(t, 2021, book.Updated.Year())
}

func TestDecodeHighlight(t *testing.T) {
	data := []byte(`{
		"id": 101,
		"text": "A memorable line",
		"note": "why I saved it",
		"location": 42,
		"location_type": "page",
		"url": null,
		"color": "yellow",
		"updated": "2020-01-01T00:00:00Z",
		"book_id": 1,
		"tags": [{"id": 9, "name": "quotes"}]
	}`)

	h, err := DecodeHighlight(data)
	require.NoError(t, err)

	assert.Equal(t, "101", h.ID)
	assert.Equal(t, "A memorable line", h.Text)
	assert.Equal(t, 42, h.Location)
	assert.Nil(t, h.URL)
	assert.Equal(t, "1", h.BookID)
	require.NotNil(t, h.Updated)
	assert.Equal(t, []Tag{{ID: "9", Name: "quotes"}}, h.Tags)
}

func TestDecodeDocument(t *testing.T) {
	data := []byte(`{
		"id": "doc123",
		"url": "https://read.readwise.io/read/doc123",
		"source_url": "https://example.com/article",
		"title": "An Article",
		"author": "Someone",
		"source": "Readwise web highlighter",
		"category": "article",
		"location": "later",
		"tags": {"go": {"name": "go", "type": "manual", "created": 1700000000000}},
		"site_name": "example.com",
		"word_count": 1234,
		"created_at": "2024-01-01T10:00:00.000Z",
		"updated_at": "2024-01-02T11:00:00.000Z",
		"notes": "",
		"published_date": 1704067200000,
		"summary": "summary text",
		"image_url": "https://example.com/cover.jpg",
		"parent_id": null,
		"reading_progress": 0.25
	}`)

	doc, err := DecodeDocument(data)
	require.NoError(t, err)

	assert.Equal(t, "doc123", doc.ID)
	assert.Equal(t, LocationLater, doc.Location)
	assert.Equal(t, 1234, doc.WordCount)
	assert.Equal(t, "1704067200000", doc.PublishedDate)
	assert.Nil(t, doc.ParentID)
	assert.InDelta(t, 0.25, doc.ReadingProgress, 1e-9)
	require.Contains(t, doc.Tags, "go")
	assert.Equal(t, "manual", doc.Tags["go"].Type)
	assert.True(t, doc.CreatedAt.Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)))
}

func TestDecodeDocumentChildOfParent(t *testing.T) {
	data := []byte(`{
		"id": "note1",
		"parent_id": "doc123",
		"category": "note",
		"created_at": "2024-01-01T10:00:00Z",
		"updated_at": "2024-01-01T10:00:00Z",
		"tags": []
	}`)

	doc, err := DecodeDocument(data)
	require.NoError(t, err)
	require.NotNil(t, doc.ParentID)
	assert.Equal(t, "doc123", *doc.ParentID)
	assert.Empty(t, doc.Tags)
}

func TestDecodeDocumentMissingCreatedAt(t *testing.T) {
	data := []byte(`{"id": "doc1", "updated_at": "2024-01-01T10:00:00Z", "tags": {}}`)

	_, err := DecodeDocument(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "created_at")
}
