package readwise

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp layouts accepted from the API. Most values are RFC 3339, but
// some legacy records come back without a zone offset.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// flexString accepts a JSON string or number and normalizes it to a string.
// Readwise mixes the two across surfaces: v2 IDs are numbers, reader IDs are
// strings, and published_date can be either.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func parseTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseOptionalTime maps a null or empty timestamp to nil so callers can
// tell "never happened" apart from the epoch. A present but malformed value
// is still an error.
func parseOptionalTime(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseTime(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DecodeTag converts a raw tag object into a Tag.
func DecodeTag(data json.RawMessage) (Tag, error) {
	var raw struct {
		ID   flexString `json:"id"`
		Name string     `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Tag{}, fmt.Errorf("decode tag: %w", err)
	}
	return Tag{ID: string(raw.ID), Name: raw.Name}, nil
}

// DecodeBook converts a raw book object from the v2 API into a Book.
func DecodeBook(data json.RawMessage) (Book, error) {
	var raw struct {
		ID              flexString        `json:"id"`
		Title           string            `json:"title"`
		Author          string            `json:"author"`
		Category        string            `json:"category"`
		Source          string            `json:"source"`
		NumHighlights   int               `json:"num_highlights"`
		LastHighlightAt *string           `json:"last_highlight_at"`
		Updated         *string           `json:"updated"`
		CoverImageURL   string            `json:"cover_image_url"`
		HighlightsURL   string            `json:"highlights_url"`
		SourceURL       string            `json:"source_url"`
		ASIN            string            `json:"asin"`
		Tags            []json.RawMessage `json:"tags"`
		DocumentNote    string            `json:"document_note"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Book{}, fmt.Errorf("decode book: %w", err)
	}

	lastHighlightAt, err := parseOptionalTime(raw.LastHighlightAt)
	if err != nil {
		return Book{}, fmt.Errorf("decode book %s: last_highlight_at: %w", raw.ID, err)
	}
	updated, err := parseOptionalTime(raw.Updated)
	if err != nil {
		return Book{}, fmt.Errorf("decode book %s: updated: %w", raw.ID, err)
	}
	tags, err := decodeTags(raw.Tags)
	if err != nil {
		return Book{}, fmt.Errorf("decode book %s: %w", raw.ID, err)
	}

	return Book{
		ID:              string(raw.ID),
		Title:           raw.Title,
		Author:          raw.Author,
		Category:        raw.Category,
		Source:          raw.Source,
		NumHighlights:   raw.NumHighlights,
		LastHighlightAt: lastHighlightAt,
		Updated:         updated,
		CoverImageURL:   raw.CoverImageURL,
		HighlightsURL:   raw.HighlightsURL,
		SourceURL:       raw.SourceURL,
		ASIN:            raw.ASIN,
		Tags:            tags,
		DocumentNote:    raw.DocumentNote,
	}, nil
}

// DecodeHighlight converts a raw highlight object from the v2 API into a
// Highlight.
func DecodeHighlight(data json.RawMessage) (Highlight, error) {
	var raw struct {
		ID           flexString        `json:"id"`
		Text         string            `json:"text"`
		Note         string            `json:"note"`
		Location     int               `json:"location"`
		LocationType string            `json:"location_type"`
		URL          *string           `json:"url"`
		Color        string            `json:"color"`
		Updated      *string           `json:"updated"`
		BookID       flexString        `json:"book_id"`
		Tags         []json.RawMessage `json:"tags"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Highlight{}, fmt.Errorf("decode highlight: %w", err)
	}

	updated, err := parseOptionalTime(raw.Updated)
	if err != nil {
		return Highlight{}, fmt.Errorf("decode highlight %s: updated: %w", raw.ID, err)
	}
	tags, err := decodeTags(raw.Tags)
	if err != nil {
		return Highlight{}, fmt.Errorf("decode highlight %s: %w", raw.ID, err)
	}

	return Highlight{
		ID:           string(raw.ID),
		Text:         raw.Text,
		Note:         raw.Note,
		Location:     raw.Location,
		LocationType: raw.LocationType,
		URL:          raw.URL,
		Color:        raw.Color,
		Updated:      updated,
		BookID:       string(raw.BookID),
		Tags:         tags,
	}, nil
}

// DecodeDocument converts a raw document object from the Reader API into a
// Document. created_at and updated_at are required and must parse; a
// document without them is a decode error.
func DecodeDocument(data json.RawMessage) (Document, error) {
	var raw struct {
		ID              flexString      `json:"id"`
		URL             string          `json:"url"`
		SourceURL       string          `json:"source_url"`
		Title           string          `json:"title"`
		Author          string          `json:"author"`
		Source          string          `json:"source"`
		Category        string          `json:"category"`
		Location        string          `json:"location"`
		Tags            json.RawMessage `json:"tags"`
		SiteName        string          `json:"site_name"`
		WordCount       int             `json:"word_count"`
		CreatedAt       string          `json:"created_at"`
		UpdatedAt       string          `json:"updated_at"`
		Notes           string          `json:"notes"`
		PublishedDate   flexString      `json:"published_date"`
		Summary         string          `json:"summary"`
		ImageURL        string          `json:"image_url"`
		ParentID        *string         `json:"parent_id"`
		ReadingProgress float64         `json:"reading_progress"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}

	createdAt, err := parseTime(raw.CreatedAt)
	if err != nil {
		return Document{}, fmt.Errorf("decode document %s: created_at: %w", raw.ID, err)
	}
	updatedAt, err := parseTime(raw.UpdatedAt)
	if err != nil {
		return Document{}, fmt.Errorf("decode document %s: updated_at: %w", raw.ID, err)
	}
	tags, err := decodeDocumentTags(raw.Tags)
	if err != nil {
		return Document{}, fmt.Errorf("decode document %s: %w", raw.ID, err)
	}

	return Document{
		ID:              string(raw.ID),
		URL:             raw.URL,
		SourceURL:       raw.SourceURL,
		Title:           raw.Title,
		Author:          raw.Author,
		Source:          raw.Source,
		Category:        raw.Category,
		Location:        raw.Location,
		Tags:            tags,
		SiteName:        raw.SiteName,
		WordCount:       raw.WordCount,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
		Notes:           raw.Notes,
		PublishedDate:   string(raw.PublishedDate),
		Summary:         raw.Summary,
		ImageURL:        raw.ImageURL,
		ParentID:        raw.ParentID,
		ReadingProgress: raw.ReadingProgress,
	}, nil
}

func decodeTags(raw []json.RawMessage) ([]Tag, error) {
	tags := make([]Tag, 0, len(raw))
	for _, r := range raw {
		tag, err := DecodeTag(r)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// decodeDocumentTags tolerates the three shapes the reader surface emits for
// tags: a name-keyed object, an empty list, or null.
func decodeDocumentTags(raw json.RawMessage) (map[string]DocumentTag, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" || trimmed[0] == '[' {
		return map[string]DocumentTag{}, nil
	}
	var tags map[string]DocumentTag
	if err := json.Unmarshal(trimmed, &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return tags, nil
}
