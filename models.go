package readwise

import "time"

// Tag is a label attached to a book, highlight or document. Tags have no
// lifecycle of their own; they only exist nested inside a parent record.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Book represents a Readwise book (or article, tweet thread, podcast) as
// returned by the v2 API. It reflects server-side state at fetch time and is
// read-only except through the tag endpoints.
type Book struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	Category        string     `json:"category"`
	Source          string     `json:"source"`
	NumHighlights   int        `json:"num_highlights"`
	LastHighlightAt *time.Time `json:"last_highlight_at"`
	Updated         *time.Time `json:"updated"`
	CoverImageURL   string     `json:"cover_image_url"`
	HighlightsURL   string     `json:"highlights_url"`
	SourceURL       string     `json:"source_url"`
	ASIN            string     `json:"asin"`
	Tags            []Tag      `json:"tags"`
	DocumentNote    string     `json:"document_note"`
}

// Highlight represents a single highlight scoped to a parent book.
type Highlight struct {
	ID           string     `json:"id"`
	Text         string     `json:"text"`
	Note         string     `json:"note"`
	Location     int        `json:"location"`
	LocationType string     `json:"location_type"`
	URL          *string    `json:"url"`
	Color        string     `json:"color"`
	Updated      *time.Time `json:"updated"`
	BookID       string     `json:"book_id"`
	Tags         []Tag      `json:"tags"`
}

// Document locations recognized by the Reader API.
const (
	LocationNew     = "new"
	LocationLater   = "later"
	LocationArchive = "archive"
	LocationFeed    = "feed"
)

// DocumentTag is the tag shape used by the Reader API, which keys tags by
// name instead of carrying a flat list.
type DocumentTag struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
}

// Document represents a document saved in Readwise Reader (v3 API).
type Document struct {
	ID              string                 `json:"id"`
	URL             string                 `json:"url"`
	SourceURL       string                 `json:"source_url"`
	Title           string                 `json:"title"`
	Author          string                 `json:"author"`
	Source          string                 `json:"source"`
	Category        string                 `json:"category"`
	Location        string                 `json:"location"`
	Tags            map[string]DocumentTag `json:"tags"`
	SiteName        string                 `json:"site_name"`
	WordCount       int                    `json:"word_count"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
	Notes           string                 `json:"notes"`
	PublishedDate   string                 `json:"published_date"`
	Summary         string                 `json:"summary"`
	ImageURL        string                 `json:"image_url"`
	ParentID        *string                `json:"parent_id"`
	ReadingProgress float64                `json:"reading_progress"`
}

// NewHighlight is the payload for creating a single highlight. Text and Title
// are required; every other field is sent to the server only when set, since
// the API treats omission (not null) as "unset".
type NewHighlight struct {
	Text          string
	Title         string
	Author        string
	HighlightedAt *time.Time
	SourceURL     string
	Category      string // defaults to "articles"
	Note          string
}

// NewDocument is the payload for saving a document in Reader. URL is
// required. Location defaults to "new" and Tags to an empty list; the
// remaining fields are included only when set.
type NewDocument struct {
	URL             string
	HTML            string
	ShouldCleanHTML *bool
	Title           string
	Author          string
	Summary         string
	PublishedAt     *time.Time
	ImageURL        string
	Location        string
	SavedUsing      string
	Tags            []string
}
