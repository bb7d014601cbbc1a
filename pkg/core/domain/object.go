package domain

import "encoding/json"

// Object types stored in the CMS bucket
const (
	TypePage         = "site-pages"
	TypeSection      = "page-sections"
	TypeContentBlock = "content-blocks"
	TypeTemplate     = "page-templates"
)

// DefaultProps is the projection requested for every read.
var DefaultProps = []string{"id", "title", "slug", "metadata"}

// Object is a raw CMS object. Metadata stays undecoded until the gateway maps it
// onto a typed record.
type Object struct {
	ID         string          `json:"id"`
	Slug       string          `json:"slug"`
	Title      string          `json:"title"`
	Type       string          `json:"type,omitempty"`
	Content    string          `json:"content,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	CreatedAt  string          `json:"created_at,omitempty"`
	ModifiedAt string          `json:"modified_at,omitempty"`
}

// Query selects objects by type, optionally narrowed by slug or id.
// Depth controls how many levels of relation ids are expanded into objects.
type Query struct {
	Type  string
	Slug  string
	ID    string
	Props []string
	Depth int
	Limit int
}

// RelationFields lists metadata keys that reference other objects by id.
var RelationFields = []string{"page_template", "page_sections", "content_block", "default_sections"}
