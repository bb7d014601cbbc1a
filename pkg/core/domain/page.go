package domain

import "encoding/json"

type PageStatus string

const (
	PageStatusPublished   PageStatus = "published"
	PageStatusDraft       PageStatus = "draft"
	PageStatusMaintenance PageStatus = "maintenance"
)

type LayoutType string

const (
	LayoutSingleColumn LayoutType = "single_column"
	LayoutTwoColumn    LayoutType = "two_column"
	LayoutLandingPage  LayoutType = "landing_page"
	LayoutBlog         LayoutType = "blog_layout"
)

// HomeSlug is the page slug routed to "/" by the navigation shell.
const HomeSlug = "homepage"

// Page is a site page with its sections expanded
type Page struct {
	ID         string       `json:"id"`
	Slug       string       `json:"slug"`
	Title      string       `json:"title"`
	Type       string       `json:"type,omitempty"`
	CreatedAt  string       `json:"created_at,omitempty"`
	ModifiedAt string       `json:"modified_at,omitempty"`
	Metadata   PageMetadata `json:"metadata"`
}

type PageMetadata struct {
	PageTitle      string             `json:"page_title"`
	PageURL        string             `json:"page_url"`
	PageTemplate   *Template          `json:"page_template,omitempty"`
	PageSections   []Section          `json:"page_sections,omitempty"`
	SEOTitle       string             `json:"seo_title,omitempty"`
	SEODescription string             `json:"seo_description,omitempty"`
	FeaturedImage  *MediaAsset        `json:"featured_image,omitempty"`
	PageStatus     Choice[PageStatus] `json:"page_status"`
}

// Sections returns the page sections, never nil.
func (p *Page) Sections() []Section {
	if p == nil || p.Metadata.PageSections == nil {
		return []Section{}
	}
	return p.Metadata.PageSections
}

// DisplayTitle prefers the page_title metafield over the object title.
func (p *Page) DisplayTitle() string {
	if p.Metadata.PageTitle != "" {
		return p.Metadata.PageTitle
	}
	return p.Title
}

// Path is the shell route for the page.
func (p *Page) Path() string {
	if p.Slug == HomeSlug {
		return "/"
	}
	return "/page/" + p.Slug
}

// TemplateName returns the template name or "Default".
func (p *Page) TemplateName() string {
	if t := p.Metadata.PageTemplate; t != nil && t.Metadata.TemplateName != "" {
		return t.Metadata.TemplateName
	}
	return "Default"
}

// Template is read-only page template reference data.
type Template struct {
	ID       string           `json:"id"`
	Slug     string           `json:"slug,omitempty"`
	Title    string           `json:"title,omitempty"`
	Type     string           `json:"type,omitempty"`
	Metadata TemplateMetadata `json:"metadata"`
}

type TemplateMetadata struct {
	TemplateName        string             `json:"template_name"`
	TemplateDescription string             `json:"template_description,omitempty"`
	LayoutType          Choice[LayoutType] `json:"layout_type"`
	DefaultSections     []Section          `json:"default_sections,omitempty"`
	TemplateSettings    json.RawMessage    `json:"template_settings,omitempty"`
}

// UnmarshalJSON accepts an unexpanded relation id as well as a full object.
func (t *Template) UnmarshalJSON(data []byte) error {
	if isJSONString(data) {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*t = Template{ID: id}
		return nil
	}
	type alias Template
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*t = Template(decoded)
	return nil
}
