// Package render turns pages into HTML documents. Wireframe mode shows every
// section as an annotated card; preview mode renders the active sections as
// the visitor-facing page.
package render

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/core/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

type Mode string

const (
	ModeWireframe Mode = "wireframe"
	ModePreview   Mode = "preview"
)

// ParseMode reads the ?mode= query value; anything but "preview" is wireframe.
func ParseMode(s string) Mode {
	if s == string(ModePreview) {
		return ModePreview
	}
	return ModeWireframe
}

type Engine struct {
	tmpl   *template.Template
	policy *bluemonday.Policy
	md     goldmark.Markdown
}

func New() (*Engine, error) {
	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot parse templates")
	}
	return &Engine{
		tmpl:   tmpl,
		policy: bluemonday.UGCPolicy(),
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
	}, nil
}

// Body returns the block's rich text as sanitized HTML. Markdown bodies are
// converted first when the block settings ask for it.
func (e *Engine) Body(block *domain.ContentBlock) template.HTML {
	if block == nil || block.Metadata.PrimaryContent == "" {
		return ""
	}
	src := []byte(block.Metadata.PrimaryContent)
	if block.Settings().IsMarkdown() {
		var buf bytes.Buffer
		if err := e.md.Convert(src, &buf); err == nil {
			src = buf.Bytes()
		}
	}
	return template.HTML(e.policy.SanitizeBytes(src))
}

// NavItem is one entry of the page navigation.
type NavItem struct {
	Title       string
	Path        string
	PreviewPath string
	Current     bool
}

// Shell is the header state: which page, which mode.
type Shell struct {
	Title        string
	Nav          []NavItem
	Mode         Mode
	Path         string
	PreviewPath  string
	ShowSelector bool
	// Refresh is a meta refresh value ("1.5;url=/").
	Refresh string
}

func newShell(title string, current *domain.Page, pages []domain.Page, mode Mode) Shell {
	shell := Shell{Title: title, Mode: mode, ShowSelector: len(pages) > 1}
	for i := range pages {
		p := &pages[i]
		item := NavItem{Title: p.DisplayTitle(), Path: p.Path(), PreviewPath: previewPath(p.Path())}
		if current != nil && p.ID == current.ID && p.Slug == current.Slug {
			item.Current = true
		}
		shell.Nav = append(shell.Nav, item)
	}
	if current != nil {
		shell.Path = current.Path()
		shell.PreviewPath = previewPath(shell.Path)
	}
	return shell
}

func previewPath(path string) string {
	return path + "?mode=preview"
}

// Card is a section as shown in wireframe mode.
type Card struct {
	Section    domain.Section
	Block      *domain.ContentBlock
	Reference  string
	Active     bool
	Responsive string
	CustomCSS  bool
	BlockType  string
	Icon       string
	Reusable   bool
	CTA        *domain.CallToAction
	EditURL    string
}

func newCard(page *domain.Page, s domain.Section) Card {
	block := s.Block()
	c := Card{
		Section:    s,
		Block:      block,
		Reference:  s.Reference(),
		Active:     s.Metadata.IsActive,
		Responsive: s.Responsive().Label(),
		CustomCSS:  !s.Overrides().IsEmpty(),
		EditURL:    EditURL(page.Slug, s.ID),
	}
	if block != nil {
		c.BlockType = block.Metadata.BlockType.Label()
		c.Icon = block.Kind().Icon()
		c.Reusable = block.Metadata.IsReusable
		c.CTA = block.Metadata.CallToAction
	}
	return c
}

// EditURL is the editor form for a section of a page.
func EditURL(pageSlug, sectionID string) string {
	return "/edit/" + url.PathEscape(sectionID) + "?page=" + url.QueryEscape(pageSlug)
}

type wireframeDoc struct {
	Shell
	Page     *domain.Page
	Template string
	Active   []Card
	Inactive []Card
	Total    int
}

type previewDoc struct {
	Shell
	Page     *domain.Page
	Sections []template.HTML
}

// RenderPage writes the wireframe or preview document for page.
func (e *Engine) RenderPage(w io.Writer, page *domain.Page, pages []domain.Page, mode Mode) error {
	layout := Arrange(page)
	shell := newShell(page.DisplayTitle(), page, pages, mode)

	if mode == ModePreview {
		doc := previewDoc{Shell: shell, Page: page, Sections: make([]template.HTML, 0, len(layout.Active))}
		for _, s := range layout.Active {
			html, err := e.renderSection(s)
			if err != nil {
				return errors.Wrapf(err, "Cannot render section %q", s.ID)
			}
			doc.Sections = append(doc.Sections, html)
		}
		return e.tmpl.ExecuteTemplate(w, "preview", doc)
	}

	doc := wireframeDoc{Shell: shell, Page: page, Template: page.TemplateName(), Total: layout.Total()}
	for _, s := range layout.Active {
		doc.Active = append(doc.Active, newCard(page, s))
	}
	for _, s := range layout.Inactive {
		doc.Inactive = append(doc.Inactive, newCard(page, s))
	}
	return e.tmpl.ExecuteTemplate(w, "wireframe", doc)
}

// RenderNoPages is the home document when the CMS has no pages.
func (e *Engine) RenderNoPages(w io.Writer) error {
	return e.tmpl.ExecuteTemplate(w, "nopages", newShell("No Pages Found", nil, nil, ModeWireframe))
}

// RenderNotFound is the document for an unknown page slug.
func (e *Engine) RenderNotFound(w io.Writer, pages []domain.Page, slug string) error {
	return e.tmpl.ExecuteTemplate(w, "notfound", struct {
		Shell
		Slug string
	}{newShell("Page Not Found", nil, pages, ModeWireframe), slug})
}

// EditorView is the state of an editor form.
type EditorView struct {
	Page            *domain.Page
	Pages           []domain.Page
	Section         domain.Section
	Block           *domain.ContentBlock
	State           string
	Message         string
	Fields          domain.SectionFields
	BlockFields     domain.BlockFields
	OriginalSection domain.SectionFields
	OriginalBlock   domain.BlockFields
	CloseDelay      time.Duration
}

type editorDoc struct {
	Shell
	EditorView
	Reference string
	ActionURL string
	ReturnURL string
	Saved     bool
	Saving    bool
	Failed    bool
}

func (e *Engine) RenderEditor(w io.Writer, v EditorView) error {
	doc := editorDoc{
		Shell:      newShell("Edit Section", v.Page, v.Pages, ModeWireframe),
		EditorView: v,
		Reference:  v.Section.Reference(),
		ReturnURL:  "/",
		Saved:      v.State == "success",
		Saving:     v.State == "saving",
		Failed:     v.State == "error",
	}
	if v.Page != nil {
		doc.ActionURL = EditURL(v.Page.Slug, v.Section.ID)
		doc.ReturnURL = v.Page.Path()
	}
	if doc.Saved {
		doc.Refresh = formatSeconds(v.CloseDelay) + ";url=" + doc.ReturnURL
	}
	return e.tmpl.ExecuteTemplate(w, "editor", doc)
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
