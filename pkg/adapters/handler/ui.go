package handler

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/core/domain"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/core/services"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/logging"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/ports"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/render"
)

// UIHandler serves the wireframe, preview and editor documents.
type UIHandler struct {
	pages      ports.PageService
	editor     ports.EditorService
	engine     *render.Engine
	closeDelay time.Duration
	logger     logging.Logger
}

func NewUIHandler(pages ports.PageService, editor ports.EditorService, engine *render.Engine, closeDelay time.Duration, logger logging.Logger) *UIHandler {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &UIHandler{
		pages:      pages,
		editor:     editor,
		engine:     engine,
		closeDelay: closeDelay,
		logger:     logger,
	}
}

func (h *UIHandler) Home(w http.ResponseWriter, r *http.Request) {
	home, pages, err := h.pages.HomePage(r.Context())
	if err != nil {
		h.fail(w, r, err, "Failed to load pages")
		return
	}
	if home == nil {
		h.write(w, r, http.StatusOK, func(buf *bytes.Buffer) error {
			return h.engine.RenderNoPages(buf)
		})
		return
	}
	mode := render.ParseMode(r.URL.Query().Get("mode"))
	h.write(w, r, http.StatusOK, func(buf *bytes.Buffer) error {
		return h.engine.RenderPage(buf, home, pages, mode)
	})
}

func (h *UIHandler) Page(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	page, pages, err := h.load(r.Context(), slug)
	if err != nil {
		h.fail(w, r, err, "Failed to load page")
		return
	}
	if page == nil {
		h.write(w, r, http.StatusNotFound, func(buf *bytes.Buffer) error {
			return h.engine.RenderNotFound(buf, pages, slug)
		})
		return
	}
	mode := render.ParseMode(r.URL.Query().Get("mode"))
	h.write(w, r, http.StatusOK, func(buf *bytes.Buffer) error {
		return h.engine.RenderPage(buf, page, pages, mode)
	})
}

// EditForm opens the editor seeded from the current section and block.
func (h *UIHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	page, pages, section, ok := h.editTarget(w, r)
	if !ok {
		return
	}
	session := services.NewSession(h.editor)
	session.Open(*section, section.Block())
	h.renderEditor(w, r, page, pages, *section, session, http.StatusOK)
}

// EditSubmit saves the form. The diff is computed against the orig_* values
// the form was opened with, so fields changed elsewhere in the meantime are
// not overwritten unless the editor touched them.
func (h *UIHandler) EditSubmit(w http.ResponseWriter, r *http.Request) {
	page, pages, section, ok := h.editTarget(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	original, block := seedFromForm(r, *section)
	session := services.NewSession(h.editor)
	session.Open(original, block)

	fields, blockFields, ok := editedFields(r)
	if !ok {
		h.renderInvalid(w, r, page, pages, original, block, fields, blockFields, invalidOrderMessage)
		return
	}
	if err := session.Edit(fields, blockFields); err != nil {
		h.fail(w, r, err, "Failed to save changes")
		return
	}

	// Navigating away must not abort a save already in flight.
	ctx := context.WithoutCancel(r.Context())
	result, err := session.Save(ctx)
	log := h.logger.WithContext(ctx).WithFields(map[string]any{"section": section.ID, "page": page.Slug})
	if err != nil {
		log.Error("editor save failed", "error", err)
		h.renderEditor(w, r, page, pages, original, session, http.StatusOK)
		return
	}
	log.Info("editor save", "changed", result.Changed(), "editor", UserEmail(r.Context()))
	h.renderEditor(w, r, page, pages, original, session, http.StatusOK)
}

func (h *UIHandler) editTarget(w http.ResponseWriter, r *http.Request) (*domain.Page, []domain.Page, *domain.Section, bool) {
	page, pages, err := h.load(r.Context(), r.URL.Query().Get("page"))
	if err != nil {
		h.fail(w, r, err, "Failed to load page")
		return nil, nil, nil, false
	}
	if page == nil {
		http.Error(w, "Page not found", http.StatusNotFound)
		return nil, nil, nil, false
	}
	id := chi.URLParam(r, "sectionID")
	for _, s := range page.Sections() {
		if s.ID == id {
			section := s
			return page, pages, &section, true
		}
	}
	http.Error(w, "Section not found", http.StatusNotFound)
	return nil, nil, nil, false
}

// load resolves slug to a page and the full page list. An empty slug resolves
// to the home page. An exact slug match wins; the homepage slug falls back to
// the home page when no page carries it.
func (h *UIHandler) load(ctx context.Context, slug string) (*domain.Page, []domain.Page, error) {
	if slug == "" {
		return h.pages.HomePage(ctx)
	}
	pages, err := h.pages.ListPages(ctx)
	if err != nil {
		return nil, nil, err
	}
	for i := range pages {
		if pages[i].Slug == slug {
			return &pages[i], pages, nil
		}
	}
	if slug == domain.HomeSlug {
		return h.pages.HomePage(ctx)
	}
	return nil, pages, nil
}

func (h *UIHandler) renderEditor(w http.ResponseWriter, r *http.Request, page *domain.Page, pages []domain.Page, section domain.Section, session *services.Session, status int) {
	fields, blockFields := session.Fields()
	view := render.EditorView{
		Page:            page,
		Pages:           pages,
		Section:         section,
		Block:           section.Block(),
		State:           string(session.State()),
		Message:         session.Message(),
		Fields:          fields,
		BlockFields:     blockFields,
		OriginalSection: domain.SectionFieldsOf(section),
		OriginalBlock:   domain.BlockFieldsOf(section.Block()),
		CloseDelay:      h.closeDelay,
	}
	h.write(w, r, status, func(buf *bytes.Buffer) error {
		return h.engine.RenderEditor(buf, view)
	})
}

func (h *UIHandler) renderInvalid(w http.ResponseWriter, r *http.Request, page *domain.Page, pages []domain.Page, section domain.Section, block *domain.ContentBlock, fields domain.SectionFields, blockFields domain.BlockFields, message string) {
	view := render.EditorView{
		Page:            page,
		Pages:           pages,
		Section:         section,
		Block:           block,
		State:           string(services.StateError),
		Message:         message,
		Fields:          fields,
		BlockFields:     blockFields,
		OriginalSection: domain.SectionFieldsOf(section),
		OriginalBlock:   domain.BlockFieldsOf(block),
		CloseDelay:      h.closeDelay,
	}
	h.write(w, r, http.StatusBadRequest, func(buf *bytes.Buffer) error {
		return h.engine.RenderEditor(buf, view)
	})
}

// write renders into a buffer first so a template failure still yields a
// clean 500.
func (h *UIHandler) write(w http.ResponseWriter, r *http.Request, status int, fn func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		h.fail(w, r, err, "Failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *UIHandler) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	h.logger.WithContext(r.Context()).Error(message, "path", r.URL.Path, "error", err)
	http.Error(w, message, http.StatusInternalServerError)
}

// seedFromForm overlays the values the form was opened with onto copies of
// the current section and block. Ids and the CTA style come from the store.
// Values are normalized the same way editedFields normalizes the edits.
func seedFromForm(r *http.Request, current domain.Section) (domain.Section, *domain.ContentBlock) {
	section := current
	section.Metadata.SectionLabel = strings.TrimSpace(r.PostFormValue("orig_section_label"))
	section.Metadata.IsActive = r.PostFormValue("orig_is_active") == "true"
	if order, err := strconv.Atoi(r.PostFormValue("orig_display_order")); err == nil {
		section.Metadata.DisplayOrder = order
	}

	var block *domain.ContentBlock
	if b := current.Block(); b != nil {
		copied := *b
		copied.Metadata.Headline = r.PostFormValue("orig_headline")
		copied.Metadata.Subheading = r.PostFormValue("orig_subheading")
		copied.Metadata.PrimaryContent = r.PostFormValue("orig_primary_content")
		text, link := r.PostFormValue("orig_cta_text"), strings.TrimSpace(r.PostFormValue("orig_cta_url"))
		switch {
		case b.Metadata.CallToAction != nil:
			cta := *b.Metadata.CallToAction
			cta.Text, cta.URL = text, link
			copied.Metadata.CallToAction = &cta
		case text != "" || link != "":
			copied.Metadata.CallToAction = &domain.CallToAction{Text: text, URL: link}
		}
		block = &copied
		section.Metadata.ContentBlock = block
	}
	return section, block
}

const invalidOrderMessage = "Display order must be a whole number."

func editedFields(r *http.Request) (domain.SectionFields, domain.BlockFields, bool) {
	fields := domain.SectionFields{
		Label:    strings.TrimSpace(r.PostFormValue("section_label")),
		IsActive: r.PostFormValue("is_active") == "true",
	}
	blockFields := domain.BlockFields{
		Headline:       r.PostFormValue("headline"),
		Subheading:     r.PostFormValue("subheading"),
		PrimaryContent: r.PostFormValue("primary_content"),
		CTAText:        r.PostFormValue("cta_text"),
		CTAURL:         strings.TrimSpace(r.PostFormValue("cta_url")),
	}
	order, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("display_order")))
	if err != nil || order < 0 {
		return fields, blockFields, false
	}
	fields.DisplayOrder = order
	return fields, blockFields, true
}
