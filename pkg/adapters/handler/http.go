package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/core/domain"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/logging"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/ports"
)

// APIHandler serves the JSON API.
type APIHandler struct {
	pages  ports.PageService
	editor ports.EditorService
	logger logging.Logger
}

func NewAPIHandler(pages ports.PageService, editor ports.EditorService, logger logging.Logger) *APIHandler {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &APIHandler{pages: pages, editor: editor, logger: logger}
}

// UpdateRequest is the body of both update endpoints.
type UpdateRequest struct {
	ID       string          `json:"id"`
	Metadata json.RawMessage `json:"metadata"`
}

func (h *APIHandler) ListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := h.pages.ListPages(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to fetch pages")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "pages": pages})
}

func (h *APIHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.GetPage(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to fetch page")
		return
	}
	if page == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Page not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "page": page})
}

func (h *APIHandler) ListSections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.pages.ListSections(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to fetch sections")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "sections": sections})
}

func (h *APIHandler) ListContentBlocks(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.pages.ListContentBlocks(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to fetch content blocks")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "content_blocks": blocks})
}

func (h *APIHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.pages.ListTemplates(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to fetch templates")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "templates": templates})
}

func (h *APIHandler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeUpdate(w, r)
	if !ok {
		return
	}
	patch, err := domain.DecodeSectionPatch(req.Metadata)
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to update section")
		return
	}
	obj, err := h.editor.UpdateSection(r.Context(), req.ID, patch)
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to update section")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "object": obj})
}

func (h *APIHandler) UpdateContentBlock(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeUpdate(w, r)
	if !ok {
		return
	}
	patch, err := domain.DecodeContentBlockPatch(req.Metadata)
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to update content block")
		return
	}
	obj, err := h.editor.UpdateContentBlock(r.Context(), req.ID, patch)
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to update content block")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "object": obj})
}

// decodeUpdate reads an update body and answers 400 itself when the id or the
// metadata is missing.
func decodeUpdate(w http.ResponseWriter, r *http.Request) (UpdateRequest, bool) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return req, false
	}
	metadata := bytes.TrimSpace(req.Metadata)
	if req.ID == "" || len(metadata) == 0 || bytes.Equal(metadata, []byte("null")) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing id or metadata"})
		return req, false
	}
	return req, true
}
