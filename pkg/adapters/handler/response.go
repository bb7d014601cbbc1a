package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/logging"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status code. Only validation and not-found messages
// reach the client; anything else is logged and answered with fallback.
func writeError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error, fallback string) {
	status, message := classify(err, fallback)
	if status >= http.StatusInternalServerError {
		logger.WithContext(r.Context()).Error(fallback, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: message})
}

func classify(err error, fallback string) (int, string) {
	var gerr *goerrors.Error
	if !errors.As(err, &gerr) {
		return http.StatusInternalServerError, fallback
	}
	switch {
	case goerrors.IsCategory(err, goerrors.CategoryValidation), goerrors.IsCategory(err, goerrors.CategoryBadInput):
		return http.StatusBadRequest, gerr.Message
	case goerrors.IsCategory(err, goerrors.CategoryNotFound):
		return http.StatusNotFound, gerr.Message
	default:
		return http.StatusInternalServerError, fallback
	}
}
