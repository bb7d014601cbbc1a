package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/config"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/logging"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/ports"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/render"
)

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, pages ports.PageService, editor ports.EditorService, engine *render.Engine, logger logging.Logger) http.Handler {
	if logger == nil {
		logger = logging.NoOp()
	}

	api := NewAPIHandler(pages, editor, logger)
	ui := NewUIHandler(pages, editor, engine, cfg.SaveCloseDelay, logger)
	mw := NewMiddleware(cfg, logger)
	authHandler := NewAuthHandler(cfg, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// Public Routes
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	r.Get("/auth/google/login", authHandler.Login)
	r.Get("/auth/google/callback", authHandler.Callback)
	r.Get("/auth/logout", authHandler.Logout)

	r.Get("/", ui.Home)
	r.Get("/page/{slug}", ui.Page)

	r.Route("/api", func(r chi.Router) {
		r.Get("/pages", api.ListPages)
		r.Get("/pages/{slug}", api.GetPage)
		r.Get("/sections", api.ListSections)
		r.Get("/content-blocks", api.ListContentBlocks)
		r.Get("/templates", api.ListTemplates)

		// Writes require an editor when EDITOR_AUTH is on.
		r.Group(func(r chi.Router) {
			r.Use(mw.AuthMiddleware)
			r.Post("/update-section", api.UpdateSection)
			r.Post("/update-content-block", api.UpdateContentBlock)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware)
		r.Get("/edit/{sectionID}", ui.EditForm)
		r.Post("/edit/{sectionID}", ui.EditSubmit)
	})

	return r
}
