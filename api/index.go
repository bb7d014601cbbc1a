package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/app"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/config"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/logging"
)

var mux http.Handler

func init() {
	cfg := config.Load()

	provider, err := logging.NewProvider(logging.Config{Level: cfg.LogLevel, Format: "json"})
	if err != nil {
		panic(err)
	}

	// Note: with CMS_DRIVER=sqlite on Vercel the database is ephemeral unless
	// DATABASE_URL points at Turso.
	application, err := app.New(cfg, provider)
	if err != nil {
		panic(err)
	}
	mux = application.Handler
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
