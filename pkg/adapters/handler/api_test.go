package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/config"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/core/domain"
)

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("%s %s: response is not JSON: %q", method, path, rr.Body.String())
	}
	return rr, out
}

func TestListPages(t *testing.T) {
	router := newTestRouter(t, nil, &fakePages{pages: fixturePages(t)}, &fakeEditor{})

	rr, out := doJSON(t, router, http.MethodGet, "/api/pages", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if out["success"] != true {
		t.Errorf("success = %v", out["success"])
	}
	pages, _ := out["pages"].([]any)
	if len(pages) != 1 {
		t.Errorf("pages = %v", out["pages"])
	}
}

func TestGetPage(t *testing.T) {
	router := newTestRouter(t, nil, &fakePages{pages: fixturePages(t)}, &fakeEditor{})

	rr, out := doJSON(t, router, http.MethodGet, "/api/pages/homepage", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	page, _ := out["page"].(map[string]any)
	if page["slug"] != "homepage" {
		t.Errorf("page = %v", out["page"])
	}

	rr, out = doJSON(t, router, http.MethodGet, "/api/pages/missing", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	if out["error"] != "Page not found" {
		t.Errorf("error = %v", out["error"])
	}
}

func TestUpstreamFailureIsGeneric(t *testing.T) {
	upstream := goerrors.New("Failed to fetch site pages", goerrors.CategoryExternal).WithTextCode(domain.CodeFetchFailed)
	upstream.Source = errUpstream
	router := newTestRouter(t, nil, &fakePages{err: upstream}, &fakeEditor{})

	for _, path := range []string{"/api/pages", "/api/pages/homepage", "/api/sections"} {
		rr, out := doJSON(t, router, http.MethodGet, path, "")
		if rr.Code != http.StatusInternalServerError {
			t.Errorf("%s: status = %d", path, rr.Code)
		}
		msg, _ := out["error"].(string)
		if !strings.HasPrefix(msg, "Failed to fetch") || strings.Contains(msg, "10.0.0.1") {
			t.Errorf("%s: error = %q", path, msg)
		}
	}
}

func TestUpdateSectionRejectsIncompleteRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing id", body: `{"metadata":{"section_label":"B"}}`},
		{name: "empty id", body: `{"id":"","metadata":{"section_label":"B"}}`},
		{name: "missing metadata", body: `{"id":"sec-hero"}`},
		{name: "null metadata", body: `{"id":"sec-hero","metadata":null}`},
		{name: "not json", body: `id=sec-hero`},
		{name: "unknown key", body: `{"id":"sec-hero","metadata":{"section_label":"B","title":"X"}}`},
		{name: "unknown override", body: `{"id":"sec-hero","metadata":{"custom_overrides":{"font_size":"2px"}}}`},
		{name: "metadata not an object", body: `{"id":"sec-hero","metadata":"B"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			editor := &fakeEditor{}
			router := newTestRouter(t, nil, &fakePages{}, editor)

			rr, out := doJSON(t, router, http.MethodPost, "/api/update-section", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rr.Code)
			}
			if msg, _ := out["error"].(string); msg == "" {
				t.Error("expected an error message")
			}
			if len(editor.sectionIDs) != 0 {
				t.Errorf("CMS call attempted: %v", editor.sectionIDs)
			}
		})
	}
}

func TestUpdateSection(t *testing.T) {
	editor := &fakeEditor{}
	router := newTestRouter(t, nil, &fakePages{}, editor)

	rr, out := doJSON(t, router, http.MethodPost, "/api/update-section", `{"id":"sec-hero","metadata":{"section_label":"B","display_order":3}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	if out["success"] != true {
		t.Errorf("success = %v", out["success"])
	}
	if len(editor.sectionIDs) != 1 || editor.sectionIDs[0] != "sec-hero" {
		t.Fatalf("calls = %v", editor.sectionIDs)
	}
	patch := editor.sectionPatches[0]
	if patch.SectionLabel == nil || *patch.SectionLabel != "B" || patch.DisplayOrder == nil || *patch.DisplayOrder != 3 {
		t.Errorf("patch = %+v", patch)
	}
	if patch.IsActive != nil {
		t.Error("untouched field sent")
	}
}

func TestUpdateContentBlock(t *testing.T) {
	editor := &fakeEditor{}
	router := newTestRouter(t, nil, &fakePages{}, editor)

	body := `{"id":"blk-hero","metadata":{"headline":"New","call_to_action":{"text":"Go","url":"/go","style":"text"}}}`
	rr, _ := doJSON(t, router, http.MethodPost, "/api/update-content-block", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	if len(editor.blockIDs) != 1 || editor.blockIDs[0] != "blk-hero" {
		t.Fatalf("calls = %v", editor.blockIDs)
	}
	patch := editor.blockPatches[0]
	if patch.Headline == nil || *patch.Headline != "New" || patch.CallToAction == nil || patch.CallToAction.URL != "/go" {
		t.Errorf("patch = %+v", patch)
	}

	rr, _ = doJSON(t, router, http.MethodPost, "/api/update-content-block", `{"id":"blk-hero","metadata":{"block_name":"X"}}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown key: status = %d", rr.Code)
	}
}

func TestUpdateErrorsAreMapped(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		want   string
	}{
		{
			name:   "validation",
			err:    goerrors.New("display_order: must be no less than 0", goerrors.CategoryValidation),
			status: http.StatusBadRequest,
			want:   "display_order: must be no less than 0",
		},
		{
			name:   "not found",
			err:    domain.NewNotFound("object"),
			status: http.StatusNotFound,
			want:   "object not found",
		},
		{
			name:   "upstream",
			err:    errUpstream,
			status: http.StatusInternalServerError,
			want:   "Failed to update section",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, nil, &fakePages{}, &fakeEditor{err: tt.err})
			rr, out := doJSON(t, router, http.MethodPost, "/api/update-section", `{"id":"sec-hero","metadata":{"is_active":false}}`)
			if rr.Code != tt.status {
				t.Errorf("status = %d, want %d", rr.Code, tt.status)
			}
			if out["error"] != tt.want {
				t.Errorf("error = %v, want %q", out["error"], tt.want)
			}
		})
	}
}

func TestWritesRequireAuthWhenEnabled(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret", EditorAuth: true}
	editor := &fakeEditor{}
	router := newTestRouter(t, cfg, &fakePages{pages: fixturePages(t)}, editor)

	rr, _ := doJSON(t, router, http.MethodPost, "/api/update-section", `{"id":"sec-hero","metadata":{"is_active":false}}`)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
	if len(editor.sectionIDs) != 0 {
		t.Error("update reached the editor")
	}

	// Reads stay public.
	rr, _ = doJSON(t, router, http.MethodGet, "/api/pages", "")
	if rr.Code != http.StatusOK {
		t.Errorf("read status = %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/update-section", strings.NewReader(`{"id":"sec-hero","metadata":{"is_active":false}}`))
	req.AddCookie(&http.Cookie{Name: authCookie, Value: generateTestToken(t, cfg.JWTSecret)})
	authed := httptest.NewRecorder()
	router.ServeHTTP(authed, req)
	if authed.Code != http.StatusOK {
		t.Errorf("authorized status = %d: %s", authed.Code, authed.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, nil, &fakePages{}, &fakeEditor{})
	rr, out := doJSON(t, router, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK || out["message"] != "ok" {
		t.Errorf("healthz = %d %v", rr.Code, out)
	}
}
