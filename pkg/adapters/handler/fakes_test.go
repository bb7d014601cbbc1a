package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/config"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/core/domain"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/ports"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/render"
)

const homePageJSON = `{
	"id": "page-1",
	"slug": "homepage",
	"title": "Home",
	"metadata": {
		"page_title": "Home",
		"page_url": "/",
		"page_status": "published",
		"page_sections": [
			{"id": "sec-hero", "title": "Hero", "metadata": {
				"section_id": "hero", "section_label": "Hero", "display_order": 1, "is_active": true,
				"content_block": {"id": "blk-hero", "metadata": {
					"block_name": "Hero Block", "block_type": "hero", "headline": "Welcome aboard",
					"call_to_action": {"text": "Start", "url": "/start", "style": "outline"}
				}}
			}},
			{"id": "sec-old", "title": "Old", "metadata": {
				"section_id": "old", "section_label": "Old", "display_order": 2, "is_active": false
			}}
		]
	}
}`

func fixturePages(t *testing.T) []domain.Page {
	t.Helper()
	var page domain.Page
	if err := json.Unmarshal([]byte(homePageJSON), &page); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return []domain.Page{page}
}

type fakePages struct {
	pages []domain.Page
	err   error
}

func (f *fakePages) ListPages(context.Context) ([]domain.Page, error) { return f.pages, f.err }

func (f *fakePages) GetPage(_ context.Context, slug string) (*domain.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.pages {
		if f.pages[i].Slug == slug {
			return &f.pages[i], nil
		}
	}
	return nil, nil
}

func (f *fakePages) HomePage(context.Context) (*domain.Page, []domain.Page, error) {
	if f.err != nil || len(f.pages) == 0 {
		return nil, f.pages, f.err
	}
	for i := range f.pages {
		if f.pages[i].Metadata.PageURL == "/" {
			return &f.pages[i], f.pages, nil
		}
	}
	return &f.pages[0], f.pages, nil
}

func (f *fakePages) ListSections(context.Context) ([]domain.Section, error) {
	var out []domain.Section
	for _, p := range f.pages {
		out = append(out, p.Sections()...)
	}
	return out, f.err
}

func (f *fakePages) ListContentBlocks(context.Context) ([]domain.ContentBlock, error) {
	return []domain.ContentBlock{}, f.err
}

func (f *fakePages) ListTemplates(context.Context) ([]domain.Template, error) {
	return []domain.Template{}, f.err
}

type fakeEditor struct {
	err            error
	sectionIDs     []string
	blockIDs       []string
	sectionPatches []domain.SectionPatch
	blockPatches   []domain.ContentBlockPatch
	saves          int
}

func (f *fakeEditor) UpdateSection(_ context.Context, id string, patch domain.SectionPatch) (*domain.Object, error) {
	f.sectionIDs = append(f.sectionIDs, id)
	f.sectionPatches = append(f.sectionPatches, patch)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Object{ID: id, Type: domain.TypeSection}, nil
}

func (f *fakeEditor) UpdateContentBlock(_ context.Context, id string, patch domain.ContentBlockPatch) (*domain.Object, error) {
	f.blockIDs = append(f.blockIDs, id)
	f.blockPatches = append(f.blockPatches, patch)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Object{ID: id, Type: domain.TypeContentBlock}, nil
}

func (f *fakeEditor) Save(_ context.Context, section domain.Section, sp domain.SectionPatch, block *domain.ContentBlock, bp domain.ContentBlockPatch) (ports.SaveResult, error) {
	f.saves++
	f.sectionPatches = append(f.sectionPatches, sp)
	f.blockPatches = append(f.blockPatches, bp)
	if f.err != nil {
		return ports.SaveResult{}, f.err
	}
	result := ports.SaveResult{}
	if !sp.IsEmpty() {
		result.Section = &domain.Object{ID: section.ID}
	}
	if block != nil && !bp.IsEmpty() {
		result.ContentBlock = &domain.Object{ID: block.ID}
	}
	return result, nil
}

func newTestRouter(t *testing.T, cfg *config.Config, pages ports.PageService, editor ports.EditorService) http.Handler {
	t.Helper()
	engine, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	if cfg == nil {
		cfg = &config.Config{JWTSecret: "test-secret", SaveCloseDelay: 1500 * time.Millisecond}
	}
	return NewRouter(cfg, pages, editor, engine, nil)
}

var errUpstream = errors.New("dial tcp 10.0.0.1:443: connection refused")
