package ports

import (
	"context"

	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/core/domain"
)

// ObjectStore is the raw content store: the Cosmic bucket or the local sqlite
// table. Absent objects are reported with a not-found category error.
type ObjectStore interface {
	Find(ctx context.Context, q domain.Query) ([]domain.Object, error)
	FindOne(ctx context.Context, q domain.Query) (*domain.Object, error)
	UpdateOne(ctx context.Context, id string, metadata map[string]any) (*domain.Object, error)
} // ObjectStore ends here

// ContentGateway reads and writes typed records. Not-found lists are empty and
// not-found single reads return nil without an error.
type ContentGateway interface {
	ListPages(ctx context.Context) ([]domain.Page, error)
	GetPageBySlug(ctx context.Context, slug string) (*domain.Page, error)
	ListSections(ctx context.Context) ([]domain.Section, error)
	ListContentBlocks(ctx context.Context) ([]domain.ContentBlock, error)
	ListTemplates(ctx context.Context) ([]domain.Template, error)
	GetSection(ctx context.Context, id string) (*domain.Section, error)
	GetContentBlock(ctx context.Context, id string) (*domain.ContentBlock, error)
	UpdateSection(ctx context.Context, id string, patch domain.SectionPatch) (*domain.Object, error)
	UpdateContentBlock(ctx context.Context, id string, patch domain.ContentBlockPatch) (*domain.Object, error)
}

// PageService serves pages to the API and the UI shell
type PageService interface {
	ListPages(ctx context.Context) ([]domain.Page, error)
	GetPage(ctx context.Context, slug string) (*domain.Page, error)
	HomePage(ctx context.Context) (*domain.Page, []domain.Page, error)
	ListSections(ctx context.Context) ([]domain.Section, error)
	ListContentBlocks(ctx context.Context) ([]domain.ContentBlock, error)
	ListTemplates(ctx context.Context) ([]domain.Template, error)
}

// EditorService applies section and content block patches
type EditorService interface {
	UpdateSection(ctx context.Context, id string, patch domain.SectionPatch) (*domain.Object, error)
	UpdateContentBlock(ctx context.Context, id string, patch domain.ContentBlockPatch) (*domain.Object, error)
	// Save sends the section and block diffs as two independent updates,
	// skipping whichever is empty.
	Save(ctx context.Context, section domain.Section, sectionPatch domain.SectionPatch, block *domain.ContentBlock, blockPatch domain.ContentBlockPatch) (SaveResult, error)
}

// SaveResult reports which updates an editor save issued.
type SaveResult struct {
	Section      *domain.Object `json:"section,omitempty"`
	ContentBlock *domain.Object `json:"content_block,omitempty"`
}

func (r SaveResult) Changed() bool {
	return r.Section != nil || r.ContentBlock != nil
}
