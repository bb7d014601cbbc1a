// Package cms maps raw store objects onto the typed page model and applies the
// gateway error policy: not-found becomes empty or nil, every other failure
// is logged and replaced by a generic error.
package cms

import (
	"cmp"
	"context"
	"encoding/json"
	"slices"

	goerrors "github.com/goliatone/go-errors"

	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/core/domain"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/logging"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/ports"
)

type Gateway struct {
	store  ports.ObjectStore
	logger logging.Logger
}

var _ ports.ContentGateway = (*Gateway)(nil)

func NewGateway(store ports.ObjectStore, logger logging.Logger) *Gateway {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Gateway{store: store, logger: logger}
}

func (g *Gateway) ListPages(ctx context.Context) ([]domain.Page, error) {
	objects, err := g.find(ctx, domain.Query{Type: domain.TypePage, Props: domain.DefaultProps, Depth: 2}, "Failed to fetch site pages")
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Page](ctx, g, objects, "Failed to fetch site pages")
}

func (g *Gateway) GetPageBySlug(ctx context.Context, slug string) (*domain.Page, error) {
	obj, err := g.findOne(ctx, domain.Query{Type: domain.TypePage, Slug: slug, Props: domain.DefaultProps, Depth: 2}, "Failed to fetch page")
	if err != nil || obj == nil {
		return nil, err
	}
	return decodeOne[domain.Page](ctx, g, *obj, "Failed to fetch page")
}

// ListSections returns every section ordered by display_order. Equal orders
// keep the store's order.
func (g *Gateway) ListSections(ctx context.Context) ([]domain.Section, error) {
	objects, err := g.find(ctx, domain.Query{Type: domain.TypeSection, Props: domain.DefaultProps, Depth: 1}, "Failed to fetch page sections")
	if err != nil {
		return nil, err
	}
	sections, err := decodeAll[domain.Section](ctx, g, objects, "Failed to fetch page sections")
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(sections, func(a, b domain.Section) int {
		return cmp.Compare(a.Metadata.DisplayOrder, b.Metadata.DisplayOrder)
	})
	return sections, nil
}

func (g *Gateway) ListContentBlocks(ctx context.Context) ([]domain.ContentBlock, error) {
	objects, err := g.find(ctx, domain.Query{Type: domain.TypeContentBlock, Props: domain.DefaultProps}, "Failed to fetch content blocks")
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.ContentBlock](ctx, g, objects, "Failed to fetch content blocks")
}

func (g *Gateway) ListTemplates(ctx context.Context) ([]domain.Template, error) {
	objects, err := g.find(ctx, domain.Query{Type: domain.TypeTemplate, Props: domain.DefaultProps, Depth: 1}, "Failed to fetch page templates")
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Template](ctx, g, objects, "Failed to fetch page templates")
}

func (g *Gateway) GetSection(ctx context.Context, id string) (*domain.Section, error) {
	obj, err := g.findOne(ctx, domain.Query{Type: domain.TypeSection, ID: id, Props: domain.DefaultProps, Depth: 1}, "Failed to fetch page section")
	if err != nil || obj == nil {
		return nil, err
	}
	return decodeOne[domain.Section](ctx, g, *obj, "Failed to fetch page section")
}

func (g *Gateway) GetContentBlock(ctx context.Context, id string) (*domain.ContentBlock, error) {
	obj, err := g.findOne(ctx, domain.Query{Type: domain.TypeContentBlock, ID: id, Props: domain.DefaultProps}, "Failed to fetch content block")
	if err != nil || obj == nil {
		return nil, err
	}
	return decodeOne[domain.ContentBlock](ctx, g, *obj, "Failed to fetch content block")
}

func (g *Gateway) UpdateSection(ctx context.Context, id string, patch domain.SectionPatch) (*domain.Object, error) {
	return g.update(ctx, id, patch.Metadata(), "Failed to update section")
}

func (g *Gateway) UpdateContentBlock(ctx context.Context, id string, patch domain.ContentBlockPatch) (*domain.Object, error) {
	return g.update(ctx, id, patch.Metadata(), "Failed to update content block")
}

func (g *Gateway) find(ctx context.Context, q domain.Query, failure string) ([]domain.Object, error) {
	objects, err := g.store.Find(ctx, q)
	if err != nil {
		if domain.IsNotFound(err) {
			return []domain.Object{}, nil
		}
		return nil, g.fail(ctx, err, failure, domain.CodeFetchFailed, map[string]any{"type": q.Type})
	}
	return objects, nil
}

func (g *Gateway) findOne(ctx context.Context, q domain.Query, failure string) (*domain.Object, error) {
	obj, err := g.store.FindOne(ctx, q)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, nil
		}
		return nil, g.fail(ctx, err, failure, domain.CodeFetchFailed, map[string]any{"type": q.Type, "slug": q.Slug, "id": q.ID})
	}
	return obj, nil
}

// update forwards the patch as-is. Concurrent edits are last writer wins.
func (g *Gateway) update(ctx context.Context, id string, metadata map[string]any, failure string) (*domain.Object, error) {
	obj, err := g.store.UpdateOne(ctx, id, metadata)
	if err != nil {
		return nil, g.fail(ctx, err, failure, domain.CodeUpdateFailed, map[string]any{"id": id})
	}
	g.logger.WithContext(ctx).Debug("object updated", "id", id, "keys", len(metadata))
	return obj, nil
}

// fail logs the cause and returns an error whose message is safe to show to
// clients. The cause is kept as Source for errors.Is/As.
func (g *Gateway) fail(ctx context.Context, cause error, message, code string, fields map[string]any) error {
	g.logger.WithContext(ctx).WithFields(fields).Error(message, "error", cause)
	wrapped := goerrors.New(message, goerrors.CategoryExternal).WithTextCode(code)
	wrapped.Source = cause
	return wrapped
}

func decodeAll[T any](ctx context.Context, g *Gateway, objects []domain.Object, failure string) ([]T, error) {
	out := make([]T, 0, len(objects))
	for _, obj := range objects {
		item, err := decodeOne[T](ctx, g, obj, failure)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, nil
}

func decodeOne[T any](ctx context.Context, g *Gateway, obj domain.Object, failure string) (*T, error) {
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, g.fail(ctx, err, failure, domain.CodeFetchFailed, map[string]any{"id": obj.ID})
	}
	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, g.fail(ctx, err, failure, domain.CodeFetchFailed, map[string]any{"id": obj.ID})
	}
	return &item, nil
}
