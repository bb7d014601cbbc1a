package services

import (
	"context"

	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/core/domain"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/ports"
)

type PageService struct {
	gateway ports.ContentGateway
}

var _ ports.PageService = (*PageService)(nil)

func NewPageService(gateway ports.ContentGateway) *PageService {
	return &PageService{gateway: gateway}
}

func (s *PageService) ListPages(ctx context.Context) ([]domain.Page, error) {
	return s.gateway.ListPages(ctx)
}

// GetPage returns nil when no page has the slug.
func (s *PageService) GetPage(ctx context.Context, slug string) (*domain.Page, error) {
	if slug == "" {
		return nil, nil
	}
	return s.gateway.GetPageBySlug(ctx, slug)
}

// HomePage picks the page served at "/", falling back to the first page. It
// also returns every page for the navigation shell.
func (s *PageService) HomePage(ctx context.Context) (*domain.Page, []domain.Page, error) {
	pages, err := s.gateway.ListPages(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(pages) == 0 {
		return nil, pages, nil
	}
	for i := range pages {
		if pages[i].Metadata.PageURL == "/" {
			return &pages[i], pages, nil
		}
	}
	return &pages[0], pages, nil
}

func (s *PageService) ListSections(ctx context.Context) ([]domain.Section, error) {
	return s.gateway.ListSections(ctx)
}

func (s *PageService) ListContentBlocks(ctx context.Context) ([]domain.ContentBlock, error) {
	return s.gateway.ListContentBlocks(ctx)
}

func (s *PageService) ListTemplates(ctx context.Context) ([]domain.Template, error) {
	return s.gateway.ListTemplates(ctx)
}
