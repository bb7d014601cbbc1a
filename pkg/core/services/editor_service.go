package services

import (
	"context"

	goerrors "github.com/goliatone/go-errors"

	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/core/domain"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/logging"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/ports"
)

type EditorService struct {
	gateway ports.ContentGateway
	logger  logging.Logger
}

var _ ports.EditorService = (*EditorService)(nil)

func NewEditorService(gateway ports.ContentGateway, logger logging.Logger) *EditorService {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &EditorService{gateway: gateway, logger: logger}
}

func (s *EditorService) UpdateSection(ctx context.Context, id string, patch domain.SectionPatch) (*domain.Object, error) {
	if id == "" {
		return nil, goerrors.New("id is required", goerrors.CategoryValidation)
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return s.gateway.UpdateSection(ctx, id, patch)
}

func (s *EditorService) UpdateContentBlock(ctx context.Context, id string, patch domain.ContentBlockPatch) (*domain.Object, error) {
	if id == "" {
		return nil, goerrors.New("id is required", goerrors.CategoryValidation)
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return s.gateway.UpdateContentBlock(ctx, id, patch)
}

// Save issues the section update and then the content block update, each only
// when its patch is non-empty. The first failure stops the save; a section
// update that already went through is reported in the result.
func (s *EditorService) Save(ctx context.Context, section domain.Section, sectionPatch domain.SectionPatch, block *domain.ContentBlock, blockPatch domain.ContentBlockPatch) (ports.SaveResult, error) {
	var result ports.SaveResult
	log := s.logger.WithContext(ctx).WithFields(map[string]any{"section": section.ID})

	if !sectionPatch.IsEmpty() {
		obj, err := s.UpdateSection(ctx, section.ID, sectionPatch)
		if err != nil {
			log.Warn("section update failed", "error", err)
			return result, err
		}
		result.Section = obj
	}

	if block != nil && block.ID != "" && !blockPatch.IsEmpty() {
		obj, err := s.UpdateContentBlock(ctx, block.ID, blockPatch)
		if err != nil {
			log.Warn("content block update failed", "block", block.ID, "error", err)
			return result, err
		}
		result.ContentBlock = obj
	}

	log.Info("editor save", "section_changed", result.Section != nil, "block_changed", result.ContentBlock != nil)
	return result, nil
}
