package services

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/core/domain"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/logging"
)

type fakeGateway struct {
	pages          []domain.Page
	err            error
	updateErr      error
	sectionCalls   []map[string]any
	blockCalls     []map[string]any
	sectionCallIDs []string
	blockCallIDs   []string
}

func (f *fakeGateway) ListPages(context.Context) ([]domain.Page, error) { return f.pages, f.err }
func (f *fakeGateway) GetPageBySlug(_ context.Context, slug string) (*domain.Page, error) {
	for i := range f.pages {
		if f.pages[i].Slug == slug {
			return &f.pages[i], nil
		}
	}
	return nil, f.err
}
func (f *fakeGateway) ListSections(context.Context) ([]domain.Section, error) { return nil, f.err }
func (f *fakeGateway) ListContentBlocks(context.Context) ([]domain.ContentBlock, error) {
	return nil, f.err
}
func (f *fakeGateway) ListTemplates(context.Context) ([]domain.Template, error) { return nil, f.err }
func (f *fakeGateway) GetSection(context.Context, string) (*domain.Section, error) {
	return nil, f.err
}
func (f *fakeGateway) GetContentBlock(context.Context, string) (*domain.ContentBlock, error) {
	return nil, f.err
}
func (f *fakeGateway) UpdateSection(_ context.Context, id string, p domain.SectionPatch) (*domain.Object, error) {
	f.sectionCallIDs = append(f.sectionCallIDs, id)
	f.sectionCalls = append(f.sectionCalls, p.Metadata())
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &domain.Object{ID: id}, nil
}
func (f *fakeGateway) UpdateContentBlock(_ context.Context, id string, p domain.ContentBlockPatch) (*domain.Object, error) {
	f.blockCallIDs = append(f.blockCallIDs, id)
	f.blockCalls = append(f.blockCalls, p.Metadata())
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &domain.Object{ID: id}, nil
}

func TestHomePageSelection(t *testing.T) {
	ctx := context.Background()

	gw := &fakeGateway{pages: []domain.Page{
		{Slug: "about", Metadata: domain.PageMetadata{PageURL: "/about"}},
		{Slug: "homepage", Metadata: domain.PageMetadata{PageURL: "/"}},
	}}
	home, pages, err := NewPageService(gw).HomePage(ctx)
	if err != nil || home == nil || home.Slug != "homepage" || len(pages) != 2 {
		t.Fatalf("HomePage = %+v, %d pages, %v", home, len(pages), err)
	}

	gw = &fakeGateway{pages: []domain.Page{{Slug: "first"}, {Slug: "second"}}}
	home, _, _ = NewPageService(gw).HomePage(ctx)
	if home == nil || home.Slug != "first" {
		t.Fatalf("expected first page fallback, got %+v", home)
	}

	home, pages, err = NewPageService(&fakeGateway{}).HomePage(ctx)
	if err != nil || home != nil || len(pages) != 0 {
		t.Fatalf("expected no home page, got %+v %v", home, err)
	}
}

func TestGetPageMissingIsNil(t *testing.T) {
	page, err := NewPageService(&fakeGateway{}).GetPage(context.Background(), "missing")
	if err != nil || page != nil {
		t.Fatalf("GetPage = %+v, %v", page, err)
	}
}

func TestEditorRejectsInvalidPatch(t *testing.T) {
	gw := &fakeGateway{}
	svc := NewEditorService(gw, logging.NoOp())
	neg := -3

	if _, err := svc.UpdateSection(context.Background(), "s1", domain.SectionPatch{DisplayOrder: &neg}); !goerrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.UpdateSection(context.Background(), "", domain.SectionPatch{}); !goerrors.IsValidation(err) {
		t.Fatalf("expected validation error for missing id, got %v", err)
	}
	if len(gw.sectionCalls) != 0 {
		t.Fatalf("gateway must not be called, got %v", gw.sectionCalls)
	}
}

func editorFixture() (domain.Section, *domain.ContentBlock) {
	block := &domain.ContentBlock{ID: "blk-1", Metadata: domain.BlockMetadata{
		Headline:     "Hello",
		CallToAction: &domain.CallToAction{Text: "Go", URL: "/go", Style: domain.CTAOutline},
	}}
	section := domain.Section{ID: "sec-1", Metadata: domain.SectionMetadata{
		SectionID: "hero", SectionLabel: "A", DisplayOrder: 1, IsActive: true, ContentBlock: block,
	}}
	return section, block
}

func TestSessionSaveSendsOnlyChangedSectionKeys(t *testing.T) {
	gw := &fakeGateway{}
	session := NewSession(NewEditorService(gw, logging.NoOp()))
	section, block := editorFixture()

	session.Open(section, block)
	sf, bf := session.Fields()
	sf.Label = "B"
	if err := session.Edit(sf, bf); err != nil {
		t.Fatal(err)
	}

	result, err := session.Save(context.Background())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if session.State() != StateSuccess {
		t.Fatalf("state = %s", session.State())
	}
	if len(gw.sectionCalls) != 1 || len(gw.sectionCalls[0]) != 1 || gw.sectionCalls[0]["section_label"] != "B" {
		t.Fatalf("section calls = %v", gw.sectionCalls)
	}
	if len(gw.blockCalls) != 0 {
		t.Fatalf("unedited block must not be updated, got %v", gw.blockCalls)
	}
	if result.Section == nil || result.ContentBlock != nil {
		t.Fatalf("result = %+v", result)
	}
}

func TestSessionSaveBothUpdates(t *testing.T) {
	gw := &fakeGateway{}
	session := NewSession(NewEditorService(gw, logging.NoOp()))
	section, block := editorFixture()

	session.Open(section, block)
	sf, bf := session.Fields()
	sf.IsActive = false
	bf.CTAText = "Start"
	_ = session.Edit(sf, bf)

	if _, err := session.Save(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(gw.sectionCallIDs) != 1 || gw.sectionCallIDs[0] != "sec-1" {
		t.Fatalf("section ids = %v", gw.sectionCallIDs)
	}
	if len(gw.blockCallIDs) != 1 || gw.blockCallIDs[0] != "blk-1" {
		t.Fatalf("block ids = %v", gw.blockCallIDs)
	}
	cta, _ := gw.blockCalls[0]["call_to_action"].(map[string]any)
	if cta["text"] != "Start" || cta["style"] != "outline" {
		t.Fatalf("cta = %v", cta)
	}
}

func TestSessionNoChangesIssuesNoCalls(t *testing.T) {
	gw := &fakeGateway{}
	session := NewSession(NewEditorService(gw, logging.NoOp()))
	section, block := editorFixture()
	session.Open(section, block)

	if _, err := session.Save(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(gw.sectionCalls)+len(gw.blockCalls) != 0 {
		t.Fatalf("expected no calls, got %v %v", gw.sectionCalls, gw.blockCalls)
	}
	if session.State() != StateSuccess {
		t.Fatalf("state = %s", session.State())
	}
}

func TestSessionErrorIsResumable(t *testing.T) {
	gw := &fakeGateway{updateErr: errors.New("upstream down")}
	session := NewSession(NewEditorService(gw, logging.NoOp()))
	section, block := editorFixture()
	session.Open(section, block)

	sf, bf := session.Fields()
	sf.Label = "Edited"
	_ = session.Edit(sf, bf)

	if _, err := session.Save(context.Background()); err == nil {
		t.Fatal("expected save error")
	}
	if session.State() != StateError || session.Message() != SaveFailedMessage {
		t.Fatalf("state = %s, message = %q", session.State(), session.Message())
	}
	if got, _ := session.Fields(); got.Label != "Edited" {
		t.Fatalf("entered values lost: %+v", got)
	}

	gw.updateErr = nil
	if _, err := session.Retry(context.Background()); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if session.State() != StateSuccess {
		t.Fatalf("state after retry = %s", session.State())
	}
	if len(gw.sectionCalls) != 2 {
		t.Fatalf("expected two attempts, got %d", len(gw.sectionCalls))
	}
}

func TestSessionTransitions(t *testing.T) {
	session := NewSession(NewEditorService(&fakeGateway{}, logging.NoOp()))
	if session.State() != StateIdle {
		t.Fatalf("initial state = %s", session.State())
	}
	if _, err := session.Save(context.Background()); err == nil {
		t.Fatal("save from idle must fail")
	}
	if _, err := session.Retry(context.Background()); err == nil {
		t.Fatal("retry from idle must fail")
	}
	if err := session.Edit(domain.SectionFields{}, domain.BlockFields{}); err == nil {
		t.Fatal("edit from idle must fail")
	}

	section, block := editorFixture()
	session.Open(section, block)
	if session.State() != StateEditing {
		t.Fatalf("state = %s", session.State())
	}
	session.Close()
	if session.State() != StateIdle {
		t.Fatalf("state after close = %s", session.State())
	}
}

func TestSessionWithoutBlockIgnoresBlockFields(t *testing.T) {
	gw := &fakeGateway{}
	session := NewSession(NewEditorService(gw, logging.NoOp()))
	section := domain.Section{ID: "sec-9", Metadata: domain.SectionMetadata{SectionID: "footer", SectionLabel: "Footer"}}
	session.Open(section, nil)

	_ = session.Edit(domain.SectionFields{Label: "Footer"}, domain.BlockFields{Headline: "ignored"})
	sp, bp := session.Patches()
	if !sp.IsEmpty() || !bp.IsEmpty() {
		t.Fatalf("patches = %v %v", sp.Metadata(), bp.Metadata())
	}
}

func TestSaveStopsAtFailedSectionUpdate(t *testing.T) {
	gw := &fakeGateway{updateErr: errors.New("upstream down")}
	session := NewSession(NewEditorService(gw, logging.NoOp()))
	section, block := editorFixture()
	session.Open(section, block)

	sf, bf := session.Fields()
	sf.Label = "Edited"
	bf.Headline = "Edited headline"
	_ = session.Edit(sf, bf)

	if _, err := session.Save(context.Background()); err == nil {
		t.Fatal("expected save error")
	}
	if len(gw.sectionCallIDs) != 1 || len(gw.blockCallIDs) != 0 {
		t.Fatalf("section calls = %v, block calls = %v", gw.sectionCallIDs, gw.blockCallIDs)
	}

	gw.updateErr = nil
	if _, err := session.Retry(context.Background()); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if len(gw.sectionCallIDs) != 2 || len(gw.blockCallIDs) != 1 {
		t.Fatalf("retry must send both: section calls = %v, block calls = %v", gw.sectionCallIDs, gw.blockCallIDs)
	}
	if gw.blockCalls[0]["headline"] != "Edited headline" {
		t.Fatalf("block call = %v", gw.blockCalls[0])
	}
}
