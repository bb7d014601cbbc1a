package services

import (
	"context"
	"fmt"
	"sync"

	goerrors "github.com/goliatone/go-errors"

	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/core/domain"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/ports"
)

type SessionState string

const (
	StateIdle    SessionState = "idle"
	StateEditing SessionState = "editing"
	StateSaving  SessionState = "saving"
	StateSuccess SessionState = "success"
	StateError   SessionState = "error"
)

// SaveFailedMessage is shown to the user when a save fails.
const SaveFailedMessage = "Failed to save changes. Please try again."

// Session is one edit of a section and its content block. Saves diff the
// edited fields against the values loaded by Open.
type Session struct {
	mu     sync.Mutex
	editor ports.EditorService

	state   SessionState
	section domain.Section
	block   *domain.ContentBlock

	originalSection domain.SectionFields
	originalBlock   domain.BlockFields
	sectionFields   domain.SectionFields
	blockFields     domain.BlockFields

	message string
	result  ports.SaveResult
}

func NewSession(editor ports.EditorService) *Session {
	return &Session{editor: editor, state: StateIdle}
}

// Open seeds the form from the loaded records and enters editing.
func (s *Session) Open(section domain.Section, block *domain.ContentBlock) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.section = section
	s.block = block
	s.originalSection = domain.SectionFieldsOf(section)
	s.originalBlock = domain.BlockFieldsOf(block)
	s.sectionFields = s.originalSection
	s.blockFields = s.originalBlock
	s.message = ""
	s.result = ports.SaveResult{}
	s.state = StateEditing
}

// Edit replaces the form values. Allowed while editing or after a failed save.
func (s *Session) Edit(section domain.SectionFields, block domain.BlockFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateEditing && s.state != StateError {
		return s.transitionError("edit")
	}
	s.sectionFields = section
	if s.block != nil {
		s.blockFields = block
	}
	s.state = StateEditing
	return nil
}

// Save sends the diffs. On failure the session moves to error and keeps the
// entered values so the user can retry.
func (s *Session) Save(ctx context.Context) (ports.SaveResult, error) {
	s.mu.Lock()
	if s.state != StateEditing && s.state != StateError {
		defer s.mu.Unlock()
		return ports.SaveResult{}, s.transitionError("save")
	}
	s.state = StateSaving
	s.message = ""
	section, block := s.section, s.block
	sectionPatch, blockPatch := s.patchesLocked()
	s.mu.Unlock()

	result, err := s.editor.Save(ctx, section, sectionPatch, block, blockPatch)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = result
	if err != nil {
		s.state = StateError
		s.message = SaveFailedMessage
		return result, err
	}
	s.state = StateSuccess
	return result, nil
}

// Retry re-sends the current values after a failed save.
func (s *Session) Retry(ctx context.Context) (ports.SaveResult, error) {
	s.mu.Lock()
	if s.state != StateError {
		defer s.mu.Unlock()
		return ports.SaveResult{}, s.transitionError("retry")
	}
	s.mu.Unlock()
	return s.Save(ctx)
}

// Close discards the session.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Message is the user-facing error of the last failed save.
func (s *Session) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

func (s *Session) Fields() (domain.SectionFields, domain.BlockFields) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sectionFields, s.blockFields
}

// Patches returns what Save would send right now.
func (s *Session) Patches() (domain.SectionPatch, domain.ContentBlockPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.patchesLocked()
}

func (s *Session) patchesLocked() (domain.SectionPatch, domain.ContentBlockPatch) {
	sectionPatch := domain.DiffSection(s.originalSection, s.sectionFields)
	var blockPatch domain.ContentBlockPatch
	if s.block != nil {
		blockPatch = domain.DiffContentBlock(s.originalBlock, s.blockFields)
	}
	return sectionPatch, blockPatch
}

func (s *Session) transitionError(op string) error {
	return goerrors.New(fmt.Sprintf("editor session: cannot %s in state %s", op, s.state), goerrors.CategoryOperation)
}
