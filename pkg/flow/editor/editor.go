// Package editor coordinates question mutations.
//
// An Editor opens Sessions against an abstract question [Service]. A
// session is either an edit of an existing question or a draft for a
// new one, optionally created "between" a parent and one of its
// existing children (the add-child flow started from the plus marker
// on a connection).
//
// # Add-child drafts
//
// When a draft is created with both a parent and a child id, the child
// slot is reserved: the draft must keep routing to that child so the
// new question slots into the existing connection instead of orphaning
// the subtree. For branching drafts exactly one answer option carries
// the reserved id at all times; reassigning it through ConnectOption
// moves the reservation to the other option rather than dropping it.
// For single-route drafts the prefilled next id is locked outright.
//
// # Submitting
//
// Submit validates the draft first and refuses to touch the store
// while any violation remains; all violations are reported together.
// A single editor-wide busy flag rejects overlapping submits. After a
// successful save the editor fires its saved callback, which the
// owning canvas uses to refetch and rebuild the scene.
package editor

import (
	"context"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/dentflow/dentflow/pkg/errors"
	"github.com/dentflow/dentflow/pkg/question"
)

// Service is the persistence boundary the editor drives. Implementations
// wrap the question store (or a remote API) and may block; every method
// honors its context.
type Service interface {
	FetchQuestions(ctx context.Context) ([]question.Record, error)
	FetchQuestionByID(ctx context.Context, id string) (question.Record, error)
	CreateQuestion(ctx context.Context, req CreateRequest) error
	UpdateQuestion(ctx context.Context, id string, rec question.Record) error
}

// CreateRequest is the payload for a new question. ParentID and
// ChildID are set for add-child drafts so the backend can splice the
// new question into the existing parent-to-child connection.
type CreateRequest struct {
	question.Record
	ParentID string `json:"parentId,omitempty"`
	ChildID  string `json:"childId,omitempty"`
}

// Editor opens edit and create sessions and serializes their submits.
type Editor struct {
	svc     Service
	logger  *log.Logger
	onSaved func()
	busy    atomic.Bool
}

// Option configures an Editor.
type Option func(*Editor)

// WithSavedFunc registers a callback fired after every successful save.
func WithSavedFunc(fn func()) Option {
	return func(e *Editor) { e.onSaved = fn }
}

// New creates an editor backed by svc.
func New(svc Service, logger *log.Logger, opts ...Option) *Editor {
	e := &Editor{svc: svc, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Edit opens a session for an existing question. The current record is
// fetched and prefilled into the draft.
func (e *Editor) Edit(ctx context.Context, id string) (*Session, error) {
	rec, err := e.svc.FetchQuestionByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "loading question %s", id)
	}
	applyDraftDefaults(&rec)
	return &Session{ed: e, mode: ModeEdit, questionID: id, draft: rec}, nil
}

// NewQuestion opens a session for a brand-new question with no parent.
func (e *Editor) NewQuestion() *Session {
	s := &Session{ed: e, mode: ModeCreate}
	s.draft = emptyDraft("")
	return s
}

// AddChild opens a session for a question inserted between parentID and
// its existing child childID. The draft starts with the child slot
// reserved.
func (e *Editor) AddChild(parentID, childID string) *Session {
	s := &Session{ed: e, mode: ModeCreate, parentID: parentID, childID: childID}
	s.draft = emptyDraft(childID)
	return s
}

// emptyDraft is the starting record of a create session. next prefills
// the single-route target for add-child drafts.
func emptyDraft(next string) question.Record {
	return question.Record{
		Urgency: "low",
		Action: &question.Action{
			Name:   question.Text{EN: "Next", Dutch: "Volgende"},
			NextID: next,
		},
	}
}

// applyDraftDefaults fills the optional fields a stored record may omit
// so session setters always have something to write into.
func applyDraftDefaults(rec *question.Record) {
	if rec.Urgency == "" {
		rec.Urgency = "low"
	}
	if rec.Action == nil {
		rec.Action = &question.Action{Name: question.Text{EN: "Next", Dutch: "Volgende"}}
	}
}
