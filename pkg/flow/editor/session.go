package editor

import (
	"context"
	"strings"

	"github.com/dentflow/dentflow/pkg/errors"
	"github.com/dentflow/dentflow/pkg/question"
)

// Mode distinguishes edit sessions from create sessions.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// Session is one in-flight question mutation. Sessions are not safe for
// concurrent use; each belongs to a single UI interaction.
type Session struct {
	ed         *Editor
	mode       Mode
	questionID string
	parentID   string
	childID    string
	draft      question.Record
}

// allTypes are the question types offered for top-level questions.
var allTypes = []question.Type{
	question.TypeBoolean,
	question.TypeSelection,
	question.TypeNewComplaint,
	question.TypeInputFields,
	question.TypeResult,
}

// childTypes are the question types allowed when inserting between a
// parent and an existing child. Terminal types (result, complaint) are
// excluded because they cannot route onward to the reserved child.
var childTypes = []question.Type{
	question.TypeInputFields,
	question.TypeSelection,
	question.TypeBoolean,
}

// Mode returns whether the session edits an existing question or
// drafts a new one.
func (s *Session) Mode() Mode { return s.mode }

// Draft returns a copy of the current draft record.
func (s *Session) Draft() question.Record { return s.draft }

// Reserved returns the child id this draft must keep routing to, if
// the session came from the add-child flow.
func (s *Session) Reserved() (string, bool) {
	ok := s.parentID != "" && s.childID != ""
	return s.childID, ok
}

// AllowedTypes lists the question types this session may use.
func (s *Session) AllowedTypes() []question.Type {
	if s.parentID != "" {
		return childTypes
	}
	return allTypes
}

// SetType switches the draft's question type. Switching a create
// session to boolean initializes the Yes/No options; for add-child
// drafts the reserved child lands on the Yes option.
func (s *Session) SetType(t question.Type) error {
	allowed := false
	for _, a := range s.AllowedTypes() {
		if a == t {
			allowed = true
			break
		}
	}
	if !allowed {
		return errors.New(errors.ErrCodeUnsupported, "question type %q is not available here", t)
	}

	s.draft.Type = string(t)
	if t == question.TypeBoolean && s.mode == ModeCreate {
		yesNext := ""
		if reserved, ok := s.Reserved(); ok {
			yesNext = reserved
		}
		s.draft.Options = []question.RouteOption{
			{Name: question.Text{EN: "No", Dutch: "Nee"}},
			{Name: question.Text{EN: "Yes", Dutch: "Ja"}, NextID: yesNext},
		}
	}
	return nil
}

// SetMainText sets the bilingual question text.
func (s *Session) SetMainText(t question.Text) { s.draft.MainText = &t }

// SetPlaceholder sets the free-text placeholder of a complaint draft.
func (s *Session) SetPlaceholder(t question.Text) { s.draft.Placeholder = &t }

// SetUrgency sets the urgency of a result draft.
func (s *Session) SetUrgency(u string) { s.draft.Urgency = u }

// SetChoices replaces the options of a selection draft.
func (s *Session) SetChoices(opts []question.RouteOption) { s.draft.Options = opts }

// SetFields replaces the fields of an inputFields draft.
func (s *Session) SetFields(fields []question.InputField) { s.draft.Fields = fields }

// SetParagraphs replaces the paragraphs of a result draft.
func (s *Session) SetParagraphs(paragraphs []question.Text) { s.draft.Paragraphs = paragraphs }

// SetPoints replaces the bullet points of a result draft.
func (s *Session) SetPoints(points []question.Text) { s.draft.Points = points }

// SetNext routes the draft's single onward action. For add-child drafts
// the prefilled target is locked; the reservation cannot be rerouted.
func (s *Session) SetNext(nextID string) error {
	if _, ok := s.Reserved(); ok {
		return errors.New(errors.ErrCodeForbidden, "the onward connection is fixed to the existing child")
	}
	if s.draft.Action == nil {
		s.draft.Action = &question.Action{Name: question.Text{EN: "Next", Dutch: "Volgende"}}
	}
	s.draft.Action.NextID = nextID
	return nil
}

// ConnectOption routes one boolean answer (by its English name, "Yes"
// or "No") to nextID. In edit sessions the connections of a boolean
// question are fixed.
//
// When the draft carries a reserved child, the reservation always
// survives: assigning the child to one option removes it from the
// other, and overwriting the option that held the child moves the
// child to its counterpart.
func (s *Session) ConnectOption(optionName, nextID string) error {
	if s.mode == ModeEdit {
		return errors.New(errors.ErrCodeForbidden, "connections of a saved boolean question cannot change")
	}
	idx := s.optionIndex(optionName)
	if idx < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no option named %q", optionName)
	}

	reserved, ok := s.Reserved()
	if !ok {
		s.draft.Options[idx].NextID = nextID
		return nil
	}

	counterpart := "No"
	if optionName == "No" {
		counterpart = "Yes"
	}
	other := s.optionIndex(counterpart)

	if nextID == reserved {
		if other >= 0 {
			s.draft.Options[other].NextID = ""
		}
		s.draft.Options[idx].NextID = reserved
		return nil
	}
	if s.draft.Options[idx].NextID == reserved && other >= 0 {
		s.draft.Options[other].NextID = reserved
	}
	s.draft.Options[idx].NextID = nextID
	return nil
}

func (s *Session) optionIndex(name string) int {
	for i, opt := range s.draft.Options {
		if opt.Name.EN == name {
			return i
		}
	}
	return -1
}

// Submit validates the draft and persists it. Validation failures are
// returned as a single INVALID_QUESTION error listing every violation;
// the store is not touched. Overlapping submits on the same editor are
// rejected with BUSY.
func (s *Session) Submit(ctx context.Context) error {
	if violations := s.Validate(); len(violations) > 0 {
		return errors.New(errors.ErrCodeInvalidQuestion, "%s", strings.Join(violations, "; "))
	}

	if !s.ed.busy.CompareAndSwap(false, true) {
		return errors.New(errors.ErrCodeBusy, "another save is in progress")
	}
	defer s.ed.busy.Store(false)

	var err error
	if s.mode == ModeEdit {
		err = s.ed.svc.UpdateQuestion(ctx, s.questionID, s.draft)
	} else {
		err = s.ed.svc.CreateQuestion(ctx, CreateRequest{Record: s.draft, ParentID: s.parentID, ChildID: s.childID})
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "saving question")
	}

	if s.ed.logger != nil {
		s.ed.logger.Info("question saved", "mode", s.mode, "id", s.questionID, "type", s.draft.Type)
	}
	if s.ed.onSaved != nil {
		s.ed.onSaved()
	}
	return nil
}
