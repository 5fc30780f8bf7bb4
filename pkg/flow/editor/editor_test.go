package editor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dentflow/dentflow/pkg/errors"
	"github.com/dentflow/dentflow/pkg/question"
)

// fakeService records calls and can be made to block or fail.
type fakeService struct {
	records map[string]question.Record
	created []CreateRequest
	updated map[string]question.Record
	block   chan struct{}
	entered chan struct{}
	fail    error
}

func newFakeService() *fakeService {
	return &fakeService{
		records: map[string]question.Record{},
		updated: map[string]question.Record{},
	}
}

func (f *fakeService) FetchQuestions(ctx context.Context) ([]question.Record, error) {
	out := make([]question.Record, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeService) FetchQuestionByID(ctx context.Context, id string) (question.Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return question.Record{}, errors.New(errors.ErrCodeQuestionNotFound, "no question %s", id)
	}
	return rec, nil
}

func (f *fakeService) CreateQuestion(ctx context.Context, req CreateRequest) error {
	if f.entered != nil {
		close(f.entered)
	}
	if f.block != nil {
		<-f.block
	}
	if f.fail != nil {
		return f.fail
	}
	f.created = append(f.created, req)
	return nil
}

func (f *fakeService) UpdateQuestion(ctx context.Context, id string, rec question.Record) error {
	if f.fail != nil {
		return f.fail
	}
	f.updated[id] = rec
	return nil
}

// reservedOptions returns the English names of the options carrying id.
func reservedOptions(s *Session, id string) []string {
	var names []string
	for _, opt := range s.Draft().Options {
		if opt.NextID == id {
			names = append(names, opt.Name.EN)
		}
	}
	return names
}

func TestAddChild_BooleanDraftStartsReserved(t *testing.T) {
	ed := New(newFakeService(), nil)
	s := ed.AddChild("parent", "child")

	if err := s.SetType(question.TypeBoolean); err != nil {
		t.Fatalf("SetType: %v", err)
	}
	if got := reservedOptions(s, "child"); len(got) != 1 || got[0] != "Yes" {
		t.Fatalf("reservation starts on %v, want [Yes]", got)
	}
}

func TestConnectOption_ReservationFollowsMoves(t *testing.T) {
	ed := New(newFakeService(), nil)
	s := ed.AddChild("parent", "child")
	if err := s.SetType(question.TypeBoolean); err != nil {
		t.Fatalf("SetType: %v", err)
	}

	steps := []struct {
		option string
		nextID string
		holder string // option expected to hold the child afterwards
	}{
		// Giving No the child takes it from Yes.
		{"No", "child", "No"},
		// Pointing Yes elsewhere leaves the child with No.
		{"Yes", "other", "No"},
		// Overwriting No moves the child back to Yes.
		{"No", "third", "Yes"},
		// Reassigning the child again pulls it off Yes.
		{"No", "child", "No"},
	}

	for i, step := range steps {
		if err := s.ConnectOption(step.option, step.nextID); err != nil {
			t.Fatalf("step %d: ConnectOption(%s, %s): %v", i, step.option, step.nextID, err)
		}
		holders := reservedOptions(s, "child")
		if len(holders) != 1 || holders[0] != step.holder {
			t.Fatalf("step %d: child held by %v, want [%s]", i, holders, step.holder)
		}
	}
}

func TestConnectOption_PlainWithoutReservation(t *testing.T) {
	ed := New(newFakeService(), nil)
	s := ed.NewQuestion()
	if err := s.SetType(question.TypeBoolean); err != nil {
		t.Fatalf("SetType: %v", err)
	}

	if err := s.ConnectOption("Yes", "q1"); err != nil {
		t.Fatalf("ConnectOption: %v", err)
	}
	if err := s.ConnectOption("No", "q1"); err != nil {
		t.Fatalf("ConnectOption: %v", err)
	}
	// No reservation, so both options may target the same question.
	if got := reservedOptions(s, "q1"); len(got) != 2 {
		t.Errorf("options holding q1 = %v, want both", got)
	}
}

func TestConnectOption_LockedInEditMode(t *testing.T) {
	svc := newFakeService()
	svc.records["q1"] = question.Record{
		ID:   "q1",
		Type: string(question.TypeBoolean),
		Options: []question.RouteOption{
			{Name: question.Text{EN: "No", Dutch: "Nee"}, NextID: "a"},
			{Name: question.Text{EN: "Yes", Dutch: "Ja"}, NextID: "b"},
		},
	}
	ed := New(svc, nil)

	s, err := ed.Edit(context.Background(), "q1")
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	err = s.ConnectOption("Yes", "elsewhere")
	if !errors.Is(err, errors.ErrCodeForbidden) {
		t.Fatalf("ConnectOption in edit mode = %v, want FORBIDDEN", err)
	}
	if s.Draft().Options[1].NextID != "b" {
		t.Error("locked option was modified")
	}
}

func TestSetNext_LockedForAddChild(t *testing.T) {
	ed := New(newFakeService(), nil)
	s := ed.AddChild("parent", "child")
	if err := s.SetType(question.TypeSelection); err != nil {
		t.Fatalf("SetType: %v", err)
	}

	if err := s.SetNext("elsewhere"); !errors.Is(err, errors.ErrCodeForbidden) {
		t.Fatalf("SetNext = %v, want FORBIDDEN", err)
	}
	if got := s.Draft().Action.NextID; got != "child" {
		t.Errorf("Action.NextID = %q, want the reserved child", got)
	}
}

func TestSetType_RestrictedForChildDrafts(t *testing.T) {
	ed := New(newFakeService(), nil)
	s := ed.AddChild("parent", "child")

	for _, typ := range []question.Type{question.TypeResult, question.TypeNewComplaint} {
		if err := s.SetType(typ); !errors.Is(err, errors.ErrCodeUnsupported) {
			t.Errorf("SetType(%s) = %v, want UNSUPPORTED", typ, err)
		}
	}
	for _, typ := range []question.Type{question.TypeBoolean, question.TypeSelection, question.TypeInputFields} {
		if err := s.SetType(typ); err != nil {
			t.Errorf("SetType(%s) = %v, want allowed", typ, err)
		}
	}
}

func TestValidate_EnumeratesAllViolations(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *Session)
		want  []string
	}{
		{
			name:  "missing type",
			setup: func(s *Session) {},
			want: []string{
				"Question type is required",
				"Question (English) is required",
				"Question (Dutch) is required",
			},
		},
		{
			name: "complaint without placeholders",
			setup: func(s *Session) {
				s.SetType(question.TypeNewComplaint)
				s.SetMainText(question.Text{EN: "What happened?", Dutch: "Wat is er gebeurd?"})
			},
			want: []string{
				"Placeholder (English) is required",
				"Placeholder (Dutch) is required",
			},
		},
		{
			name: "result without content",
			setup: func(s *Session) {
				s.SetType(question.TypeResult)
				s.SetUrgency("")
			},
			want: []string{
				"At least one paragraph is required",
				"Urgency is required",
			},
		},
		{
			name: "selection with half-filled option",
			setup: func(s *Session) {
				s.SetType(question.TypeSelection)
				s.SetMainText(question.Text{EN: "Pick one", Dutch: "Kies er een"})
				s.SetChoices([]question.RouteOption{{Name: question.Text{EN: "Molar"}}})
			},
			want: []string{"Option 1 name (Dutch) is required"},
		},
		{
			name: "input field with spaced name",
			setup: func(s *Session) {
				s.SetType(question.TypeInputFields)
				s.SetMainText(question.Text{EN: "Your details", Dutch: "Uw gegevens"})
				s.SetFields([]question.InputField{{
					Name:        "first name",
					Placeholder: question.Text{EN: "First name", Dutch: "Voornaam"},
					FieldType:   "text",
				}})
			},
			want: []string{"Field 1 name cannot contain spaces"},
		},
		{
			name: "boolean with dangling options",
			setup: func(s *Session) {
				s.SetType(question.TypeBoolean)
				s.SetMainText(question.Text{EN: "Any pain?", Dutch: "Pijn?"})
			},
			want: []string{
				"Yes option must have a connected question",
				"No option must have a connected question",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed := New(newFakeService(), nil)
			s := ed.NewQuestion()
			tt.setup(s)

			got := s.Validate()
			for _, want := range tt.want {
				found := false
				for _, v := range got {
					if v == want {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("violations %v missing %q", got, want)
				}
			}
		})
	}
}

func TestValidate_CleanDraftPasses(t *testing.T) {
	ed := New(newFakeService(), nil)
	s := ed.NewQuestion()
	s.SetType(question.TypeBoolean)
	s.SetMainText(question.Text{EN: "Any pain?", Dutch: "Pijn?"})
	s.ConnectOption("Yes", "q-pain")
	s.ConnectOption("No", "q-done")

	if got := s.Validate(); len(got) != 0 {
		t.Errorf("Validate() = %v, want clean", got)
	}
}

func TestSubmit_BlockedByValidation(t *testing.T) {
	svc := newFakeService()
	ed := New(svc, nil)
	s := ed.NewQuestion()
	s.SetType(question.TypeBoolean)

	err := s.Submit(context.Background())
	if !errors.Is(err, errors.ErrCodeInvalidQuestion) {
		t.Fatalf("Submit = %v, want INVALID_QUESTION", err)
	}
	if !strings.Contains(errors.UserMessage(err), "Yes option must have a connected question") {
		t.Errorf("error %q does not list the violations", errors.UserMessage(err))
	}
	if len(svc.created) != 0 {
		t.Error("invalid draft reached the store")
	}
}

func TestSubmit_CreateCarriesParent(t *testing.T) {
	svc := newFakeService()
	saved := false
	ed := New(svc, nil, WithSavedFunc(func() { saved = true }))

	s := ed.AddChild("parent", "child")
	s.SetType(question.TypeBoolean)
	s.SetMainText(question.Text{EN: "Any pain?", Dutch: "Pijn?"})
	s.ConnectOption("No", "q-done")

	if err := s.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(svc.created) != 1 {
		t.Fatalf("created %d questions, want 1", len(svc.created))
	}
	if svc.created[0].ParentID != "parent" {
		t.Errorf("ParentID = %q, want %q", svc.created[0].ParentID, "parent")
	}
	if !saved {
		t.Error("saved callback did not fire")
	}
}

func TestSubmit_UpdatePersistsDraft(t *testing.T) {
	svc := newFakeService()
	svc.records["q1"] = question.Record{
		ID:       "q1",
		Type:     string(question.TypeNewComplaint),
		MainText: &question.Text{EN: "Old", Dutch: "Oud"},
		Placeholder: &question.Text{
			EN: "Describe it", Dutch: "Beschrijf het",
		},
	}
	ed := New(svc, nil)

	s, err := ed.Edit(context.Background(), "q1")
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	s.SetMainText(question.Text{EN: "New", Dutch: "Nieuw"})
	if err := s.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	got, ok := svc.updated["q1"]
	if !ok {
		t.Fatal("update never reached the store")
	}
	if got.MainText.EN != "New" {
		t.Errorf("persisted text = %q, want %q", got.MainText.EN, "New")
	}
}

func TestSubmit_RejectsOverlap(t *testing.T) {
	svc := newFakeService()
	svc.block = make(chan struct{})
	svc.entered = make(chan struct{})
	ed := New(svc, nil)

	mk := func() *Session {
		s := ed.NewQuestion()
		s.SetType(question.TypeBoolean)
		s.SetMainText(question.Text{EN: "Any pain?", Dutch: "Pijn?"})
		s.ConnectOption("Yes", "a")
		s.ConnectOption("No", "b")
		return s
	}

	first := mk()
	done := make(chan error, 1)
	go func() { done <- first.Submit(context.Background()) }()

	select {
	case <-svc.entered:
	case <-time.After(time.Second):
		t.Fatal("first submit never reached the store")
	}

	err := mk().Submit(context.Background())
	if !errors.Is(err, errors.ErrCodeBusy) {
		t.Fatalf("overlapping Submit = %v, want BUSY", err)
	}

	close(svc.block)
	if err := <-done; err != nil {
		t.Fatalf("first Submit: %v", err)
	}
}

func TestEdit_AppliesDraftDefaults(t *testing.T) {
	svc := newFakeService()
	svc.records["q1"] = question.Record{ID: "q1", Type: string(question.TypeSelection)}
	ed := New(svc, nil)

	s, err := ed.Edit(context.Background(), "q1")
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	d := s.Draft()
	if d.Urgency != "low" {
		t.Errorf("Urgency = %q, want default", d.Urgency)
	}
	if d.Action == nil || d.Action.Name.EN != "Next" {
		t.Errorf("Action = %+v, want default Next action", d.Action)
	}
}

func TestEdit_MissingQuestion(t *testing.T) {
	ed := New(newFakeService(), nil)
	if _, err := ed.Edit(context.Background(), "ghost"); !errors.Is(err, errors.ErrCodeStore) {
		t.Fatalf("Edit(ghost) = %v, want wrapped store error", err)
	}
}
