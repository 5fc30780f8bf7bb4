package server

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/dentflow/dentflow/pkg/flow/editor"
	"github.com/dentflow/dentflow/pkg/notify"
	"github.com/dentflow/dentflow/pkg/question"
)

// questionService adapts the question store to the editor's service
// boundary and announces successful writes on the notify channel. A
// failed announcement never fails the write; it is logged and dropped,
// clients fall back to their next full refetch.
type questionService struct {
	store     QuestionStore
	publisher notify.Publisher
	logger    *log.Logger
}

// NewQuestionService wraps a question store as an [editor.Service]
// that publishes a questions-changed event after every write.
func NewQuestionService(store QuestionStore, publisher notify.Publisher, logger *log.Logger) editor.Service {
	if publisher == nil {
		publisher = notify.NoopPublisher{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &questionService{store: store, publisher: publisher, logger: logger}
}

func (s *questionService) FetchQuestions(ctx context.Context) ([]question.Record, error) {
	return s.store.List(ctx)
}

func (s *questionService) FetchQuestionByID(ctx context.Context, id string) (question.Record, error) {
	return s.store.Get(ctx, id)
}

func (s *questionService) CreateQuestion(ctx context.Context, req editor.CreateRequest) error {
	created, err := s.store.Create(ctx, req.Record, req.ParentID, req.ChildID)
	if err != nil {
		return err
	}
	s.announce(ctx, created.ID, "created")
	return nil
}

func (s *questionService) UpdateQuestion(ctx context.Context, id string, rec question.Record) error {
	if _, err := s.store.Update(ctx, id, rec); err != nil {
		return err
	}
	s.announce(ctx, id, "updated")
	return nil
}

func (s *questionService) announce(ctx context.Context, id, action string) {
	event := notify.QuestionsChanged{QuestionID: id, Action: action}
	if err := s.publisher.Publish(ctx, notify.TopicQuestionsChanged, event); err != nil {
		s.logger.Warn("publish failed", "question", id, "action", action, "error", err)
	}
}

// handleListQuestions returns every question record.
func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	records, err := s.questions.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	rec, err := s.questions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleCreateQuestion persists a new question. When the payload names
// a parent and a reserved child, the new question is spliced into that
// connection.
func (s *Server) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req editor.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.questions.Create(r.Context(), req.Record, req.ParentID, req.ChildID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.svc.announce(r.Context(), created.ID, "created")
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var rec question.Record
	if err := decodeJSON(r, &rec); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.questions.Update(r.Context(), id, rec)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.svc.announce(r.Context(), id, "updated")
	writeJSON(w, http.StatusOK, updated)
}
