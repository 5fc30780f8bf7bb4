// Package server implements the admin console HTTP API.
//
// The API is a chi router over the question, user, and appointment
// stores, the session store, and the realtime notifier. Handlers are
// thin: they decode the request, call one collaborator, and encode the
// result. Errors surface exactly once as a JSON error body built from
// the structured error code; the flow pipeline itself never returns
// errors, so the scene endpoints can only fail on store access.
//
// # Routes
//
//	POST   /api/auth/login         email+password, sets the session cookie
//	POST   /api/auth/logout        clears the session
//	GET    /api/auth/me            current session's user
//	GET    /api/questions          all question records
//	GET    /api/questions/{id}
//	POST   /api/questions          create, optionally splicing under a parent
//	PUT    /api/questions/{id}
//	GET    /api/users              paginated, ?page=&limit=&search=
//	POST   /api/users
//	GET    /api/users/{id}
//	PUT    /api/users/{id}
//	PATCH  /api/users/{id}/active
//	DELETE /api/users/{id}
//	GET    /api/appointments       paginated, ?page=&limit=&search=
//	POST   /api/appointments
//	GET    /api/appointments/{id}
//	PATCH  /api/appointments/{id}/status
//	DELETE /api/appointments/{id}
//	GET    /api/flow/scene         computed scene as JSON, ?width=&height=
//	GET    /api/flow/svg           computed scene as SVG, ?markers=true
//	GET    /api/flow/dot           graph as Graphviz DOT
//
// Everything under /api except the auth endpoints requires a valid
// session cookie.
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/dentflow/dentflow/pkg/notify"
	"github.com/dentflow/dentflow/pkg/question"
	"github.com/dentflow/dentflow/pkg/session"
	"github.com/dentflow/dentflow/pkg/store"
)

// sessionCookie is the name of the session cookie.
const sessionCookie = "dentflow_session"

// QuestionStore is the question persistence the server depends on.
type QuestionStore interface {
	List(ctx context.Context) ([]question.Record, error)
	Get(ctx context.Context, id string) (question.Record, error)
	Create(ctx context.Context, rec question.Record, parentID, childID string) (question.Record, error)
	Update(ctx context.Context, id string, rec question.Record) (question.Record, error)
}

// UserStore is the user persistence the server depends on.
type UserStore interface {
	List(ctx context.Context, opts store.ListOptions) ([]store.User, store.PageInfo, error)
	Get(ctx context.Context, id string) (store.User, error)
	Create(ctx context.Context, u store.User, password string) (store.User, error)
	Update(ctx context.Context, id string, u store.User, password string) (store.User, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
	Authenticate(ctx context.Context, email, password string) (store.User, error)
}

// AppointmentStore is the appointment persistence the server depends on.
type AppointmentStore interface {
	List(ctx context.Context, opts store.ListOptions) ([]store.Appointment, store.PageInfo, error)
	Get(ctx context.Context, id string) (store.Appointment, error)
	Create(ctx context.Context, a store.Appointment) (store.Appointment, error)
	SetStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

// Config carries the server's collaborators and settings. Questions,
// Users, Appointments, and Sessions are required; the rest defaults.
type Config struct {
	Logger       *log.Logger
	Questions    QuestionStore
	Users        UserStore
	Appointments AppointmentStore
	Sessions     session.Store
	Publisher    notify.Publisher

	// SessionTTL is the lifetime of login sessions.
	SessionTTL time.Duration
	// RootQuestionID pins the flow's entry question. Empty falls back
	// to the first question without incoming routes.
	RootQuestionID string
}

// Server is the admin console HTTP API.
type Server struct {
	logger       *log.Logger
	questions    QuestionStore
	users        UserStore
	appointments AppointmentStore
	sessions     session.Store
	publisher    notify.Publisher
	svc          *questionService
	sessionTTL   time.Duration
	rootID       string
}

// New creates a server from its collaborators.
func New(cfg Config) *Server {
	s := &Server{
		logger:       cfg.Logger,
		questions:    cfg.Questions,
		users:        cfg.Users,
		appointments: cfg.Appointments,
		sessions:     cfg.Sessions,
		publisher:    cfg.Publisher,
		sessionTTL:   cfg.SessionTTL,
		rootID:       cfg.RootQuestionID,
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.publisher == nil {
		s.publisher = notify.NoopPublisher{}
	}
	if s.sessionTTL <= 0 {
		s.sessionTTL = session.DefaultTTL
	}
	s.svc = &questionService{store: s.questions, publisher: s.publisher, logger: s.logger}
	return s
}

// Router assembles the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/auth/me", s.handleMe)

			r.Get("/questions", s.handleListQuestions)
			r.Post("/questions", s.handleCreateQuestion)
			r.Get("/questions/{id}", s.handleGetQuestion)
			r.Put("/questions/{id}", s.handleUpdateQuestion)

			r.Get("/users", s.handleListUsers)
			r.Post("/users", s.handleCreateUser)
			r.Get("/users/{id}", s.handleGetUser)
			r.Put("/users/{id}", s.handleUpdateUser)
			r.Patch("/users/{id}/active", s.handleSetUserActive)
			r.Delete("/users/{id}", s.handleDeleteUser)

			r.Get("/appointments", s.handleListAppointments)
			r.Post("/appointments", s.handleCreateAppointment)
			r.Get("/appointments/{id}", s.handleGetAppointment)
			r.Patch("/appointments/{id}/status", s.handleSetAppointmentStatus)
			r.Delete("/appointments/{id}", s.handleDeleteAppointment)

			r.Get("/flow/scene", s.handleFlowScene)
			r.Get("/flow/svg", s.handleFlowSVG)
			r.Get("/flow/dot", s.handleFlowDOT)
		})
	})

	return r
}

// Run serves the API on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
