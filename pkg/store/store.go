// Package store provides the MongoDB persistence layer.
//
// Three collections back the admin console: questions (the flow
// content), users (console operators), and appointments (submitted
// questionnaire results). Each collection gets a typed store created
// from a shared [Store] handle:
//
//	st, err := store.Connect(ctx, cfg.URI, cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer st.Close(ctx)
//
//	questions := st.Questions()
//	users := st.Users()
//
// Question ids are Mongo ObjectID hex strings; the stores generate
// them on insert so callers never supply ids.
package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/dentflow/dentflow/pkg/errors"
)

const connectTimeout = 10 * time.Second

// Store is a connected MongoDB database handle.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connecting to mongodb")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStore, err, "pinging mongodb")
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

// Close releases the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Questions returns the question collection store.
func (s *Store) Questions() *QuestionStore {
	return &QuestionStore{col: s.db.Collection("questions")}
}

// Users returns the user collection store.
func (s *Store) Users() *UserStore {
	return &UserStore{col: s.db.Collection("users")}
}

// Appointments returns the appointment collection store.
func (s *Store) Appointments() *AppointmentStore {
	return &AppointmentStore{col: s.db.Collection("appointments")}
}

// ListOptions paginate and filter List calls.
type ListOptions struct {
	Page   int64
	Limit  int64
	Search string
}

const (
	defaultLimit = 5
	maxLimit     = 100
)

// normalized clamps paging values to sane bounds.
func (o ListOptions) normalized() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = defaultLimit
	}
	if o.Limit > maxLimit {
		o.Limit = maxLimit
	}
	return o
}

// skip returns the number of documents to skip for the page.
func (o ListOptions) skip() int64 { return (o.Page - 1) * o.Limit }

// PageInfo describes one page of a paginated result.
type PageInfo struct {
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
	Total int64 `json:"totalResults"`
}
