package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dentflow/dentflow/pkg/errors"
)

// Appointment statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Appointment is one submitted questionnaire result.
type Appointment struct {
	ID                  string    `json:"id" bson:"_id,omitempty"`
	Name                string    `json:"name" bson:"name"`
	BSN                 string    `json:"bsn" bson:"bsn"`
	DateOfBirth         string    `json:"dateOfBirth" bson:"dateOfBirth"`
	Phone               string    `json:"phone" bson:"phone"`
	Email               string    `json:"email" bson:"email"`
	PatientsDentistName string    `json:"patientsDentistName" bson:"patientsDentistName"`
	Status              string    `json:"status,omitempty" bson:"status,omitempty"`
	CreatedAt           time.Time `json:"createdAt" bson:"createdAt"`
}

// AppointmentStore persists questionnaire results.
type AppointmentStore struct {
	col *mongo.Collection
}

// List returns one page of appointments, newest first, filtered by a
// case-insensitive search over patient name, email, and dentist name.
func (s *AppointmentStore) List(ctx context.Context, opts ListOptions) ([]Appointment, PageInfo, error) {
	opts = opts.normalized()
	filter := searchFilter(opts.Search, "name", "email", "patientsDentistName")

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, PageInfo{}, errors.Wrap(errors.ErrCodeStore, err, "counting appointments")
	}

	cur, err := s.col.Find(ctx, filter, options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip(opts.skip()).
		SetLimit(opts.Limit))
	if err != nil {
		return nil, PageInfo{}, errors.Wrap(errors.ErrCodeStore, err, "listing appointments")
	}
	defer cur.Close(ctx)

	var items []Appointment
	if err := cur.All(ctx, &items); err != nil {
		return nil, PageInfo{}, errors.Wrap(errors.ErrCodeStore, err, "decoding appointments")
	}
	return items, PageInfo{Page: opts.Page, Limit: opts.Limit, Total: total}, nil
}

// Get returns one appointment by id.
func (s *AppointmentStore) Get(ctx context.Context, id string) (Appointment, error) {
	var a Appointment
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return Appointment{}, errors.New(errors.ErrCodeAppointmentNotFound, "appointment %s not found", id)
	}
	if err != nil {
		return Appointment{}, errors.Wrap(errors.ErrCodeStore, err, "loading appointment %s", id)
	}
	return a, nil
}

// Create inserts a new appointment. Missing statuses default to
// pending.
func (s *AppointmentStore) Create(ctx context.Context, a Appointment) (Appointment, error) {
	a.ID = primitive.NewObjectID().Hex()
	if a.Status == "" {
		a.Status = StatusPending
	}
	a.CreatedAt = time.Now().UTC()

	if _, err := s.col.InsertOne(ctx, a); err != nil {
		return Appointment{}, errors.Wrap(errors.ErrCodeStore, err, "inserting appointment")
	}
	return a, nil
}

// SetStatus updates an appointment's status.
func (s *AppointmentStore) SetStatus(ctx context.Context, id, status string) error {
	switch status {
	case StatusPending, StatusCompleted, StatusCancelled:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown status %q", status)
	}

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "updating appointment %s", id)
	}
	if res.MatchedCount == 0 {
		return errors.New(errors.ErrCodeAppointmentNotFound, "appointment %s not found", id)
	}
	return nil
}

// Delete removes an appointment.
func (s *AppointmentStore) Delete(ctx context.Context, id string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "deleting appointment %s", id)
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodeAppointmentNotFound, "appointment %s not found", id)
	}
	return nil
}
