package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dentflow/dentflow/pkg/errors"
	"github.com/dentflow/dentflow/pkg/question"
)

// QuestionStore persists question records.
type QuestionStore struct {
	col *mongo.Collection
}

// List returns every question, ordered by id. The canvas always needs
// the full set, so questions are not paginated.
func (s *QuestionStore) List(ctx context.Context) ([]question.Record, error) {
	cur, err := s.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "listing questions")
	}
	defer cur.Close(ctx)

	var records []question.Record
	if err := cur.All(ctx, &records); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "decoding questions")
	}
	return records, nil
}

// Get returns one question by id.
func (s *QuestionStore) Get(ctx context.Context, id string) (question.Record, error) {
	var rec question.Record
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return question.Record{}, errors.New(errors.ErrCodeQuestionNotFound, "question %s not found", id)
	}
	if err != nil {
		return question.Record{}, errors.Wrap(errors.ErrCodeStore, err, "loading question %s", id)
	}
	return rec, nil
}

// Create inserts a new question. When parentID and childID are set the
// new question is spliced into the existing parent-to-child connection:
// the parent's route that pointed at childID is re-pointed at the new
// question, which in turn routes to childID.
func (s *QuestionStore) Create(ctx context.Context, rec question.Record, parentID, childID string) (question.Record, error) {
	rec.ID = primitive.NewObjectID().Hex()
	rec.Children = question.NextIDs(question.Decode(rec))

	if _, err := s.col.InsertOne(ctx, rec); err != nil {
		return question.Record{}, errors.Wrap(errors.ErrCodeStore, err, "inserting question")
	}

	if parentID != "" && childID != "" {
		parent, err := s.Get(ctx, parentID)
		if err != nil {
			return question.Record{}, err
		}
		if repointParent(&parent, childID, rec.ID) {
			if err := s.replace(ctx, parent); err != nil {
				return question.Record{}, err
			}
		}
	}
	return rec, nil
}

// Update overwrites a question. Children are recomputed from the
// record's routing so they never drift from the option next ids.
func (s *QuestionStore) Update(ctx context.Context, id string, rec question.Record) (question.Record, error) {
	rec.ID = id
	rec.Children = question.NextIDs(question.Decode(rec))
	if err := s.replace(ctx, rec); err != nil {
		return question.Record{}, err
	}
	return rec, nil
}

func (s *QuestionStore) replace(ctx context.Context, rec question.Record) error {
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "updating question %s", rec.ID)
	}
	if res.MatchedCount == 0 {
		return errors.New(errors.ErrCodeQuestionNotFound, "question %s not found", rec.ID)
	}
	return nil
}

// repointParent rewrites every route of parent that targets oldChild to
// target newID instead and recomputes the children list. Reports
// whether anything changed.
func repointParent(parent *question.Record, oldChild, newID string) bool {
	changed := false
	for i := range parent.Options {
		if parent.Options[i].NextID == oldChild {
			parent.Options[i].NextID = newID
			changed = true
		}
	}
	if parent.Action != nil && parent.Action.NextID == oldChild {
		parent.Action.NextID = newID
		changed = true
	}
	if changed {
		parent.Children = question.NextIDs(question.Decode(*parent))
	}
	return changed
}
