package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/dentflow/dentflow/pkg/errors"
)

// Role is a console access level.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleOperator Role = "Operator"
)

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool { return r == RoleAdmin || r == RoleOperator }

// User is a console operator account. PasswordHash never leaves the
// store layer; the JSON tag hides it from API responses.
type User struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	Role         Role      `json:"role" bson:"role"`
	Phone        string    `json:"phone,omitempty" bson:"phone,omitempty"`
	DateOfBirth  string    `json:"dateOfBirth,omitempty" bson:"dateOfBirth,omitempty"`
	IsActive     bool      `json:"isActive" bson:"isActive"`
	PasswordHash []byte    `json:"-" bson:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// UserStore persists console users.
type UserStore struct {
	col *mongo.Collection
}

// List returns one page of users, filtered by a case-insensitive search
// over name and email.
func (s *UserStore) List(ctx context.Context, opts ListOptions) ([]User, PageInfo, error) {
	opts = opts.normalized()
	filter := searchFilter(opts.Search, "name", "email")

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, PageInfo{}, errors.Wrap(errors.ErrCodeStore, err, "counting users")
	}

	cur, err := s.col.Find(ctx, filter, options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip(opts.skip()).
		SetLimit(opts.Limit))
	if err != nil {
		return nil, PageInfo{}, errors.Wrap(errors.ErrCodeStore, err, "listing users")
	}
	defer cur.Close(ctx)

	var users []User
	if err := cur.All(ctx, &users); err != nil {
		return nil, PageInfo{}, errors.Wrap(errors.ErrCodeStore, err, "decoding users")
	}
	return users, PageInfo{Page: opts.Page, Limit: opts.Limit, Total: total}, nil
}

// Get returns one user by id.
func (s *UserStore) Get(ctx context.Context, id string) (User, error) {
	var u User
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return User{}, errors.New(errors.ErrCodeUserNotFound, "user %s not found", id)
	}
	if err != nil {
		return User{}, errors.Wrap(errors.ErrCodeStore, err, "loading user %s", id)
	}
	return u, nil
}

// Create inserts a new active user with a bcrypt-hashed password.
func (s *UserStore) Create(ctx context.Context, u User, password string) (User, error) {
	if !ValidRole(u.Role) {
		return User{}, errors.New(errors.ErrCodeInvalidInput, "unknown role %q", u.Role)
	}
	if u.Email == "" {
		return User{}, errors.New(errors.ErrCodeInvalidInput, "email is required")
	}
	if password == "" {
		return User{}, errors.New(errors.ErrCodeInvalidInput, "password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, errors.Wrap(errors.ErrCodeInternal, err, "hashing password")
	}

	u.ID = primitive.NewObjectID().Hex()
	u.PasswordHash = hash
	u.IsActive = true
	u.CreatedAt = time.Now().UTC()

	if _, err := s.col.InsertOne(ctx, u); err != nil {
		return User{}, errors.Wrap(errors.ErrCodeStore, err, "inserting user")
	}
	return u, nil
}

// Update overwrites the mutable profile fields of a user. An empty
// password keeps the existing credentials.
func (s *UserStore) Update(ctx context.Context, id string, u User, password string) (User, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	if u.Role != "" && !ValidRole(u.Role) {
		return User{}, errors.New(errors.ErrCodeInvalidInput, "unknown role %q", u.Role)
	}

	if u.Name != "" {
		existing.Name = u.Name
	}
	if u.Email != "" {
		existing.Email = u.Email
	}
	if u.Role != "" {
		existing.Role = u.Role
	}
	if u.Phone != "" {
		existing.Phone = u.Phone
	}
	if u.DateOfBirth != "" {
		existing.DateOfBirth = u.DateOfBirth
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, errors.Wrap(errors.ErrCodeInternal, err, "hashing password")
		}
		existing.PasswordHash = hash
	}

	if _, err := s.col.ReplaceOne(ctx, bson.M{"_id": id}, existing); err != nil {
		return User{}, errors.Wrap(errors.ErrCodeStore, err, "updating user %s", id)
	}
	return existing, nil
}

// SetActive toggles whether the user may log in.
func (s *UserStore) SetActive(ctx context.Context, id string, active bool) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"isActive": active}})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "updating user %s", id)
	}
	if res.MatchedCount == 0 {
		return errors.New(errors.ErrCodeUserNotFound, "user %s not found", id)
	}
	return nil
}

// Delete removes a user.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "deleting user %s", id)
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodeUserNotFound, "user %s not found", id)
	}
	return nil
}

// Authenticate verifies credentials and returns the matching user.
// Unknown emails, bad passwords, and deactivated accounts all return
// INVALID_CREDENTIALS so callers cannot probe for accounts.
func (s *UserStore) Authenticate(ctx context.Context, email, password string) (User, error) {
	var u User
	err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return User{}, errors.New(errors.ErrCodeInvalidCredentials, "invalid email or password")
	}
	if err != nil {
		return User{}, errors.Wrap(errors.ErrCodeStore, err, "loading user by email")
	}
	if !u.IsActive {
		return User{}, errors.New(errors.ErrCodeInvalidCredentials, "invalid email or password")
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		return User{}, errors.New(errors.ErrCodeInvalidCredentials, "invalid email or password")
	}
	return u, nil
}

// searchFilter builds a case-insensitive regex filter over fields.
// An empty search matches everything.
func searchFilter(search string, fields ...string) bson.M {
	if search == "" {
		return bson.M{}
	}
	clauses := make([]bson.M, len(fields))
	for i, f := range fields {
		clauses[i] = bson.M{f: bson.M{"$regex": search, "$options": "i"}}
	}
	return bson.M{"$or": clauses}
}
