package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/habitus/habit-api/internal/core/domain"
	"github.com/habitus/habit-api/internal/core/ports"
)

const collectionHabits = "habits"

// codeDocumentValidationFailure is returned by the server when a write breaks
// the collection's $jsonSchema validator.
const codeDocumentValidationFailure = 121

// DatabaseProvider yields the database a repository works against. Connector
// implements it.
type DatabaseProvider interface {
	Database(ctx context.Context) (*mongo.Database, error)
}

// StaticDatabase serves an already connected database.
type StaticDatabase struct {
	DB *mongo.Database
}

func (s StaticDatabase) Database(context.Context) (*mongo.Database, error) {
	return s.DB, nil
}

type habitDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
	Frequency   string             `bson:"frequency"`
	IsActive    bool               `bson:"is_active"`
	UserID      string             `bson:"user_id"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d habitDocument) toDomain() *domain.Habit {
	return &domain.Habit{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Frequency:   domain.Frequency(d.Frequency),
		IsActive:    d.IsActive,
		UserID:      d.UserID,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// HabitRepository implements ports.HabitRepository using MongoDB.
type HabitRepository struct {
	dbs DatabaseProvider
	now func() time.Time
}

func NewHabitRepository(dbs DatabaseProvider) *HabitRepository {
	return &HabitRepository{dbs: dbs, now: time.Now}
}

func (r *HabitRepository) col(ctx context.Context) (*mongo.Collection, error) {
	db, err := r.dbs.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("habits collection: %w", err)
	}
	return db.Collection(collectionHabits), nil
}

// timestamp truncates to the millisecond precision of BSON dates so the value
// handed back to the caller equals what a later read returns.
func (r *HabitRepository) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

// Create inserts a new habit document.
func (r *HabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	h.Normalize()
	if v := h.Violation(); v != "" {
		return &ports.SchemaError{Detail: v}
	}

	col, err := r.col(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := r.timestamp()
	doc := habitDocument{
		ID:          primitive.NewObjectID(),
		Name:        h.Name,
		Description: h.Description,
		Frequency:   string(h.Frequency),
		IsActive:    h.IsActive,
		UserID:      h.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := col.InsertOne(ctx, doc); err != nil {
		return writeError("insert habit", err)
	}

	h.ID = doc.ID.Hex()
	h.CreatedAt = now
	h.UpdatedAt = now
	return nil
}

// FindByID retrieves a habit by id. Ids that are not valid ObjectIDs cannot
// exist and are reported as not found.
func (r *HabitRepository) FindByID(ctx context.Context, id string) (*domain.Habit, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrHabitNotFound
	}

	col, err := r.col(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc habitDocument
	if err := col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("find habit: %w", err)
	}
	return doc.toDomain(), nil
}

// Find lists habits matching q, newest first.
func (r *HabitRepository) Find(ctx context.Context, q ports.HabitQuery) ([]*domain.Habit, error) {
	col, err := r.col(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := col.Find(ctx, habitFilter(q), options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find habits: %w", err)
	}
	defer cur.Close(ctx)

	var docs []habitDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode habits: %w", err)
	}

	out := make([]*domain.Habit, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func habitFilter(q ports.HabitQuery) bson.M {
	filter := bson.M{"user_id": q.UserID}
	if q.IsActive != nil {
		filter["is_active"] = *q.IsActive
	}
	if q.Frequency != "" {
		filter["frequency"] = string(q.Frequency)
	}
	if q.NameContains != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(q.NameContains), Options: "i"}
	}
	return filter
}

// Save writes the mutable fields of h and refreshes updated_at.
func (r *HabitRepository) Save(ctx context.Context, h *domain.Habit) error {
	oid, err := primitive.ObjectIDFromHex(h.ID)
	if err != nil {
		return domain.ErrHabitNotFound
	}

	h.Normalize()
	if v := h.Violation(); v != "" {
		return &ports.SchemaError{Detail: v}
	}

	col, err := r.col(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := r.timestamp()
	set := bson.M{
		"name":       h.Name,
		"frequency":  string(h.Frequency),
		"is_active":  h.IsActive,
		"updated_at": now,
	}
	update := bson.M{"$set": set}
	if h.Description != "" {
		set["description"] = h.Description
	} else {
		update["$unset"] = bson.M{"description": ""}
	}

	res, err := col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return writeError("update habit", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrHabitNotFound
	}

	h.UpdatedAt = now
	return nil
}

// DeleteByID removes the habit document.
func (r *HabitRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrHabitNotFound
	}

	col, err := r.col(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrHabitNotFound
	}
	return nil
}

// writeError maps server-side schema rejections to ports.SchemaError and wraps
// everything else.
func writeError(op string, err error) error {
	var se mongo.ServerError
	if errors.As(err, &se) && se.HasErrorCode(codeDocumentValidationFailure) {
		return &ports.SchemaError{Detail: "Document failed validation"}
	}
	return fmt.Errorf("%s: %w", op, err)
}
