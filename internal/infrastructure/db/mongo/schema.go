package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/habitus/habit-api/internal/core/domain"
)

// codeNamespaceExists is returned by create when the collection already exists.
const codeNamespaceExists = 48

func habitValidator() bson.M {
	freqs := make(bson.A, 0, 4)
	for _, f := range domain.Frequencies() {
		freqs = append(freqs, string(f))
	}

	return bson.M{"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": bson.A{"name", "frequency", "is_active", "user_id", "created_at", "updated_at"},
		"properties": bson.M{
			"name":        bson.M{"bsonType": "string", "minLength": 1},
			"description": bson.M{"bsonType": "string"},
			"frequency":   bson.M{"enum": freqs},
			"is_active":   bson.M{"bsonType": "bool"},
			"user_id":     bson.M{"bsonType": "string", "minLength": 1},
			"created_at":  bson.M{"bsonType": "date"},
			"updated_at":  bson.M{"bsonType": "date"},
		},
	}}
}

// EnsureHabitSchema creates the habits collection with its validator, or
// updates the validator when the collection exists, and creates the listing
// index.
func EnsureHabitSchema(ctx context.Context, db *mongo.Database) error {
	validator := habitValidator()

	err := db.CreateCollection(ctx, collectionHabits, options.CreateCollection().SetValidator(validator))
	var ce mongo.CommandError
	switch {
	case err == nil:
	case errors.As(err, &ce) && ce.Code == codeNamespaceExists:
		cmd := bson.D{{Key: "collMod", Value: collectionHabits}, {Key: "validator", Value: validator}}
		if err := db.RunCommand(ctx, cmd).Err(); err != nil {
			return fmt.Errorf("update habits validator: %w", err)
		}
	default:
		return fmt.Errorf("create habits collection: %w", err)
	}

	_, err = db.Collection(collectionHabits).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create habits index: %w", err)
	}
	return nil
}

// EnsureUserIndexes creates the unique email index on the users collection.
func EnsureUserIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(collectionUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}
	return nil
}

// EnsureSchema prepares every collection the API uses. It is registered as a
// Connector hook.
func EnsureSchema(ctx context.Context, db *mongo.Database) error {
	return errors.Join(EnsureHabitSchema(ctx, db), EnsureUserIndexes(ctx, db))
}
