package ports

import (
	"context"

	"github.com/habitus/habit-api/internal/core/domain"
)

// HabitQuery carries the predicate for listing habits. UserID is always set
// by the service layer.
type HabitQuery struct {
	UserID       string
	IsActive     *bool            // nil = no filter
	Frequency    domain.Frequency // empty = no filter
	NameContains string           // case-insensitive literal substring; empty = no filter
}

// SchemaError is returned by a repository when the store rejects a document
// for violating its schema. Detail is safe to show to the caller.
type SchemaError struct {
	Detail string
}

func (e *SchemaError) Error() string { return e.Detail }

// HabitRepository defines persistence operations for habits. Ownership is not
// enforced here.
type HabitRepository interface {
	// Create applies store defaults, assigns ID and timestamps, and inserts h.
	Create(ctx context.Context, h *domain.Habit) error
	// FindByID returns domain.ErrHabitNotFound when no habit has the id.
	FindByID(ctx context.Context, id string) (*domain.Habit, error)
	// Find returns matching habits, newest first.
	Find(ctx context.Context, q HabitQuery) ([]*domain.Habit, error)
	// Save persists the mutable fields of a previously fetched habit and
	// refreshes its UpdatedAt.
	Save(ctx context.Context, h *domain.Habit) error
	DeleteByID(ctx context.Context, id string) error
}
