package ports

import (
	"context"
	"time"

	"github.com/habitus/habit-api/internal/core/domain"
)

// CreateHabitInput carries the data for a new habit. The owner is never taken
// from here.
type CreateHabitInput struct {
	Name        string
	Description *string
	Frequency   *domain.Frequency
	IsActive    *bool
	// IdempotencyKey, when set, makes repeated creates with the same key
	// return the first habit.
	IdempotencyKey string
}

// UpdateHabitInput is the body of a full update. Name is required; nil
// optional fields keep their stored value.
type UpdateHabitInput struct {
	Name        string
	Description *string
	Frequency   *domain.Frequency
	IsActive    *bool
}

// PatchHabitInput is the body of a partial update. Only non-nil fields are applied.
type PatchHabitInput struct {
	Name        *string
	Description *string
	Frequency   *domain.Frequency
	IsActive    *bool
}

// HabitFilters are the raw list filters received from the transport layer.
type HabitFilters struct {
	IsActive  *string // "true" selects active habits, any other value inactive ones
	Frequency string
	Name      string
}

// HabitResult is the public view of a habit.
type HabitResult struct {
	ID          string
	Name        string
	Description string
	Frequency   string
	IsActive    bool
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	// Message is set by mutating operations.
	Message string
	// Replayed is true when an idempotency key matched an earlier create.
	Replayed bool
}

// DeleteResult is returned by DeleteHabit.
type DeleteResult struct {
	Message string
	ID      string
}

// HabitService defines the habit use cases. Every method takes the
// authenticated caller's id explicitly.
type HabitService interface {
	CreateHabit(ctx context.Context, userID string, in CreateHabitInput) (*HabitResult, error)
	ListHabits(ctx context.Context, userID string, filters HabitFilters) ([]HabitResult, error)
	GetHabit(ctx context.Context, userID, habitID string) (*HabitResult, error)
	UpdateHabit(ctx context.Context, userID, habitID string, in UpdateHabitInput) (*HabitResult, error)
	PatchHabit(ctx context.Context, userID, habitID string, in PatchHabitInput) (*HabitResult, error)
	DeleteHabit(ctx context.Context, userID, habitID string) (*DeleteResult, error)
}
