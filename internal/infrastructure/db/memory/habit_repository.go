// Package memory holds process-local repositories used when STORE_DRIVER is
// "memory". Data is lost on restart.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/habitus/habit-api/internal/core/domain"
	"github.com/habitus/habit-api/internal/core/ports"
)

type HabitRepository struct {
	mu     sync.RWMutex
	habits map[string]domain.Habit
	now    func() time.Time
}

func NewHabitRepository() *HabitRepository {
	return &HabitRepository{habits: make(map[string]domain.Habit), now: time.Now}
}

func (r *HabitRepository) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

func (r *HabitRepository) Create(_ context.Context, h *domain.Habit) error {
	h.Normalize()
	if v := h.Violation(); v != "" {
		return &ports.SchemaError{Detail: v}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.timestamp()
	h.ID = uuid.NewString()
	h.CreatedAt = now
	h.UpdatedAt = now
	r.habits[h.ID] = *h
	return nil
}

func (r *HabitRepository) FindByID(_ context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.habits[id]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	return &h, nil
}

func (r *HabitRepository) Find(_ context.Context, q ports.HabitQuery) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(q.NameContains)
	out := make([]*domain.Habit, 0)
	for _, h := range r.habits {
		if h.UserID != q.UserID {
			continue
		}
		if q.IsActive != nil && h.IsActive != *q.IsActive {
			continue
		}
		if q.Frequency != "" && h.Frequency != q.Frequency {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(h.Name), needle) {
			continue
		}
		h := h
		out = append(out, &h)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *HabitRepository) Save(_ context.Context, h *domain.Habit) error {
	h.Normalize()
	if v := h.Violation(); v != "" {
		return &ports.SchemaError{Detail: v}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.habits[h.ID]
	if !ok {
		return domain.ErrHabitNotFound
	}

	// Owner and creation time are immutable.
	h.UserID = stored.UserID
	h.CreatedAt = stored.CreatedAt
	h.UpdatedAt = r.timestamp()
	r.habits[h.ID] = *h
	return nil
}

func (r *HabitRepository) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.habits[id]; !ok {
		return domain.ErrHabitNotFound
	}
	delete(r.habits, id)
	return nil
}
