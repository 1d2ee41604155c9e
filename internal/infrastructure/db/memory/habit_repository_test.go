package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitus/habit-api/internal/core/domain"
	"github.com/habitus/habit-api/internal/core/ports"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newRepo() *HabitRepository {
	r := NewHabitRepository()
	c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	r.now = c.now
	return r
}

func mustCreate(t *testing.T, r *HabitRepository, h domain.Habit) *domain.Habit {
	t.Helper()
	require.NoError(t, r.Create(context.Background(), &h))
	return &h
}

func TestCreate_AppliesDefaults(t *testing.T) {
	r := newRepo()

	h := mustCreate(t, r, domain.Habit{Name: " Read ", UserID: "u1", IsActive: true})

	assert.NotEmpty(t, h.ID)
	assert.Equal(t, "Read", h.Name)
	assert.Equal(t, domain.FrequencyDaily, h.Frequency)
	assert.Equal(t, h.CreatedAt, h.UpdatedAt)

	got, err := r.FindByID(context.Background(), h.ID)
	require.NoError(t, err)
	assert.Equal(t, *h, *got)
}

func TestCreate_RejectsSchemaViolations(t *testing.T) {
	r := newRepo()

	cases := []domain.Habit{
		{Name: "   ", UserID: "u1"},
		{Name: "Read", UserID: "u1", Frequency: "Yearly"},
		{Name: "Read"},
	}
	for _, h := range cases {
		err := r.Create(context.Background(), &h)
		var se *ports.SchemaError
		assert.True(t, errors.As(err, &se), "habit %+v", h)
	}
}

func TestFind_FiltersAndOrders(t *testing.T) {
	r := newRepo()
	older := mustCreate(t, r, domain.Habit{Name: "Morning Run", UserID: "u1", IsActive: true})
	mustCreate(t, r, domain.Habit{Name: "Read", UserID: "u1", Frequency: domain.FrequencyWeekly, IsActive: false})
	newer := mustCreate(t, r, domain.Habit{Name: "Evening run", UserID: "u1", IsActive: true})
	mustCreate(t, r, domain.Habit{Name: "Run", UserID: "u2", IsActive: true})

	all, err := r.Find(context.Background(), ports.HabitQuery{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, newer.ID, all[0].ID)
	assert.Equal(t, older.ID, all[2].ID)

	active := true
	runs, err := r.Find(context.Background(), ports.HabitQuery{UserID: "u1", IsActive: &active, NameContains: "RUN"})
	require.NoError(t, err)
	require.Len(t, runs, 2)

	weekly, err := r.Find(context.Background(), ports.HabitQuery{UserID: "u1", Frequency: domain.FrequencyWeekly})
	require.NoError(t, err)
	require.Len(t, weekly, 1)
	assert.Equal(t, "Read", weekly[0].Name)

	none, err := r.Find(context.Background(), ports.HabitQuery{UserID: "u3"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestFind_NameIsLiteral(t *testing.T) {
	r := newRepo()
	mustCreate(t, r, domain.Habit{Name: "abc", UserID: "u1"})

	got, err := r.Find(context.Background(), ports.HabitQuery{UserID: "u1", NameContains: ".*"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSave(t *testing.T) {
	r := newRepo()
	h := mustCreate(t, r, domain.Habit{Name: "Read", UserID: "u1"})
	created := h.CreatedAt

	h.Name = "Read more"
	h.UserID = "intruder"
	require.NoError(t, r.Save(context.Background(), h))

	got, err := r.FindByID(context.Background(), h.ID)
	require.NoError(t, err)
	assert.Equal(t, "Read more", got.Name)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, created, got.CreatedAt)
	assert.True(t, got.UpdatedAt.After(created))

	missing := &domain.Habit{ID: "missing", Name: "Read", UserID: "u1"}
	assert.ErrorIs(t, r.Save(context.Background(), missing), domain.ErrHabitNotFound)
}

func TestDeleteByID(t *testing.T) {
	r := newRepo()
	h := mustCreate(t, r, domain.Habit{Name: "Read", UserID: "u1"})

	require.NoError(t, r.DeleteByID(context.Background(), h.ID))
	_, err := r.FindByID(context.Background(), h.ID)
	assert.ErrorIs(t, err, domain.ErrHabitNotFound)
	assert.ErrorIs(t, r.DeleteByID(context.Background(), h.ID), domain.ErrHabitNotFound)
}

func TestConcurrentCreates(t *testing.T) {
	r := NewHabitRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, r.Create(context.Background(), &domain.Habit{Name: "Read", UserID: "u1"}))
		}()
	}
	wg.Wait()

	all, err := r.Find(context.Background(), ports.HabitQuery{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, all, 50)
}

func TestAuthRepository(t *testing.T) {
	r := NewAuthRepository()

	u, err := r.Create(context.Background(), &domain.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "h"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)

	_, err = r.Create(context.Background(), &domain.User{Email: "ana@example.com"})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	got, err := r.FindByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = r.FindByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
