package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/habitus/habit-api/internal/core/domain"
)

// AuthRepository keeps users keyed by email.
type AuthRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewAuthRepository() *AuthRepository {
	return &AuthRepository{users: make(map[string]domain.User)}
}

func (r *AuthRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Email]; ok {
		return nil, domain.ErrUserExists
	}

	u := *user
	u.ID = uuid.NewString()
	r.users[u.Email] = u
	return &u, nil
}

func (r *AuthRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}
