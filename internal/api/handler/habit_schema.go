package handler

import (
	"time"

	"github.com/habitus/habit-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type createHabitRequest struct {
	Name        string            `json:"name"`
	Description *string           `json:"description"`
	Frequency   *domain.Frequency `json:"frequency" validate:"omitempty,oneof=Diário Semanal Quinzenal Mensal"`
	IsActive    *bool             `json:"isActive"`
}

type updateHabitRequest struct {
	Name        string            `json:"name"`
	Description *string           `json:"description"`
	Frequency   *domain.Frequency `json:"frequency" validate:"omitempty,oneof=Diário Semanal Quinzenal Mensal"`
	IsActive    *bool             `json:"isActive"`
}

type patchHabitRequest struct {
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	Frequency   *domain.Frequency `json:"frequency" validate:"omitempty,oneof=Diário Semanal Quinzenal Mensal"`
	IsActive    *bool             `json:"isActive"`
}

type habitResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Frequency   string    `json:"frequency"`
	IsActive    bool      `json:"isActive"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Message     string    `json:"message,omitempty"`
}

type deleteHabitResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}
