package handler

import (
	"github.com/habitus/habit-api/internal/core/ports"
)

func (r createHabitRequest) toInput(idempotencyKey string) ports.CreateHabitInput {
	return ports.CreateHabitInput{
		Name:           r.Name,
		Description:    r.Description,
		Frequency:      r.Frequency,
		IsActive:       r.IsActive,
		IdempotencyKey: idempotencyKey,
	}
}

func (r updateHabitRequest) toInput() ports.UpdateHabitInput {
	return ports.UpdateHabitInput{
		Name:        r.Name,
		Description: r.Description,
		Frequency:   r.Frequency,
		IsActive:    r.IsActive,
	}
}

func (r patchHabitRequest) toInput() ports.PatchHabitInput {
	return ports.PatchHabitInput{
		Name:        r.Name,
		Description: r.Description,
		Frequency:   r.Frequency,
		IsActive:    r.IsActive,
	}
}

func toHabitResponse(res *ports.HabitResult) habitResponse {
	return habitResponse{
		ID:          res.ID,
		Name:        res.Name,
		Description: res.Description,
		Frequency:   res.Frequency,
		IsActive:    res.IsActive,
		UserID:      res.UserID,
		CreatedAt:   res.CreatedAt,
		UpdatedAt:   res.UpdatedAt,
		Message:     res.Message,
	}
}

func toHabitResponses(results []ports.HabitResult) []habitResponse {
	out := make([]habitResponse, 0, len(results))
	for i := range results {
		out = append(out, toHabitResponse(&results[i]))
	}
	return out
}
