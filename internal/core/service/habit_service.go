package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/habitus/habit-api/internal/core/domain"
	"github.com/habitus/habit-api/internal/core/ports"
	"github.com/habitus/habit-api/internal/pkg/i18n"
)

// operation names a use case for logging and for choosing the message that
// replaces an unexpected failure.
type operation struct {
	name    string
	failure string // i18n key returned to the caller on unexpected errors
	// coerceSchema turns store schema violations into validation errors.
	coerceSchema bool
}

var (
	opCreate = operation{name: "create", failure: i18n.MsgCreateFailed, coerceSchema: true}
	opList   = operation{name: "list", failure: i18n.MsgListFailed}
	opGet    = operation{name: "get", failure: i18n.MsgGetFailed}
	opUpdate = operation{name: "update", failure: i18n.MsgUpdateFailed, coerceSchema: true}
	opPatch  = operation{name: "patch", failure: i18n.MsgUpdateFailed, coerceSchema: true}
	opDelete = operation{name: "delete", failure: i18n.MsgDeleteFailed}
)

// HabitService implements the habit use cases on top of a HabitRepository.
// Ownership is checked here, not in the store.
type HabitService struct {
	repo ports.HabitRepository
	idem ports.IdempotencyStore
	tr   i18n.Translator
	log  zerolog.Logger
}

// NewHabitService builds a HabitService. idem may be nil, which disables
// create idempotency.
func NewHabitService(repo ports.HabitRepository, idem ports.IdempotencyStore, tr i18n.Translator, log zerolog.Logger) *HabitService {
	return &HabitService{repo: repo, idem: idem, tr: tr, log: log}
}

// CreateHabit validates the name and stores a new habit owned by userID.
func (s *HabitService) CreateHabit(ctx context.Context, userID string, in ports.CreateHabitInput) (*ports.HabitResult, error) {
	log := s.opLogger(opCreate, userID)
	log.Info().Bool("idempotent", in.IdempotencyKey != "").Msg("creating habit")

	if !domain.ValidName(in.Name) {
		return nil, s.invalidName(log)
	}

	if res := s.replay(ctx, log, userID, in.IdempotencyKey); res != nil {
		return res, nil
	}

	h := &domain.Habit{
		Name:     in.Name,
		UserID:   userID,
		IsActive: domain.DefaultIsActive,
	}
	if in.Description != nil {
		h.Description = *in.Description
	}
	if in.Frequency != nil {
		h.Frequency = *in.Frequency
	}
	if in.IsActive != nil {
		h.IsActive = *in.IsActive
	}

	if err := s.repo.Create(ctx, h); err != nil {
		return nil, s.fail(log, opCreate, err)
	}

	if in.IdempotencyKey != "" && s.idem != nil {
		if err := s.idem.Remember(ctx, userID, in.IdempotencyKey, h.ID); err != nil {
			log.Warn().Err(err).Str("habit_id", h.ID).Msg("failed to store idempotency key")
		}
	}

	log.Info().Str("habit_id", h.ID).Msg("habit created")

	res := toHabitResult(h)
	res.Message = s.tr.T(i18n.MsgHabitCreated)
	return &res, nil
}

// ListHabits returns the caller's habits matching filters, newest first. No
// match is an empty slice, not an error.
func (s *HabitService) ListHabits(ctx context.Context, userID string, filters ports.HabitFilters) ([]ports.HabitResult, error) {
	log := s.opLogger(opList, userID)

	q := ports.HabitQuery{
		UserID:       userID,
		Frequency:    domain.Frequency(filters.Frequency),
		NameContains: filters.Name,
	}
	if filters.IsActive != nil {
		active := *filters.IsActive == "true"
		q.IsActive = &active
	}

	ev := log.Info().Str("frequency", filters.Frequency).Bool("name_filter", filters.Name != "")
	if q.IsActive != nil {
		ev = ev.Bool("is_active", *q.IsActive)
	}
	ev.Msg("fetching habits")

	habits, err := s.repo.Find(ctx, q)
	if err != nil {
		return nil, s.fail(log, opList, err)
	}

	log.Info().Int("count", len(habits)).Msg("habits fetched")

	out := make([]ports.HabitResult, 0, len(habits))
	for _, h := range habits {
		out = append(out, toHabitResult(h))
	}
	return out, nil
}

// GetHabit returns one habit. A habit owned by someone else yields a
// forbidden error rather than not found, which reveals that the id exists.
func (s *HabitService) GetHabit(ctx context.Context, userID, habitID string) (*ports.HabitResult, error) {
	log := s.opLogger(opGet, userID).With().Str("habit_id", habitID).Logger()
	log.Info().Msg("fetching habit")

	h, err := s.loadOwned(ctx, log, userID, habitID)
	if err != nil {
		return nil, s.fail(log, opGet, err)
	}

	log.Info().Msg("habit fetched")

	res := toHabitResult(h)
	return &res, nil
}

// UpdateHabit handles a full update. The name is required, but nil optional
// fields keep their stored value instead of being cleared.
func (s *HabitService) UpdateHabit(ctx context.Context, userID, habitID string, in ports.UpdateHabitInput) (*ports.HabitResult, error) {
	log := s.opLogger(opUpdate, userID).With().Str("habit_id", habitID).Logger()
	log.Info().Msg("updating habit")

	if !domain.ValidName(in.Name) {
		return nil, s.invalidName(log)
	}

	h, err := s.loadOwned(ctx, log, userID, habitID)
	if err != nil {
		return nil, s.fail(log, opUpdate, err)
	}

	h.Name = in.Name
	if in.Description != nil {
		h.Description = *in.Description
	}
	if in.Frequency != nil {
		h.Frequency = *in.Frequency
	}
	if in.IsActive != nil {
		h.IsActive = *in.IsActive
	}

	if err := s.repo.Save(ctx, h); err != nil {
		return nil, s.fail(log, opUpdate, err)
	}

	log.Info().Msg("habit updated")

	res := toHabitResult(h)
	res.Message = s.tr.T(i18n.MsgHabitUpdated)
	return &res, nil
}

// PatchHabit applies only the fields present in the input.
func (s *HabitService) PatchHabit(ctx context.Context, userID, habitID string, in ports.PatchHabitInput) (*ports.HabitResult, error) {
	log := s.opLogger(opPatch, userID).With().Str("habit_id", habitID).Logger()
	log.Info().Msg("patching habit")

	if in.Name != nil && !domain.ValidName(*in.Name) {
		return nil, s.invalidName(log)
	}

	h, err := s.loadOwned(ctx, log, userID, habitID)
	if err != nil {
		return nil, s.fail(log, opPatch, err)
	}

	if in.Name != nil {
		h.Name = *in.Name
	}
	if in.Description != nil {
		h.Description = *in.Description
	}
	if in.Frequency != nil {
		h.Frequency = *in.Frequency
	}
	if in.IsActive != nil {
		h.IsActive = *in.IsActive
	}

	if err := s.repo.Save(ctx, h); err != nil {
		return nil, s.fail(log, opPatch, err)
	}

	log.Info().Msg("habit patched")

	res := toHabitResult(h)
	res.Message = s.tr.T(i18n.MsgHabitUpdated)
	return &res, nil
}

// DeleteHabit removes the habit permanently and returns its id.
func (s *HabitService) DeleteHabit(ctx context.Context, userID, habitID string) (*ports.DeleteResult, error) {
	log := s.opLogger(opDelete, userID).With().Str("habit_id", habitID).Logger()
	log.Info().Msg("deleting habit")

	h, err := s.loadOwned(ctx, log, userID, habitID)
	if err != nil {
		return nil, s.fail(log, opDelete, err)
	}

	if err := s.repo.DeleteByID(ctx, h.ID); err != nil {
		return nil, s.fail(log, opDelete, err)
	}

	log.Info().Msg("habit deleted")

	return &ports.DeleteResult{
		Message: s.tr.T(i18n.MsgHabitDeleted),
		ID:      h.ID,
	}, nil
}

// loadOwned fetches a habit and checks that userID owns it.
func (s *HabitService) loadOwned(ctx context.Context, log zerolog.Logger, userID, habitID string) (*domain.Habit, error) {
	h, err := s.repo.FindByID(ctx, habitID)
	if errors.Is(err, domain.ErrHabitNotFound) {
		log.Error().Msg("habit not found")
		return nil, domain.NewHabitNotFoundError(s.tr.T(i18n.MsgHabitNotFound))
	}
	if err != nil {
		return nil, err
	}

	if !h.OwnedBy(userID) {
		log.Error().Str("owner_id", h.UserID).Msg("forbidden access to habit")
		return nil, domain.NewForbiddenError(s.tr.T(i18n.MsgForbidden))
	}
	return h, nil
}

// replay returns the habit an earlier create with the same key produced, or
// nil when the request must create a new one. Store errors never fail the
// request.
func (s *HabitService) replay(ctx context.Context, log zerolog.Logger, userID, key string) *ports.HabitResult {
	if key == "" || s.idem == nil {
		return nil
	}

	habitID, err := s.idem.Lookup(ctx, userID, key)
	if err != nil {
		log.Warn().Err(err).Msg("idempotency lookup failed, creating anyway")
		return nil
	}
	if habitID == "" {
		return nil
	}

	h, err := s.repo.FindByID(ctx, habitID)
	if err != nil || !h.OwnedBy(userID) {
		log.Warn().Err(err).Str("habit_id", habitID).Msg("idempotency key points to an unusable habit, creating anyway")
		return nil
	}

	log.Info().Str("habit_id", h.ID).Msg("idempotent replay")

	res := toHabitResult(h)
	res.Message = s.tr.T(i18n.MsgHabitCreated)
	res.Replayed = true
	return &res
}

func (s *HabitService) invalidName(log zerolog.Logger) error {
	err := domain.NewValidationError(s.tr.T(i18n.MsgNameTooShort))
	log.Error().Err(err).Msg("invalid habit name")
	return err
}

// fail returns known error kinds unchanged and replaces anything else with a
// generic error carrying only the operation's localized message.
func (s *HabitService) fail(log zerolog.Logger, op operation, err error) error {
	var schemaErr *ports.SchemaError
	switch {
	case domain.MessageOf(err) != "" && domain.IsKnown(err):
		return err
	case errors.Is(err, domain.ErrHabitNotFound):
		// Save or delete lost a race with a concurrent delete.
		log.Error().Err(err).Msg("habit not found")
		return domain.NewHabitNotFoundError(s.tr.T(i18n.MsgHabitNotFound))
	case op.coerceSchema && errors.As(err, &schemaErr):
		log.Error().Err(err).Msg("habit rejected by store schema")
		return domain.NewValidationError(schemaErr.Detail)
	}

	log.Error().Err(err).Msgf("error on habit %s", op.name)
	return domain.NewInternalError(s.tr.T(op.failure))
}

func (s *HabitService) opLogger(op operation, userID string) zerolog.Logger {
	return s.log.With().Str("op", op.name).Str("user_id", userID).Logger()
}

func toHabitResult(h *domain.Habit) ports.HabitResult {
	return ports.HabitResult{
		ID:          h.ID,
		Name:        h.Name,
		Description: h.Description,
		Frequency:   string(h.Frequency),
		IsActive:    h.IsActive,
		UserID:      h.UserID,
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
}
