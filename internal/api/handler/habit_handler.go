package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/habitus/habit-api/internal/api/metrics"
	"github.com/habitus/habit-api/internal/core/domain"
	"github.com/habitus/habit-api/internal/core/ports"
	"github.com/habitus/habit-api/internal/pkg/i18n"
)

// HeaderIdempotencyKey makes repeated creates return the first habit.
const HeaderIdempotencyKey = "Idempotency-Key"

// HabitHandler handles HTTP requests for habit operations.
type HabitHandler struct {
	service ports.HabitService
	tr      i18n.Translator
	metrics *metrics.Metrics
}

// NewHabitHandler builds a HabitHandler. m may be nil.
func NewHabitHandler(service ports.HabitService, tr i18n.Translator, m *metrics.Metrics) *HabitHandler {
	return &HabitHandler{service: service, tr: tr, metrics: m}
}

// Create handles POST /api/habits.
//
// @Summary      Create a habit
// @Tags         habits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string              false  "Repeated requests with the same key return the first habit"
// @Param        body             body      createHabitRequest  true   "Habit"
// @Success      201              {object}  habitResponse
// @Success      200              {object}  habitResponse  "Idempotent replay"
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      500              {object}  errorResponse
// @Router       /api/habits [post]
func (h *HabitHandler) Create(c echo.Context) error {
	start := time.Now()

	userID, err := ctxUserID(c, h.tr)
	if err != nil {
		h.metrics.Observe("create", outcome(err), start)
		return err
	}

	var req createHabitRequest
	if err := h.bind(c, &req); err != nil {
		h.metrics.Observe("create", outcome(err), start)
		return err
	}

	res, err := h.service.CreateHabit(c.Request().Context(), userID, req.toInput(c.Request().Header.Get(HeaderIdempotencyKey)))
	if err != nil {
		h.metrics.Observe("create", outcome(err), start)
		return err
	}

	if res.Replayed {
		h.metrics.Observe("create", metrics.OutcomeReplay, start)
		return c.JSON(http.StatusOK, toHabitResponse(res))
	}

	h.metrics.Observe("create", metrics.OutcomeSuccess, start)
	return c.JSON(http.StatusCreated, toHabitResponse(res))
}

// List handles GET /api/habits.
//
// @Summary      List the caller's habits, newest first
// @Tags         habits
// @Produce      json
// @Security     BearerAuth
// @Param        isActive   query     string  false  "\"true\" for active habits, any other value for inactive ones"
// @Param        frequency  query     string  false  "Diário, Semanal, Quinzenal or Mensal"
// @Param        name       query     string  false  "Case-insensitive substring of the name"
// @Success      200        {array}   habitResponse
// @Failure      401        {object}  errorResponse
// @Failure      500        {object}  errorResponse
// @Router       /api/habits [get]
func (h *HabitHandler) List(c echo.Context) error {
	start := time.Now()

	userID, err := ctxUserID(c, h.tr)
	if err != nil {
		h.metrics.Observe("list", outcome(err), start)
		return err
	}

	filters := ports.HabitFilters{
		Frequency: c.QueryParam("frequency"),
		Name:      c.QueryParam("name"),
	}
	if v, ok := c.QueryParams()["isActive"]; ok && len(v) > 0 {
		filters.IsActive = &v[0]
	}

	results, err := h.service.ListHabits(c.Request().Context(), userID, filters)
	if err != nil {
		h.metrics.Observe("list", outcome(err), start)
		return err
	}

	h.metrics.Observe("list", metrics.OutcomeSuccess, start)
	return c.JSON(http.StatusOK, toHabitResponses(results))
}

// Get handles GET /api/habits/:id.
//
// @Summary      Get a habit by id
// @Tags         habits
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Habit id"
// @Success      200  {object}  habitResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/habits/{id} [get]
func (h *HabitHandler) Get(c echo.Context) error {
	start := time.Now()

	userID, err := ctxUserID(c, h.tr)
	if err != nil {
		h.metrics.Observe("get", outcome(err), start)
		return err
	}

	res, err := h.service.GetHabit(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		h.metrics.Observe("get", outcome(err), start)
		return err
	}

	h.metrics.Observe("get", metrics.OutcomeSuccess, start)
	return c.JSON(http.StatusOK, toHabitResponse(res))
}

// Update handles PUT /api/habits/:id. Omitted optional fields keep their
// stored values.
//
// @Summary      Replace a habit
// @Tags         habits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Habit id"
// @Param        body  body      updateHabitRequest  true  "Habit"
// @Success      200   {object}  habitResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/habits/{id} [put]
func (h *HabitHandler) Update(c echo.Context) error {
	start := time.Now()

	userID, err := ctxUserID(c, h.tr)
	if err != nil {
		h.metrics.Observe("update", outcome(err), start)
		return err
	}

	var req updateHabitRequest
	if err := h.bind(c, &req); err != nil {
		h.metrics.Observe("update", outcome(err), start)
		return err
	}

	res, err := h.service.UpdateHabit(c.Request().Context(), userID, c.Param("id"), req.toInput())
	if err != nil {
		h.metrics.Observe("update", outcome(err), start)
		return err
	}

	h.metrics.Observe("update", metrics.OutcomeSuccess, start)
	return c.JSON(http.StatusOK, toHabitResponse(res))
}

// Patch handles PATCH /api/habits/:id.
//
// @Summary      Update some fields of a habit
// @Tags         habits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Habit id"
// @Param        body  body      patchHabitRequest  true  "Fields to change"
// @Success      200   {object}  habitResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/habits/{id} [patch]
func (h *HabitHandler) Patch(c echo.Context) error {
	start := time.Now()

	userID, err := ctxUserID(c, h.tr)
	if err != nil {
		h.metrics.Observe("patch", outcome(err), start)
		return err
	}

	var req patchHabitRequest
	if err := h.bind(c, &req); err != nil {
		h.metrics.Observe("patch", outcome(err), start)
		return err
	}

	res, err := h.service.PatchHabit(c.Request().Context(), userID, c.Param("id"), req.toInput())
	if err != nil {
		h.metrics.Observe("patch", outcome(err), start)
		return err
	}

	h.metrics.Observe("patch", metrics.OutcomeSuccess, start)
	return c.JSON(http.StatusOK, toHabitResponse(res))
}

// Delete handles DELETE /api/habits/:id.
//
// @Summary      Delete a habit
// @Tags         habits
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Habit id"
// @Success      200  {object}  deleteHabitResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/habits/{id} [delete]
func (h *HabitHandler) Delete(c echo.Context) error {
	start := time.Now()

	userID, err := ctxUserID(c, h.tr)
	if err != nil {
		h.metrics.Observe("delete", outcome(err), start)
		return err
	}

	res, err := h.service.DeleteHabit(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		h.metrics.Observe("delete", outcome(err), start)
		return err
	}

	h.metrics.Observe("delete", metrics.OutcomeSuccess, start)
	return c.JSON(http.StatusOK, deleteHabitResponse{Message: res.Message, ID: res.ID})
}

// bind decodes and validates the body. Both failures are validation errors.
func (h *HabitHandler) bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError(h.tr.T(i18n.MsgInvalidData))
	}
	if err := c.Validate(req); err != nil {
		return domain.NewValidationError(err.Error())
	}
	return nil
}

// outcome is the metrics label for a failed operation.
func outcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrHabitNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	}
	return "internal"
}
