package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitus/habit-api/internal/api/metrics"
	"github.com/habitus/habit-api/internal/api/middleware"
	"github.com/habitus/habit-api/internal/core/domain"
	"github.com/habitus/habit-api/internal/core/ports"
	"github.com/habitus/habit-api/internal/pkg/i18n"
)

type stubHabitService struct {
	createFn func(ctx context.Context, userID string, in ports.CreateHabitInput) (*ports.HabitResult, error)
	listFn   func(ctx context.Context, userID string, f ports.HabitFilters) ([]ports.HabitResult, error)
	getFn    func(ctx context.Context, userID, habitID string) (*ports.HabitResult, error)
	updateFn func(ctx context.Context, userID, habitID string, in ports.UpdateHabitInput) (*ports.HabitResult, error)
	patchFn  func(ctx context.Context, userID, habitID string, in ports.PatchHabitInput) (*ports.HabitResult, error)
	deleteFn func(ctx context.Context, userID, habitID string) (*ports.DeleteResult, error)
}

func (s *stubHabitService) CreateHabit(ctx context.Context, userID string, in ports.CreateHabitInput) (*ports.HabitResult, error) {
	return s.createFn(ctx, userID, in)
}

func (s *stubHabitService) ListHabits(ctx context.Context, userID string, f ports.HabitFilters) ([]ports.HabitResult, error) {
	return s.listFn(ctx, userID, f)
}

func (s *stubHabitService) GetHabit(ctx context.Context, userID, habitID string) (*ports.HabitResult, error) {
	return s.getFn(ctx, userID, habitID)
}

func (s *stubHabitService) UpdateHabit(ctx context.Context, userID, habitID string, in ports.UpdateHabitInput) (*ports.HabitResult, error) {
	return s.updateFn(ctx, userID, habitID, in)
}

func (s *stubHabitService) PatchHabit(ctx context.Context, userID, habitID string, in ports.PatchHabitInput) (*ports.HabitResult, error) {
	return s.patchFn(ctx, userID, habitID, in)
}

func (s *stubHabitService) DeleteHabit(ctx context.Context, userID, habitID string) (*ports.DeleteResult, error) {
	return s.deleteFn(ctx, userID, habitID)
}

var testTime = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func sampleResult(msg string) *ports.HabitResult {
	return &ports.HabitResult{
		ID: "h1", Name: "Read", Frequency: "Diário", IsActive: true, UserID: "u1",
		CreatedAt: testTime, UpdatedAt: testTime, Message: msg,
	}
}

// request builds an echo context that already passed the Auth middleware as
// userID. An empty userID simulates a route without authentication.
func request(method, target, body, userID string) (echo.Context, *httptest.ResponseRecorder) {
	e := newEcho()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set(middleware.ContextKeyUserID, userID)
	}
	return c, rec
}

func newHandler(svc ports.HabitService) (*HabitHandler, *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry())
	return NewHabitHandler(svc, i18n.MustNew("en"), m), m
}

func TestHabitHandler_Create(t *testing.T) {
	svc := &stubHabitService{
		createFn: func(ctx context.Context, userID string, in ports.CreateHabitInput) (*ports.HabitResult, error) {
			assert.Equal(t, "u1", userID)
			assert.Equal(t, "Read", in.Name)
			require.NotNil(t, in.Frequency)
			assert.Equal(t, domain.FrequencyWeekly, *in.Frequency)
			assert.Nil(t, in.IsActive)
			assert.Equal(t, "key-1", in.IdempotencyKey)
			return sampleResult("Habit created successfully"), nil
		},
	}
	h, m := newHandler(svc)

	c, rec := request(http.MethodPost, "/api/habits", `{"name":"Read","frequency":"Semanal"}`, "u1")
	c.Request().Header.Set(HeaderIdempotencyKey, "key-1")

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{
		"id":"h1","name":"Read","frequency":"Diário","isActive":true,"userId":"u1",
		"createdAt":"2026-05-01T12:00:00Z","updatedAt":"2026-05-01T12:00:00Z",
		"message":"Habit created successfully"
	}`, rec.Body.String())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("create", metrics.OutcomeSuccess)))
}

func TestHabitHandler_Create_Replay(t *testing.T) {
	svc := &stubHabitService{
		createFn: func(ctx context.Context, userID string, in ports.CreateHabitInput) (*ports.HabitResult, error) {
			res := sampleResult("Habit created successfully")
			res.Replayed = true
			return res, nil
		},
	}
	h, m := newHandler(svc)

	c, rec := request(http.MethodPost, "/api/habits", `{"name":"Read"}`, "u1")

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("create", metrics.OutcomeReplay)))
}

func TestHabitHandler_Create_RejectsBadInput(t *testing.T) {
	svc := &stubHabitService{
		createFn: func(ctx context.Context, userID string, in ports.CreateHabitInput) (*ports.HabitResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h, m := newHandler(svc)

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"malformed json", `{"name":`, "Invalid data"},
		{"wrong type", `{"name":"Read","isActive":"yes"}`, "Invalid data"},
		{"unknown frequency", `{"name":"Read","frequency":"Anual"}`, "frequency must be one of: Diário Semanal Quinzenal Mensal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := request(http.MethodPost, "/api/habits", tt.body, "u1")

			err := h.Create(c)
			require.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, tt.wantMsg, domain.MessageOf(err))
		})
	}
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Operations.WithLabelValues("create", "validation")))
}

func TestHabitHandler_RequiresUser(t *testing.T) {
	h, m := newHandler(&stubHabitService{})

	calls := map[string]func(echo.Context) error{
		"create": h.Create, "list": h.List, "get": h.Get,
		"update": h.Update, "patch": h.Patch, "delete": h.Delete,
	}
	for name, call := range calls {
		c, _ := request(http.MethodGet, "/api/habits", "", "")
		err := call(c)
		assert.ErrorIs(t, err, domain.ErrUnauthorized, name)
		assert.Equal(t, "Unauthorized access", domain.MessageOf(err), name)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues(name, "unauthorized")), name)
	}
}

func TestHabitHandler_List(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantActive *string
		wantFreq   string
		wantName   string
	}{
		{name: "no filters", target: "/api/habits"},
		{name: "all filters", target: "/api/habits?isActive=false&frequency=Mensal&name=run", wantActive: ptr("false"), wantFreq: "Mensal", wantName: "run"},
		{name: "empty isActive is still present", target: "/api/habits?isActive=", wantActive: ptr("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubHabitService{
				listFn: func(ctx context.Context, userID string, f ports.HabitFilters) ([]ports.HabitResult, error) {
					assert.Equal(t, "u1", userID)
					assert.Equal(t, tt.wantActive, f.IsActive)
					assert.Equal(t, tt.wantFreq, f.Frequency)
					assert.Equal(t, tt.wantName, f.Name)
					return nil, nil
				},
			}
			h, _ := newHandler(svc)
			c, rec := request(http.MethodGet, tt.target, "", "u1")

			require.NoError(t, h.List(c))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `[]`, rec.Body.String())
		})
	}
}

func TestHabitHandler_Get(t *testing.T) {
	svc := &stubHabitService{
		getFn: func(ctx context.Context, userID, habitID string) (*ports.HabitResult, error) {
			if habitID == "h1" {
				return sampleResult(""), nil
			}
			return nil, domain.NewHabitNotFoundError("Habit not found")
		},
	}
	h, m := newHandler(svc)

	c, rec := request(http.MethodGet, "/api/habits/h1", "", "u1")
	c.SetParamNames("id")
	c.SetParamValues("h1")
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "h1", body["id"])
	assert.NotContains(t, body, "message")

	c, _ = request(http.MethodGet, "/api/habits/h2", "", "u1")
	c.SetParamNames("id")
	c.SetParamValues("h2")
	assert.ErrorIs(t, h.Get(c), domain.ErrHabitNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("get", "not_found")))
}

func TestHabitHandler_Update(t *testing.T) {
	svc := &stubHabitService{
		updateFn: func(ctx context.Context, userID, habitID string, in ports.UpdateHabitInput) (*ports.HabitResult, error) {
			assert.Equal(t, "h1", habitID)
			assert.Equal(t, "Read more", in.Name)
			assert.Nil(t, in.Description)
			require.NotNil(t, in.IsActive)
			assert.False(t, *in.IsActive)
			return sampleResult("Habit updated successfully"), nil
		},
	}
	h, _ := newHandler(svc)

	c, rec := request(http.MethodPut, "/api/habits/h1", `{"name":"Read more","isActive":false}`, "u1")
	c.SetParamNames("id")
	c.SetParamValues("h1")

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"Habit updated successfully"`)
}

func TestHabitHandler_Patch(t *testing.T) {
	svc := &stubHabitService{
		patchFn: func(ctx context.Context, userID, habitID string, in ports.PatchHabitInput) (*ports.HabitResult, error) {
			assert.Nil(t, in.Name)
			require.NotNil(t, in.Description)
			assert.Equal(t, "", *in.Description)
			return nil, domain.NewForbiddenError("You do not have permission to access this resource")
		},
	}
	h, m := newHandler(svc)

	c, _ := request(http.MethodPatch, "/api/habits/h1", `{"description":""}`, "u2")
	c.SetParamNames("id")
	c.SetParamValues("h1")

	assert.ErrorIs(t, h.Patch(c), domain.ErrForbidden)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("patch", "forbidden")))
}

func TestHabitHandler_Delete(t *testing.T) {
	svc := &stubHabitService{
		deleteFn: func(ctx context.Context, userID, habitID string) (*ports.DeleteResult, error) {
			if habitID == "boom" {
				return nil, domain.NewInternalError("Error deleting habit")
			}
			return &ports.DeleteResult{Message: "Habit deleted successfully", ID: habitID}, nil
		},
	}
	h, m := newHandler(svc)

	c, rec := request(http.MethodDelete, "/api/habits/h1", "", "u1")
	c.SetParamNames("id")
	c.SetParamValues("h1")
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Habit deleted successfully","id":"h1"}`, rec.Body.String())

	c, _ = request(http.MethodDelete, "/api/habits/boom", "", "u1")
	c.SetParamNames("id")
	c.SetParamValues("boom")
	err := h.Delete(c)
	assert.True(t, errors.Is(err, domain.ErrInternal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("delete", "internal")))
}

func ptr[T any](v T) *T { return &v }
