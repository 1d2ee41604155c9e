package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/habitus/habit-api/pkg/logger"
)

func resetInstance(t *testing.T) {
	t.Cleanup(func() {
		mu.Lock()
		if instance != nil {
			_ = instance.Close(context.Background())
		}
		instance = nil
		mu.Unlock()
		logger.Reset()
	})
}

func get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	Handler(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandler_RetriesFailedSetup(t *testing.T) {
	resetInstance(t)
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("STORE_DRIVER", "bogus")

	rec := get("/health")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Erro interno do servidor"}`, rec.Body.String())

	t.Setenv("STORE_DRIVER", "memory")

	rec = get("/health")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_BuildsOnce(t *testing.T) {
	resetInstance(t)
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("STORE_DRIVER", "memory")

	assert.Equal(t, http.StatusOK, get("/health").Code)
	first := instance

	assert.Equal(t, http.StatusOK, get("/health").Code)
	assert.Same(t, first, instance)
}
