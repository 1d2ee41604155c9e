// Package handler is the serverless function entrypoint. The platform calls
// Handler for every request; the application is built once per instance and
// reused while the instance stays warm.
package handler

import (
	"context"
	"net/http"
	"sync"

	"github.com/habitus/habit-api/internal/app"
	"github.com/habitus/habit-api/internal/pkg/config"
)

var (
	mu       sync.Mutex
	instance *app.App
)

func newApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg)
}

// current returns the instance's application, building it on first use. A
// failed build is not cached; the next request tries again.
func current() (*app.App, error) {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance, nil
	}
	a, err := newApp(context.Background())
	if err != nil {
		return nil, err
	}
	instance = a
	return a, nil
}

// Handler serves one request. The database connection is attempted per
// request by the connection middleware, so a cold start with the database
// down still answers, and a later request reconnects.
func Handler(w http.ResponseWriter, r *http.Request) {
	a, err := current()
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=UTF-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Erro interno do servidor"}`))
		return
	}
	a.Handler().ServeHTTP(w, r)
}
