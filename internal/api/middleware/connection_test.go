package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type connectorFunc func(ctx context.Context) error

func (f connectorFunc) Connect(ctx context.Context) error { return f(ctx) }

func TestEnsureConnection(t *testing.T) {
	tests := []struct {
		name    string
		connErr error
		wantLog bool
	}{
		{name: "connected", connErr: nil},
		{name: "connection fails, request continues", connErr: errors.New("server selection timeout"), wantLog: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := zerolog.New(&buf)

			attempts := 0
			mw := EnsureConnection(connectorFunc(func(context.Context) error {
				attempts++
				return tt.connErr
			}), log)

			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/habits", nil), rec)

			called := false
			err := mw(func(c echo.Context) error {
				called = true
				return c.NoContent(http.StatusOK)
			})(c)

			require.NoError(t, err)
			assert.True(t, called)
			assert.Equal(t, 1, attempts)
			assert.Equal(t, tt.wantLog, bytes.Contains(buf.Bytes(), []byte("database connection unavailable")))
		})
	}
}
