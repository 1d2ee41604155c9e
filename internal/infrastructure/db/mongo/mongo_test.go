package mongo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func newTestConnector(dial dialFunc) *Connector {
	c := NewConnector(Config{URI: "mongodb://example", Database: "habits"}, zerolog.Nop())
	c.dial = dial
	return c
}

func TestConnector_StartsUninitialized(t *testing.T) {
	c := newTestConnector(nil)

	assert.Equal(t, StateUninitialized, c.State())
	assert.ErrorIs(t, c.Ping(context.Background()), ErrNotConnected)
	assert.NoError(t, c.Disconnect(context.Background()))
}

func TestConnector_ConcurrentCallersShareOneDial(t *testing.T) {
	var dials atomic.Int32
	release := make(chan struct{})
	db := &mongo.Database{}

	c := newTestConnector(func(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
		dials.Add(1)
		<-release
		return nil, db, nil
	})

	const callers = 16
	var wg sync.WaitGroup
	results := make([]*mongo.Database, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := c.Database(context.Background())
			assert.NoError(t, err)
			results[i] = got
		}(i)
	}

	require.Eventually(t, func() bool { return c.State() == StateConnecting }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), dials.Load())
	assert.Equal(t, StateReady, c.State())
	for _, got := range results {
		assert.Same(t, db, got)
	}

	// Ready connectors never dial again.
	_, err := c.Database(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), dials.Load())
}

func TestConnector_FailureReturnsToUninitialized(t *testing.T) {
	var dials int
	db := &mongo.Database{}
	c := newTestConnector(func(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
		dials++
		if dials == 1 {
			return nil, nil, errors.New("server selection timeout")
		}
		return nil, db, nil
	})

	_, err := c.Database(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateUninitialized, c.State())

	got, err := c.Database(context.Background())
	require.NoError(t, err)
	assert.Same(t, db, got)
	assert.Equal(t, StateReady, c.State())
	assert.Equal(t, 2, dials)
}

func TestConnector_RunsHooksAndToleratesFailures(t *testing.T) {
	db := &mongo.Database{}
	c := newTestConnector(func(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
		return nil, db, nil
	})

	var calls []string
	c.OnConnect(func(_ context.Context, got *mongo.Database) error {
		assert.Same(t, db, got)
		calls = append(calls, "schema")
		return errors.New("not authorized on admin")
	})
	c.OnConnect(func(context.Context, *mongo.Database) error {
		calls = append(calls, "second")
		return nil
	})

	_, err := c.Database(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"schema", "second"}, calls)
	assert.Equal(t, StateReady, c.State())
}

func TestConnector_CancelledCallerDoesNotAbortDial(t *testing.T) {
	db := &mongo.Database{}
	c := newTestConnector(func(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, db, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := c.Database(ctx)
	require.NoError(t, err)
	assert.Same(t, db, got)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "ready", StateReady.String())
}
