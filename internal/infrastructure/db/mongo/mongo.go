package mongo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/singleflight"
)

const defaultTimeout = 10 * time.Second

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// State is the lifecycle stage of a Connector.
type State int32

const (
	StateUninitialized State = iota
	StateConnecting
	StateReady
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// ErrNotConnected is returned by Ping when no connection has been established.
var ErrNotConnected = errors.New("mongo: not connected")

type dialFunc func(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error)

// Connector owns the process-wide MongoDB connection. It moves from
// uninitialized to connecting to ready; a failed attempt goes back to
// uninitialized so the next caller retries. Concurrent callers share a single
// attempt.
type Connector struct {
	cfg  Config
	dial dialFunc
	log  zerolog.Logger

	group singleflight.Group

	mu      sync.RWMutex
	state   State
	client  *mongo.Client
	db      *mongo.Database
	onReady []func(context.Context, *mongo.Database) error
}

// NewConnector returns a Connector that has not dialled yet.
func NewConnector(cfg Config, log zerolog.Logger) *Connector {
	return &Connector{cfg: cfg, dial: Connect, log: log}
}

// OnConnect registers fn to run after every successful dial. Hook errors are
// logged and do not fail the connection.
func (c *Connector) OnConnect(fn func(context.Context, *mongo.Database) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReady = append(c.onReady, fn)
}

// State reports the current lifecycle stage.
func (c *Connector) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Database returns the connected database, dialling first if needed.
func (c *Connector) Database(ctx context.Context) (*mongo.Database, error) {
	if db := c.ready(); db != nil {
		return db, nil
	}

	v, err, _ := c.group.Do("connect", func() (any, error) {
		if db := c.ready(); db != nil {
			return db, nil
		}
		return c.connect(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return v.(*mongo.Database), nil
}

// Connect dials if the connector is not ready yet.
func (c *Connector) Connect(ctx context.Context) error {
	_, err := c.Database(ctx)
	return err
}

// Ping checks the established connection without dialling.
func (c *Connector) Ping(ctx context.Context) error {
	c.mu.RLock()
	client := c.client
	c.mu.RUnlock()
	if client == nil {
		return ErrNotConnected
	}
	return client.Ping(ctx, nil)
}

// Disconnect closes the connection and returns the connector to uninitialized.
func (c *Connector) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	client := c.client
	c.client, c.db, c.state = nil, nil, StateUninitialized
	c.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

func (c *Connector) ready() *mongo.Database {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state == StateReady {
		return c.db
	}
	return nil
}

func (c *Connector) connect(ctx context.Context) (*mongo.Database, error) {
	c.setState(StateConnecting)
	start := time.Now()

	client, db, err := c.dial(ctx, c.cfg)
	if err != nil {
		c.setState(StateUninitialized)
		c.log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("mongo connection failed")
		return nil, err
	}

	c.mu.Lock()
	c.client, c.db, c.state = client, db, StateReady
	hooks := append([]func(context.Context, *mongo.Database) error(nil), c.onReady...)
	c.mu.Unlock()

	c.log.Info().Str("database", c.cfg.Database).Dur("elapsed", time.Since(start)).Msg("mongo connected")

	for _, hook := range hooks {
		if err := hook(ctx, db); err != nil {
			c.log.Warn().Err(err).Msg("mongo on-connect hook failed")
		}
	}
	return db, nil
}

func (c *Connector) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
