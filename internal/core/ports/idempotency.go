package ports

import "context"

// IdempotencyStore remembers which habit a create request key produced.
// Keys are scoped per user.
type IdempotencyStore interface {
	// Lookup returns the habit id stored for key, or "" when none is stored.
	Lookup(ctx context.Context, userID, key string) (string, error)
	Remember(ctx context.Context, userID, key, habitID string) error
}
