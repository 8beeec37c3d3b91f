package ports

import "context"

// IdempotencyStore remembers which task a client-supplied Idempotency-Key
// produced, per owner.
type IdempotencyStore interface {
	Lookup(ctx context.Context, ownerID, key string) (taskID string, found bool, err error)
	Remember(ctx context.Context, ownerID, key, taskID string) error
}
