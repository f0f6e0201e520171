package store

import (
	"context"
	"errors"
	"time"

	"github.com/mvasquez/persona-sim/internal/model/simulation"
)

// ErrNotFound reports that no live session exists for the id: either it
// was never written or its TTL elapsed. Callers cannot distinguish the
// two cases, and do not need to.
var ErrNotFound = errors.New("session not found")

// DefaultTTL is the sliding expiry applied when the caller does not
// override it: every write pushes the deadline out again, so abandoned
// sessions age out while active conversations never expire mid-use.
const DefaultTTL = 24 * time.Hour

// Store persists serialized session state between requests. Put fully
// replaces the value at id and resets its expiry; there are no
// field-level updates.
type Store interface {
	Get(ctx context.Context, id string) (simulation.Session, error)
	Put(ctx context.Context, id string, session simulation.Session, ttl time.Duration) error
}
