// Package cache stores computed settlement plans per group.
//
// Plans are never expired by time. A ledger write brackets its commit
// with BeginWrite and EndWrite; both bump the group's version and drop its
// plan, and the group counts as being written in between. A reader takes a
// Stamp before loading the ledger and passes it to Put. Put stores nothing
// when the stamp was taken during a write, when a write is in flight, or
// when the version moved, so a plan computed from uncommitted or older
// data is discarded. If EndWrite never lands the group stays marked for
// WriteLease, and plans are recomputed on every read until then.
package cache

import (
	"context"
	"time"

	"github.com/fkhayef/splitsettle/internal/planner"
)

// WriteLease bounds how long an unfinished write keeps a group uncacheable
const WriteLease = 5 * time.Minute

// Stamp is a group's cache state observed before its ledger is loaded
type Stamp struct {
	Version uint64
	// Writing is set when a ledger write was in flight
	Writing bool
}

// Cache is a versioned plan store. Implementations are safe for
// concurrent use.
type Cache interface {
	// Version returns the group's current stamp
	Version(ctx context.Context, groupID string) (Stamp, error)
	// Get returns the cached plan, if any
	Get(ctx context.Context, groupID string) ([]planner.Transaction, bool, error)
	// Put stores plan only if no write happened since stamp was taken and
	// none is in flight. It reports whether the plan was stored.
	Put(ctx context.Context, groupID string, stamp Stamp, plan []planner.Transaction) (bool, error)
	// BeginWrite marks a ledger write in flight and drops the plan
	BeginWrite(ctx context.Context, groupID string) error
	// EndWrite clears the mark set by BeginWrite and drops the plan again
	EndWrite(ctx context.Context, groupID string) error
}

func clonePlan(plan []planner.Transaction) []planner.Transaction {
	out := make([]planner.Transaction, len(plan))
	copy(out, plan)
	return out
}
