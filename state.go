package ownership

import (
	"github.com/wippyai/ownership/internal/refcount"
)

// State is the lifecycle state of a resource lineage.
type State = refcount.State

const (
	StateLive     = refcount.StateLive     // owners > 0
	StateOrphaned = refcount.StateOrphaned // owners == 0, observers > 0
	StateFreed    = refcount.StateFreed    // counter released
)

// Outcome reports what a shared handle's disposal released.
type Outcome uint8

const (
	// OutcomeNone means the handle was already empty.
	OutcomeNone Outcome = iota
	// OutcomeStillOwned means other owners remain; nothing was released.
	OutcomeStillOwned
	// OutcomeLastOwner means the resource was released and, with no
	// observers left, the counter record was freed.
	OutcomeLastOwner
	// OutcomeLastOwnerObserved means the resource was released but the
	// counter record survives for the remaining observers.
	OutcomeLastOwnerObserved
)

// String returns a human-readable representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeStillOwned:
		return "still-owned"
	case OutcomeLastOwner:
		return "last-owner"
	case OutcomeLastOwnerObserved:
		return "last-owner-observed"
	default:
		return "unknown"
	}
}

// ResourceReleased reports whether the disposal released the resource.
func (o Outcome) ResourceReleased() bool {
	return o == OutcomeLastOwner || o == OutcomeLastOwnerObserved
}

// CounterFreed reports whether the disposal freed the counter record.
func (o Outcome) CounterFreed() bool {
	return o == OutcomeLastOwner
}
