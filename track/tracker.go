package track

import (
	"errors"
	"fmt"
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"go.uber.org/zap"

	"github.com/wippyai/ownership"
)

// ErrIDReused is returned by AllocCounter when the wrapped allocator hands
// out an id that is still live.
var ErrIDReused = errors.New("counter id reused while live")

// Tracker is an ownership.CounterAllocator that records live counter ids.
type Tracker struct {
	next ownership.CounterAllocator

	mu          sync.Mutex
	live        *roaring64.Bitmap
	allocs      uint64
	frees       uint64
	doubleFrees uint64
}

var _ ownership.CounterAllocator = (*Tracker)(nil)

// New creates a tracker in front of next. A nil next uses a fresh heap
// allocator so ids are unique to this tracker.
func New(next ownership.CounterAllocator) *Tracker {
	if next == nil {
		next = ownership.NewHeapAllocator()
	}
	return &Tracker{
		next: next,
		live: roaring64.New(),
	}
}

// AllocCounter allocates from the wrapped allocator and records the id.
// An id that is already live is refused with ErrIDReused and stays owned by
// the lineage that holds it.
func (t *Tracker) AllocCounter(resource uintptr) (uint64, error) {
	id, err := t.next.AllocCounter(resource)
	if err != nil {
		return 0, err
	}

	t.mu.Lock()
	added := t.live.CheckedAdd(id)
	if added {
		t.allocs++
	}
	t.mu.Unlock()

	if !added {
		ownership.Logger().Error("counter id reused while live",
			zap.Uint64("counter", id),
			zap.Uintptr("resource", resource),
		)
		return 0, fmt.Errorf("%w: %d", ErrIDReused, id)
	}
	return id, nil
}

// FreeCounter forgets the id and frees through the wrapped allocator.
// Ids that are not live are counted as double frees and not forwarded.
func (t *Tracker) FreeCounter(id uint64, resource uintptr) {
	t.mu.Lock()
	removed := t.live.CheckedRemove(id)
	if removed {
		t.frees++
	} else {
		t.doubleFrees++
	}
	t.mu.Unlock()

	if !removed {
		ownership.Logger().Error("free of unknown counter",
			zap.Uint64("counter", id),
			zap.Uintptr("resource", resource),
		)
		return
	}
	t.next.FreeCounter(id, resource)
}

// Live returns the ids of counters not yet freed, in ascending order.
func (t *Tracker) Live() []uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live.ToArray()
}

// LiveCount returns the number of counters not yet freed.
func (t *Tracker) LiveCount() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live.GetCardinality()
}

// IsLive reports whether id was allocated and not yet freed.
func (t *Tracker) IsLive(id uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live.Contains(id)
}

// Allocs returns the number of successful allocations.
func (t *Tracker) Allocs() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.allocs
}

// Frees returns the number of frees of live counters.
func (t *Tracker) Frees() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frees
}

// DoubleFrees returns the number of frees of ids that were not live.
func (t *Tracker) DoubleFrees() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.doubleFrees
}
