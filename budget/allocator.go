package budget

import (
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/wippyai/ownership"
)

// ErrLimitExceeded is returned by AllocCounter when every slot is in use.
var ErrLimitExceeded = errors.New("counter budget exceeded")

// Config holds counter limits.
type Config struct {
	// MaxCounters is the maximum number of live counter records.
	// If 0 or negative, no limit is enforced (only tracking).
	MaxCounters int64
}

// Allocator is an ownership.CounterAllocator with a fixed budget.
type Allocator struct {
	cfg  Config
	next ownership.CounterAllocator

	sem   *semaphore.Weighted // nil if unlimited
	inUse atomic.Int64
}

var _ ownership.CounterAllocator = (*Allocator)(nil)

// New creates a budgeted allocator in front of next. A nil next uses the
// package default allocator at the time of the call.
func New(cfg Config, next ownership.CounterAllocator) *Allocator {
	if next == nil {
		next = ownership.DefaultAllocator()
	}
	a := &Allocator{
		cfg:  cfg,
		next: next,
	}
	if cfg.MaxCounters > 0 {
		a.sem = semaphore.NewWeighted(cfg.MaxCounters)
	}
	return a
}

// AllocCounter reserves a slot and allocates from the wrapped allocator.
func (a *Allocator) AllocCounter(resource uintptr) (uint64, error) {
	if a.sem != nil && !a.sem.TryAcquire(1) {
		return 0, ErrLimitExceeded
	}
	id, err := a.next.AllocCounter(resource)
	if err != nil {
		if a.sem != nil {
			a.sem.Release(1)
		}
		return 0, err
	}
	a.inUse.Add(1)
	return id, nil
}

// FreeCounter frees through the wrapped allocator and returns the slot.
func (a *Allocator) FreeCounter(id uint64, resource uintptr) {
	a.next.FreeCounter(id, resource)
	a.inUse.Add(-1)
	if a.sem != nil {
		a.sem.Release(1)
	}
}

// InUse returns the number of counters currently allocated.
func (a *Allocator) InUse() int64 {
	return a.inUse.Load()
}

// Limit returns the configured maximum, or 0 when unlimited.
func (a *Allocator) Limit() int64 {
	if a.cfg.MaxCounters <= 0 {
		return 0
	}
	return a.cfg.MaxCounters
}
