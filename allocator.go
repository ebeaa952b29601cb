package ownership

import (
	"sync/atomic"

	"github.com/wippyai/ownership/internal/refcount"
)

// CounterAllocator supplies identities for reference counter records.
//
// AllocCounter is called once when a resource first becomes shared-owned.
// A non-nil error aborts the acquisition and leaves the resource unwrapped.
// FreeCounter is called exactly once per successful AllocCounter, when both
// the owner and observer counts of the lineage have reached zero.
type CounterAllocator interface {
	AllocCounter(resource uintptr) (id uint64, err error)
	FreeCounter(id uint64, resource uintptr)
}

// AllocStats reports counter allocation activity.
type AllocStats struct {
	Allocs uint64
	Frees  uint64
}

// Live returns the number of counter records not yet freed.
func (s AllocStats) Live() uint64 {
	return s.Allocs - s.Frees
}

// HeapAllocator is the default CounterAllocator. It never fails.
// Its id sequence is atomic so lineages on different goroutines may share it.
type HeapAllocator struct {
	next   atomic.Uint64
	allocs atomic.Uint64
	frees  atomic.Uint64
}

// NewHeapAllocator creates a new heap allocator.
func NewHeapAllocator() *HeapAllocator {
	return &HeapAllocator{}
}

// AllocCounter returns the next counter id.
func (a *HeapAllocator) AllocCounter(resource uintptr) (uint64, error) {
	a.allocs.Add(1)
	return a.next.Add(1), nil
}

// FreeCounter records the release of a counter.
func (a *HeapAllocator) FreeCounter(id uint64, resource uintptr) {
	a.frees.Add(1)
}

// Stats returns allocation statistics.
func (a *HeapAllocator) Stats() AllocStats {
	return AllocStats{
		Allocs: a.allocs.Load(),
		Frees:  a.frees.Load(),
	}
}

var defaultAllocator atomic.Pointer[allocatorBox]

type allocatorBox struct {
	CounterAllocator
}

func init() {
	defaultAllocator.Store(&allocatorBox{NewHeapAllocator()})
}

// DefaultAllocator returns the allocator used when WithAllocator is absent.
func DefaultAllocator() CounterAllocator {
	return defaultAllocator.Load().CounterAllocator
}

// SetDefaultAllocator replaces the default allocator for lineages created
// afterwards. Existing lineages keep freeing through the allocator they were
// created with. Passing nil restores a fresh HeapAllocator.
func SetDefaultAllocator(a CounterAllocator) {
	if a == nil {
		a = NewHeapAllocator()
	}
	defaultAllocator.Store(&allocatorBox{a})
}

// controlBlock ties a counter record to the allocator that must free it.
type controlBlock struct {
	*refcount.Counter
	alloc CounterAllocator
}

func newControlBlock(alloc CounterAllocator, addr uintptr) (*controlBlock, error) {
	id, err := alloc.AllocCounter(addr)
	if err != nil {
		return nil, err
	}
	cb := &controlBlock{
		Counter: refcount.New(id, addr),
		alloc:   alloc,
	}
	logCounter("create counter", cb)
	return cb, nil
}

func freeControlBlock(cb *controlBlock) {
	cb.MarkFreed()
	cb.alloc.FreeCounter(cb.ID(), cb.Resource())
	logCounter("delete counter", cb)
}
