package refcount

import (
	"github.com/wippyai/ownership/errors"
)

// State is the lifecycle state of a resource lineage.
type State uint8

const (
	StateLive State = iota
	StateOrphaned
	StateFreed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateLive:
		return "live"
	case StateOrphaned:
		return "orphaned"
	case StateFreed:
		return "freed"
	default:
		return "unknown"
	}
}

// Counter is the owner/observer count record of one resource lineage.
type Counter struct {
	owners    int
	observers int
	id        uint64
	resource  uintptr // diagnostics only
	freed     bool
}

// New returns a counter for the resource at addr with one owner.
func New(id uint64, resource uintptr) *Counter {
	return &Counter{
		owners:   1,
		id:       id,
		resource: resource,
	}
}

// IncreaseOwner adds an owner and returns the new owner count.
func (c *Counter) IncreaseOwner() int {
	c.owners++
	return c.owners
}

// DecreaseOwner removes an owner and returns the new owner count.
func (c *Counter) DecreaseOwner() int {
	if c.owners == 0 {
		panic(errors.Underflow("owner", c.resource))
	}
	c.owners--
	return c.owners
}

// IncreaseObserver adds an observer and returns the new observer count.
func (c *Counter) IncreaseObserver() int {
	c.observers++
	return c.observers
}

// DecreaseObserver removes an observer and returns the new observer count.
func (c *Counter) DecreaseObserver() int {
	if c.observers == 0 {
		panic(errors.Underflow("observer", c.resource))
	}
	c.observers--
	return c.observers
}

// Owners returns the number of live shared handles.
func (c *Counter) Owners() int {
	return c.owners
}

// Observers returns the number of live weak handles.
func (c *Counter) Observers() int {
	return c.observers
}

// ID returns the identity assigned by the counter allocator.
func (c *Counter) ID() uint64 {
	return c.id
}

// Resource returns the address of the resource this counter was created for.
func (c *Counter) Resource() uintptr {
	return c.resource
}

// Freed reports whether MarkFreed has been called.
func (c *Counter) Freed() bool {
	return c.freed
}

// Releasable reports whether both counts are zero.
func (c *Counter) Releasable() bool {
	return c.owners == 0 && c.observers == 0
}

// State returns the lineage state derived from the counts.
func (c *Counter) State() State {
	switch {
	case c.freed:
		return StateFreed
	case c.owners > 0:
		return StateLive
	default:
		return StateOrphaned
	}
}

// MarkFreed records that the owning handle released this record.
// Panics if the record is still referenced or was already freed.
func (c *Counter) MarkFreed() {
	if c.freed || !c.Releasable() {
		panic(errors.DoubleFree(c.resource, c.owners, c.observers))
	}
	c.freed = true
}
