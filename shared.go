package ownership

import (
	"github.com/wippyai/ownership/errors"
)

const kindShared = "shared"

// sharedCore implements the owner side of the counting protocol for both
// resource shapes.
type sharedCore[R any] struct {
	handle[R]
	rc *controlBlock
}

// acquire wraps a fresh resource in a new lineage. The handle must be empty.
// On allocation failure the handle stays empty and the resource unwrapped.
func (s *sharedCore[R]) acquire(res R, addr uintptr, def Deleter[R], opts []Option, phase errors.Phase) error {
	if addr == 0 {
		return nil
	}
	o := collect(opts)
	d := deleterFor(&o, kindShared, def)
	cb, err := newControlBlock(o.counterAllocator(), addr)
	if err != nil {
		return errors.AllocationFailed(phase, addr, err)
	}
	s.adopt(res, addr, d)
	s.rc = cb
	logResource("retain resource", kindShared, addr)
	return nil
}

// release drops this handle's ownership.
func (s *sharedCore[R]) release() Outcome {
	cb := s.rc
	if cb == nil {
		s.clear()
		return OutcomeNone
	}
	s.rc = nil

	if cb.DecreaseOwner() > 0 {
		logCounter("update ref", cb)
		s.disable()
		s.dispose(kindShared)
		return OutcomeStillOwned
	}
	logCounter("update ref", cb)

	if cb.Observers() == 0 {
		freeControlBlock(cb)
	}
	s.dispose(kindShared)
	// the deleter may have closed the last observer
	if cb.Freed() {
		return OutcomeLastOwner
	}
	return OutcomeLastOwnerObserved
}

// cloneInto makes the empty dst another owner of s's resource.
func (s *sharedCore[R]) cloneInto(dst *sharedCore[R]) {
	if s.rc == nil {
		return
	}
	dst.adopt(s.res, s.addr, s.deleter)
	dst.rc = s.rc
	dst.rc.IncreaseOwner()
	logCounter("update ref", dst.rc)
}

func (s *sharedCore[R]) assign(src *sharedCore[R]) {
	if s.rc == src.rc {
		return
	}
	s.release()
	src.cloneInto(s)
}

// moveInto releases dst's ownership and hands s's over without touching
// the counts.
func (s *sharedCore[R]) moveInto(dst *sharedCore[R]) {
	dst.release()
	dst.adopt(s.take())
	dst.rc = s.rc
	s.rc = nil
}

// Release drops this handle's ownership and reports what was released.
func (s *sharedCore[R]) Release() Outcome {
	return s.release()
}

// Reset drops this handle's ownership and empties it.
func (s *sharedCore[R]) Reset() {
	s.release()
}

// Close drops this handle's ownership. It is safe to call more than once.
func (s *sharedCore[R]) Close() error {
	s.release()
	return nil
}

// UseCount returns the number of shared handles owning the resource,
// or 0 when empty.
func (s *sharedCore[R]) UseCount() int {
	if s.rc == nil {
		return 0
	}
	return s.rc.Owners()
}

// State returns the lineage state. An empty handle reports StateFreed.
func (s *sharedCore[R]) State() State {
	if s.rc == nil {
		return StateFreed
	}
	return s.rc.State()
}

// counterOf exposes a shared handle's counter to the weak implementation.
func counterOf[R any](s *sharedCore[R]) *controlBlock {
	return s.rc
}

// lockShared makes the empty dst an owner of an existing lineage. It refuses
// when the lineage has no owners left, so a released resource is never
// resurrected.
func lockShared[R any](dst *sharedCore[R], res R, addr uintptr, d Deleter[R], cb *controlBlock) bool {
	if addr == 0 || cb == nil || cb.Owners() == 0 {
		return false
	}
	dst.adopt(res, addr, d)
	dst.rc = cb
	cb.IncreaseOwner()
	logCounter("update ref", cb)
	return true
}

// Shared owns a *T together with its clones. The resource is released when
// the last owner is disposed. The zero value is an empty handle.
type Shared[T any] struct {
	sharedCore[*T]
}

// NewShared starts a new lineage owning p. A nil p yields an empty handle.
// If the counter record cannot be allocated an *errors.Error of kind
// allocation is returned and p remains the caller's responsibility.
func NewShared[T any](p *T, opts ...Option) (s Shared[T], err error) {
	err = s.acquire(p, scalarAddr(p), ScalarDeleter[T](), opts, errors.PhaseAcquire)
	return
}

// Get returns the shared pointer, or nil when empty.
func (s *Shared[T]) Get() *T {
	return s.res
}

// Clone returns another owner of the same resource.
func (s *Shared[T]) Clone() (c Shared[T]) {
	s.cloneInto(&c.sharedCore)
	return
}

// Assign makes s an owner of src's resource, releasing s's current one.
// Nothing happens when both already share a counter.
func (s *Shared[T]) Assign(src *Shared[T]) {
	s.assign(&src.sharedCore)
}

// Move transfers s's ownership to the returned handle and empties s.
func (s *Shared[T]) Move() (dst Shared[T]) {
	s.moveInto(&dst.sharedCore)
	return
}

// MoveFrom releases s's ownership, then takes over src's. Panics if src is s.
func (s *Shared[T]) MoveFrom(src *Shared[T]) {
	if src == s {
		panic(errors.SelfMove(kindShared))
	}
	src.moveInto(&s.sharedCore)
}

// ResetTo releases s's ownership and starts a new lineage owning p, even if
// p is the address s held before. On allocation failure s is left empty and
// p remains the caller's responsibility.
func (s *Shared[T]) ResetTo(p *T, opts ...Option) error {
	s.release()
	return s.acquire(p, scalarAddr(p), ScalarDeleter[T](), opts, errors.PhaseReset)
}

// Weak returns an observer of s's resource.
func (s *Shared[T]) Weak() Weak[T] {
	return NewWeak(s)
}

// Equal reports whether both handles reference the same address.
func (s *Shared[T]) Equal(o *Shared[T]) bool {
	return s.addr == o.addr
}

// SharedSlice owns a []T together with its clones.
type SharedSlice[T any] struct {
	sharedCore[[]T]
}

// NewSharedSlice starts a new lineage owning s. An empty slice yields an
// empty handle.
func NewSharedSlice[T any](s []T, opts ...Option) (h SharedSlice[T], err error) {
	err = h.acquire(s, sliceAddr(s), SliceDeleter[T](), opts, errors.PhaseAcquire)
	return
}

// Get returns the shared slice, or nil when empty.
func (s *SharedSlice[T]) Get() []T {
	return s.res
}

// At returns a pointer to element i. Panics when i is out of range.
func (s *SharedSlice[T]) At(i int) *T {
	return &s.res[i]
}

// Len returns the number of elements.
func (s *SharedSlice[T]) Len() int {
	return len(s.res)
}

// Clone returns another owner of the same resource.
func (s *SharedSlice[T]) Clone() (c SharedSlice[T]) {
	s.cloneInto(&c.sharedCore)
	return
}

// Assign makes s an owner of src's resource, releasing s's current one.
func (s *SharedSlice[T]) Assign(src *SharedSlice[T]) {
	s.assign(&src.sharedCore)
}

// Move transfers s's ownership to the returned handle and empties s.
func (s *SharedSlice[T]) Move() (dst SharedSlice[T]) {
	s.moveInto(&dst.sharedCore)
	return
}

// MoveFrom releases s's ownership, then takes over src's. Panics if src is s.
func (s *SharedSlice[T]) MoveFrom(src *SharedSlice[T]) {
	if src == s {
		panic(errors.SelfMove(kindShared))
	}
	src.moveInto(&s.sharedCore)
}

// ResetTo releases s's ownership and starts a new lineage owning v.
func (s *SharedSlice[T]) ResetTo(v []T, opts ...Option) error {
	s.release()
	return s.acquire(v, sliceAddr(v), SliceDeleter[T](), opts, errors.PhaseReset)
}

// Weak returns an observer of s's resource.
func (s *SharedSlice[T]) Weak() WeakSlice[T] {
	return NewWeakSlice(s)
}

// Equal reports whether both handles reference the same address.
func (s *SharedSlice[T]) Equal(o *SharedSlice[T]) bool {
	return s.addr == o.addr
}
