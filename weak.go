package ownership

import (
	"github.com/wippyai/ownership/errors"
)

const kindWeak = "weak"

// weakCore implements the observer side of the counting protocol. Its handle
// never carries a deleter; lineage is the deleter handed to upgraded owners.
type weakCore[R any] struct {
	h       handle[R]
	lineage Deleter[R]
	rc      *controlBlock
}

// observe makes the empty w an observer of s's lineage.
func (w *weakCore[R]) observe(s *sharedCore[R]) {
	cb := counterOf(s)
	if cb == nil {
		return
	}
	w.h.adopt(s.res, s.addr, nil)
	w.lineage = s.deleter
	w.rc = cb
	cb.IncreaseObserver()
	logCounter("update ref", cb)
}

func (w *weakCore[R]) release() {
	cb := w.rc
	w.rc = nil
	w.lineage = nil
	w.h.clear()
	if cb == nil {
		return
	}
	remaining := cb.DecreaseObserver()
	logCounter("update ref", cb)
	if remaining == 0 && cb.Owners() == 0 {
		freeControlBlock(cb)
	}
}

func (w *weakCore[R]) cloneInto(dst *weakCore[R]) {
	if w.rc == nil {
		return
	}
	dst.h.adopt(w.h.res, w.h.addr, nil)
	dst.lineage = w.lineage
	dst.rc = w.rc
	dst.rc.IncreaseObserver()
	logCounter("update ref", dst.rc)
}

func (w *weakCore[R]) assign(src *weakCore[R]) {
	if w.rc == src.rc {
		return
	}
	w.release()
	src.cloneInto(w)
}

func (w *weakCore[R]) moveInto(dst *weakCore[R]) {
	dst.release()
	res, addr, _ := w.h.take()
	dst.h.adopt(res, addr, nil)
	dst.lineage = w.lineage
	dst.rc = w.rc
	w.lineage = nil
	w.rc = nil
}

func (w *weakCore[R]) lockInto(dst *sharedCore[R]) bool {
	return lockShared(dst, w.h.res, w.h.addr, w.lineage, w.rc)
}

// Expired reports whether the observed resource has been released, or the
// handle observes nothing.
func (w *weakCore[R]) Expired() bool {
	return w.rc == nil || w.rc.Owners() == 0
}

// UseCount returns the number of shared handles owning the observed
// resource.
func (w *weakCore[R]) UseCount() int {
	if w.rc == nil {
		return 0
	}
	return w.rc.Owners()
}

// State returns the observed lineage's state. An empty handle reports
// StateFreed.
func (w *weakCore[R]) State() State {
	if w.rc == nil {
		return StateFreed
	}
	return w.rc.State()
}

// Addr returns the address of the observed resource. The address stays
// available after expiry for comparison and logging only.
func (w *weakCore[R]) Addr() uintptr {
	return w.h.addr
}

// Key returns a comparable identity for the observed resource.
func (w *weakCore[R]) Key() Key {
	return w.h.Key()
}

// Reset stops observing and empties the handle.
func (w *weakCore[R]) Reset() {
	w.release()
}

// Close stops observing. It is safe to call more than once.
func (w *weakCore[R]) Close() error {
	w.release()
	return nil
}

// Weak observes a *T owned by Shared handles without keeping it alive.
// The zero value observes nothing.
type Weak[T any] struct {
	weakCore[*T]
}

// NewWeak returns an observer of s's resource. An empty s yields an empty
// observer.
func NewWeak[T any](s *Shared[T]) (w Weak[T]) {
	w.observe(&s.sharedCore)
	return
}

// Lock returns a new owner of the observed resource, or an empty handle when
// the resource has been released.
func (w *Weak[T]) Lock() (s Shared[T]) {
	w.lockInto(&s.sharedCore)
	return
}

// Clone returns another observer of the same resource.
func (w *Weak[T]) Clone() (c Weak[T]) {
	w.cloneInto(&c.weakCore)
	return
}

// Assign makes w observe src's resource. Nothing happens when both already
// share a counter.
func (w *Weak[T]) Assign(src *Weak[T]) {
	w.assign(&src.weakCore)
}

// AssignShared makes w observe s's resource.
func (w *Weak[T]) AssignShared(s *Shared[T]) {
	var tmp weakCore[*T]
	tmp.observe(&s.sharedCore)
	tmp.moveInto(&w.weakCore)
}

// Move transfers w's observation to the returned handle and empties w.
func (w *Weak[T]) Move() (dst Weak[T]) {
	w.moveInto(&dst.weakCore)
	return
}

// MoveFrom stops w's observation, then takes over src's. Panics if src is w.
func (w *Weak[T]) MoveFrom(src *Weak[T]) {
	if src == w {
		panic(errors.SelfMove(kindWeak))
	}
	src.moveInto(&w.weakCore)
}

// WeakSlice observes a []T owned by SharedSlice handles.
type WeakSlice[T any] struct {
	weakCore[[]T]
}

// NewWeakSlice returns an observer of s's resource.
func NewWeakSlice[T any](s *SharedSlice[T]) (w WeakSlice[T]) {
	w.observe(&s.sharedCore)
	return
}

// Lock returns a new owner of the observed resource, or an empty handle when
// the resource has been released.
func (w *WeakSlice[T]) Lock() (s SharedSlice[T]) {
	w.lockInto(&s.sharedCore)
	return
}

// Clone returns another observer of the same resource.
func (w *WeakSlice[T]) Clone() (c WeakSlice[T]) {
	w.cloneInto(&c.weakCore)
	return
}

// Assign makes w observe src's resource.
func (w *WeakSlice[T]) Assign(src *WeakSlice[T]) {
	w.assign(&src.weakCore)
}

// AssignShared makes w observe s's resource.
func (w *WeakSlice[T]) AssignShared(s *SharedSlice[T]) {
	var tmp weakCore[[]T]
	tmp.observe(&s.sharedCore)
	tmp.moveInto(&w.weakCore)
}

// Move transfers w's observation to the returned handle and empties w.
func (w *WeakSlice[T]) Move() (dst WeakSlice[T]) {
	w.moveInto(&dst.weakCore)
	return
}

// MoveFrom stops w's observation, then takes over src's. Panics if src is w.
func (w *WeakSlice[T]) MoveFrom(src *WeakSlice[T]) {
	if src == w {
		panic(errors.SelfMove(kindWeak))
	}
	src.moveInto(&w.weakCore)
}
