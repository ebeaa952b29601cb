package ownership

import (
	"github.com/wippyai/ownership/errors"
)

const kindUnique = "unique"

// Unique exclusively owns a *T. It cannot be cloned; ownership moves with
// Move and MoveFrom. The zero value is an empty handle.
type Unique[T any] struct {
	handle[*T]
}

// NewUnique takes ownership of p. A nil p yields an empty handle.
func NewUnique[T any](p *T, opts ...Option) (u Unique[T]) {
	u.acquire(p, opts)
	return
}

func (u *Unique[T]) acquire(p *T, opts []Option) {
	o := collect(opts)
	u.adopt(p, scalarAddr(p), deleterFor(&o, kindUnique, ScalarDeleter[T]()))
	if u.Valid() {
		logResource("retain resource", kindUnique, u.addr)
	}
}

// Get returns the owned pointer, or nil when empty.
func (u *Unique[T]) Get() *T {
	return u.res
}

// Move transfers ownership to the returned handle and empties u.
func (u *Unique[T]) Move() (dst Unique[T]) {
	dst.adopt(u.take())
	return
}

// MoveFrom releases u's current resource, then takes over src's.
// src is left empty. Panics if src is u.
func (u *Unique[T]) MoveFrom(src *Unique[T]) {
	if src == u {
		panic(errors.SelfMove(kindUnique))
	}
	u.dispose(kindUnique)
	u.adopt(src.take())
}

// Reset releases the owned resource and empties the handle.
func (u *Unique[T]) Reset() {
	u.dispose(kindUnique)
}

// ResetTo releases the owned resource and takes ownership of p.
func (u *Unique[T]) ResetTo(p *T, opts ...Option) {
	u.dispose(kindUnique)
	u.acquire(p, opts)
}

// Close releases the owned resource. It is safe to call more than once.
func (u *Unique[T]) Close() error {
	u.dispose(kindUnique)
	return nil
}

// Equal reports whether both handles own the same address.
func (u *Unique[T]) Equal(o *Unique[T]) bool {
	return u.addr == o.addr
}

// UniqueSlice exclusively owns a []T. An empty slice is treated as null.
type UniqueSlice[T any] struct {
	handle[[]T]
}

// NewUniqueSlice takes ownership of s.
func NewUniqueSlice[T any](s []T, opts ...Option) (u UniqueSlice[T]) {
	u.acquire(s, opts)
	return
}

func (u *UniqueSlice[T]) acquire(s []T, opts []Option) {
	o := collect(opts)
	u.adopt(s, sliceAddr(s), deleterFor(&o, kindUnique, SliceDeleter[T]()))
	if u.Valid() {
		logResource("retain resource", kindUnique, u.addr)
	}
}

// Get returns the owned slice, or nil when empty.
func (u *UniqueSlice[T]) Get() []T {
	return u.res
}

// At returns a pointer to element i. Panics when i is out of range,
// including on an empty handle.
func (u *UniqueSlice[T]) At(i int) *T {
	return &u.res[i]
}

// Len returns the number of owned elements.
func (u *UniqueSlice[T]) Len() int {
	return len(u.res)
}

// Move transfers ownership to the returned handle and empties u.
func (u *UniqueSlice[T]) Move() (dst UniqueSlice[T]) {
	dst.adopt(u.take())
	return
}

// MoveFrom releases u's current resource, then takes over src's.
// Panics if src is u.
func (u *UniqueSlice[T]) MoveFrom(src *UniqueSlice[T]) {
	if src == u {
		panic(errors.SelfMove(kindUnique))
	}
	u.dispose(kindUnique)
	u.adopt(src.take())
}

// Reset releases the owned resource and empties the handle.
func (u *UniqueSlice[T]) Reset() {
	u.dispose(kindUnique)
}

// ResetTo releases the owned resource and takes ownership of s.
func (u *UniqueSlice[T]) ResetTo(s []T, opts ...Option) {
	u.dispose(kindUnique)
	u.acquire(s, opts)
}

// Close releases the owned resource.
func (u *UniqueSlice[T]) Close() error {
	u.dispose(kindUnique)
	return nil
}

// Equal reports whether both handles own the same address.
func (u *UniqueSlice[T]) Equal(o *UniqueSlice[T]) bool {
	return u.addr == o.addr
}
