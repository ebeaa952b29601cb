package ownership

import (
	"unsafe"
)

// handle is the dispose primitive shared by every handle kind: a resource,
// its address identity and the deleter that releases it.
type handle[R any] struct {
	noCopy  noCopy
	res     R
	addr    uintptr
	deleter Deleter[R]
}

// Valid reports whether the handle references a non-null resource.
func (h *handle[R]) Valid() bool {
	return h.addr != 0
}

// IsNil reports whether the handle is empty.
func (h *handle[R]) IsNil() bool {
	return h.addr == 0
}

// Addr returns the address of the referenced resource, or 0 when empty.
func (h *handle[R]) Addr() uintptr {
	return h.addr
}

// Key returns a comparable identity for the referenced resource.
func (h *handle[R]) Key() Key {
	return Key{addr: h.addr}
}

// Hash returns a hash of the resource address, consistent with Equal.
func (h *handle[R]) Hash() uint64 {
	return hashAddr(h.addr)
}

// adopt takes over res. The deleter is only kept for a non-null resource.
func (h *handle[R]) adopt(res R, addr uintptr, d Deleter[R]) {
	if addr == 0 {
		h.clear()
		return
	}
	h.res = res
	h.addr = addr
	h.deleter = d
}

func (h *handle[R]) take() (R, uintptr, Deleter[R]) {
	res, addr, d := h.res, h.addr, h.deleter
	h.clear()
	return res, addr, d
}

func (h *handle[R]) clear() {
	var zero R
	h.res = zero
	h.addr = 0
	h.deleter = nil
}

// disable keeps the resource reference but drops the deleter.
func (h *handle[R]) disable() {
	h.deleter = nil
}

// dispose clears the handle, then runs the deleter once. Clearing first keeps
// the handle consistent for deleters that reach back into handles.
func (h *handle[R]) dispose(kind string) {
	res, addr, d := h.take()
	if d == nil {
		return
	}
	d(res)
	logResource("release resource", kind, addr)
}

func scalarAddr[T any](p *T) uintptr {
	return uintptr(unsafe.Pointer(p))
}

func sliceAddr[T any](s []T) uintptr {
	if len(s) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(s)))
}
