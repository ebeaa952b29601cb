package ownership

import (
	"strconv"
)

// Key is a comparable resource identity usable as a map key.
// Keys of two handles are equal iff the handles are Equal.
type Key struct {
	addr uintptr
}

// IsZero reports whether the key identifies no resource.
func (k Key) IsZero() bool {
	return k.addr == 0
}

// Hash returns the same value as Hash on the handle the key came from.
func (k Key) Hash() uint64 {
	return hashAddr(k.addr)
}

// String formats the key as a hexadecimal address.
func (k Key) String() string {
	return "0x" + strconv.FormatUint(uint64(k.addr), 16)
}

// Addresser is implemented by every handle type.
type Addresser interface {
	Addr() uintptr
}

// Equal reports whether two handles of the same type reference the same
// address. Empty handles are equal to each other.
func Equal[H Addresser](a, b H) bool {
	return a.Addr() == b.Addr()
}

// Same reports whether two handles of any types reference the same address.
func Same(a, b Addresser) bool {
	return a.Addr() == b.Addr()
}

// Hash hashes a handle by resource address. Equal handles hash equally;
// collisions between different addresses are possible.
func Hash(h Addresser) uint64 {
	return hashAddr(h.Addr())
}

// hashAddr is the splitmix64 finalizer. The null address hashes to 0.
func hashAddr(addr uintptr) uint64 {
	x := uint64(addr)
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
