// Package ownership provides single-goroutine ownership handles over
// caller-allocated resources.
//
// Three handle kinds are available, each in a scalar (*T) and a slice ([]T)
// shape:
//
//	Unique[T],  UniqueSlice[T]   exclusive owner, move-only
//	Shared[T],  SharedSlice[T]   reference-counted owner
//	Weak[T],    WeakSlice[T]     observer that can detect destruction
//
// The shape is fixed by the type: scalar handles expose Get, slice handles
// expose At and Len, and each shape has its own default deleter.
//
// # Quick Start
//
//	conn := &Conn{...}
//	sp, err := ownership.NewShared(conn)
//	if err != nil {
//	    // counter allocation failed; conn is still yours to release
//	}
//	defer sp.Close()
//
//	wp := sp.Weak()
//	defer wp.Close()
//
//	if locked := wp.Lock(); locked.Valid() {
//	    defer locked.Close()
//	    locked.Get().Ping()
//	}
//
// # Copy and Move
//
// Handles must never be copied by value; every handle embeds a noCopy marker
// that go vet reports. Duplicate with Clone (shared and weak only), transfer
// with Move or MoveFrom, and dispose with Close, Reset or Release.
//
//	c := sp.Clone()       another owner, use count +1
//	c.Assign(&sp)         c releases its resource, then owns sp's
//	m := sp.Move()        m takes over, sp is left empty
//	m.MoveFrom(&sp)       m releases its resource, then takes over sp's
//	m.Close()             m gives up ownership
//
// # Reference Counting
//
// Every lineage of shared and weak handles references one counter record
// holding an owner count and an observer count. The resource is released when
// the owner count drops to zero; the record is freed when both counts are
// zero. Release reports which of these happened:
//
//	OutcomeStillOwned         other owners remain, nothing released
//	OutcomeLastOwner          resource released, counter freed
//	OutcomeLastOwnerObserved  resource released, counter kept for observers
//
// Counter records are obtained from a CounterAllocator. The default
// HeapAllocator never fails; budget.Allocator imposes a limit and
// track.Tracker records live counters.
//
// # Deleters
//
// The default scalar deleter releases the pointee; the default slice deleter
// releases every element in index order. Releasing a value calls Drop if it
// implements Dropper, otherwise Close if it implements io.Closer. Use
// WithDeleter to supply custom cleanup. A nil deleter disables release.
//
// # Equality and Hashing
//
// Handles compare by resource address, not by counter identity and not by
// value. Two unrelated lineages compare equal if their resources share an
// address. Key returns a comparable value suitable for map keys, and Hash is
// consistent with Equal.
//
// # Thread Safety
//
// Nothing in this package is safe for concurrent use. All handles of one
// lineage must stay on one goroutine. Separate lineages may live on separate
// goroutines.
package ownership
