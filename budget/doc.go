// Package budget limits how many reference counter records may be live at
// once.
//
// An Allocator wraps another ownership.CounterAllocator. Each lineage holds
// one slot from the moment its counter is allocated until the counter is
// freed, so the limit bounds the number of shared lineages alive or still
// observed by weak handles:
//
//	lim := budget.New(budget.Config{MaxCounters: 64}, nil)
//	sp, err := ownership.NewShared(v, ownership.WithAllocator(lim))
//	if errors.Is(err, budget.ErrLimitExceeded) {
//		// v is still owned by the caller
//	}
//
// Acquisition never blocks. When the budget is exhausted AllocCounter fails
// and the handle constructor reports an allocation error.
package budget
