package guestmem_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/ownership"
	"github.com/wippyai/ownership/budget"
	"github.com/wippyai/ownership/guestmem"
)

// hostHeap is a bump allocator standing in for the guest's allocator.
type hostHeap struct {
	next  uint32
	live  map[uint32]uint32
	freed []uint32
	fail  bool
}

func newHostHeap() *hostHeap {
	return &hostHeap{next: 16, live: make(map[uint32]uint32)}
}

func (h *hostHeap) alloc(size, align uint32) uint32 {
	if h.fail {
		return 0
	}
	if align == 0 {
		align = 1
	}
	ptr := (h.next + align - 1) &^ (align - 1)
	h.next = ptr + size
	h.live[ptr] = size
	return ptr
}

func (h *hostHeap) free(ptr uint32) {
	delete(h.live, ptr)
	h.freed = append(h.freed, ptr)
}

func i32s(n int) []api.ValueType {
	out := make([]api.ValueType, n)
	for i := range out {
		out[i] = api.ValueTypeI32
	}
	return out
}

// instantiate builds a guest that re-exports the heap under the given names.
func instantiate(t *testing.T, heap *hostHeap, allocName string, allocParams int, freeName string, freeParams int) api.Module {
	t.Helper()
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { _ = rt.Close(ctx) })

	allocFn := api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
		if allocParams == 4 {
			stack[0] = uint64(heap.alloc(uint32(stack[3]), uint32(stack[2])))
			return
		}
		stack[0] = uint64(heap.alloc(uint32(stack[0]), 1))
	})
	freeFn := api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
		heap.free(uint32(stack[0]))
	})

	_, err := rt.NewHostModuleBuilder("env").
		NewFunctionBuilder().WithGoModuleFunction(allocFn, i32s(allocParams), i32s(1)).Export(allocName).
		NewFunctionBuilder().WithGoModuleFunction(freeFn, i32s(freeParams), nil).Export(freeName).
		Instantiate(ctx)
	require.NoError(t, err)

	mod, err := rt.Instantiate(ctx, guestModule(allocName, allocParams, freeName, freeParams))
	require.NoError(t, err)
	return mod
}

func TestModuleAllocator_SharedBlock(t *testing.T) {
	heap := newHostHeap()
	mod := instantiate(t, heap, guestmem.CabiRealloc, 4, guestmem.CabiFree, 3)

	ga, err := guestmem.New(context.Background(), mod, guestmem.Config{})
	require.NoError(t, err)

	buf, err := ga.Shared(32, 8)
	require.NoError(t, err)
	b := *buf.Get()
	assert.Equal(t, uint32(0), b.Ptr%8)
	assert.Equal(t, uint32(32), b.Size)

	require.NoError(t, ga.Write(b, []byte("hello")))
	view, err := ga.Bytes(b)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(view[:5]))
	assert.Error(t, ga.Write(b, make([]byte, 33)))

	clone := buf.Clone()
	wp := buf.Weak()
	buf.Close()
	assert.Contains(t, heap.live, b.Ptr)
	clone.Close()
	assert.NotContains(t, heap.live, b.Ptr)
	assert.Equal(t, []uint32{b.Ptr}, heap.freed)
	assert.True(t, wp.Expired())
	wp.Close()
}

func TestModuleAllocator_UniqueBlock(t *testing.T) {
	heap := newHostHeap()
	mod := instantiate(t, heap, "malloc", 1, "free", 1)

	ga, err := guestmem.New(context.Background(), mod, guestmem.Config{})
	require.NoError(t, err)

	u, err := ga.Unique(10, 0)
	require.NoError(t, err)
	ptr := u.Get().Ptr
	assert.Equal(t, uint32(1), u.Get().Align)

	moved := u.Move()
	u.Close()
	assert.Empty(t, heap.freed)
	moved.Close()
	assert.Equal(t, []uint32{ptr}, heap.freed)
}

func TestModuleAllocator_NullAllocation(t *testing.T) {
	heap := newHostHeap()
	heap.fail = true
	mod := instantiate(t, heap, guestmem.CabiRealloc, 4, guestmem.CabiFree, 3)

	ga, err := guestmem.New(context.Background(), mod, guestmem.Config{})
	require.NoError(t, err)

	u, err := ga.Unique(8, 4)
	assert.Error(t, err)
	assert.False(t, u.Valid())
}

func TestModuleAllocator_CounterBudgetFreesBlock(t *testing.T) {
	heap := newHostHeap()
	mod := instantiate(t, heap, guestmem.CabiRealloc, 4, guestmem.CabiFree, 3)

	lim := budget.New(budget.Config{MaxCounters: 1}, nil)
	ga, err := guestmem.New(context.Background(), mod, guestmem.Config{
		Options: []ownership.Option{ownership.WithAllocator(lim)},
	})
	require.NoError(t, err)

	first, err := ga.Shared(4, 4)
	require.NoError(t, err)

	second, err := ga.Shared(4, 4)
	require.ErrorIs(t, err, budget.ErrLimitExceeded)
	assert.False(t, second.Valid())
	require.Len(t, heap.freed, 1, "block freed when its counter could not be allocated")
	assert.Len(t, heap.live, 1)

	first.Close()
	assert.Empty(t, heap.live)
}

func TestNew_Errors(t *testing.T) {
	heap := newHostHeap()
	mod := instantiate(t, heap, "allocate_it", 1, "release_it", 1)

	_, err := guestmem.New(context.Background(), mod, guestmem.Config{})
	assert.True(t, errors.Is(err, guestmem.ErrNoAllocator))

	ga, err := guestmem.New(context.Background(), mod, guestmem.Config{
		AllocExport: "allocate_it",
		FreeExport:  "release_it",
	})
	require.NoError(t, err)
	u, err := ga.Unique(1, 1)
	require.NoError(t, err)
	u.Close()
	assert.Len(t, heap.freed, 1)
}

func TestDeleter(t *testing.T) {
	var freed []guestmem.Block
	d := guestmem.Deleter(recorder(func(ptr, size, align uint32) {
		freed = append(freed, guestmem.Block{Ptr: ptr, Size: size, Align: align})
	}))
	d(&guestmem.Block{Ptr: 64, Size: 8, Align: 4})
	assert.Equal(t, []guestmem.Block{{Ptr: 64, Size: 8, Align: 4}}, freed)
}

type recorder func(ptr, size, align uint32)

func (r recorder) Alloc(uint32, uint32) (uint32, error) { return 0, errors.New("unsupported") }
func (r recorder) Free(ptr, size, align uint32)         { r(ptr, size, align) }
