package guestmem

import (
	"context"
	"errors"
	"fmt"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/ownership"
)

// Guest allocator export names.
const (
	CabiRealloc = "cabi_realloc"
	CabiFree    = "cabi_free"

	mallocExport = "malloc"
	simpleAlloc  = "alloc"
	simpleFree   = "free"
)

var (
	// ErrNoAllocator is returned when the guest exports no usable allocator.
	ErrNoAllocator = errors.New("guest exports no allocator")
	// ErrNoMemory is returned when the guest exports no linear memory.
	ErrNoMemory = errors.New("guest exports no memory")
	// ErrOutOfBounds is returned when a block lies outside guest memory.
	ErrOutOfBounds = errors.New("block out of memory bounds")
)

// Block is a region of guest linear memory.
type Block struct {
	Ptr   uint32
	Size  uint32
	Align uint32
}

// Allocator allocates memory in guest linear memory.
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32)
}

// Config selects the guest exports. Empty names use the defaults.
type Config struct {
	// AllocExport overrides the allocation export name.
	AllocExport string
	// FreeExport overrides the deallocation export name.
	FreeExport string
	// Options are applied to every handle the allocator creates, after the
	// block deleter. WithAllocator can route counters to a budget or tracker.
	Options []ownership.Option
}

// ModuleAllocator implements Allocator by calling a guest's exports.
type ModuleAllocator struct {
	mod      api.Module
	ctx      context.Context
	allocFn  api.Function
	freeFn   api.Function
	simple   bool
	freeArgs int
	stack    []uint64
	opts     []ownership.Option
}

var _ Allocator = (*ModuleAllocator)(nil)

// New resolves the allocator exports of mod. ctx is used for every guest
// call made by the allocator, including calls from deleters.
func New(ctx context.Context, mod api.Module, cfg Config) (*ModuleAllocator, error) {
	if mod.Memory() == nil {
		return nil, ErrNoMemory
	}
	defs := mod.ExportedFunctionDefinitions()

	allocDef := lookup(defs, cfg.AllocExport, CabiRealloc, mallocExport, simpleAlloc)
	if allocDef == nil {
		return nil, ErrNoAllocator
	}
	freeDef := lookup(defs, cfg.FreeExport, CabiFree, simpleFree)
	if freeDef == nil {
		return nil, fmt.Errorf("%w: missing free export", ErrNoAllocator)
	}

	allocParams := len(allocDef.ParamTypes())
	if len(allocDef.ResultTypes()) != 1 || (allocParams != 1 && allocParams != 4) {
		return nil, fmt.Errorf("%w: unsupported signature for %s", ErrNoAllocator, allocDef.Name())
	}
	freeParams := len(freeDef.ParamTypes())
	if freeParams < 1 || freeParams > 3 {
		return nil, fmt.Errorf("%w: unsupported signature for %s", ErrNoAllocator, freeDef.Name())
	}

	opts := make([]ownership.Option, 0, len(cfg.Options)+1)
	a := &ModuleAllocator{
		mod:      mod,
		ctx:      ctx,
		allocFn:  mod.ExportedFunction(allocDef.Name()),
		freeFn:   mod.ExportedFunction(freeDef.Name()),
		simple:   allocParams < 4,
		freeArgs: freeParams,
		stack:    make([]uint64, 4),
	}
	a.opts = append(append(opts, ownership.WithDeleter(Deleter(a))), cfg.Options...)
	return a, nil
}

func lookup(defs map[string]api.FunctionDefinition, override string, names ...string) api.FunctionDefinition {
	if override != "" {
		return defs[override]
	}
	for _, name := range names {
		if def, ok := defs[name]; ok {
			return def
		}
	}
	return nil
}

// Alloc allocates size bytes aligned to align in guest memory.
func (a *ModuleAllocator) Alloc(size, align uint32) (uint32, error) {
	if a.simple {
		a.stack[0] = uint64(size)
		if err := a.allocFn.CallWithStack(a.ctx, a.stack[:1]); err != nil {
			return 0, err
		}
		return uint32(a.stack[0]), nil
	}
	a.stack[0] = 0
	a.stack[1] = 0
	a.stack[2] = uint64(align)
	a.stack[3] = uint64(size)
	if err := a.allocFn.CallWithStack(a.ctx, a.stack[:4]); err != nil {
		return 0, err
	}
	return uint32(a.stack[0]), nil
}

// Free releases a block previously returned by Alloc. A zero ptr is ignored.
func (a *ModuleAllocator) Free(ptr, size, align uint32) {
	if ptr == 0 {
		return
	}
	a.stack[0] = uint64(ptr)
	a.stack[1] = uint64(size)
	a.stack[2] = uint64(align)
	if err := a.freeFn.CallWithStack(a.ctx, a.stack[:a.freeArgs]); err != nil {
		ownership.Logger().Warn("guest free failed",
			zap.Uint32("ptr", ptr),
			zap.Uint32("size", size),
			zap.Error(err))
	}
}

func (a *ModuleAllocator) block(size, align uint32) (*Block, error) {
	if align == 0 {
		align = 1
	}
	ptr, err := a.Alloc(size, align)
	if err != nil {
		return nil, fmt.Errorf("guest alloc of %d bytes: %w", size, err)
	}
	if ptr == 0 {
		return nil, fmt.Errorf("guest alloc of %d bytes returned null", size)
	}
	return &Block{Ptr: ptr, Size: size, Align: align}, nil
}

// Unique allocates a block owned by a unique handle.
func (a *ModuleAllocator) Unique(size, align uint32) (u ownership.Unique[Block], err error) {
	b, err := a.block(size, align)
	if err != nil {
		return
	}
	u.ResetTo(b, a.opts...)
	return
}

// Shared allocates a block owned by a new shared lineage. When the counter
// cannot be allocated the block is freed before returning the error.
func (a *ModuleAllocator) Shared(size, align uint32) (s ownership.Shared[Block], err error) {
	b, err := a.block(size, align)
	if err != nil {
		return
	}
	if err = s.ResetTo(b, a.opts...); err != nil {
		a.Free(b.Ptr, b.Size, b.Align)
	}
	return
}

// Bytes returns a view of the block's bytes in guest memory. The view is
// invalidated when guest memory grows.
func (a *ModuleAllocator) Bytes(b Block) ([]byte, error) {
	buf, ok := a.mod.Memory().Read(b.Ptr, b.Size)
	if !ok {
		return nil, fmt.Errorf("%w: ptr=%d size=%d", ErrOutOfBounds, b.Ptr, b.Size)
	}
	return buf, nil
}

// Write copies data into the block. data longer than the block is an error.
func (a *ModuleAllocator) Write(b Block, data []byte) error {
	if uint64(len(data)) > uint64(b.Size) {
		return fmt.Errorf("%w: %d bytes into block of %d", ErrOutOfBounds, len(data), b.Size)
	}
	if !a.mod.Memory().Write(b.Ptr, data) {
		return fmt.Errorf("%w: ptr=%d size=%d", ErrOutOfBounds, b.Ptr, b.Size)
	}
	return nil
}

// Deleter returns a deleter that frees blocks through a.
func Deleter(a Allocator) ownership.Deleter[*Block] {
	return func(b *Block) {
		a.Free(b.Ptr, b.Size, b.Align)
	}
}
