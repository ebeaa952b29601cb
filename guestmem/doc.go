// Package guestmem puts ownership handles around allocations made inside a
// WebAssembly guest's linear memory.
//
// The guest must export an allocator. The canonical ABI pair
// cabi_realloc/cabi_free is preferred; malloc/free and alloc/free are
// accepted as fallbacks:
//
//	mod, _ := rt.Instantiate(ctx, wasmBytes)
//	ga, err := guestmem.New(ctx, mod, guestmem.Config{})
//	if err != nil {
//		return err
//	}
//	buf, err := ga.Shared(64, 8)
//	if err != nil {
//		return err
//	}
//	defer buf.Close()
//	_ = ga.Write(*buf.Get(), payload)
//
// The handle's deleter frees the block in the guest when the last owner is
// disposed. Guest calls share one stack buffer, so a ModuleAllocator must be
// used from one goroutine at a time, like the handles themselves.
package guestmem
