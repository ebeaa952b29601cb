package guestmem_test

// Minimal binary encoder for the test guest: a module with one page of
// exported memory that imports its allocator from "env" and re-exports it.

func uleb(n int) []byte {
	var out []byte
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if n == 0 {
			return out
		}
	}
}

func name(s string) []byte {
	return append(uleb(len(s)), s...)
}

func vec(items ...[]byte) []byte {
	out := uleb(len(items))
	for _, item := range items {
		out = append(out, item...)
	}
	return out
}

func section(id byte, body []byte) []byte {
	out := append([]byte{id}, uleb(len(body))...)
	return append(out, body...)
}

func funcType(params, results int) []byte {
	out := append([]byte{0x60}, uleb(params)...)
	for i := 0; i < params; i++ {
		out = append(out, 0x7f)
	}
	out = append(out, uleb(results)...)
	for i := 0; i < results; i++ {
		out = append(out, 0x7f)
	}
	return out
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func guestModule(allocName string, allocParams int, freeName string, freeParams int) []byte {
	const (
		kindFunc   = 0x00
		kindMemory = 0x02
	)
	return concat(
		[]byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00},
		section(1, vec(funcType(allocParams, 1), funcType(freeParams, 0))),
		section(2, vec(
			concat(name("env"), name(allocName), []byte{kindFunc, 0}),
			concat(name("env"), name(freeName), []byte{kindFunc, 1}),
		)),
		section(5, vec([]byte{0x00, 0x01})),
		section(7, vec(
			concat(name("memory"), []byte{kindMemory, 0}),
			concat(name(allocName), []byte{kindFunc, 0}),
			concat(name(freeName), []byte{kindFunc, 1}),
		)),
	)
}
