package ownership_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ownerrors "github.com/wippyai/ownership/errors"
)

// probe is a resource that counts how often it was released.
type probe struct {
	x, y    int
	dropped int
}

func (p *probe) Drop() {
	p.dropped++
}

type closer struct {
	closed int
	err    error
}

func (c *closer) Close() error {
	c.closed++
	return c.err
}

func requirePanicKind(t *testing.T, kind ownerrors.Kind, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %T is not an error", r)
		var oe *ownerrors.Error
		require.True(t, errors.As(err, &oe))
		assert.Equal(t, kind, oe.Kind)
	}()
	fn()
}
