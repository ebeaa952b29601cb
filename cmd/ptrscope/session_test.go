package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/ownership"
	"github.com/wippyai/ownership/budget"
	"github.com/wippyai/ownership/track"
)

func exec(t *testing.T, s *session, lines ...string) {
	t.Helper()
	for _, line := range lines {
		_, err := s.Exec(line)
		require.NoError(t, err, line)
	}
}

func row(t *testing.T, s *session, name string) Row {
	t.Helper()
	for _, r := range s.Rows() {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("no row %q", name)
	return Row{}
}

func TestSession_CloneAndDrop(t *testing.T) {
	tr := track.New(nil)
	s := newSession(ownership.WithAllocator(tr))

	exec(t, s, "new a", "clone a b", "clone b c")
	assert.Equal(t, 3, row(t, s, "a").UseCount)
	assert.Equal(t, row(t, s, "a").Addr, row(t, s, "c").Addr)

	exec(t, s, "drop a", "drop b")
	assert.Empty(t, s.Events())
	exec(t, s, "drop c")
	assert.Equal(t, []string{"released #1"}, s.Events())
	assert.Equal(t, uint64(0), tr.LiveCount())
}

func TestSession_WeakLifecycle(t *testing.T) {
	s := newSession()
	defer s.Close()

	exec(t, s, "new a", "weak a w", "lock w b")
	assert.Equal(t, 2, row(t, s, "b").UseCount)
	assert.False(t, row(t, s, "w").Expired)

	exec(t, s, "reset a", "reset b")
	assert.Equal(t, []string{"released #1"}, s.Events())
	assert.True(t, row(t, s, "w").Expired)

	out, err := s.Exec("lock w c")
	require.NoError(t, err)
	assert.Contains(t, out, "expired")
	assert.True(t, row(t, s, "c").Expired)
}

func TestSession_MoveLeavesSourceEmpty(t *testing.T) {
	s := newSession()
	defer s.Close()

	exec(t, s, "array a 2", "move a b")
	assert.True(t, row(t, s, "a").Expired)
	assert.Equal(t, 1, row(t, s, "b").UseCount)
	assert.Equal(t, kindArray, row(t, s, "b").Kind)

	exec(t, s, "weak b w", "move w v")
	assert.Equal(t, kindWeakArray, row(t, s, "v").Kind)
	assert.True(t, row(t, s, "w").Expired)

	exec(t, s, "drop b")
	assert.Equal(t, []string{"released #1[0]", "released #1[1]"}, s.Events())
	assert.True(t, row(t, s, "v").Expired)
}

func TestSession_ReplaceDisposesPrevious(t *testing.T) {
	s := newSession()
	defer s.Close()

	exec(t, s, "new a", "new a")
	assert.Equal(t, []string{"released #1"}, s.Events())
}

func TestSession_Errors(t *testing.T) {
	s := newSession()
	defer s.Close()

	for _, line := range []string{
		"bogus",
		"new",
		"clone missing x",
		"array a -1",
		"array a x",
	} {
		_, err := s.Exec(line)
		assert.Error(t, err, line)
	}

	exec(t, s, "new a", "weak a w")
	for _, line := range []string{
		"weak w x",
		"lock a x",
		"move a a",
		"clone a a",
		"weak a a",
	} {
		_, err := s.Exec(line)
		assert.Error(t, err, line)
	}
	assert.Equal(t, 1, row(t, s, "a").UseCount)
}

func TestSession_CounterBudget(t *testing.T) {
	lim := budget.New(budget.Config{MaxCounters: 1}, nil)
	s := newSession(ownership.WithAllocator(lim))
	defer s.Close()

	exec(t, s, "new a")
	_, err := s.Exec("new b")
	require.ErrorIs(t, err, budget.ErrLimitExceeded)
	_, ok := s.slots["b"]
	assert.False(t, ok)
}

func TestSession_List(t *testing.T) {
	s := newSession()
	defer s.Close()

	out, err := s.Exec("list")
	require.NoError(t, err)
	assert.Contains(t, out, "no handles")

	exec(t, s, "new a", "weak a w")
	out, err = s.Exec("list")
	require.NoError(t, err)
	for _, want := range []string{"NAME", "shared", "weak", "live"} {
		assert.Contains(t, out, want)
	}

	help, err := s.Exec("help")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(help, "commands:"))
}
