package ownership_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/ownership"
)

func observeLogs(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	ownership.SetLogger(zap.New(core))
	t.Cleanup(func() { ownership.SetLogger(nil) })
	return logs
}

func messages(logs *observer.ObservedLogs) []string {
	var out []string
	for _, e := range logs.All() {
		out = append(out, e.Message)
	}
	return out
}

func TestLogger_SharedLifecycleEvents(t *testing.T) {
	logs := observeLogs(t, zapcore.DebugLevel)

	x := &probe{}
	sp, err := ownership.NewShared(x)
	require.NoError(t, err)
	clone := sp.Clone()
	sp.Close()
	clone.Close()

	assert.Equal(t, []string{
		"create counter",
		"retain resource",
		"update ref",
		"update ref",
		"update ref",
		"delete counter",
		"release resource",
	}, messages(logs))

	created := logs.FilterMessage("create counter").All()
	require.Len(t, created, 1)
	fields := created[0].ContextMap()
	assert.Equal(t, int64(1), fields["owners"])
	assert.Equal(t, int64(0), fields["observers"])
}

func TestLogger_UniqueEvents(t *testing.T) {
	logs := observeLogs(t, zapcore.DebugLevel)

	u := ownership.NewUnique(&probe{})
	addr := u.Addr()
	u.Close()

	released := logs.FilterMessage("release resource").All()
	require.Len(t, released, 1)
	fields := released[0].ContextMap()
	assert.Equal(t, "unique", fields["handle"])
	assert.Equal(t, uint64(addr), uint64(fields["resource"].(uintptr)))
}

func TestLogger_DebugEventsSuppressedAtInfo(t *testing.T) {
	logs := observeLogs(t, zapcore.InfoLevel)

	sp, err := ownership.NewShared(&probe{})
	require.NoError(t, err)
	sp.Close()
	assert.Zero(t, logs.Len())
}

func TestLogger_CloseErrorIsWarned(t *testing.T) {
	logs := observeLogs(t, zapcore.DebugLevel)

	c := &closer{err: assert.AnError}
	u := ownership.NewUnique(c)
	u.Close()
	assert.Equal(t, 1, c.closed)

	warned := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warned, 1)
	assert.Equal(t, "close resource", warned[0].Message)
}
