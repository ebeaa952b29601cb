package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/ownership"
	"github.com/wippyai/ownership/track"
)

const passingScript = `
scenarios:
  - name: weak expires with last owner
    steps:
      - run: new a
      - run: clone a b
        expect:
          a: {use_count: 2}
      - run: weak a w
      - run: drop a
        released: []
        expect:
          w: {expired: false, use_count: 1}
      - run: drop b
        released: ["#1"]
        expect:
          w: {expired: true, use_count: 0}
  - name: bad command is reported
    steps:
      - run: lock nothing x
        error: true
`

func TestScript_Passing(t *testing.T) {
	script, err := ParseScript([]byte(passingScript))
	require.NoError(t, err)
	require.Len(t, script.Scenarios, 2)

	tr := track.New(nil)
	var out bytes.Buffer
	failed := script.Run(&out, ownership.WithAllocator(tr))
	assert.Equal(t, 0, failed, out.String())
	assert.Contains(t, out.String(), "ok   weak expires with last owner")
	assert.Contains(t, out.String(), "released #1")
	assert.Equal(t, uint64(0), tr.LiveCount())
}

func TestScript_FailingExpectation(t *testing.T) {
	script, err := ParseScript([]byte(`
scenarios:
  - name: wrong count
    steps:
      - run: new a
        expect:
          a: {use_count: 3}
`))
	require.NoError(t, err)

	var out bytes.Buffer
	assert.Equal(t, 1, script.Run(&out))
	assert.Contains(t, out.String(), "FAIL wrong count")
	assert.Contains(t, out.String(), "use_count=1, want 3")
}

func TestParseScript_Errors(t *testing.T) {
	_, err := ParseScript([]byte("scenarios: ["))
	assert.Error(t, err)
	_, err = ParseScript([]byte("scenarios: []"))
	assert.Error(t, err)
}

func TestRunLines(t *testing.T) {
	s := newSession()
	defer s.Close()

	in := strings.NewReader("# comment\nnew a\n\nbogus\ndrop a\n")
	var out bytes.Buffer
	require.NoError(t, runLines(in, &out, s))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		"a owns #1",
		`error: unknown command "bogus"`,
		"a dropped",
		"released #1",
	}, lines)
}
