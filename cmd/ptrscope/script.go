package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/ownership"
)

// Script is a set of scenarios read from YAML:
//
//	scenarios:
//	  - name: weak expires with last owner
//	    steps:
//	      - run: new a
//	      - run: weak a w
//	      - run: drop a
//	        expect:
//	          w: {expired: true, use_count: 0}
//	        released: ["#1"]
type Script struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Scenario runs its steps in a fresh session.
type Scenario struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is one command with optional checks on the resulting state.
type Step struct {
	Run      string                 `yaml:"run"`
	Expect   map[string]Expectation `yaml:"expect,omitempty"`
	Released []string               `yaml:"released,omitempty"`
	Error    bool                   `yaml:"error,omitempty"`
}

// Expectation checks one named handle. Unset fields are not checked.
type Expectation struct {
	UseCount *int  `yaml:"use_count,omitempty"`
	Expired  *bool `yaml:"expired,omitempty"`
}

// ParseScript decodes a YAML script.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(s.Scenarios) == 0 {
		return nil, fmt.Errorf("parse script: no scenarios")
	}
	return &s, nil
}

// LoadScript reads and decodes a YAML script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return ParseScript(data)
}

// Run executes every scenario, printing a transcript to w. It returns the
// number of failed scenarios.
func (s *Script) Run(w io.Writer, opts ...ownership.Option) int {
	failed := 0
	for _, sc := range s.Scenarios {
		if err := sc.run(w, opts); err != nil {
			fmt.Fprintf(w, "FAIL %s: %v\n\n", sc.Name, err)
			failed++
			continue
		}
		fmt.Fprintf(w, "ok   %s\n\n", sc.Name)
	}
	return failed
}

func (sc Scenario) run(w io.Writer, opts []ownership.Option) error {
	sess := newSession(opts...)
	defer sess.Close()

	fmt.Fprintf(w, "=== %s\n", sc.Name)
	for i, step := range sc.Steps {
		out, err := sess.Exec(step.Run)
		released := sess.Events()
		fmt.Fprintf(w, "%s\n", step.Run)
		if out != "" {
			fmt.Fprintf(w, "  %s\n", strings.ReplaceAll(out, "\n", "\n  "))
		}
		for _, ev := range released {
			fmt.Fprintf(w, "  %s\n", ev)
		}

		if step.Error {
			if err == nil {
				return fmt.Errorf("step %d %q: expected an error", i+1, step.Run)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("step %d %q: %w", i+1, step.Run, err)
		}
		if err := step.check(sess, released); err != nil {
			return fmt.Errorf("step %d %q: %w", i+1, step.Run, err)
		}
	}
	return nil
}

func (st Step) check(sess *session, released []string) error {
	if st.Released != nil {
		var got []string
		for _, ev := range released {
			got = append(got, strings.TrimPrefix(ev, "released "))
		}
		if strings.Join(got, ",") != strings.Join(st.Released, ",") {
			return fmt.Errorf("released %v, want %v", got, st.Released)
		}
	}

	rows := make(map[string]Row)
	for _, r := range sess.Rows() {
		rows[r.Name] = r
	}
	for name, exp := range st.Expect {
		r, ok := rows[name]
		if !ok {
			return fmt.Errorf("no handle named %q", name)
		}
		if exp.UseCount != nil && r.UseCount != *exp.UseCount {
			return fmt.Errorf("%s use_count=%d, want %d", name, r.UseCount, *exp.UseCount)
		}
		if exp.Expired != nil && r.Expired != *exp.Expired {
			return fmt.Errorf("%s expired=%t, want %t", name, r.Expired, *exp.Expired)
		}
	}
	return nil
}

// runLines executes newline-separated commands from r, for piped input.
func runLines(r io.Reader, w io.Writer, sess *session) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out, err := sess.Exec(line)
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
		} else if out != "" {
			fmt.Fprintln(w, out)
		}
		for _, ev := range sess.Events() {
			fmt.Fprintln(w, ev)
		}
	}
	return sc.Err()
}
