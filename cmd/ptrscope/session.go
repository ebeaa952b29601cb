package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/wippyai/ownership"
)

// Slot kinds.
const (
	kindShared    = "shared"
	kindArray     = "array"
	kindWeak      = "weak"
	kindWeakArray = "weak-array"
)

// cell is the resource type managed by a session. Releasing a cell records
// an event so lineage ends are visible.
type cell struct {
	label  string
	events *[]string
}

func (c *cell) Drop() {
	*c.events = append(*c.events, "released "+c.label)
}

// slot holds one named handle. Only the field matching kind is used.
type slot struct {
	kind      string
	shared    ownership.Shared[cell]
	array     ownership.SharedSlice[cell]
	weak      ownership.Weak[cell]
	weakArray ownership.WeakSlice[cell]
}

func (s *slot) close() {
	s.shared.Close()
	s.array.Close()
	s.weak.Close()
	s.weakArray.Close()
}

func (s *slot) addr() uintptr {
	switch s.kind {
	case kindShared:
		return s.shared.Addr()
	case kindArray:
		return s.array.Addr()
	case kindWeak:
		return s.weak.Addr()
	default:
		return s.weakArray.Addr()
	}
}

func (s *slot) useCount() int {
	switch s.kind {
	case kindShared:
		return s.shared.UseCount()
	case kindArray:
		return s.array.UseCount()
	case kindWeak:
		return s.weak.UseCount()
	default:
		return s.weakArray.UseCount()
	}
}

func (s *slot) expired() bool {
	switch s.kind {
	case kindShared:
		return !s.shared.Valid()
	case kindArray:
		return !s.array.Valid()
	case kindWeak:
		return s.weak.Expired()
	default:
		return s.weakArray.Expired()
	}
}

// Row is a snapshot of one slot.
type Row struct {
	Name     string
	Kind     string
	Addr     string
	UseCount int
	Expired  bool
}

// session interprets ptrscope commands over a set of named handles.
type session struct {
	slots  map[string]*slot
	events []string
	nextID int
	opts   []ownership.Option
}

func newSession(opts ...ownership.Option) *session {
	return &session{
		slots: make(map[string]*slot),
		opts:  opts,
	}
}

const usage = `commands:
  new <name>              new shared handle
  array <name> <n>        new shared array of n cells
  clone <src> <dst>       copy a shared or weak handle
  move <src> <dst>        move a handle, leaving src empty
  weak <src> <dst>        observe a shared handle
  lock <weak> <dst>       upgrade a weak handle
  reset <name>            empty a handle
  drop <name>             dispose and forget a handle
  list                    show all handles`

// Exec runs one command line and returns its textual output.
func (s *session) Exec(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	cmd, args := fields[0], fields[1:]

	want := map[string]int{
		"new": 1, "array": 2, "clone": 2, "move": 2, "weak": 2,
		"lock": 2, "reset": 1, "drop": 1, "list": 0, "help": 0,
	}
	n, ok := want[cmd]
	if !ok {
		return "", fmt.Errorf("unknown command %q", cmd)
	}
	if len(args) != n {
		return "", fmt.Errorf("%s takes %d argument(s)", cmd, n)
	}

	switch cmd {
	case "new":
		return s.newShared(args[0])
	case "array":
		size, err := strconv.Atoi(args[1])
		if err != nil || size < 0 {
			return "", fmt.Errorf("invalid array size %q", args[1])
		}
		return s.newArray(args[0], size)
	case "clone":
		return s.clone(args[0], args[1])
	case "move":
		return s.move(args[0], args[1])
	case "weak":
		return s.observe(args[0], args[1])
	case "lock":
		return s.lock(args[0], args[1])
	case "reset":
		return s.reset(args[0])
	case "drop":
		return s.drop(args[0])
	case "list":
		return renderRows(s.Rows()), nil
	default:
		return usage, nil
	}
}

func (s *session) lookup(name string) (*slot, error) {
	sl, ok := s.slots[name]
	if !ok {
		return nil, fmt.Errorf("no handle named %q", name)
	}
	return sl, nil
}

// replace disposes any handle already stored under name and returns a fresh
// slot of kind.
func (s *session) replace(name, kind string) *slot {
	if old, ok := s.slots[name]; ok {
		old.close()
	}
	sl := &slot{kind: kind}
	s.slots[name] = sl
	return sl
}

func (s *session) label() string {
	s.nextID++
	return "#" + strconv.Itoa(s.nextID)
}

func (s *session) newShared(name string) (string, error) {
	c := &cell{label: s.label(), events: &s.events}
	sl := s.replace(name, kindShared)
	if err := sl.shared.ResetTo(c, s.opts...); err != nil {
		delete(s.slots, name)
		return "", err
	}
	return fmt.Sprintf("%s owns %s", name, c.label), nil
}

func (s *session) newArray(name string, size int) (string, error) {
	label := s.label()
	cells := make([]cell, size)
	for i := range cells {
		cells[i] = cell{label: label + "[" + strconv.Itoa(i) + "]", events: &s.events}
	}
	sl := s.replace(name, kindArray)
	if err := sl.array.ResetTo(cells, s.opts...); err != nil {
		delete(s.slots, name)
		return "", err
	}
	return fmt.Sprintf("%s owns %s with %d cells", name, label, size), nil
}

func (s *session) clone(src, dst string) (string, error) {
	from, err := s.lookup(src)
	if err != nil {
		return "", err
	}
	if src == dst {
		return "", fmt.Errorf("clone onto itself")
	}
	to := s.replace(dst, from.kind)
	switch from.kind {
	case kindShared:
		to.shared.Assign(&from.shared)
	case kindArray:
		to.array.Assign(&from.array)
	case kindWeak:
		to.weak.Assign(&from.weak)
	default:
		to.weakArray.Assign(&from.weakArray)
	}
	return fmt.Sprintf("%s use_count=%d", dst, to.useCount()), nil
}

func (s *session) move(src, dst string) (string, error) {
	from, err := s.lookup(src)
	if err != nil {
		return "", err
	}
	if src == dst {
		return "", fmt.Errorf("move onto itself")
	}
	to := s.replace(dst, from.kind)
	switch from.kind {
	case kindShared:
		to.shared.MoveFrom(&from.shared)
	case kindArray:
		to.array.MoveFrom(&from.array)
	case kindWeak:
		to.weak.MoveFrom(&from.weak)
	default:
		to.weakArray.MoveFrom(&from.weakArray)
	}
	return fmt.Sprintf("%s moved to %s", src, dst), nil
}

func (s *session) observe(src, dst string) (string, error) {
	from, err := s.lookup(src)
	if err != nil {
		return "", err
	}
	if src == dst {
		return "", fmt.Errorf("observe onto itself")
	}
	switch from.kind {
	case kindShared:
		to := s.replace(dst, kindWeak)
		to.weak.AssignShared(&from.shared)
	case kindArray:
		to := s.replace(dst, kindWeakArray)
		to.weakArray.AssignShared(&from.array)
	default:
		return "", fmt.Errorf("%s is not a shared handle", src)
	}
	return fmt.Sprintf("%s observes %s", dst, src), nil
}

func (s *session) lock(src, dst string) (string, error) {
	from, err := s.lookup(src)
	if err != nil {
		return "", err
	}
	if src == dst {
		return "", fmt.Errorf("lock onto itself")
	}
	var ok bool
	switch from.kind {
	case kindWeak:
		locked := from.weak.Lock()
		ok = locked.Valid()
		to := s.replace(dst, kindShared)
		to.shared.MoveFrom(&locked)
	case kindWeakArray:
		locked := from.weakArray.Lock()
		ok = locked.Valid()
		to := s.replace(dst, kindArray)
		to.array.MoveFrom(&locked)
	default:
		return "", fmt.Errorf("%s is not a weak handle", src)
	}
	if !ok {
		return fmt.Sprintf("%s expired, %s is empty", src, dst), nil
	}
	return fmt.Sprintf("%s locked into %s", src, dst), nil
}

func (s *session) reset(name string) (string, error) {
	sl, err := s.lookup(name)
	if err != nil {
		return "", err
	}
	sl.close()
	return name + " reset", nil
}

func (s *session) drop(name string) (string, error) {
	sl, err := s.lookup(name)
	if err != nil {
		return "", err
	}
	sl.close()
	delete(s.slots, name)
	return name + " dropped", nil
}

// Rows returns a snapshot of every slot ordered by name.
func (s *session) Rows() []Row {
	rows := make([]Row, 0, len(s.slots))
	for name, sl := range s.slots {
		addr := "-"
		if a := sl.addr(); a != 0 {
			addr = fmt.Sprintf("%#x", a)
		}
		rows = append(rows, Row{
			Name:     name,
			Kind:     sl.kind,
			Addr:     addr,
			UseCount: sl.useCount(),
			Expired:  sl.expired(),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows
}

// Events returns and clears the release events recorded since the last call.
func (s *session) Events() []string {
	ev := s.events
	s.events = nil
	return ev
}

// Close disposes every handle in name order.
func (s *session) Close() {
	names := make([]string, 0, len(s.slots))
	for name := range s.slots {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.slots[name].close()
		delete(s.slots, name)
	}
}
