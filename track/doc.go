// Package track records which reference counter records are live.
//
// A Tracker wraps another ownership.CounterAllocator and keeps the ids it
// handed out in a roaring bitmap. It is meant for tests and diagnostics:
// a lineage that is never fully released shows up in Live, and a counter
// freed twice or freed without being allocated is counted in DoubleFrees
// and logged at error level.
//
//	tr := track.New(nil)
//	ownership.SetDefaultAllocator(tr)
//	defer func() { require.Zero(t, tr.LiveCount()) }()
package track
