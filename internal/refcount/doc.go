// Package refcount implements the counter record shared by every shared and
// weak handle of one resource lineage.
//
// A Counter tracks two independent populations:
//
//	owners    - live shared handles; the resource is released when this hits 0
//	observers - live weak handles; they never keep the resource alive
//
// The record itself must outlive both populations. It is freed by whichever
// handle drives the second count to zero, never by the Counter. Counter only
// mutates and reports; the free decision lives in the handles.
//
// # Lineage States
//
//	Live      owners > 0
//	Orphaned  owners == 0, observers > 0
//	Freed     record released
//
// Transitions: Live -> Live, Live -> Orphaned, Live -> Freed, Orphaned -> Freed.
// Nothing leaves Freed.
//
// Counter is not safe for concurrent use.
package refcount
