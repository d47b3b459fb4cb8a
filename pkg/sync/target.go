// Package sync implements the synchronization core (spec §4.2-§4.5): the
// Entry Processor, the Level Walker, and the Engine Driver. Grounded on the
// teacher's pkg/synchronization/core package for comment register and
// bottom-up mutation idiom (apply.go, reconcile.go), though the algorithm
// itself is the imperative lockstep walker spec.md describes rather than
// the teacher's scan/diff/reconcile pipeline (see DESIGN.md).
package sync

import "github.com/hdfssync/hrsync/pkg/filesystem"

// Target represents the in-progress state of a destination slot as a
// two-branch tagged value (design note 9): either an intended path (dry-run,
// nothing was written, no handle exists) or a realized handle (post-write).
// Skip marks a slot that the Entry Processor deliberately left untouched,
// in which case metadata is never applied to it.
type Target struct {
	// Path is the destination slot path. Always populated unless the run
	// is in log-only mode (no destination configured at all).
	Path string
	// Handle is the realized filesystem handle, or nil if only the path is
	// known (dry-run) or there is no target at all (log-only mode).
	Handle *filesystem.FileHandle
	// Skip indicates the processor took no action and metadata must not be
	// applied for this entry.
	Skip bool
	// NoTarget indicates there is no destination at all (log-only mode).
	NoTarget bool
}

// EffectiveHandle returns Handle if realized, otherwise a synthetic handle
// carrying only the path (used so recursion can still proceed through a
// dry-run directory tree with a fully-formed path to pass to descendants).
func (t *Target) EffectiveHandle(isDir bool) *filesystem.FileHandle {
	if t == nil || t.NoTarget {
		return nil
	}
	if t.Handle != nil {
		return t.Handle
	}
	return &filesystem.FileHandle{Path: t.Path, IsDir: isDir}
}
