package sync

import "fmt"

// ConflictError is an UnresolvableConflictError (spec §7): multiple
// non-directory sources share a name at the same destination slot and
// resolveConflicts is not set. It is fatal and aborts the entire run.
type ConflictError struct {
	Name  string
	Slot  string
	Count int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("SRC_CONFLICT — trying to copy %d objects with the same filename %q to %s", e.Count, e.Name, e.Slot)
}
