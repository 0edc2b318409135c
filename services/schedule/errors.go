package schedule

import "fmt"

// InvalidPatternError reports a malformed weekly pattern. Day is the
// offending dayOfWeek index, or -1 when the problem is structural
// (wrong count, duplicates).
type InvalidPatternError struct {
	Day     int
	Message string
}

func (e *InvalidPatternError) Error() string {
	if e.Day < 0 {
		return fmt.Sprintf("invalid weekly pattern: %s", e.Message)
	}
	return fmt.Sprintf("invalid weekly pattern (day %d): %s", e.Day, e.Message)
}

// InvalidTimezoneError reports an unresolvable IANA zone name.
type InvalidTimezoneError struct {
	Name string
}

func (e *InvalidTimezoneError) Error() string {
	return fmt.Sprintf("unknown timezone %q", e.Name)
}

// ConflictError reports a violated binding-key invariant: an active schedule
// already governs the entity and the caller did not request replacement.
type ConflictError struct {
	BoundType     string
	BoundEntityID string
	ExistingID    string
}

func (e *ConflictError) Error() string {
	if e.ExistingID == "" {
		return fmt.Sprintf("an active schedule already exists for %s %s", e.BoundType, e.BoundEntityID)
	}
	return fmt.Sprintf("an active schedule (%s) already exists for %s %s", e.ExistingID, e.BoundType, e.BoundEntityID)
}

// NotFoundError reports a schedule id that does not exist.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("schedule %s not found", e.ID)
}

// RepositoryError wraps an underlying persistence failure. Mutations are not
// retried here: a blind retry would re-run the conflict check against stale
// state, so callers must re-submit explicitly.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("schedule repository %s failed: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }
