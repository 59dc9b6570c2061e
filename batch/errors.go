package batch

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrDone is returned by Next once the source is exhausted, or once the
	// Debouncer has been closed, and no more batches will be delivered.
	ErrDone = errors.New("batch: no more batches")

	// ErrNilSource is returned by New when the source is nil.
	ErrNilSource = errors.New("batch: source cannot be nil")

	// ErrNilFailure is returned by Fail when it is called with a nil error.
	ErrNilFailure = errors.New("batch: failure error cannot be nil")

	// ErrInvalidConfig is wrapped by the error returned from New when the
	// configuration does not validate.
	ErrInvalidConfig = errors.New("batch: invalid config")

	// ErrTimerArmed is returned when the flush timer is armed twice without
	// being cancelled in between.
	ErrTimerArmed = errors.New("batch: flush timer already armed")
)

// SourceError is returned when a source fails. Once a source fails the error
// is sticky: every pending and future Next call returns the same SourceError.
type SourceError struct {
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source error: %v", e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
