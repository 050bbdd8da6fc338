package gcptr

import (
	cerrors "github.com/cockroachdb/errors"
	"github.com/pkg/errors"
)

// ErrBadDeref is returned when dereferencing, indexing, or otherwise
// accessing a Handle whose target pointer is nil.
var ErrBadDeref error = errors.New("gcptr: dereference of null handle")

// ErrOutOfBounds is returned when an attached Handle's target address does
// not lie within its attached block's payload.
var ErrOutOfBounds error = errors.New("gcptr: target address outside attached block payload")

// ErrAllocationFailure is returned for a non-positive element count and
// when the underlying Go heap allocation for a new block's backing array
// could not be satisfied — make([]T, n) panics rather than returning an
// error, so allocElems recovers that panic and reports it through this
// sentinel instead, leaving the target handle untouched.
var ErrAllocationFailure error = errors.New("gcptr: allocation failed")

// ErrConstructorFailure is returned when an element constructor fails
// during array construction. Already-constructed elements are destroyed
// and the block is released before this error is returned.
var ErrConstructorFailure error = errors.New("gcptr: element constructor failed")

// wrapf attaches context and a stack trace to a sentinel, the same split the
// teacher uses: plain github.com/pkg/errors.New for the sentinel values
// themselves, github.com/cockroachdb/errors.Wrapf at the call site that
// needs to attach dynamic detail while still satisfying errors.Is against
// the sentinel.
func wrapf(sentinel error, format string, args ...any) error {
	return cerrors.Wrapf(sentinel, format, args...)
}
