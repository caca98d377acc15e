package treedelta

import (
	"fmt"

	"github.com/kestrel-vcs/svncore/svnerr"
)

// errNoRevision wraps svnerr.NoSuchRevision with the path of the
// snapshot that lacked a base revision.
func errNoRevision(path string) error {
	return fmt.Errorf("%w: %s has no base revision", svnerr.NoSuchRevision, path)
}

// errCancelled wraps svnerr.Cancelled; it carries no extra context
// because the caller already knows which invocation it cancelled.
func errCancelled() error {
	return svnerr.Cancelled
}

// errIncomplete wraps svnerr.Incomplete with the stream that was cut
// short.
func errIncomplete(what string) error {
	return fmt.Errorf("%w: %s", svnerr.Incomplete, what)
}
