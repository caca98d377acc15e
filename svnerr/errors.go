// Package svnerr collects the structured failure kinds shared by pathlib
// and treedelta. Every sentinel here is meant to be matched with
// errors.Is; nothing in this package wraps itself with extra detail, that
// is left to the caller's %w chain.
package svnerr

import "errors"

var (
	// IllegalUrl is returned when a file:// conversion is handed a
	// malformed URI.
	IllegalUrl = errors.New("illegal url")

	// BadFilename is returned when the platform rejects resolving an
	// absolute path (e.g. getwd failure feeding get_absolute).
	BadFilename = errors.New("bad filename")

	// NoSuchRevision is returned when TreeDelta is handed a snapshot with
	// no base revision to diff against.
	NoSuchRevision = errors.New("no such revision")

	// Incomplete is returned on a short write or truncated content stream.
	Incomplete = errors.New("incomplete data")

	// Cancelled is returned when a caller-supplied cancellation query
	// fires during a TreeDelta invocation.
	Cancelled = errors.New("cancelled")

	// WorkingCopyHasLocalModifications is tolerated (suppressed) by the
	// externals driver and re-raised by anything else that sees it.
	WorkingCopyHasLocalModifications = errors.New("working copy has local modifications")

	// InvalidExternalsDescription is the base sentinel wrapped by
	// ExternalsError; kept so callers can errors.Is against the kind
	// without unwrapping the struct.
	InvalidExternalsDescription = errors.New("invalid externals description")
)

// ExternalsError carries the offending line and parent path for an
// InvalidExternalsDescription failure.
type ExternalsError struct {
	ParentPath string
	Line       string
}

func (e *ExternalsError) Error() string {
	return "invalid svn:externals line under " + e.ParentPath + ": " + e.Line
}

func (e *ExternalsError) Unwrap() error {
	return InvalidExternalsDescription
}
