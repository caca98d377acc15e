package treedelta

import (
	"context"
	"io"
)

// NodeKind classifies a DirEntry or a NodeSnapshot as a file or directory.
type NodeKind int

const (
	KindFile NodeKind = iota
	KindDir
)

func (k NodeKind) String() string {
	if k == KindDir {
		return "dir"
	}
	return "file"
}

// NodeIdentity is an opaque token identifying a historical versioned node.
// Equal identity implies equal content and properties. Distance is a
// heuristic proxy for delta size between two identities that are not
// equal but may be related (e.g. the same node at different revisions);
// related is false for the sentinel "unrelated" outcome, in which case
// distance carries no meaning.
type NodeIdentity interface {
	SameAs(other NodeIdentity) bool
	Distance(other NodeIdentity) (distance int, related bool)
}

// PropertyList maps a property name to its value. Absence of a key means
// the property is not set; it is never represented as a present key with
// a nil value.
type PropertyList map[string][]byte

// DirEntry is one child reference inside a directory snapshot: a name
// that must sort under a total byte order, a node kind, and the opaque
// identity of the node it refers to.
type DirEntry struct {
	Name     string
	Kind     NodeKind
	Identity NodeIdentity
}

// NodeSnapshot is an opaque, reference-counted handle onto an immutable
// file or directory at some revision. TreeDelta never mutates a
// snapshot; it only reads from one.
type NodeSnapshot interface {
	Kind() NodeKind
	Identity() NodeIdentity
	Revision() int64
	Properties(ctx context.Context) (PropertyList, error)

	// EntryProperties returns the per-entry (dirent-level) properties
	// this directory snapshot attaches to the child named name — e.g.
	// svn:mergeinfo-style bookkeeping recorded on the reference to a
	// node rather than on the node itself. It is distinct from calling
	// Properties on that child's own snapshot. name need not exist in
	// Entries; an absent or property-less entry returns (nil, nil).
	EntryProperties(ctx context.Context, name string) (PropertyList, error)

	Entries(ctx context.Context) ([]DirEntry, error)
	Child(ctx context.Context, name string) (NodeSnapshot, error)
	Content(ctx context.Context) (io.ReadCloser, error)
	Release()
}
