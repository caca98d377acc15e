package treedelta

import "context"

// DirBaton and FileBaton are the opaque per-node handles the Editor
// returns from replace_*/add_* calls and that TreeDelta threads back
// into subsequent calls on that node. An implementation is free to make
// these anything — a pointer, an index, a closure-captured struct — the
// core never inspects them.
type DirBaton any
type FileBaton any

// TextDeltaHandler receives the windows of a text delta in order,
// terminated by a final call with a nil window.
type TextDeltaHandler func(window *TextDeltaWindow) error

// Editor is the sink state machine TreeDelta drives: states Root, Dir,
// and File, with transitions exactly as described in the package's
// delta algorithm. Every baton returned by a replace_*/add_* call must
// be closed exactly once via the matching close call, and close order
// must be strict LIFO: a directory cannot close before every child it
// opened has closed.
//
// Editor implementations are not required to validate this discipline;
// violating it is a programming error in the caller. Use Debug to wrap
// an Editor with that validation for tests.
type Editor interface {
	// ReplaceRoot opens the Dir state at the tree root. It is the first
	// call TreeDelta makes and the corresponding CloseDirectory is the
	// last.
	ReplaceRoot(ctx context.Context) (DirBaton, error)

	// ReplaceDirectory opens an existing child of parent as a directory
	// with a new identity, optionally based on an ancestor path/revision
	// pair. ancestorPath is empty when no ancestor was selected.
	ReplaceDirectory(ctx context.Context, parent DirBaton, name string, ancestorPath string, ancestorRev int64) (DirBaton, error)

	// AddDirectory opens a new child of parent as a directory with no
	// ancestor.
	AddDirectory(ctx context.Context, parent DirBaton, name string) (DirBaton, error)

	// ReplaceFile opens an existing child of parent as a file with a new
	// identity, optionally based on an ancestor path/revision pair.
	ReplaceFile(ctx context.Context, parent DirBaton, name string, ancestorPath string, ancestorRev int64) (FileBaton, error)

	// AddFile opens a new child of parent as a file with no ancestor.
	AddFile(ctx context.Context, parent DirBaton, name string) (FileBaton, error)

	// Delete removes the child named name from parent. The child is not
	// opened first.
	Delete(ctx context.Context, parent DirBaton, name string) error

	// ChangeDirProp records a node-property change on dir. value is nil
	// for a deletion.
	ChangeDirProp(ctx context.Context, dir DirBaton, name string, value []byte) error

	// ChangeDirentProp records a change to a per-entry (dirent-level,
	// not node-level) property of the child named entryName inside dir.
	// value is nil for a deletion.
	ChangeDirentProp(ctx context.Context, dir DirBaton, entryName, name string, value []byte) error

	// ChangeFileProp records a node-property change on file. value is
	// nil for a deletion.
	ChangeFileProp(ctx context.Context, file FileBaton, name string, value []byte) error

	// ApplyTextDelta opens a text-delta stream for file and returns the
	// handler that receives its windows.
	ApplyTextDelta(ctx context.Context, file FileBaton) (TextDeltaHandler, error)

	// CloseFile pops the File state for file.
	CloseFile(ctx context.Context, file FileBaton) error

	// CloseDirectory pops the Dir state for dir.
	CloseDirectory(ctx context.Context, dir DirBaton) error
}
