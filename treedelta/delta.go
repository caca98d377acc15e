package treedelta

import (
	"bytes"
	"context"
	"io"
	"sort"

	"github.com/kestrel-vcs/svncore/pathlib"
)

// Options configures one Delta invocation.
type Options struct {
	// TextDeltaSource produces the windows of a file's text delta.
	// DifflibTextDeltaSource is used when nil.
	TextDeltaSource TextDeltaSource

	// Cancel, when non-nil, is polled at every directory boundary (and
	// before every sibling edit within a directory) and before every
	// content-delta window. A true result aborts the invocation with
	// svnerr.Cancelled.
	Cancel func() bool
}

func checkCancel(opts Options) error {
	if opts.Cancel != nil && opts.Cancel() {
		return errCancelled()
	}
	return nil
}

// Delta walks source and target and replays the structural difference
// between them onto editor. It returns the first error encountered; on
// error, any editor frames already opened remain open for the caller to
// tear down. On success, every frame Delta opened has been closed.
func Delta(ctx context.Context, source, target NodeSnapshot, editor Editor, opts Options) error {
	ar := newArena()
	defer ar.release()

	root, err := editor.ReplaceRoot(ctx)
	if err != nil {
		return err
	}
	if err := deltaDirs(ctx, ar, root, "", source, target, editor, opts); err != nil {
		return err
	}
	return editor.CloseDirectory(ctx, root)
}

// deltaDirs implements the recursive merge-walk of spec §4.2 for one
// directory level.
func deltaDirs(ctx context.Context, ar *arena, dirBaton DirBaton, sourcePath string, source, target NodeSnapshot, editor Editor, opts Options) error {
	if err := checkCancel(opts); err != nil {
		return err
	}

	sourceProps, err := source.Properties(ctx)
	if err != nil {
		return err
	}
	targetProps, err := target.Properties(ctx)
	if err != nil {
		return err
	}
	for _, c := range diffProperties(ar, sourceProps, targetProps) {
		if err := editor.ChangeDirProp(ctx, dirBaton, c.Name, c.Value); err != nil {
			return err
		}
	}

	sourceEntries, err := source.Entries(ctx)
	if err != nil {
		return err
	}
	targetEntries, err := target.Entries(ctx)
	if err != nil {
		return err
	}
	sortEntries(sourceEntries)
	sortEntries(targetEntries)

	i, j := 0, 0
	for i < len(sourceEntries) || j < len(targetEntries) {
		if err := checkCancel(opts); err != nil {
			return err
		}

		switch {
		case i < len(sourceEntries) && (j >= len(targetEntries) || sourceEntries[i].Name < targetEntries[j].Name):
			if err := editor.Delete(ctx, dirBaton, sourceEntries[i].Name); err != nil {
				return err
			}
			i++

		case j < len(targetEntries) && (i >= len(sourceEntries) || targetEntries[j].Name < sourceEntries[i].Name):
			if err := addEntry(ctx, ar, dirBaton, targetEntries[j], target, editor, opts); err != nil {
				return err
			}
			j++

		default:
			srcEntry, tgtEntry := sourceEntries[i], targetEntries[j]
			if err := diffEntryProps(ctx, ar, dirBaton, source, target, srcEntry, tgtEntry, editor); err != nil {
				return err
			}
			if !srcEntry.Identity.SameAs(tgtEntry.Identity) {
				if err := replaceEntry(ctx, ar, dirBaton, sourcePath, sourceEntries, srcEntry, tgtEntry, source, target, editor, opts); err != nil {
					return err
				}
			}
			i++
			j++
		}
	}
	return nil
}

// diffEntryProps diffs the per-entry (dirent-level) properties source and
// target attach to the matched entry srcEntry/tgtEntry and emits a
// ChangeDirentProp for each difference. This runs for every matched
// entry regardless of whether the entries' node identities agree, and
// before any structural change to the entry, per spec §4.2's ordering
// guarantee and the grounding delta_dirent_props call in delta.c.
func diffEntryProps(ctx context.Context, ar *arena, dirBaton DirBaton, source, target NodeSnapshot, srcEntry, tgtEntry DirEntry, editor Editor) error {
	sourceProps, err := source.EntryProperties(ctx, srcEntry.Name)
	if err != nil {
		return err
	}
	targetProps, err := target.EntryProperties(ctx, tgtEntry.Name)
	if err != nil {
		return err
	}
	for _, c := range diffProperties(ar, sourceProps, targetProps) {
		if err := editor.ChangeDirentProp(ctx, dirBaton, tgtEntry.Name, c.Name, c.Value); err != nil {
			return err
		}
	}
	return nil
}

// absAncestorPath renders a root-relative path for an ancestor_path
// argument handed to the Editor: an absolute-looking "/a/b" form, even
// though the path algebra's Relpath flavor itself never carries the
// leading slash.
func absAncestorPath(relpath string) string {
	return "/" + relpath
}

func sortEntries(entries []DirEntry) {
	sort.Slice(entries, func(a, b int) bool { return entries[a].Name < entries[b].Name })
}

// bestAncestor implements the replace ancestor selector: the source
// entry of the given kind minimizing identity_distance to target,
// ties resolved to the lower index (first discovered), ignoring
// candidates the identity comparator reports as unrelated.
func bestAncestor(sourceEntries []DirEntry, target DirEntry, kind NodeKind) (entry DirEntry, distance int, found bool) {
	best := -1
	for _, cand := range sourceEntries {
		if cand.Kind != kind {
			continue
		}
		d, related := target.Identity.Distance(cand.Identity)
		if !related {
			continue
		}
		if !found || d < best {
			found = true
			best = d
			entry = cand
			distance = d
		}
	}
	return entry, distance, found
}

// replaceEntry handles a same-name entry whose identity changed: the
// "replace" branch of spec §4.2.
func replaceEntry(ctx context.Context, ar *arena, dirBaton DirBaton, sourcePath string, sourceEntries []DirEntry, srcEntry, tgtEntry DirEntry, source, target NodeSnapshot, editor Editor, opts Options) error {
	if tgtEntry.Kind == KindFile {
		return replaceFileEntry(ctx, ar, dirBaton, sourcePath, sourceEntries, tgtEntry, source, target, editor, opts)
	}
	return replaceDirEntry(ctx, ar, dirBaton, sourcePath, sourceEntries, tgtEntry, source, target, editor, opts)
}

func replaceFileEntry(ctx context.Context, ar *arena, dirBaton DirBaton, sourcePath string, sourceEntries []DirEntry, tgtEntry DirEntry, source, target NodeSnapshot, editor Editor, opts Options) error {
	ancestorEntry, distance, found := bestAncestor(sourceEntries, tgtEntry, KindFile)

	var ancestorSnap NodeSnapshot
	ancestorPath := ""
	var ancestorRev int64
	if found {
		snap, err := source.Child(ctx, ancestorEntry.Name)
		if err != nil {
			return err
		}
		ancestorSnap = snap
		ancestorPath = absAncestorPath(pathlib.JoinRelpath(sourcePath, ancestorEntry.Name))
		ancestorRev = snap.Revision()
		defer snap.Release()
	}

	targetChild, err := target.Child(ctx, tgtEntry.Name)
	if err != nil {
		return err
	}
	defer targetChild.Release()

	fb, err := editor.ReplaceFile(ctx, dirBaton, tgtEntry.Name, ancestorPath, ancestorRev)
	if err != nil {
		return err
	}

	skipContent := found && distance == 0
	return writeFile(ctx, ar, fb, ancestorSnap, targetChild, editor, opts, skipContent)
}

func replaceDirEntry(ctx context.Context, ar *arena, dirBaton DirBaton, sourcePath string, sourceEntries []DirEntry, tgtEntry DirEntry, source, target NodeSnapshot, editor Editor, opts Options) error {
	ancestorEntry, _, found := bestAncestor(sourceEntries, tgtEntry, KindDir)

	var ancestorSnap NodeSnapshot
	ancestorPath := ""
	var ancestorRev int64
	childSourcePath := sourcePath
	if found {
		snap, err := source.Child(ctx, ancestorEntry.Name)
		if err != nil {
			return err
		}
		ancestorSnap = snap
		childSourcePath = pathlib.JoinRelpath(sourcePath, ancestorEntry.Name)
		ancestorPath = absAncestorPath(childSourcePath)
		ancestorRev = snap.Revision()
		defer snap.Release()
	}

	targetChild, err := target.Child(ctx, tgtEntry.Name)
	if err != nil {
		return err
	}
	defer targetChild.Release()

	db, err := editor.ReplaceDirectory(ctx, dirBaton, tgtEntry.Name, ancestorPath, ancestorRev)
	if err != nil {
		return err
	}

	var effectiveSource NodeSnapshot = emptyDirSnapshot{}
	if ancestorSnap != nil {
		effectiveSource = ancestorSnap
	}
	if err := deltaDirs(ctx, ar, db, childSourcePath, effectiveSource, targetChild, editor, opts); err != nil {
		return err
	}
	return editor.CloseDirectory(ctx, db)
}

// addEntry handles an entry present only in target: the "add" branch,
// equivalent to a replace-from-scratch against the empty tree.
func addEntry(ctx context.Context, ar *arena, dirBaton DirBaton, tgtEntry DirEntry, target NodeSnapshot, editor Editor, opts Options) error {
	targetChild, err := target.Child(ctx, tgtEntry.Name)
	if err != nil {
		return err
	}
	defer targetChild.Release()

	if tgtEntry.Kind == KindFile {
		fb, err := editor.AddFile(ctx, dirBaton, tgtEntry.Name)
		if err != nil {
			return err
		}
		return writeFile(ctx, ar, fb, nil, targetChild, editor, opts, false)
	}

	db, err := editor.AddDirectory(ctx, dirBaton, tgtEntry.Name)
	if err != nil {
		return err
	}
	if err := deltaDirs(ctx, ar, db, "", emptyDirSnapshot{}, targetChild, editor, opts); err != nil {
		return err
	}
	return editor.CloseDirectory(ctx, db)
}

// writeFile emits the property and (unless skipContent) text-delta
// calls for one file baton, then closes it.
func writeFile(ctx context.Context, ar *arena, fb FileBaton, ancestorSnap NodeSnapshot, targetSnap NodeSnapshot, editor Editor, opts Options, skipContent bool) error {
	var ancestorProps PropertyList
	if ancestorSnap != nil {
		p, err := ancestorSnap.Properties(ctx)
		if err != nil {
			return err
		}
		ancestorProps = p
	}
	targetProps, err := targetSnap.Properties(ctx)
	if err != nil {
		return err
	}
	for _, c := range diffProperties(ar, ancestorProps, targetProps) {
		if err := editor.ChangeFileProp(ctx, fb, c.Name, c.Value); err != nil {
			return err
		}
	}

	if !skipContent {
		if err := checkCancel(opts); err != nil {
			return err
		}
		if err := emitTextDelta(ctx, fb, ancestorSnap, targetSnap, editor, opts); err != nil {
			return err
		}
	}

	return editor.CloseFile(ctx, fb)
}

func emitTextDelta(ctx context.Context, fb FileBaton, ancestorSnap, targetSnap NodeSnapshot, editor Editor, opts Options) error {
	var ancestorContent io.Reader = bytes.NewReader(nil)
	if ancestorSnap != nil {
		rc, err := ancestorSnap.Content(ctx)
		if err != nil {
			return err
		}
		defer rc.Close()
		ancestorContent = rc
	}

	targetContent, err := targetSnap.Content(ctx)
	if err != nil {
		return err
	}
	defer targetContent.Close()

	tds := opts.TextDeltaSource
	if tds == nil {
		tds = DifflibTextDeltaSource{}
	}
	stream, err := tds.Windows(ctx, ancestorContent, targetContent)
	if err != nil {
		return err
	}
	defer stream.Close()

	handler, err := editor.ApplyTextDelta(ctx, fb)
	if err != nil {
		return err
	}

	for {
		if err := checkCancel(opts); err != nil {
			return err
		}
		w, err := stream.Next()
		if err != nil {
			return err
		}
		if w == nil {
			break
		}
		if err := handler(w); err != nil {
			return err
		}
	}
	return handler(nil)
}

// propChange is one differing property between two property lists.
type propChange struct {
	Name  string
	Value []byte // nil means deleted
}

// diffProperties collects the union of the property names of source and
// target, sorts it, and returns the differing entries in name order:
// present only in source
// emits a deletion (nil value), present only in target emits an add,
// and present in both with differing bytes emits a change. The name
// scratch slice is borrowed from ar and returned before diffProperties
// returns, so the many property diffs one Delta invocation performs
// (per directory, per matched entry, per replaced/added file) reuse a
// small number of backing arrays instead of allocating one per call.
func diffProperties(ar *arena, source, target PropertyList) []propChange {
	names := make(map[string]struct{}, len(source)+len(target))
	for n := range source {
		names[n] = struct{}{}
	}
	for n := range target {
		names[n] = struct{}{}
	}
	sorted := ar.namesBuf(len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	var changes []propChange
	for _, n := range sorted {
		sv, sok := source[n]
		tv, tok := target[n]
		switch {
		case sok && !tok:
			changes = append(changes, propChange{Name: n, Value: nil})
		case !sok && tok:
			changes = append(changes, propChange{Name: n, Value: tv})
		case sok && tok && !bytes.Equal(sv, tv):
			changes = append(changes, propChange{Name: n, Value: tv})
		}
	}
	ar.putNamesBuf(sorted)
	return changes
}

// emptyDirSnapshot stands in for "the empty tree" when delta_dirs is
// asked to diff a target subtree that has no corresponding source: an
// add has no ancestor to compare against, and comparing against the
// empty tree is exactly equivalent to emitting an add_* for everything
// below it (spec §4.2's "Add" rule).
type emptyDirSnapshot struct{}

func (emptyDirSnapshot) Kind() NodeKind { return KindDir }
func (emptyDirSnapshot) Identity() NodeIdentity { return nil }
func (emptyDirSnapshot) Revision() int64 { return 0 }
func (emptyDirSnapshot) Properties(context.Context) (PropertyList, error) { return nil, nil }
func (emptyDirSnapshot) EntryProperties(context.Context, string) (PropertyList, error) {
	return nil, nil
}
func (emptyDirSnapshot) Entries(context.Context) ([]DirEntry, error) { return nil, nil }
func (emptyDirSnapshot) Child(ctx context.Context, name string) (NodeSnapshot, error) {
	return nil, errNoRevision(name)
}
func (emptyDirSnapshot) Content(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(nil)), nil
}
func (emptyDirSnapshot) Release() {}
