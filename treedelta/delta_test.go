package treedelta

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/kestrel-vcs/svncore/svnerr"
)

type fakeIdentity struct {
	id      string
	content string
}

func (f fakeIdentity) SameAs(other NodeIdentity) bool {
	o, ok := other.(fakeIdentity)
	return ok && f.id == o.id
}

func (f fakeIdentity) Distance(other NodeIdentity) (int, bool) {
	o, ok := other.(fakeIdentity)
	if !ok {
		return 0, false
	}
	if f.content == o.content {
		return 0, true
	}
	return 1, true
}

type memNode struct {
	kind       NodeKind
	id         fakeIdentity
	rev        int64
	props      PropertyList
	entryProps map[string]PropertyList // per-child dirent properties, keyed by child name
	content    []byte
	children   map[string]*memNode
}

type memSnapshot struct{ node *memNode }

func (s memSnapshot) Kind() NodeKind         { return s.node.kind }
func (s memSnapshot) Identity() NodeIdentity { return s.node.id }
func (s memSnapshot) Revision() int64        { return s.node.rev }

func (s memSnapshot) Properties(context.Context) (PropertyList, error) {
	return s.node.props, nil
}

func (s memSnapshot) EntryProperties(ctx context.Context, name string) (PropertyList, error) {
	return s.node.entryProps[name], nil
}

func (s memSnapshot) Entries(context.Context) ([]DirEntry, error) {
	entries := make([]DirEntry, 0, len(s.node.children))
	for name, child := range s.node.children {
		entries = append(entries, DirEntry{Name: name, Kind: child.kind, Identity: child.id})
	}
	return entries, nil
}

func (s memSnapshot) Child(ctx context.Context, name string) (NodeSnapshot, error) {
	child, ok := s.node.children[name]
	if !ok {
		return nil, fmt.Errorf("no such child: %s", name)
	}
	return memSnapshot{child}, nil
}

func (s memSnapshot) Content(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.node.content)), nil
}

func (s memSnapshot) Release() {}

// recordingEditor logs every call it receives in order, for assertions
// against the editor-call-sequence properties of §8.
type recordingEditor struct {
	calls []string
}

func (r *recordingEditor) log(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recordingEditor) ReplaceRoot(ctx context.Context) (DirBaton, error) {
	r.log("replace_root")
	return "root", nil
}

func (r *recordingEditor) ReplaceDirectory(ctx context.Context, parent DirBaton, name, ancestorPath string, ancestorRev int64) (DirBaton, error) {
	r.log("replace_directory(%s,%s,%d)", name, ancestorPath, ancestorRev)
	return "dir:" + name, nil
}

func (r *recordingEditor) AddDirectory(ctx context.Context, parent DirBaton, name string) (DirBaton, error) {
	r.log("add_directory(%s)", name)
	return "dir:" + name, nil
}

func (r *recordingEditor) ReplaceFile(ctx context.Context, parent DirBaton, name, ancestorPath string, ancestorRev int64) (FileBaton, error) {
	r.log("replace_file(%s,%s,%d)", name, ancestorPath, ancestorRev)
	return "file:" + name, nil
}

func (r *recordingEditor) AddFile(ctx context.Context, parent DirBaton, name string) (FileBaton, error) {
	r.log("add_file(%s)", name)
	return "file:" + name, nil
}

func (r *recordingEditor) Delete(ctx context.Context, parent DirBaton, name string) error {
	r.log("delete(%s)", name)
	return nil
}

func (r *recordingEditor) ChangeDirProp(ctx context.Context, dir DirBaton, name string, value []byte) error {
	r.log("change_dir_prop(%s,%v)", name, value)
	return nil
}

func (r *recordingEditor) ChangeDirentProp(ctx context.Context, dir DirBaton, entryName, name string, value []byte) error {
	r.log("change_dirent_prop(%s,%s,%v)", entryName, name, value)
	return nil
}

func (r *recordingEditor) ChangeFileProp(ctx context.Context, file FileBaton, name string, value []byte) error {
	r.log("change_file_prop(%s,%v)", name, value)
	return nil
}

func (r *recordingEditor) ApplyTextDelta(ctx context.Context, file FileBaton) (TextDeltaHandler, error) {
	r.log("apply_textdelta")
	return func(w *TextDeltaWindow) error {
		if w == nil {
			r.log("window(nil)")
			return nil
		}
		r.log("window(%d bytes)", len(w.NewData))
		return nil
	}, nil
}

func (r *recordingEditor) CloseFile(ctx context.Context, file FileBaton) error {
	r.log("close_file")
	return nil
}

func (r *recordingEditor) CloseDirectory(ctx context.Context, dir DirBaton) error {
	r.log("close_directory")
	return nil
}

func fileNode(id, content string, props PropertyList) *memNode {
	return &memNode{kind: KindFile, id: fakeIdentity{id: id, content: content}, props: props, content: []byte(content)}
}

func dirNode(id string, children map[string]*memNode, props PropertyList) *memNode {
	return &memNode{kind: KindDir, id: fakeIdentity{id: id}, props: props, children: children}
}

func TestDeltaNullDiff(t *testing.T) {
	tree := dirNode("root", map[string]*memNode{
		"a": fileNode("a1", "hello", nil),
	}, nil)
	snap := memSnapshot{tree}

	ed := &recordingEditor{}
	if err := Delta(context.Background(), snap, snap, ed, Options{}); err != nil {
		t.Fatalf("Delta() error = %v", err)
	}
	want := []string{"replace_root", "close_directory"}
	assertCalls(t, ed.calls, want)
}

func TestDeltaAddOnly(t *testing.T) {
	source := memSnapshot{dirNode("root-src", nil, nil)}
	target := memSnapshot{dirNode("root-tgt", map[string]*memNode{
		"b": fileNode("b1", "", nil),
		"a": fileNode("a1", "", nil),
	}, nil)}

	ed := &recordingEditor{}
	if err := Delta(context.Background(), source, target, ed, Options{}); err != nil {
		t.Fatalf("Delta() error = %v", err)
	}

	var adds []string
	for _, c := range ed.calls {
		if len(c) >= 8 && c[:8] == "add_file" {
			adds = append(adds, c)
		}
	}
	if len(adds) != 2 || adds[0] != "add_file(a)" || adds[1] != "add_file(b)" {
		t.Fatalf("adds = %v, want add_file(a) then add_file(b)", adds)
	}
}

func TestDeltaPropertyOnlyChangeSkipsTextDelta(t *testing.T) {
	source := memSnapshot{dirNode("root-src", map[string]*memNode{
		"a": fileNode("a1", "same bytes", PropertyList{"k": []byte("v1")}),
	}, nil)}
	target := memSnapshot{dirNode("root-tgt", map[string]*memNode{
		"a": fileNode("a2", "same bytes", PropertyList{"k": []byte("v2")}),
	}, nil)}

	ed := &recordingEditor{}
	if err := Delta(context.Background(), source, target, ed, Options{}); err != nil {
		t.Fatalf("Delta() error = %v", err)
	}

	var propChanges, textDeltas int
	for _, c := range ed.calls {
		switch {
		case len(c) >= 16 && c[:16] == "change_file_prop":
			propChanges++
		case c == "apply_textdelta":
			textDeltas++
		}
	}
	if propChanges != 1 {
		t.Errorf("change_file_prop count = %d, want 1", propChanges)
	}
	if textDeltas != 0 {
		t.Errorf("apply_textdelta count = %d, want 0", textDeltas)
	}
}

func TestDeltaDeleteAndReplace(t *testing.T) {
	source := memSnapshot{dirNode("root-src", map[string]*memNode{
		"a": fileNode("a1", "x", nil),
		"b": fileNode("b1", "y", nil),
	}, nil)}
	target := memSnapshot{dirNode("root-tgt", map[string]*memNode{
		"a": fileNode("a2", "x-changed", nil),
		"c": dirNode("c1", nil, nil),
	}, nil)}

	ed := &recordingEditor{}
	if err := Delta(context.Background(), source, target, ed, Options{}); err != nil {
		t.Fatalf("Delta() error = %v", err)
	}

	foundDelete, foundReplace, foundAddDir := false, false, false
	for _, c := range ed.calls {
		switch {
		case c == "delete(b)":
			foundDelete = true
		case len(c) >= 12 && c[:12] == "replace_file":
			foundReplace = true
		case c == "add_directory(c)":
			foundAddDir = true
		}
	}
	if !foundDelete || !foundReplace || !foundAddDir {
		t.Fatalf("calls = %v, missing one of delete(b)/replace_file/add_directory(c)", ed.calls)
	}
}

func TestDeltaEmitsDirentPropBeforeReplace(t *testing.T) {
	source := dirNode("root-src", map[string]*memNode{
		"a": fileNode("a1", "x", nil),
	}, nil)
	source.entryProps = map[string]PropertyList{"a": {"k": []byte("old")}}

	target := dirNode("root-tgt", map[string]*memNode{
		"a": fileNode("a2", "x-changed", nil),
	}, nil)
	target.entryProps = map[string]PropertyList{"a": {"k": []byte("new")}}

	ed := &recordingEditor{}
	if err := Delta(context.Background(), memSnapshot{source}, memSnapshot{target}, ed, Options{}); err != nil {
		t.Fatalf("Delta() error = %v", err)
	}

	direntIdx, replaceIdx := -1, -1
	for i, c := range ed.calls {
		if len(c) >= 18 && c[:18] == "change_dirent_prop" {
			direntIdx = i
		}
		if len(c) >= 12 && c[:12] == "replace_file" {
			replaceIdx = i
		}
	}
	if direntIdx == -1 {
		t.Fatalf("calls = %v, missing change_dirent_prop", ed.calls)
	}
	if replaceIdx == -1 || direntIdx > replaceIdx {
		t.Fatalf("calls = %v, want change_dirent_prop before replace_file", ed.calls)
	}
}

func TestDeltaEmitsDirentPropWithoutIdentityChange(t *testing.T) {
	source := dirNode("root-src", map[string]*memNode{
		"a": fileNode("a1", "x", nil),
	}, nil)
	source.entryProps = map[string]PropertyList{"a": {"k": []byte("old")}}

	target := dirNode("root-tgt", map[string]*memNode{
		"a": fileNode("a1", "x", nil),
	}, nil)
	target.entryProps = map[string]PropertyList{"a": {"k": []byte("new")}}

	ed := &recordingEditor{}
	if err := Delta(context.Background(), memSnapshot{source}, memSnapshot{target}, ed, Options{}); err != nil {
		t.Fatalf("Delta() error = %v", err)
	}

	found := false
	for _, c := range ed.calls {
		if len(c) >= 18 && c[:18] == "change_dirent_prop" {
			found = true
		}
		if len(c) >= 12 && c[:12] == "replace_file" {
			t.Fatalf("matching identities should not trigger a replace: %v", ed.calls)
		}
	}
	if !found {
		t.Fatalf("calls = %v, missing change_dirent_prop despite unchanged identity", ed.calls)
	}
}

func TestDeltaCancellationStopsBeforeSecondSibling(t *testing.T) {
	source := memSnapshot{dirNode("root-src", nil, nil)}
	target := memSnapshot{dirNode("root-tgt", map[string]*memNode{
		"a": fileNode("a1", "", nil),
		"b": fileNode("b1", "", nil),
	}, nil)}

	ed := &recordingEditor{}
	closed := 0
	opts := Options{Cancel: func() bool {
		return closed > 0
	}}
	wrapped := &countingEditor{recordingEditor: ed, closedCount: &closed}

	err := Delta(context.Background(), source, target, wrapped, opts)
	if err == nil {
		t.Fatal("Delta() expected an error, got nil")
	}
	if !errors.Is(err, svnerr.Cancelled) {
		t.Fatalf("Delta() error = %v, want svnerr.Cancelled", err)
	}

	addCount := 0
	for _, c := range ed.calls {
		if len(c) >= 8 && c[:8] == "add_file" {
			addCount++
		}
	}
	if addCount != 1 {
		t.Fatalf("add_file calls = %d, want exactly 1 (second sibling must not start)", addCount)
	}
}

// countingEditor wraps recordingEditor and bumps closedCount every time a
// file finishes closing, so the test's Cancel func can fire strictly
// between siblings.
type countingEditor struct {
	*recordingEditor
	closedCount *int
}

func (c *countingEditor) CloseFile(ctx context.Context, file FileBaton) error {
	err := c.recordingEditor.CloseFile(ctx, file)
	*c.closedCount++
	return err
}

func assertCalls(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls[%d] = %q, want %q (full: %v)", i, got[i], want[i], got)
		}
	}
}
