package wcedit_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/kestrel-vcs/svncore/pathlib"
	"github.com/kestrel-vcs/svncore/treedelta"
	"github.com/kestrel-vcs/svncore/wcedit"
)

type fakeIdentity struct{ id, content string }

func (f fakeIdentity) SameAs(o treedelta.NodeIdentity) bool {
	other, ok := o.(fakeIdentity)
	return ok && f.id == other.id
}

func (f fakeIdentity) Distance(o treedelta.NodeIdentity) (int, bool) {
	other, ok := o.(fakeIdentity)
	if !ok {
		return 0, false
	}
	if f.content == other.content {
		return 0, true
	}
	return 1, true
}

type fakeNode struct {
	kind     treedelta.NodeKind
	id       fakeIdentity
	content  []byte
	children map[string]*fakeNode
}

type fakeSnapshot struct{ n *fakeNode }

func (s fakeSnapshot) Kind() treedelta.NodeKind               { return s.n.kind }
func (s fakeSnapshot) Identity() treedelta.NodeIdentity        { return s.n.id }
func (s fakeSnapshot) Revision() int64                         { return 1 }
func (s fakeSnapshot) Properties(context.Context) (treedelta.PropertyList, error) {
	return nil, nil
}

func (s fakeSnapshot) EntryProperties(context.Context, string) (treedelta.PropertyList, error) {
	return nil, nil
}

func (s fakeSnapshot) Entries(context.Context) ([]treedelta.DirEntry, error) {
	var entries []treedelta.DirEntry
	for name, c := range s.n.children {
		entries = append(entries, treedelta.DirEntry{Name: name, Kind: c.kind, Identity: c.id})
	}
	return entries, nil
}

func (s fakeSnapshot) Child(ctx context.Context, name string) (treedelta.NodeSnapshot, error) {
	return fakeSnapshot{s.n.children[name]}, nil
}

func (s fakeSnapshot) Content(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.n.content)), nil
}

func (s fakeSnapshot) Release() {}

func TestApplierWritesFilesToDisk(t *testing.T) {
	tmp := t.TempDir()
	base := pathlib.CanonicalizeDirent(filepath.ToSlash(tmp), pathlib.POSIX)

	source := fakeSnapshot{&fakeNode{kind: treedelta.KindDir}}
	target := fakeSnapshot{&fakeNode{kind: treedelta.KindDir, children: map[string]*fakeNode{
		"README.txt": {kind: treedelta.KindFile, id: fakeIdentity{id: "r1", content: "hi"}, content: []byte("hi")},
	}}}

	applier := wcedit.NewApplier(base, pathlib.POSIX)
	if err := treedelta.Delta(context.Background(), source, target, applier, treedelta.Options{}); err != nil {
		t.Fatalf("Delta() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tmp, "README.txt"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "hi" {
		t.Errorf("file content = %q, want %q", data, "hi")
	}
}
