// Package wcedit implements treedelta.Editor as a minimal applier that
// materializes an edit stream onto a real directory tree using os
// calls. It stands in for the working-copy store collaborator named —
// but not specified — by this core, just enough to make cmd/treediff
// -apply demonstrable end to end. There is no conflict handling and no
// locking; those remain out of this core's scope.
package wcedit

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/kestrel-vcs/svncore/pathlib"
	"github.com/kestrel-vcs/svncore/treedelta"
)

// Applier writes the edit stream onto the directory tree rooted at
// Base; ReplaceRoot creates Base if it does not exist yet.
type Applier struct {
	Base     string
	Platform pathlib.Platform

	// Props records property changes in memory, keyed by on-disk path,
	// since a plain directory tree has nowhere durable to store them.
	Props map[string]map[string][]byte
}

func NewApplier(base string, platform pathlib.Platform) *Applier {
	return &Applier{Base: base, Platform: platform, Props: map[string]map[string][]byte{}}
}

type node struct {
	path string
	buf  *bytes.Buffer // non-nil only for an open file
}

func (a *Applier) ReplaceRoot(ctx context.Context) (treedelta.DirBaton, error) {
	if err := os.MkdirAll(a.Base, 0o755); err != nil {
		return nil, err
	}
	return &node{path: a.Base}, nil
}

func (a *Applier) ReplaceDirectory(ctx context.Context, parent treedelta.DirBaton, name, ancestorPath string, ancestorRev int64) (treedelta.DirBaton, error) {
	return a.openDir(parent, name)
}

func (a *Applier) AddDirectory(ctx context.Context, parent treedelta.DirBaton, name string) (treedelta.DirBaton, error) {
	return a.openDir(parent, name)
}

func (a *Applier) openDir(parent treedelta.DirBaton, name string) (treedelta.DirBaton, error) {
	p := parent.(*node)
	childPath := pathlib.JoinDirent(p.path, name, a.Platform)
	if err := os.MkdirAll(childPath, 0o755); err != nil {
		return nil, err
	}
	return &node{path: childPath}, nil
}

func (a *Applier) ReplaceFile(ctx context.Context, parent treedelta.DirBaton, name, ancestorPath string, ancestorRev int64) (treedelta.FileBaton, error) {
	return a.openFile(parent, name)
}

func (a *Applier) AddFile(ctx context.Context, parent treedelta.DirBaton, name string) (treedelta.FileBaton, error) {
	return a.openFile(parent, name)
}

func (a *Applier) openFile(parent treedelta.DirBaton, name string) (treedelta.FileBaton, error) {
	p := parent.(*node)
	childPath := pathlib.JoinDirent(p.path, name, a.Platform)
	return &node{path: childPath, buf: &bytes.Buffer{}}, nil
}

func (a *Applier) Delete(ctx context.Context, parent treedelta.DirBaton, name string) error {
	p := parent.(*node)
	childPath := pathlib.JoinDirent(p.path, name, a.Platform)
	delete(a.Props, childPath)
	return os.RemoveAll(pathlib.LocalStyle(childPath, a.Platform))
}

func (a *Applier) ChangeDirProp(ctx context.Context, dir treedelta.DirBaton, name string, value []byte) error {
	return a.setProp(dir.(*node).path, name, value)
}

func (a *Applier) ChangeDirentProp(ctx context.Context, dir treedelta.DirBaton, entryName, name string, value []byte) error {
	p := dir.(*node)
	childPath := pathlib.JoinDirent(p.path, entryName, a.Platform)
	return a.setProp(childPath, name, value)
}

func (a *Applier) ChangeFileProp(ctx context.Context, file treedelta.FileBaton, name string, value []byte) error {
	return a.setProp(file.(*node).path, name, value)
}

func (a *Applier) setProp(path, name string, value []byte) error {
	props, ok := a.Props[path]
	if !ok {
		props = map[string][]byte{}
		a.Props[path] = props
	}
	if value == nil {
		delete(props, name)
		return nil
	}
	props[name] = value
	return nil
}

func (a *Applier) ApplyTextDelta(ctx context.Context, file treedelta.FileBaton) (treedelta.TextDeltaHandler, error) {
	f := file.(*node)
	if f.buf == nil {
		return nil, fmt.Errorf("wcedit: apply_textdelta on a file baton with no open buffer")
	}
	return func(w *treedelta.TextDeltaWindow) error {
		if w == nil {
			return nil
		}
		_, err := f.buf.Write(w.NewData)
		return err
	}, nil
}

func (a *Applier) CloseFile(ctx context.Context, file treedelta.FileBaton) error {
	f := file.(*node)
	localPath := pathlib.LocalStyle(f.path, a.Platform)
	if f.buf == nil {
		return nil
	}
	return os.WriteFile(localPath, f.buf.Bytes(), 0o644)
}

func (a *Applier) CloseDirectory(ctx context.Context, dir treedelta.DirBaton) error {
	return nil
}
