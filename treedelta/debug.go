package treedelta

import (
	"context"
	"fmt"
)

// Debug wraps an Editor with runtime validation of the state machine
// described in this package: strict LIFO open/close order, and every
// call addressed to the directory or file that is actually innermost-
// open at the time of the call. It is meant for test assertions, not
// production use — violating the discipline panics rather than
// returning an error, because it indicates a bug in TreeDelta itself,
// not in caller input.
func Debug(inner Editor) Editor {
	return &debugEditor{inner: inner}
}

type frameKind int

const (
	frameDir frameKind = iota
	frameFile
)

type frame struct {
	kind   frameKind
	baton  any
}

type debugEditor struct {
	inner Editor
	stack []frame
}

func (d *debugEditor) push(k frameKind, b any) {
	d.stack = append(d.stack, frame{kind: k, baton: b})
}

func (d *debugEditor) pop(k frameKind, b any) {
	if len(d.stack) == 0 {
		panic(fmt.Sprintf("treedelta: close with nothing open (baton %v)", b))
	}
	top := d.stack[len(d.stack)-1]
	if top.kind != k || top.baton != b {
		panic(fmt.Sprintf("treedelta: close/open mismatch, not strict LIFO: closing %v, innermost open is %v", b, top.baton))
	}
	d.stack = d.stack[:len(d.stack)-1]
}

func (d *debugEditor) requireInnerDir(b any) {
	if len(d.stack) == 0 {
		panic(fmt.Sprintf("treedelta: call against dir %v with no directory open", b))
	}
	top := d.stack[len(d.stack)-1]
	if top.kind != frameDir || top.baton != b {
		panic(fmt.Sprintf("treedelta: call against dir %v which is not the innermost open directory (%v)", b, top.baton))
	}
}

func (d *debugEditor) requireInnerFile(b any) {
	if len(d.stack) == 0 {
		panic(fmt.Sprintf("treedelta: call against file %v with no file open", b))
	}
	top := d.stack[len(d.stack)-1]
	if top.kind != frameFile || top.baton != b {
		panic(fmt.Sprintf("treedelta: call against file %v which is not the innermost open file (%v)", b, top.baton))
	}
}

func (d *debugEditor) ReplaceRoot(ctx context.Context) (DirBaton, error) {
	b, err := d.inner.ReplaceRoot(ctx)
	if err == nil {
		d.push(frameDir, b)
	}
	return b, err
}

func (d *debugEditor) ReplaceDirectory(ctx context.Context, parent DirBaton, name, ancestorPath string, ancestorRev int64) (DirBaton, error) {
	d.requireInnerDir(parent)
	b, err := d.inner.ReplaceDirectory(ctx, parent, name, ancestorPath, ancestorRev)
	if err == nil {
		d.push(frameDir, b)
	}
	return b, err
}

func (d *debugEditor) AddDirectory(ctx context.Context, parent DirBaton, name string) (DirBaton, error) {
	d.requireInnerDir(parent)
	b, err := d.inner.AddDirectory(ctx, parent, name)
	if err == nil {
		d.push(frameDir, b)
	}
	return b, err
}

func (d *debugEditor) ReplaceFile(ctx context.Context, parent DirBaton, name, ancestorPath string, ancestorRev int64) (FileBaton, error) {
	d.requireInnerDir(parent)
	b, err := d.inner.ReplaceFile(ctx, parent, name, ancestorPath, ancestorRev)
	if err == nil {
		d.push(frameFile, b)
	}
	return b, err
}

func (d *debugEditor) AddFile(ctx context.Context, parent DirBaton, name string) (FileBaton, error) {
	d.requireInnerDir(parent)
	b, err := d.inner.AddFile(ctx, parent, name)
	if err == nil {
		d.push(frameFile, b)
	}
	return b, err
}

func (d *debugEditor) Delete(ctx context.Context, parent DirBaton, name string) error {
	d.requireInnerDir(parent)
	return d.inner.Delete(ctx, parent, name)
}

func (d *debugEditor) ChangeDirProp(ctx context.Context, dir DirBaton, name string, value []byte) error {
	d.requireInnerDir(dir)
	return d.inner.ChangeDirProp(ctx, dir, name, value)
}

func (d *debugEditor) ChangeDirentProp(ctx context.Context, dir DirBaton, entryName, name string, value []byte) error {
	d.requireInnerDir(dir)
	return d.inner.ChangeDirentProp(ctx, dir, entryName, name, value)
}

func (d *debugEditor) ChangeFileProp(ctx context.Context, file FileBaton, name string, value []byte) error {
	d.requireInnerFile(file)
	return d.inner.ChangeFileProp(ctx, file, name, value)
}

func (d *debugEditor) ApplyTextDelta(ctx context.Context, file FileBaton) (TextDeltaHandler, error) {
	d.requireInnerFile(file)
	return d.inner.ApplyTextDelta(ctx, file)
}

func (d *debugEditor) CloseFile(ctx context.Context, file FileBaton) error {
	if err := d.inner.CloseFile(ctx, file); err != nil {
		return err
	}
	d.pop(frameFile, file)
	return nil
}

func (d *debugEditor) CloseDirectory(ctx context.Context, dir DirBaton) error {
	if err := d.inner.CloseDirectory(ctx, dir); err != nil {
		return err
	}
	d.pop(frameDir, dir)
	return nil
}
