// Package memedit implements treedelta.Editor as an in-memory node
// graph: the reference sink used by tests and by cmd/treediff's
// -report flag. Children are owned by their parent's slice; the back-
// reference to the parent is non-owning, per the arena+index /
// parent-owned-child-vector guidance in this core's design notes.
package memedit

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/kestrel-vcs/svncore/treedelta"
)

// Node is one directory or file in the built tree.
type Node struct {
	Name         string
	Kind         treedelta.NodeKind
	AncestorPath string
	AncestorRev  int64
	Props        map[string][]byte
	Content      []byte
	Children     []*Node
	Deleted      []string

	parent *Node // non-owning
}

// Builder is a treedelta.Editor that materializes the edit stream into
// a Node tree rooted at Root.
type Builder struct {
	Root *Node
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) ReplaceRoot(ctx context.Context) (treedelta.DirBaton, error) {
	b.Root = &Node{Kind: treedelta.KindDir, Props: map[string][]byte{}}
	return b.Root, nil
}

func (b *Builder) ReplaceDirectory(ctx context.Context, parent treedelta.DirBaton, name, ancestorPath string, ancestorRev int64) (treedelta.DirBaton, error) {
	p := parent.(*Node)
	child := &Node{Name: name, Kind: treedelta.KindDir, Props: map[string][]byte{}, AncestorPath: ancestorPath, AncestorRev: ancestorRev, parent: p}
	p.replaceChild(child)
	return child, nil
}

func (b *Builder) AddDirectory(ctx context.Context, parent treedelta.DirBaton, name string) (treedelta.DirBaton, error) {
	p := parent.(*Node)
	child := &Node{Name: name, Kind: treedelta.KindDir, Props: map[string][]byte{}, parent: p}
	p.addChild(child)
	return child, nil
}

func (b *Builder) ReplaceFile(ctx context.Context, parent treedelta.DirBaton, name, ancestorPath string, ancestorRev int64) (treedelta.FileBaton, error) {
	p := parent.(*Node)
	child := &Node{Name: name, Kind: treedelta.KindFile, Props: map[string][]byte{}, AncestorPath: ancestorPath, AncestorRev: ancestorRev, parent: p}
	p.replaceChild(child)
	return child, nil
}

func (b *Builder) AddFile(ctx context.Context, parent treedelta.DirBaton, name string) (treedelta.FileBaton, error) {
	p := parent.(*Node)
	child := &Node{Name: name, Kind: treedelta.KindFile, Props: map[string][]byte{}, parent: p}
	p.addChild(child)
	return child, nil
}

func (b *Builder) Delete(ctx context.Context, parent treedelta.DirBaton, name string) error {
	p := parent.(*Node)
	kept := p.Children[:0]
	for _, c := range p.Children {
		if c.Name == name {
			continue
		}
		kept = append(kept, c)
	}
	p.Children = kept
	p.Deleted = append(p.Deleted, name)
	return nil
}

func (b *Builder) ChangeDirProp(ctx context.Context, dir treedelta.DirBaton, name string, value []byte) error {
	return setProp(dir.(*Node), name, value)
}

func (b *Builder) ChangeDirentProp(ctx context.Context, dir treedelta.DirBaton, entryName, name string, value []byte) error {
	d := dir.(*Node)
	for _, c := range d.Children {
		if c.Name == entryName {
			return setProp(c, name, value)
		}
	}
	return fmt.Errorf("memedit: change_dirent_prop: no such child %q", entryName)
}

func (b *Builder) ChangeFileProp(ctx context.Context, file treedelta.FileBaton, name string, value []byte) error {
	return setProp(file.(*Node), name, value)
}

func (b *Builder) ApplyTextDelta(ctx context.Context, file treedelta.FileBaton) (treedelta.TextDeltaHandler, error) {
	f := file.(*Node)
	buf := &bytes.Buffer{}
	return func(w *treedelta.TextDeltaWindow) error {
		if w == nil {
			f.Content = buf.Bytes()
			return nil
		}
		buf.Write(w.NewData)
		return nil
	}, nil
}

func (b *Builder) CloseFile(ctx context.Context, file treedelta.FileBaton) error {
	return nil
}

func (b *Builder) CloseDirectory(ctx context.Context, dir treedelta.DirBaton) error {
	return nil
}

func setProp(n *Node, name string, value []byte) error {
	if value == nil {
		delete(n.Props, name)
		return nil
	}
	n.Props[name] = value
	return nil
}

func (p *Node) addChild(child *Node) {
	p.Children = append(p.Children, child)
	sort.Slice(p.Children, func(i, j int) bool { return p.Children[i].Name < p.Children[j].Name })
}

func (p *Node) replaceChild(child *Node) {
	for i, c := range p.Children {
		if c.Name == child.Name {
			p.Children[i] = child
			return
		}
	}
	p.addChild(child)
}

// Parent returns the non-owning back-reference to n's parent, or nil
// for the root.
func (n *Node) Parent() *Node { return n.parent }
