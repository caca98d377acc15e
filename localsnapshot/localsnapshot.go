// Package localsnapshot implements treedelta.NodeSnapshot over a real
// on-disk directory tree, for cmd/treediff. File content is mapped
// into memory with github.com/edsrzf/mmap-go, the same way the
// teacher's DumpFile maps a dump file for reading, rather than being
// read into a growable buffer.
package localsnapshot

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/edsrzf/mmap-go"

	"github.com/kestrel-vcs/svncore/pathlib"
	"github.com/kestrel-vcs/svncore/treedelta"
)

// fileIdentity fingerprints a file by the sha256 of its content. Two
// files with equal fingerprints are treated as the same node; this
// stands in for the node-revision identity a real repository tracks,
// which a bare directory tree has no record of.
type fileIdentity struct {
	hash [sha256.Size]byte
}

func (f fileIdentity) SameAs(other treedelta.NodeIdentity) bool {
	o, ok := other.(fileIdentity)
	return ok && f.hash == o.hash
}

func (f fileIdentity) Distance(other treedelta.NodeIdentity) (int, bool) {
	o, ok := other.(fileIdentity)
	if !ok {
		return 0, false
	}
	if f.hash == o.hash {
		return 0, true
	}
	return 1, true
}

// dirIdentity never reports two directories from different trees as
// the same node — a bare directory tree carries no identity besides
// its name — but it favors a same-named candidate when TreeDelta
// searches for a replace ancestor among sibling directories.
type dirIdentity struct {
	name   string
	marker *byte
}

func (d dirIdentity) SameAs(other treedelta.NodeIdentity) bool {
	o, ok := other.(dirIdentity)
	return ok && d.marker == o.marker
}

func (d dirIdentity) Distance(other treedelta.NodeIdentity) (int, bool) {
	o, ok := other.(dirIdentity)
	if !ok {
		return 0, false
	}
	if d.name == o.name {
		return 0, true
	}
	return 1, true
}

// Snapshot is a treedelta.NodeSnapshot backed by one file or directory
// on disk, identified by its canonical dirent path.
type Snapshot struct {
	path     string
	platform pathlib.Platform
	revision int64
	info     os.FileInfo
}

// Open stats path (a canonical dirent) and returns a Snapshot rooted
// there. revision is a caller-assigned label attached to every node in
// this tree — cmd/treediff uses it to distinguish the "before" and
// "after" trees in ancestor_rev output, since a plain directory has no
// intrinsic revision number.
func Open(path string, platform pathlib.Platform, revision int64) (*Snapshot, error) {
	info, err := os.Stat(pathlib.LocalStyle(path, platform))
	if err != nil {
		return nil, err
	}
	return &Snapshot{path: path, platform: platform, revision: revision, info: info}, nil
}

func (s *Snapshot) Kind() treedelta.NodeKind {
	if s.info.IsDir() {
		return treedelta.KindDir
	}
	return treedelta.KindFile
}

func (s *Snapshot) Revision() int64 { return s.revision }

func (s *Snapshot) Identity() treedelta.NodeIdentity {
	if s.info.IsDir() {
		return dirIdentity{name: pathlib.BasenameDirent(s.path, s.platform), marker: new(byte)}
	}
	hash, err := s.contentHash()
	if err != nil {
		return fileIdentity{}
	}
	return fileIdentity{hash: hash}
}

func (s *Snapshot) contentHash() ([sha256.Size]byte, error) {
	var sum [sha256.Size]byte
	rc, err := s.Content(context.Background())
	if err != nil {
		return sum, err
	}
	defer rc.Close()
	h := sha256.New()
	if _, err := io.Copy(h, rc); err != nil {
		return sum, err
	}
	copy(sum[:], h.Sum(nil))
	return sum, nil
}

func (s *Snapshot) Properties(ctx context.Context) (treedelta.PropertyList, error) {
	// A bare filesystem tree carries no svn-style node properties.
	return nil, nil
}

func (s *Snapshot) EntryProperties(ctx context.Context, name string) (treedelta.PropertyList, error) {
	// A bare filesystem tree has no per-entry (dirent-level) properties
	// either; a directory entry is nothing more than a name on disk.
	return nil, nil
}

func (s *Snapshot) Entries(ctx context.Context) ([]treedelta.DirEntry, error) {
	if !s.info.IsDir() {
		return nil, fmt.Errorf("localsnapshot: %s is not a directory", s.path)
	}
	dirEntries, err := os.ReadDir(pathlib.LocalStyle(s.path, s.platform))
	if err != nil {
		return nil, err
	}
	sort.Slice(dirEntries, func(i, j int) bool { return dirEntries[i].Name() < dirEntries[j].Name() })

	entries := make([]treedelta.DirEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		child, err := s.Child(ctx, de.Name())
		if err != nil {
			return nil, err
		}
		entries = append(entries, treedelta.DirEntry{Name: de.Name(), Kind: child.Kind(), Identity: child.Identity()})
	}
	return entries, nil
}

func (s *Snapshot) Child(ctx context.Context, name string) (treedelta.NodeSnapshot, error) {
	childPath := pathlib.JoinDirent(s.path, name, s.platform)
	return Open(childPath, s.platform, s.revision)
}

func (s *Snapshot) Content(ctx context.Context) (io.ReadCloser, error) {
	if s.info.IsDir() {
		return nil, fmt.Errorf("localsnapshot: %s is a directory, has no content", s.path)
	}
	if s.info.Size() == 0 {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	file, err := os.Open(pathlib.LocalStyle(s.path, s.platform))
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &mmapReader{file: file, data: data}, nil
}

func (s *Snapshot) Release() {}

// mmapReader adapts an mmap.MMap to io.ReadCloser, releasing the
// mapping and the backing file descriptor on Close.
type mmapReader struct {
	file *os.File
	data mmap.MMap
	pos  int
}

func (r *mmapReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

func (r *mmapReader) Close() error {
	err := r.data.Unmap()
	if cerr := r.file.Close(); err == nil {
		err = cerr
	}
	return err
}
