package pathlib

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kestrel-vcs/svncore/svnerr"
)

// CanonicalizeDirent returns the canonical form of a local filesystem
// path for the given platform. POSIX canonical form keeps at most one
// leading '/'; DOS canonical form uppercases drive letters, lowercases
// UNC hosts, and always uses '/' internally regardless of whether the
// input used '\\'.
func CanonicalizeDirent(input string, p Platform) string {
	if p == POSIX {
		return canonicalizeDirentPosix(input)
	}
	return canonicalizeDirentDos(input)
}

func canonicalizeDirentPosix(input string) string {
	if input == "" {
		return ""
	}
	abs := strings.HasPrefix(input, "/")
	body := input
	if abs {
		body = input[1:]
	}
	segs := splitAndFilter(body)
	joined := strings.Join(segs, "/")
	if abs {
		if joined == "" {
			return "/"
		}
		return "/" + joined
	}
	return joined
}

func canonicalizeDirentDos(input string) string {
	if input == "" {
		return ""
	}
	norm := strings.ReplaceAll(input, `\`, "/")

	// UNC: //host/share/...
	if strings.HasPrefix(norm, "//") {
		rest := norm[2:]
		host, afterHost, hasSlash := cutByte(rest, '/')
		hostLower := strings.ToLower(host)
		if !hasSlash {
			if host == "" {
				return "//"
			}
			return "//" + hostLower
		}
		share, remainder, _ := cutByte(afterHost, '/')
		segs := splitAndFilter(remainder)
		prefix := "//" + hostLower + "/" + share
		if len(segs) == 0 {
			return prefix
		}
		return prefix + "/" + strings.Join(segs, "/")
	}

	// Drive letter: X:... or X:/...
	if len(norm) >= 2 && isDriveLetter(norm[0]) && norm[1] == ':' {
		drive := strings.ToUpper(string(norm[0]))
		remainder := strings.TrimPrefix(norm[2:], "/")
		segs := splitAndFilter(remainder)
		if len(segs) == 0 {
			return drive + ":"
		}
		return drive + ":/" + strings.Join(segs, "/")
	}

	// No root recognized: every leading slash is just another separator,
	// the segment walk drops it like any other empty segment.
	segs := splitAndFilter(norm)
	return strings.Join(segs, "/")
}

// cutByte is strings.Cut for a single byte separator, returning whether
// the separator was found.
func cutByte(s string, sep byte) (before, after string, found bool) {
	idx := strings.IndexByte(s, sep)
	if idx == -1 {
		return s, "", false
	}
	return s[:idx], s[idx+1:], true
}

// IsCanonicalDirent reports whether input is already canonical.
func IsCanonicalDirent(input string, p Platform) bool {
	return input == CanonicalizeDirent(input, p)
}

// IsAbsoluteDirent reports whether a canonical dirent is absolute.
// POSIX: begins with '/'. DOS: begins with "//" (UNC) or "X:/".
func IsAbsoluteDirent(path string, p Platform) bool {
	if p == POSIX {
		return strings.HasPrefix(path, "/")
	}
	if strings.HasPrefix(path, "//") {
		return true
	}
	return len(path) >= 3 && isDriveLetter(path[0]) && path[1] == ':' && path[2] == '/'
}

// IsRootDirent reports whether path is itself a root: "/" on POSIX;
// "X:", "X:/" or a bare "//host/share" (no trailing slash) on DOS.
func IsRootDirent(path string, p Platform) bool {
	if path == "" {
		return false
	}
	if p == POSIX {
		return path == "/"
	}
	if len(path) == 2 && isDriveLetter(path[0]) && path[1] == ':' {
		return true
	}
	if len(path) == 3 && isDriveLetter(path[0]) && path[1] == ':' && path[2] == '/' {
		return true
	}
	if strings.HasPrefix(path, "//") {
		rest := path[2:]
		slash := strings.IndexByte(rest, '/')
		if slash == -1 {
			return false
		}
		share := rest[slash+1:]
		return share != "" && !strings.Contains(share, "/")
	}
	return false
}

// dosRootPrefix extracts the root marker ("X:" or "//host/share") from an
// already-canonical DOS dirent, if it has one.
func dosRootPrefix(path string) (root string, ok bool) {
	if strings.HasPrefix(path, "//") {
		rest := path[2:]
		idx := strings.IndexByte(rest, '/')
		if idx == -1 {
			return "//" + rest, true
		}
		afterHost := rest[idx+1:]
		idx2 := strings.IndexByte(afterHost, '/')
		if idx2 == -1 {
			return "//" + rest[:idx] + "/" + afterHost, true
		}
		return "//" + rest[:idx] + "/" + afterHost[:idx2], true
	}
	if len(path) >= 2 && isDriveLetter(path[0]) && path[1] == ':' {
		return path[:2], true
	}
	return "", false
}

// direntParts splits a canonical dirent into its root marker (if any) and
// the segments below it.
func direntParts(path string, p Platform) (root string, segs []string) {
	if p == POSIX {
		if strings.HasPrefix(path, "/") {
			rest := path[1:]
			if rest != "" {
				segs = strings.Split(rest, "/")
			}
			return "/", segs
		}
		if path != "" {
			segs = strings.Split(path, "/")
		}
		return "", segs
	}

	if root, ok := dosRootPrefix(path); ok {
		rest := strings.TrimPrefix(path[len(root):], "/")
		if rest != "" {
			segs = strings.Split(rest, "/")
		}
		return root, segs
	}
	if path != "" {
		segs = strings.Split(path, "/")
	}
	return "", segs
}

func direntFromParts(root string, segs []string, p Platform) string {
	if len(segs) == 0 {
		return root
	}
	body := strings.Join(segs, "/")
	switch {
	case root == "":
		return body
	case root == "/":
		return "/" + body
	default:
		return root + "/" + body
	}
}

// JoinDirent joins base and component per the platform's join rules.
func JoinDirent(base, component string, p Platform) string {
	if IsAbsoluteDirent(component, p) {
		return component
	}
	if base == "" {
		return component
	}
	if component == "" {
		return base
	}

	if p == DOS && strings.HasPrefix(component, "/") {
		root, hasRoot := dosRootPrefix(base)
		if !hasRoot {
			return component
		}
		rest := component[1:]
		if rest == "" {
			return root
		}
		return root + "/" + rest
	}

	sep := "/"
	if strings.HasSuffix(base, "/") || (p == DOS && strings.HasSuffix(base, ":")) {
		sep = ""
	}
	return base + sep + component
}

// JoinManyDirent is equivalent to repeated JoinDirent, except that an
// absolute component discards everything joined so far, including base.
func JoinManyDirent(p Platform, base string, components ...string) string {
	result := base
	for _, c := range components {
		if IsAbsoluteDirent(c, p) {
			result = c
			continue
		}
		result = JoinDirent(result, c, p)
	}
	return result
}

// SplitDirent splits a canonical dirent into dirname and basename. A root
// cannot be split further: its dirname is itself and its basename is "".
func SplitDirent(path string, p Platform) (dirname, basename string) {
	if IsRootDirent(path, p) {
		return path, ""
	}
	idx := strings.LastIndexByte(path, '/')
	if idx == -1 {
		return "", path
	}
	dirname, basename = path[:idx], path[idx+1:]
	if dirname == "" {
		dirname = "/"
	}
	return dirname, basename
}

// DirnameDirent returns the dirname portion of SplitDirent.
func DirnameDirent(path string, p Platform) string {
	dirname, _ := SplitDirent(path, p)
	return dirname
}

// BasenameDirent returns the basename portion of SplitDirent.
func BasenameDirent(path string, p Platform) string {
	_, basename := SplitDirent(path, p)
	return basename
}

// IsChildDirent returns the portion of child strictly below parent, or
// ("", false) if child is not strictly below parent (including when they
// are under different roots/drives).
func IsChildDirent(parent, child string, p Platform) (suffix string, ok bool) {
	if parent == child {
		return "", false
	}
	rootP, segsP := direntParts(parent, p)
	rootC, segsC := direntParts(child, p)
	if rootP != rootC {
		return "", false
	}
	if len(segsC) <= len(segsP) {
		return "", false
	}
	for i := range segsP {
		if segsP[i] != segsC[i] {
			return "", false
		}
	}
	return strings.Join(segsC[len(segsP):], "/"), true
}

// IsAncestorDirent reports whether parent == child or child is strictly
// below parent. The empty dirent is an ancestor of every non-absolute
// dirent, and never of an absolute one.
func IsAncestorDirent(parent, child string, p Platform) bool {
	if parent == child {
		return true
	}
	_, ok := IsChildDirent(parent, child, p)
	return ok
}

// SkipAncestorDirent strips the parent prefix (and separator) from child
// if parent is an ancestor of child, otherwise returns child unchanged.
func SkipAncestorDirent(parent, child string, p Platform) string {
	if parent == child {
		return ""
	}
	if suffix, ok := IsChildDirent(parent, child, p); ok {
		return suffix
	}
	return child
}

// LongestAncestorDirent returns the longest canonical prefix that is an
// ancestor of both a and b, or "" if they share no root.
func LongestAncestorDirent(a, b string, p Platform) string {
	rootA, segsA := direntParts(a, p)
	rootB, segsB := direntParts(b, p)
	if rootA != rootB {
		return ""
	}
	n := 0
	for n < len(segsA) && n < len(segsB) && segsA[n] == segsB[n] {
		n++
	}
	return direntFromParts(rootA, segsA[:n], p)
}

// LocalStyle maps the internal '/'-separated representation to the
// platform's presentation form: DOS uses '\\', and the empty path maps
// to ".". This is presentation-only; it is never fed back into the
// algebra.
func LocalStyle(path string, p Platform) string {
	if path == "" {
		return "."
	}
	if p == POSIX {
		return path
	}
	return strings.ReplaceAll(path, "/", `\`)
}

// AbsolutizeDirent resolves a dirent against the process's current
// working directory if it is not already absolute. It fails with
// svnerr.BadFilename if the platform cannot resolve the current
// directory.
func AbsolutizeDirent(input string, p Platform) (string, error) {
	canon := CanonicalizeDirent(input, p)
	if IsAbsoluteDirent(canon, p) {
		return canon, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("%w: %s", svnerr.BadFilename, err)
	}
	cwdCanon := CanonicalizeDirent(filepath.ToSlash(cwd), p)
	return JoinDirent(cwdCanon, canon, p), nil
}

// IsUnderRoot resolves candidate relative to base and reports whether
// the result stays within base after following symlinks. It uses
// filepath.EvalSymlinks as the platform's secure-merge primitive; when
// EvalSymlinks fails (e.g. the path does not exist on disk), the lexical
// join is used instead, with each '..' segment cancelling the segment
// before it.
func IsUnderRoot(base, candidate string, p Platform) (ok bool, resolved string, err error) {
	joined := CanonicalizeDirent(JoinDirent(base, candidate, p), p)
	resolved = joined
	if real, err2 := filepath.EvalSymlinks(filepath.FromSlash(joined)); err2 == nil {
		resolved = CanonicalizeDirent(filepath.ToSlash(real), p)
	} else {
		root, segs := direntParts(joined, p)
		kept := make([]string, 0, len(segs))
		for _, s := range segs {
			if s == ".." && len(kept) > 0 && kept[len(kept)-1] != ".." {
				kept = kept[:len(kept)-1]
				continue
			}
			kept = append(kept, s)
		}
		resolved = direntFromParts(root, kept, p)
	}
	return resolved == base || IsAncestorDirent(base, resolved, p), resolved, nil
}

// CondenseTargets implements condense_targets for dirents: absolutize
// every input, fold LongestAncestorDirent across them to find the common
// base, and optionally drop inputs that are redundant with another
// retained input or equal to the base.
func CondenseTargets(paths []string, removeRedundancies bool, p Platform) (base string, suffixes []string, err error) {
	if len(paths) == 0 {
		return "", nil, nil
	}

	abs := make([]string, len(paths))
	for i, raw := range paths {
		a, err := AbsolutizeDirent(raw, p)
		if err != nil {
			return "", nil, err
		}
		abs[i] = a
	}

	base = abs[0]
	for _, a := range abs[1:] {
		base = LongestAncestorDirent(base, a, p)
	}

	kept := abs
	if removeRedundancies {
		kept = make([]string, 0, len(abs))
		for i, a := range abs {
			if a == base {
				continue
			}
			redundant := false
			for j, other := range abs {
				if i == j || other == a {
					continue
				}
				if IsAncestorDirent(other, a, p) {
					redundant = true
					break
				}
			}
			if !redundant {
				kept = append(kept, a)
			}
		}
	}

	suffixes = make([]string, len(kept))
	for i, a := range kept {
		suffixes[i] = SkipAncestorDirent(base, a, p)
	}
	return base, suffixes, nil
}
