package pathlib

import "strings"

// CanonicalizeRelpath returns the canonical form of a repository-relative
// path: no leading or trailing slash, no empty or '.' segments. '..'
// segments are preserved verbatim — relpath canonicalization never walks
// the tree, so it cannot know whether a '..' is meaningful.
func CanonicalizeRelpath(input string) string {
	if input == "" {
		return ""
	}
	segs := splitAndFilter(input)
	return strings.Join(segs, "/")
}

// IsCanonicalRelpath reports whether input is already in canonical form.
func IsCanonicalRelpath(input string) bool {
	return input == CanonicalizeRelpath(input)
}

// JoinRelpath joins base and component. An empty operand returns the
// other operand unchanged; inputs are assumed canonical.
func JoinRelpath(base, component string) string {
	if base == "" {
		return component
	}
	if component == "" {
		return base
	}
	return base + "/" + component
}

// JoinManyRelpath folds JoinRelpath across the given components in order.
func JoinManyRelpath(base string, components ...string) string {
	result := base
	for _, c := range components {
		result = JoinRelpath(result, c)
	}
	return result
}

// SplitRelpath splits a canonical relpath into dirname and basename.
func SplitRelpath(path string) (dirname, basename string) {
	idx := strings.LastIndexByte(path, '/')
	if idx == -1 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}

// DirnameRelpath returns the dirname portion of SplitRelpath.
func DirnameRelpath(path string) string {
	dirname, _ := SplitRelpath(path)
	return dirname
}

// BasenameRelpath returns the basename portion of SplitRelpath.
func BasenameRelpath(path string) string {
	_, basename := SplitRelpath(path)
	return basename
}

func relpathSegments(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// IsChildRelpath returns the portion of child strictly below parent, or
// ("", false) if child is not strictly below parent. Identity (parent ==
// child) yields false, per the self-admitted comment/code mismatch in the
// source this behavior is ported from: the code, not its comment, is
// authoritative.
func IsChildRelpath(parent, child string) (suffix string, ok bool) {
	if parent == child {
		return "", false
	}
	if parent == "" {
		if child == "" {
			return "", false
		}
		return child, true
	}
	if !strings.HasPrefix(child, parent) {
		return "", false
	}
	if len(child) <= len(parent) || child[len(parent)] != '/' {
		return "", false
	}
	return child[len(parent)+1:], true
}

// IsAncestorRelpath reports whether parent == child or child is strictly
// below parent. The empty relpath is an ancestor of every relpath.
func IsAncestorRelpath(parent, child string) bool {
	if parent == child {
		return true
	}
	_, ok := IsChildRelpath(parent, child)
	return ok
}

// SkipAncestorRelpath strips the parent prefix (and separator) from
// child if parent is an ancestor of child; otherwise returns child
// unchanged.
func SkipAncestorRelpath(parent, child string) string {
	if parent == child {
		return ""
	}
	if suffix, ok := IsChildRelpath(parent, child); ok {
		return suffix
	}
	return child
}

// LongestAncestorRelpath returns the longest canonical prefix that is an
// ancestor of both a and b, or "" if none.
func LongestAncestorRelpath(a, b string) string {
	as, bs := relpathSegments(a), relpathSegments(b)
	n := 0
	for n < len(as) && n < len(bs) && as[n] == bs[n] {
		n++
	}
	return strings.Join(as[:n], "/")
}
