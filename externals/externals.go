// Package externals parses the svn:externals property format: a
// newline-delimited list of target-directory/URL pairs, each line
// optionally pinning a revision.
package externals

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kestrel-vcs/svncore/svnerr"
)

// RevisionKind distinguishes a pinned revision from "follow head".
type RevisionKind int

const (
	RevisionHead RevisionKind = iota
	RevisionNumber
)

// Item is one parsed line of an svn:externals description.
type Item struct {
	TargetDir    string
	URL          string
	RevisionKind RevisionKind
	Revision     int64
}

// Parse parses an svn:externals property value into the set of items it
// describes, keyed by target directory. A blank line or one whose first
// non-whitespace byte is '#' is skipped. Any other line must take one
// of three shapes:
//
//	TARGET_DIR URL
//	TARGET_DIR -rN URL
//	TARGET_DIR -r N URL
//
// Splitting is whitespace-based (spaces and tabs collapse). A line of
// any other shape is rejected with svnerr.InvalidExternalsDescription,
// carrying the offending line and parentDir for diagnostics.
// Duplicate TARGET_DIR keys within one description are accepted with
// last-line-wins semantics.
func Parse(parentDir, desc string) (map[string]Item, error) {
	items := make(map[string]Item)

	for _, line := range strings.Split(strings.ReplaceAll(desc, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed[0] == '#' {
			continue
		}

		item, err := parseLine(trimmed)
		if err != nil {
			return nil, &svnerr.ExternalsError{ParentPath: parentDir, Line: line}
		}
		items[item.TargetDir] = item
	}
	return items, nil
}

func parseLine(line string) (Item, error) {
	parts := strings.Fields(line)

	switch len(parts) {
	case 2:
		return Item{TargetDir: parts[0], URL: parts[1], RevisionKind: RevisionHead}, nil

	case 3:
		rev, err := parseRevisionArg(parts[1], "")
		if err != nil {
			return Item{}, err
		}
		return Item{TargetDir: parts[0], URL: parts[2], RevisionKind: RevisionNumber, Revision: rev}, nil

	case 4:
		rev, err := parseRevisionArg(parts[1], parts[2])
		if err != nil {
			return Item{}, err
		}
		return Item{TargetDir: parts[0], URL: parts[3], RevisionKind: RevisionNumber, Revision: rev}, nil

	default:
		return Item{}, fmt.Errorf("wrong number of fields: %d", len(parts))
	}
}

// parseRevisionArg handles both "-rN" (second empty) and "-r" "N" forms.
func parseRevisionArg(first, second string) (int64, error) {
	if len(first) < 2 || first[0] != '-' || first[1] != 'r' {
		return 0, fmt.Errorf("revision argument must start with -r: %q", first)
	}

	var numeric string
	if second == "" {
		if len(first) < 3 {
			return 0, fmt.Errorf("missing revision digits after -r: %q", first)
		}
		numeric = first[2:]
	} else {
		if first != "-r" {
			return 0, fmt.Errorf("revision argument %q cannot be followed by %q", first, second)
		}
		if len(second) < 1 {
			return 0, fmt.Errorf("missing revision digits after -r: %q", second)
		}
		numeric = second
	}

	rev, err := strconv.ParseInt(numeric, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid revision number %q: %w", numeric, err)
	}
	return rev, nil
}
