package pathlib

import "strings"

// splitAndFilter splits a path body on '/' and drops empty and '.'
// segments. It never collapses '..' segments — per the canonicalization
// algorithm, that is deliberately not a canonicalization step.
func splitAndFilter(body string) []string {
	if body == "" {
		return nil
	}
	raw := strings.Split(body, "/")
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s == "" || s == "." {
			continue
		}
		out = append(out, s)
	}
	return out
}

func isDriveLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
