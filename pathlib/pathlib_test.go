package pathlib

import (
	"testing"
)

func TestCanonicalizeUriScenario(t *testing.T) {
	got := CanonicalizeUri("http://HOST//a/./b/")
	want := "http://host/a/b"
	if got != want {
		t.Fatalf("CanonicalizeUri() = %q, want %q", got, want)
	}
}

func TestCanonicalizeDosNoDotDotElimination(t *testing.T) {
	got := CanonicalizeDirent(`C:\Foo\..\Bar`, DOS)
	want := "C:/Foo/../Bar"
	if got != want {
		t.Fatalf("CanonicalizeDirent() = %q, want %q", got, want)
	}
}

func TestJoinManyDirentResetsOnRootedComponent(t *testing.T) {
	got := JoinManyDirent(POSIX, "/a", "b", "/c", "d")
	want := "/c/d"
	if got != want {
		t.Fatalf("JoinManyDirent() = %q, want %q", got, want)
	}
}

func TestDirentFromFileUriDosPipeDrive(t *testing.T) {
	got, err := DirentFromFileUri("file:///C|/x%20y", DOS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "C:/x y"
	if got != want {
		t.Fatalf("DirentFromFileUri() = %q, want %q", got, want)
	}
}

func TestLongestAncestorDirent(t *testing.T) {
	got := LongestAncestorDirent("/a/b/c", "/a/b/d", POSIX)
	want := "/a/b"
	if got != want {
		t.Fatalf("LongestAncestorDirent() = %q, want %q", got, want)
	}
}

func TestCondenseTargetsDropsDescendants(t *testing.T) {
	base, suffixes, err := CondenseTargets([]string{"/x/a", "/x/a/b", "/x/c"}, true, POSIX)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if base != "/x" {
		t.Fatalf("base = %q, want /x", base)
	}
	if len(suffixes) != 2 || suffixes[0] != "a" || suffixes[1] != "c" {
		t.Fatalf("suffixes = %v, want [a c]", suffixes)
	}
}

func TestCanonicalizeIdempotentRelpath(t *testing.T) {
	inputs := []string{"", "a", "a/b", "a//b", "./a/b", "a/./b/", "a/../b"}
	for _, in := range inputs {
		once := CanonicalizeRelpath(in)
		twice := CanonicalizeRelpath(once)
		if once != twice {
			t.Errorf("CanonicalizeRelpath(%q) not idempotent: %q != %q", in, once, twice)
		}
	}
}

func TestCanonicalizeIdempotentDirent(t *testing.T) {
	inputs := []string{"/a/b", "a/b", "//HOST/Share/a/./b/", "C:/Foo/../Bar", "c:foo/bar", "/"}
	for _, in := range inputs {
		for _, p := range []Platform{POSIX, DOS} {
			once := CanonicalizeDirent(in, p)
			twice := CanonicalizeDirent(once, p)
			if once != twice {
				t.Errorf("CanonicalizeDirent(%q, %v) not idempotent: %q != %q", in, p, once, twice)
			}
		}
	}
}

func TestCanonicalizeIdempotentUri(t *testing.T) {
	inputs := []string{
		"http://HOST//a/./b/",
		"svn://example.com/repo",
		"svn://example.com",
		"svn://example.com/",
		"http://user@HOST:8080/a%2fb?x=%7e",
	}
	for _, in := range inputs {
		once := CanonicalizeUri(in)
		twice := CanonicalizeUri(once)
		if once != twice {
			t.Errorf("CanonicalizeUri(%q) not idempotent: %q != %q", in, once, twice)
		}
	}
}

func TestJoinSplitRoundTripRelpath(t *testing.T) {
	paths := []string{"a", "a/b", "a/b/c"}
	for _, p := range paths {
		dirname, basename := SplitRelpath(p)
		if got := JoinRelpath(dirname, basename); got != p {
			t.Errorf("join(split(%q)) = %q, want %q", p, got, p)
		}
	}
}

func TestJoinSplitRoundTripDirent(t *testing.T) {
	cases := []struct {
		path string
		p    Platform
	}{
		{"/a/b", POSIX},
		{"/a/b/c", POSIX},
		{"C:/a/b", DOS},
		{"//host/share/a/b", DOS},
	}
	for _, c := range cases {
		dirname, basename := SplitDirent(c.path, c.p)
		if got := JoinDirent(dirname, basename, c.p); got != c.path {
			t.Errorf("join(split(%q)) = %q, want %q", c.path, got, c.path)
		}
	}
}

func TestAncestorReflexivityAndTransitivityRelpath(t *testing.T) {
	a, b, c := "a", "a/b", "a/b/c"
	if !IsAncestorRelpath(a, a) {
		t.Error("IsAncestorRelpath(a, a) should be true")
	}
	if IsAncestorRelpath(a, b) && IsAncestorRelpath(b, c) && !IsAncestorRelpath(a, c) {
		t.Error("ancestor transitivity violated")
	}
}

func TestIsChildSkipAncestorAgreeRelpath(t *testing.T) {
	parent, child := "a/b", "a/b/c/d"
	suffix, ok := IsChildRelpath(parent, child)
	if !ok {
		t.Fatalf("expected %q to be a child of %q", child, parent)
	}
	if got := SkipAncestorRelpath(parent, child); got != suffix {
		t.Errorf("SkipAncestorRelpath() = %q, want %q", got, suffix)
	}
	if got := JoinRelpath(parent, suffix); got != child {
		t.Errorf("JoinRelpath(parent, suffix) = %q, want %q", got, child)
	}
}

func TestIsChildIdentityYieldsNone(t *testing.T) {
	if _, ok := IsChildRelpath("a/b", "a/b"); ok {
		t.Error("IsChildRelpath on identical paths should yield no suffix")
	}
	if _, ok := IsChildDirent("/a/b", "/a/b", POSIX); ok {
		t.Error("IsChildDirent on identical paths should yield no suffix")
	}
}

func TestEmptyRelpathAncestorOfEverything(t *testing.T) {
	if !IsAncestorRelpath("", "a/b/c") {
		t.Error("empty relpath should be an ancestor of every relpath")
	}
}

func TestEmptyDirentNeverAncestorOfAbsolute(t *testing.T) {
	if IsAncestorDirent("", "/a/b", POSIX) {
		t.Error("empty dirent should never be an ancestor of an absolute dirent")
	}
}

func TestIsAbsoluteDirentDos(t *testing.T) {
	cases := map[string]bool{
		"C:/foo":       true,
		"C:":           false,
		"//host/share": true,
		"relative/x":   false,
	}
	for in, want := range cases {
		if got := IsAbsoluteDirent(in, DOS); got != want {
			t.Errorf("IsAbsoluteDirent(%q, DOS) = %v, want %v", in, got, want)
		}
	}
}

func TestIsRootDirent(t *testing.T) {
	if !IsRootDirent("/", POSIX) {
		t.Error(`"/" should be root under POSIX`)
	}
	if !IsRootDirent("C:", DOS) || !IsRootDirent("C:/", DOS) {
		t.Error(`"C:" and "C:/" should both be root under DOS`)
	}
	if !IsRootDirent("//host/share", DOS) {
		t.Error(`"//host/share" should be root under DOS`)
	}
	if IsRootDirent("//host/share/a", DOS) {
		t.Error(`"//host/share/a" should not be root`)
	}
}

func TestUriFromFileDirentRoundTrip(t *testing.T) {
	uri, err := UriFromFileDirent("/a/b c", POSIX)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uri != "file:///a/b%20c" {
		t.Fatalf("UriFromFileDirent() = %q", uri)
	}
	back, err := DirentFromFileUri(uri, POSIX)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back != "/a/b c" {
		t.Fatalf("round trip = %q, want /a/b c", back)
	}
}

func TestDirentFromFileUriUncHost(t *testing.T) {
	got, err := DirentFromFileUri("file://myserver/share/dir", DOS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "//myserver/share/dir" {
		t.Fatalf("DirentFromFileUri() = %q", got)
	}
}

func TestNormalizePercentEscapesInvalidBecomesLiteral(t *testing.T) {
	got := normalizePercentEscapes("a%zzb")
	want := "a%25zzb"
	if got != want {
		t.Fatalf("normalizePercentEscapes(%q) = %q, want %q", "a%zzb", got, want)
	}
}

func TestNormalizePercentEscapesDecodesUnreserved(t *testing.T) {
	got := normalizePercentEscapes("%7euser")
	want := "~user"
	if got != want {
		t.Fatalf("normalizePercentEscapes() = %q, want %q", got, want)
	}
}

func TestNormalizePercentEscapesUppercasesReserved(t *testing.T) {
	got := normalizePercentEscapes("a%2fb")
	want := "a%2Fb"
	if got != want {
		t.Fatalf("normalizePercentEscapes() = %q, want %q", got, want)
	}
}
