package pathlib

import (
	"fmt"
	"strings"

	"github.com/kestrel-vcs/svncore/svnerr"
)

// UriFromFileDirent converts an absolute dirent to its "file://" URI
// form. A DOS UNC dirent maps to a non-empty host; every other dirent
// maps to an absent (empty) host. Every path component is
// percent-encoded on the way out.
func UriFromFileDirent(dirent string, p Platform) (string, error) {
	canon := CanonicalizeDirent(dirent, p)

	if p == DOS {
		if root, ok := dosRootPrefix(canon); ok {
			afterRoot := strings.TrimPrefix(canon, root)
			if strings.HasPrefix(root, "//") {
				hostShare := strings.TrimPrefix(root, "//")
				idx := strings.IndexByte(hostShare, '/')
				if idx == -1 {
					return "", fmt.Errorf("%w: UNC dirent missing share: %s", svnerr.IllegalUrl, dirent)
				}
				host, share := hostShare[:idx], hostShare[idx+1:]
				pathPart := "/" + share + afterRoot
				return "file://" + host + percentEncodePath(pathPart), nil
			}
			drive := root[:1]
			pathPart := "/" + drive + ":" + afterRoot
			return "file://" + percentEncodePath(pathPart), nil
		}
	}

	if !IsAbsoluteDirent(canon, p) {
		return "", fmt.Errorf("%w: dirent is not absolute: %s", svnerr.IllegalUrl, dirent)
	}
	return "file://" + percentEncodePath(canon), nil
}

// DirentFromFileUri converts a "file://" URI back to a dirent for the
// given platform. A host that is empty or "localhost" is treated as
// absent; any other host becomes a DOS UNC prefix. On DOS, "/X:/..." and
// "/X|/..." denote the X drive.
func DirentFromFileUri(uri string, p Platform) (string, error) {
	if len(uri) < 7 || !strings.EqualFold(uri[:7], "file://") {
		return "", fmt.Errorf("%w: not a file url: %s", svnerr.IllegalUrl, uri)
	}
	rest := uri[7:]
	if q := strings.IndexByte(rest, '?'); q != -1 {
		rest = rest[:q]
	}

	slash := strings.IndexByte(rest, '/')
	var host, pathPart string
	if slash == -1 {
		host, pathPart = rest, ""
	} else {
		host, pathPart = rest[:slash], rest[slash:]
	}
	host = strings.ToLower(host)

	decodedPath, err := fullPercentDecode(pathPart)
	if err != nil {
		return "", err
	}

	if host != "" && host != "localhost" {
		return CanonicalizeDirent("//"+host+decodedPath, p), nil
	}

	if p == DOS && len(decodedPath) >= 3 && decodedPath[0] == '/' &&
		isDriveLetter(decodedPath[1]) && (decodedPath[2] == ':' || decodedPath[2] == '|') {
		drive := strings.ToUpper(string(decodedPath[1]))
		return CanonicalizeDirent(drive+":"+decodedPath[3:], p), nil
	}

	return CanonicalizeDirent(decodedPath, p), nil
}

// UrlpathCanonicalize accepts either a full URL or a server-relative
// filesystem path. A full URL is canonicalized per CanonicalizeUri; a
// server-relative path has its hex-encoding normalized by a
// decode-then-encode round trip and its segments canonicalized as a
// dirent for the given platform.
func UrlpathCanonicalize(input string, p Platform) (string, error) {
	if strings.Contains(input, "://") {
		return CanonicalizeUri(input), nil
	}
	decoded, err := fullPercentDecode(input)
	if err != nil {
		return "", err
	}
	return percentEncodePath(CanonicalizeDirent(decoded, p)), nil
}

func percentEncodePath(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '/' || isUnreservedByte(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHexDigits[c>>4])
		b.WriteByte(upperHexDigits[c&0xF])
	}
	return b.String()
}

func fullPercentDecode(s string) (string, error) {
	if !strings.ContainsRune(s, '%') {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+2 >= len(s) {
			return "", fmt.Errorf("%w: truncated percent-escape in %q", svnerr.IllegalUrl, s)
		}
		hi, hiOk := hexDigitValue(s[i+1])
		lo, loOk := hexDigitValue(s[i+2])
		if !hiOk || !loOk {
			return "", fmt.Errorf("%w: invalid percent-escape in %q", svnerr.IllegalUrl, s)
		}
		b.WriteByte(byte(hi<<4 | lo))
		i += 2
	}
	return b.String(), nil
}
