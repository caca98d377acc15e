// Command pathtool exercises the dirent/relpath/uri path algebra from
// the command line: canonicalize a batch of paths, condense them to a
// common base plus suffixes, or convert between a file:// URI and the
// local dirent form.
//
// Usage:
//
//	pathtool -canon dirent path...
//	pathtool -condense path...
//	pathtool -touri path
//	pathtool -fromuri uri
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/kestrel-vcs/svncore/pathlib"
)

// -canon: canonicalize every remaining argument as the given flavor
// (dirent, relpath, or uri) and print one result per line.
var canonFlavor = flag.String("canon", "", "canonicalize arguments as dirent|relpath|uri")

// -condense: find the common base of the remaining arguments and print
// it followed by each argument's suffix relative to that base.
var condense = flag.Bool("condense", false, "condense arguments to a common base and suffixes")

// -touri: convert a single local dirent argument to a file:// URI.
var toURI = flag.Bool("touri", false, "convert a local dirent path to a file:// URI")

// -fromuri: convert a single file:// URI argument to a local dirent.
var fromURI = flag.Bool("fromuri", false, "convert a file:// URI to a local dirent path")

// -dos: treat dirent arguments as DOS paths instead of POSIX.
var dos = flag.Bool("dos", false, "use DOS path conventions instead of POSIX")

// -quiet: suppress the -- prefixed progress lines Info prints.
var quiet = flag.Bool("quiet", false, "suppress progress output")

// -verbose: print -- prefixed diagnostic detail as each path is processed.
var verbose = flag.Bool("verbose", false, "print diagnostic detail")

func platform() pathlib.Platform {
	if *dos {
		return pathlib.DOS
	}
	return pathlib.POSIX
}

// Log prints a message only when -verbose was given.
func Log(format string, args ...any) {
	if *verbose {
		s := fmt.Sprintf("-- "+format, args...)
		s = strings.ReplaceAll(s, "\r", "<cr>")
		s = strings.ReplaceAll(s, "\n", "<lf>")
		fmt.Println(s)
	}
}

// Info prints a message unless -quiet was given.
func Info(format string, args ...any) {
	if !*quiet {
		s := fmt.Sprintf("-- "+format, args...)
		s = strings.ReplaceAll(s, "\r", "<cr>")
		s = strings.ReplaceAll(s, "\n", "<lf>")
		fmt.Println(s)
	}
}

func main() {
	flag.Parse()

	if err := run(flag.Args()); err != nil {
		fmt.Println(fmt.Errorf("error: %w", err))
		os.Exit(1)
	}
}

func run(args []string) error {
	switch {
	case *canonFlavor != "":
		return runCanon(*canonFlavor, args)
	case *condense:
		return runCondense(args)
	case *toURI:
		return runToURI(args)
	case *fromURI:
		return runFromURI(args)
	default:
		flag.Usage()
		return fmt.Errorf("specify one of -canon, -condense, -touri, -fromuri")
	}
}

func runCanon(flavor string, args []string) error {
	Info("canonicalizing %d path(s) as %s", len(args), flavor)
	for _, a := range args {
		var out string
		switch flavor {
		case "dirent":
			out = pathlib.CanonicalizeDirent(a, platform())
		case "relpath":
			out = pathlib.CanonicalizeRelpath(a)
		case "uri":
			out = pathlib.CanonicalizeUri(a)
		default:
			return fmt.Errorf("unknown -canon flavor %q (want dirent, relpath, or uri)", flavor)
		}
		Log("%s -> %s", a, out)
		fmt.Println(out)
	}
	return nil
}

func runCondense(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("-condense requires at least one path")
	}
	base, suffixes, err := pathlib.CondenseTargets(args, true, platform())
	if err != nil {
		return err
	}
	Info("condensed %d path(s) to base %q", len(args), base)
	fmt.Println(base)
	for _, s := range suffixes {
		fmt.Println("  " + s)
	}
	return nil
}

func runToURI(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("-touri requires exactly one path argument")
	}
	uri, err := pathlib.UriFromFileDirent(pathlib.CanonicalizeDirent(args[0], platform()), platform())
	if err != nil {
		return err
	}
	fmt.Println(uri)
	return nil
}

func runFromURI(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("-fromuri requires exactly one URI argument")
	}
	dirent, err := pathlib.DirentFromFileUri(pathlib.CanonicalizeUri(args[0]), platform())
	if err != nil {
		return err
	}
	fmt.Println(dirent)
	return nil
}
