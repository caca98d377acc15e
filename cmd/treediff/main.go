// Command treediff walks two local directory trees through the core
// tree-delta engine and writes a YAML report of what changed to a file,
// applies the edit stream onto a third directory, or both.
//
// Usage:
//
//	treediff -old path -new path [-report out.yml] [-apply dest]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/kestrel-vcs/svncore/localsnapshot"
	"github.com/kestrel-vcs/svncore/memedit"
	"github.com/kestrel-vcs/svncore/pathlib"
	"github.com/kestrel-vcs/svncore/treedelta"
	"github.com/kestrel-vcs/svncore/wcedit"
)

// -old: required, the "before" directory tree.
var oldDir = flag.String("old", "", "path to the before tree")

// -new: required, the "after" directory tree.
var newDir = flag.String("new", "", "path to the after tree")

// -report: optional, write a YAML summary of the delta to this path.
var reportFile = flag.String("report", "", "write a YAML delta report to this path")

// -apply: optional, replay the delta onto this directory, creating it if needed.
var applyDir = flag.String("apply", "", "apply the delta onto this directory")

// -dos: treat the tree arguments as DOS paths instead of POSIX.
var dos = flag.Bool("dos", false, "use DOS path conventions instead of POSIX")

// -quiet: suppress the -- prefixed progress lines.
var quiet = flag.Bool("quiet", false, "suppress progress output")

// -verbose: print -- prefixed diagnostic detail.
var verbose = flag.Bool("verbose", false, "print diagnostic detail")

func platform() pathlib.Platform {
	if *dos {
		return pathlib.DOS
	}
	return pathlib.POSIX
}

func Log(format string, args ...any) {
	if *verbose {
		s := fmt.Sprintf("-- "+format, args...)
		s = strings.ReplaceAll(s, "\r", "<cr>")
		s = strings.ReplaceAll(s, "\n", "<lf>")
		fmt.Println(s)
	}
}

func Info(format string, args ...any) {
	if !*quiet {
		s := fmt.Sprintf("-- "+format, args...)
		s = strings.ReplaceAll(s, "\r", "<cr>")
		s = strings.ReplaceAll(s, "\n", "<lf>")
		fmt.Println(s)
	}
}

func parseCommandLine() error {
	flag.Parse()
	return checkArguments()
}

// checkArguments validates the already-parsed flags. Split out from
// parseCommandLine so tests can exercise the validation without
// re-invoking flag.Parse() against the test binary's own arguments.
func checkArguments() error {
	if len(flag.Args()) > 0 {
		flag.Usage()
		return fmt.Errorf("unexpected arguments: %v", flag.Args())
	}
	if *oldDir == "" || *newDir == "" {
		flag.Usage()
		return fmt.Errorf("both -old and -new are required")
	}
	if *reportFile == "" && *applyDir == "" {
		return fmt.Errorf("specify -report, -apply, or both")
	}
	return nil
}

func main() {
	if err := parseCommandLine(); err != nil {
		fmt.Println(fmt.Errorf("error: %w", err))
		os.Exit(1)
	}
	if err := run(); err != nil {
		fmt.Println(fmt.Errorf("error: %w", err))
		os.Exit(1)
	}
}

func run() error {
	p := platform()
	oldPath := pathlib.CanonicalizeDirent(*oldDir, p)
	newPath := pathlib.CanonicalizeDirent(*newDir, p)

	Info("opening before tree: %s", oldPath)
	source, err := localsnapshot.Open(oldPath, p, 1)
	if err != nil {
		return fmt.Errorf("opening -old tree: %w", err)
	}

	Info("opening after tree: %s", newPath)
	target, err := localsnapshot.Open(newPath, p, 2)
	if err != nil {
		return fmt.Errorf("opening -new tree: %w", err)
	}

	builder := memedit.NewBuilder()
	Log("running tree delta")
	if err := treedelta.Delta(context.Background(), source, target, builder, treedelta.Options{}); err != nil {
		return fmt.Errorf("computing delta: %w", err)
	}

	if *reportFile != "" {
		Info("writing report: %s", *reportFile)
		if err := writeReport(*reportFile, builder.Root); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}

	if *applyDir != "" {
		applyPath := pathlib.CanonicalizeDirent(*applyDir, p)
		Info("applying delta onto: %s", applyPath)
		applier := wcedit.NewApplier(applyPath, p)
		if err := treedelta.Delta(context.Background(), source, target, applier, treedelta.Options{}); err != nil {
			return fmt.Errorf("applying delta: %w", err)
		}
	}

	Info("finished")
	return nil
}
