// Package assemble joins the member files of one (well, position) group
// into a single multi-dimensional stack file. The actual image I/O sits
// behind the Assembler interface so the pipeline can be exercised
// without ImageMagick present.
package assemble

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"platestack/internal/filename"
	"platestack/internal/fsutil"
	"platestack/internal/plate"
)

// JointSuffix is appended to the group's first-file name to form the
// assembled output name.
const JointSuffix = "_jointTIF.tif"

// Request describes one assembly job.
type Request struct {
	Group plate.Group
	// Files are the absolute paths of the group's member files, already
	// ordered channel-fastest, then Z, then timepoint.
	Files  []string
	Output string
}

// Result captures output metadata for the run summary.
type Result struct {
	Output string
	Planes int
}

// Assembler loads every file of a request as one ordered stack indexed
// (X, Y, Channel, Z, Time) and persists it as a single file. The call
// is synchronous and all-or-nothing.
type Assembler interface {
	Assemble(ctx context.Context, req Request) (Result, error)
}

// MemberFiles finds the files of a group inside its well directory and
// returns their paths in stack order: channel varies fastest, then Z,
// then timepoint. A group whose (well, position) combination has no
// files yields an empty slice; the caller decides whether that is
// fatal.
func MemberFiles(wellDir string, g plate.Group, vocab []string) ([]string, error) {
	names, err := fsutil.ListTIFFs(wellDir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", wellDir, err)
	}

	type member struct {
		name string
		fn   filename.FileName
	}
	var members []member
	for _, name := range names {
		fn, _, err := filename.Parse(name, vocab)
		if err != nil {
			continue
		}
		if fn.Well != g.Well || fn.Position != g.Position {
			continue
		}
		members = append(members, member{name: name, fn: fn})
	}

	sort.Slice(members, func(i, j int) bool {
		a, b := members[i].fn, members[j].fn
		if a.Timepoint != b.Timepoint {
			return a.Timepoint < b.Timepoint
		}
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return a.Channel < b.Channel
	})

	paths := make([]string, len(members))
	for i, m := range members {
		paths[i] = filepath.Join(wellDir, m.name)
	}
	return paths, nil
}
