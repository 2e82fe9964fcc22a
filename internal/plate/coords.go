package plate

import (
	"fmt"

	"platestack/internal/filename"
)

// CoordinateSpace is the enumeration derived from one pass over all
// normalized filenames. Wells keep first-seen order; the maxima carry
// the documented defaults when a tag never appears (position 1, Z 0,
// timepoint 1).
type CoordinateSpace struct {
	Wells        []string
	ReadSteps    map[string]string // well -> first observed read-step
	MaxPosition  int
	MaxZ         int
	MaxTimepoint int

	// Warnings collects filenames that failed to parse or carried
	// unrecognized tokens; they contribute nothing to the enumeration.
	Warnings []string
}

// Group is the unit of assembly: one (well, position) pair with its
// canonical first file and the import pattern handed to the assembler.
type Group struct {
	Well      string
	ReadStep  string
	Position  int
	FirstFile string
	Pattern   string
}

// BuildCoordinateSpace scans names in order, collecting the ordered set
// of wells and the running maxima of position, Z and timepoint. Wells
// are tracked with true set semantics, so interleaved well order in the
// listing cannot drop or duplicate a well.
func BuildCoordinateSpace(names []string, vocab []string) CoordinateSpace {
	space := CoordinateSpace{
		ReadSteps:    make(map[string]string),
		MaxPosition:  1,
		MaxZ:         0,
		MaxTimepoint: 1,
	}
	seen := make(map[string]struct{})

	for _, name := range names {
		fn, warns, err := filename.Parse(name, vocab)
		if err != nil {
			space.Warnings = append(space.Warnings, err.Error())
			continue
		}
		space.Warnings = append(space.Warnings, warns...)

		if _, ok := seen[fn.Well]; !ok {
			seen[fn.Well] = struct{}{}
			space.Wells = append(space.Wells, fn.Well)
			space.ReadSteps[fn.Well] = fn.ReadStep
		}
		if fn.Position > space.MaxPosition {
			space.MaxPosition = fn.Position
		}
		if fn.Z > space.MaxZ {
			space.MaxZ = fn.Z
		}
		if fn.Timepoint > space.MaxTimepoint {
			space.MaxTimepoint = fn.Timepoint
		}
	}
	return space
}

// EnumerateGroups emits one Group per (well, position) pair in the
// cross-product of the observed wells and 1..MaxPosition, in nested
// (well, position) order, deduplicated by canonical first-file name.
// channels is the expanded channel count used for the import pattern.
func EnumerateGroups(space CoordinateSpace, channels int) []Group {
	emitted := make(map[string]struct{})
	var groups []Group
	for _, well := range space.Wells {
		rs := space.ReadSteps[well]
		for pos := 1; pos <= space.MaxPosition; pos++ {
			first := filename.CanonicalFirst(well, rs, pos)
			if _, dup := emitted[first]; dup {
				continue
			}
			emitted[first] = struct{}{}
			groups = append(groups, Group{
				Well:      well,
				ReadStep:  rs,
				Position:  pos,
				FirstFile: first,
				Pattern:   filename.ImportPattern(well, rs, pos, space.MaxZ, channels, space.MaxTimepoint),
			})
		}
	}
	return groups
}

// BoundsWarnings reports observed wells that fall outside the configured
// plate layout. Grouping still proceeds; the warning flags a likely
// plate-size misconfiguration.
func BoundsWarnings(l Layout, wells []string) []string {
	var warns []string
	for _, w := range wells {
		if !l.Contains(w) {
			warns = append(warns, fmt.Sprintf("well %s is outside the configured %d-well plate", w, l.Wells))
		}
	}
	return warns
}
