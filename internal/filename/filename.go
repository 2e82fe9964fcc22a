// Package filename implements the instrument's filename grammar: parsing
// tagged image names into structured coordinates and deriving the
// canonical first-file names and import patterns that drive stack
// assembly.
package filename

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Separator delimits fields in a normalized filename.
const Separator = "_"

var (
	wellRe     = regexp.MustCompile(`^[A-Z]+[0-9]+$`)
	readStepRe = regexp.MustCompile(`^([0-9]{2})(SP[0-9]+)?(Z[0-9]+)?$`)
	positionRe = regexp.MustCompile(`^SP([0-9]+)$`)
	zRe        = regexp.MustCompile(`^Z([0-9]+)$`)
	channelRe  = regexp.MustCompile(`^C([0-9]+)$`)
	timeRe     = regexp.MustCompile(`^T([0-9]+)$`)
)

// FileName is the structured form of one tagged image filename.
// Optional fields carry their documented defaults: position 1, Z 0,
// channel 1, timepoint 1.
type FileName struct {
	Well      string
	ReadStep  string
	Position  int
	Z         int
	Channel   int
	Timepoint int

	// HasPosition reports whether an SP tag was present rather than
	// defaulted.
	HasPosition bool
	// HasZ reports whether a Z tag was present rather than defaulted.
	HasZ bool
	// ChannelName is the vocabulary name embedded in the filename, empty
	// once names have been stripped by normalization.
	ChannelName string
}

// Parse splits an image filename (with or without extension) into its
// fields. Tokens that match no known tag and no vocabulary entry are
// returned as warnings rather than silently skipped.
func Parse(name string, vocab []string) (FileName, []string, error) {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	tokens := strings.Split(base, Separator)
	if len(tokens) < 2 {
		return FileName{}, nil, fmt.Errorf("filename %q: expected at least well and read-step tokens", name)
	}

	fn := FileName{Position: 1, Z: 0, Channel: 1, Timepoint: 1}

	if !wellRe.MatchString(tokens[0]) {
		return FileName{}, nil, fmt.Errorf("filename %q: %q is not a well label", name, tokens[0])
	}
	fn.Well = tokens[0]

	m := readStepRe.FindStringSubmatch(tokens[1])
	if m == nil {
		return FileName{}, nil, fmt.Errorf("filename %q: %q is not a read-step token", name, tokens[1])
	}
	fn.ReadStep = m[1]

	// Position and Z tags concatenated onto the read-step are treated as
	// if they were separate tokens.
	rest := make([]string, 0, len(tokens))
	if m[2] != "" {
		rest = append(rest, m[2])
	}
	if m[3] != "" {
		rest = append(rest, m[3])
	}
	rest = append(rest, tokens[2:]...)

	var warnings []string
	for _, tok := range rest {
		switch {
		case positionRe.MatchString(tok):
			fn.Position = mustInt(positionRe.FindStringSubmatch(tok)[1])
			fn.HasPosition = true
		case zRe.MatchString(tok):
			fn.Z = mustInt(zRe.FindStringSubmatch(tok)[1])
			fn.HasZ = true
		case channelRe.MatchString(tok):
			fn.Channel = mustInt(channelRe.FindStringSubmatch(tok)[1])
		case timeRe.MatchString(tok):
			fn.Timepoint = mustInt(timeRe.FindStringSubmatch(tok)[1])
		case isVocabularyName(tok, vocab):
			fn.ChannelName = tok
		default:
			warnings = append(warnings, fmt.Sprintf("filename %q: unrecognized token %q", name, tok))
		}
	}

	return fn, warnings, nil
}

func isVocabularyName(tok string, vocab []string) bool {
	for _, name := range vocab {
		if tok == name {
			return true
		}
	}
	return false
}

func mustInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		panic(fmt.Sprintf("digits %q did not parse: %v", s, err))
	}
	return n
}

// CanonicalFirst returns the canonical first-file name for a (well,
// position) group: Z 0, channel 1, timepoint 1.
func CanonicalFirst(well, readStep string, position int) string {
	return fmt.Sprintf("%s_%s_SP%d_Z0_C1_T001.tif", well, readStep, position)
}

// ImportPattern returns the multi-file import pattern for a group, with
// Z, channel and timepoint expressed as inclusive ranges.
func ImportPattern(well, readStep string, position, maxZ, channels, maxTimepoint int) string {
	return fmt.Sprintf("%s_%s_SP%d_Z<0-%d>_C<1-%d>_T<001-%03d>.tif",
		well, readStep, position, maxZ, channels, maxTimepoint)
}

// Normalized renders the fully delimited canonical form of a parsed
// filename. Channel names are never part of the normalized form; the
// channel index token carries the channel dimension.
func (f FileName) Normalized() string {
	return fmt.Sprintf("%s_%s_SP%d_Z%d_C%d_T%03d.tif",
		f.Well, f.ReadStep, f.Position, f.Z, f.Channel, f.Timepoint)
}
