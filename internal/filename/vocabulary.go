package filename

import (
	"fmt"
	"strings"
)

// CompositeBrightField is the macro-channel the instrument offers for
// colour bright-field acquisition. It never appears literally in
// filenames when the instrument splits it into its three colour planes,
// so the vocabulary must be expanded before any filename scanning.
const CompositeBrightField = "Colour Bright Field"

// compositeExpansion lists the underlying channels the instrument writes
// in place of the composite.
var compositeExpansion = []string{"Red", "Green", "Blue"}

// DefaultVocabulary lists the channel names the instrument embeds in
// filenames, in acquisition-menu order.
var DefaultVocabulary = []string{
	"Bright Field",
	CompositeBrightField,
	"Phase Contrast",
	"GFP",
	"DAPI",
	"Texas Red",
	"CY5",
	"RFP",
}

// ExpandVocabulary replaces every composite entry with its underlying
// channels, preserving order. The result is what all filename scanning
// and channel counting operates on.
func ExpandVocabulary(vocab []string) []string {
	var out []string
	for _, name := range vocab {
		if name == CompositeBrightField {
			out = append(out, compositeExpansion...)
			continue
		}
		out = append(out, name)
	}
	return out
}

// ValidateVocabulary checks the post-expansion invariant that no entry is
// a substring of another, which channel-name stripping depends on.
func ValidateVocabulary(expanded []string) error {
	seen := make(map[string]struct{}, len(expanded))
	for _, name := range expanded {
		if name == "" {
			return fmt.Errorf("empty channel name in vocabulary")
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate channel name %q", name)
		}
		seen[name] = struct{}{}
	}
	for i, a := range expanded {
		for j, b := range expanded {
			if i == j {
				continue
			}
			if strings.Contains(b, a) {
				return fmt.Errorf("channel name %q is a substring of %q; stripping would be ambiguous", a, b)
			}
		}
	}
	return nil
}
