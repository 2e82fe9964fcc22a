// Package normalize rewrites instrument filenames on disk into the
// fully delimited canonical form the rest of the pipeline assumes:
// position and Z separately delimited, a Z token always present when
// positions are in use, and channel names stripped.
package normalize

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"platestack/internal/filename"
)

var (
	readStepRunRe = regexp.MustCompile(`^([0-9]{2})(SP[0-9]+)?(Z[0-9]+)?$`)
	positionTokRe = regexp.MustCompile(`^SP[0-9]+$`)
	zTokRe        = regexp.MustCompile(`^Z[0-9]+$`)
	channelTokRe  = regexp.MustCompile(`^C[0-9]+$`)
	timeTokRe     = regexp.MustCompile(`^T[0-9]+$`)
)

// Report summarizes one normalization pass.
type Report struct {
	Renamed  int
	Skipped  int
	Warnings []string
}

// Apply normalizes every name in place under dir and returns the report
// plus the resulting names, in the input order. Renames are destructive
// and not transactional; the first failed rename aborts the pass with
// the directory partially renamed, which the caller must surface.
//
// Apply is idempotent: running it again over its own output renames
// nothing.
func Apply(dir string, names []string, vocab []string) (Report, []string, error) {
	var rep Report

	tokenized := make([][]string, len(names))
	for i, name := range names {
		base := strings.TrimSuffix(name, filepath.Ext(name))
		tokenized[i] = strings.Split(base, filename.Separator)
	}

	// Z/position separation must run before channel stripping: stripping
	// matches whole tokens and a concatenated SP10Z10 run would hide
	// both tags from it.
	anyZ, anySP := scanTags(tokenized)
	for i := range tokenized {
		tokenized[i] = separateReadStepRun(tokenized[i])
	}
	if !anyZ && anySP {
		for i := range tokenized {
			tokenized[i] = insertDefaultZ(tokenized[i])
		}
	}

	// Channel stripping: when no file carries the first vocabulary
	// entry, channel names were never embedded and the step is a
	// pass-through.
	if len(vocab) > 0 && anyTokenEquals(tokenized, vocab[0]) {
		for i := range tokenized {
			tokenized[i] = stripChannelNames(tokenized[i], vocab)
		}
	}

	result := make([]string, len(names))
	for i, name := range names {
		newName := strings.Join(tokenized[i], filename.Separator) + filepath.Ext(name)
		result[i] = newName
		if newName == name {
			rep.Skipped++
			continue
		}
		oldPath := filepath.Join(dir, name)
		newPath := filepath.Join(dir, newName)
		if _, err := os.Stat(newPath); err == nil {
			return rep, nil, fmt.Errorf("normalize %s: target %s already exists", name, newName)
		}
		if err := os.Rename(oldPath, newPath); err != nil {
			return rep, nil, fmt.Errorf("normalize %s: %w", name, err)
		}
		rep.Renamed++
	}
	return rep, result, nil
}

func scanTags(tokenized [][]string) (anyZ, anySP bool) {
	for _, tokens := range tokenized {
		for j, tok := range tokens {
			if j == 1 {
				if m := readStepRunRe.FindStringSubmatch(tok); m != nil {
					anySP = anySP || m[2] != ""
					anyZ = anyZ || m[3] != ""
					continue
				}
			}
			anySP = anySP || positionTokRe.MatchString(tok)
			anyZ = anyZ || zTokRe.MatchString(tok)
		}
	}
	return anyZ, anySP
}

// separateReadStepRun splits a read-step token with concatenated SP and
// Z tags ("02SP10Z7") into separate tokens. Already-separated names
// pass through untouched.
func separateReadStepRun(tokens []string) []string {
	if len(tokens) < 2 {
		return tokens
	}
	m := readStepRunRe.FindStringSubmatch(tokens[1])
	if m == nil || (m[2] == "" && m[3] == "") {
		return tokens
	}
	sep := []string{tokens[0], m[1]}
	if m[2] != "" {
		sep = append(sep, m[2])
	}
	if m[3] != "" {
		sep = append(sep, m[3])
	}
	return append(sep, tokens[2:]...)
}

// insertDefaultZ adds a Z0 token so downstream logic can treat Z as
// always present. It lands immediately before the channel-index token,
// falling back to before the timepoint token, then the end of the name.
func insertDefaultZ(tokens []string) []string {
	for _, tok := range tokens {
		if zTokRe.MatchString(tok) {
			return tokens
		}
	}
	at := len(tokens)
	for i, tok := range tokens {
		if channelTokRe.MatchString(tok) || timeTokRe.MatchString(tok) {
			at = i
			break
		}
	}
	out := make([]string, 0, len(tokens)+1)
	out = append(out, tokens[:at]...)
	out = append(out, "Z0")
	return append(out, tokens[at:]...)
}

func stripChannelNames(tokens []string, vocab []string) []string {
	out := tokens[:0:0]
	for _, tok := range tokens {
		if isVocabName(tok, vocab) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func isVocabName(tok string, vocab []string) bool {
	for _, name := range vocab {
		if tok == name {
			return true
		}
	}
	return false
}

func anyTokenEquals(tokenized [][]string, name string) bool {
	for _, tokens := range tokenized {
		for _, tok := range tokens {
			if tok == name {
				return true
			}
		}
	}
	return false
}
