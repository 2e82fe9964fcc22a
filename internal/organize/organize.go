// Package organize physically groups normalized files into one
// subdirectory per well and handles the optional raw-data cleanup.
package organize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"platestack/internal/filename"
)

// RawDirName is the per-well raw tree created under the input directory.
const RawDirName = "RAW_DATA"

// JointDirName holds the assembled stacks, one subdirectory per well.
const JointDirName = "Joint_TIFs"

// IntoWells moves every normalized file from dir into
// dir/RAW_DATA/<well>/, matching files to wells by the well prefix plus
// separator. Every rename is checked; the first failure aborts.
func IntoWells(dir string, names []string, wells []string) error {
	for _, well := range wells {
		wellDir := filepath.Join(dir, RawDirName, well)
		if err := os.MkdirAll(wellDir, 0o755); err != nil {
			return fmt.Errorf("create well directory %s: %w", wellDir, err)
		}
		prefix := well + filename.Separator
		for _, name := range names {
			if !strings.HasPrefix(name, prefix) {
				continue
			}
			src := filepath.Join(dir, name)
			dst := filepath.Join(wellDir, name)
			if err := os.Rename(src, dst); err != nil {
				return fmt.Errorf("move %s into %s: %w", name, wellDir, err)
			}
		}
	}
	return nil
}

// WellDir returns the raw directory of a well.
func WellDir(dir, well string) string {
	return filepath.Join(dir, RawDirName, well)
}

// JointPath returns the output path for one assembled group.
func JointPath(dir, well, firstFile, suffix string) string {
	return filepath.Join(dir, JointDirName, well, firstFile+suffix)
}

// RemoveRaw deletes the whole RAW_DATA tree under dir. Irreversible;
// callers gate this behind an explicit user opt-in.
func RemoveRaw(dir string) error {
	raw := filepath.Join(dir, RawDirName)
	if _, err := os.Stat(raw); os.IsNotExist(err) {
		return nil
	}
	if err := os.RemoveAll(raw); err != nil {
		return fmt.Errorf("remove raw data %s: %w", raw, err)
	}
	return nil
}
