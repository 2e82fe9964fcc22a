package fsutil

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var tiffExts = map[string]struct{}{
	".tif":  {},
	".tiff": {},
}

// ListTIFFs returns the TIFF filenames (not paths) directly inside dir,
// sorted. The instrument writes a flat directory, so subdirectories are
// not descended into.
func ListTIFFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if IsTIFF(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// IsTIFF checks the file extension.
func IsTIFF(name string) bool {
	_, ok := tiffExts[strings.ToLower(filepath.Ext(name))]
	return ok
}
