package normalize

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, names []string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("tif"), 0o644); err != nil {
			t.Fatalf("write fixture %s: %v", name, err)
		}
	}
}

func mustExist(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s on disk: %v", name, err)
		}
	}
}

func TestApplyDefaultZAndChannelStrip(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"B2_02_SP1_C1_Bright Field_T001.tif",
		"B2_02_SP1_C1_Bright Field_T002.tif",
	}
	writeFiles(t, dir, names)

	rep, out, err := Apply(dir, names, []string{"Bright Field"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if rep.Renamed != 2 {
		t.Fatalf("expected 2 renames, got %+v", rep)
	}
	if out[0] != "B2_02_SP1_Z0_C1_T001.tif" || out[1] != "B2_02_SP1_Z0_C1_T002.tif" {
		t.Fatalf("unexpected normalized names %v", out)
	}
	mustExist(t, dir, out...)
	if _, err := os.Stat(filepath.Join(dir, names[0])); !os.IsNotExist(err) {
		t.Fatalf("expected original name gone, stat err %v", err)
	}
}

func TestApplySeparatesConcatenatedRun(t *testing.T) {
	dir := t.TempDir()
	names := []string{"C3_01SP2Z3_GFP_T001.tif"}
	writeFiles(t, dir, names)

	_, out, err := Apply(dir, names, []string{"GFP"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if out[0] != "C3_01_SP2_Z3_T001.tif" {
		t.Fatalf("unexpected normalized name %q", out[0])
	}
	mustExist(t, dir, out[0])
}

func TestApplyIdempotent(t *testing.T) {
	dir := t.TempDir()
	names := []string{"B2_02_SP1_C1_Bright Field_T001.tif"}
	writeFiles(t, dir, names)

	_, out, err := Apply(dir, names, []string{"Bright Field"})
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	rep, out2, err := Apply(dir, out, []string{"Bright Field"})
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if rep.Renamed != 0 || rep.Skipped != 1 {
		t.Fatalf("second pass must rename nothing, got %+v", rep)
	}
	if out2[0] != out[0] {
		t.Fatalf("second pass changed name to %q", out2[0])
	}
}

func TestApplyNoDefaultZWithoutPositions(t *testing.T) {
	dir := t.TempDir()
	names := []string{"B2_02_C1_T001.tif"}
	writeFiles(t, dir, names)

	rep, out, err := Apply(dir, names, nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if rep.Renamed != 0 || out[0] != names[0] {
		t.Fatalf("expected pass-through without position tags, got %v", out)
	}
}

func TestApplyChannelPassThroughWhenFirstEntryUnmatched(t *testing.T) {
	dir := t.TempDir()
	names := []string{"B2_02_SP1_Z0_C1_T001.tif"}
	writeFiles(t, dir, names)

	rep, out, err := Apply(dir, names, []string{"Bright Field", "GFP"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if rep.Renamed != 0 || out[0] != names[0] {
		t.Fatalf("expected pass-through, got %v (%+v)", out, rep)
	}
}

func TestApplyExpandedColourChannels(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"B2_02_SP1_C1_Red_T001.tif",
		"B2_02_SP1_C2_Green_T001.tif",
		"B2_02_SP1_C3_Blue_T001.tif",
	}
	writeFiles(t, dir, names)

	_, out, err := Apply(dir, names, []string{"Red", "Green", "Blue"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	want := []string{
		"B2_02_SP1_Z0_C1_T001.tif",
		"B2_02_SP1_Z0_C2_T001.tif",
		"B2_02_SP1_Z0_C3_T001.tif",
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("name %d = %q, want %q", i, out[i], want[i])
		}
	}
}

func TestApplyFailsOnTargetCollision(t *testing.T) {
	dir := t.TempDir()
	names := []string{"B2_02_SP1_C1_Bright Field_T001.tif"}
	writeFiles(t, dir, names)
	writeFiles(t, dir, []string{"B2_02_SP1_Z0_C1_T001.tif"})

	if _, _, err := Apply(dir, names, []string{"Bright Field"}); err == nil {
		t.Fatalf("expected error when normalized target already exists")
	}
}
