package organize

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIntoWells(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"B2_02_SP1_Z0_C1_T001.tif",
		"B2_02_SP2_Z0_C1_T001.tif",
		"C3_02_SP1_Z0_C1_T001.tif",
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("tif"), 0o644); err != nil {
			t.Fatalf("fixture: %v", err)
		}
	}

	if err := IntoWells(dir, names, []string{"B2", "C3"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	for _, want := range []string{
		filepath.Join(dir, RawDirName, "B2", names[0]),
		filepath.Join(dir, RawDirName, "B2", names[1]),
		filepath.Join(dir, RawDirName, "C3", names[2]),
	} {
		if _, err := os.Stat(want); err != nil {
			t.Fatalf("expected %s: %v", want, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, names[0])); !os.IsNotExist(err) {
		t.Fatalf("expected source file moved, stat err %v", err)
	}
}

func TestIntoWellsFailsOnMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := IntoWells(dir, []string{"B2_02_SP1_Z0_C1_T001.tif"}, []string{"B2"})
	if err == nil {
		t.Fatalf("expected error moving a missing file")
	}
}

func TestJointPath(t *testing.T) {
	got := JointPath("/data/run", "B2", "B2_02_SP1_Z0_C1_T001.tif", "_jointTIF.tif")
	want := filepath.Join("/data/run", JointDirName, "B2", "B2_02_SP1_Z0_C1_T001.tif_jointTIF.tif")
	if got != want {
		t.Fatalf("joint path %q, want %q", got, want)
	}
}

func TestRemoveRaw(t *testing.T) {
	dir := t.TempDir()
	wellDir := filepath.Join(dir, RawDirName, "B2")
	if err := os.MkdirAll(wellDir, 0o755); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(wellDir, "x.tif"), []byte("tif"), 0o644); err != nil {
		t.Fatalf("fixture: %v", err)
	}

	if err := RemoveRaw(dir); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, RawDirName)); !os.IsNotExist(err) {
		t.Fatalf("expected raw tree removed, stat err %v", err)
	}

	// Removing an already-absent tree is not an error.
	if err := RemoveRaw(dir); err != nil {
		t.Fatalf("expected nil error on second removal, got %v", err)
	}
}
