package filename

import (
	"strings"
	"testing"
)

func TestParseFullyDelimited(t *testing.T) {
	fn, warns, err := Parse("B2_02_SP3_Z5_C2_T014.tif", nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(warns) != 0 {
		t.Fatalf("expected no warnings, got %v", warns)
	}
	if fn.Well != "B2" || fn.ReadStep != "02" {
		t.Fatalf("unexpected well/read-step: %+v", fn)
	}
	if fn.Position != 3 || !fn.HasPosition {
		t.Fatalf("unexpected position: %+v", fn)
	}
	if fn.Z != 5 || !fn.HasZ {
		t.Fatalf("unexpected z: %+v", fn)
	}
	if fn.Channel != 2 || fn.Timepoint != 14 {
		t.Fatalf("unexpected channel/timepoint: %+v", fn)
	}
}

func TestParseConcatenatedPositionAndZ(t *testing.T) {
	fn, _, err := Parse("C3_01SP10Z7_T002.tif", nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if fn.ReadStep != "01" {
		t.Fatalf("expected read-step 01, got %q", fn.ReadStep)
	}
	if fn.Position != 10 || fn.Z != 7 {
		t.Fatalf("expected SP10 Z7, got SP%d Z%d", fn.Position, fn.Z)
	}
	if fn.Timepoint != 2 {
		t.Fatalf("expected timepoint 2, got %d", fn.Timepoint)
	}
}

func TestParseDefaults(t *testing.T) {
	fn, _, err := Parse("A1_02.tif", nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if fn.Position != 1 || fn.HasPosition {
		t.Fatalf("expected defaulted position 1, got %+v", fn)
	}
	if fn.Z != 0 || fn.HasZ {
		t.Fatalf("expected defaulted z 0, got %+v", fn)
	}
	if fn.Channel != 1 || fn.Timepoint != 1 {
		t.Fatalf("expected defaulted channel/timepoint, got %+v", fn)
	}
}

func TestParseChannelName(t *testing.T) {
	vocab := []string{"Bright Field", "GFP"}
	fn, warns, err := Parse("B2_02_SP1_C1_Bright Field_T001.tif", vocab)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if fn.ChannelName != "Bright Field" {
		t.Fatalf("expected channel name recorded, got %q", fn.ChannelName)
	}
	if len(warns) != 0 {
		t.Fatalf("expected no warnings, got %v", warns)
	}
}

func TestParseUnknownTokenWarns(t *testing.T) {
	_, warns, err := Parse("B2_02_SP1_bogus_T001.tif", nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(warns) != 1 || !strings.Contains(warns[0], "bogus") {
		t.Fatalf("expected one warning about the bogus token, got %v", warns)
	}
}

func TestParseRejectsMalformedWell(t *testing.T) {
	if _, _, err := Parse("2B_02_T001.tif", nil); err == nil {
		t.Fatalf("expected error for malformed well token")
	}
	if _, _, err := Parse("B2.tif", nil); err == nil {
		t.Fatalf("expected error for missing read-step")
	}
}

func TestCanonicalFirst(t *testing.T) {
	got := CanonicalFirst("B2", "02", 1)
	if got != "B2_02_SP1_Z0_C1_T001.tif" {
		t.Fatalf("unexpected canonical name %q", got)
	}
}

func TestImportPattern(t *testing.T) {
	got := ImportPattern("C3", "01", 2, 4, 3, 12)
	want := "C3_01_SP2_Z<0-4>_C<1-3>_T<001-012>.tif"
	if got != want {
		t.Fatalf("pattern %q, want %q", got, want)
	}
}

func TestNormalizedRoundTrip(t *testing.T) {
	name := "B2_02_SP1_Z0_C1_T001.tif"
	fn, _, err := Parse(name, nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if fn.Normalized() != name {
		t.Fatalf("round trip changed name: %q", fn.Normalized())
	}
}
