package plate

import "testing"

func TestLayoutFor(t *testing.T) {
	cases := []struct {
		wells, rows, cols int
	}{
		{1, 1, 1},
		{2, 1, 2},
		{6, 2, 3},
		{24, 4, 6},
		{96, 8, 12},
		{384, 16, 24},
	}
	for _, c := range cases {
		l, err := LayoutFor(c.wells)
		if err != nil {
			t.Fatalf("LayoutFor(%d): %v", c.wells, err)
		}
		if l.Rows != c.rows || l.Cols != c.cols {
			t.Fatalf("LayoutFor(%d) = %dx%d, want %dx%d", c.wells, l.Rows, l.Cols, c.rows, c.cols)
		}
	}
	if _, err := LayoutFor(48); err == nil {
		t.Fatalf("expected error for unsupported plate size")
	}
}

func TestLabels(t *testing.T) {
	l, _ := LayoutFor(6)
	labels := l.Labels()
	want := []string{"A1", "A2", "A3", "B1", "B2", "B3"}
	if len(labels) != len(want) {
		t.Fatalf("got %d labels, want %d", len(labels), len(want))
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("label %d = %q, want %q", i, labels[i], want[i])
		}
	}
}

func TestContains(t *testing.T) {
	l, _ := LayoutFor(24)
	if !l.Contains("A1") || !l.Contains("D6") {
		t.Fatalf("expected corner wells inside 24-well plate")
	}
	if l.Contains("E1") || l.Contains("A7") || l.Contains("bogus") {
		t.Fatalf("expected out-of-bounds wells rejected")
	}
}
