package storage

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "platestack.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordRunLifecycle(t *testing.T) {
	s := openTestStore(t)

	rec := RunRecord{
		ID:          "run-1",
		InputDir:    "/data/plate1",
		Wells:       2,
		Positions:   2,
		ZSteps:      1,
		Timepoints:  3,
		Channels:    1,
		GroupsTotal: 4,
	}
	if err := s.RecordRunStart(rec); err != nil {
		t.Fatalf("record start: %v", err)
	}
	if err := s.RecordGroup(GroupRecord{
		RunID: "run-1", Well: "B2", Position: 1,
		FirstFile: "B2_02_SP1_Z0_C1_T001.tif",
		Pattern:   "B2_02_SP1_Z<0-0>_C<1-1>_T<001-003>.tif",
		FileCount: 3, Status: "completed",
	}); err != nil {
		t.Fatalf("record group: %v", err)
	}
	if err := s.RecordGroup(GroupRecord{
		RunID: "run-1", Well: "B2", Position: 2,
		Status: "failed", Error: "no member files",
	}); err != nil {
		t.Fatalf("record group: %v", err)
	}
	if err := s.RecordRunResult("run-1", "completed", 1, true, ""); err != nil {
		t.Fatalf("record result: %v", err)
	}

	runs, err := s.RecentRuns(10)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.Status != "completed" || got.GroupsTotal != 4 || got.GroupsFailed != 1 || !got.ErasedRaw {
		t.Fatalf("unexpected run record %+v", got)
	}
	if got.CompletedAt == nil {
		t.Fatalf("expected completion timestamp")
	}

	groups, err := s.GroupsForRun("run-1")
	if err != nil {
		t.Fatalf("groups for run: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[1].Status != "failed" || groups[1].Error != "no member files" {
		t.Fatalf("unexpected failed group %+v", groups[1])
	}
}

func TestNilStoreIsNoOp(t *testing.T) {
	var s *Store
	if err := s.RecordRunStart(RunRecord{ID: "x"}); err != nil {
		t.Fatalf("nil store must no-op, got %v", err)
	}
	if err := s.RecordGroup(GroupRecord{}); err != nil {
		t.Fatalf("nil store must no-op, got %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("nil store close: %v", err)
	}
}
