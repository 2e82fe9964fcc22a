package storage

import (
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps SQLite-backed persistence for runs and their groups.
type Store struct {
	DB *sql.DB
}

// New opens (or creates) the database at path and ensures schema.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{DB: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
            id TEXT PRIMARY KEY,
            input_dir TEXT NOT NULL,
            status TEXT NOT NULL,
            wells INTEGER,
            positions INTEGER,
            z_steps INTEGER,
            timepoints INTEGER,
            channels INTEGER,
            groups_total INTEGER,
            groups_failed INTEGER,
            erased_raw BOOLEAN DEFAULT FALSE,
            error_message TEXT,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            completed_at TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS run_groups (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            run_id TEXT NOT NULL,
            well TEXT NOT NULL,
            position INTEGER NOT NULL,
            first_file TEXT,
            pattern TEXT,
            file_count INTEGER,
            status TEXT NOT NULL,
            error_message TEXT,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE INDEX IF NOT EXISTS idx_run_groups_run_id ON run_groups(run_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.DB.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying DB.
func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// RunRecord captures one pipeline run.
type RunRecord struct {
	ID           string
	InputDir     string
	Status       string
	Wells        int
	Positions    int
	ZSteps       int
	Timepoints   int
	Channels     int
	GroupsTotal  int
	GroupsFailed int
	ErasedRaw    bool
	Error        string
	CreatedAt    time.Time
	CompletedAt  *time.Time
}

// GroupRecord captures one assembled (well, position) group.
type GroupRecord struct {
	RunID     string
	Well      string
	Position  int
	FirstFile string
	Pattern   string
	FileCount int
	Status    string
	Error     string
}

// RecordRunStart inserts a running run with its coordinate space.
func (s *Store) RecordRunStart(rec RunRecord) error {
	if s == nil {
		return nil
	}
	_, err := s.DB.Exec(`INSERT OR REPLACE INTO runs (id, input_dir, status, wells, positions, z_steps, timepoints, channels, groups_total) VALUES (?, ?, 'running', ?, ?, ?, ?, ?, ?);`,
		rec.ID, rec.InputDir, rec.Wells, rec.Positions, rec.ZSteps, rec.Timepoints, rec.Channels, rec.GroupsTotal)
	return err
}

// RecordRunResult finalizes a run.
func (s *Store) RecordRunResult(id, status string, groupsFailed int, erasedRaw bool, errMsg string) error {
	if s == nil {
		return nil
	}
	_, err := s.DB.Exec(`UPDATE runs SET status=?, groups_failed=?, erased_raw=?, error_message=?, completed_at=CURRENT_TIMESTAMP WHERE id=?;`,
		status, groupsFailed, erasedRaw, errMsg, id)
	return err
}

// RecordGroup persists one group outcome.
func (s *Store) RecordGroup(rec GroupRecord) error {
	if s == nil {
		return nil
	}
	_, err := s.DB.Exec(`INSERT INTO run_groups (run_id, well, position, first_file, pattern, file_count, status, error_message) VALUES (?, ?, ?, ?, ?, ?, ?, ?);`,
		rec.RunID, rec.Well, rec.Position, rec.FirstFile, rec.Pattern, rec.FileCount, rec.Status, rec.Error)
	return err
}

// RecentRuns returns the latest runs up to limit.
func (s *Store) RecentRuns(limit int) ([]RunRecord, error) {
	if s == nil {
		return nil, errors.New("store not initialized")
	}
	rows, err := s.DB.Query(`SELECT id, input_dir, status, wells, positions, z_steps, timepoints, channels, groups_total, groups_failed, erased_raw, error_message, created_at, completed_at FROM runs ORDER BY created_at DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []RunRecord
	for rows.Next() {
		var rec RunRecord
		var created time.Time
		var completed sql.NullTime
		var groupsFailed sql.NullInt64
		var errorMsg sql.NullString
		if err := rows.Scan(&rec.ID, &rec.InputDir, &rec.Status, &rec.Wells, &rec.Positions, &rec.ZSteps, &rec.Timepoints, &rec.Channels, &rec.GroupsTotal, &groupsFailed, &rec.ErasedRaw, &errorMsg, &created, &completed); err != nil {
			return nil, err
		}
		rec.CreatedAt = created
		if completed.Valid {
			rec.CompletedAt = &completed.Time
		}
		if groupsFailed.Valid {
			rec.GroupsFailed = int(groupsFailed.Int64)
		}
		if errorMsg.Valid {
			rec.Error = errorMsg.String
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// GroupsForRun returns the groups of one run in insertion order.
func (s *Store) GroupsForRun(runID string) ([]GroupRecord, error) {
	if s == nil {
		return nil, errors.New("store not initialized")
	}
	rows, err := s.DB.Query(`SELECT run_id, well, position, first_file, pattern, file_count, status, error_message FROM run_groups WHERE run_id=? ORDER BY id;`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []GroupRecord
	for rows.Next() {
		var rec GroupRecord
		var errorMsg sql.NullString
		if err := rows.Scan(&rec.RunID, &rec.Well, &rec.Position, &rec.FirstFile, &rec.Pattern, &rec.FileCount, &rec.Status, &errorMsg); err != nil {
			return nil, err
		}
		if errorMsg.Valid {
			rec.Error = errorMsg.String
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
