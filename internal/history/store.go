package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one recorded generation request, successful or not.
type Run struct {
	ID              string    `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	RepoURL         string    `json:"repo_url"`
	Strategy        string    `json:"strategy,omitempty"`
	SnapshotVersion string    `json:"snapshot_version,omitempty"`
	Exemplars       []string  `json:"exemplars"`
	SectionCount    int       `json:"section_count"`
	CustomCount     int       `json:"custom_count"`
	CacheHit        bool      `json:"cache_hit"`
	Repaired        bool      `json:"repaired"`
	InputTokens     int       `json:"input_tokens"`
	OutputTokens    int       `json:"output_tokens"`
	DurationMS      int64     `json:"duration_ms"`
	Error           string    `json:"error,omitempty"`
}

// Store provides access to recorded generation runs.
type Store struct {
	db *DB
}

// NewStore creates a Store backed by the given database.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// Record inserts a run. If run.ID is empty a UUID is generated.
func (s *Store) Record(ctx context.Context, run Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}

	exemplars, err := json.Marshal(run.Exemplars)
	if err != nil {
		return fmt.Errorf("marshalling exemplars: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO generation_runs (
			id, timestamp, repo_url, strategy, snapshot_version, exemplars,
			section_count, custom_count, cache_hit, repaired,
			input_tokens, output_tokens, duration_ms, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Timestamp.Format(time.RFC3339),
		run.RepoURL,
		run.Strategy,
		run.SnapshotVersion,
		string(exemplars),
		run.SectionCount,
		run.CustomCount,
		boolToInt(run.CacheHit),
		boolToInt(run.Repaired),
		run.InputTokens,
		run.OutputTokens,
		run.DurationMS,
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("inserting generation run: %w", err)
	}
	return nil
}

// Filter controls which runs are returned by Query.
type Filter struct {
	RepoURL string
	Since   *time.Time
	Limit   int
	Offset  int
}

// Query returns runs matching the filter, newest first.
func (s *Store) Query(ctx context.Context, f Filter) ([]Run, error) {
	query := `
		SELECT id, timestamp, repo_url, strategy, snapshot_version, exemplars,
			   section_count, custom_count, cache_hit, repaired,
			   input_tokens, output_tokens, duration_ms, error
		FROM generation_runs WHERE 1=1`
	var args []any

	if f.RepoURL != "" {
		query += " AND repo_url = ?"
		args = append(args, f.RepoURL)
	}
	if f.Since != nil {
		query += " AND timestamp >= ?"
		args = append(args, f.Since.Format(time.RFC3339))
	}

	// rowid breaks same-second timestamp ties by insertion order.
	query += " ORDER BY timestamp DESC, rowid DESC"
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " LIMIT ?"
	args = append(args, limit)
	if f.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying generation runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetByID retrieves a single run, or nil if not found.
func (s *Store) GetByID(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, timestamp, repo_url, strategy, snapshot_version, exemplars,
			   section_count, custom_count, cache_hit, repaired,
			   input_tokens, output_tokens, duration_ms, error
		FROM generation_runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var ts, exemplars string
	var cacheHit, repaired int

	err := row.Scan(
		&run.ID, &ts, &run.RepoURL, &run.Strategy, &run.SnapshotVersion, &exemplars,
		&run.SectionCount, &run.CustomCount, &cacheHit, &repaired,
		&run.InputTokens, &run.OutputTokens, &run.DurationMS, &run.Error,
	)
	if err != nil {
		return nil, err
	}

	if t, perr := time.Parse(time.RFC3339, ts); perr == nil {
		run.Timestamp = t
	}
	if err := json.Unmarshal([]byte(exemplars), &run.Exemplars); err != nil {
		run.Exemplars = nil
	}
	run.CacheHit = cacheHit != 0
	run.Repaired = repaired != 0
	return &run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
