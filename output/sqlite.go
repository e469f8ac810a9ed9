package output

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/use-agent/topchart/models"
	"github.com/use-agent/topchart/simhash"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	source_url         TEXT NOT NULL,
	status             TEXT NOT NULL,
	engine_used        TEXT,
	row_locator        TEXT,
	rows_found         INTEGER NOT NULL,
	skipped            INTEGER NOT NULL,
	layout_fingerprint TEXT,
	created_at         TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS movies (
	run_id       INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	rank         INTEGER NOT NULL,
	title        TEXT NOT NULL,
	release_year TEXT NOT NULL,
	imdb_rating  TEXT NOT NULL,
	votes        TEXT NOT NULL,
	url          TEXT NOT NULL,
	PRIMARY KEY (run_id, rank)
);
`

// RunRecord is one stored run without its movies.
type RunRecord struct {
	ID                int64
	SourceURL         string
	Status            string
	EngineUsed        string
	RowLocator        string
	RowsFound         int
	Skipped           int
	LayoutFingerprint string
	CreatedAt         time.Time
}

// SQLiteStore keeps every run and its movies. Comparing layout fingerprints
// across runs surfaces markup drift before fields start degrading.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// journal_mode is stored in the file, so one connection is enough.
	if _, execErr := db.Exec("PRAGMA journal_mode=WAL"); execErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragma journal_mode: %w", execErr)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path, now: time.Now}, nil
}

// connPragmas are per-connection settings. They travel in the DSN so every
// connection the pool opens gets them.
var connPragmas = []string{"foreign_keys(1)", "busy_timeout(5000)"}

func sqliteDSN(path string) string {
	q := url.Values{}
	for _, p := range connPragmas {
		q.Add("_pragma", p)
	}
	return path + "?" + q.Encode()
}

func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Close() error { return s.db.Close() }

// Write stores resp as a new run and warns when the row layout moved away
// from the previous run's.
func (s *SQLiteStore) Write(ctx context.Context, resp *models.ScrapeResponse) error {
	prev, err := s.LastRun(ctx)
	if err != nil {
		return err
	}
	if prev != nil {
		if dist, ok := fingerprintDistance(prev.LayoutFingerprint, resp.LayoutFingerprint); ok && dist > simhash.DriftThreshold {
			slog.Warn("chart row layout drifted since last run",
				"previous_run", prev.ID,
				"distance", dist,
				"previous_locator", prev.RowLocator,
				"locator", resp.RowLocator,
			)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (source_url, status, engine_used, row_locator, rows_found, skipped, layout_fingerprint, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		resp.SourceURL, resp.Status, resp.EngineUsed, resp.RowLocator,
		resp.RowsFound, resp.Skipped, resp.LayoutFingerprint,
		s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO movies (run_id, rank, title, release_year, imdb_rating, votes, url)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare movie insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range resp.Movies {
		if _, err := stmt.ExecContext(ctx, runID, m.Rank, m.Title, m.ReleaseYear, m.Rating, m.Votes, m.URL); err != nil {
			return fmt.Errorf("insert movie %d: %w", m.Rank, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	slog.Debug("run stored", "run_id", runID, "movies", len(resp.Movies), "path", s.path)
	return nil
}

// LastRun returns the most recent run, or nil when none is stored.
func (s *SQLiteStore) LastRun(ctx context.Context) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source_url, status, COALESCE(engine_used, ''), COALESCE(row_locator, ''),
		        rows_found, skipped, COALESCE(layout_fingerprint, ''), created_at
		 FROM runs ORDER BY id DESC LIMIT 1`)

	var (
		r       RunRecord
		created string
	)
	err := row.Scan(&r.ID, &r.SourceURL, &r.Status, &r.EngineUsed, &r.RowLocator,
		&r.RowsFound, &r.Skipped, &r.LayoutFingerprint, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query last run: %w", err)
	}
	if t, perr := time.Parse(time.RFC3339Nano, created); perr == nil {
		r.CreatedAt = t
	}
	return &r, nil
}

// Movies returns the movies stored for runID in rank order.
func (s *SQLiteStore) Movies(ctx context.Context, runID int64) ([]models.Movie, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rank, title, release_year, imdb_rating, votes, url
		 FROM movies WHERE run_id = ? ORDER BY rank`, runID)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	movies := []models.Movie{}
	for rows.Next() {
		var m models.Movie
		if err := rows.Scan(&m.Rank, &m.Title, &m.ReleaseYear, &m.Rating, &m.Votes, &m.URL); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

// fingerprintDistance compares two hex fingerprints. ok is false when either
// is missing or malformed.
func fingerprintDistance(a, b string) (int, bool) {
	if a == "" || b == "" {
		return 0, false
	}
	x, err := strconv.ParseUint(a, 16, 64)
	if err != nil {
		return 0, false
	}
	y, err := strconv.ParseUint(b, 16, 64)
	if err != nil {
		return 0, false
	}
	return simhash.Distance(x, y), true
}
