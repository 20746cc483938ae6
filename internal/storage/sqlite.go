// Package storage provides SQLite-based persistence for run outcomes.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/wormtrack/internal/sim"
)

// Store manages the SQLite database connection for outcome persistence.
type Store struct {
	db *sql.DB
}

// ResultEntry is one stored outcome record.
type ResultEntry struct {
	ID        int64
	Record    sim.OutcomeRecord
	CreatedAt time.Time
}

// LevelStats contains aggregated statistics for a level.
type LevelStats struct {
	LevelID    string
	Runs       int
	Wins       int
	BestScore  int
	BestTier   int
	AvgScore   float64
	LastPlayed time.Time
}

// WinRate returns the share of runs that were won, 0 when nothing was played.
func (s LevelStats) WinRate() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Runs)
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			level_id TEXT NOT NULL,
			seed INTEGER NOT NULL,
			success INTEGER NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			score INTEGER NOT NULL,
			tier INTEGER NOT NULL,
			planning INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			efficiency INTEGER NOT NULL,
			player_switches INTEGER NOT NULL DEFAULT 0,
			hazard_switches INTEGER NOT NULL DEFAULT 0,
			resets INTEGER NOT NULL DEFAULT 0,
			mistakes INTEGER NOT NULL DEFAULT 0,
			arrived INTEGER NOT NULL DEFAULT 0,
			required INTEGER NOT NULL DEFAULT 0,
			elapsed_ms REAL NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_results_level_id ON results(level_id);
		CREATE INDEX IF NOT EXISTS idx_results_top ON results(level_id, score DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveOutcome records a finished run.
// Returns the ID of the inserted record.
func (s *Store) SaveOutcome(rec sim.OutcomeRecord) (int64, error) {
	if rec.LevelID == "" {
		return 0, errors.New("storage: outcome without level id")
	}
	result, err := s.db.Exec(
		`INSERT INTO results
		 (level_id, seed, success, reason, score, tier, planning, accuracy, efficiency,
		  player_switches, hazard_switches, resets, mistakes, arrived, required, elapsed_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.LevelID,
		rec.Seed,
		rec.Success,
		string(rec.Reason),
		rec.Score,
		rec.Tier,
		rec.Breakdown.Planning,
		rec.Breakdown.Accuracy,
		rec.Breakdown.Efficiency,
		rec.Counters.PlayerSwitches,
		rec.Counters.HazardSwitches,
		rec.Counters.Resets,
		rec.Counters.Mistakes,
		rec.Arrived,
		rec.Required,
		rec.ElapsedMs,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save outcome: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

const resultColumns = `id, level_id, seed, success, reason, score, tier, planning, accuracy, efficiency,
		        player_switches, hazard_switches, resets, mistakes, arrived, required, elapsed_ms, created_at`

// TopResults retrieves the best N runs for the given level.
// Results are ordered by score descending, then by the faster run.
func (s *Store) TopResults(levelID string, limit int) ([]ResultEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT `+resultColumns+`
		 FROM results
		 WHERE level_id = ?
		 ORDER BY score DESC, elapsed_ms ASC, id ASC
		 LIMIT ?`,
		levelID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query results: %w", err)
	}
	return scanResults(rows)
}

// RecentResults retrieves the most recent runs across all levels.
func (s *Store) RecentResults(limit int) ([]ResultEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+resultColumns+`
		 FROM results
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query results: %w", err)
	}
	return scanResults(rows)
}

func scanResults(rows *sql.Rows) ([]ResultEntry, error) {
	defer rows.Close()

	var entries []ResultEntry
	for rows.Next() {
		var e ResultEntry
		var reason string
		var createdAt any
		r := &e.Record
		if err := rows.Scan(
			&e.ID,
			&r.LevelID,
			&r.Seed,
			&r.Success,
			&reason,
			&r.Score,
			&r.Tier,
			&r.Breakdown.Planning,
			&r.Breakdown.Accuracy,
			&r.Breakdown.Efficiency,
			&r.Counters.PlayerSwitches,
			&r.Counters.HazardSwitches,
			&r.Counters.Resets,
			&r.Counters.Mistakes,
			&r.Arrived,
			&r.Required,
			&r.ElapsedMs,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.Reason = sim.Reason(reason)
		r.Breakdown.Total = r.Score
		r.Breakdown.Tier = r.Tier
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// BestTier returns the highest tier reached on a won run of the level.
// Returns 0 if the level was never won.
func (s *Store) BestTier(levelID string) (int, error) {
	var tier sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(tier) FROM results WHERE level_id = ? AND success = 1",
		levelID,
	).Scan(&tier)

	if err != nil {
		return 0, fmt.Errorf("storage: cannot query best tier: %w", err)
	}

	if !tier.Valid {
		return 0, nil
	}

	return int(tier.Int64), nil
}

// ClearResults deletes all results for the given level.
func (s *Store) ClearResults(levelID string) error {
	_, err := s.db.Exec("DELETE FROM results WHERE level_id = ?", levelID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear results: %w", err)
	}
	return nil
}

// LevelStats retrieves aggregated statistics for a specific level.
func (s *Store) LevelStats(levelID string) (*LevelStats, error) {
	stats := &LevelStats{LevelID: levelID}

	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(success), 0), COALESCE(MAX(score), 0),
		        COALESCE(MAX(CASE WHEN success = 1 THEN tier END), 0),
		        COALESCE(AVG(score), 0), MAX(created_at)
		 FROM results WHERE level_id = ?`,
		levelID,
	).Scan(&stats.Runs, &stats.Wins, &stats.BestScore, &stats.BestTier, &stats.AvgScore, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get level stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

// AllLevelStats retrieves statistics for all levels that have been played.
func (s *Store) AllLevelStats() (map[string]*LevelStats, error) {
	rows, err := s.db.Query(
		`SELECT level_id, COUNT(*), SUM(success), MAX(score),
		        COALESCE(MAX(CASE WHEN success = 1 THEN tier END), 0),
		        AVG(score), MAX(created_at)
		 FROM results
		 GROUP BY level_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all level stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*LevelStats)
	for rows.Next() {
		var ls LevelStats
		var lastPlayed any
		if err := rows.Scan(&ls.LevelID, &ls.Runs, &ls.Wins, &ls.BestScore, &ls.BestTier, &ls.AvgScore, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		ls.LastPlayed = parseTime(lastPlayed)
		stats[ls.LevelID] = &ls
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// Sink adapts the store to sim.ResultSink. Save failures are logged since
// the simulation has no error path for its sink.
func (s *Store) Sink(logger *log.Logger) sim.ResultSink {
	return sim.ResultSinkFunc(func(rec sim.OutcomeRecord) {
		if _, err := s.SaveOutcome(rec); err != nil {
			logger.Error("saving outcome", "level", rec.LevelID, "err", err)
		}
	})
}
