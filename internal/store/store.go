// Package store keeps a history of analyze runs in SQLite so earlier
// manifests can be listed and recovered.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/forPelevin/dmcut/internal/types"
)

// timeLayout is fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned when no run matches an id or id prefix.
var ErrRunNotFound = errors.New("store: run not found")

// Store implements ports.RunRecorder.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates the database file and its parent directory if needed and
// brings the schema up to date.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("store: empty database path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}
	s := &Store{db: db, path: path}
	if err := s.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRun inserts a run and its clips atomically. A blank ID gets a fresh
// UUID and a zero CreatedAt gets the current time.
func (s *Store) SaveRun(ctx context.Context, run types.RunRecord) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, input_dir, chat_file, subtitle_file, threshold, points, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.InputDir, run.ChatFile, run.SubtitleFile, run.Threshold, run.Points,
		run.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	for _, c := range run.Clips {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO clips (run_id, idx, timestamp, start_sec, end_sec, score, danmaku_count,
			 title, summary, cover_text_1, cover_text_2, highlight_reason)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, c.Index, c.Timestamp, c.StartSec, c.EndSec, c.Score, c.ChatCount,
			c.Title, c.Summary, c.CoverText1, c.CoverText2, c.HighlightReason,
		)
		if err != nil {
			return fmt.Errorf("insert clip %d of run %s: %w", c.Index, run.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first, without their clips.
// limit <= 0 returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `SELECT r.id, r.input_dir, r.chat_file, r.subtitle_file, r.threshold, r.points, r.created_at,
		(SELECT COUNT(1) FROM clips c WHERE c.run_id = r.id)
		FROM runs r ORDER BY r.created_at DESC, r.id`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			sum     RunSummary
			created string
		)
		if err := rows.Scan(&sum.ID, &sum.InputDir, &sum.ChatFile, &sum.SubtitleFile,
			&sum.Threshold, &sum.Points, &created, &sum.ClipCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if sum.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// RunSummary is a run row with its clip count.
type RunSummary struct {
	types.RunRecord
	ClipCount int
}

// GetRun loads one run with its clips. id may be a unique prefix of the
// full run id.
func (s *Store) GetRun(ctx context.Context, id string) (types.RunRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return types.RunRecord{}, ErrRunNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input_dir, chat_file, subtitle_file, threshold, points, created_at
		 FROM runs WHERE id LIKE ? ESCAPE '\' LIMIT 2`, escapeLike(id)+"%")
	if err != nil {
		return types.RunRecord{}, fmt.Errorf("get run: %w", err)
	}
	var matches []types.RunRecord
	for rows.Next() {
		var (
			run     types.RunRecord
			created string
		)
		if err := rows.Scan(&run.ID, &run.InputDir, &run.ChatFile, &run.SubtitleFile,
			&run.Threshold, &run.Points, &created); err != nil {
			rows.Close()
			return types.RunRecord{}, fmt.Errorf("scan run: %w", err)
		}
		if run.CreatedAt, err = parseTime(created); err != nil {
			rows.Close()
			return types.RunRecord{}, err
		}
		matches = append(matches, run)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return types.RunRecord{}, fmt.Errorf("get run: %w", err)
	}
	switch len(matches) {
	case 0:
		return types.RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
	default:
		return types.RunRecord{}, fmt.Errorf("store: run id prefix %q is ambiguous", id)
	}

	run := matches[0]
	run.Clips, err = s.clips(ctx, run.ID)
	if err != nil {
		return types.RunRecord{}, err
	}
	return run, nil
}

func (s *Store) clips(ctx context.Context, runID string) ([]types.ManifestClip, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, timestamp, start_sec, end_sec, score, danmaku_count,
		 title, summary, cover_text_1, cover_text_2, highlight_reason
		 FROM clips WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("load clips: %w", err)
	}
	defer rows.Close()

	var out []types.ManifestClip
	for rows.Next() {
		var c types.ManifestClip
		if err := rows.Scan(&c.Index, &c.Timestamp, &c.StartSec, &c.EndSec, &c.Score, &c.ChatCount,
			&c.Title, &c.Summary, &c.CoverText1, &c.CoverText2, &c.HighlightReason); err != nil {
			return nil, fmt.Errorf("scan clip: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse created_at %q: %w", value, err)
	}
	return t, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
