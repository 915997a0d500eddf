package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yangwenmai/solvesync/internal/model"
)

// Verify at compile time that Store implements all interfaces.
var (
	_ SubmissionReader  = (*Store)(nil)
	_ SubmissionWriter  = (*Store)(nil)
	_ SubmissionClaimer = (*Store)(nil)
	_ ArtifactStore     = (*Store)(nil)
	_ SettingsStore     = (*Store)(nil)
)

// Store provides data access to the SQLite database.
type Store struct {
	db *sql.DB
}

// New creates a new Store and initialises the schema.
func New(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var version int
	err := s.db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := s.db.Exec(`INSERT INTO schema_version (version) VALUES (0)`); err != nil {
			return fmt.Errorf("init schema version: %w", err)
		}
		version = 0
	} else if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	// Index 0 = migration from v0 to v1, etc.
	migrations := []func() error{
		s.migrateV1, // v0 → v1: submissions + artifacts
		s.migrateV2, // v1 → v2: settings table, url index for duplicate detection
	}

	for i := version; i < len(migrations); i++ {
		if err := migrations[i](); err != nil {
			return fmt.Errorf("migration v%d→v%d: %w", i, i+1, err)
		}
		if _, err := s.db.Exec(`UPDATE schema_version SET version = ?`, i+1); err != nil {
			return fmt.Errorf("update schema version to %d: %w", i+1, err)
		}
	}
	return nil
}

func (s *Store) migrateV1() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS submissions (
		id            TEXT PRIMARY KEY,
		url           TEXT NOT NULL,
		trigger       TEXT NOT NULL,
		snapshot_html TEXT NOT NULL,
		status        TEXT NOT NULL,
		problem_id    TEXT NOT NULL DEFAULT '',
		path          TEXT NOT NULL DEFAULT '',
		commit_sha    TEXT NOT NULL DEFAULT '',
		error_info    TEXT,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_submissions_status ON submissions(status, created_at);

	CREATE TABLE IF NOT EXISTS artifacts (
		id            TEXT PRIMARY KEY,
		submission_id TEXT NOT NULL REFERENCES submissions(id),
		artifact_type TEXT NOT NULL,
		payload       TEXT NOT NULL,
		created_at    TEXT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_artifacts_unique ON artifacts(submission_id, artifact_type);
	`)
	return err
}

func (s *Store) migrateV2() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_submissions_url ON submissions(url, created_at);
	`)
	return err
}

// ---------------------------------------------------------------------------
// Submissions
// ---------------------------------------------------------------------------

const submissionColumns = `id, url, trigger, snapshot_html, status, problem_id, path, commit_sha, error_info, created_at, updated_at`

// CreateSubmission inserts a new submission.
func (s *Store) CreateSubmission(ctx context.Context, sub model.Submission) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (`+submissionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.URL, sub.Trigger, sub.SnapshotHTML, sub.Status,
		sub.ProblemID, sub.Path, sub.CommitSHA, sub.ErrorInfo,
		sub.CreatedAt, sub.UpdatedAt,
	)
	return err
}

// GetSubmission returns a submission together with its artifacts.
func (s *Store) GetSubmission(ctx context.Context, id string) (*model.SubmissionWithArtifacts, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id)
	sub, err := scanSubmission(row)
	if err != nil {
		return nil, err
	}

	artifacts, err := s.listArtifacts(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.SubmissionWithArtifacts{Submission: *sub, Artifacts: artifacts}, nil
}

// ListSubmissions returns submissions matching the filter, newest first.
func (s *Store) ListSubmissions(ctx context.Context, f model.SubmissionFilter) ([]model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions`
	var conditions []string
	var args []interface{}

	if len(f.Status) > 0 {
		placeholders := make([]string, len(f.Status))
		for i, st := range f.Status {
			placeholders[i] = "?"
			args = append(args, st)
		}
		conditions = append(conditions, "status IN ("+strings.Join(placeholders, ",")+")")
	}
	if f.URL != "" {
		conditions = append(conditions, "url = ?")
		args = append(args, f.URL)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// FindRecentByURL returns the newest submission for url created at or after
// since, or nil if there is none.
func (s *Store) FindRecentByURL(ctx context.Context, url string, since time.Time) (*model.Submission, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions
		 WHERE url = ? AND created_at >= ? ORDER BY created_at DESC, rowid DESC LIMIT 1`,
		url, since.UTC().Format(time.RFC3339),
	)
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return sub, err
}

// UpdateSubmissionStatus changes the status of a submission.
func (s *Store) UpdateSubmissionStatus(ctx context.Context, id, newStatus string, errorInfo *string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `UPDATE submissions SET status = ?, error_info = ?, updated_at = ? WHERE id = ?`, newStatus, errorInfo, now, id)
	return err
}

// UpdateSubmissionResult records where the solution was written.
func (s *Store) UpdateSubmissionResult(ctx context.Context, id, problemID, path, commitSHA string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`UPDATE submissions SET problem_id = ?, path = ?, commit_sha = ?, updated_at = ? WHERE id = ?`,
		problemID, path, commitSHA, now, id,
	)
	return err
}

// ClaimNextCaptured atomically picks the oldest CAPTURED submission and sets it
// to PROCESSING. Returns nil if none is available.
func (s *Store) ClaimNextCaptured(ctx context.Context) (*model.Submission, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	row := s.db.QueryRowContext(ctx, `
		UPDATE submissions SET status = ?, updated_at = ?
		WHERE id = (SELECT id FROM submissions WHERE status = ? ORDER BY created_at ASC, rowid ASC LIMIT 1)
		RETURNING `+submissionColumns,
		model.StatusProcessing, now, model.StatusCaptured,
	)
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return sub, err
}

// ResetStaleProcessing resets PROCESSING submissions back to CAPTURED (for server restart).
func (s *Store) ResetStaleProcessing(ctx context.Context) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx, `UPDATE submissions SET status = ?, updated_at = ? WHERE status = ?`, model.StatusCaptured, now, model.StatusProcessing)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ---------------------------------------------------------------------------
// Artifacts
// ---------------------------------------------------------------------------

// UpsertArtifact inserts or replaces an artifact (one per submission per type).
func (s *Store) UpsertArtifact(ctx context.Context, a model.Artifact) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO artifacts (id, submission_id, artifact_type, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(submission_id, artifact_type) DO UPDATE SET
			id = excluded.id,
			payload = excluded.payload,
			created_at = excluded.created_at`,
		a.ID, a.SubmissionID, a.ArtifactType, a.Payload, a.CreatedAt,
	)
	return err
}

func (s *Store) listArtifacts(ctx context.Context, submissionID string) ([]model.Artifact, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, submission_id, artifact_type, payload, created_at FROM artifacts WHERE submission_id = ? ORDER BY created_at ASC, rowid ASC`, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var artifacts []model.Artifact
	for rows.Next() {
		var a model.Artifact
		if err := rows.Scan(&a.ID, &a.SubmissionID, &a.ArtifactType, &a.Payload, &a.CreatedAt); err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

// ---------------------------------------------------------------------------
// Settings
// ---------------------------------------------------------------------------

// GetSettings returns the stored settings; absent keys are empty.
func (s *Store) GetSettings(ctx context.Context) (model.Settings, error) {
	var out model.Settings
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return out, err
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return out, err
		}
		switch k {
		case model.SettingToken:
			out.Token = v
		case model.SettingRepoOwner:
			out.RepoOwner = v
		case model.SettingRepoName:
			out.RepoName = v
		case model.SettingDefaultLanguage:
			out.DefaultLanguage = v
		}
	}
	return out, rows.Err()
}

// SaveSettings replaces all settings in one transaction.
func (s *Store) SaveSettings(ctx context.Context, st model.Settings) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	values := [][2]string{
		{model.SettingToken, st.Token},
		{model.SettingRepoOwner, st.RepoOwner},
		{model.SettingRepoName, st.RepoName},
		{model.SettingDefaultLanguage, st.DefaultLanguage},
	}
	for _, kv := range values {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settings (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, kv[0], kv[1]); err != nil {
			return fmt.Errorf("save %s: %w", kv[0], err)
		}
	}
	return tx.Commit()
}

// SeedSettings fills empty stored settings from defaults, leaving values that
// were already saved untouched. It returns the resulting settings.
func (s *Store) SeedSettings(ctx context.Context, defaults model.Settings) (model.Settings, error) {
	current, err := s.GetSettings(ctx)
	if err != nil {
		return current, err
	}
	merged := current.Merge(defaults)
	if merged == current {
		return current, nil
	}
	return merged, s.SaveSettings(ctx, merged)
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(row scanner) (*model.Submission, error) {
	var sub model.Submission
	err := row.Scan(&sub.ID, &sub.URL, &sub.Trigger, &sub.SnapshotHTML, &sub.Status,
		&sub.ProblemID, &sub.Path, &sub.CommitSHA, &sub.ErrorInfo, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
