package store

import (
	"context"
	"time"

	"github.com/yangwenmai/solvesync/internal/model"
)

// SubmissionReader provides read access to submissions.
type SubmissionReader interface {
	GetSubmission(ctx context.Context, id string) (*model.SubmissionWithArtifacts, error)
	ListSubmissions(ctx context.Context, f model.SubmissionFilter) ([]model.Submission, error)
	FindRecentByURL(ctx context.Context, url string, since time.Time) (*model.Submission, error)
}

// SubmissionWriter provides write access to submissions.
type SubmissionWriter interface {
	CreateSubmission(ctx context.Context, sub model.Submission) error
	UpdateSubmissionStatus(ctx context.Context, id, newStatus string, errorInfo *string) error
	UpdateSubmissionResult(ctx context.Context, id, problemID, path, commitSHA string) error
}

// SubmissionClaimer provides atomic claim operations for background processing.
type SubmissionClaimer interface {
	ClaimNextCaptured(ctx context.Context) (*model.Submission, error)
	ResetStaleProcessing(ctx context.Context) (int64, error)
}

// ArtifactStore provides access to artifact persistence.
type ArtifactStore interface {
	UpsertArtifact(ctx context.Context, a model.Artifact) error
}

// SettingsStore reads and writes the GitHub settings.
type SettingsStore interface {
	GetSettings(ctx context.Context) (model.Settings, error)
	SaveSettings(ctx context.Context, s model.Settings) error
}

// SubmissionRepository combines the operations used by the API layer.
type SubmissionRepository interface {
	SubmissionReader
	SubmissionWriter
	SettingsStore
}
