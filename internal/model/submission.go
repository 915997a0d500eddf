package model

import "time"

// Submission status constants
const (
	StatusCaptured   = "CAPTURED"
	StatusProcessing = "PROCESSING"
	StatusSynced     = "SYNCED"
	StatusFailed     = "FAILED"
)

// Trigger constants record which heuristic captured a submission.
const (
	TriggerNotification = "notification"
	TriggerSuccessMark  = "success_marker"
	TriggerNavigation   = "navigation"
	TriggerManual       = "manual"
)

// Submission is one accepted-submission event captured from the judge page,
// together with the page snapshot taken at trigger time.
type Submission struct {
	ID           string  `json:"id"`
	URL          string  `json:"url"`
	Trigger      string  `json:"trigger"`
	SnapshotHTML string  `json:"-"`
	Status       string  `json:"status"`
	ProblemID    string  `json:"problem_id,omitempty"`
	Path         string  `json:"path,omitempty"`
	CommitSHA    string  `json:"commit_sha,omitempty"`
	ErrorInfo    *string `json:"error_info,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// SubmissionWithArtifacts is a Submission together with its step outputs.
type SubmissionWithArtifacts struct {
	Submission
	Artifacts []Artifact `json:"artifacts"`
}

// SubmissionFilter holds query parameters for listing submissions.
type SubmissionFilter struct {
	Status []string
	URL    string
}

// NewSubmission creates a new Submission with CAPTURED status.
func NewSubmission(id, url, trigger, snapshotHTML string) Submission {
	now := time.Now().UTC().Format(time.RFC3339)
	return Submission{
		ID:           id,
		URL:          url,
		Trigger:      trigger,
		SnapshotHTML: snapshotHTML,
		Status:       StatusCaptured,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
