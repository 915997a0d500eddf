package model

import "time"

// Artifact type constants
const (
	ArtifactExtraction = "extraction"
	ArtifactFile       = "file"
	ArtifactSync       = "sync"
)

// Artifact is the persisted JSON output of one pipeline step for a Submission.
type Artifact struct {
	ID           string `json:"id"`
	SubmissionID string `json:"submission_id"`
	ArtifactType string `json:"artifact_type"`
	Payload      string `json:"payload"` // JSON string
	CreatedAt    string `json:"created_at"`
}

// NewArtifact creates a new Artifact stamped with the current time.
func NewArtifact(id, submissionID, artifactType, payload string) Artifact {
	return Artifact{
		ID:           id,
		SubmissionID: submissionID,
		ArtifactType: artifactType,
		Payload:      payload,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
}

// SubmissionArtifact is the title/code/language record extracted for one
// accepted submission. The *Source fields name the locator that produced each value.
type SubmissionArtifact struct {
	ProblemID      string `json:"problem_id,omitempty"`
	Title          string `json:"title"`
	Code           string `json:"code"`
	Language       string `json:"language"`
	TitleSource    string `json:"title_source,omitempty"`
	CodeSource     string `json:"code_source,omitempty"`
	LanguageSource string `json:"language_source,omitempty"`
}

// NormalizedFile is the repository file derived from a SubmissionArtifact.
type NormalizedFile struct {
	Path          string `json:"path"`
	Content       string `json:"content"`
	CommitMessage string `json:"commit_message"`
}

// RemoteFileRef describes the current state of a path in the remote repository.
// SHA is set only when Exists is true.
type RemoteFileRef struct {
	Exists bool   `json:"exists"`
	SHA    string `json:"sha,omitempty"`
}

// SyncResult is the outcome of a successful create-or-update.
type SyncResult struct {
	Path       string `json:"path"`
	Created    bool   `json:"created"`
	ContentSHA string `json:"content_sha,omitempty"`
	CommitSHA  string `json:"commit_sha,omitempty"`
	HTMLURL    string `json:"html_url,omitempty"`
}
