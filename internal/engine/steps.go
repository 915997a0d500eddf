package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/yangwenmai/solvesync/internal/extract"
	"github.com/yangwenmai/solvesync/internal/model"
	"github.com/yangwenmai/solvesync/internal/normalize"
)

// Step names, recorded as ErrorInfo.FailedStep.
const (
	StepExtract   = "extract"
	StepNormalize = "normalize"
	StepSync      = "sync"
)

// ArtifactStore persists step outputs.
type ArtifactStore interface {
	UpsertArtifact(ctx context.Context, a model.Artifact) error
}

// ResultRecorder stores where a submission ended up in the repository.
type ResultRecorder interface {
	UpdateSubmissionResult(ctx context.Context, id, problemID, path, commitSHA string) error
}

// SubmissionExtractor turns a page snapshot into a submission artifact.
type SubmissionExtractor interface {
	Extract(s *extract.Snapshot) (model.SubmissionArtifact, error)
}

// Syncer writes a normalized file to the repository.
type Syncer interface {
	Sync(ctx context.Context, s model.Settings, file model.NormalizedFile) (*model.SyncResult, error)
}

// ---------------------------------------------------------------------------
// Step 1: Extract
// ---------------------------------------------------------------------------

// ExtractStep parses the captured snapshot and locates title, code and
// language. An empty language falls back to Settings.DefaultLanguage.
type ExtractStep struct {
	Extractor SubmissionExtractor
	Artifacts ArtifactStore // optional
}

func (s *ExtractStep) Name() string { return StepExtract }

func (s *ExtractStep) Run(ctx context.Context, sc *StepContext) error {
	if sc.Snapshot == nil {
		snap, err := extract.Parse(sc.Submission.URL, sc.Submission.SnapshotHTML)
		if err != nil {
			return fmt.Errorf("parse snapshot: %w", err)
		}
		sc.Snapshot = snap
	}

	artifact, err := s.Extractor.Extract(sc.Snapshot)
	if err != nil {
		return err
	}
	if artifact.Language == "" && sc.Settings.DefaultLanguage != "" {
		artifact.Language = sc.Settings.DefaultLanguage
		artifact.LanguageSource = "settings-default"
	}
	sc.Artifact = &artifact

	return persist(ctx, s.Artifacts, sc.Submission.ID, model.ArtifactExtraction, artifact)
}

// ---------------------------------------------------------------------------
// Step 2: Normalize
// ---------------------------------------------------------------------------

// NormalizeStep derives the repository file from the extracted artifact.
type NormalizeStep struct {
	Artifacts ArtifactStore // optional
}

func (s *NormalizeStep) Name() string { return StepNormalize }

func (s *NormalizeStep) Run(ctx context.Context, sc *StepContext) error {
	if sc.Artifact == nil {
		return errors.New("no extracted artifact")
	}
	file := normalize.Normalize(*sc.Artifact)
	sc.File = &file

	return persist(ctx, s.Artifacts, sc.Submission.ID, model.ArtifactFile, file)
}

// ---------------------------------------------------------------------------
// Step 3: Sync
// ---------------------------------------------------------------------------

// SyncStep creates or updates the file in the repository.
type SyncStep struct {
	Syncer    Syncer
	Artifacts ArtifactStore  // optional
	Results   ResultRecorder // optional
}

func (s *SyncStep) Name() string { return StepSync }

func (s *SyncStep) Run(ctx context.Context, sc *StepContext) error {
	if sc.File == nil {
		return errors.New("no normalized file")
	}
	result, err := s.Syncer.Sync(ctx, sc.Settings, *sc.File)
	if err != nil {
		return err
	}
	sc.Result = result

	if err := persist(ctx, s.Artifacts, sc.Submission.ID, model.ArtifactSync, result); err != nil {
		return err
	}
	if s.Results != nil {
		problemID := ""
		if sc.Artifact != nil {
			problemID = sc.Artifact.ProblemID
		}
		if err := s.Results.UpdateSubmissionResult(ctx, sc.Submission.ID, problemID, result.Path, result.CommitSHA); err != nil {
			return fmt.Errorf("record result: %w", err)
		}
	}
	return nil
}

func persist(ctx context.Context, store ArtifactStore, submissionID, artifactType string, v any) error {
	if store == nil {
		return nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s artifact: %w", artifactType, err)
	}
	a := model.NewArtifact(uuid.New().String(), submissionID, artifactType, string(payload))
	if err := store.UpsertArtifact(ctx, a); err != nil {
		return fmt.Errorf("save %s artifact: %w", artifactType, err)
	}
	return nil
}
