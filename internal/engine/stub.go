package engine

import (
	"context"
	"log/slog"

	"github.com/yangwenmai/solvesync/internal/model"
)

// DryRunSyncer logs the file it would write instead of calling GitHub
// (for development/testing).
type DryRunSyncer struct {
	Logger *slog.Logger
}

func (d *DryRunSyncer) Sync(ctx context.Context, s model.Settings, file model.NormalizedFile) (*model.SyncResult, error) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "dry run: skipping GitHub write",
		"owner", s.RepoOwner,
		"repo", s.RepoName,
		"path", file.Path,
		"message", file.CommitMessage,
		"bytes", len(file.Content),
	)
	return &model.SyncResult{Path: file.Path, Created: true}, nil
}
