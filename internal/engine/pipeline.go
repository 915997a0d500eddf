// Package engine runs the ordered processing steps for a captured submission.
package engine

import (
	"context"
	"fmt"

	"github.com/yangwenmai/solvesync/internal/extract"
	"github.com/yangwenmai/solvesync/internal/model"
)

// Step is one stage of the pipeline. Steps read earlier results from and
// write their own result to the shared StepContext.
type Step interface {
	Name() string
	Run(ctx context.Context, sc *StepContext) error
}

// StepContext carries the intermediate results between steps.
type StepContext struct {
	Submission *model.Submission
	Settings   model.Settings

	Snapshot *extract.Snapshot
	Artifact *model.SubmissionArtifact
	File     *model.NormalizedFile
	Result   *model.SyncResult
}

// SettingsReader loads the settings a run is performed with.
type SettingsReader interface {
	GetSettings(ctx context.Context) (model.Settings, error)
}

// StaticSettings is a SettingsReader that always returns itself.
type StaticSettings model.Settings

func (s StaticSettings) GetSettings(context.Context) (model.Settings, error) {
	return model.Settings(s), nil
}

// Pipeline orchestrates the execution of all processing steps for a submission.
type Pipeline struct {
	settings SettingsReader
	steps    []Step
}

// NewPipeline creates a pipeline that runs steps in order.
func NewPipeline(settings SettingsReader, steps ...Step) *Pipeline {
	return &Pipeline{settings: settings, steps: steps}
}

// Execute runs every step and returns the populated context. Settings are
// read once per run so changes apply to the next submission.
// On failure it returns a *StepError indicating which step failed.
func (p *Pipeline) Execute(ctx context.Context, sub *model.Submission) (*StepContext, error) {
	settings, err := p.settings.GetSettings(ctx)
	if err != nil {
		return nil, &StepError{Step: "settings", Err: fmt.Errorf("load settings: %w", err)}
	}

	sc := &StepContext{Submission: sub, Settings: settings}
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return sc, &StepError{Step: step.Name(), Err: err}
		}
		if err := step.Run(ctx, sc); err != nil {
			return sc, &StepError{Step: step.Name(), Err: err}
		}
	}
	return sc, nil
}

// Run executes the pipeline and returns the sync result, which is nil when
// the pipeline has no sync step.
func (p *Pipeline) Run(ctx context.Context, sub *model.Submission) (*model.SyncResult, error) {
	sc, err := p.Execute(ctx, sub)
	if err != nil {
		return nil, err
	}
	return sc.Result, nil
}

// StepError wraps an error with the step name that failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return e.Step + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// StepName returns the name of the failed step.
func (e *StepError) StepName() string {
	return e.Step
}
