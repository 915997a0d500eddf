package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/yangwenmai/solvesync/internal/extract"
	"github.com/yangwenmai/solvesync/internal/github"
	"github.com/yangwenmai/solvesync/internal/model"
	"github.com/yangwenmai/solvesync/internal/notify"
)

// User-facing messages.
const (
	msgNoCode       = "Could not find solution code on the page"
	msgMissingConf  = "Please configure GitHub settings (token, owner, repo)"
	msgPushedPrefix = "Successfully pushed solution to GitHub: "
)

// Processor runs the processing pipeline for a single submission.
type Processor interface {
	Run(ctx context.Context, sub *model.Submission) (*model.SyncResult, error)
}

// SubmissionClaimer provides atomic claim and status update operations.
type SubmissionClaimer interface {
	ClaimNextCaptured(ctx context.Context) (*model.Submission, error)
	UpdateSubmissionStatus(ctx context.Context, id, newStatus string, errorInfo *string) error
}

// Worker polls for CAPTURED submissions, runs the pipeline and reports the
// outcome through the notifier. Submissions are processed one at a time.
type Worker struct {
	claimer   SubmissionClaimer
	processor Processor
	notifier  notify.Notifier
	interval  time.Duration
}

// New creates a new Worker.
func New(claimer SubmissionClaimer, processor Processor, notifier notify.Notifier, interval time.Duration) *Worker {
	return &Worker{claimer: claimer, processor: processor, notifier: notifier, interval: interval}
}

// Start begins the polling loop. It blocks until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	slog.Info("worker started", "interval", w.interval.String())
	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped")
			return
		default:
		}

		processed, err := w.ProcessNext(ctx)
		if err != nil {
			slog.Error("worker claim error", "error", err)
		}
		if !processed {
			w.sleep(ctx)
		}
	}
}

// ProcessNext claims and processes one submission. It reports false when
// nothing was claimed.
func (w *Worker) ProcessNext(ctx context.Context) (bool, error) {
	sub, err := w.claimer.ClaimNextCaptured(ctx)
	if err != nil {
		return false, err
	}
	if sub == nil {
		return false, nil
	}

	slog.Info("processing submission", "submission_id", sub.ID, "url", sub.URL, "trigger", sub.Trigger)
	result, err := w.processor.Run(ctx, sub)
	if err != nil {
		slog.Error("pipeline failed", "submission_id", sub.ID, "error", err)
		errInfo := w.buildErrorInfo(err)
		if sErr := w.claimer.UpdateSubmissionStatus(ctx, sub.ID, model.StatusFailed, &errInfo); sErr != nil {
			slog.Error("failed to set FAILED status", "submission_id", sub.ID, "error", sErr)
		}
		w.notifier.Notify(ctx, userMessage(err), model.SeverityError)
		return true, nil
	}

	if result == nil {
		result = &model.SyncResult{}
	}
	if err := w.claimer.UpdateSubmissionStatus(ctx, sub.ID, model.StatusSynced, nil); err != nil {
		slog.Error("failed to set SYNCED status", "submission_id", sub.ID, "error", err)
	} else {
		slog.Info("submission is now SYNCED", "submission_id", sub.ID, "path", result.Path, "created", result.Created)
	}
	w.notifier.Notify(ctx, msgPushedPrefix+result.Path, model.SeverityInfo)
	return true, nil
}

func (w *Worker) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(w.interval):
	}
}

// stepNamer is implemented by errors that carry a pipeline step name.
type stepNamer interface {
	StepName() string
}

// errorKinder is implemented by errors that carry a classification.
type errorKinder interface {
	ErrorKind() string
}

func (w *Worker) buildErrorInfo(err error) string {
	step := "unknown"
	var sn stepNamer
	if errors.As(err, &sn) {
		step = sn.StepName()
	}
	kind := ""
	var ek errorKinder
	if errors.As(err, &ek) {
		kind = ek.ErrorKind()
	}
	info := model.ErrorInfo{
		FailedStep: step,
		Kind:       kind,
		Message:    userMessage(err),
		Retryable:  kind != extract.NoCodeFound,
		FailedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	return info.ToJSON()
}

// userMessage turns a pipeline error into the text shown to the user.
func userMessage(err error) string {
	var ee *extract.ExtractionError
	if errors.As(err, &ee) {
		return msgNoCode
	}
	var se *github.SyncError
	if errors.As(err, &se) {
		if se.Kind == github.MissingConfiguration {
			return msgMissingConf
		}
		return se.Message
	}
	return "Failed to sync solution: " + err.Error()
}
