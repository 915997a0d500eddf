package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yangwenmai/solvesync/internal/model"
	"github.com/yangwenmai/solvesync/internal/trigger"
)

// captureResult describes the outcome of a capture attempt.
type captureResult struct {
	ID        string
	Status    string
	Duplicate bool
}

// capture records a submission for url unless one was captured within the
// dedupe window.
func (s *Server) capture(ctx context.Context, url, html, trig string) (captureResult, error) {
	s.captureMu.Lock()
	defer s.captureMu.Unlock()

	if s.dedupe > 0 {
		existing, err := s.store.FindRecentByURL(ctx, url, time.Now().Add(-s.dedupe))
		if err != nil {
			return captureResult{}, err
		}
		if existing != nil {
			slog.Info("duplicate trigger suppressed", "url", url, "trigger", trig, "submission_id", existing.ID)
			return captureResult{ID: existing.ID, Status: existing.Status, Duplicate: true}, nil
		}
	}

	sub := model.NewSubmission(uuid.New().String(), url, trig, html)
	if err := s.store.CreateSubmission(ctx, sub); err != nil {
		return captureResult{}, err
	}
	slog.Info("submission captured", "submission_id", sub.ID, "url", url, "trigger", trig)
	return captureResult{ID: sub.ID, Status: sub.Status}, nil
}

// captureNavigation runs after the navigation watcher has waited for a
// submission page to settle. It uses the newest snapshot posted for url.
func (s *Server) captureNavigation(ctx context.Context, url string) {
	snap, ok := s.cache.Latest(url)
	if !ok {
		slog.Warn("no snapshot for submission page", "url", url)
		return
	}
	if _, err := s.capture(ctx, url, snap.HTML, model.TriggerNavigation); err != nil {
		slog.Error("navigation capture failed", "url", url, "error", err)
	}
}

// ---------------------------------------------------------------------------
// POST /api/snapshots
// ---------------------------------------------------------------------------

type snapshotRequest struct {
	URL   string   `json:"url"`
	HTML  string   `json:"html"`
	Added []string `json:"added"`
}

type snapshotResponse struct {
	Triggered  bool   `json:"triggered"`
	Reason     string `json:"reason,omitempty"`
	ID         string `json:"id,omitempty"`
	Duplicate  bool   `json:"duplicate,omitempty"`
	Navigation bool   `json:"navigation,omitempty"`
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	var req snapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	if strings.TrimSpace(req.HTML) == "" {
		writeError(w, http.StatusBadRequest, "html is required")
		return
	}

	batch, err := trigger.ParseFragments(req.Added)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid added fragment")
		return
	}

	s.cache.Put(req.URL, req.HTML)
	resp := snapshotResponse{Navigation: s.watcher.Observe(s.ctx, req.URL)}

	reason, ok := s.detector.Accepted(batch)
	if !ok {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	res, err := s.capture(r.Context(), req.URL, req.HTML, reason)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to capture submission")
		return
	}
	resp.Triggered = true
	resp.Reason = reason
	resp.ID = res.ID
	resp.Duplicate = res.Duplicate

	status := http.StatusCreated
	if res.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

// ---------------------------------------------------------------------------
// POST /api/capture
// ---------------------------------------------------------------------------

type captureRequest struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	var req captureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	if strings.TrimSpace(req.HTML) == "" {
		snap, ok := s.cache.Latest(req.URL)
		if !ok {
			writeError(w, http.StatusBadRequest, "html is required")
			return
		}
		req.HTML = snap.HTML
	}

	res, err := s.capture(r.Context(), req.URL, req.HTML, model.TriggerManual)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to capture submission")
		return
	}

	status := http.StatusCreated
	if res.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]any{
		"id":        res.ID,
		"status":    res.Status,
		"duplicate": res.Duplicate,
	})
}

// ---------------------------------------------------------------------------
// GET /api/submissions
// ---------------------------------------------------------------------------

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	filter := model.SubmissionFilter{
		Status: splitComma(r.URL.Query().Get("status")),
		URL:    r.URL.Query().Get("url"),
	}

	subs, err := s.store.ListSubmissions(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list submissions")
		return
	}
	if subs == nil {
		subs = []model.Submission{}
	}
	writeJSON(w, http.StatusOK, subs)
}

// ---------------------------------------------------------------------------
// GET /api/submissions/{id}
// ---------------------------------------------------------------------------

func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	sub, err := s.store.GetSubmission(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "submission not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get submission")
		return
	}

	writeJSON(w, http.StatusOK, sub)
}

// ---------------------------------------------------------------------------
// POST /api/submissions/{id}/retry
// ---------------------------------------------------------------------------

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	sub, err := s.store.GetSubmission(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "submission not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get submission")
		return
	}

	if sub.Status != model.StatusFailed {
		writeError(w, http.StatusConflict, "only FAILED submissions can be retried")
		return
	}

	if err := s.store.UpdateSubmissionStatus(r.Context(), id, model.StatusCaptured, nil); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update status")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": model.StatusCaptured})
}

// ---------------------------------------------------------------------------
// GET /api/settings, PUT /api/settings
// ---------------------------------------------------------------------------

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.GetSettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, settings.Redacted())
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req model.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	current, err := s.store.GetSettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	// A redacted token echoed back by the client keeps the stored one.
	if req.Token == current.Redacted().Token {
		req.Token = current.Token
	}

	if missing := req.Missing(); len(missing) > 0 {
		writeError(w, http.StatusBadRequest, "missing required settings: "+strings.Join(missing, ", "))
		return
	}

	if err := s.store.SaveSettings(r.Context(), req); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}
	slog.Info("settings updated", "owner", req.RepoOwner, "repo", req.RepoName)
	writeJSON(w, http.StatusOK, req.Redacted())
}
