package trigger

import (
	"context"
	"log/slog"
	"regexp"
	"sync"
	"time"
)

// SubmissionDetailPattern matches submission-detail page URLs.
var SubmissionDetailPattern = regexp.MustCompile(`/submissions/(?:detail/)?[0-9]+/?(?:[?#].*)?$`)

// NavigationWatcher owns the last-seen URL and fires OnSubmissionPageEntered
// after two settling delays when the page navigates to a submission detail.
type NavigationWatcher struct {
	mu      sync.Mutex
	lastURL string

	navSettle    time.Duration
	renderSettle time.Duration
	onEnter      func(ctx context.Context, url string)
	wg           sync.WaitGroup
}

// NewNavigationWatcher creates a watcher. onEnter runs on its own goroutine.
func NewNavigationWatcher(navSettle, renderSettle time.Duration, onEnter func(ctx context.Context, url string)) *NavigationWatcher {
	return &NavigationWatcher{
		navSettle:    navSettle,
		renderSettle: renderSettle,
		onEnter:      onEnter,
	}
}

// Observe records url as the current location. It returns true when this
// call scheduled a submission-page callback. The callback is abandoned if
// ctx is cancelled while settling.
func (w *NavigationWatcher) Observe(ctx context.Context, url string) bool {
	w.mu.Lock()
	if url == w.lastURL {
		w.mu.Unlock()
		return false
	}
	w.lastURL = url
	w.mu.Unlock()

	if !SubmissionDetailPattern.MatchString(url) {
		return false
	}

	slog.Debug("submission page entered, waiting to settle", "url", url)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if !sleep(ctx, w.navSettle) || !sleep(ctx, w.renderSettle) {
			return
		}
		w.onEnter(ctx, url)
	}()
	return true
}

// LastURL returns the most recently observed URL.
func (w *NavigationWatcher) LastURL() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastURL
}

// Wait blocks until every scheduled callback has finished or been abandoned.
func (w *NavigationWatcher) Wait() {
	w.wg.Wait()
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
