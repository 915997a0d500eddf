package trigger

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestDetector_Accepted(t *testing.T) {
	tests := []struct {
		name       string
		fragments  []string
		wantReason string
		wantOK     bool
	}{
		{
			name:       "accepted notification",
			fragments:  []string{`<div class="toast"><div class="notification-content">Submission Accepted</div></div>`},
			wantReason: ReasonNotification,
			wantOK:     true,
		},
		{
			name:       "notification node itself",
			fragments:  []string{`<div class="notification-content">Accepted</div>`},
			wantReason: ReasonNotification,
			wantOK:     true,
		},
		{
			name:      "wrong answer notification",
			fragments: []string{`<div class="notification-content">Wrong Answer</div>`},
			wantOK:    false,
		},
		{
			name:       "success icon",
			fragments:  []string{`<span><i class="success-icon"></i></span>`},
			wantReason: ReasonSuccessMark,
			wantOK:     true,
		},
		{
			name:       "data-status attribute",
			fragments:  []string{`<p>unrelated</p>`, `<div data-status="success">done</div>`},
			wantReason: ReasonSuccessMark,
			wantOK:     true,
		},
		{
			name:      "text only",
			fragments: []string{`Accepted`},
			wantOK:    false,
		},
		{
			name:      "empty batch",
			fragments: nil,
			wantOK:    false,
		},
	}

	d := NewDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := ParseFragments(tt.fragments)
			if err != nil {
				t.Fatalf("ParseFragments: %v", err)
			}
			reason, ok := d.Accepted(batch)
			if ok != tt.wantOK || reason != tt.wantReason {
				t.Errorf("Accepted = (%q, %v), want (%q, %v)", reason, ok, tt.wantReason, tt.wantOK)
			}
		})
	}
}

func TestDetector_NotificationCheckedBeforeSuccessMarker(t *testing.T) {
	batch, err := ParseFragments([]string{
		`<div><span class="text-success">ok</span><div class="notification-content">Accepted</div></div>`,
	})
	if err != nil {
		t.Fatal(err)
	}
	reason, ok := NewDetector().Accepted(batch)
	if !ok || reason != ReasonNotification {
		t.Errorf("Accepted = (%q, %v), want notification", reason, ok)
	}
}

func TestSubmissionDetailPattern(t *testing.T) {
	tests := map[string]bool{
		"https://leetcode.com/problems/two-sum/submissions/1234567/": true,
		"https://leetcode.com/problems/two-sum/submissions/1234567":  true,
		"https://leetcode.com/submissions/detail/42/":                true,
		"https://leetcode.com/submissions/detail/42/?from=x":         true,
		"https://leetcode.com/problems/two-sum/submissions/":         false,
		"https://leetcode.com/problems/two-sum/":                     false,
	}
	for u, want := range tests {
		if got := SubmissionDetailPattern.MatchString(u); got != want {
			t.Errorf("match(%q) = %v, want %v", u, got, want)
		}
	}
}

type enterRecorder struct {
	mu   sync.Mutex
	urls []string
}

func (r *enterRecorder) record(_ context.Context, url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, url)
}

func (r *enterRecorder) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.urls...)
}

func TestNavigationWatcher_FiresOncePerEntry(t *testing.T) {
	rec := &enterRecorder{}
	w := NewNavigationWatcher(5*time.Millisecond, 5*time.Millisecond, rec.record)
	ctx := context.Background()

	detail := "https://leetcode.com/problems/two-sum/submissions/1/"
	if w.Observe(ctx, "https://leetcode.com/problems/two-sum/") {
		t.Error("problem page should not schedule a callback")
	}
	if !w.Observe(ctx, detail) {
		t.Error("submission page should schedule a callback")
	}
	if w.Observe(ctx, detail) {
		t.Error("same URL again should not schedule a callback")
	}
	w.Wait()

	if got := rec.got(); len(got) != 1 || got[0] != detail {
		t.Errorf("callbacks = %v, want [%s]", got, detail)
	}
	if w.LastURL() != detail {
		t.Errorf("LastURL = %q", w.LastURL())
	}

	// Leaving and re-entering fires again.
	w.Observe(ctx, "https://leetcode.com/problems/two-sum/")
	w.Observe(ctx, detail)
	w.Wait()
	if got := rec.got(); len(got) != 2 {
		t.Errorf("callbacks after re-entry = %d, want 2", len(got))
	}
}

func TestNavigationWatcher_WaitsForBothDelays(t *testing.T) {
	rec := &enterRecorder{}
	w := NewNavigationWatcher(30*time.Millisecond, 30*time.Millisecond, rec.record)

	start := time.Now()
	w.Observe(context.Background(), "https://leetcode.com/submissions/detail/7/")
	w.Wait()

	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Errorf("callback after %v, want at least 60ms", elapsed)
	}
	if len(rec.got()) != 1 {
		t.Errorf("callbacks = %d, want 1", len(rec.got()))
	}
}

func TestNavigationWatcher_CancelledWhileSettling(t *testing.T) {
	rec := &enterRecorder{}
	w := NewNavigationWatcher(time.Hour, time.Hour, rec.record)

	ctx, cancel := context.WithCancel(context.Background())
	w.Observe(ctx, "https://leetcode.com/submissions/detail/7/")
	cancel()
	w.Wait()

	if len(rec.got()) != 0 {
		t.Errorf("callbacks = %v, want none after cancel", rec.got())
	}
}

func TestSnapshotCache(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewSnapshotCache(time.Minute)
	c.now = func() time.Time { return now }

	c.Put("u1", "<html>old</html>")
	c.Put("u1", "<html>new</html>")
	got, ok := c.Latest("u1")
	if !ok || got.HTML != "<html>new</html>" {
		t.Errorf("Latest = (%q, %v), want newest snapshot", got.HTML, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Latest("u1"); ok {
		t.Error("expired snapshot should not be returned")
	}

	c.Put("u2", "<html></html>")
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1 after expired entries are dropped", c.Len())
	}
}
