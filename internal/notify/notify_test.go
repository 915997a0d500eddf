package notify

import (
	"bytes"
	"context"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yangwenmai/solvesync/internal/model"
)

func TestLog_Notify(t *testing.T) {
	var buf bytes.Buffer
	l := Log{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	l.Notify(context.Background(), "pushed two-sum.py", model.SeverityInfo)
	l.Notify(context.Background(), "Bad credentials", model.SeverityError)

	out := buf.String()
	if !strings.Contains(out, "level=INFO") || !strings.Contains(out, `message="pushed two-sum.py"`) {
		t.Errorf("info line missing: %s", out)
	}
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "severity=error") {
		t.Errorf("error line missing: %s", out)
	}
}

type recorder struct {
	messages []string
}

func (r *recorder) Notify(_ context.Context, message string, _ model.Severity) {
	r.messages = append(r.messages, message)
}

func TestMulti_Notify(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	Multi{a, b}.Notify(context.Background(), "hello", model.SeverityInfo)
	if len(a.messages) != 1 || len(b.messages) != 1 {
		t.Errorf("fan-out = %d/%d, want 1/1", len(a.messages), len(b.messages))
	}
}

func TestHub_BroadcastsToClients(t *testing.T) {
	hub := NewHub("*")
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Notify(context.Background(), "Successfully pushed solution to GitHub: two-sum.py", model.SeverityInfo)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var n model.Notification
	if err := conn.ReadJSON(&n); err != nil {
		t.Fatalf("read: %v", err)
	}
	if n.Type != "notification" || n.Severity != model.SeverityInfo {
		t.Errorf("notification = %+v", n)
	}
	if n.Message != "Successfully pushed solution to GitHub: two-sum.py" {
		t.Errorf("Message = %q", n.Message)
	}
}

func TestHub_RejectsForeignOrigin(t *testing.T) {
	hub := NewHub("chrome-extension://abc")
	srv := httptest.NewServer(hub)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := map[string][]string{"Origin": {"https://evil.example"}}
	if _, _, err := websocket.DefaultDialer.Dial(wsURL, header); err == nil {
		t.Fatal("expected dial to fail for a foreign origin")
	}
}
