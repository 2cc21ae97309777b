package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/binarysort/extsort/internal/diag"
)

func TestWebhookClientNotifyPostsStats(t *testing.T) {
	var received completionPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL)
	stats := diag.Stats{ElapsedSeconds: 3, PeakRSSMB: 128, AvgMBPerSecond: 42}
	if err := c.Notify(context.Background(), "run-123", stats); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if received.RunID != "run-123" || received.ElapsedSeconds != 3 || received.PeakRSSMB != 128 || received.AvgMBPerSecond != 42 {
		t.Errorf("unexpected payload: %+v", received)
	}
}

func TestWebhookClientNotifyErrorOnUnreachableHost(t *testing.T) {
	c := New("http://127.0.0.1:0/completion")
	err := c.Notify(context.Background(), "run-1", diag.Stats{})
	if err == nil {
		t.Fatal("expected an error posting to an unreachable host")
	}
}
