package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"infocommander/internal/model"
)

func testLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatch(t *testing.T) {
	var got model.DeliveryPayload
	received := false

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = true
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	d := New(ts.URL, nil, testLog())
	d.Dispatch(context.Background(), model.DeliveryPayload{
		Target:    "post_sports",
		Content:   " ▌ 快訊內容",
		ImageURL:  "https://img.example.com/a.jpg",
		Timestamp: "2025-06-10T12:00:00Z",
	})

	if !received {
		t.Fatal("webhook was not called")
	}
	want := model.DeliveryPayload{
		Target:    "post_sports",
		Content:   " ▌ 快訊內容",
		ImageURL:  "https://img.example.com/a.jpg",
		Timestamp: "2025-06-10T12:00:00Z",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatchFillsTimestamp(t *testing.T) {
	var got model.DeliveryPayload
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	d := New(ts.URL, nil, testLog())
	d.Dispatch(context.Background(), model.DeliveryPayload{Target: "auto_daily", Content: "x"})

	if got.Timestamp == "" {
		t.Error("timestamp was not filled in")
	}
}

func TestDispatchNeverSurfacesFailures(t *testing.T) {
	// Server that always rejects; Dispatch must simply log and return.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	d := New(ts.URL, nil, testLog())
	d.Dispatch(context.Background(), model.DeliveryPayload{Target: "t", Content: "c"})

	// Unreachable host: same contract.
	d = New("http://127.0.0.1:1/hook", nil, testLog())
	d.Dispatch(context.Background(), model.DeliveryPayload{Target: "t", Content: "c"})
}

func TestDispatchDisabled(t *testing.T) {
	d := New("", nil, testLog())
	if d.Enabled() {
		t.Error("Enabled() = true for empty URL")
	}
	// Must be a no-op, not a panic.
	d.Dispatch(context.Background(), model.DeliveryPayload{Target: "t"})
}
