package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-request-kit/internal/config"
	"github.com/samvad-hq/samvad-request-kit/internal/logger"
	"github.com/samvad-hq/samvad-request-kit/pkg/apierror"
	"github.com/samvad-hq/samvad-request-kit/pkg/publishers"
	"github.com/samvad-hq/samvad-request-kit/pkg/requesthandler"
)

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/items":
			_, _ = w.Write([]byte(`[{"id":1}]`))
		case "/secure":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"token expired"}`))
		case "/files/1":
			_, _ = w.Write([]byte("raw-bytes"))
		case "/upload":
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_, _ = w.Write([]byte(`{"files":1}`))
		default:
			raw, _ := io.ReadAll(r.Body)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"echo":` + string(orNull(raw)) + `}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func orNull(raw []byte) []byte {
	if len(raw) == 0 {
		return []byte("null")
	}
	return raw
}

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	return &config.Config{
		AppName:                "requestctl-test",
		BaseURL:                baseURL,
		LogEnabled:             true,
		Timeout:                5 * time.Second,
		HistoryType:            "bbolt",
		HistoryPath:            filepath.Join(t.TempDir(), "history.db"),
		HistoryTTL:             time.Hour,
		HistoryCleanupInterval: time.Hour,
	}
}

func TestRuntimeRecordsHistory(t *testing.T) {
	srv := newAPIServer(t)
	rt, err := NewRuntime(context.Background(), testConfig(t, srv.URL), logger.Nop())
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	defer rt.Close()

	ctx := context.Background()
	res, err := rt.Do(ctx, Invocation{Operation: "get", Endpoint: "/items"})
	if err != nil {
		t.Fatalf("Do GET: %v", err)
	}
	if items, ok := res.Payload.([]any); !ok || len(items) != 1 {
		t.Fatalf("unexpected payload %#v", res.Payload)
	}

	_, err = rt.Do(ctx, Invocation{Operation: OpGet, Endpoint: "/secure"})
	if !apierror.IsKind(err, apierror.KindAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}

	history, err := rt.History(10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 exchanges, got %d", len(history))
	}
	if history[0].StatusCode != 401 || history[0].ErrorKind != "Authentication" {
		t.Fatalf("newest exchange should be the failure, got %+v", history[0])
	}
	if history[1].URL != srv.URL+"/items" || history[1].Failed() {
		t.Fatalf("unexpected exchange %+v", history[1])
	}
}

func TestRuntimeOperations(t *testing.T) {
	srv := newAPIServer(t)
	cfg := testConfig(t, srv.URL)
	cfg.HistoryType = "none"
	rt, err := NewRuntime(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	defer rt.Close()
	ctx := context.Background()

	res, err := rt.Do(ctx, Invocation{Operation: OpPost, Endpoint: "/echo", Body: map[string]any{"a": 1}})
	if err != nil {
		t.Fatalf("Do POST: %v", err)
	}
	if m, ok := res.Payload.(map[string]any); !ok || m["echo"].(map[string]any)["a"] != float64(1) {
		t.Fatalf("unexpected payload %#v", res.Payload)
	}

	res, err = rt.Do(ctx, Invocation{Operation: OpDownload, Endpoint: "/files/1"})
	if err != nil || string(res.Raw) != "raw-bytes" {
		t.Fatalf("Do DOWNLOAD: %q %v", res.Raw, err)
	}

	res, err = rt.Do(ctx, Invocation{
		Operation:  OpUpload,
		Endpoint:   "/upload",
		Files:      []requesthandler.File{{Name: "a.txt", Content: []byte("a")}},
		SingleFile: true,
	})
	if err != nil {
		t.Fatalf("Do UPLOAD: %v", err)
	}

	if _, err := rt.Do(ctx, Invocation{Operation: OpPut, Endpoint: "/echo"}); !apierror.IsKind(err, apierror.KindBase) {
		t.Fatalf("expected base error for PUT without body, got %v", err)
	}
	if _, err := rt.Do(ctx, Invocation{Operation: OpGet, Endpoint: "/items", BaseURL: "https://other.test"}); err == nil {
		t.Fatalf("expected error for custom base url on GET")
	}
	if _, err := rt.Do(ctx, Invocation{Operation: "PATCH", Endpoint: "/items"}); err == nil {
		t.Fatalf("expected error for unsupported operation")
	}
	if history, err := rt.History(5); err != nil || len(history) != 0 {
		t.Fatalf("disabled history should be empty, got %v %v", history, err)
	}
}

func TestRuntimePublishesExchanges(t *testing.T) {
	srv := newAPIServer(t)

	var mu sync.Mutex
	var events []publishers.Event
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var evt publishers.Event
		if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
			t.Errorf("decode event: %v", err)
		}
		mu.Lock()
		events = append(events, evt)
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer sink.Close()

	pubFile := filepath.Join(t.TempDir(), "publishers.yaml")
	raw := "publishers:\n  - id: audit\n    type: http\n    http:\n      url: " + sink.URL + "\n"
	if err := os.WriteFile(pubFile, []byte(raw), 0o644); err != nil {
		t.Fatalf("write publishers file: %v", err)
	}

	cfg := testConfig(t, srv.URL)
	cfg.PublishersFile = pubFile
	rt, err := NewRuntime(context.Background(), cfg, logger.Nop())
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	defer rt.Close()

	if _, err := rt.Do(context.Background(), Invocation{Operation: OpDelete, Endpoint: "/items/1"}); err != nil {
		t.Fatalf("Do DELETE: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(events))
	}
	if events[0].Source != "requestctl-test" || events[0].Exchange.Method != http.MethodDelete {
		t.Fatalf("unexpected event %+v", events[0])
	}
}

func TestRuntimePublishesCancelledExchanges(t *testing.T) {
	srv := newAPIServer(t)

	received := make(chan publishers.Event, 1)
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var evt publishers.Event
		if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
			t.Errorf("decode event: %v", err)
		}
		received <- evt
		w.WriteHeader(http.StatusAccepted)
	}))
	defer sink.Close()

	pubFile := filepath.Join(t.TempDir(), "publishers.yaml")
	raw := "publishers:\n  - id: audit\n    type: http\n    http:\n      url: " + sink.URL + "\n"
	if err := os.WriteFile(pubFile, []byte(raw), 0o644); err != nil {
		t.Fatalf("write publishers file: %v", err)
	}

	cfg := testConfig(t, srv.URL)
	cfg.PublishersFile = pubFile
	rt, err := NewRuntime(context.Background(), cfg, logger.Nop())
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	defer rt.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = rt.Do(ctx, Invocation{Operation: OpGet, Endpoint: "/items"})
	if !apierror.IsKind(err, apierror.KindNetwork) {
		t.Fatalf("expected network error for a cancelled call, got %v", err)
	}

	select {
	case evt := <-received:
		if evt.Exchange.ErrorKind != "Network" || !evt.Exchange.Failed() {
			t.Fatalf("unexpected event %+v", evt)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("cancelled exchange was not published")
	}
}

func TestNewRuntimeValidation(t *testing.T) {
	if _, err := NewRuntime(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
	cfg := testConfig(t, "https://api.test")
	cfg.HistoryType = "redis"
	if _, err := NewRuntime(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for unsupported history type")
	}
	cfg = testConfig(t, "not a url")
	cfg.HistoryType = "none"
	if _, err := NewRuntime(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for invalid base url")
	}
}
