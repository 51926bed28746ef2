package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-request-kit/internal/domain"
)

func TestBoltStoreRecordsAndExpiresExchanges(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		TTL:             1 * time.Second,
		CleanupInterval: 1 * time.Second,
	}

	storeRaw, err := openBolt(filepath.Join(dir, "history.db"), opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	recent, err := store.Recent(5)
	if err != nil || len(recent) != 0 {
		t.Fatalf("expected empty history, got %v err=%v", recent, err)
	}

	if err := store.Record(domain.Exchange{Method: "GET", URL: "https://api.test/a", StatusCode: 200}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	recent, err = store.Recent(5)
	if err != nil || len(recent) != 1 {
		t.Fatalf("expected one exchange, got %v err=%v", recent, err)
	}
	if recent[0].ID == "" || recent[0].URL != "https://api.test/a" {
		t.Fatalf("unexpected exchange %+v", recent[0])
	}

	// Fast-forward cleanup cadence and trigger expiry.
	store.lastCleanup.Store(time.Now().Add(-2 * time.Second).Unix())
	time.Sleep(1100 * time.Millisecond)

	recent, err = store.Recent(5)
	if err != nil {
		t.Fatalf("Recent after expiry: %v", err)
	}
	if len(recent) != 0 {
		t.Fatalf("expected entry to expire, got %v", recent)
	}
}

func TestBoltStoreRecentNewestFirst(t *testing.T) {
	storeRaw, err := openBolt(filepath.Join(t.TempDir(), "history.db"), normalizeOptions(Options{}))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	defer storeRaw.Close()

	for _, path := range []string{"/1", "/2", "/3"} {
		if err := storeRaw.Record(domain.Exchange{Method: "GET", URL: "https://api.test" + path}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	recent, err := storeRaw.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 || recent[0].URL != "https://api.test/3" || recent[1].URL != "https://api.test/2" {
		t.Fatalf("unexpected order %+v", recent)
	}
}

func TestBoltStoreKeepsProvidedID(t *testing.T) {
	storeRaw, err := openBolt(filepath.Join(t.TempDir(), "nested", "history.db"), normalizeOptions(Options{}))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	defer storeRaw.Close()

	ex := domain.Exchange{ID: "ex-1", Method: "POST", URL: "https://api.test/x", ErrorKind: "Server", Error: "Server: Server Error (Status Code: 500)"}
	if err := storeRaw.Record(ex); err != nil {
		t.Fatalf("Record: %v", err)
	}
	recent, err := storeRaw.Recent(1)
	if err != nil || len(recent) != 1 {
		t.Fatalf("Recent: %v %v", recent, err)
	}
	if recent[0].ID != "ex-1" || !recent[0].Failed() {
		t.Fatalf("unexpected exchange %+v", recent[0])
	}
}

func TestNewStore(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Record(domain.Exchange{}); err != nil {
		t.Fatalf("noop store Record: %v", err)
	}
	if recent, err := store.Recent(3); err != nil || recent != nil {
		t.Fatalf("noop store Recent: %v %v", recent, err)
	}

	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for bbolt without path")
	}
	if _, err := NewStore("redis", "x", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}
