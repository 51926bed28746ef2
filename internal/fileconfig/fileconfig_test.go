package fileconfig

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

type sample struct {
	Headers map[string]string `json:"headers" yaml:"headers"`
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"h.yaml": "headers:\n  X-A: one\n",
		"h.yml":  "headers: {X-A: one}\n",
		"h.json": `{"headers":{"X-A":"one"}}`,
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		var got sample
		if err := Load(path, "headers", &got); err != nil {
			t.Fatalf("Load %s: %v", name, err)
		}
		if got.Headers["X-A"] != "one" {
			t.Fatalf("%s decoded to %#v", name, got)
		}
	}
}

func TestDecodeWithoutExtensionAcceptsJSON(t *testing.T) {
	var got sample
	if err := Decode([]byte(`{"headers":{"k":"v"}}`), "", "headers", &got); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Headers["k"] != "v" {
		t.Fatalf("unexpected %#v", got)
	}
}

func TestDecodeErrors(t *testing.T) {
	var got sample
	if err := Decode([]byte("headers: ["), ".yaml", "headers", &got); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}
	if err := Decode([]byte("{}"), ".toml", "headers", &got); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
	if err := Load(" ", "headers", &got); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "headers", &got); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestTrimMap(t *testing.T) {
	got := TrimMap(map[string]string{" X-A ": " 1 ", "": "x", "X-B": "  "})
	if !reflect.DeepEqual(got, map[string]string{"X-A": "1"}) {
		t.Fatalf("TrimMap = %#v", got)
	}
	if TrimMap(map[string]string{"k": ""}) != nil {
		t.Fatalf("expected nil when nothing remains")
	}
}
