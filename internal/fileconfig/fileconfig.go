// Package fileconfig decodes the small YAML or JSON settings files read at startup.
package fileconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type decoder struct {
	exts []string
	fn   func([]byte, any) error
}

// YAML comes first: it also accepts JSON documents when the extension is unknown.
var decoders = []decoder{
	{exts: []string{".yaml", ".yml"}, fn: yaml.Unmarshal},
	{exts: []string{".json"}, fn: json.Unmarshal},
}

// Load reads path and decodes it into out. what names the file in errors.
func Load(path, what string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("%s file path is empty", what)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s file: %w", what, err)
	}
	return Decode(raw, filepath.Ext(path), what, out)
}

// Decode picks the decoder by ext (".yaml", ".yml", ".json"); an empty ext tries each in turn.
func Decode(data []byte, ext, what string, out any) error {
	ext = strings.ToLower(strings.TrimSpace(ext))
	var errs []error
	for _, d := range decoders {
		if ext != "" && !matches(d.exts, ext) {
			continue
		}
		err := d.fn(data, out)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return fmt.Errorf("%s file extension %q not supported (expected YAML or JSON)", what, ext)
	}
	return fmt.Errorf("%s file format not recognized (expected YAML or JSON): %w", what, errors.Join(errs...))
}

func matches(exts []string, ext string) bool {
	for _, e := range exts {
		if e == ext {
			return true
		}
	}
	return false
}

// TrimMap trims keys and values and drops entries left empty. It returns nil when nothing remains.
func TrimMap(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
