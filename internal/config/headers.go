package config

import (
	"github.com/samvad-hq/samvad-request-kit/internal/fileconfig"
)

// headersFile is the structure of the additional-headers file.
type headersFile struct {
	Headers map[string]string `json:"headers" yaml:"headers"`
}

// LoadHeaders reads extra request headers from a YAML or JSON file.
func LoadHeaders(path string) (map[string]string, error) {
	var parsed headersFile
	if err := fileconfig.Load(path, "headers", &parsed); err != nil {
		return nil, err
	}
	return fileconfig.TrimMap(parsed.Headers), nil
}
