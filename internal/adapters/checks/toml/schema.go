package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int           `toml:"version"`
	Checks  []checkSchema `toml:"checks"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported checks schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type checkSchema struct {
	Name       string   `toml:"name"`
	Commands   []string `toml:"commands"`
	Pattern    string   `toml:"pattern"`
	Column     string   `toml:"column"`
	FileSuffix string   `toml:"file_suffix"`
	OKValues   []string `toml:"ok_values,omitempty"`
}
