package esbuild

import (
	"encoding/json"
	"fmt"
	"path/filepath"
)

// Metafile models the slice of the esbuild metafile JSON this tool reads.
// Only inputs and their import paths are consumed; everything else in the
// document is ignored on purpose.
type Metafile struct {
	Inputs map[string]MetafileInput `json:"inputs"`
}

// MetafileInput represents an input file in the metafile
type MetafileInput struct {
	Bytes   int              `json:"bytes"`
	Imports []MetafileImport `json:"imports"`
}

// MetafileImport represents an import in the metafile
type MetafileImport struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	External bool   `json:"external,omitempty"`
}

// ParseMetafile decodes a metafile document, validating that the inputs
// section is present.
func ParseMetafile(data []byte) (*Metafile, error) {
	var meta Metafile
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metafile: %w", err)
	}
	if meta.Inputs == nil {
		return nil, fmt.Errorf("metafile has no inputs section")
	}
	return &meta, nil
}

// FirstImportOf returns the path of the first import recorded for the input
// file whose base name matches fileName. Metafile input keys are paths
// relative to the bundler's working directory, so matching is by base name.
func (m *Metafile) FirstImportOf(fileName string) (string, error) {
	for key, input := range m.Inputs {
		if filepath.Base(key) != fileName {
			continue
		}
		if len(input.Imports) == 0 {
			return "", fmt.Errorf("metafile input %s records no imports", key)
		}
		return input.Imports[0].Path, nil
	}
	return "", fmt.Errorf("metafile records no input named %s", fileName)
}
