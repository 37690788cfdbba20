// Package manifest reads installed package manifests (package.json) to
// discover the version string used for deterministic output naming.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/esmpack/internal/errors"
)

// UnknownVersion is the fallback when a manifest lacks a version field.
// Two unrelated unversioned packages would then collide on output name;
// the pipeline logs a warning when this fallback is taken.
const UnknownVersion = "unknown"

// PackageManifest models the fields read from package.json.
type PackageManifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Load reads the manifest of pkg from the installed-package tree rooted at
// nodeModulesDir. A missing manifest means installation silently did not
// produce the expected layout and is fatal.
func Load(nodeModulesDir, pkg string) (*PackageManifest, error) {
	path := filepath.Join(nodeModulesDir, filepath.FromSlash(pkg), "package.json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ManifestNotFound(pkg, err)
		}
		return nil, fmt.Errorf("failed to read manifest for %s: %w", pkg, err)
	}

	var m PackageManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest for %s: %w", pkg, err)
	}
	return &m, nil
}

// ResolvedVersion returns the declared version, or UnknownVersion when the
// field is absent.
func (m *PackageManifest) ResolvedVersion() string {
	if m.Version == "" {
		return UnknownVersion
	}
	return m.Version
}
