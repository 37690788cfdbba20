package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, nodeModules, pkg, content string) {
	t.Helper()
	dir := filepath.Join(nodeModules, filepath.FromSlash(pkg))
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	nodeModules := t.TempDir()
	writeManifest(t, nodeModules, "left-pad", `{"name": "left-pad", "version": "1.3.0"}`)

	m, err := Load(nodeModules, "left-pad")
	require.NoError(t, err)
	require.Equal(t, "left-pad", m.Name)
	require.Equal(t, "1.3.0", m.ResolvedVersion())
}

func TestLoad_ScopedPackage(t *testing.T) {
	nodeModules := t.TempDir()
	writeManifest(t, nodeModules, "@scope/pkg", `{"name": "@scope/pkg", "version": "2.0.1"}`)

	m, err := Load(nodeModules, "@scope/pkg")
	require.NoError(t, err)
	require.Equal(t, "2.0.1", m.ResolvedVersion())
}

func TestLoad_MissingManifestNamesPackage(t *testing.T) {
	_, err := Load(t.TempDir(), "ghost-package")
	require.Error(t, err)
	require.Contains(t, err.Error(), "ghost-package")
}

func TestLoad_MalformedManifest(t *testing.T) {
	nodeModules := t.TempDir()
	writeManifest(t, nodeModules, "broken", `{"name": "broken", "version":`)

	_, err := Load(nodeModules, "broken")
	require.Error(t, err)
	require.Contains(t, err.Error(), "broken")
}

func TestResolvedVersion_DefaultsToUnknown(t *testing.T) {
	nodeModules := t.TempDir()
	writeManifest(t, nodeModules, "no-version", `{"name": "no-version"}`)

	m, err := Load(nodeModules, "no-version")
	require.NoError(t, err)
	require.Equal(t, UnknownVersion, m.ResolvedVersion())
}
