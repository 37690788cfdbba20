package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/esmpack/internal/logfields"
)

// Manager handles the scratch workspace for one invocation. Workspaces are
// never reused across runs; each Create produces a fresh uniquely-named
// directory.
type Manager struct {
	baseDir string
	tempDir string
	retain  bool
}

// NewManager creates a workspace manager rooted at baseDir (os.TempDir when empty).
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir}
}

// Retain marks the workspace to be kept on Cleanup (debugging aid).
func (m *Manager) Retain() {
	m.retain = true
}

// Create creates a fresh uniquely-named workspace directory.
func (m *Manager) Create() error {
	tempDir := filepath.Join(m.baseDir, fmt.Sprintf("esmpack-%s", uuid.NewString()))

	if err := os.MkdirAll(tempDir, 0o750); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}

	m.tempDir = tempDir
	slog.Debug("Created workspace", logfields.Path(tempDir))
	return nil
}

// Path returns the path to the workspace directory.
func (m *Manager) Path() string {
	return m.tempDir
}

// NodeModulesDir returns the installed-package tree root inside the workspace.
func (m *Manager) NodeModulesDir() string {
	if m.tempDir == "" {
		return ""
	}
	return filepath.Join(m.tempDir, "node_modules")
}

// Cleanup removes the workspace directory unless it was retained.
// Safe to call when Create never ran or already cleaned up.
func (m *Manager) Cleanup() error {
	if m.tempDir == "" {
		return nil
	}

	if m.retain {
		slog.Info("Keeping workspace for inspection", logfields.Path(m.tempDir))
		return nil
	}

	if err := os.RemoveAll(m.tempDir); err != nil {
		return fmt.Errorf("failed to cleanup workspace: %w", err)
	}

	slog.Debug("Cleaned up workspace", logfields.Path(m.tempDir))
	m.tempDir = ""
	return nil
}
