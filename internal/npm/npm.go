// Package npm invokes the package installer to populate the workspace with
// the requested packages. Installation happens once per run, for all packages
// together, so shared dependencies are deduplicated by the installer itself.
package npm

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"git.home.luguber.info/inful/esmpack/internal/errors"
	"git.home.luguber.info/inful/esmpack/internal/logfields"
)

// Installer runs `<binary> install ...` inside a working directory.
type Installer struct {
	binary   string
	registry string
}

// NewInstaller creates an installer using the given binary name or path.
func NewInstaller(binary, registry string) *Installer {
	if binary == "" {
		binary = "npm"
	}
	return &Installer{binary: binary, registry: registry}
}

// Install installs all packages into dir in a single invocation.
// A non-zero exit is fatal; stderr is captured into the returned error.
func (i *Installer) Install(ctx context.Context, dir string, packages []string) error {
	args := []string{"install"}
	if i.registry != "" {
		args = append(args, "--registry="+i.registry)
	}
	args = append(args, packages...)

	slog.Info("Installing packages",
		logfields.Binary(i.binary),
		slog.Int("count", len(packages)),
		logfields.Path(dir))

	start := time.Now()
	cmd := exec.CommandContext(ctx, i.binary, args...)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		diag := strings.TrimSpace(stderr.String())
		if diag != "" {
			err = fmt.Errorf("%w: %s", err, diag)
		}
		return errors.InstallFailed(err)
	}

	slog.Debug("Install completed",
		logfields.Stage("install"),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return nil
}
