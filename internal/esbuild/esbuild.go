// Package esbuild drives the external bundler binary in its two roles:
// metafile-only analysis to discover a package's resolved entrypoint, and
// module emit to produce the final ECMAScript bundle.
package esbuild

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/esmpack/internal/errors"
	"git.home.luguber.info/inful/esmpack/internal/logfields"
)

// Client invokes the bundler binary. All invocations run with the workspace
// as working directory so relative paths in the metafile stay stable.
type Client struct {
	binary string
	target string
}

// NewClient creates a bundler client using the given binary name or path.
func NewClient(binary, target string) *Client {
	if binary == "" {
		binary = "esbuild"
	}
	return &Client{binary: binary, target: target}
}

// ResolveEntrypoint discovers the module path the bundler resolves pkg to.
// It writes a probe module importing pkg by name into workDir, bundles it in
// analysis mode, and reads the probe's first import from the metafile. The
// probe's own bundle output is discarded.
//
// Package names may resolve to internal module paths that differ from the
// public name (conditional exports, browser/module fields); asking the
// bundler keeps this correct across packaging conventions.
func (c *Client) ResolveEntrypoint(ctx context.Context, workDir, pkg string) (string, error) {
	probeName := fmt.Sprintf("__probe-%s.js", sanitize(pkg))
	probePath := filepath.Join(workDir, probeName)
	metaPath := probePath + ".meta.json"
	discardPath := probePath + ".out.js"

	probe := fmt.Sprintf("import %q;\n", pkg)
	if err := os.WriteFile(probePath, []byte(probe), 0o644); err != nil {
		return "", errors.WorkspaceError("write probe", err)
	}

	args := []string{
		probeName,
		"--bundle",
		"--metafile=" + metaPath,
		"--outfile=" + discardPath,
	}
	if err := c.run(ctx, workDir, args); err != nil {
		return "", errors.BundlerFailed("analyze", err)
	}

	data, err := os.ReadFile(metaPath)
	if err != nil {
		return "", errors.EntrypointNotFound(pkg, err)
	}

	meta, err := ParseMetafile(data)
	if err != nil {
		return "", errors.EntrypointNotFound(pkg, err)
	}

	entry, err := meta.FirstImportOf(probeName)
	if err != nil {
		return "", errors.EntrypointNotFound(pkg, err)
	}

	slog.Debug("Resolved entrypoint", logfields.Package(pkg), logfields.Entrypoint(entry))
	return entry, nil
}

// Bundle emits a self-contained ECMAScript module for entrypoint at outFile,
// excluding every name in externals from the bundle.
func (c *Client) Bundle(ctx context.Context, workDir, entrypoint, outFile string, externals []string, sourceMap bool) error {
	args := []string{
		entrypoint,
		"--bundle",
		"--format=esm",
		"--outfile=" + outFile,
	}
	if sourceMap {
		args = append(args, "--sourcemap")
	}
	if c.target != "" {
		args = append(args, "--target="+c.target)
	}
	for _, ext := range externals {
		args = append(args, "--external:"+ext)
	}

	slog.Info("Bundling module",
		logfields.Entrypoint(entrypoint),
		logfields.Output(outFile),
		slog.Int("externals", len(externals)))

	if err := c.run(ctx, workDir, args); err != nil {
		return errors.BundlerFailed("emit", err)
	}
	return nil
}

// run executes the bundler, capturing stderr into the returned error.
func (c *Client) run(ctx context.Context, dir string, args []string) error {
	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		diag := strings.TrimSpace(stderr.String())
		if diag != "" {
			return fmt.Errorf("%w: %s", err, diag)
		}
		return err
	}
	return nil
}

// sanitize maps a package name to a filesystem-safe fragment for probe files.
func sanitize(pkg string) string {
	return strings.NewReplacer("/", "-", "@", "").Replace(pkg)
}
