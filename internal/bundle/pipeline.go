// Package bundle orchestrates the linear pipeline:
// Validate -> Install -> {Discover -> Version -> Bundle} per package.
// Packages are processed sequentially in request order; the first failure
// aborts the run. Outputs written by earlier iterations stay on disk.
package bundle

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/esmpack/internal/config"
	"git.home.luguber.info/inful/esmpack/internal/errors"
	"git.home.luguber.info/inful/esmpack/internal/esbuild"
	"git.home.luguber.info/inful/esmpack/internal/logfields"
	"git.home.luguber.info/inful/esmpack/internal/manifest"
	"git.home.luguber.info/inful/esmpack/internal/npm"
	"git.home.luguber.info/inful/esmpack/internal/workspace"
)

// Request describes one bundling run.
type Request struct {
	Libraries     []string
	OutDir        string
	Externals     []string // names excluded from every bundle, on top of the other requested libraries
	KeepWorkspace bool
	WorkspaceBase string // defaults to os.TempDir
}

// Artifact maps one requested library to its generated bundle file.
type Artifact struct {
	Library string
	Version string
	File    string // file name inside OutDir
}

// Summary is the completed library -> output mapping, in request order.
type Summary struct {
	OutDir    string
	Artifacts []Artifact
	Duration  time.Duration
}

// Pipeline wires the installer and bundler clients to a configuration.
type Pipeline struct {
	cfg       *config.Config
	installer *npm.Installer
	bundler   *esbuild.Client
}

// New creates a pipeline from configuration.
func New(cfg *config.Config) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		installer: npm.NewInstaller(cfg.NPM.Binary, cfg.NPM.Registry),
		bundler:   esbuild.NewClient(cfg.Esbuild.Binary, cfg.Esbuild.Target),
	}
}

// Run executes the whole pipeline. The scratch workspace is removed on every
// exit path unless the request retains it.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Summary, error) {
	start := time.Now()

	if len(req.Libraries) == 0 {
		return nil, errors.UsageError("no libraries requested")
	}
	info, err := os.Stat(req.OutDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.OutputDirMissing(req.OutDir)
		}
		return nil, errors.OutputDirInaccessible(req.OutDir, err)
	}
	if !info.IsDir() {
		return nil, errors.OutputDirMissing(req.OutDir)
	}

	// The bundler runs with the workspace as working directory, so the output
	// directory must be absolute before any relative path leaves this scope.
	outDir, err := filepath.Abs(req.OutDir)
	if err != nil {
		return nil, errors.OutputDirInaccessible(req.OutDir, err)
	}
	req.OutDir = outDir

	ws := workspace.NewManager(req.WorkspaceBase)
	if err := ws.Create(); err != nil {
		return nil, errors.WorkspaceError("create", err)
	}
	if req.KeepWorkspace {
		ws.Retain()
	}
	defer func() {
		if err := ws.Cleanup(); err != nil {
			slog.Warn("Failed to cleanup workspace", logfields.Error(err))
		}
	}()

	if err := p.installer.Install(ctx, ws.Path(), req.Libraries); err != nil {
		return nil, err
	}

	summary := &Summary{OutDir: req.OutDir}
	for i, lib := range req.Libraries {
		artifact, err := p.processLibrary(ctx, ws, req, i, lib)
		if err != nil {
			return nil, err
		}
		summary.Artifacts = append(summary.Artifacts, *artifact)
	}

	summary.Duration = time.Since(start)
	slog.Info("Bundling completed",
		slog.Int("packages", len(summary.Artifacts)),
		logfields.DurationMS(float64(summary.Duration.Milliseconds())))
	return summary, nil
}

// processLibrary runs Discover -> Version -> Bundle for one library.
func (p *Pipeline) processLibrary(ctx context.Context, ws *workspace.Manager, req Request, index int, lib string) (*Artifact, error) {
	slog.Info("Processing package", logfields.Package(lib))

	entry, err := p.bundler.ResolveEntrypoint(ctx, ws.Path(), lib)
	if err != nil {
		return nil, err
	}

	m, err := manifest.Load(ws.NodeModulesDir(), lib)
	if err != nil {
		return nil, err
	}
	version := m.ResolvedVersion()
	if version == manifest.UnknownVersion {
		slog.Warn("Manifest declares no version; output name may collide",
			logfields.Package(lib))
	}

	file := OutputFileName(lib, version)
	externals := externalsFor(req.Libraries, index, req.Externals, p.cfg.Bundle.Externals)

	err = p.bundler.Bundle(ctx, ws.Path(), entry, filepath.Join(req.OutDir, file),
		externals, p.cfg.SourceMapEnabled())
	if err != nil {
		return nil, err
	}

	return &Artifact{Library: lib, Version: version, File: file}, nil
}

// OutputFileName derives the deterministic bundle file name for a library:
// path separators in scoped names are replaced so the name stays flat.
func OutputFileName(lib, version string) string {
	return strings.ReplaceAll(lib, "/", "-") + "-" + version + ".js"
}

// externalsFor collects every requested library except the one at self, then
// any extra exclusions. The library never excludes itself.
func externalsFor(libs []string, self int, extra ...[]string) []string {
	var out []string
	for i, lib := range libs {
		if i == self {
			continue
		}
		out = append(out, lib)
	}
	for _, set := range extra {
		out = append(out, set...)
	}
	return out
}
