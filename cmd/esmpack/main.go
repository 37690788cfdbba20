package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/esmpack/internal/bundle"
	"git.home.luguber.info/inful/esmpack/internal/config"
	"git.home.luguber.info/inful/esmpack/internal/errors"
	"git.home.luguber.info/inful/esmpack/internal/report"
	"git.home.luguber.info/inful/esmpack/internal/version"
)

// CLI definition & global flags.
type CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"esmpack.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Bundle  BundleCmd  `cmd:"" default:"withargs" help:"Bundle npm packages into standalone ES modules"`
	Version VersionCmd `cmd:"" help:"Show version and exit"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := parseLogLevel(c.Verbose)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel resolves the slog level from the verbose flag and the
// ESMPACK_LOG_LEVEL environment variable (flag wins).
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch os.Getenv("ESMPACK_LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// BundleCmd implements the 'bundle' command: esmpack LIBRARY... OUTDIR.
type BundleCmd struct {
	Args []string `arg:"" optional:"" name:"library" help:"One or more npm package names followed by an existing output directory"`

	KeepWorkspace bool     `help:"Keep the scratch workspace instead of removing it on exit"`
	External      []string `help:"Extra names excluded from every bundle"`
}

func (b *BundleCmd) Run(root *CLI) error {
	if len(b.Args) < 2 {
		return errors.UsageError(fmt.Sprintf("usage: %s LIBRARY... OUTDIR", programName()))
	}
	libraries := b.Args[:len(b.Args)-1]
	outDir := b.Args[len(b.Args)-1]

	cfg, err := config.Load(root.Config)
	if err != nil {
		return errors.ConfigError(root.Config, err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	summary, err := bundle.New(cfg).Run(ctx, bundle.Request{
		Libraries:     libraries,
		OutDir:        outDir,
		Externals:     b.External,
		KeepWorkspace: b.KeepWorkspace,
	})
	if err != nil {
		return err
	}

	return report.Write(os.Stdout, summary.Artifacts, cfg.Report.ModuleDir)
}

// VersionCmd implements the 'version' command.
type VersionCmd struct{}

func (v *VersionCmd) Run(_ *CLI) error {
	fmt.Printf("esmpack %s (commit %s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
	return nil
}

func programName() string {
	if len(os.Args) > 0 {
		return os.Args[0]
	}
	return "esmpack"
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("esmpack"),
		kong.Description("Bundle npm packages into standalone ECMAScript modules."),
		kong.UsageOnError(),
	)

	if err := ctx.Run(cli); err != nil {
		adapter := errors.NewCLIErrorAdapter(cli.Verbose, nil)
		fmt.Fprintln(os.Stderr, adapter.FormatError(err))
		os.Exit(adapter.ExitCodeFor(err))
	}
}
