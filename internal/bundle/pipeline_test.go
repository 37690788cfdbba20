package bundle

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/esmpack/internal/config"
)

// npmStub fakes the installer: it creates node_modules/<pkg>/package.json for
// every package argument, inside the working directory it is invoked from.
const npmStub = `#!/bin/sh
shift
for p in "$@"; do
  case "$p" in --*) continue ;; esac
  mkdir -p "node_modules/$p"
  printf '{"name":"%s","version":"1.2.3"}\n' "$p" > "node_modules/$p/package.json"
done
`

// esbuildStub fakes both bundler modes: analysis runs write a metafile naming
// the probe's import, emit runs create the outfile and its source map. Args
// of every invocation are appended to the file named by STUB_ARGS_FILE.
const esbuildStub = `#!/bin/sh
printf '%s\n' "$@" >> "$STUB_ARGS_FILE"
printf -- '--\n' >> "$STUB_ARGS_FILE"
entry="$1"
mf=""
out=""
sm=""
for a in "$@"; do
  case "$a" in
    --metafile=*) mf="${a#--metafile=}" ;;
    --outfile=*) out="${a#--outfile=}" ;;
    --sourcemap) sm=1 ;;
  esac
done
if [ -n "$mf" ]; then
  name=$(sed -n 's/^import "\(.*\)";$/\1/p' "$entry")
  printf '{"inputs":{"%s":{"imports":[{"path":"node_modules/%s/index.js","kind":"import-statement"}]}}}' "$entry" "$name" > "$mf"
fi
if [ -n "$out" ]; then
  : > "$out"
  [ -n "$sm" ] && : > "$out.map"
fi
exit 0
`

func stubConfig(t *testing.T, npmScript, esbuildScript string) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()

	npmBin := filepath.Join(dir, "npm-stub")
	require.NoError(t, os.WriteFile(npmBin, []byte(npmScript), 0o755))

	esbuildBin := filepath.Join(dir, "esbuild-stub")
	require.NoError(t, os.WriteFile(esbuildBin, []byte(esbuildScript), 0o755))

	argsFile := filepath.Join(dir, "args")
	t.Setenv("STUB_ARGS_FILE", argsFile)

	cfg := config.Default()
	cfg.NPM.Binary = npmBin
	cfg.Esbuild.Binary = esbuildBin
	return cfg, argsFile
}

func TestRun_ProducesOneArtifactPerLibrary(t *testing.T) {
	cfg, _ := stubConfig(t, npmStub, esbuildStub)
	outDir := t.TempDir()

	summary, err := New(cfg).Run(context.Background(), Request{
		Libraries: []string{"left-pad", "is-odd"},
		OutDir:    outDir,
	})
	require.NoError(t, err)
	require.Len(t, summary.Artifacts, 2)

	require.Equal(t, "left-pad", summary.Artifacts[0].Library)
	require.Equal(t, "left-pad-1.2.3.js", summary.Artifacts[0].File)
	require.Equal(t, "is-odd", summary.Artifacts[1].Library)
	require.Equal(t, "is-odd-1.2.3.js", summary.Artifacts[1].File)

	for _, a := range summary.Artifacts {
		_, err := os.Stat(filepath.Join(outDir, a.File))
		require.NoError(t, err)
		_, err = os.Stat(filepath.Join(outDir, a.File+".map"))
		require.NoError(t, err)
	}
}

func TestRun_RelativeOutDirResolvesAgainstCallerCwd(t *testing.T) {
	cfg, _ := stubConfig(t, npmStub, esbuildStub)

	base := t.TempDir()
	origWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(base))
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	require.NoError(t, os.Mkdir("dist", 0o750))

	// The bundler runs inside the workspace; a relative output directory must
	// still land next to the caller, not inside the scratch dir.
	summary, err := New(cfg).Run(context.Background(), Request{
		Libraries: []string{"left-pad"},
		OutDir:    "dist",
	})
	require.NoError(t, err)
	require.Len(t, summary.Artifacts, 1)

	_, err = os.Stat(filepath.Join(base, "dist", "left-pad-1.2.3.js"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(base, "dist", "left-pad-1.2.3.js.map"))
	require.NoError(t, err)
}

func TestRun_DeterministicNamesAcrossRuns(t *testing.T) {
	cfg, _ := stubConfig(t, npmStub, esbuildStub)

	var names [2][]string
	for i := range names {
		summary, err := New(cfg).Run(context.Background(), Request{
			Libraries: []string{"left-pad", "@scope/pkg"},
			OutDir:    t.TempDir(),
		})
		require.NoError(t, err)
		for _, a := range summary.Artifacts {
			names[i] = append(names[i], a.File)
		}
	}
	require.Equal(t, names[0], names[1])
}

func TestRun_ExternalsExcludeSelfIncludeOthers(t *testing.T) {
	cfg, argsFile := stubConfig(t, npmStub, esbuildStub)
	outDir := t.TempDir()

	_, err := New(cfg).Run(context.Background(), Request{
		Libraries: []string{"left-pad", "is-odd"},
		OutDir:    outDir,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)

	var leftPadEmit, isOddEmit string
	for _, invocation := range strings.Split(string(data), "--\n") {
		if !strings.Contains(invocation, "--format=esm") {
			continue
		}
		switch {
		case strings.Contains(invocation, "left-pad-1.2.3.js"):
			leftPadEmit = invocation
		case strings.Contains(invocation, "is-odd-1.2.3.js"):
			isOddEmit = invocation
		}
	}
	require.NotEmpty(t, leftPadEmit)
	require.NotEmpty(t, isOddEmit)

	require.Contains(t, leftPadEmit, "--external:is-odd")
	require.NotContains(t, leftPadEmit, "--external:left-pad")
	require.Contains(t, isOddEmit, "--external:left-pad")
	require.NotContains(t, isOddEmit, "--external:is-odd")
}

func TestRun_MissingOutDirFailsBeforeSideEffects(t *testing.T) {
	cfg, argsFile := stubConfig(t, npmStub, esbuildStub)

	_, err := New(cfg).Run(context.Background(), Request{
		Libraries: []string{"left-pad"},
		OutDir:    filepath.Join(t.TempDir(), "does-not-exist"),
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "output directory")

	// Neither tool was invoked.
	_, statErr := os.Stat(argsFile)
	require.True(t, os.IsNotExist(statErr))
}

func TestRun_OutDirStatFailureNotReportedAsMissing(t *testing.T) {
	cfg, _ := stubConfig(t, npmStub, esbuildStub)

	// A path component that is a regular file makes stat fail with an error
	// other than "not exist"; the diagnostic must not claim the directory is
	// merely missing.
	file := filepath.Join(t.TempDir(), "plain-file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := New(cfg).Run(context.Background(), Request{
		Libraries: []string{"left-pad"},
		OutDir:    filepath.Join(file, "dist"),
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "inspect output directory")
	require.NotContains(t, err.Error(), "output directory does not exist")
}

func TestRun_NoLibrariesIsUsageError(t *testing.T) {
	cfg, _ := stubConfig(t, npmStub, esbuildStub)

	_, err := New(cfg).Run(context.Background(), Request{OutDir: t.TempDir()})
	require.Error(t, err)
	require.Contains(t, err.Error(), "usage")
}

func TestRun_MissingManifestAbortsWithoutBundling(t *testing.T) {
	// Installer stub that silently skips ghost-package.
	skippingNpm := `#!/bin/sh
shift
for p in "$@"; do
  case "$p" in --*|ghost-package) continue ;; esac
  mkdir -p "node_modules/$p"
  printf '{"name":"%s","version":"1.2.3"}\n' "$p" > "node_modules/$p/package.json"
done
`
	cfg, argsFile := stubConfig(t, skippingNpm, esbuildStub)
	outDir := t.TempDir()

	_, err := New(cfg).Run(context.Background(), Request{
		Libraries: []string{"left-pad", "ghost-package"},
		OutDir:    outDir,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "ghost-package")

	// No emit invocation was attempted for the broken package.
	data, readErr := os.ReadFile(argsFile)
	require.NoError(t, readErr)
	require.NotContains(t, string(data), "ghost-package-")

	// The earlier package's output is left in place (no partial cleanup).
	_, err = os.Stat(filepath.Join(outDir, "left-pad-1.2.3.js"))
	require.NoError(t, err)
}

func TestRun_InstallerFailureIsFatal(t *testing.T) {
	failingNpm := "#!/bin/sh\necho 'network down' >&2\nexit 1\n"
	cfg, _ := stubConfig(t, failingNpm, esbuildStub)

	_, err := New(cfg).Run(context.Background(), Request{
		Libraries: []string{"left-pad"},
		OutDir:    t.TempDir(),
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "network down")
}

func TestRun_WorkspaceRemovedAfterRun(t *testing.T) {
	cfg, _ := stubConfig(t, npmStub, esbuildStub)
	wsBase := t.TempDir()

	_, err := New(cfg).Run(context.Background(), Request{
		Libraries:     []string{"left-pad"},
		OutDir:        t.TempDir(),
		WorkspaceBase: wsBase,
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(wsBase)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRun_KeepWorkspaceRetainsDirectory(t *testing.T) {
	cfg, _ := stubConfig(t, npmStub, esbuildStub)
	wsBase := t.TempDir()

	_, err := New(cfg).Run(context.Background(), Request{
		Libraries:     []string{"left-pad"},
		OutDir:        t.TempDir(),
		WorkspaceBase: wsBase,
		KeepWorkspace: true,
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(wsBase)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestOutputFileName(t *testing.T) {
	require.Equal(t, "left-pad-1.3.0.js", OutputFileName("left-pad", "1.3.0"))
	require.Equal(t, "@scope-pkg-2.0.1.js", OutputFileName("@scope/pkg", "2.0.1"))
	require.Equal(t, "no-version-unknown.js", OutputFileName("no-version", "unknown"))
}

func TestExternalsFor(t *testing.T) {
	libs := []string{"a", "b", "c"}

	require.Equal(t, []string{"b", "c"}, externalsFor(libs, 0))
	require.Equal(t, []string{"a", "c"}, externalsFor(libs, 1))
	require.Equal(t, []string{"a", "b", "react"}, externalsFor(libs, 2, []string{"react"}))
}
