package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPackage    = "package"
	KeyVersion    = "version"
	KeyPath       = "path"
	KeyEntrypoint = "entrypoint"
	KeyOutput     = "output"
	KeyStage      = "stage"
	KeyBinary     = "binary"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Package(name string) slog.Attr   { return slog.String(KeyPackage, name) }
func Version(v string) slog.Attr      { return slog.String(KeyVersion, v) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Entrypoint(p string) slog.Attr   { return slog.String(KeyEntrypoint, p) }
func Output(p string) slog.Attr       { return slog.String(KeyOutput, p) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Binary(name string) slog.Attr    { return slog.String(KeyBinary, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
