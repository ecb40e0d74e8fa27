package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyTarget     = "target"
	KeyStep       = "step"
	KeyCommand    = "command"
	KeyOutcome    = "outcome"
	KeyDurationMS = "duration_ms"
	KeyScheduleID = "schedule_id"
	KeySchedule   = "schedule_name"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyArtifact   = "artifact"
	KeyVersion    = "version"
	KeyURL        = "url"
	KeyName       = "name"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Target(t string) slog.Attr       { return slog.String(KeyTarget, t) }
func Step(name string) slog.Attr      { return slog.String(KeyStep, name) }
func Command(c string) slog.Attr      { return slog.String(KeyCommand, c) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func ScheduleID(id string) slog.Attr  { return slog.String(KeyScheduleID, id) }
func ScheduleName(n string) slog.Attr { return slog.String(KeySchedule, n) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Artifact(a string) slog.Attr     { return slog.String(KeyArtifact, a) }
func Version(v string) slog.Attr      { return slog.String(KeyVersion, v) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Name(n string) slog.Attr         { return slog.String(KeyName, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
