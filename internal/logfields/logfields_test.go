package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"RunID", KeyRunID, "r1", RunID("r1")},
		{"Target", KeyTarget, "cov", Target("cov")},
		{"Step", KeyStep, "upload", Step("upload")},
		{"Command", KeyCommand, "go test", Command("go test")},
		{"Outcome", KeyOutcome, "success", Outcome("success")},
		{"ScheduleID", KeyScheduleID, "sch1", ScheduleID("sch1")},
		{"ScheduleName", KeySchedule, "nightly", ScheduleName("nightly")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"File", KeyFile, "index.md", File("index.md")},
		{"Artifact", KeyArtifact, "app-1.0.tar.gz", Artifact("app-1.0.tar.gz")},
		{"Version", KeyVersion, "v1.0.0", Version("v1.0.0")},
		{"URL", KeyURL, "http://example", URL("http://example")},
		{"Name", KeyName, "n", Name("n")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

func TestErrorHelper(t *testing.T) {
	a := Error(nil)
	if a.Value.String() != "" {
		t.Fatalf("nil error should render empty, got %q", a.Value.String())
	}
	a = Error(errors.New("boom"))
	if a.Value.String() != "boom" {
		t.Fatalf("expected boom, got %q", a.Value.String())
	}
}
