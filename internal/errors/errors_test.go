package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestShipyardError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ShipyardError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CategoryConfig, SeverityFatal, "configuration invalid"),
			expected: "config (fatal): configuration invalid",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("file not found"), CategoryConfig, SeverityFatal, "failed to load config"),
			expected: "config (fatal): failed to load config: file not found",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := test.err.Error()
			if result != test.expected {
				t.Errorf("Error() = %q, want %q", result, test.expected)
			}
		})
	}
}

func TestShipyardError_WithContext(t *testing.T) {
	err := New(CategoryPublish, SeverityWarning, "upload failed").
		WithContext("artifact", "app-1.0.tar.gz").
		WithContext("attempt", 2)

	if err.Context == nil {
		t.Fatal("Context should not be nil")
	}

	if err.Context["artifact"] != "app-1.0.tar.gz" {
		t.Errorf("Context[artifact] = %v, want app-1.0.tar.gz", err.Context["artifact"])
	}

	if err.Context["attempt"] != 2 {
		t.Errorf("Context[attempt] = %v, want 2", err.Context["attempt"])
	}
}

func TestShipyardError_Unwrap(t *testing.T) {
	cause := stdErrors.New("root cause")
	err := Wrap(cause, CategoryNetwork, SeverityWarning, "wrapped")

	if !stdErrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestIsCategory(t *testing.T) {
	configErr := New(CategoryConfig, SeverityFatal, "config error")
	pubErr := New(CategoryPublish, SeverityWarning, "publish error")
	standardErr := fmt.Errorf("standard error")

	tests := []struct {
		name     string
		err      error
		category ErrorCategory
		want     bool
	}{
		{"matching category", configErr, CategoryConfig, true},
		{"non-matching category", pubErr, CategoryConfig, false},
		{"standard error", standardErr, CategoryConfig, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsCategory(test.err, test.category); got != test.want {
				t.Errorf("IsCategory() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(New(CategoryCoverage, SeverityFatal, "tests failed")) {
		t.Error("plain New error should not be retryable")
	}
	if !IsRetryable(UploadFailed("http://registry", fmt.Errorf("503"))) {
		t.Error("UploadFailed should be retryable")
	}
	if IsRetryable(fmt.Errorf("standard error")) {
		t.Error("standard error should not be retryable")
	}
}

func TestCoverageBelowThreshold(t *testing.T) {
	err := CoverageBelowThreshold(71.5, 80)
	if err.Category != CategoryCoverage {
		t.Errorf("Category = %v, want %v", err.Category, CategoryCoverage)
	}
	if err.Context["got_percent"] != 71.5 {
		t.Errorf("Context[got_percent] = %v, want 71.5", err.Context["got_percent"])
	}
}
