package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *ShipyardError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *ShipyardError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ValidationFailed(field, reason string) *ShipyardError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Target execution errors

func StepFailed(target, step string, cause error) *ShipyardError {
	return Wrap(cause, CategoryRuntime, SeverityFatal, "pipeline step failed").
		WithContext("target", target).
		WithContext("step", step)
}

func ToolNotFound(tool string) *ShipyardError {
	return New(CategoryTool, SeverityFatal, "required external tool not found in PATH").
		WithContext("tool", tool)
}

func CoverageBelowThreshold(got, want float64) *ShipyardError {
	return New(CategoryCoverage, SeverityFatal, "coverage below configured threshold").
		WithContext("got_percent", got).
		WithContext("min_percent", want)
}

func DocsBuildError(cause error) *ShipyardError {
	return Wrap(cause, CategoryDocs, SeverityFatal, "documentation site build failed")
}

func PublishError(step string, cause error) *ShipyardError {
	return Wrap(cause, CategoryPublish, SeverityFatal, "publish failed").
		WithContext("step", step)
}

func WorkspaceError(operation string, cause error) *ShipyardError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "workspace operation failed").
		WithContext("operation", operation)
}

// Git errors

func GitMetadataError(cause error) *ShipyardError {
	return Wrap(cause, CategoryGit, SeverityFatal, "failed to read git metadata")
}

// Network errors

func UploadFailed(url string, cause error) *ShipyardError {
	return WrapRetryable(cause, CategoryNetwork, SeverityWarning, "artifact upload failed").
		WithContext("url", url)
}

func NetworkTimeout(url string, cause error) *ShipyardError {
	return WrapRetryable(cause, CategoryNetwork, SeverityWarning, "network timeout").
		WithContext("url", url)
}

// Internal errors

func InternalError(message string, cause error) *ShipyardError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
