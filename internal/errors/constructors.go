package errors

// Convenience functions for common error patterns

// Usage and validation errors

func UsageError(message string) *EsmpackError {
	return New(CategoryUsage, SeverityFatal, message)
}

func OutputDirMissing(path string) *EsmpackError {
	return New(CategoryValidation, SeverityFatal, "output directory does not exist").
		WithContext("path", path)
}

func OutputDirInaccessible(path string, cause error) *EsmpackError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "failed to inspect output directory").
		WithContext("path", path)
}

func ConfigError(path string, cause error) *EsmpackError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "failed to load configuration").
		WithContext("path", path)
}

// External tool errors

func InstallFailed(cause error) *EsmpackError {
	return Wrap(cause, CategoryInstall, SeverityFatal, "package installation failed")
}

func BundlerFailed(operation string, cause error) *EsmpackError {
	return Wrap(cause, CategoryBundler, SeverityFatal, "bundler invocation failed").
		WithContext("operation", operation)
}

// Pipeline errors

func ManifestNotFound(pkg string, cause error) *EsmpackError {
	return Wrap(cause, CategoryManifest, SeverityFatal, "package manifest not found after install: "+pkg).
		WithContext("package", pkg)
}

func EntrypointNotFound(pkg string, cause error) *EsmpackError {
	return Wrap(cause, CategoryBundler, SeverityFatal, "could not discover entrypoint for package: "+pkg).
		WithContext("package", pkg)
}

func WorkspaceError(operation string, cause error) *EsmpackError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "workspace operation failed").
		WithContext("operation", operation)
}
