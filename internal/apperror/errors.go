// Package apperror defines the error taxonomy shared by the storage and migration layers.
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is wrapped by ConfigurationError when cloud credentials are absent.
	ErrNotConfigured = errors.New("cloud storage is not configured")

	ErrMigrationInProgress = errors.New("a migration phase is already in progress")
	ErrPhaseNotAllowed     = errors.New("phase not allowed in current migration step")

	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidFilename = errors.New("invalid file name")
	ErrOutsideRoot     = errors.New("path escapes upload root")
)

// ConfigurationError reports a missing or unusable cloud client configuration.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("configuration: %v", e.Err)
	}
	return fmt.Sprintf("configuration: %s: %v", e.Reason, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// NotConfigured is the ConfigurationError returned by every cloud call made without a client.
func NotConfigured(reason string) *ConfigurationError {
	return &ConfigurationError{Reason: reason, Err: ErrNotConfigured}
}

// LocalIOError reports a read or write failure against the local file store.
type LocalIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *LocalIOError) Error() string {
	return fmt.Sprintf("local %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LocalIOError) Unwrap() error { return e.Err }

// CloudUploadError reports a failed object-store write.
type CloudUploadError struct {
	Key string
	Err error
}

func (e *CloudUploadError) Error() string {
	return fmt.Sprintf("cloud upload %s: %v", e.Key, e.Err)
}

func (e *CloudUploadError) Unwrap() error { return e.Err }

// IsConfiguration reports whether err is, or wraps, a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsLocalIO reports whether err is, or wraps, a LocalIOError.
func IsLocalIO(err error) bool {
	var le *LocalIOError
	return errors.As(err, &le)
}

// IsCloudUpload reports whether err is, or wraps, a CloudUploadError.
func IsCloudUpload(err error) bool {
	var ue *CloudUploadError
	return errors.As(err, &ue)
}
