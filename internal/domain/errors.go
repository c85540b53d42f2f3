package domain

import "errors"

// Common domain errors
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")

	// ErrWatermarkExceedsCapacity means a directory's low watermark is at or
	// above the capacity of the volume holding it. The directory can never
	// reach OK status, so it is skipped as misconfigured.
	ErrWatermarkExceedsCapacity = errors.New("low watermark exceeds volume capacity")

	// ErrDirectoryUnavailable means the monitored directory could not be
	// statted at all (unmounted, removed).
	ErrDirectoryUnavailable = errors.New("monitored directory unavailable")
)

// TransientError wraps a failure of an external call (snapshot fetch,
// free-space query) that should degrade the current cycle to skip-and-report
// and be retried on the next trigger, never inline.
type TransientError struct {
	Op  string
	Err error
}

// Error returns the error message
func (e *TransientError) Error() string {
	if e.Err != nil {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op
}

// Unwrap returns the underlying error
func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError creates a new transient error
func NewTransientError(op string, err error) *TransientError {
	return &TransientError{Op: op, Err: err}
}

// IsTransient returns true if the error is a transient external failure
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// CommandRejectedError wraps a downloader's refusal of a pause or resume
// command, e.g. because the item was removed between snapshot and command.
// The item is dropped from this cycle's consideration; processing continues.
type CommandRejectedError struct {
	Hash string
	Err  error
}

// Error returns the error message
func (e *CommandRejectedError) Error() string {
	if e.Err != nil {
		return "command rejected for " + e.Hash + ": " + e.Err.Error()
	}
	return "command rejected for " + e.Hash
}

// Unwrap returns the underlying error
func (e *CommandRejectedError) Unwrap() error {
	return e.Err
}

// NewCommandRejectedError creates a new command-rejected error
func NewCommandRejectedError(hash string, err error) *CommandRejectedError {
	return &CommandRejectedError{Hash: hash, Err: err}
}

// IsCommandRejected returns true if the error is a rejected command
func IsCommandRejected(err error) bool {
	var ce *CommandRejectedError
	return errors.As(err, &ce)
}

// ConfigurationError marks a per-directory configuration problem. Only the
// affected directory is skipped; the rest of the cycle continues.
type ConfigurationError struct {
	Directory string
	Err       error
}

// Error returns the error message
func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return "directory " + e.Directory + ": " + e.Err.Error()
	}
	return "directory " + e.Directory + ": misconfigured"
}

// Unwrap returns the underlying error
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(directory string, err error) *ConfigurationError {
	return &ConfigurationError{Directory: directory, Err: err}
}

// IsConfiguration returns true if the error is a directory misconfiguration
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
