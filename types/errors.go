package types

import (
	"fmt"
	"strings"
)

// ConfigurationError reports bad or missing parameters or paths. It is always
// raised before any external process starts.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := "configuration error"
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ConfigErrorf builds a ConfigurationError for field with a formatted reason.
func ConfigErrorf(field, format string, a ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, a...)}
}

// MissingDependencyError reports an external program that is absent or not
// executable. Detected by the pre-flight check.
type MissingDependencyError struct {
	Stage   StageName
	Program string
	Err     error
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("stage %s: program %q not found or not executable: %v", e.Stage, e.Program, e.Err)
}

func (e *MissingDependencyError) Unwrap() error { return e.Err }

// ToolExecutionError reports an external process that exited non-zero.
type ToolExecutionError struct {
	Stage    StageName
	Program  string
	ExitCode int
	LogPath  string
	Err      error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("stage %s: %s exited with status %d (log: %s)", e.Stage, e.Program, e.ExitCode, e.LogPath)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }

// EmptyOutputError reports a process that exited zero but left its primary
// output missing or zero-length. It is as fatal as a non-zero exit.
type EmptyOutputError struct {
	Stage   StageName
	Path    string
	LogPath string
}

func (e *EmptyOutputError) Error() string {
	if e.LogPath == "" {
		return fmt.Sprintf("stage %s: output %s is missing or empty", e.Stage, e.Path)
	}
	return fmt.Sprintf("stage %s: output %s is missing or empty (log: %s)", e.Stage, e.Path, e.LogPath)
}

// CachedResumeMismatch reports a stage whose declared outputs are only partly
// present from an earlier run. The stage is rerun rather than skipped.
type CachedResumeMismatch struct {
	Stage   StageName
	Present []string
	Missing []string
}

func (e *CachedResumeMismatch) Error() string {
	return fmt.Sprintf("stage %s: cached outputs incomplete, present [%s], missing [%s]",
		e.Stage, strings.Join(e.Present, ", "), strings.Join(e.Missing, ", "))
}
