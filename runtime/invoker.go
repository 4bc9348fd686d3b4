package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/junhaiqi/TopoRepeat/types"
)

const defaultGracePeriod = 10 * time.Second

// Invocation describes one external program run on behalf of a stage.
type Invocation struct {
	Stage   types.StageName
	Program string
	Args    []string
	Dir     string

	// StdoutPath receives standard output when set. Otherwise Stdout is used,
	// and when both are empty standard output goes to the log file.
	StdoutPath string
	Stdout     io.Writer

	// LogPath always receives standard error.
	LogPath string

	// PrimaryOutput must exist and be non-empty after a zero exit.
	PrimaryOutput string
}

// Result is the outcome of a completed Invocation.
type Result struct {
	ExitCode int
	LogPath  string
	Elapsed  time.Duration
}

// Invoker runs one external program.
type Invoker interface {
	Invoke(ctx context.Context, inv Invocation) (Result, error)
}

// ProcessInvoker runs programs with os/exec. Each child gets its own process
// group so cancellation reaches every process the tool spawned.
type ProcessInvoker struct {
	logger      Logger
	gracePeriod time.Duration
}

// NewProcessInvoker creates a ProcessInvoker. A cancelled child receives
// SIGTERM and is killed if still running after gracePeriod (0 = default).
func NewProcessInvoker(logger Logger, gracePeriod time.Duration) *ProcessInvoker {
	if gracePeriod <= 0 {
		gracePeriod = defaultGracePeriod
	}
	return &ProcessInvoker{logger: logger, gracePeriod: gracePeriod}
}

// Invoke runs inv to completion. Non-zero exits become *types.ToolExecutionError,
// a missing or empty primary output becomes *types.EmptyOutputError.
func (p *ProcessInvoker) Invoke(ctx context.Context, inv Invocation) (Result, error) {
	res := Result{LogPath: inv.LogPath}
	if inv.Program == "" {
		return res, fmt.Errorf("stage %s: empty program", inv.Stage)
	}
	if inv.LogPath == "" {
		return res, fmt.Errorf("stage %s: log path is required", inv.Stage)
	}
	if err := os.MkdirAll(filepath.Dir(inv.LogPath), 0755); err != nil {
		return res, fmt.Errorf("creating log directory: %w", err)
	}
	logFile, err := os.Create(inv.LogPath)
	if err != nil {
		return res, fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()
	fmt.Fprintf(logFile, "$ %s %s\n", inv.Program, strings.Join(inv.Args, " ")) //nolint:errcheck

	cmd := exec.CommandContext(ctx, inv.Program, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Stderr = logFile
	configureProcessGroup(cmd)
	cmd.Cancel = func() error { return terminateGroup(cmd) }
	cmd.WaitDelay = p.gracePeriod

	var (
		partial string
		outFile *os.File
	)
	switch {
	case inv.StdoutPath != "":
		if err := os.MkdirAll(filepath.Dir(inv.StdoutPath), 0755); err != nil {
			return res, fmt.Errorf("creating output directory: %w", err)
		}
		partial = inv.StdoutPath + ".partial"
		outFile, err = os.Create(partial)
		if err != nil {
			return res, fmt.Errorf("creating %s: %w", partial, err)
		}
		cmd.Stdout = outFile
	case inv.Stdout != nil:
		cmd.Stdout = inv.Stdout
	default:
		cmd.Stdout = logFile
	}

	p.debug("invoking program", map[string]any{
		"stage":   string(inv.Stage),
		"program": inv.Program,
		"args":    inv.Args,
		"log":     inv.LogPath,
	})

	start := time.Now()
	runErr := cmd.Run()
	res.Elapsed = time.Since(start)

	if outFile != nil {
		if err := outFile.Close(); err != nil && runErr == nil {
			runErr = fmt.Errorf("closing %s: %w", partial, err)
		}
	}

	if runErr != nil {
		if partial != "" {
			_ = os.Remove(partial)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			killGroup(cmd)
			return res, fmt.Errorf("stage %s: %s interrupted: %w", inv.Stage, inv.Program, ctxErr)
		}
		if errors.Is(runErr, exec.ErrNotFound) || errors.Is(runErr, os.ErrNotExist) || errors.Is(runErr, os.ErrPermission) {
			return res, &types.MissingDependencyError{Stage: inv.Stage, Program: inv.Program, Err: runErr}
		}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = -1
		}
		return res, &types.ToolExecutionError{
			Stage:    inv.Stage,
			Program:  inv.Program,
			ExitCode: res.ExitCode,
			LogPath:  inv.LogPath,
			Err:      runErr,
		}
	}

	if partial != "" {
		if err := os.Rename(partial, inv.StdoutPath); err != nil {
			return res, fmt.Errorf("finalizing %s: %w", inv.StdoutPath, err)
		}
	}

	if inv.PrimaryOutput != "" && !nonEmptyFile(inv.PrimaryOutput) {
		return res, &types.EmptyOutputError{Stage: inv.Stage, Path: inv.PrimaryOutput, LogPath: inv.LogPath}
	}
	return res, nil
}

func (p *ProcessInvoker) debug(msg string, fields map[string]any) {
	if p.logger != nil {
		p.logger.Debug(msg, fields)
	}
}

func nonEmptyFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular() && fi.Size() > 0
}
