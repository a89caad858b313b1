// Package runner executes external package manager commands and captures
// their output. It is the only place in bagpack that crosses the process
// boundary; every collector depends on the Runner interface so tests can
// substitute canned output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Result holds the fully captured outcome of one command invocation.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Runner runs one external command and enforces an allow-list of acceptable
// exit codes. An empty allow-list means only exit code 0 is acceptable.
type Runner interface {
	Run(ctx context.Context, program string, args []string, allowedExitCodes ...int) (Result, error)
}

// CommandError reports a command that could not be started, timed out, or
// exited with a code outside the allow-list. ExitCode is -1 when the process
// never produced one.
type CommandError struct {
	Program  string
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s %s failed with exit code %d", e.Program, strings.Join(e.Args, " "), e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// ExecRunner runs commands via os/exec, one child process per call. Each
// command gets its own deadline so a hung package manager cannot stall a
// refresh cycle indefinitely.
type ExecRunner struct {
	Timeout time.Duration
}

// DefaultTimeout bounds a single package manager invocation. npm in
// particular can take tens of seconds on a cold cache.
const DefaultTimeout = 60 * time.Second

// New creates an ExecRunner with the given per-command timeout.
// A zero or negative timeout falls back to DefaultTimeout.
func New(timeout time.Duration) *ExecRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ExecRunner{Timeout: timeout}
}

// Run spawns the program, waits for it to finish, and returns the captured
// stdout/stderr. Stdout and stderr are buffered fully before returning.
func (r *ExecRunner) Run(ctx context.Context, program string, args []string, allowedExitCodes ...int) (Result, error) {
	if len(allowedExitCodes) == 0 {
		allowedExitCodes = []int{0}
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, program, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return res, &CommandError{
				Program:  program,
				Args:     args,
				ExitCode: -1,
				Stderr:   fmt.Sprintf("timed out after %s", r.Timeout),
			}
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// The process never started (binary missing, permission denied).
			return res, &CommandError{Program: program, Args: args, ExitCode: -1, Stderr: err.Error()}
		}
		res.ExitCode = exitErr.ExitCode()
	}

	for _, code := range allowedExitCodes {
		if res.ExitCode == code {
			return res, nil
		}
	}

	return res, &CommandError{
		Program:  program,
		Args:     args,
		ExitCode: res.ExitCode,
		Stderr:   strings.TrimSpace(stderr.String()),
	}
}
