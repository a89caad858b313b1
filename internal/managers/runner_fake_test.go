package managers

import (
	"context"
	"fmt"
	"strings"

	"github.com/phl28/bagpack/internal/runner"
)

// fakeResponse scripts the outcome of one command invocation.
type fakeResponse struct {
	stdout   string
	exitCode int
	err      error
}

// fakeRunner substitutes canned command output for collector tests. It is
// keyed by the full command line and honors the allow-list the same way the
// real runner does.
type fakeRunner struct {
	responses map[string]fakeResponse
	calls     []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{responses: make(map[string]fakeResponse)}
}

func (f *fakeRunner) respond(program string, args []string, resp fakeResponse) {
	f.responses[commandKey(program, args)] = resp
}

func (f *fakeRunner) Run(ctx context.Context, program string, args []string, allowedExitCodes ...int) (runner.Result, error) {
	key := commandKey(program, args)
	f.calls = append(f.calls, key)

	resp, ok := f.responses[key]
	if !ok {
		return runner.Result{}, &runner.CommandError{
			Program:  program,
			Args:     args,
			ExitCode: -1,
			Stderr:   "unexpected command in test",
		}
	}
	if resp.err != nil {
		return runner.Result{}, resp.err
	}

	res := runner.Result{ExitCode: resp.exitCode, Stdout: []byte(resp.stdout)}
	if len(allowedExitCodes) == 0 {
		allowedExitCodes = []int{0}
	}
	for _, code := range allowedExitCodes {
		if resp.exitCode == code {
			return res, nil
		}
	}
	return res, &runner.CommandError{
		Program:  program,
		Args:     args,
		ExitCode: resp.exitCode,
		Stderr:   fmt.Sprintf("exit code %d not allowed", resp.exitCode),
	}
}

func commandKey(program string, args []string) string {
	return program + " " + strings.Join(args, " ")
}
