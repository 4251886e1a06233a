package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/execute"
)

// FakeCommandResult is a canned response for one command.
type FakeCommandResult struct {
	Output string
	Err    error
}

// FakeRunner substitutes for execute.Run in tests. Responses are keyed by
// command name, or by "command arg1 arg2" for per-invocation control.
type FakeRunner struct {
	mu        sync.Mutex
	Responses map[string]FakeCommandResult
	Calls     []string
}

// NewFakeRunner creates an empty fake runner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{Responses: make(map[string]FakeCommandResult)}
}

// Run looks up the canned response, preferring the full invocation key.
func (f *FakeRunner) Run(ctx context.Context, opts execute.Options) (string, error) {
	full := strings.TrimSpace(opts.Command + " " + strings.Join(opts.Args, " "))

	f.mu.Lock()
	f.Calls = append(f.Calls, full)
	f.mu.Unlock()

	if result, ok := f.Responses[full]; ok {
		return result.Output, result.Err
	}
	if result, ok := f.Responses[opts.Command]; ok {
		return result.Output, result.Err
	}
	return "", fmt.Errorf("no fake response registered for %q", full)
}
