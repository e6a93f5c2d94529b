// Package testutil provides a scripted Runner for façade tests.
package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/timvw/panectl/internal/facade"
)

// Call is one recorded invocation.
type Call struct {
	Name        string
	Args        []string
	Interactive bool
}

// Line renders the call as "name arg1 arg2 ...".
func (c Call) Line() string {
	return Key(c.Name, c.Args...)
}

// Key builds the lookup key for a command line.
func Key(name string, args ...string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}

// FakeRunner returns scripted stdout and errors keyed by command line and
// records every call. Unscripted commands succeed with empty output.
type FakeRunner struct {
	mu      sync.Mutex
	outputs map[string][]string
	errs    map[string]error
	calls   []Call
}

func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		outputs: map[string][]string{},
		errs:    map[string]error{},
	}
}

// On scripts stdout for a command line. Repeated calls queue outputs that
// are consumed in order; the last one sticks.
func (f *FakeRunner) On(line, stdout string) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputs[line] = append(f.outputs[line], stdout)
	return f
}

// Set replaces any queued stdout for a command line.
func (f *FakeRunner) Set(line, stdout string) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputs[line] = []string{stdout}
	return f
}

// Fail scripts an error for a command line.
func (f *FakeRunner) Fail(line string, err error) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[line] = err
	return f
}

// FailKind scripts a *facade.Error of the given kind with stderr msg.
func (f *FakeRunner) FailKind(line string, kind facade.Kind, msg string) *FakeRunner {
	return f.Fail(line, &facade.Error{Kind: kind, Msg: msg, ExitCode: 1})
}

func (f *FakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Name: name, Args: append([]string(nil), args...)})
	line := Key(name, args...)
	if err, ok := f.errs[line]; ok {
		return "", err
	}
	queued := f.outputs[line]
	if len(queued) == 0 {
		return "", nil
	}
	out := queued[0]
	if len(queued) > 1 {
		f.outputs[line] = queued[1:]
	}
	return out, nil
}

func (f *FakeRunner) RunInteractive(_ context.Context, name string, args ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Name: name, Args: append([]string(nil), args...), Interactive: true})
	return f.errs[Key(name, args...)]
}

// Calls returns a copy of the recorded calls.
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Lines returns the recorded calls rendered with Call.Line.
func (f *FakeRunner) Lines() []string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.Line()
	}
	return lines
}

// Count returns how many times line was run.
func (f *FakeRunner) Count(line string) int {
	n := 0
	for _, l := range f.Lines() {
		if l == line {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls but keeps the script.
func (f *FakeRunner) Reset() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}
