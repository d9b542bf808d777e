// Package testharness runs already-emitted Python programs for
// whole-pipeline tests: it reports whether a python3 interpreter is
// available on PATH and, when one is, executes emitted text and captures its
// output. Compiling the source is left to the caller.
package testharness

import (
	"os/exec"
	"strings"
	"time"
)

// CommandResult is the captured outcome of running an emitted program.
type CommandResult struct {
	Exit     int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

func (r CommandResult) Success() bool { return r.Exit == 0 }
func (r CommandResult) Failed() bool  { return r.Exit != 0 }

// HasPython reports whether a python3 interpreter is available, so e2e
// tests can skip gracefully instead of failing in environments without one.
func HasPython() bool {
	_, err := exec.LookPath("python3")
	return err == nil
}

// RunPython feeds source to python3 on stdin and captures stdout/stderr/exit
// code and wall-clock duration.
func RunPython(source string) (CommandResult, error) {
	cmd := exec.Command("python3", "-")
	cmd.Stdin = strings.NewReader(source)

	var out, errBuf strings.Builder
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	result := CommandResult{Stdout: out.String(), Stderr: errBuf.String(), Duration: elapsed}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.Exit = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}
	result.Exit = 0
	return result, nil
}
