package container

import (
	"github.com/container-kit/containerkit/internal/log"
)

// Messages attached to validated output.
const (
	MsgSignaled = "Process was terminated by a signal"
	MsgNoStdout = "Error processing stdout"
	MsgSuccess  = "Command executed successfully"
)

// Result is the raw outcome of a finished process.
type Result struct {
	// ExitCode is nil when the process was terminated by a signal.
	ExitCode *int
	Stdout   string
	Stderr   string
}

// ExitedWith returns a Result for a process that exited normally.
func ExitedWith(code int, stdout, stderr string) Result {
	return Result{ExitCode: &code, Stdout: stdout, Stderr: stderr}
}

// Signaled returns a Result for a process killed by a signal.
func Signaled(stdout, stderr string) Result {
	return Result{Stdout: stdout, Stderr: stderr}
}

// Output is the caller-facing verdict on a CLI invocation.
type Output struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Stdout  string `json:"stdout"`
	Stderr  string `json:"stderr"`
}

// Validate normalises a Result. A signal or empty stdout is an error;
// anything else is a success, whatever the exit code or stderr say.
//
// The exit code beyond the signal check is not consulted. That matches the
// behaviour callers rely on today; a non-zero exit with output is logged so it
// stays visible.
func Validate(r Result) Output {
	out := Output{Stdout: r.Stdout, Stderr: r.Stderr}

	switch {
	case r.ExitCode == nil:
		out.Error = true
		out.Message = MsgSignaled
		log.Warn(log.CatCLI, "process terminated by signal", "stderr", r.Stderr)
	case r.Stdout == "":
		out.Error = true
		out.Message = MsgNoStdout
		log.Warn(log.CatCLI, "process produced no stdout", "exitCode", *r.ExitCode, "stderr", r.Stderr)
	default:
		out.Message = MsgSuccess
		if *r.ExitCode != 0 {
			log.Warn(log.CatCLI, "non-zero exit treated as success", "exitCode", *r.ExitCode, "stderr", r.Stderr)
		}
	}
	return out
}

// failedOutput reports a process that could not be run at all.
func failedOutput(err error) Output {
	return Output{Error: true, Message: err.Error(), Stderr: err.Error()}
}
