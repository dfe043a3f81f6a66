package container

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/container-kit/containerkit/internal/log"
	"github.com/container-kit/containerkit/internal/tracing"
)

// Runner executes a CommandSpec and reports how the process finished.
// An error means the process could not be started (or waited on); a process
// that ran and failed is described by the Result.
type Runner interface {
	Run(ctx context.Context, spec CommandSpec) (Result, error)
}

// Compile-time check that ExecRunner implements Runner.
var _ Runner = (*ExecRunner)(nil)

// ExecRunner implements Runner with os/exec.
type ExecRunner struct {
	tracer trace.Tracer
	host   host
}

// RunnerOption configures an ExecRunner.
type RunnerOption func(*ExecRunner)

// WithTracer records a span per invocation on t.
func WithTracer(t trace.Tracer) RunnerOption {
	return func(r *ExecRunner) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithAppName sets the application name shown in elevation prompts.
func WithAppName(name string) RunnerOption {
	return func(r *ExecRunner) {
		if name != "" {
			r.host.appName = name
		}
	}
}

// NewExecRunner creates an ExecRunner for the current host.
func NewExecRunner(opts ...RunnerOption) *ExecRunner {
	r := &ExecRunner{
		tracer: noop.NewTracerProvider().Tracer("container"),
		host:   currentHost("ContainerKit"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts the process, feeds Stdin, and waits for it to exit.
// There is no timeout; cancellation only happens through ctx.
func (r *ExecRunner) Run(ctx context.Context, spec CommandSpec) (Result, error) {
	start := time.Now()

	ctx, span := r.tracer.Start(ctx, tracing.SpanCommandExec, trace.WithAttributes(
		attribute.String(tracing.AttrProgram, spec.Program),
		attribute.String(tracing.AttrSubcommand, subcommand(spec.Args)),
		attribute.String(tracing.AttrCommandMode, spec.Mode.String()),
		attribute.Int(tracing.AttrArgCount, len(spec.Args)),
		attribute.Bool(tracing.AttrHasStdin, spec.Stdin != ""),
	))
	defer span.End()

	name, args, err := resolveArgv(spec, r.host)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, fmt.Errorf("building %s command: %w", spec.Program, err)
	}

	//nolint:gosec // G204: args are built by Builder from typed operations
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if spec.Stdin != "" {
		cmd.Stdin = strings.NewReader(spec.Stdin)
	}

	runErr := cmd.Run()
	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		span.RecordError(runErr)
		span.SetStatus(codes.Error, runErr.Error())
		log.ErrorErr(log.CatCLI, "failed to run command", runErr,
			"program", name, "subcommand", subcommand(spec.Args), "mode", spec.Mode)
		return Result{}, fmt.Errorf("running %s: %w", name, runErr)
	}

	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if code := cmd.ProcessState.ExitCode(); code >= 0 {
		res.ExitCode = &code
		span.SetAttributes(attribute.Int(tracing.AttrExitCode, code))
	} else {
		span.SetAttributes(attribute.Bool(tracing.AttrSignaled, true))
	}
	span.SetAttributes(
		attribute.Int(tracing.AttrStdoutBytes, stdout.Len()),
		attribute.Int(tracing.AttrStderrBytes, stderr.Len()),
	)

	log.Debug(log.CatCLI, "command completed",
		"program", name, "subcommand", subcommand(spec.Args), "mode", spec.Mode,
		"duration", time.Since(start))
	return res, nil
}

// subcommand names the invocation for logs and spans: at most the first two
// words before any flag, so usernames and other flag values stay out.
func subcommand(args []string) string {
	var words []string
	for _, a := range args {
		if strings.HasPrefix(a, "-") || len(words) == 2 {
			break
		}
		words = append(words, a)
	}
	return strings.Join(words, " ")
}
