// Package container drives Apple's `container` CLI: it builds invocations
// (direct, elevated, bundled sidecar), runs them, normalises their output and
// decodes the JSON listings the CLI prints.
package container

import (
	"errors"
	"slices"
)

// DefaultProgram is the CLI looked up on PATH for direct invocations.
const DefaultProgram = "container"

// Errors returned by the container package.
var (
	// ErrEmptyProgram indicates a CommandSpec without a program to run.
	ErrEmptyProgram = errors.New("command has no program")

	// ErrNoSidecar indicates a sidecar invocation without a bundled binary path.
	ErrNoSidecar = errors.New("sidecar path not configured")

	// ErrNotImplemented marks operations the client does not support yet.
	ErrNotImplemented = errors.New("not implemented")
)

// Mode selects how a CommandSpec is turned into a process.
type Mode int

const (
	// ModeDirect resolves Program through PATH.
	ModeDirect Mode = iota
	// ModeElevated asks the host for administrator rights before running.
	ModeElevated
	// ModeSidecar runs the binary bundled at SidecarPath.
	ModeSidecar
)

func (m Mode) String() string {
	switch m {
	case ModeDirect:
		return "direct"
	case ModeElevated:
		return "elevated"
	case ModeSidecar:
		return "sidecar"
	default:
		return "unknown"
	}
}

// CommandSpec describes one CLI invocation. It is built per call and owned by
// the caller; nothing runs until it is handed to a Runner.
type CommandSpec struct {
	Program     string
	Args        []string
	SidecarPath string
	Mode        Mode

	// Stdin is written to the process's standard input and then closed.
	// Secrets (registry passwords) travel here, never in Args.
	Stdin string
}

// Validate reports whether the spec can be executed.
func (c CommandSpec) Validate() error {
	if c.Program == "" {
		return ErrEmptyProgram
	}
	if c.Mode == ModeSidecar && c.SidecarPath == "" {
		return ErrNoSidecar
	}
	return nil
}

// WithStdin returns a copy of the spec that feeds s on standard input.
func (c CommandSpec) WithStdin(s string) CommandSpec {
	c.Args = slices.Clone(c.Args)
	c.Stdin = s
	return c
}

// BuilderConfig configures a Builder.
type BuilderConfig struct {
	// Program is the CLI name or path; defaults to DefaultProgram.
	Program string
	// SidecarPath points at a container binary bundled with the application.
	SidecarPath string
	// PreferSidecar makes Command build sidecar specs when SidecarPath is set.
	PreferSidecar bool
	// AppName is shown in the elevation prompt.
	AppName string
}

// Builder produces CommandSpecs for the container CLI.
type Builder struct {
	program       string
	sidecarPath   string
	preferSidecar bool
	appName       string
}

// NewBuilder creates a Builder from cfg, filling defaults.
func NewBuilder(cfg BuilderConfig) Builder {
	program := cfg.Program
	if program == "" {
		program = DefaultProgram
	}
	appName := cfg.AppName
	if appName == "" {
		appName = "ContainerKit"
	}
	return Builder{
		program:       program,
		sidecarPath:   cfg.SidecarPath,
		preferSidecar: cfg.PreferSidecar && cfg.SidecarPath != "",
		appName:       appName,
	}
}

// Program returns the CLI program name the builder targets.
func (b Builder) Program() string { return b.program }

// AppName returns the name used for elevation prompts.
func (b Builder) AppName() string { return b.appName }

// Command builds a regular invocation: sidecar when preferred, otherwise direct.
func (b Builder) Command(args ...string) CommandSpec {
	if b.preferSidecar {
		return b.Sidecar(args...)
	}
	return CommandSpec{Program: b.program, Args: cloneArgs(args), Mode: ModeDirect}
}

// Elevated builds an invocation that runs with administrator rights.
func (b Builder) Elevated(args ...string) CommandSpec {
	spec := b.Command(args...)
	spec.Mode = ModeElevated
	return spec
}

// Sidecar builds an invocation of the bundled binary.
func (b Builder) Sidecar(args ...string) CommandSpec {
	return CommandSpec{
		Program:     b.program,
		Args:        cloneArgs(args),
		SidecarPath: b.sidecarPath,
		Mode:        ModeSidecar,
	}
}

func cloneArgs(args []string) []string {
	if args == nil {
		return []string{}
	}
	return slices.Clone(args)
}
