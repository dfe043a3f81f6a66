package tracing

// Span names.
const (
	SpanCommandExec = "container.exec"
	SpanWatchNotify = "watch.notify"
)

// Span attribute keys. Stdin content is never recorded, only its presence.
const (
	AttrProgram     = "process.program"
	AttrSubcommand  = "command.subcommand"
	AttrCommandMode = "command.mode"
	AttrArgCount    = "command.arg_count"
	AttrHasStdin    = "command.has_stdin"
	AttrExitCode    = "process.exit_code"
	AttrSignaled    = "process.signaled"
	AttrStdoutBytes = "process.stdout_bytes"
	AttrStderrBytes = "process.stderr_bytes"

	AttrWatchResource = "watch.resource"
	AttrWatchKind     = "watch.event_kind"
	AttrWatchPaths    = "watch.path_count"
)
