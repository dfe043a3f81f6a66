package tracing

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.False(t, cfg.Enabled, "tracing should be disabled by default")
	require.Equal(t, "file", cfg.Exporter)
	require.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	require.Equal(t, 1.0, cfg.SampleRate)
	require.Equal(t, DefaultServiceName, cfg.ServiceName)
}

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(Config{Enabled: false})
	require.NoError(t, err)
	require.False(t, provider.Enabled())

	_, span := provider.Tracer().Start(context.Background(), "noop")
	span.End()
	require.False(t, span.SpanContext().IsValid(), "noop spans carry no context")

	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_FileExporterWritesSpans(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces", "traces.jsonl")

	provider, err := NewProvider(Config{
		Enabled:     true,
		Exporter:    "file",
		FilePath:    tracePath,
		SampleRate:  1.0,
		ServiceName: "test-service",
	})
	require.NoError(t, err)
	require.True(t, provider.Enabled())

	_, span := provider.Tracer().Start(context.Background(), SpanCommandExec)
	span.SetAttributes(attribute.String(AttrProgram, "container"))
	span.End()

	// Shutdown flushes the batcher.
	require.NoError(t, provider.Shutdown(context.Background()))

	records := readRecords(t, tracePath)
	require.Len(t, records, 1)
	require.Equal(t, SpanCommandExec, records[0].Name)
	require.Equal(t, "container", records[0].Attributes[AttrProgram])
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, Config{Enabled: false, Exporter: "bogus"}.Validate(), "disabled config is never checked")
	require.Error(t, Config{Enabled: true, Exporter: "file"}.Validate())
	require.Error(t, Config{Enabled: true, Exporter: "zipkin"}.Validate())
	require.Error(t, Config{Enabled: true, Exporter: "stdout", SampleRate: 2}.Validate())
	require.NoError(t, Config{Enabled: true, Exporter: "none", SampleRate: 0.5}.Validate())
}

func TestNewProvider_RejectsInvalidConfig(t *testing.T) {
	_, err := NewProvider(Config{Enabled: true, Exporter: "file"})
	require.Error(t, err)
}

func TestFileExporter_RecordsErrorStatus(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces.jsonl")
	exp, err := NewFileExporter(tracePath)
	require.NoError(t, err)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	_, parent := tp.Tracer("test").Start(context.Background(), "parent")
	_, child := tp.Tracer("test").Start(trace.ContextWithSpan(context.Background(), parent), "child")
	child.SetStatus(codes.Error, "exit 1")
	child.AddEvent("stderr")
	child.End()
	parent.End()
	require.NoError(t, tp.Shutdown(context.Background()))

	records := readRecords(t, tracePath)
	require.Len(t, records, 2)
	require.Equal(t, "child", records[0].Name)
	require.Equal(t, "ERROR", records[0].Status)
	require.Equal(t, "exit 1", records[0].StatusMsg)
	require.Equal(t, []string{"stderr"}, records[0].Events)
	require.Equal(t, records[1].SpanID, records[0].ParentSpanID)
}

func TestFileExporter_ExportAfterShutdown(t *testing.T) {
	exp, err := NewFileExporter(filepath.Join(t.TempDir(), "traces.jsonl"))
	require.NoError(t, err)
	require.NoError(t, exp.Shutdown(context.Background()))
	require.NoError(t, exp.Shutdown(context.Background()), "second shutdown is a no-op")
	require.Error(t, exp.ExportSpans(context.Background(), nil))
}

func readRecords(t *testing.T, path string) []SpanRecord {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var records []SpanRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec SpanRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, scanner.Err())
	return records
}
