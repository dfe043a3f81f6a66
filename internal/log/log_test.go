package log

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLog_FormatsFields(t *testing.T) {
	var buf bytes.Buffer
	cleanup := InitWriter(&buf)
	defer cleanup()

	Info(CatCLI, "command finished", "program", "container", "exitCode", 0)

	out := buf.String()
	require.Contains(t, out, "[INFO] [cli] command finished")
	require.Contains(t, out, "program=container")
	require.Contains(t, out, "exitCode=0")
}

func TestLog_OddFieldCount(t *testing.T) {
	var buf bytes.Buffer
	cleanup := InitWriter(&buf)
	defer cleanup()

	Warn(CatWatch, "odd", "path")
	require.Contains(t, buf.String(), "path=<missing>")
}

func TestLog_MinLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	cleanup := InitWriter(&buf)
	defer cleanup()

	SetMinLevel(LevelWarn)
	Debug(CatDB, "hidden")
	ErrorErr(CatDB, "shown", errors.New("boom"))

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "error=boom")
}

func TestLog_DisabledWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	cleanup := InitWriter(&buf)
	defer cleanup()

	SetEnabled(false)
	Error(CatConfig, "silent")
	require.Empty(t, buf.String())
}

func TestLog_NoLoggerIsSafe(t *testing.T) {
	Info(CatCLI, "no logger installed")
	require.Nil(t, Subscribe(context.Background()))
}

func TestLog_SubscribeReceivesEntries(t *testing.T) {
	var buf bytes.Buffer
	cleanup := InitWriter(&buf)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := Subscribe(ctx)
	require.NotNil(t, ch)

	Info(CatHighlight, "cache miss", "lang", "json")

	select {
	case ev := <-ch:
		require.Contains(t, ev.Payload, "cache miss")
	case <-time.After(time.Second):
		t.Fatal("expected log entry on subscription")
	}
}

func TestInit_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	cleanup, err := Init(path)
	require.NoError(t, err)

	Info(CatTrace, "provider started")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "provider started")
}

func TestParseLevel(t *testing.T) {
	lvl, ok := ParseLevel("WARNING")
	require.True(t, ok)
	require.Equal(t, LevelWarn, lvl)

	_, ok = ParseLevel("loud")
	require.False(t, ok)
}
