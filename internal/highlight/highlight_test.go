package highlight

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatCode(t *testing.T) {
	require.Equal(t, "  a\n    b", FormatCode("\ta\n\t\tb"))
	require.Equal(t, "no tabs", FormatCode("no tabs"))
}

func TestKeyFor_SeparatesLanguages(t *testing.T) {
	require.NotEqual(t, KeyFor(LangJSON, "{}"), KeyFor(LangLog, "{}"))
	require.NotEqual(t, KeyFor("a", "bc"), KeyFor("ab", "c"))
}

func TestHighlight_PlainKeepsText(t *testing.T) {
	h := New(WithFormat(FormatPlain))
	got, err := h.Highlight(context.Background(), "{\n\t\"id\": \"web\"\n}", LangJSON)
	require.NoError(t, err)
	require.Equal(t, "{\n  \"id\": \"web\"\n}", got)
}

func TestHighlight_HTML(t *testing.T) {
	h := New(WithFormat(FormatHTML))
	got, err := h.Highlight(context.Background(), `{"status": "running"}`, LangJSON)
	require.NoError(t, err)
	require.True(t, strings.Contains(got, "<pre"), got)
	require.Contains(t, got, "running")
}

func TestHighlight_TerminalAddsEscapes(t *testing.T) {
	h := New()
	got, err := h.Highlight(context.Background(), `{"status": "running"}`, LangJSON)
	require.NoError(t, err)
	require.Contains(t, got, "\x1b[")
}

func TestHighlight_Memoises(t *testing.T) {
	h := New(WithFormat(FormatPlain))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := h.Highlight(ctx, "booting vm", "")
		require.NoError(t, err)
	}
	require.Equal(t, 1, h.Len())

	_, err := h.Highlight(ctx, "booting vm", LangJSON)
	require.NoError(t, err)
	require.Equal(t, 2, h.Len())
}

func TestHighlight_UnknownLanguageFallsBack(t *testing.T) {
	h := New(WithFormat(FormatPlain), WithStyle("no-such-style"))
	got, err := h.Highlight(context.Background(), "plain text", "no-such-language")
	require.NoError(t, err)
	require.Equal(t, "plain text", got)
}
