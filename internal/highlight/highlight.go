// Package highlight renders CLI output (container logs, inspect JSON) with
// syntax colouring and memoises the result per language and source text.
package highlight

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/container-kit/containerkit/internal/cachemanager"
	"github.com/container-kit/containerkit/internal/log"
)

// Languages accepted by Highlight.
const (
	LangLog  = "log"
	LangJSON = "json"
)

// Formatter names.
const (
	FormatHTML        = "html"
	FormatTerminal256 = "terminal256"
	FormatTrueColor   = "terminal16m"
	FormatPlain       = "noop"
)

// DefaultStyle is the chroma style used when none is configured.
const DefaultStyle = "github-dark"

// Key identifies a cached rendering.
type Key string

// KeyFor combines language and source. Identical text highlighted as two
// languages has two entries.
func KeyFor(lang, code string) Key {
	return Key(lang + "\x00" + code)
}

type request struct {
	lang string
	code string
}

// Highlighter renders source text and caches the output for the process
// lifetime. Entries are never evicted.
type Highlighter struct {
	style     *chroma.Style
	formatter chroma.Formatter
	store     *cachemanager.InMemoryCacheManager[Key, string]
	cache     *cachemanager.ReadThroughCache[Key, string, request]
}

// Option configures a Highlighter.
type Option func(*Highlighter)

// WithStyle selects a chroma style by name; unknown names fall back to
// chroma's default style.
func WithStyle(name string) Option {
	return func(h *Highlighter) {
		if name != "" {
			h.style = styles.Get(name)
		}
	}
}

// WithFormat selects the output format (FormatHTML, FormatTerminal256, ...).
func WithFormat(name string) Option {
	return func(h *Highlighter) {
		switch name {
		case "":
		case FormatHTML:
			h.formatter = html.New(html.WithClasses(false), html.WithLineNumbers(true))
		default:
			h.formatter = formatters.Get(name)
		}
	}
}

// New creates a Highlighter. The default output is 256-colour terminal text.
func New(opts ...Option) *Highlighter {
	h := &Highlighter{
		style:     styles.Get(DefaultStyle),
		formatter: formatters.Get(FormatTerminal256),
		store:     cachemanager.NewInMemoryCacheManager[Key, string]("highlight", cachemanager.NoExpiration),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.cache = cachemanager.NewReadThroughCache[Key, string, request](h.store, h.render)
	return h
}

// Highlight renders code as lang. An empty lang means LangLog.
func (h *Highlighter) Highlight(ctx context.Context, code, lang string) (string, error) {
	if lang == "" {
		lang = LangLog
	}
	return h.cache.Get(ctx, KeyFor(lang, code), request{lang: lang, code: code})
}

// Len reports how many renderings are cached.
func (h *Highlighter) Len() int { return h.store.Len() }

func (h *Highlighter) render(_ context.Context, req request) (string, error) {
	lexer := lexers.Get(req.lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, FormatCode(req.code))
	if err != nil {
		return "", fmt.Errorf("tokenising %s: %w", req.lang, err)
	}

	var b strings.Builder
	if err := h.formatter.Format(&b, h.style, it); err != nil {
		return "", fmt.Errorf("formatting %s: %w", req.lang, err)
	}
	log.Debug(log.CatHighlight, "rendered", "lang", req.lang, "bytes", len(req.code))
	return b.String(), nil
}

// FormatCode replaces each tab with two spaces.
func FormatCode(code string) string {
	return strings.ReplaceAll(code, "\t", "  ")
}
