package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/container-kit/containerkit/internal/log"
)

// Method is the result shape requested by a caller.
type Method string

const (
	// MethodAll returns every row.
	MethodAll Method = "all"
	// MethodGet returns at most the first row.
	MethodGet Method = "get"
	// MethodRun executes a statement for its side effects.
	MethodRun Method = "run"
	// MethodValues returns every row, like MethodAll.
	MethodValues Method = "values"
)

// Result holds positional rows in the query's column order.
// Mutations always produce zero rows.
type Result struct {
	Rows [][]any
}

// First returns the first row, or nil.
func (r Result) First() []any {
	if len(r.Rows) == 0 {
		return nil
	}
	return r.Rows[0]
}

// Statement is one parameterised SQL statement.
type Statement struct {
	Query  string
	Params []any
}

var selectPattern = regexp.MustCompile(`(?i)^\s*SELECT\b`)

// IsSelect reports whether query is read through the query path.
func IsSelect(query string) bool {
	return selectPattern.MatchString(query)
}

// ErrorHook observes errors that Execute and Transaction swallow.
type ErrorHook func(query string, err error)

// ProxyOption configures a Proxy.
type ProxyOption func(*Proxy)

// WithErrorHook registers h to receive every degraded error.
func WithErrorHook(h ErrorHook) ProxyOption {
	return func(p *Proxy) {
		p.onError = h
	}
}

// Proxy runs SQL text against a database file, opening a connection per call.
type Proxy struct {
	path    string
	onError ErrorHook
}

// NewProxy creates a Proxy for the database at path.
func NewProxy(path string, opts ...ProxyOption) *Proxy {
	p := &Proxy{path: path}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Execute runs query and never fails: errors are logged, passed to the
// error hook, and reported as an empty result.
func (p *Proxy) Execute(ctx context.Context, query string, params []any, method Method) Result {
	res, err := p.query(ctx, query, params, method)
	if err != nil {
		log.ErrorErr(log.CatDB, "sql error", err, "query", query, "method", string(method))
		p.report(query, err)
		return Result{Rows: [][]any{}}
	}
	return res
}

// Transaction runs stmts in order on one connection inside a transaction.
// Like Execute it never fails: on any error the transaction is rolled back,
// the error is logged and passed to the hook, and false is returned.
func (p *Proxy) Transaction(ctx context.Context, stmts ...Statement) bool {
	if failed, err := p.transaction(ctx, stmts); err != nil {
		log.ErrorErr(log.CatDB, "sql error in transaction", err, "query", failed)
		p.report(failed, err)
		return false
	}
	return true
}

func (p *Proxy) report(query string, err error) {
	if p.onError != nil {
		p.onError(query, err)
	}
}

func (p *Proxy) query(ctx context.Context, query string, params []any, method Method) (Result, error) {
	conn, err := open(p.path)
	if err != nil {
		return Result{}, err
	}
	defer conn.Close()

	log.Debug(log.CatDB, "sql", "query", query, "method", string(method), "params", len(params))

	if !IsSelect(query) {
		if _, err := conn.ExecContext(ctx, query, params...); err != nil {
			return Result{}, fmt.Errorf("exec: %w", err)
		}
		return Result{Rows: [][]any{}}, nil
	}

	rows, err := conn.QueryContext(ctx, query, params...)
	if err != nil {
		return Result{}, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	out, err := scanRows(rows, method == MethodGet)
	if err != nil {
		return Result{}, err
	}
	return Result{Rows: out}, nil
}

// transaction returns the text of the statement that failed, or "BEGIN" and
// "COMMIT" for failures outside a statement.
func (p *Proxy) transaction(ctx context.Context, stmts []Statement) (string, error) {
	conn, err := open(p.path)
	if err != nil {
		return "BEGIN", err
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return "BEGIN", fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s.Query, s.Params...); err != nil {
			return s.Query, fmt.Errorf("exec: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "COMMIT", fmt.Errorf("commit: %w", err)
	}
	return "", nil
}

func scanRows(rows *sql.Rows, firstOnly bool) ([][]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	out := [][]any{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		out = append(out, values)
		if firstOnly {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
