package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsSelect(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"SELECT 1", true},
		{"  \n\tselect * from registry", true},
		{"Select id FROM seeds", true},
		{"SELECT*FROM registry", true},
		{"SELECTED", false},
		{"INSERT INTO registry VALUES (?)", false},
		{"UPDATE registry SET name = 'select'", false},
		{"-- SELECT\nDELETE FROM seeds", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			require.Equal(t, tt.want, IsSelect(tt.query))
		})
	}
}

func TestProxy_SelectRowsFollowColumnOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	p := db.Proxy()

	res := p.Execute(ctx, `INSERT INTO registry (id, name, url) VALUES (?, ?, ?)`,
		[]any{"id-1", "GitHub", "ghcr.io"}, MethodRun)
	require.Empty(t, res.Rows)

	res = p.Execute(ctx, `SELECT url, logged_in, name FROM registry`, nil, MethodAll)
	require.Equal(t, [][]any{{"ghcr.io", int64(0), "GitHub"}}, res.Rows)

	res = p.Execute(ctx, `SELECT name, url FROM registry`, nil, MethodValues)
	require.Equal(t, [][]any{{"GitHub", "ghcr.io"}}, res.Rows)
}

func TestProxy_GetReturnsFirstRow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	p := db.Proxy()

	for _, r := range [][]any{{"a", "A", "a.example.com"}, {"b", "B", "b.example.com"}} {
		p.Execute(ctx, `INSERT INTO registry (id, name, url) VALUES (?, ?, ?)`, r, MethodRun)
	}

	res := p.Execute(ctx, `SELECT name FROM registry ORDER BY name`, nil, MethodGet)
	require.Equal(t, [][]any{{"A"}}, res.Rows)
	require.Equal(t, []any{"A"}, res.First())

	res = p.Execute(ctx, `SELECT name FROM registry WHERE name = ?`, []any{"missing"}, MethodGet)
	require.Empty(t, res.Rows)
	require.Nil(t, res.First())
}

func TestProxy_BlobTextIsString(t *testing.T) {
	db := newTestDB(t)
	res := db.Proxy().Execute(context.Background(), `SELECT CAST('docker.io' AS BLOB)`, nil, MethodAll)
	require.Equal(t, [][]any{{"docker.io"}}, res.Rows)
}

func TestProxy_ErrorsDegradeToEmptyResult(t *testing.T) {
	var hooked []string
	db := newTestDB(t, WithErrorHook(func(query string, err error) {
		require.Error(t, err)
		hooked = append(hooked, query)
	}))
	ctx := context.Background()

	res := db.Proxy().Execute(ctx, `INSERT INTO missing_table VALUES (1)`, nil, MethodRun)
	require.NotNil(t, res.Rows)
	require.Empty(t, res.Rows)

	res = db.Proxy().Execute(ctx, `SELECT nope FROM registry`, nil, MethodAll)
	require.Empty(t, res.Rows)

	require.Equal(t, []string{`INSERT INTO missing_table VALUES (1)`, `SELECT nope FROM registry`}, hooked)
}

func TestProxy_QueryReturnsError(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Proxy().query(context.Background(), `SELECT * FROM missing_table`, nil, MethodAll)
	require.Error(t, err)
}

func TestProxy_TransactionRollsBack(t *testing.T) {
	var hooked []string
	db := newTestDB(t, WithErrorHook(func(query string, err error) {
		require.Error(t, err)
		hooked = append(hooked, query)
	}))
	ctx := context.Background()
	p := db.Proxy()

	committed := p.Transaction(ctx,
		Statement{Query: `INSERT INTO registry (id, name, url) VALUES (?, ?, ?)`, Params: []any{"1", "One", "one.example.com"}},
		Statement{Query: `INSERT INTO registry (id, url, name) VALUES (?, ?, ?)`, Params: []any{"2", "two.example.com", "One"}},
	)
	require.False(t, committed)
	require.Equal(t, []string{`INSERT INTO registry (id, url, name) VALUES (?, ?, ?)`}, hooked)

	res := p.Execute(ctx, `SELECT COUNT(*) FROM registry`, nil, MethodGet)
	require.Equal(t, [][]any{{int64(0)}}, res.Rows)
}

func TestProxy_TransactionCommits(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	p := db.Proxy()

	require.True(t, p.Transaction(ctx,
		Statement{Query: `INSERT INTO registry (id, name, url) VALUES (?, ?, ?)`, Params: []any{"1", "One", "one.example.com"}},
		Statement{Query: `UPDATE registry SET logged_in = 1 WHERE id = ?`, Params: []any{"1"}},
	))

	res := p.Execute(ctx, `SELECT logged_in FROM registry WHERE id = ?`, []any{"1"}, MethodGet)
	require.Equal(t, [][]any{{int64(1)}}, res.Rows)
}
