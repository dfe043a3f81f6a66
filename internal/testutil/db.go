// Package testutil provides test fixtures for the registry database and
// container CLI output.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/container-kit/containerkit/internal/infrastructure/sqlite"
)

// NewTestDB creates a migrated database in a temp directory. Seeds are not
// applied; call Seed or use a Builder preset for that.
func NewTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return db
}
