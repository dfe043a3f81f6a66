package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeedRegistriesV1_Idempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Seed(ctx))
	require.NoError(t, db.Seed(ctx))

	regs, err := db.RegistryRepository().List(ctx)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	require.Equal(t, "Docker", regs[0].Name)
	require.Equal(t, "docker.io", regs[0].URL)
	require.True(t, regs[0].Default)

	seeds, err := db.SeedRepository().List(ctx)
	require.NoError(t, err)
	require.Len(t, seeds, 1)
	require.Equal(t, RegistrySeedV1, seeds[0].Name)
	require.True(t, seeds[0].Applied)
}

func TestSeedRegistriesV1_CompletesUnappliedSeed(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	db.Proxy().Execute(ctx, `INSERT INTO seeds (id, name, applied) VALUES (?, ?, 0)`,
		[]any{"seed-1", RegistrySeedV1}, MethodRun)

	require.NoError(t, SeedRegistriesV1(ctx, db.Proxy()))

	seed, ok, err := db.SeedRepository().FindByName(ctx, RegistrySeedV1)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, seed.Applied)
	require.Equal(t, "seed-1", seed.ID)

	_, err = db.RegistryRepository().FindByURL(ctx, "docker.io")
	require.NoError(t, err)
}

func TestSeedRepository_FindByNameMissing(t *testing.T) {
	_, ok, err := newTestDB(t).SeedRepository().FindByName(context.Background(), "nope")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSeedRegistriesV1_RetriedAfterFailure(t *testing.T) {
	var hooked int
	db := newTestDB(t, WithErrorHook(func(string, error) { hooked++ }))
	ctx := context.Background()
	p := db.Proxy()

	p.Execute(ctx, `ALTER TABLE registry RENAME TO registry_moved`, nil, MethodRun)
	require.NoError(t, db.Seed(ctx))
	require.Equal(t, 1, hooked)

	_, ok, err := db.SeedRepository().FindByName(ctx, RegistrySeedV1)
	require.NoError(t, err)
	require.False(t, ok, "a rolled back seed is not recorded")

	p.Execute(ctx, `ALTER TABLE registry_moved RENAME TO registry`, nil, MethodRun)
	require.NoError(t, db.Seed(ctx))

	seed, ok, err := db.SeedRepository().FindByName(ctx, RegistrySeedV1)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, seed.Applied)
}
