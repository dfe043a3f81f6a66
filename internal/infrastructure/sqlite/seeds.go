package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/container-kit/containerkit/internal/log"
)

// RegistrySeedV1 names the seed that installs the Docker Hub registry.
// The spelling matches seed rows already written by earlier releases.
const RegistrySeedV1 = "registery_seed_v1"

// SeedRegistriesV1 inserts Docker Hub as the default registry once.
// It is a no-op when the seed is already marked applied. A failed
// transaction is degraded by the proxy and retried on the next start.
func SeedRegistriesV1(ctx context.Context, p *Proxy) error {
	seed, ok, err := NewSeedRepository(p).FindByName(ctx, RegistrySeedV1)
	if err != nil {
		return err
	}
	if ok && seed.Applied {
		log.Debug(log.CatDB, "seed already applied", "seed", RegistrySeedV1)
		return nil
	}

	registryID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generating registry id: %w", err)
	}
	seedID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generating seed id: %w", err)
	}

	committed := p.Transaction(ctx,
		Statement{
			Query:  `INSERT OR IGNORE INTO registry (id, name, url, "default", logged_in) VALUES (?, ?, ?, ?, ?)`,
			Params: []any{registryID.String(), "Docker", "docker.io", true, false},
		},
		Statement{
			Query:  `INSERT INTO seeds (id, name, applied) VALUES (?, ?, 1) ON CONFLICT(name) DO UPDATE SET applied = 1`,
			Params: []any{seedID.String(), RegistrySeedV1},
		},
	)
	if !committed {
		log.Warn(log.CatDB, "seed not applied", "seed", RegistrySeedV1)
		return nil
	}
	log.Info(log.CatDB, "seed applied", "seed", RegistrySeedV1)
	return nil
}

// Seed applies every known seed in order.
func (d *DB) Seed(ctx context.Context) error {
	return SeedRegistriesV1(ctx, d.proxy)
}
