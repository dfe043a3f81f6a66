package sqlite

import "context"

// SeedRepository reads the seeds table.
type SeedRepository struct {
	proxy *Proxy
}

// NewSeedRepository creates a SeedRepository over p.
func NewSeedRepository(p *Proxy) *SeedRepository {
	return &SeedRepository{proxy: p}
}

// FindByName returns the seed called name; ok is false when it was never
// recorded or could not be read.
func (r *SeedRepository) FindByName(ctx context.Context, name string) (seed Seed, ok bool, err error) {
	row := r.proxy.Execute(ctx, `SELECT `+seedColumns+` FROM seeds WHERE name = ?`, []any{name}, MethodGet).First()
	if row == nil {
		return Seed{}, false, nil
	}
	seed, err = seedFromRow(row)
	return seed, err == nil, err
}

// List returns every recorded seed.
func (r *SeedRepository) List(ctx context.Context) ([]Seed, error) {
	res := r.proxy.Execute(ctx, `SELECT `+seedColumns+` FROM seeds ORDER BY name`, nil, MethodAll)
	out := make([]Seed, 0, len(res.Rows))
	for _, row := range res.Rows {
		s, err := seedFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
