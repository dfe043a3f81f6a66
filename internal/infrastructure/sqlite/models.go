package sqlite

import (
	"errors"
	"fmt"
)

// Repository errors.
var (
	ErrRegistryNotFound  = errors.New("registry not found")
	ErrDuplicateRegistry = errors.New("registry already exists")
)

// Registry is a row of the registry table.
type Registry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Default  bool   `json:"default"`
	LoggedIn bool   `json:"loggedIn"`
}

// Seed is a row of the seeds table.
type Seed struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Applied bool   `json:"applied"`
}

const registryColumns = `id, name, url, "default", logged_in`

const seedColumns = `id, name, applied`

func registryFromRow(row []any) (Registry, error) {
	if len(row) != 5 {
		return Registry{}, fmt.Errorf("registry row has %d columns, want 5", len(row))
	}
	return Registry{
		ID:       asString(row[0]),
		Name:     asString(row[1]),
		URL:      asString(row[2]),
		Default:  asBool(row[3]),
		LoggedIn: asBool(row[4]),
	}, nil
}

func seedFromRow(row []any) (Seed, error) {
	if len(row) != 3 {
		return Seed{}, fmt.Errorf("seed row has %d columns, want 3", len(row))
	}
	return Seed{
		ID:      asString(row[0]),
		Name:    asString(row[1]),
		Applied: asBool(row[2]),
	}, nil
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprint(s)
	}
}

// asBool decodes SQLite's integer booleans.
func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case int64:
		return b != 0
	case int:
		return b != 0
	case float64:
		return b != 0
	case string:
		return b == "1" || b == "true"
	default:
		return false
	}
}
