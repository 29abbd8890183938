// Package attributes is the key/value store that holds credential material
// and application settings.
//
// Values live in one of two tables: app (password fingerprint, wrapped keys,
// last touched note) and config (user settings).
package attributes

import (
	"context"
	"fmt"
)

// Table selects one of the two attribute tables.
type Table string

const (
	TableApp    Table = "app"
	TableConfig Table = "config"
)

// Keys stored in the app table.
const (
	KeyPassword        = "password"
	KeyRecoveryCode    = "recovery_code"
	KeyBossKey         = "boss_key"
	KeyRecoveryBossKey = "recovery_boss_key"
	KeyLastTouched     = "last_touched"
)

// Validate rejects anything but the two known tables. Table names end up in
// SQL text, so this check guards every query.
func (t Table) Validate() error {
	switch t {
	case TableApp, TableConfig:
		return nil
	default:
		return fmt.Errorf("unknown attribute table %q", string(t))
	}
}

// Attribute is a single key/value row, used for batched writes.
type Attribute struct {
	Table Table
	Key   string
	Value string
}

type Repository interface {
	// Get returns the value of key, or common.ErrorNotFound.
	Get(ctx context.Context, table Table, key string) (string, error)
	// Set inserts or overwrites key.
	Set(ctx context.Context, table Table, key, value string) error
	// Update overwrites an existing key; a missing key is an error.
	Update(ctx context.Context, table Table, key, value string) error
	Delete(ctx context.Context, table Table, key string) error
	List(ctx context.Context, table Table) (map[string]string, error)
}
