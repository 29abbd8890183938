package attributes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/trusty/internal/common"
	"github.com/dmitrijs2005/trusty/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, table Table, key string) (string, error) {
	if err := table.Validate(); err != nil {
		return "", err
	}

	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM `+string(table)+` WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("attribute %s[%s]: %w", table, key, common.ErrorNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get attribute %s[%s]: %w", table, key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, table Table, key, value string) error {
	if err := table.Validate(); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO `+string(table)+` (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set attribute %s[%s]: %w", table, key, err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, table Table, key, value string) error {
	if err := table.Validate(); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `UPDATE `+string(table)+` SET value = ? WHERE key = ?`, value, key)
	if err != nil {
		return fmt.Errorf("failed to update attribute %s[%s]: %w", table, key, err)
	}
	if err := dbx.ExpectOneRow(res); err != nil {
		if errors.Is(err, dbx.ErrNoRowsAffected) {
			return fmt.Errorf("failed to update attribute %s[%s]: %w", table, key, common.ErrorNotFound)
		}
		return fmt.Errorf("failed to update attribute %s[%s]: %w", table, key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, table Table, key string) error {
	if err := table.Validate(); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `DELETE FROM `+string(table)+` WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete attribute %s[%s]: %w", table, key, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, table Table) (map[string]string, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM `+string(table)+` ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list attributes %s: %w", table, err)
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan attribute row: %w", err)
		}
		result[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attribute rows: %w", err)
	}

	return result, nil
}

// SetAll writes attrs in order and stops at the first failure. Run it on a
// transaction handle to make the batch all-or-nothing.
func SetAll(ctx context.Context, repo Repository, attrs []Attribute) error {
	for _, a := range attrs {
		if err := repo.Set(ctx, a.Table, a.Key, a.Value); err != nil {
			return err
		}
	}
	return nil
}
