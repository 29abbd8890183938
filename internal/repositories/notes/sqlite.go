package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/trusty/internal/common"
	"github.com/dmitrijs2005/trusty/internal/dbx"
	"github.com/dmitrijs2005/trusty/internal/models"
	"github.com/google/uuid"
)

// timestampLayout is the format SQLite's CURRENT_TIMESTAMP produces (UTC).
const timestampLayout = "2006-01-02 15:04:05"

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, note *models.Note) (int64, error) {
	if note.ContentID == "" {
		note.ContentID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO content (content_id, body) VALUES (?, ?)`,
		note.ContentID, note.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to insert content: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO notes (title, protected, trashed, created, updated, content_id)
		VALUES (?, ?, 0, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP, ?)`,
		note.Title, note.Protected, note.ContentID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert note: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get note id: %w", err)
	}
	note.ID = id
	return id, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Note, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT notes.note_id, notes.content_id, notes.title, content.body,
		       notes.protected, notes.trashed, notes.created, notes.updated
		FROM notes JOIN content ON notes.content_id = content.content_id
		WHERE notes.note_id = ?`, id)

	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("note %d: %w", id, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note %d: %w", id, err)
	}
	return n, nil
}

func (r *SQLiteRepository) List(ctx context.Context, trashed bool) ([]models.NoteSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT note_id, title, protected, updated FROM notes
		WHERE trashed = ? ORDER BY updated, note_id`, trashed)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	result := make([]models.NoteSummary, 0)
	for rows.Next() {
		var (
			s       models.NoteSummary
			updated string
		)
		if err := rows.Scan(&s.ID, &s.Title, &s.Protected, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan note summary: %w", err)
		}
		if s.Updated, err = parseTimestamp(updated); err != nil {
			return nil, err
		}
		result = append(result, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) ListAll(ctx context.Context, includeTrashed bool) ([]models.Note, error) {
	query := `
		SELECT notes.note_id, notes.content_id, notes.title, content.body,
		       notes.protected, notes.trashed, notes.created, notes.updated
		FROM notes JOIN content ON notes.content_id = content.content_id`
	if !includeTrashed {
		query += ` WHERE notes.trashed = 0`
	}
	query += ` ORDER BY notes.note_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	result := make([]models.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		result = append(result, *n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) ReadFields(ctx context.Context, id int64) (*models.NoteFields, error) {
	f := &models.NoteFields{}
	err := r.db.QueryRowContext(ctx, `
		SELECT notes.content_id, notes.title, content.body, notes.protected
		FROM notes JOIN content ON notes.content_id = content.content_id
		WHERE notes.note_id = ?`, id).Scan(&f.ContentID, &f.Title, &f.Body, &f.Protected)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("note %d: %w", id, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read note %d: %w", id, err)
	}
	return f, nil
}

func (r *SQLiteRepository) WriteFields(ctx context.Context, contentID, title, body string) error {
	if err := r.UpdateBody(ctx, contentID, body); err != nil {
		return err
	}
	return r.UpdateTitle(ctx, contentID, title)
}

func (r *SQLiteRepository) UpdateTitle(ctx context.Context, contentID, title string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notes SET title = ?, updated = CURRENT_TIMESTAMP WHERE content_id = ?`, title, contentID)
	if err != nil {
		return fmt.Errorf("failed to update title: %w", err)
	}
	return expectOne(res, "content "+contentID)
}

func (r *SQLiteRepository) UpdateBody(ctx context.Context, contentID, body string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE content SET body = ? WHERE content_id = ?`, body, contentID)
	if err != nil {
		return fmt.Errorf("failed to update body: %w", err)
	}
	if err := expectOne(res, "content "+contentID); err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `UPDATE notes SET updated = CURRENT_TIMESTAMP WHERE content_id = ?`, contentID)
	if err != nil {
		return fmt.Errorf("failed to touch note: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SetProtected(ctx context.Context, id int64, protected bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notes SET protected = ? WHERE note_id = ?`, protected, id)
	if err != nil {
		return fmt.Errorf("failed to set protected flag: %w", err)
	}
	return expectOne(res, fmt.Sprintf("note %d", id))
}

func (r *SQLiteRepository) SetTrashed(ctx context.Context, id int64, trashed bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notes SET trashed = ? WHERE note_id = ?`, trashed, id)
	if err != nil {
		return fmt.Errorf("failed to set trashed flag: %w", err)
	}
	return expectOne(res, fmt.Sprintf("note %d", id))
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	var contentID string
	err := r.db.QueryRowContext(ctx, `SELECT content_id FROM notes WHERE note_id = ?`, id).Scan(&contentID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("note %d: %w", id, common.ErrorNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to look up note %d: %w", id, err)
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE note_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete note %d: %w", id, err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM content WHERE content_id = ?`, contentID); err != nil {
		return fmt.Errorf("failed to delete content %s: %w", contentID, err)
	}
	return nil
}

func (r *SQLiteRepository) EmptyTrash(ctx context.Context) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE trashed = 1`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge trashed notes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `DELETE FROM content WHERE content_id NOT IN (SELECT content_id FROM notes)`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge orphaned content: %w", err)
	}
	return int(n), nil
}

func (r *SQLiteRepository) Stats(ctx context.Context) (*models.Stats, error) {
	s := &models.Stats{}
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN trashed = 1 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN trashed = 0 AND protected = 1 THEN 1 ELSE 0 END), 0)
		FROM notes`).Scan(&s.Total, &s.Trashed, &s.Protected)
	if err != nil {
		return nil, fmt.Errorf("failed to count notes: %w", err)
	}

	picks := []struct {
		dst   **models.NoteStat
		order string
	}{
		{&s.Largest, `LENGTH(content.body) DESC, notes.note_id`},
		{&s.Freshest, `notes.updated DESC, notes.note_id DESC`},
		{&s.Stalest, `notes.updated ASC, notes.note_id ASC`},
	}
	for _, p := range picks {
		st, err := r.pickNote(ctx, p.order)
		if err != nil {
			return nil, err
		}
		*p.dst = st
	}
	return s, nil
}

// pickNote returns the first live note under the given ORDER BY clause. The
// clause is always a constant from Stats.
func (r *SQLiteRepository) pickNote(ctx context.Context, orderBy string) (*models.NoteStat, error) {
	var (
		st      models.NoteStat
		updated string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT notes.note_id, notes.content_id, notes.title, notes.protected,
		       LENGTH(content.body), notes.updated
		FROM notes JOIN content ON notes.content_id = content.content_id
		WHERE notes.trashed = 0
		ORDER BY `+orderBy+` LIMIT 1`).
		Scan(&st.ID, &st.ContentID, &st.Title, &st.Protected, &st.Size, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select note stats: %w", err)
	}
	if st.Updated, err = parseTimestamp(updated); err != nil {
		return nil, err
	}
	return &st, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (*models.Note, error) {
	var (
		n                models.Note
		created, updated string
	)
	if err := s.Scan(&n.ID, &n.ContentID, &n.Title, &n.Body, &n.Protected, &n.Trashed, &created, &updated); err != nil {
		return nil, err
	}

	var err error
	if n.Created, err = parseTimestamp(created); err != nil {
		return nil, err
	}
	if n.Updated, err = parseTimestamp(updated); err != nil {
		return nil, err
	}
	return &n, nil
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(timestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func expectOne(res sql.Result, what string) error {
	if err := dbx.ExpectOneRow(res); err != nil {
		if errors.Is(err, dbx.ErrNoRowsAffected) {
			return fmt.Errorf("%s: %w", what, common.ErrorNotFound)
		}
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}
