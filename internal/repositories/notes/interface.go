// Package notes persists notes as a notes row plus a content row.
//
// The notes row carries identity, title, flags and timestamps; the content row
// carries the body. A note references exactly one content row, written before
// the notes row so the reference is never dangling. Multi-statement operations
// (Insert, Delete, EmptyTrash) should run on a transaction handle.
package notes

import (
	"context"

	"github.com/dmitrijs2005/trusty/internal/models"
)

// Repository describes storage operations for notes.
type Repository interface {
	// Insert writes the content row and then the notes row. It fills in
	// note.ID, and note.ContentID when empty, and returns the new id.
	Insert(ctx context.Context, note *models.Note) (int64, error)

	// GetByID returns a note, trashed or not, or common.ErrorNotFound.
	GetByID(ctx context.Context, id int64) (*models.Note, error)

	// List returns summaries of live (trashed=false) or trashed notes ordered
	// by last update.
	List(ctx context.Context, trashed bool) ([]models.NoteSummary, error)

	// ListAll returns full notes, optionally including trashed ones.
	ListAll(ctx context.Context, includeTrashed bool) ([]models.Note, error)

	// ReadFields returns the fields the protection engine operates on.
	ReadFields(ctx context.Context, id int64) (*models.NoteFields, error)

	// WriteFields rewrites title and body of the note owning contentID.
	WriteFields(ctx context.Context, contentID, title, body string) error
	UpdateTitle(ctx context.Context, contentID, title string) error
	UpdateBody(ctx context.Context, contentID, body string) error

	SetProtected(ctx context.Context, id int64, protected bool) error
	SetTrashed(ctx context.Context, id int64, trashed bool) error

	// Delete removes the note and its content row.
	Delete(ctx context.Context, id int64) error

	// EmptyTrash purges all trashed notes and orphaned content rows and
	// returns the number of notes removed.
	EmptyTrash(ctx context.Context) (int, error)

	Stats(ctx context.Context) (*models.Stats, error)
}
