package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/trusty/internal/common"
	"github.com/dmitrijs2005/trusty/internal/dbx"
	"github.com/dmitrijs2005/trusty/internal/logging"
	"github.com/dmitrijs2005/trusty/internal/models"
	"github.com/dmitrijs2005/trusty/internal/repositories/attributes"
	"github.com/dmitrijs2005/trusty/internal/repositories/notes"
)

// EncryptedPlaceholder replaces the title of protected notes in listings.
const EncryptedPlaceholder = "🔒 ENCRYPTED"

// DefaultTitle is used when a note is created without a title.
const DefaultTitle = "Untitled"

// noLastTouched is the last_touched value before any note was touched.
const noLastTouched = "0"

// AddRequest describes a new note.
type AddRequest struct {
	Title string
	Body  string
	// Quick derives a missing title from the first line of Body.
	Quick bool
	// Encrypt stores the note protected from the start.
	Encrypt bool
}

// EditRequest changes the title, the body or both. Nil fields are kept.
type EditRequest struct {
	Title *string
	Body  *string
}

// NoteService implements the note workflows used by the CLI.
type NoteService struct {
	db       *sql.DB
	engine   *ProtectionEngine
	reporter Reporter
	log      logging.Logger
}

func NewNoteService(db *sql.DB, engine *ProtectionEngine, r Reporter, log logging.Logger) *NoteService {
	return &NoteService{db: db, engine: engine, reporter: r, log: log}
}

func (s *NoteService) notes() notes.Repository {
	return notes.NewSQLiteRepository(s.db)
}

func (s *NoteService) attrs() attributes.Repository {
	return attributes.NewSQLiteRepository(s.db)
}

// TitleFor picks the title of a new note.
func TitleFor(req AddRequest) string {
	title := strings.TrimSpace(req.Title)
	if title == "" && req.Quick {
		first, _, _ := strings.Cut(strings.TrimSpace(req.Body), "\n")
		title = strings.TrimSpace(first)
	}
	if title == "" {
		return DefaultTitle
	}
	return title
}

// Add stores a new note and marks it as last touched.
func (s *NoteService) Add(ctx context.Context, req AddRequest) (int64, error) {
	n := &models.Note{Title: TitleFor(req), Body: req.Body}

	if req.Encrypt {
		err := s.engine.WithPassword(ctx, func(password string) error {
			title, body, err := s.engine.EncryptNote(ctx, password, n.Title, n.Body)
			if err != nil {
				return err
			}
			n.Title, n.Body, n.Protected = title, body, true
			return nil
		})
		if err != nil {
			return 0, err
		}
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := notes.NewSQLiteRepository(tx).Insert(ctx, n); err != nil {
			return err
		}
		return attributes.NewSQLiteRepository(tx).
			Set(ctx, attributes.TableApp, attributes.KeyLastTouched, strconv.FormatInt(n.ID, 10))
	})
	if err != nil {
		return 0, err
	}

	s.log.Info(ctx, "note added", "note_id", n.ID, "protected", n.Protected)
	return n.ID, nil
}

// Get returns a note in plaintext and marks it as last touched. Protected
// notes are decrypted through the password gate.
func (s *NoteService) Get(ctx context.Context, id int64) (*models.Note, error) {
	n, err := s.notes().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.touch(ctx, id); err != nil {
		return nil, err
	}

	return s.engine.Reveal(ctx, n)
}

// LastTouchedID returns the id of the most recently added or read note.
func (s *NoteService) LastTouchedID(ctx context.Context) (int64, error) {
	v, err := s.attrs().Get(ctx, attributes.TableApp, attributes.KeyLastTouched)
	if err != nil {
		return 0, err
	}
	if v == noLastTouched {
		return 0, fmt.Errorf("no note touched yet: %w", common.ErrorNotFound)
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed last touched value %q: %w", v, err)
	}
	return id, nil
}

// GetLastTouched is Get for the last touched note.
func (s *NoteService) GetLastTouched(ctx context.Context) (*models.Note, error) {
	id, err := s.LastTouchedID(ctx)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// List returns live or trashed summaries. Titles of protected notes are
// replaced by EncryptedPlaceholder.
func (s *NoteService) List(ctx context.Context, trashed bool) ([]models.NoteSummary, error) {
	list, err := s.notes().List(ctx, trashed)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].Protected {
			list[i].Title = EncryptedPlaceholder
		}
	}
	return list, nil
}

// Edit rewrites the title and/or body of a note. Protected notes are
// decrypted, changed and encrypted again, so they stay protected.
func (s *NoteService) Edit(ctx context.Context, id int64, req EditRequest) error {
	if req.Title == nil && req.Body == nil {
		return nil
	}

	f, err := s.notes().ReadFields(ctx, id)
	if err != nil {
		return err
	}

	title, body := f.Title, f.Body
	if !f.Protected {
		if req.Title != nil {
			title = *req.Title
		}
		if req.Body != nil {
			body = *req.Body
		}
	} else {
		err = s.engine.WithPassword(ctx, func(password string) error {
			plainTitle, plainBody, err := s.engine.DecryptNote(ctx, password, f.Title, f.Body)
			if err != nil {
				return err
			}
			if req.Title != nil {
				plainTitle = *req.Title
			}
			if req.Body != nil {
				plainBody = *req.Body
			}
			title, body, err = s.engine.EncryptNote(ctx, password, plainTitle, plainBody)
			return err
		})
		if err != nil {
			return err
		}
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := notes.NewSQLiteRepository(tx).WriteFields(ctx, f.ContentID, title, body); err != nil {
			return err
		}
		return attributes.NewSQLiteRepository(tx).
			Set(ctx, attributes.TableApp, attributes.KeyLastTouched, strconv.FormatInt(id, 10))
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "note edited", "note_id", id)
	return nil
}

// Trash moves a note to the trash.
func (s *NoteService) Trash(ctx context.Context, id int64) error {
	return s.notes().SetTrashed(ctx, id, true)
}

// Restore takes a note out of the trash.
func (s *NoteService) Restore(ctx context.Context, id int64) error {
	return s.notes().SetTrashed(ctx, id, false)
}

// Delete removes a note permanently.
func (s *NoteService) Delete(ctx context.Context, id int64) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := notes.NewSQLiteRepository(tx).Delete(ctx, id); err != nil {
			return err
		}
		return s.forget(ctx, attributes.NewSQLiteRepository(tx), id)
	})
	if err != nil {
		return err
	}
	s.log.Info(ctx, "note deleted", "note_id", id)
	return nil
}

// EmptyTrash permanently removes every trashed note.
func (s *NoteService) EmptyTrash(ctx context.Context) (int, error) {
	var n int
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		attrs := attributes.NewSQLiteRepository(tx)
		last, err := attrs.Get(ctx, attributes.TableApp, attributes.KeyLastTouched)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		repo := notes.NewSQLiteRepository(tx)
		if n, err = repo.EmptyTrash(ctx); err != nil {
			return err
		}

		id, err := strconv.ParseInt(last, 10, 64)
		if err != nil || id == 0 {
			return nil
		}
		if _, err := repo.GetByID(ctx, id); errors.Is(err, common.ErrorNotFound) {
			return attrs.Set(ctx, attributes.TableApp, attributes.KeyLastTouched, noLastTouched)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Info(ctx, "trash emptied", "count", n)
	return n, nil
}

// Dump returns all live notes. With decrypt set, protected notes are
// decrypted in one batch; otherwise their title is masked and their body
// left empty.
func (s *NoteService) Dump(ctx context.Context, decrypt bool) ([]models.Note, error) {
	list, err := s.notes().ListAll(ctx, false)
	if err != nil {
		return nil, err
	}

	if decrypt {
		return s.engine.DecryptBulk(ctx, list)
	}

	for i := range list {
		if list[i].Protected {
			list[i].Title = EncryptedPlaceholder
			list[i].Body = ""
		}
	}
	return list, nil
}

// Summary returns store statistics with protected titles masked.
func (s *NoteService) Summary(ctx context.Context) (*models.Stats, error) {
	st, err := s.notes().Stats(ctx)
	if err != nil {
		return nil, err
	}
	for _, ns := range []*models.NoteStat{st.Largest, st.Freshest, st.Stalest} {
		if ns != nil && ns.Protected {
			ns.Title = EncryptedPlaceholder
		}
	}
	return st, nil
}

// ConfigGet returns a user setting.
func (s *NoteService) ConfigGet(ctx context.Context, key string) (string, error) {
	return s.attrs().Get(ctx, attributes.TableConfig, key)
}

// ConfigSet stores a user setting.
func (s *NoteService) ConfigSet(ctx context.Context, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("config key must not be empty")
	}
	return s.attrs().Set(ctx, attributes.TableConfig, key, value)
}

// ConfigList returns all user settings.
func (s *NoteService) ConfigList(ctx context.Context) (map[string]string, error) {
	return s.attrs().List(ctx, attributes.TableConfig)
}

// ConfigUnset removes a user setting.
func (s *NoteService) ConfigUnset(ctx context.Context, key string) error {
	return s.attrs().Delete(ctx, attributes.TableConfig, key)
}

func (s *NoteService) touch(ctx context.Context, id int64) error {
	return s.attrs().Set(ctx, attributes.TableApp, attributes.KeyLastTouched, strconv.FormatInt(id, 10))
}

// forget resets last_touched if it points at id.
func (s *NoteService) forget(ctx context.Context, repo attributes.Repository, id int64) error {
	v, err := repo.Get(ctx, attributes.TableApp, attributes.KeyLastTouched)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return err
	}
	if v != strconv.FormatInt(id, 10) {
		return nil
	}
	return repo.Set(ctx, attributes.TableApp, attributes.KeyLastTouched, noLastTouched)
}
