package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/trusty/internal/common"
	"github.com/dmitrijs2005/trusty/internal/cryptox"
	"github.com/dmitrijs2005/trusty/internal/dbx"
	"github.com/dmitrijs2005/trusty/internal/logging"
	"github.com/dmitrijs2005/trusty/internal/models"
	"github.com/dmitrijs2005/trusty/internal/repositories/notes"
)

// ProtectionEngine encrypts and decrypts note title and body under the boss
// key. Every operation that needs the boss key goes through the password gate.
type ProtectionEngine struct {
	db       *sql.DB
	cipher   *cryptox.Cipher
	gate     *PasswordGate
	keys     *KeyManager
	reporter Reporter
	log      logging.Logger
}

func NewProtectionEngine(db *sql.DB, c *cryptox.Cipher, gate *PasswordGate, keys *KeyManager, r Reporter, log logging.Logger) *ProtectionEngine {
	return &ProtectionEngine{db: db, cipher: c, gate: gate, keys: keys, reporter: r, log: log}
}

func (e *ProtectionEngine) notes() notes.Repository {
	return notes.NewSQLiteRepository(e.db)
}

// EncryptNote encrypts title and body with the boss key unwrapped by password.
func (e *ProtectionEngine) EncryptNote(ctx context.Context, password, title, body string) (string, string, error) {
	bossKey, err := e.keys.Unwrap(ctx, password)
	if err != nil {
		return "", "", err
	}
	return e.seal(bossKey, title, body)
}

// DecryptNote is the inverse of EncryptNote.
func (e *ProtectionEngine) DecryptNote(ctx context.Context, password, title, body string) (string, string, error) {
	bossKey, err := e.keys.Unwrap(ctx, password)
	if err != nil {
		return "", "", err
	}
	return e.open(bossKey, title, body)
}

// WithPassword runs op with a password verified against the store.
func (e *ProtectionEngine) WithPassword(ctx context.Context, op func(password string) error) error {
	return e.gate.authenticateWith(ctx, GateOptions{VerifyAgainstStore: true}, op)
}

// Protect encrypts a note in place. A note that is already protected is left
// untouched and common.ErrNoteAlreadyProtected is returned.
func (e *ProtectionEngine) Protect(ctx context.Context, id int64) error {
	f, err := e.notes().ReadFields(ctx, id)
	if err != nil {
		return err
	}
	if f.Protected {
		e.reporter.Info(fmt.Sprintf("Note %d is already encrypted.", id))
		return common.ErrNoteAlreadyProtected
	}

	bossKey, err := e.unlock(ctx)
	if err != nil {
		return err
	}
	title, body, err := e.seal(bossKey, f.Title, f.Body)
	if err != nil {
		return err
	}

	if err := e.store(ctx, id, f.ContentID, title, body, true); err != nil {
		return err
	}
	e.log.Info(ctx, "note protected", "note_id", id)
	return nil
}

// Unprotect decrypts a note in place. A note that is not protected is left
// untouched and common.ErrNoteNotProtected is returned.
func (e *ProtectionEngine) Unprotect(ctx context.Context, id int64) error {
	f, err := e.notes().ReadFields(ctx, id)
	if err != nil {
		return err
	}
	if !f.Protected {
		e.reporter.Info(fmt.Sprintf("Note %d is not encrypted.", id))
		return common.ErrNoteNotProtected
	}

	bossKey, err := e.unlock(ctx)
	if err != nil {
		return err
	}
	title, body, err := e.open(bossKey, f.Title, f.Body)
	if err != nil {
		return err
	}

	if err := e.store(ctx, id, f.ContentID, title, body, false); err != nil {
		return err
	}
	e.log.Info(ctx, "note unprotected", "note_id", id)
	return nil
}

// Reveal returns a copy of n with title and body in plaintext. Unprotected
// notes are returned as they are without prompting.
func (e *ProtectionEngine) Reveal(ctx context.Context, n *models.Note) (*models.Note, error) {
	out := *n
	if !n.Protected {
		return &out, nil
	}

	bossKey, err := e.unlock(ctx)
	if err != nil {
		return nil, err
	}
	if out.Title, out.Body, err = e.open(bossKey, n.Title, n.Body); err != nil {
		return nil, err
	}
	return &out, nil
}

// DecryptBulk reveals every protected note in list with a single password
// prompt. Notes that fail to decrypt are reported and left out of the
// result. A failed unlock aborts the whole batch.
func (e *ProtectionEngine) DecryptBulk(ctx context.Context, list []models.Note) ([]models.Note, error) {
	needsKey := false
	for _, n := range list {
		if n.Protected {
			needsKey = true
			break
		}
	}
	if !needsKey {
		return list, nil
	}

	bossKey, err := e.unlock(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.Note, 0, len(list))
	for _, n := range list {
		if n.Protected {
			title, body, err := e.open(bossKey, n.Title, n.Body)
			if err != nil {
				e.reporter.Error(fmt.Sprintf("Note %d could not be decrypted, skipping.", n.ID))
				e.log.Warn(ctx, "skipping undecryptable note", "note_id", n.ID, "error", err)
				continue
			}
			n.Title, n.Body = title, body
		}
		out = append(out, n)
	}
	return out, nil
}

// unlock runs the gate against the stored password and returns the boss key.
func (e *ProtectionEngine) unlock(ctx context.Context) (string, error) {
	var bossKey string
	err := e.WithPassword(ctx, func(password string) error {
		k, err := e.keys.Unwrap(ctx, password)
		if err != nil {
			return err
		}
		bossKey = k
		return nil
	})
	if err != nil {
		return "", err
	}
	return bossKey, nil
}

func (e *ProtectionEngine) seal(bossKey, title, body string) (string, string, error) {
	encTitle, err := e.cipher.Encrypt(bossKey, title)
	if err != nil {
		return "", "", fmt.Errorf("failed to encrypt title: %w", err)
	}
	encBody, err := e.cipher.Encrypt(bossKey, body)
	if err != nil {
		return "", "", fmt.Errorf("failed to encrypt body: %w", err)
	}
	return encTitle, encBody, nil
}

func (e *ProtectionEngine) open(bossKey, title, body string) (string, string, error) {
	plainTitle, err := e.cipher.Decrypt(bossKey, title)
	if err != nil {
		return "", "", fmt.Errorf("failed to decrypt title: %w", err)
	}
	plainBody, err := e.cipher.Decrypt(bossKey, body)
	if err != nil {
		return "", "", fmt.Errorf("failed to decrypt body: %w", err)
	}
	return plainTitle, plainBody, nil
}

// store writes both fields and the protected flag in one transaction.
func (e *ProtectionEngine) store(ctx context.Context, id int64, contentID, title, body string, protected bool) error {
	return dbx.WithTx(ctx, e.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := notes.NewSQLiteRepository(tx)
		if err := repo.WriteFields(ctx, contentID, title, body); err != nil {
			return err
		}
		return repo.SetProtected(ctx, id, protected)
	})
}
