package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/trusty/internal/common"
	"github.com/dmitrijs2005/trusty/internal/cryptox"
	"github.com/dmitrijs2005/trusty/internal/dbx"
	"github.com/dmitrijs2005/trusty/internal/logging"
	"github.com/dmitrijs2005/trusty/internal/repositories/attributes"
	"github.com/google/uuid"
)

// bossKeySize is the number of random bytes behind the hex-encoded boss key.
const bossKeySize = 32

// KeyManager owns the boss key: the secret that encrypts protected notes. The
// boss key is stored twice, wrapped under the password and under the recovery
// code, so the password can change without touching any note.
//
// The boss key plaintext is never persisted.
type KeyManager struct {
	db       *sql.DB
	cipher   *cryptox.Cipher
	gate     *PasswordGate
	prompter Prompter
	reporter Reporter
	log      logging.Logger
}

func NewKeyManager(db *sql.DB, c *cryptox.Cipher, gate *PasswordGate, p Prompter, r Reporter, log logging.Logger) *KeyManager {
	return &KeyManager{db: db, cipher: c, gate: gate, prompter: p, reporter: r, log: log}
}

func (k *KeyManager) attrs() attributes.Repository {
	return attributes.NewSQLiteRepository(k.db)
}

// IsInitialized reports whether a password has been set up.
func (k *KeyManager) IsInitialized(ctx context.Context) (bool, error) {
	_, err := k.attrs().Get(ctx, attributes.TableApp, attributes.KeyPassword)
	if errors.Is(err, common.ErrorNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Initialize creates the boss key and a recovery code, and stores both
// fingerprints and both wrappings. It returns the recovery code, which is
// not recoverable afterwards.
func (k *KeyManager) Initialize(ctx context.Context, password string) (string, error) {
	ok, err := k.IsInitialized(ctx)
	if err != nil {
		return "", err
	}
	if ok {
		return "", common.ErrAlreadyInitialized
	}

	bossKey, err := common.MakeRandHexString(bossKeySize)
	if err != nil {
		return "", fmt.Errorf("failed to generate boss key: %w", err)
	}
	recoveryCode := uuid.NewString()

	plan, err := k.planCredentials(password, recoveryCode, bossKey)
	if err != nil {
		return "", err
	}

	err = dbx.WithTx(ctx, k.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return attributes.SetAll(ctx, attributes.NewSQLiteRepository(tx), plan)
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrAttributeWrite, err)
	}

	k.log.Info(ctx, "credentials initialized")
	return recoveryCode, nil
}

// VerifyRecoveryCode checks code against the stored recovery code fingerprint.
func (k *KeyManager) VerifyRecoveryCode(ctx context.Context, code string) error {
	fp, err := k.attrs().Get(ctx, attributes.TableApp, attributes.KeyRecoveryCode)
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrNotInitialized
	}
	if err != nil {
		return err
	}
	if !k.cipher.MatchesFingerprint(code, fp) {
		return common.ErrInvalidRecoveryCode
	}
	return nil
}

// Rotate replaces the password. The presented recovery code unlocks the boss
// key, which is then wrapped again under newPassword and a fresh recovery
// code. The old recovery code stops working. Nothing is written when the
// presented code is wrong.
func (k *KeyManager) Rotate(ctx context.Context, newPassword, presentedCode string) (string, error) {
	if err := ValidatePassword(newPassword); err != nil {
		return "", err
	}
	if err := k.VerifyRecoveryCode(ctx, presentedCode); err != nil {
		return "", err
	}

	wrapped, err := k.attrs().Get(ctx, attributes.TableApp, attributes.KeyRecoveryBossKey)
	if err != nil {
		return "", err
	}
	bossKey, err := k.cipher.Decrypt(presentedCode, wrapped)
	if err != nil {
		return "", fmt.Errorf("failed to unwrap boss key: %w", err)
	}

	recoveryCode := uuid.NewString()
	plan, err := k.planCredentials(newPassword, recoveryCode, bossKey)
	if err != nil {
		return "", err
	}

	err = dbx.WithTx(ctx, k.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := attributes.NewSQLiteRepository(tx)
		for _, a := range plan {
			if err := repo.Update(ctx, a.Table, a.Key, a.Value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrAttributeWrite, err)
	}

	k.log.Info(ctx, "password rotated")
	return recoveryCode, nil
}

// Unwrap returns the boss key, opened with password.
func (k *KeyManager) Unwrap(ctx context.Context, password string) (string, error) {
	wrapped, err := k.attrs().Get(ctx, attributes.TableApp, attributes.KeyBossKey)
	if errors.Is(err, common.ErrorNotFound) {
		return "", common.ErrNotInitialized
	}
	if err != nil {
		return "", err
	}
	return k.cipher.Decrypt(password, wrapped)
}

// planCredentials computes every value written by Initialize and Rotate
// before anything is written.
func (k *KeyManager) planCredentials(password, recoveryCode, bossKey string) ([]attributes.Attribute, error) {
	passwordFP, err := k.cipher.Fingerprint(password)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint password: %w", err)
	}
	recoveryFP, err := k.cipher.Fingerprint(recoveryCode)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint recovery code: %w", err)
	}
	byPassword, err := k.cipher.Encrypt(password, bossKey)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap boss key: %w", err)
	}
	byRecovery, err := k.cipher.Encrypt(recoveryCode, bossKey)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap boss key: %w", err)
	}

	return []attributes.Attribute{
		{Table: attributes.TableApp, Key: attributes.KeyPassword, Value: passwordFP},
		{Table: attributes.TableApp, Key: attributes.KeyRecoveryCode, Value: recoveryFP},
		{Table: attributes.TableApp, Key: attributes.KeyBossKey, Value: byPassword},
		{Table: attributes.TableApp, Key: attributes.KeyRecoveryBossKey, Value: byRecovery},
	}, nil
}

// Setup runs first-time password creation and reports the recovery code.
func (k *KeyManager) Setup(ctx context.Context) (string, error) {
	ok, err := k.IsInitialized(ctx)
	if err != nil {
		return "", err
	}
	if ok {
		k.reporter.Info("A password is already set up. Use passwd to change it.")
		return "", common.ErrAlreadyInitialized
	}

	var recoveryCode string
	err = k.gate.authenticateWith(ctx, GateOptions{RequireConfirmation: true}, func(password string) error {
		code, err := k.Initialize(ctx, password)
		if err != nil {
			return err
		}
		recoveryCode = code
		return nil
	})
	if err != nil {
		k.reportFatal(err)
		return "", err
	}

	k.reportRecoveryCode(recoveryCode)
	return recoveryCode, nil
}

// ChangePassword asks for the recovery code and a new password, then rotates.
func (k *KeyManager) ChangePassword(ctx context.Context) (string, error) {
	ok, err := k.IsInitialized(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		k.reporter.Error("No password is set up yet. Run setup first.")
		return "", common.ErrNotInitialized
	}

	presented, err := k.prompter.PromptSecret(LabelRecoveryCode)
	if err != nil {
		return "", fmt.Errorf("failed to read recovery code: %w", err)
	}
	presented = strings.TrimSpace(presented)

	if err := k.VerifyRecoveryCode(ctx, presented); err != nil {
		if errors.Is(err, common.ErrInvalidRecoveryCode) {
			k.reporter.Error(common.ErrInvalidRecoveryCode.Error())
		}
		return "", err
	}

	var recoveryCode string
	err = k.gate.authenticateWith(ctx, GateOptions{RequireConfirmation: true}, func(password string) error {
		code, err := k.Rotate(ctx, password, presented)
		if err != nil {
			return err
		}
		recoveryCode = code
		return nil
	})
	if err != nil {
		k.reportFatal(err)
		return "", err
	}

	k.reporter.Info("Password changed. Your previous recovery code no longer works.")
	k.reportRecoveryCode(recoveryCode)
	return recoveryCode, nil
}

func (k *KeyManager) reportRecoveryCode(code string) {
	k.reporter.Info("Your recovery code is: " + code)
	k.reporter.Info("Store it somewhere safe. It is the only way to reset a forgotten password.")
}

func (k *KeyManager) reportFatal(err error) {
	switch {
	case errors.Is(err, common.ErrAttributeWrite):
		k.reporter.Error("Could not save credentials.")
	case errors.Is(err, common.ErrAuthenticationExhausted):
		k.reporter.Error("Too many failed attempts.")
	}
}
