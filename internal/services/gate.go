// Package services holds the application logic of tRusty: the password gate,
// key wrapping, note protection and the note workflows driven by the CLI.
package services

import (
	"context"
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/trusty/internal/common"
	"github.com/dmitrijs2005/trusty/internal/cryptox"
	"github.com/dmitrijs2005/trusty/internal/logging"
	"github.com/dmitrijs2005/trusty/internal/repositories/attributes"
)

// MaxAttempts is the number of password attempts the gate allows.
const MaxAttempts = 2

const minPasswordLength = 3

// Prompt labels.
const (
	LabelEnterPassword   = "Enter password:"
	LabelCreatePassword  = "Create your password:"
	LabelConfirmPassword = "Enter your password again:"
	LabelRecoveryCode    = "Enter your recovery code:"
)

// Prompter reads secrets from the user without echo.
type Prompter interface {
	PromptSecret(label string) (string, error)
}

// Reporter receives user-visible outcomes.
type Reporter interface {
	Info(msg string)
	Error(msg string)
}

// GateOptions selects the checks the gate runs on each attempt.
type GateOptions struct {
	// VerifyAgainstStore requires the candidate to match the stored password
	// fingerprint.
	VerifyAgainstStore bool
	// RequireConfirmation asks for the password twice.
	RequireConfirmation bool
}

// PasswordGate runs the bounded password prompt loop.
type PasswordGate struct {
	attrs    attributes.Repository
	cipher   *cryptox.Cipher
	prompter Prompter
	reporter Reporter
	log      logging.Logger
}

func NewPasswordGate(attrs attributes.Repository, c *cryptox.Cipher, p Prompter, r Reporter, log logging.Logger) *PasswordGate {
	return &PasswordGate{attrs: attrs, cipher: c, prompter: p, reporter: r, log: log}
}

// ValidatePassword applies the password format policy: at least three
// characters, letters and digits only.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", common.ErrInvalidPasswordFormat, minPasswordLength)
	}
	for _, r := range password {
		if !isAlphanumeric(r) {
			return fmt.Errorf("%w: only letters and digits are allowed", common.ErrInvalidPasswordFormat)
		}
	}
	return nil
}

// isAlphanumeric accepts alphabetic and numeric characters in the Unicode
// sense, including letter numbers and dependent vowel signs.
func isAlphanumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.Is(unicode.Other_Alphabetic, r)
}

// Authenticate prompts for a password up to MaxAttempts times. A candidate
// that passes every check in opts is handed to onSuccess; if onSuccess
// returns true the gate succeeds, otherwise the next attempt starts.
//
// It returns common.ErrAuthenticationExhausted when no attempt succeeded, or
// the prompt error if input could not be read.
func (g *PasswordGate) Authenticate(ctx context.Context, opts GateOptions, onSuccess func(password string) bool) error {
	label := LabelEnterPassword
	if opts.RequireConfirmation {
		label = LabelCreatePassword
	}

	var stored string
	if opts.VerifyAgainstStore {
		fp, err := g.attrs.Get(ctx, attributes.TableApp, attributes.KeyPassword)
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrNotInitialized
		}
		if err != nil {
			return err
		}
		stored = fp
	}

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		password, err := g.prompter.PromptSecret(label)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}

		if opts.RequireConfirmation {
			again, err := g.prompter.PromptSecret(LabelConfirmPassword)
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			if again != password {
				g.reporter.Error("Passwords do not match.")
				continue
			}
		}

		if err := ValidatePassword(password); err != nil {
			g.reporter.Error("Password must be at least 3 characters of letters and digits only.")
			continue
		}

		if opts.VerifyAgainstStore && !g.cipher.MatchesFingerprint(password, stored) {
			g.reporter.Error("Incorrect password.")
			g.log.Debug(ctx, "password rejected", "attempt", attempt)
			continue
		}

		if onSuccess(password) {
			return nil
		}
		g.log.Debug(ctx, "password accepted but operation failed", "attempt", attempt)
	}

	return common.ErrAuthenticationExhausted
}

// authenticateWith adapts an error-returning operation to Authenticate. When
// the gate is exhausted after the operation itself failed, the returned error
// carries both causes. A failed credential write ends the loop at once and is
// returned as is.
func (g *PasswordGate) authenticateWith(ctx context.Context, opts GateOptions, op func(password string) error) error {
	var opErr error
	err := g.Authenticate(ctx, opts, func(password string) bool {
		opErr = op(password)
		return opErr == nil || errors.Is(opErr, common.ErrAttributeWrite)
	})
	if err == nil {
		return opErr
	}
	if errors.Is(err, common.ErrAuthenticationExhausted) && opErr != nil {
		return fmt.Errorf("%w: %w", err, opErr)
	}
	return err
}
