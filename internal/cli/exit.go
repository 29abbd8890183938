package cli

import (
	"errors"

	"github.com/dmitrijs2005/trusty/internal/common"
	"github.com/dmitrijs2005/trusty/internal/cryptox"
)

// Process exit codes.
const (
	ExitOK              = 0
	ExitError           = 1
	ExitUsage           = 2
	ExitAuthExhausted   = 3
	ExitInvalidRecovery = 4
	ExitDecryption      = 5
	ExitAttributeWrite  = 6
	ExitNotFound        = 7
	ExitNotInitialized  = 8
)

// usageError marks bad arguments or flags.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func newUsageError(err error) error {
	return &usageError{err: err}
}

// isNoop reports errors that describe a request with nothing to do. They are
// reported to the user as information and end the process successfully.
func isNoop(err error) bool {
	return errors.Is(err, common.ErrNoteAlreadyProtected) || errors.Is(err, common.ErrNoteNotProtected)
}

// ExitCode maps an error returned by a command to a process exit code. An
// error can wrap more than one cause (a failed rotation after the last
// password attempt, say); the more specific cause wins.
func ExitCode(err error) int {
	var ue *usageError

	switch {
	case err == nil, isNoop(err):
		return ExitOK
	case errors.As(err, &ue):
		return ExitUsage
	case errors.Is(err, common.ErrInvalidRecoveryCode):
		return ExitInvalidRecovery
	case errors.Is(err, common.ErrAttributeWrite):
		return ExitAttributeWrite
	case errors.Is(err, cryptox.ErrDecryption):
		return ExitDecryption
	case errors.Is(err, common.ErrAuthenticationExhausted):
		return ExitAuthExhausted
	case errors.Is(err, common.ErrNotInitialized):
		return ExitNotInitialized
	case errors.Is(err, common.ErrorNotFound):
		return ExitNotFound
	default:
		return ExitError
	}
}
