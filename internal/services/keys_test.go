package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/trusty/internal/common"
	"github.com/dmitrijs2005/trusty/internal/cryptox"
	"github.com/dmitrijs2005/trusty/internal/repositories/attributes"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize_WrappingsAgree(t *testing.T) {
	e, code := initialized(t, "Secret1")
	ctx := context.Background()

	_, err := uuid.Parse(code)
	require.NoError(t, err, "recovery code is a uuid")

	byPassword, err := e.keys.Unwrap(ctx, "Secret1")
	require.NoError(t, err)
	assert.Len(t, byPassword, 2*bossKeySize)

	byRecovery, err := e.cipher.Decrypt(code, e.attr(t, attributes.KeyRecoveryBossKey))
	require.NoError(t, err)
	assert.Equal(t, byPassword, byRecovery)

	assert.True(t, e.cipher.MatchesFingerprint("Secret1", e.attr(t, attributes.KeyPassword)))
	assert.True(t, e.cipher.MatchesFingerprint(code, e.attr(t, attributes.KeyRecoveryCode)))
}

func TestInitialize_RefusesSecondTime(t *testing.T) {
	e, _ := initialized(t, "Secret1")
	before := e.attr(t, attributes.KeyBossKey)

	_, err := e.keys.Initialize(context.Background(), "Other1")
	require.ErrorIs(t, err, common.ErrAlreadyInitialized)
	assert.Equal(t, before, e.attr(t, attributes.KeyBossKey))
}

func TestUnwrap_WrongPassword(t *testing.T) {
	e, _ := initialized(t, "Secret1")

	_, err := e.keys.Unwrap(context.Background(), "Secret2")
	require.ErrorIs(t, err, cryptox.ErrDecryption)
}

func TestUnwrap_NotInitialized(t *testing.T) {
	e := newEnv(t)

	_, err := e.keys.Unwrap(context.Background(), "Secret1")
	require.ErrorIs(t, err, common.ErrNotInitialized)
}

func TestRotate_KeepsBossKey(t *testing.T) {
	e, code := initialized(t, "Secret1")
	ctx := context.Background()

	original, err := e.keys.Unwrap(ctx, "Secret1")
	require.NoError(t, err)

	newCode, err := e.keys.Rotate(ctx, "NewPass2", code)
	require.NoError(t, err)
	require.NotEqual(t, code, newCode)

	after, err := e.keys.Unwrap(ctx, "NewPass2")
	require.NoError(t, err)
	assert.Equal(t, original, after)

	_, err = e.keys.Unwrap(ctx, "Secret1")
	require.ErrorIs(t, err, cryptox.ErrDecryption)

	byRecovery, err := e.cipher.Decrypt(newCode, e.attr(t, attributes.KeyRecoveryBossKey))
	require.NoError(t, err)
	assert.Equal(t, original, byRecovery)

	_, err = e.keys.Rotate(ctx, "Another3", code)
	require.ErrorIs(t, err, common.ErrInvalidRecoveryCode, "old recovery code is single-use")
}

func TestRotate_InvalidCodeChangesNothing(t *testing.T) {
	e, _ := initialized(t, "Secret1")
	ctx := context.Background()

	keys := []string{
		attributes.KeyPassword, attributes.KeyRecoveryCode,
		attributes.KeyBossKey, attributes.KeyRecoveryBossKey,
	}
	before := map[string]string{}
	for _, k := range keys {
		before[k] = e.attr(t, k)
	}

	_, err := e.keys.Rotate(ctx, "NewPass2", uuid.NewString())
	require.ErrorIs(t, err, common.ErrInvalidRecoveryCode)

	for _, k := range keys {
		assert.Equal(t, before[k], e.attr(t, k), k)
	}
	_, err = e.keys.Unwrap(ctx, "Secret1")
	require.NoError(t, err)
}

func TestRotate_RejectsBadPassword(t *testing.T) {
	e, code := initialized(t, "Secret1")

	_, err := e.keys.Rotate(context.Background(), "no", code)
	require.ErrorIs(t, err, common.ErrInvalidPasswordFormat)
}

func TestSetup_CreatesCredentials(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.prompter.script("Secret1", "Secret1")

	code, err := e.keys.Setup(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, code)
	assert.Contains(t, e.reporter.infos, "Your recovery code is: "+code)

	_, err = e.keys.Unwrap(ctx, "Secret1")
	require.NoError(t, err)
}

func TestSetup_Exhausted(t *testing.T) {
	e := newEnv(t)
	e.prompter.script("Secret1", "Secret2", "ab", "ab")

	_, err := e.keys.Setup(context.Background())
	require.ErrorIs(t, err, common.ErrAuthenticationExhausted)

	ok, err := e.keys.IsInitialized(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetup_AlreadyDone(t *testing.T) {
	e, _ := initialized(t, "Secret1")

	_, err := e.keys.Setup(context.Background())
	require.ErrorIs(t, err, common.ErrAlreadyInitialized)
	assert.Empty(t, e.prompter.labels)
	assert.Len(t, e.reporter.infos, 1)
}

func TestChangePassword(t *testing.T) {
	e, code := initialized(t, "Secret1")
	ctx := context.Background()
	e.prompter.script(" "+code+"\n", "NewPass2", "NewPass2")

	newCode, err := e.keys.ChangePassword(ctx)
	require.NoError(t, err)
	assert.Equal(t, LabelRecoveryCode, e.prompter.labels[0])
	assert.Equal(t, []string{LabelRecoveryCode, LabelCreatePassword, LabelConfirmPassword}, e.prompter.labels)

	_, err = e.keys.Unwrap(ctx, "NewPass2")
	require.NoError(t, err)
	require.NoError(t, e.keys.VerifyRecoveryCode(ctx, newCode))
}

func TestChangePassword_InvalidRecoveryCode(t *testing.T) {
	e, _ := initialized(t, "Secret1")
	e.prompter.script("not-the-code")

	_, err := e.keys.ChangePassword(context.Background())
	require.ErrorIs(t, err, common.ErrInvalidRecoveryCode)
	assert.Equal(t, []string{"invalid recovery key"}, e.reporter.errors)
	assert.Len(t, e.prompter.labels, 1, "no password prompt after a bad code")
}

func TestChangePassword_NotInitialized(t *testing.T) {
	e := newEnv(t)

	_, err := e.keys.ChangePassword(context.Background())
	require.ErrorIs(t, err, common.ErrNotInitialized)
}

func TestInitialize_WriteFailureRollsBack(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// a trigger makes the last of the four writes fail
	_, err := e.db.Exec(`
CREATE TRIGGER fail_recovery_wrap BEFORE INSERT ON app
WHEN NEW.key = 'recovery_boss_key'
BEGIN SELECT RAISE(ABORT, 'disk full'); END;`)
	require.NoError(t, err)

	_, err = e.keys.Initialize(ctx, "Secret1")
	require.ErrorIs(t, err, common.ErrAttributeWrite)

	_, err = attributes.NewSQLiteRepository(e.db).Get(ctx, attributes.TableApp, attributes.KeyPassword)
	require.True(t, errors.Is(err, common.ErrorNotFound), "partial writes are rolled back")
}

func TestSetup_WriteFailureIsFinal(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.db.Exec(`
CREATE TRIGGER fail_recovery_wrap BEFORE INSERT ON app
WHEN NEW.key = 'recovery_boss_key'
BEGIN SELECT RAISE(ABORT, 'disk full'); END;`)
	require.NoError(t, err)

	e.prompter.script("Secret1", "Secret1", "Secret1", "Secret1")

	_, err = e.keys.Setup(ctx)
	require.ErrorIs(t, err, common.ErrAttributeWrite)
	assert.NotErrorIs(t, err, common.ErrAuthenticationExhausted)
	assert.Equal(t, []string{LabelCreatePassword, LabelConfirmPassword}, e.prompter.labels)
	assert.Contains(t, e.reporter.errors, "Could not save credentials.")

	ok, err := e.keys.IsInitialized(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRotate_WriteFailureRollsBack(t *testing.T) {
	e, code := initialized(t, "Secret1")
	ctx := context.Background()

	keys := []string{
		attributes.KeyPassword, attributes.KeyRecoveryCode,
		attributes.KeyBossKey, attributes.KeyRecoveryBossKey,
	}
	before := map[string]string{}
	for _, k := range keys {
		before[k] = e.attr(t, k)
	}

	_, err := e.db.Exec(`
CREATE TRIGGER fail_recovery_rewrap BEFORE UPDATE ON app
WHEN NEW.key = 'recovery_boss_key'
BEGIN SELECT RAISE(ABORT, 'disk full'); END;`)
	require.NoError(t, err)

	_, err = e.keys.Rotate(ctx, "NewPass2", code)
	require.ErrorIs(t, err, common.ErrAttributeWrite)

	for _, k := range keys {
		assert.Equal(t, before[k], e.attr(t, k), k)
	}
	require.NoError(t, e.keys.VerifyRecoveryCode(ctx, code))
	_, err = e.keys.Unwrap(ctx, "Secret1")
	require.NoError(t, err)
}

func TestChangePassword_WriteFailureIsFinal(t *testing.T) {
	e, code := initialized(t, "Secret1")
	ctx := context.Background()

	_, err := e.db.Exec(`
CREATE TRIGGER fail_recovery_rewrap BEFORE UPDATE ON app
WHEN NEW.key = 'recovery_boss_key'
BEGIN SELECT RAISE(ABORT, 'disk full'); END;`)
	require.NoError(t, err)

	e.prompter.script(code, "NewPass2", "NewPass2", "NewPass2", "NewPass2")

	_, err = e.keys.ChangePassword(ctx)
	require.ErrorIs(t, err, common.ErrAttributeWrite)
	assert.Equal(t, []string{LabelRecoveryCode, LabelCreatePassword, LabelConfirmPassword}, e.prompter.labels)
	require.NoError(t, e.keys.VerifyRecoveryCode(ctx, code))
}
