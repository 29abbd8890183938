package services

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/trusty/internal/cryptox"
	"github.com/dmitrijs2005/trusty/internal/logging"
	"github.com/dmitrijs2005/trusty/internal/repositories/attributes"
	"github.com/dmitrijs2005/trusty/internal/storage"
	"github.com/stretchr/testify/require"
)

var testParams = cryptox.KDFParams{Time: 1, Memory: 1024, Threads: 1}

var errNoMoreInput = errors.New("no more scripted input")

// fakePrompter answers prompts from a script and records the labels it saw.
type fakePrompter struct {
	answers []string
	labels  []string
}

func (f *fakePrompter) next(label string) (string, error) {
	f.labels = append(f.labels, label)
	if len(f.answers) == 0 {
		return "", errNoMoreInput
	}
	a := f.answers[0]
	f.answers = f.answers[1:]
	return a, nil
}

func (f *fakePrompter) PromptSecret(label string) (string, error) { return f.next(label) }

func (f *fakePrompter) script(answers ...string) {
	f.answers = append(f.answers[:0], answers...)
	f.labels = nil
}

type fakeReporter struct {
	infos  []string
	errors []string
}

func (f *fakeReporter) Info(msg string)  { f.infos = append(f.infos, msg) }
func (f *fakeReporter) Error(msg string) { f.errors = append(f.errors, msg) }

type env struct {
	db       *sql.DB
	cipher   *cryptox.Cipher
	prompter *fakePrompter
	reporter *fakeReporter
	gate     *PasswordGate
	keys     *KeyManager
	engine   *ProtectionEngine
	notes    *NoteService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := storage.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "trusty.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	e := &env{
		db:       db,
		cipher:   cryptox.NewCipher(testParams),
		prompter: &fakePrompter{},
		reporter: &fakeReporter{},
	}
	log := logging.Discard()
	e.gate = NewPasswordGate(attributes.NewSQLiteRepository(db), e.cipher, e.prompter, e.reporter, log)
	e.keys = NewKeyManager(db, e.cipher, e.gate, e.prompter, e.reporter, log)
	e.engine = NewProtectionEngine(db, e.cipher, e.gate, e.keys, e.reporter, log)
	e.notes = NewNoteService(db, e.engine, e.reporter, log)
	return e
}

// initialized returns an env with password set up and the recovery code.
func initialized(t *testing.T, password string) (*env, string) {
	t.Helper()
	e := newEnv(t)
	code, err := e.keys.Initialize(context.Background(), password)
	require.NoError(t, err)
	return e, code
}

func (e *env) attr(t *testing.T, key string) string {
	t.Helper()
	v, err := attributes.NewSQLiteRepository(e.db).Get(context.Background(), attributes.TableApp, key)
	require.NoError(t, err)
	return v
}
