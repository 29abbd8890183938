package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/dmitrijs2005/trusty/internal/config"
	"github.com/dmitrijs2005/trusty/internal/cryptox"
	"github.com/dmitrijs2005/trusty/internal/logging"
	"github.com/dmitrijs2005/trusty/internal/repositories/attributes"
	"github.com/dmitrijs2005/trusty/internal/services"
	"github.com/dmitrijs2005/trusty/internal/storage"
)

// Streams are the process standard streams.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// App holds everything a command needs. It is built once per invocation in
// the root command's pre-run hook.
type App struct {
	config   *config.Config
	streams  Streams
	reader   *bufio.Reader
	log      logging.Logger
	db       *sql.DB
	prompter services.Prompter
	reporter services.Reporter
	kdf      cryptox.KDFParams

	keys   *services.KeyManager
	engine *services.ProtectionEngine
	notes  *services.NoteService
}

// Option customizes an App before it opens the database.
type Option func(*App)

// WithPrompter replaces the terminal prompter.
func WithPrompter(p services.Prompter) Option {
	return func(a *App) { a.prompter = p }
}

// WithKDFParams replaces the argon2id parameters.
func WithKDFParams(p cryptox.KDFParams) Option {
	return func(a *App) { a.kdf = p }
}

func newApp(cfg *config.Config, streams Streams, log logging.Logger, opts ...Option) *App {
	a := &App{
		config:  cfg,
		streams: streams,
		reader:  bufio.NewReader(streams.In),
		log:     log,
		kdf:     cryptox.DefaultKDFParams,
	}
	a.reporter = newConsoleReporter(streams.Out, streams.Err)
	for _, opt := range opts {
		opt(a)
	}
	if a.prompter == nil {
		a.prompter = newTerminalPrompter(streams.In, streams.Err)
	}
	return a
}

// open opens the database and wires the services.
func (a *App) open(ctx context.Context) error {
	path, err := a.config.DBPath()
	if err != nil {
		return fmt.Errorf("failed to prepare data directory: %w", err)
	}

	db, err := storage.InitDatabase(ctx, path)
	if err != nil {
		a.log.Error(ctx, "error initializing database", "path", path, "error", err)
		return err
	}
	a.db = db
	a.log.Debug(ctx, "database ready", "path", path)

	c := cryptox.NewCipher(a.kdf)
	gate := services.NewPasswordGate(attributes.NewSQLiteRepository(db), c, a.prompter, a.reporter, a.log)
	a.keys = services.NewKeyManager(db, c, gate, a.prompter, a.reporter, a.log)
	a.engine = services.NewProtectionEngine(db, c, gate, a.keys, a.reporter, a.log)
	a.notes = services.NewNoteService(db, a.engine, a.reporter, a.log)
	return nil
}

// Close releases the database.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}
