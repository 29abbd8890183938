// Package cli implements the tru command line: a cobra command tree over
// the services package, plus terminal prompts and output rendering.
package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/trusty/internal/config"
	"github.com/dmitrijs2005/trusty/internal/logging"
	"github.com/dmitrijs2005/trusty/internal/ui"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	home       string
	logLevel   string
	logFormat  string
	noColor    bool
}

// root owns the command tree of one invocation and the App it opens.
type root struct {
	streams Streams
	opts    []Option
	flags   rootFlags
	app     *App
}

// Execute runs tru with args and returns the process exit code.
func Execute(ctx context.Context, args []string, streams Streams, opts ...Option) int {
	r := &root{streams: streams, opts: opts}
	cmd := r.command()
	cmd.SetArgs(args)
	cmd.SetIn(streams.In)
	cmd.SetOut(streams.Out)
	cmd.SetErr(streams.Err)

	err := cmd.ExecuteContext(ctx)
	if r.app != nil {
		if cerr := r.app.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}

	if err != nil && !isNoop(err) {
		fmt.Fprintln(streams.Err, ui.Error.Sprint("Error:"), err)
	}
	return ExitCode(err)
}

func (r *root) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tru",
		Short: "tRusty - a terminal notes app with per-note encryption",
		Long: `tRusty keeps notes in a local SQLite database. Any note can be encrypted
under your password; a recovery code lets you reset a forgotten password
without losing encrypted notes.

Run without a command to list your notes.`,
		Args:              usageArgs(cobra.NoArgs),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: r.open,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.list(cmd, false)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&r.flags.configPath, "config", "", "path to a JSON or TOML config file")
	pf.StringVar(&r.flags.home, "home", "", "base directory for the .trusty data directory (env "+config.EnvHome+")")
	pf.StringVar(&r.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&r.flags.logFormat, "log-format", "", "log format: text or json")
	pf.BoolVar(&r.flags.noColor, "no-color", false, "disable colored output")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return newUsageError(err)
	})

	cmd.AddCommand(
		r.setupCmd(),
		r.passwdCmd(),
		r.addCmd(),
		r.listCmd(),
		r.getCmd(),
		r.editCmd(),
		r.protectCmd(),
		r.unprotectCmd(),
		r.trashCmd(),
		r.restoreCmd(),
		r.deleteCmd(),
		r.emptyTrashCmd(),
		r.dumpCmd(),
		r.summaryCmd(),
		r.configCmd(),
	)
	return cmd
}

// open resolves configuration, builds the logger and opens the App.
func (r *root) open(cmd *cobra.Command, _ []string) error {
	if skipsStore(cmd) {
		return nil
	}

	cfg, err := config.Load(r.flags.configPath)
	if err != nil {
		return newUsageError(err)
	}

	flags := cmd.Flags()
	if flags.Changed("home") {
		cfg.Home = r.flags.home
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = r.flags.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = r.flags.logFormat
	}
	if flags.Changed("no-color") {
		cfg.NoColor = r.flags.noColor
	}
	if cfg.NoColor {
		ui.DisableColor()
	}

	log, err := logging.New(r.streams.Err, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return newUsageError(err)
	}

	r.app = newApp(cfg, r.streams, log.With("cmd", cmd.Name()), r.opts...)
	return r.app.open(cmd.Context())
}

// skipsStore reports commands that never touch the notes database: help and
// cobra's shell completion commands.
func skipsStore(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return true
		}
	}
	return false
}

func usageArgs(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := v(cmd, args); err != nil {
			return newUsageError(err)
		}
		return nil
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, newUsageError(fmt.Errorf("invalid note id %q", s))
	}
	return id, nil
}
