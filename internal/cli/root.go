// Package cli implements the classboard command line: scriptable list and
// mutation commands plus the interactive browser.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"classboard/internal/client"
	"classboard/internal/listsync"

	"github.com/spf13/cobra"
)

var errNotLoggedIn = errors.New("not logged in; run `classboard login` first")

type App struct {
	ConfigPath string
	Server     string
	JSON       bool
	Verbose    bool

	cfg *Config
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "classboard",
		Short:        "Instructor client for classboard",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Sign in once; the session is kept in the config file
  classboard login --email coach@example.com

  # Scriptable commands
  classboard students list --tag beginners
  classboard timeline list --all

  # Interactive views
  classboard browse students
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.load()
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("CLASSBOARD_CONFIG", ""), "Path to the config file (default $XDG_CONFIG_HOME/classboard/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.Server, "server", envOr("CLASSBOARD_SERVER", ""), "Server URL (overrides the config file)")
	cmd.PersistentFlags().BoolVar(&app.JSON, "json", false, "Write JSON output")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Log list synchronization details to stderr")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newTimelineCmd(app))
	cmd.AddCommand(newStudentsCmd(app))
	cmd.AddCommand(newBrowseCmd(app))

	return cmd
}

func (app *App) load() error {
	if app.ConfigPath == "" {
		path, err := DefaultConfigPath()
		if err != nil {
			return err
		}
		app.ConfigPath = path
	}

	cfg, err := LoadConfig(app.ConfigPath)
	if err != nil {
		return err
	}
	if app.Server != "" {
		cfg.Server = app.Server
	}
	app.cfg = cfg
	return nil
}

func (app *App) save() error {
	return app.cfg.Save(app.ConfigPath)
}

func (app *App) client() *client.Client {
	return client.New(app.cfg.Server, client.WithToken(app.cfg.AccessToken))
}

func (app *App) logger(cmd *cobra.Command) *log.Logger {
	if app.Verbose {
		return log.New(cmd.ErrOrStderr(), "", log.LstdFlags)
	}
	return log.New(io.Discard, "", 0)
}

func (app *App) listOptions(cmd *cobra.Command) []listsync.Option {
	return []listsync.Option{
		listsync.WithLogger(app.logger(cmd)),
		listsync.WithDebounce(app.cfg.Debounce),
	}
}

// withSession runs fn with an authenticated client. An expired access token
// is renewed once with the stored refresh token.
func (app *App) withSession(ctx context.Context, fn func(c *client.Client) error) error {
	if app.cfg.AccessToken == "" {
		return errNotLoggedIn
	}

	c := app.client()
	err := fn(c)
	if !client.IsUnauthorized(err) || app.cfg.RefreshToken == "" {
		return err
	}

	tok, rerr := c.Refresh(ctx, app.cfg.RefreshToken)
	if rerr != nil {
		return fmt.Errorf("session expired, run `classboard login`: %w", err)
	}
	app.cfg.AccessToken = tok.AccessToken
	if err := app.save(); err != nil {
		return err
	}
	return fn(c)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// writeOut prints v as {"data": v} with --json, or through text otherwise.
func writeOut(cmd *cobra.Command, app *App, v any, text func(w io.Writer)) error {
	if app.JSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"data": v})
	}
	text(cmd.OutOrStdout())
	return nil
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render(err.Error()))
	return err
}
