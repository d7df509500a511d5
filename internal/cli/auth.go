package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"classboard/internal/client"
	"classboard/internal/domain"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = envOr("CLASSBOARD_PASSWORD", "")
			}
			if password == "" {
				return writeErr(cmd, errors.New("password required: pass --password or set CLASSBOARD_PASSWORD"))
			}

			resp, err := app.client().Login(cmd.Context(), &domain.LoginRequest{
				Email:    strings.TrimSpace(email),
				Password: password,
			})
			if err != nil {
				return writeErr(cmd, fmt.Errorf("login: %w", err))
			}

			app.cfg.AccessToken = resp.AccessToken
			app.cfg.RefreshToken = resp.RefreshToken
			if resp.Instructor != nil {
				app.cfg.InstructorID = resp.Instructor.ID
				app.cfg.Email = resp.Instructor.Email
			}
			if err := app.save(); err != nil {
				return writeErr(cmd, err)
			}

			return writeOut(cmd, app, resp.Instructor, func(w io.Writer) {
				if resp.Instructor != nil {
					fmt.Fprintf(w, "Logged in as %s\n", titleStyle.Render(resp.Instructor.Name))
				}
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (or CLASSBOARD_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCmd(app *App) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an instructor account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = envOr("CLASSBOARD_PASSWORD", "")
			}

			instructor, err := app.client().Register(cmd.Context(), &domain.RegisterRequest{
				Name:     strings.TrimSpace(name),
				Email:    strings.TrimSpace(email),
				Password: password,
			})
			if err != nil {
				return writeErr(cmd, fmt.Errorf("register: %w", err))
			}

			return writeOut(cmd, app, instructor, func(w io.Writer) {
				fmt.Fprintf(w, "Registered %s; run `classboard login --email %s` next\n", titleStyle.Render(instructor.Name), instructor.Email)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (or CLASSBOARD_PASSWORD)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.cfg.clearSession()
			if err := app.save(); err != nil {
				return writeErr(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in instructor",
		RunE: func(cmd *cobra.Command, args []string) error {
			var me *domain.Instructor
			err := app.withSession(cmd.Context(), func(c *client.Client) error {
				var err error
				me, err = c.Me(cmd.Context())
				return err
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, me, func(w io.Writer) {
				printInstructor(w, me)
			})
		},
	}
}
