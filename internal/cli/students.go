package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"classboard/internal/client"
	"classboard/internal/domain"
	"classboard/internal/listsync"
	"classboard/internal/roster"

	"github.com/spf13/cobra"
)

func newStudentsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "students",
		Aliases: []string{"student"},
		Short:   "Student roster commands",
	}
	cmd.AddCommand(newStudentsListCmd(app))
	cmd.AddCommand(newStudentsAddCmd(app))
	cmd.AddCommand(newStudentsEditCmd(app))
	cmd.AddCommand(newStudentsArchiveCmd(app))
	cmd.AddCommand(newStudentsDeleteCmd(app))
	return cmd
}

func (app *App) studentIdentity() listsync.Identity {
	return client.StudentIdentity(app.cfg.InstructorID)
}

func (app *App) rosterPager(cmd *cobra.Command, c *client.Client) *listsync.Pager[domain.Student] {
	return listsync.NewPager[domain.Student](listsync.NewCache[domain.Student](), client.NewStudentSource(c), app.listOptions(cmd)...)
}

func newStudentsListCmd(app *App) *cobra.Command {
	var name string
	var tags []string
	var archived, all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List students; archived ones are hidden unless --archived",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := roster.Filter{
				Name:         name,
				Tags:         tags,
				ShowArchived: archived,
			}

			// Filters apply to the whole roster.
			maxPages := 1
			if all || filter.Active() || archived {
				maxPages = 0
			}

			id := app.studentIdentity()
			var pager *listsync.Pager[domain.Student]
			err := app.withSession(cmd.Context(), func(c *client.Client) error {
				pager = app.rosterPager(cmd, c)
				return pager.LoadAll(cmd.Context(), id, maxPages)
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			loaded := pager.Cache().Records(id)
			students := roster.Apply(loaded, filter)
			status := pager.Cache().Status(id)

			return writeOut(cmd, app, students, func(w io.Writer) {
				switch {
				case len(loaded) == 0:
					fmt.Fprintln(w, mutedStyle.Render("No students"))
					return
				case len(students) == 0:
					fmt.Fprintln(w, mutedStyle.Render("No students match"))
				}
				for _, s := range students {
					printStudent(w, s)
				}
				if status.HasNextPage {
					fmt.Fprintln(w, mutedStyle.Render("More students available: --all"))
				}
				if universe := roster.Tags(loaded); len(universe) > 0 {
					fmt.Fprintln(w, mutedStyle.Render("tags: ")+tagList(universe))
				}
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Case-insensitive name filter")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Require tag (repeatable)")
	cmd.Flags().BoolVar(&archived, "archived", false, "Show archived students")
	cmd.Flags().BoolVar(&all, "all", false, "Load the whole roster")
	return cmd
}

func newStudentsAddCmd(app *App) *cobra.Command {
	var req domain.CreateStudentRequest

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a student",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Name = strings.TrimSpace(req.Name)

			var student *domain.Student
			err := app.withSession(cmd.Context(), func(c *client.Client) error {
				var err error
				student, err = c.CreateStudent(cmd.Context(), &req)
				return err
			})
			if err != nil {
				if listsync.IsStatus(err, 409) {
					return writeErr(cmd, fmt.Errorf("a student named %q already exists", req.Name))
				}
				return writeErr(cmd, err)
			}

			return writeOut(cmd, app, student, func(w io.Writer) {
				fmt.Fprint(w, "Added ")
				printStudent(w, *student)
			})
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "Phone")
	cmd.Flags().StringVar(&req.Details, "details", "", "Notes")
	cmd.Flags().StringVar(&req.Image, "image", "", "Picture URL")
	cmd.Flags().StringSliceVar(&req.Tags, "tag", nil, "Tag (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newStudentsEditCmd(app *App) *cobra.Command {
	var name, email, phone, details, image string
	var tags []string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a student; only the given flags are sent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req domain.UpdateStudentRequest
			flags := cmd.Flags()
			if flags.Changed("name") {
				req.Name = &name
			}
			if flags.Changed("email") {
				req.Email = &email
			}
			if flags.Changed("phone") {
				req.Phone = &phone
			}
			if flags.Changed("details") {
				req.Details = &details
			}
			if flags.Changed("image") {
				req.Image = &image
			}
			if flags.Changed("tag") {
				req.Tags = tags
			}

			var student *domain.Student
			err := app.withSession(cmd.Context(), func(c *client.Client) error {
				var err error
				student, err = c.UpdateStudent(cmd.Context(), args[0], &req)
				return err
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			return writeOut(cmd, app, student, func(w io.Writer) {
				fmt.Fprint(w, "Updated ")
				printStudent(w, *student)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&email, "email", "", "Email")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone")
	cmd.Flags().StringVar(&details, "details", "", "Notes")
	cmd.Flags().StringVar(&image, "image", "", "Picture URL")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Replace tags (repeatable)")
	return cmd
}

// mutateStudent loads the roster and runs one optimistic mutation on it. It
// returns the cached record after the mutation settled.
func (app *App) mutateStudent(cmd *cobra.Command, targetID string, transform func(domain.Student) (domain.Student, bool), send func(c *client.Client) func(ctx context.Context) (*domain.Student, error)) (domain.Student, bool, error) {
	id := app.studentIdentity()

	var (
		after domain.Student
		found bool
	)
	err := app.withSession(cmd.Context(), func(c *client.Client) error {
		pager := app.rosterPager(cmd, c)
		if err := pager.LoadAll(cmd.Context(), id, 0); err != nil {
			return err
		}

		mutator := listsync.NewMutator[domain.Student](pager.Cache(), app.listOptions(cmd)...)
		err := runMutation(cmd.Context(), mutator, listsync.Mutation[domain.Student]{
			ID:        id,
			TargetID:  targetID,
			Transform: transform,
			Send:      send(c),
		})
		if errors.Is(err, listsync.ErrRecordNotFound) {
			return fmt.Errorf("student not found: %s", targetID)
		}
		if err != nil {
			return err
		}
		after, found = pager.Cache().Find(id, targetID)
		return nil
	})
	return after, found, err
}

func newStudentsArchiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <id>",
		Short: "Archive a student, or restore an archived one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targetID := args[0]
			student, _, err := app.mutateStudent(cmd, targetID,
				func(s domain.Student) (domain.Student, bool) {
					return domain.ToggleArchived(s), true
				},
				func(c *client.Client) func(ctx context.Context) (*domain.Student, error) {
					return func(ctx context.Context) (*domain.Student, error) {
						return c.ToggleArchive(ctx, targetID)
					}
				},
			)
			if err != nil {
				return writeErr(cmd, err)
			}

			return writeOut(cmd, app, student, func(w io.Writer) {
				verb := "Restored"
				if student.Archived() {
					verb = "Archived"
				}
				fmt.Fprintf(w, "%s %s\n", verb, titleStyle.Render(student.Name))
			})
		},
	}
}

func newStudentsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a student (a copy is archived on the server)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targetID := args[0]
			_, _, err := app.mutateStudent(cmd, targetID,
				func(s domain.Student) (domain.Student, bool) {
					return s, false
				},
				func(c *client.Client) func(ctx context.Context) (*domain.Student, error) {
					return func(ctx context.Context) (*domain.Student, error) {
						return nil, c.DeleteStudent(ctx, targetID)
					}
				},
			)
			if err != nil {
				return writeErr(cmd, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", targetID)
			return nil
		},
	}
}
