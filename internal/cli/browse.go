package cli

import (
	"fmt"

	"classboard/internal/client"
	"classboard/internal/tui"

	"github.com/spf13/cobra"
)

func newBrowseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "browse [timeline|students]",
		Short:     "Open the interactive timeline or roster",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"timeline", "students"},
		RunE: func(cmd *cobra.Command, args []string) error {
			view := "timeline"
			if len(args) == 1 {
				view = args[0]
			}

			// Renew the session up front; the views have no way to ask for it.
			var c *client.Client
			err := app.withSession(cmd.Context(), func(cl *client.Client) error {
				c = cl
				_, err := cl.Me(cmd.Context())
				return err
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			switch view {
			case "timeline":
				return tui.RunTimeline(cmd.Context(), tui.TimelineOptions{
					Identity: app.timelineIdentity(""),
					Source:   client.NewTimelineSource(c),
					Delete:   c.DeleteTimeline,
					Watch:    c.Watch,
					Debounce: app.cfg.Debounce,
				})
			case "students":
				return tui.RunRoster(cmd.Context(), tui.RosterOptions{
					Identity: app.studentIdentity(),
					Source:   client.NewStudentSource(c),
					Toggle:   c.ToggleArchive,
					Delete:   c.DeleteStudent,
					Watch:    c.Watch,
				})
			default:
				return writeErr(cmd, fmt.Errorf("unknown view %q: want timeline or students", view))
			}
		},
	}
}
