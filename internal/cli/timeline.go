package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"classboard/internal/client"
	"classboard/internal/domain"
	"classboard/internal/listsync"
	"classboard/internal/tui"

	"github.com/spf13/cobra"
)

func newTimelineCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Timeline commands",
	}
	cmd.AddCommand(newTimelineListCmd(app))
	cmd.AddCommand(newTimelineSearchCmd(app))
	cmd.AddCommand(newTimelinePostCmd(app))
	cmd.AddCommand(newTimelineShowCmd(app))
	cmd.AddCommand(newTimelineDeleteCmd(app))
	return cmd
}

func (app *App) timelineIdentity(author string) listsync.Identity {
	if author == "" {
		author = app.cfg.InstructorID
	}
	return client.TimelineIdentity(author)
}

func newTimelineListCmd(app *App) *cobra.Command {
	var author string
	var pages int
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List timeline entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pages < 1 {
				return writeErr(cmd, fmt.Errorf("--pages must be at least 1"))
			}
			if all {
				pages = 0
			}

			id := app.timelineIdentity(author)
			var pager *listsync.Pager[domain.Timeline]
			err := app.withSession(cmd.Context(), func(c *client.Client) error {
				pager = listsync.NewPager[domain.Timeline](listsync.NewCache[domain.Timeline](), client.NewTimelineSource(c), app.listOptions(cmd)...)
				return pager.LoadAll(cmd.Context(), id, pages)
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			entries := pager.Cache().Records(id)
			status := pager.Cache().Status(id)
			return writeOut(cmd, app, nonNil(entries), func(w io.Writer) {
				if len(entries) == 0 {
					fmt.Fprintln(w, mutedStyle.Render("No entries yet."))
					return
				}
				for _, e := range entries {
					printTimeline(w, e)
				}
				if status.HasNextPage {
					fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("More entries available: --pages %d or --all", status.Pages+1)))
				}
			})
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "Author id (default: you)")
	cmd.Flags().IntVar(&pages, "pages", 1, "Number of pages to load")
	cmd.Flags().BoolVar(&all, "all", false, "Load every page")
	return cmd
}

func newTimelineSearchCmd(app *App) *cobra.Command {
	var author string

	cmd := &cobra.Command{
		Use:   "search <tag>...",
		Short: "Show entries carrying every given tag",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := strings.Join(args, " ")
			id := app.timelineIdentity(author)

			var search *listsync.Search[domain.Timeline]
			err := app.withSession(cmd.Context(), func(c *client.Client) error {
				search = listsync.NewSearch[domain.Timeline](id, client.NewTimelineSource(c), app.listOptions(cmd)...)
				return runSearch(cmd.Context(), search, term)
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			results := search.Results()
			return writeOut(cmd, app, nonNil(results), func(w io.Writer) {
				if search.Mode() == listsync.ModeNoResults {
					fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("No results for %q", search.ResultTerm())))
					return
				}
				for _, e := range results {
					printTimeline(w, e)
				}
			})
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "Author id (default: you)")
	return cmd
}

func newTimelinePostCmd(app *App) *cobra.Command {
	var text, length, photo string
	var tags, links []string

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a timeline entry (markdown; --text - reads stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if text == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return writeErr(cmd, fmt.Errorf("read stdin: %w", err))
				}
				text = string(data)
			}
			if strings.TrimSpace(text) == "" {
				return writeErr(cmd, errors.New("entry text is required"))
			}

			req := &domain.CreateTimelineRequest{
				MainText: text,
				Length:   length,
				Photo:    photo,
				Links:    links,
				Tags:     tags,
			}

			var entry *domain.Timeline
			err := app.withSession(cmd.Context(), func(c *client.Client) error {
				var err error
				entry, err = c.CreateTimeline(cmd.Context(), req)
				return err
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			return writeOut(cmd, app, entry, func(w io.Writer) {
				fmt.Fprintf(w, "Posted %s\n", entry.ID)
			})
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Entry body in markdown, or - for stdin")
	cmd.Flags().StringVar(&length, "length", "", "Session length, e.g. 45m")
	cmd.Flags().StringVar(&photo, "photo", "", "Photo URL")
	cmd.Flags().StringSliceVar(&links, "link", nil, "Related link (repeatable)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag (repeatable)")
	return cmd
}

func newTimelineShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one entry with its body rendered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var entry *domain.Timeline
			err := app.withSession(cmd.Context(), func(c *client.Client) error {
				var err error
				entry, err = c.GetTimeline(cmd.Context(), args[0])
				return err
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			return writeOut(cmd, app, entry, func(w io.Writer) {
				fmt.Fprintf(w, "%s  %s\n", titleStyle.Render(entry.AuthorName), mutedStyle.Render(entry.CreatedAt.Local().Format("2006-01-02 15:04")))
				if entry.Length != "" {
					fmt.Fprintln(w, mutedStyle.Render("Length: "+entry.Length))
				}
				fmt.Fprintln(w)
				fmt.Fprintln(w, tui.RenderMarkdown(entry.MainText, terminalWidth()))
				for _, link := range entry.Links {
					fmt.Fprintln(w, mutedStyle.Render("Link: ")+link)
				}
				if tags := tagList(entry.Tags); tags != "" {
					fmt.Fprintln(w, tags)
				}
			})
		},
	}
}

func newTimelineDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targetID := args[0]
			id := app.timelineIdentity("")

			err := app.withSession(cmd.Context(), func(c *client.Client) error {
				cache := listsync.NewCache[domain.Timeline]()
				pager := listsync.NewPager[domain.Timeline](cache, client.NewTimelineSource(c), app.listOptions(cmd)...)
				if err := pager.LoadAll(cmd.Context(), id, 0); err != nil {
					return err
				}

				mutator := listsync.NewMutator[domain.Timeline](cache, app.listOptions(cmd)...)
				err := runMutation(cmd.Context(), mutator, listsync.Mutation[domain.Timeline]{
					ID:       id,
					TargetID: targetID,
					Transform: func(e domain.Timeline) (domain.Timeline, bool) {
						return e, false
					},
					Send: func(ctx context.Context) (*domain.Timeline, error) {
						return nil, c.DeleteTimeline(ctx, targetID)
					},
				})
				if errors.Is(err, listsync.ErrRecordNotFound) {
					return fmt.Errorf("timeline entry not found: %s", targetID)
				}
				return err
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", targetID)
			return nil
		},
	}
}

func terminalWidth() int {
	if n, err := strconv.Atoi(envOr("COLUMNS", "")); err == nil && n > 20 {
		return n
	}
	return 80
}

func nonNil[R any](records []R) []R {
	if records == nil {
		return []R{}
	}
	return records
}
