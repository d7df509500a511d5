// Package tui holds the interactive timeline and roster views. Each view's
// Update is the only writer of its list state; every request runs as a
// tea.Cmd.
package tui

import (
	"context"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

// debugLogger writes to CLASSBOARD_DEBUG_LOG when set. The screen belongs to
// the program, so logs are dropped otherwise.
func debugLogger() (*log.Logger, func(), error) {
	path := os.Getenv("CLASSBOARD_DEBUG_LOG")
	if path == "" {
		return log.New(io.Discard, "", 0), func() {}, nil
	}
	f, err := tea.LogToFile(path, "classboard")
	if err != nil {
		return nil, nil, err
	}
	return log.Default(), func() { f.Close() }, nil
}

func RunTimeline(ctx context.Context, opts TimelineOptions) error {
	logger, closeLog, err := debugLogger()
	if err != nil {
		return err
	}
	defer closeLog()
	if opts.Logger == nil {
		opts.Logger = logger
	}

	applyColorProfile()
	_, err = tea.NewProgram(newTimelineModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func RunRoster(ctx context.Context, opts RosterOptions) error {
	logger, closeLog, err := debugLogger()
	if err != nil {
		return err
	}
	defer closeLog()
	if opts.Logger == nil {
		opts.Logger = logger
	}

	applyColorProfile()
	_, err = tea.NewProgram(newRosterModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
