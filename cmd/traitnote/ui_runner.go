package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"traitnote/internal/driver"
	"traitnote/internal/ui"
)

type checkOutcome struct {
	results []*driver.Result
	err     error
}

// runCheckDirWithUI runs CheckDir with a Bubble Tea progress view on
// stdout. The check itself runs in a goroutine; the UI owns the
// terminal until the event channel closes.
func runCheckDirWithUI(ctx context.Context, dir string, opts driver.Options, jobs int) ([]*driver.Result, error) {
	worlds, err := driver.ListWorldFiles(dir)
	if err != nil {
		return nil, err
	}

	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		results, err := driver.CheckDir(ctx, dir, opts, jobs, events)
		outcomeCh <- checkOutcome{results: results, err: err}
	}()

	model := ui.NewProgressModel("checking "+dir, worlds, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
