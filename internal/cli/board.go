package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/riordanpawley/epicboard/internal/app"
	"github.com/riordanpawley/epicboard/internal/domain"
	"github.com/riordanpawley/epicboard/internal/store"
)

// BoardCommand runs the interactive phase board until the user quits or ctx
// is cancelled. With watch set, edits to the snapshot file reload the board.
func BoardCommand(ctx context.Context, deps *Dependencies, watch bool) error {
	opts := app.Options{Source: deps.Config.Store.Path}

	fileStore, isFile := deps.Source.(*store.FileStore)
	if isFile {
		opts.Source = fileStore.Path()
	}
	if watch && !isFile {
		return fmt.Errorf("%w: --watch is only supported for snapshot files", domain.ErrInvalid)
	}
	opts.Watching = watch

	model := app.New(deps.Config, deps.Planner(), deps.Logger, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if watch {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			err := store.Watch(watchCtx, fileStore.Path(), deps.Config.Watch.Debounce(), deps.Logger, func() {
				p.Send(app.ReloadMsg{})
			})
			if err != nil {
				deps.Logger.Error("watch stopped", "path", fileStore.Path(), "error", err)
			}
		}()
	}

	deps.Logger.Info("board started", "source", opts.Source, "watch", watch)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
