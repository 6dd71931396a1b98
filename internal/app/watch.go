package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.trai.ch/stale/internal/adapters/watcher"
	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// ignorer is implemented by watchers that can drop events below some directories.
type ignorer interface {
	Ignore(dirs ...string)
}

// watch refreshes the records of target whenever files below the workspace
// change, until ctx is done.
func (a *App) watch(ctx context.Context, targetName string, opts DependOptions) error {
	ws, err := a.load(opts.ConfigPath)
	if err != nil {
		return err
	}

	if ig, ok := a.watcher.(ignorer); ok {
		ig.Ignore(ws.OutputDir, filepath.Join(ws.Root, domain.StaleDirName))
	}
	if err := a.watcher.Start(ctx, ws.Root); err != nil {
		return zerr.Wrap(err, "failed to start watching")
	}
	defer func() {
		if err := a.watcher.Stop(); err != nil {
			a.logger.Warn("failed to stop watcher: " + err.Error())
		}
	}()
	a.logger.Info("watching " + ws.Root + " for changes")

	batches := make(chan []string, 1)
	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func(paths []string) {
		select {
		case batches <- paths:
		case <-ctx.Done():
		}
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for ev := range a.watcher.Events() {
			debouncer.Add(ev.Path)
		}
		return nil
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case paths := <-batches:
				a.logger.Info(fmt.Sprintf("%d files changed, refreshing dependency records", len(paths)))
				if err := a.depend(ctx, targetName, opts); err != nil {
					if ctx.Err() != nil {
						return nil
					}
					a.logger.Error(err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
