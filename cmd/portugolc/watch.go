package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"

	"github.com/portugol-lang/portugol/internal/clrs"
	"github.com/portugol-lang/portugol/internal/config"
)

// runWatch recompiles (and optionally reruns) path every time it changes on
// disk, until ctx is cancelled. Every write or create event triggers its own
// recompile; bursts of events are not coalesced.
func runWatch(ctx context.Context, path string, run bool, output string, pal *clrs.Palette, cfg *config.Config, noCache bool) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	compileAndReport := func() {
		source, err := readSource(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		compileOnce(source, path, run, output, pal, cfg, noCache)
	}

	log.Info().Str("file", path).Msg("watching for changes")
	compileAndReport()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				log.Info().Str("file", path).Msg("recompiling")
				compileAndReport()
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(werr).Msg("watch error")
		}
	}
}
