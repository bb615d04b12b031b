package cmd

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/rigforge/rigforge/internal/core/builder"
	"github.com/rigforge/rigforge/internal/core/component"
	rigconfig "github.com/rigforge/rigforge/internal/core/config"
	"github.com/rigforge/rigforge/internal/core/data"
	"github.com/rigforge/rigforge/internal/core/scene/fake"
	"github.com/rigforge/rigforge/internal/output"
)

// NewWatchCmd creates the watch command, a dev-loop that re-runs the
// pipeline through GUIDE whenever a watched guides or components file
// changes, serving the interactive GUIDE workflow where a rigger iterates on
// guide placement before committing to BUILD.
func NewWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <rigfile>",
		Short: "Re-run the pipeline through GUIDE on every guide/component file change",
		Long: `Load a rig configuration and watch its guides and components files. On
every write, destroy the in-memory scene and re-run the pipeline through
GUIDE, so iterating on a guide placement or a component parameter shows
its effect without restarting the CLI.

Press Ctrl-C to stop.

Examples:
  rigforge watch rig.cue`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rigFile := args[0]

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return asExitError(err)
	}
	defer watcher.Close()

	rebuild := func() error {
		scn := fake.New()
		compReg := component.NewRegistry()
		b := builder.New(scn, data.DefaultRegistry(), compReg)
		if err := b.LoadConfig(ctx, rigFile, GetArchetypePaths()...); err != nil {
			return err
		}
		if err := registerPassthroughComponents(b, compReg); err != nil {
			return err
		}
		if err := watchFiles(watcher, b.RigConfig()); err != nil {
			return err
		}
		return b.RunTo(ctx, component.Guide)
	}

	if err := rebuild(); err != nil {
		return asExitError(err)
	}
	output.Println("watching for changes, press Ctrl-C to stop")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			output.Info("change detected, rebuilding through GUIDE", "file", event.Name)
			if err := rebuild(); err != nil {
				output.Error("rebuild failed", "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			output.Warn("watch error", "error", err)
		}
	}
}

// watchFiles (re-)registers every guides and components file from cfg with
// watcher, deduplicating by directory since fsnotify watches directories,
// not individual files.
func watchFiles(watcher *fsnotify.Watcher, cfg *rigconfig.RigConfig) error {
	dirs := make(map[string]bool)
	for _, path := range append(append([]string{}, cfg.Guides...), cfg.Components...) {
		dir := filepath.Dir(path)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}
	return nil
}
