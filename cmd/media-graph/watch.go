package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"

	"github.com/ritzau/media-graph/pkg/logging"
	"github.com/ritzau/media-graph/pkg/watcher"
)

const envFile = ".env"

// watchConfig calls reload after the config file or .env settle on new
// contents, until ctx ends
func watchConfig(ctx context.Context, reload func()) error {
	fw, err := watcher.NewFileWatcher(configPath, envFile)
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}

	debouncer := watcher.NewDebouncer(fw.Events(), 300*time.Millisecond, 2*time.Second)
	debouncer.Start(ctx)

	go func() {
		for event := range debouncer.Output() {
			changes := watcher.AnalyzeChanges(event)
			logging.Debug("settings changed", "type", event.Type.String(), "files", changes.ChangedFiles)

			if changes.ReloadEnv {
				// Overload so edited values replace the ones loaded at startup
				if err := godotenv.Overload(envFile); err != nil {
					logging.Warn("failed to reload env file", "error", err)
				}
			}
			if changes.ReloadConfig {
				reload()
			}
		}
	}()
	return nil
}
