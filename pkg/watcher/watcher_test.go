package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAnalyzeChanges(t *testing.T) {
	env := AnalyzeChanges(ChangeEvent{Type: ChangeTypeEnv, Paths: []string{".env"}})
	if !env.ReloadEnv || !env.ReloadConfig {
		t.Errorf("Expected env change to reload env and config, got %+v", env)
	}

	cfg := AnalyzeChanges(ChangeEvent{Type: ChangeTypeConfig, Paths: []string{"media-graph.toml"}})
	if cfg.ReloadEnv || !cfg.ReloadConfig {
		t.Errorf("Expected config change to reload config only, got %+v", cfg)
	}
	if len(cfg.ChangedFiles) != 1 {
		t.Errorf("Expected changed files to be kept, got %v", cfg.ChangedFiles)
	}
}

func TestDebouncerBatchesBurst(t *testing.T) {
	input := make(chan ChangeEvent)
	d := NewDebouncer(input, 50*time.Millisecond, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	input <- ChangeEvent{Type: ChangeTypeConfig, Paths: []string{"a.toml"}}
	input <- ChangeEvent{Type: ChangeTypeConfig, Paths: []string{"a.toml"}}
	input <- ChangeEvent{Type: ChangeTypeEnv, Paths: []string{".env"}}

	var got []ChangeEvent
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case event := <-d.Output():
			got = append(got, event)
		case <-timeout:
			t.Fatalf("Timeout waiting for debounced events, got %d", len(got))
		}
	}

	if got[0].Type != ChangeTypeEnv || got[1].Type != ChangeTypeConfig {
		t.Errorf("Expected env before config, got %s then %s", got[0].Type, got[1].Type)
	}
	if len(got[1].Paths) != 2 {
		t.Errorf("Expected 2 config paths merged, got %v", got[1].Paths)
	}

	select {
	case event := <-d.Output():
		t.Errorf("Expected a single batch, got extra %s event", event.Type)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncerMaxWait(t *testing.T) {
	input := make(chan ChangeEvent)
	d := NewDebouncer(input, time.Hour, 50*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	input <- ChangeEvent{Type: ChangeTypeConfig, Paths: []string{"a.toml"}}

	select {
	case event := <-d.Output():
		if event.Type != ChangeTypeConfig {
			t.Errorf("Expected config event, got %s", event.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected max wait to release the event")
	}
}

func TestDebouncerFlushesOnClose(t *testing.T) {
	input := make(chan ChangeEvent, 1)
	d := NewDebouncer(input, time.Hour, time.Hour)
	d.Start(context.Background())

	input <- ChangeEvent{Type: ChangeTypeEnv, Paths: []string{".env"}}
	close(input)

	event, ok := <-d.Output()
	if !ok || event.Type != ChangeTypeEnv {
		t.Fatalf("Expected pending env event on close, got %+v (ok=%v)", event, ok)
	}
	if _, ok := <-d.Output(); ok {
		t.Error("Expected output to be closed")
	}
}

func TestFileWatcher(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "media-graph.toml")
	if err := os.WriteFile(configFile, []byte("port = 8080\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fw, err := NewFileWatcher(configFile, "")
	if err != nil {
		t.Fatalf("NewFileWatcher failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := fw.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Unrelated files in the same directory are ignored
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(configFile, []byte("port = 9090\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case event := <-fw.Events():
		if event.Type != ChangeTypeConfig {
			t.Errorf("Expected config change, got %s", event.Type)
		}
		for _, p := range event.Paths {
			if filepath.Base(p) != "media-graph.toml" {
				t.Errorf("Unexpected path %s", p)
			}
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout waiting for config change")
	}

	cancel()
	select {
	case _, ok := <-fw.Events():
		for ok {
			_, ok = <-fw.Events()
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Expected events channel to close after cancel")
	}
}

func TestNewFileWatcherNeedsFiles(t *testing.T) {
	if _, err := NewFileWatcher("", ""); err == nil {
		t.Error("Expected error without files")
	}
}
