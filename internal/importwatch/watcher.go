// Package importwatch watches a drop directory for Noteforge JSON
// export files and merges them into the store as they appear.
package importwatch

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/noteforge/internal/checksum"
	"github.com/starford/noteforge/internal/codec"
	"github.com/starford/noteforge/internal/noteservice"
)

// settle is how long a file must stay quiet before it is read, so
// partially written drops are not parsed mid-copy.
const settle = 200 * time.Millisecond

// Watch processes .json files dropped into dir until ctx is cancelled.
// Files already present at startup are imported once. A checksum memo
// prevents re-importing a file whose content was already applied.
func Watch(ctx context.Context, svc *noteservice.Service, dir string, logger *slog.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}
	logger.Info("importwatch: started", slog.String("dir", dir))

	seen := make(map[string]string) // path -> checksum of last applied content
	pending := make(map[string]*time.Timer)
	fire := make(chan string, 16)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			processFile(ctx, svc, filepath.Join(dir, e.Name()), seen, logger)
		}
	}

	for {
		select {
		case <-ctx.Done():
			for _, t := range pending {
				t.Stop()
			}
			logger.Info("importwatch: stopped")
			return nil

		case path := <-fire:
			delete(pending, path)
			processFile(ctx, svc, path, seen, logger)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !strings.HasSuffix(ev.Name, ".json") {
				continue
			}
			path := ev.Name
			if t, exists := pending[path]; exists {
				t.Reset(settle)
				continue
			}
			pending[path] = time.AfterFunc(settle, func() {
				select {
				case fire <- path:
				case <-ctx.Done():
				}
			})

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("importwatch: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

func processFile(ctx context.Context, svc *noteservice.Service, path string, seen map[string]string, logger *slog.Logger) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("importwatch: read failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	cs := checksum.Sum(data)
	if seen[path] == cs {
		return
	}

	records, err := codec.Parse(bytes.NewReader(data))
	if err != nil {
		logger.Warn("importwatch: parse failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	stats, err := svc.Import(ctx, records, true)
	if err != nil {
		logger.Warn("importwatch: import failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	seen[path] = cs
	logger.Info("importwatch: imported",
		slog.String("path", path),
		slog.Int("inserted", stats.Inserted),
		slog.Int("updated", stats.Updated))
}
