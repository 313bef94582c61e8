package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gnolang/sg/internal/report"
)

// settle is how long a changed file is left alone before it is parsed, so a
// burst of writes is checked once.
const settle = 100 * time.Millisecond

// Handler receives the result of re-checking a changed file.
type Handler func(path string, issues []report.Issue, err error)

// Watch re-checks files under paths whenever they are written, until ctx is
// done. Only files some grammar claims are checked.
func (s *Scanner) Watch(ctx context.Context, paths []string, handle Handler) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, path := range paths {
		if err := addRecursive(watcher, path); err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}
	s.logger.Info("watching for changes", zap.Strings("paths", paths))

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addRecursive(watcher, event.Name); err != nil {
						s.logger.Warn("cannot watch directory", zap.String("dir", event.Name), zap.Error(err))
					}
					continue
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if s.exclude.CoversPath(event.Name) {
				continue
			}
			if _, ok := s.resolver.Resolve(event.Name); ok {
				pending[event.Name] = time.Now()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watch error", zap.Error(err))
		case now := <-ticker.C:
			for path, changed := range pending {
				if now.Sub(changed) < settle {
					continue
				}
				delete(pending, path)
				issues, err := s.ScanFile(path)
				handle(path, issues, err)
			}
		}
	}
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return watcher.Add(filepath.Dir(root))
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
