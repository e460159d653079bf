package transit

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches a file holding a selector key and emits its trimmed
// contents whenever the file is written.
type FileWatcher struct {
	path string
}

// NewFileWatcher creates a new FileWatcher for the given file path.
func NewFileWatcher(path string) *FileWatcher {
	return &FileWatcher{path: path}
}

// Watch begins watching the file. The current contents are emitted first.
// Writes that leave the contents unchanged are not re-emitted.
func (w *FileWatcher) Watch(ctx context.Context) (<-chan []byte, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	if err := watcher.Add(w.path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch file %s: %w", w.path, err)
	}

	out := make(chan []byte)

	go func() {
		defer close(out)
		defer watcher.Close()

		var last []byte
		emit := func() bool {
			data, err := os.ReadFile(w.path)
			if err != nil {
				return true
			}
			data = bytes.TrimSpace(data)
			if last != nil && bytes.Equal(data, last) {
				return true
			}
			last = data
			select {
			case out <- data:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if !emit() {
					return
				}

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return out, nil
}
