// cookiestore/file.go
package cookiestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// fileVersion is written into every cookie file.
const fileVersion = 1

// watchDebounce coalesces bursts of filesystem events into one callback.
const watchDebounce = 100 * time.Millisecond

type fileContents struct {
	Version int              `json:"version"`
	Cookies map[string]Entry `json:"cookies"`
}

// FileStore persists cookies as JSON in a single file. Every operation re-reads the file so
// several processes sharing the file observe each other's writes. Writes replace the file
// atomically through a rename.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a FileStore at path, creating parent directories as needed.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("cookiestore: file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("cookiestore: creating cookie directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := s.load()
	if err != nil {
		return "", err
	}
	entry, ok := contents.Cookies[name]
	if !ok {
		return "", ErrCookieNotFound
	}
	return entry.Value, nil
}

func (s *FileStore) Set(name, value string, opts Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := s.load()
	if err != nil {
		return err
	}
	contents.Cookies[name] = Entry{Name: name, Value: value, Path: pathOrDefault(opts.Path)}
	return s.save(contents)
}

func (s *FileStore) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := contents.Cookies[name]; !ok {
		return nil
	}
	delete(contents.Cookies, name)
	return s.save(contents)
}

func (s *FileStore) load() (*fileContents, error) {
	contents := &fileContents{Version: fileVersion, Cookies: make(map[string]Entry)}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return contents, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cookiestore: reading %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return contents, nil
	}
	if err := json.Unmarshal(data, contents); err != nil {
		return nil, fmt.Errorf("cookiestore: decoding %s: %w", s.path, err)
	}
	if contents.Cookies == nil {
		contents.Cookies = make(map[string]Entry)
	}
	return contents, nil
}

func (s *FileStore) save(contents *fileContents) error {
	contents.Version = fileVersion
	data, err := json.MarshalIndent(contents, "", "  ")
	if err != nil {
		return fmt.Errorf("cookiestore: encoding cookies: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("cookiestore: creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("cookiestore: writing temp file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("cookiestore: chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cookiestore: closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("cookiestore: replacing %s: %w", s.path, err)
	}
	return nil
}

// Watch calls onChange whenever the cookie file is created, written, replaced or removed,
// including by this store. It blocks until ctx is done.
func (s *FileStore) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cookiestore: creating watcher: %w", err)
	}
	defer watcher.Close()

	// Renames replace the inode, so watch the directory and filter by name.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("cookiestore: watching %s: %w", filepath.Dir(s.path), err)
	}

	target := filepath.Clean(s.path)
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			timer = nil
			onChange()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("cookiestore: watcher: %w", err)
		}
	}
}
