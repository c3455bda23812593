package auth

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// TokenFile resolves bearer tokens against a YAML file mapping tokens to
// sessions:
//
//	s3cret-token:
//	  email: jane@example.com
//	  name: Jane
//
// The file is reloaded when it changes on disk, so the external identity
// provider (or an operator) can rotate tokens without a restart.
type TokenFile struct {
	path string
	log  *logrus.Entry

	mu       sync.RWMutex
	sessions map[string]*Session

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewTokenFile loads the sessions file and starts watching it for changes.
func NewTokenFile(path string, log *logrus.Entry) (*TokenFile, error) {
	t := &TokenFile{
		path:     path,
		log:      log,
		sessions: map[string]*Session{},
		done:     make(chan struct{}),
	}
	if err := t.reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating sessions watcher: %w", err)
	}
	// Watch the directory: editors and provisioning tools replace the file
	// rather than writing in place, which drops a watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watching sessions dir: %w", err)
	}
	t.watcher = watcher
	go t.watch()
	return t, nil
}

// Resolve implements Resolver.
func (t *TokenFile) Resolve(r *http.Request) (*Session, error) {
	token := BearerToken(r)
	if token == "" {
		return nil, nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sessions[token], nil
}

// Close stops the file watcher.
func (t *TokenFile) Close() error {
	close(t.done)
	if t.watcher != nil {
		return t.watcher.Close()
	}
	return nil
}

func (t *TokenFile) reload() error {
	data, err := os.ReadFile(t.path) // #nosec G304 - operator-configured path
	if err != nil {
		return fmt.Errorf("reading sessions file: %w", err)
	}
	sessions := map[string]*Session{}
	if err := yaml.Unmarshal(data, &sessions); err != nil {
		return fmt.Errorf("parsing sessions file: %w", err)
	}
	for token, s := range sessions {
		if s == nil || s.Email == "" {
			return fmt.Errorf("sessions file: token %q has no email", token)
		}
	}
	t.mu.Lock()
	t.sessions = sessions
	t.mu.Unlock()
	return nil
}

func (t *TokenFile) watch() {
	for {
		select {
		case <-t.done:
			return
		case event, ok := <-t.watcher.Events:
			if !ok {
				return
			}
			if event.Name != t.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := t.reload(); err != nil {
				// Keep serving the last good session set.
				t.log.WithError(err).Warn("failed to reload sessions file")
				continue
			}
			t.log.Info("reloaded sessions file")
		case err, ok := <-t.watcher.Errors:
			if !ok {
				return
			}
			t.log.WithError(err).Warn("sessions watcher error")
		}
	}
}
