// Package preview serves the generated docs site locally and rebuilds it when
// source files change.
package preview

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/shipyard/internal/logfields"
)

const debounceDelay = 300 * time.Millisecond

// Builder rebuilds the site; docsite.Service satisfies this.
type Builder interface {
	Build(ctx context.Context) error
	OutputDir() string
}

// Server watches a source directory and serves the built site over HTTP.
type Server struct {
	source  string
	builder Builder
	port    int

	mu        sync.RWMutex
	lastError error
}

// NewServer creates a preview server watching source and serving builder output.
func NewServer(source string, builder Builder, port int) *Server {
	return &Server{source: source, builder: builder, port: port}
}

// LastError returns the most recent build error, nil after a good build.
func (s *Server) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// Run performs an initial build, then serves the site and rebuilds on file
// changes until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	abs, err := filepath.Abs(s.source)
	if err != nil {
		return fmt.Errorf("resolve source dir: %w", err)
	}
	if st, statErr := os.Stat(abs); statErr != nil || !st.IsDir() {
		return fmt.Errorf("source dir not found or not a directory: %s", abs)
	}

	if err := s.rebuild(ctx); err != nil {
		slog.Error("Initial build failed", logfields.Error(err))
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", s.port, err)
	}
	srv := &http.Server{Handler: http.FileServer(http.Dir(s.builder.OutputDir()))}
	go func() {
		if serveErr := srv.Serve(ln); serveErr != nil && serveErr != http.ErrServerClosed {
			slog.Error("Preview server error", logfields.Error(serveErr))
		}
	}()
	slog.Info("Preview server listening",
		slog.Int("port", s.port),
		logfields.URL(fmt.Sprintf("http://localhost:%d", s.port)))

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer watcher.Close()
	if err := addDirsRecursive(watcher, abs); err != nil {
		return err
	}

	rebuildReq := make(chan struct{}, 1)
	trigger := newDebouncer(rebuildReq)
	go s.rebuildWorker(ctx, rebuildReq)

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if shutErr := srv.Shutdown(shutdownCtx); shutErr != nil {
				slog.Warn("Preview server shutdown error", logfields.Error(shutErr))
			}
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			s.handleFileEvent(watcher, ev, trigger)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(werr))
		}
	}
}

// newDebouncer returns a trigger that coalesces bursts of events into a
// single rebuild request.
func newDebouncer(rebuildReq chan<- struct{}) func() {
	var mu sync.Mutex
	var timer *time.Timer
	return func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounceDelay, func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}
}

func (s *Server) rebuildWorker(ctx context.Context, rebuildReq <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-rebuildReq:
			if !ok {
				return
			}
			slog.Info("Change detected; rebuilding site")
			if err := s.rebuild(ctx); err != nil {
				slog.Warn("Rebuild failed", logfields.Error(err))
			}
		}
	}
}

func (s *Server) rebuild(ctx context.Context) error {
	err := s.builder.Build(ctx)
	s.mu.Lock()
	s.lastError = err
	s.mu.Unlock()
	return err
}

func (s *Server) handleFileEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if shouldIgnoreEvent(ev.Name) {
		return
	}
	// New directories must be added to the watch set.
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(watcher, ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if addErr := w.Add(path); addErr != nil {
				slog.Warn("Watch add failed", logfields.Path(path), logfields.Error(addErr))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent filters out hidden files and editor temp/swap files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, ".#") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	if base == "Thumbs.db" {
		return true
	}
	return false
}
