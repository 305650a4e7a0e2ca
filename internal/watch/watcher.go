// Package watch turns résumé documents dropped into an inbox directory into
// structured files in an output directory.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"resumeforge/internal/common"
	"resumeforge/internal/errors"
	"resumeforge/internal/service"
	"resumeforge/internal/types"
	"resumeforge/internal/utils"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounceDelay = 500 * time.Millisecond

// Config holds the inbox watcher settings
type Config struct {
	Dir           string
	OutputDir     string
	Format        string
	DebounceDelay time.Duration
	MaxFileSize   int64
}

// Stats counts what the watcher did with the files it saw
type Stats struct {
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
	Skipped   int64 `json:"skipped"`
}

// Watcher watches the inbox directory and parses documents as they settle
type Watcher struct {
	mu sync.Mutex

	cfg    Config
	svc    *service.Service
	logger *errors.Logger

	fsWatcher *fsnotify.Watcher
	timers    map[string]*time.Timer
	pending   chan string
	stopChan  chan struct{}
	done      chan struct{}
	running   bool

	processed atomic.Int64
	failed    atomic.Int64
	skipped   atomic.Int64
}

// New creates an inbox watcher. Format must be one of the output formatter
// names (json, yaml, text, markdown).
func New(cfg Config, svc *service.Service, logger *errors.Logger) (*Watcher, error) {
	if cfg.Dir == "" || cfg.OutputDir == "" {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "watch dir and output dir are required", nil)
	}
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = defaultDebounceDelay
	}
	if cfg.Format == "" {
		cfg.Format = "json"
	}
	if err := common.ValidateOutputFormat(cfg.Format, nil); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "invalid watch output format", err)
	}

	return &Watcher{
		cfg:    cfg,
		svc:    svc,
		logger: logger,
		timers: make(map[string]*time.Timer),
	}, nil
}

// Start begins watching the inbox. Documents are processed with ctx until
// Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("inbox watcher is already running")
	}

	for _, dir := range []string{w.cfg.Dir, w.cfg.OutputDir} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(w.cfg.Dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch directory %s: %w", w.cfg.Dir, err)
	}

	w.fsWatcher = watcher
	w.pending = make(chan string, 64)
	w.stopChan = make(chan struct{})
	w.done = make(chan struct{})
	w.running = true
	go w.watchLoop(ctx)

	if w.logger != nil {
		w.logger.Info("Inbox watcher started",
			"dir", w.cfg.Dir,
			"output_dir", w.cfg.OutputDir,
			"format", w.cfg.Format,
			"debounce_delay", w.cfg.DebounceDelay)
	}
	return nil
}

// Stop stops the watcher and waits for the document in progress to finish
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
	close(w.stopChan)
	w.mu.Unlock()

	<-w.done

	if err := w.fsWatcher.Close(); err != nil {
		if w.logger != nil {
			w.logger.LogError(err, "Failed to close file system watcher")
		}
		return err
	}

	if w.logger != nil {
		stats := w.Stats()
		w.logger.Info("Inbox watcher stopped",
			"processed", stats.Processed,
			"failed", stats.Failed,
			"skipped", stats.Skipped)
	}
	return nil
}

// Run watches until ctx is cancelled
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return w.Stop()
}

// Stats returns the counters accumulated since the watcher was created
func (w *Watcher) Stats() Stats {
	return Stats{
		Processed: w.processed.Load(),
		Failed:    w.failed.Load(),
		Skipped:   w.skipped.Load(),
	}
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if w.shouldProcessEvent(event) {
				w.scheduleProcess(event.Name)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.LogError(err, "File watcher error")
			}

		case path := <-w.pending:
			_ = w.ProcessFile(ctx, path)

		case <-w.stopChan:
			return
		}
	}
}

// shouldProcessEvent filters out directories, temporary files and
// unsupported documents. Unsupported files are counted once per event.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return false
	}
	if utils.IsTemporaryFile(event.Name) {
		return false
	}
	if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
		return false
	}
	if !utils.IsSupportedDocument(event.Name) {
		if event.Op&fsnotify.Create != 0 {
			w.skipped.Add(1)
			if w.logger != nil {
				w.logger.Info("Skipping unsupported file", "file", filepath.Base(event.Name))
			}
		}
		return false
	}
	return true
}

// scheduleProcess restarts the debounce timer for path, so a document is
// parsed once after its writes settle.
func (w *Watcher) scheduleProcess(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	if timer, ok := w.timers[path]; ok {
		timer.Stop()
	}

	w.timers[path] = time.AfterFunc(w.cfg.DebounceDelay, func() {
		w.mu.Lock()
		delete(w.timers, path)
		running := w.running
		w.mu.Unlock()
		if !running {
			return
		}
		select {
		case w.pending <- path:
		case <-w.stopChan:
		}
	})
}

// OutputPath returns where the parsed form of input is written
func (w *Watcher) OutputPath(input string) string {
	base := filepath.Base(input)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(w.cfg.OutputDir, name+"."+outputExtension(w.cfg.Format))
}

// ProcessFile parses one document and writes the result to the output
// directory.
func (w *Watcher) ProcessFile(ctx context.Context, path string) error {
	start := time.Now()
	err := common.RunDocumentCommand(ctx, w.logger,
		common.CommandConfig{OutputFile: w.OutputPath(path), OutputFormat: w.cfg.Format},
		path, w.cfg.MaxFileSize,
		func(ctx context.Context, data []byte, filename string) (types.ResumeData, error) {
			return w.svc.ParseDocument(ctx, service.SourceWatch, data, filename)
		})
	if err != nil {
		w.failed.Add(1)
		if w.logger != nil {
			w.logger.LogError(err, "Failed to process inbox document", "file", filepath.Base(path))
		}
		return err
	}

	w.processed.Add(1)
	if w.logger != nil {
		w.logger.Info("Inbox document processed",
			"file", filepath.Base(path),
			"output", w.OutputPath(path),
			"duration", time.Since(start))
	}
	return nil
}

func outputExtension(format string) string {
	switch format {
	case "text":
		return "txt"
	case "markdown":
		return "md"
	default:
		return format
	}
}
