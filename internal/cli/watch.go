package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/leaddist/internal/core"
	"github.com/JonMunkholm/leaddist/internal/logging"
)

// Distributor is what a Watcher hands settled files to.
type Distributor interface {
	Distribute(ctx context.Context, up core.Upload) (*core.Outcome, error)
}

// Watcher distributes every sheet written into a directory. A file is
// processed once no event has touched it for the debounce window, so a
// copy in progress is not read half-written.
type Watcher struct {
	dir        string
	dist       Distributor
	uploadedBy string
	debounce   time.Duration

	mu      sync.Mutex
	pending map[string]time.Time
	stats   WatchStats
}

// WatchStats counts what a Watcher has done.
type WatchStats struct {
	Distributed int
	Failed      int
}

// NewWatcher watches dir. A non-positive debounce defaults to 500ms.
func NewWatcher(dir string, dist Distributor, uploadedBy string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		dir:        dir,
		dist:       dist,
		uploadedBy: uploadedBy,
		debounce:   debounce,
		pending:    make(map[string]time.Time),
	}
}

// Stats returns a snapshot of the counters.
func (w *Watcher) Stats() WatchStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Run blocks until ctx is done or the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	log := logging.WithFields(ctx, "dir", w.dir)
	log.Info("watching for sheets")

	tick := time.NewTicker(w.debounce / 2)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			if isSheetEvent(event) {
				w.mu.Lock()
				w.pending[event.Name] = time.Now()
				w.mu.Unlock()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			log.Warn("watch error", "error", err)
		case <-tick.C:
			for _, path := range w.settled(time.Now()) {
				w.process(ctx, path)
			}
		}
	}
}

// isSheetEvent reports creates and writes of .csv and .xlsx files.
// Hidden files are skipped so temp files of editors and of the recorder
// never trigger a run.
func isSheetEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return false
	}
	_, err := core.FormatForFile(base)
	return err == nil
}

// settled removes and returns the paths whose last event is older than
// the debounce window.
func (w *Watcher) settled(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var ready []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	return ready
}

func (w *Watcher) process(ctx context.Context, path string) {
	log := logging.WithFields(ctx, "file", path)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Debug("file removed before processing")
		return
	}

	var out *core.Outcome
	if err == nil {
		format, _ := core.FormatForFile(path)
		out, err = w.dist.Distribute(ctx, core.Upload{
			FileName:   filepath.Base(path),
			Format:     format,
			Data:       data,
			UploadedBy: w.uploadedBy,
		})
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.stats.Failed++
		log.Error("distribution failed", "error", err, "code", core.MapError(err).Code)
		return
	}
	w.stats.Distributed++
	log.Info("distributed", "distribution_id", out.ID, "accepted", out.Summary.TotalRecords, "skipped", out.Summary.SkippedCount)
}

func watchCmd() *cobra.Command {
	var (
		rosterPath string
		outDir     string
		uploadedBy string
		debounce   time.Duration
	)

	c := &cobra.Command{
		Use:   "watch DIR",
		Short: "Distribute every sheet dropped into DIR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roster, err := LoadRoster(rosterPath)
			if err != nil {
				return err
			}

			dest := outDir
			if dest == "" {
				dest = filepath.Join(args[0], "plans")
			}

			d := core.NewDistributor(roster, NewDirRecorder(dest))
			return NewWatcher(args[0], d, uploadedBy, debounce).Run(cmd.Context())
		},
	}

	c.Flags().StringVarP(&rosterPath, "roster", "r", "", "YAML roster file (required)")
	c.Flags().StringVarP(&outDir, "out-dir", "o", "", "directory for plan files (default: DIR/plans)")
	c.Flags().StringVar(&uploadedBy, "uploaded-by", defaultUploader(), "principal recorded as the uploader")
	c.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "quiet period before a file is read")
	_ = c.MarkFlagRequired("roster")
	return c
}
