package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/leaddist/internal/core"
	"github.com/JonMunkholm/leaddist/internal/logging"
	"github.com/JonMunkholm/leaddist/internal/store"
)

// JSONRecorder implements core.DistributionRecorder by writing each plan
// to a JSON file in the same shape the history API returns.
type JSONRecorder struct {
	target func(id string, req core.RecordRequest) string
	now    func() time.Time

	mu   sync.Mutex
	last string
}

// NewFileRecorder writes every plan to path, replacing what was there.
func NewFileRecorder(path string) *JSONRecorder {
	return &JSONRecorder{
		target: func(string, core.RecordRequest) string { return path },
		now:    time.Now,
	}
}

// NewDirRecorder writes each plan to dir as <file stem>-<id>.json.
func NewDirRecorder(dir string) *JSONRecorder {
	return &JSONRecorder{
		target: func(id string, req core.RecordRequest) string {
			stem := strings.TrimSuffix(filepath.Base(req.FileName), filepath.Ext(req.FileName))
			return filepath.Join(dir, stem+"-"+id+".json")
		},
		now: time.Now,
	}
}

// RecordDistribution writes the plan through a temp file and a rename so
// readers never see a partial document.
func (r *JSONRecorder) RecordDistribution(ctx context.Context, req core.RecordRequest) (string, error) {
	if req.Plan == nil {
		return "", fmt.Errorf("record distribution: nil plan")
	}

	id := uuid.NewString()
	doc := store.Distribution{
		ID:               id,
		UploadedBy:       req.UploadedBy,
		CreatedAt:        r.now().UTC(),
		DistributionPlan: req.Plan,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode plan: %w", err)
	}

	path := r.target(id, req)
	if err := writeFileAtomic(path, append(data, '\n')); err != nil {
		return "", err
	}

	r.mu.Lock()
	r.last = path
	r.mu.Unlock()

	logging.FromContext(ctx).Debug("plan written", "path", path, "distribution_id", id)
	return id, nil
}

// LastPath returns the file written by the most recent successful call.
func (r *JSONRecorder) LastPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".plan-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write plan: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	return nil
}
