package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/JonMunkholm/leaddist/internal/core"
	"github.com/JonMunkholm/leaddist/internal/logging"
	"github.com/JonMunkholm/leaddist/internal/web/templates"
)

// multipartOverhead is allowed on top of the file size for the form framing.
const multipartOverhead = 1 << 20

// uploadData is the payload of a successful upload response.
type uploadData struct {
	ID               string                 `json:"id"`
	Distribution     *core.DistributionPlan `json:"distribution"`
	Summary          core.Summary           `json:"summary"`
	ValidationErrors []core.RowRejection    `json:"validationErrors,omitempty"`
}

// handleUpload parses the multipart "file" field, runs it through the
// distributor under the upload limiter and returns the recorded plan.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		if isBodyTooLarge(err) {
			s.respondError(w, r, fmt.Errorf("%w: %v", errFileTooBig, err))
			return
		}
		s.respondError(w, r, fmt.Errorf("%w: %v", errNoFile, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errNoFile)
		return
	}
	defer file.Close()

	if header.Size > maxSize {
		s.respondError(w, r, errFileTooBig)
		return
	}

	format, err := core.FormatForFile(header.Filename)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("read upload: %w", err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Upload.Timeout)
	defer cancel()

	if !s.deps.Limiter.TryAcquire() {
		logging.FromContext(ctx).Debug("waiting for upload slot",
			"active", s.deps.Limiter.ActiveCount(),
			"max", s.deps.Limiter.MaxConcurrent(),
		)
		if err := s.deps.Limiter.Acquire(ctx); err != nil {
			s.respondError(w, r, err)
			return
		}
	}
	defer s.deps.Limiter.Release()

	out, err := s.deps.Distributor.Distribute(ctx, core.Upload{
		FileName:   header.Filename,
		Format:     format,
		Data:       data,
		UploadedBy: core.PrincipalFromContext(ctx),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusCreated)
		_ = templates.DistributionSummary(out.ID, out.Summary).Render(r.Context(), w)
		return
	}

	writeJSONStatus(w, http.StatusCreated, envelope{
		Success: true,
		Message: "File processed and distributed successfully",
		Data: uploadData{
			ID:               out.ID,
			Distribution:     out.Plan,
			Summary:          out.Summary,
			ValidationErrors: out.Plan.Rejections,
		},
	})
}

func isBodyTooLarge(err error) bool {
	var tooBig *http.MaxBytesError
	return errors.As(err, &tooBig) || strings.Contains(err.Error(), "request body too large")
}
