package web

// errors.go turns handler errors into responses.
//
// Every error is mapped through core.MapError for the user-facing message
// and code, logged with the technical detail and request ID, then written
// as JSON for API clients or as a templ fragment for HTMX requests.

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/leaddist/internal/agents"
	"github.com/JonMunkholm/leaddist/internal/core"
	"github.com/JonMunkholm/leaddist/internal/logging"
	"github.com/JonMunkholm/leaddist/internal/store"
	"github.com/JonMunkholm/leaddist/internal/web/templates"
)

var (
	errNoFile      = errors.New("no file provided")
	errInvalidBody = errors.New("invalid request body")
	errFileTooBig  = errors.New("file too large")
)

// errorBody is the JSON shape of every failed API response.
type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`

	Errors              []agents.FieldError `json:"errors,omitempty"`
	ValidationErrors    []core.RowRejection `json:"validationErrors,omitempty"`
	CurrentActiveAgents *int                `json:"currentActiveAgents,omitempty"`
}

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var (
		validation *agents.ValidationError
		tooBig     *http.MaxBytesError
	)

	switch {
	case errors.As(err, &tooBig), errors.Is(err, errFileTooBig):
		return http.StatusRequestEntityTooLarge
	case core.KindOf(err) != core.KindUnknown:
		return http.StatusBadRequest
	case errors.As(err, &validation),
		errors.Is(err, errNoFile),
		errors.Is(err, errInvalidBody):
		return http.StatusBadRequest
	case errors.Is(err, agents.ErrNotFound),
		errors.Is(err, store.ErrDistributionNotFound):
		return http.StatusNotFound
	case errors.Is(err, agents.ErrDuplicateEmail),
		errors.Is(err, store.ErrRosterChanged):
		return http.StatusConflict
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the user-facing form of it.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := core.MapError(err)

	logger := logging.FromContext(r.Context()).With(
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", msg.Code,
		"error", err.Error(),
	)
	if status >= http.StatusInternalServerError {
		logger.Error("request error")
	} else {
		logger.Info("request rejected")
	}

	if errors.Is(err, core.ErrTooManyUploads) {
		w.Header().Set("Retry-After", "30")
	}

	if isHTMX(r) {
		renderErrorPartial(w, r, msg, status)
		return
	}

	body := errorBody{
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	}

	var (
		validation *agents.ValidationError
		noneErr    *core.NoAcceptedRecordsError
		targetErr  *core.TargetCountError
	)
	switch {
	case errors.As(err, &validation):
		body.Errors = validation.Fields
	case errors.As(err, &noneErr):
		body.ValidationErrors = noneErr.Rejections
	case errors.As(err, &targetErr):
		found := targetErr.Found
		body.CurrentActiveAgents = &found
	}

	writeJSONStatus(w, status, body)
}

func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render error fragment", "error", err)
	}
}

func isHTMX(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("HX-Request"), "true")
}
