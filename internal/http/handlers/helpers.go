package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"delivery-lifecycle/internal/apperr"
	"delivery-lifecycle/internal/auth"
	"delivery-lifecycle/internal/domain"
	"delivery-lifecycle/internal/logx"
)

const bodyLimit = 1 << 20

func reqID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return "-"
}

func writeJSON(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logger.Warn("json encode failed",
			logx.String("request_id", reqID(r)),
			logx.Any("error", err),
		)
	}
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	logger.Info("http error",
		logx.String("request_id", reqID(r)),
		logx.Int("status", status),
		logx.String("code", code),
		logx.String("msg", msg),
	)
	writeJSON(logger, w, r, status, ErrorResponse{Error: msg, Code: code})
}

// statusOf maps an application error kind to its HTTP status. Each kind gets its own status.
var statusOf = map[string]int{
	"invalid_input":        http.StatusBadRequest,
	"unauthorized":         http.StatusForbidden,
	"not_found":            http.StatusNotFound,
	"conflict":             http.StatusConflict,
	"terminal_state":       http.StatusGone,
	"delivery_not_pending": http.StatusPreconditionFailed,
	"invalid_transition":   http.StatusUnprocessableEntity,
	"driver_unavailable":   http.StatusLocked,
	"missing_reason":       http.StatusPreconditionRequired,
}

// writeAppError renders err using its apperr kind; anything else is a 500 without details.
func writeAppError(logger logx.Logger, w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.Kind(err)
	status, ok := statusOf[kind]
	if !ok {
		logger.Error("request failed",
			logx.String("request_id", reqID(r)),
			logx.String("method", r.Method),
			logx.String("path", r.URL.Path),
			logx.Any("error", err),
		)
		writeError(logger, w, r, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	writeError(logger, w, r, status, kind, err.Error())
}

func decodeJSON[T any](logger logx.Logger, w http.ResponseWriter, r *http.Request, dst *T) bool {
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(logger, w, r, http.StatusBadRequest, "invalid_input", "invalid json")
		return false
	}
	if err := dec.Decode(new(struct{})); !errors.Is(err, io.EOF) {
		writeError(logger, w, r, http.StatusBadRequest, "invalid_input", "invalid json: trailing data")
		return false
	}
	return true
}

func idFromURL(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// actorFrom returns the authenticated caller. The auth middleware guarantees it on protected routes.
func actorFrom(r *http.Request) (domain.Actor, bool) {
	return auth.FromContext(r.Context())
}

func queryInt(r *http.Request, name string) (*int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return nil, errors.New("invalid " + name)
	}
	return &v, nil
}

func queryInt64(r *http.Request, name string) (*int64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return nil, errors.New("invalid " + name)
	}
	return &v, nil
}
