package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/benjaminschreck/go-zonemerge/pkg/zonemerge"
)

// readJSON decodes a JSON request body with a size limit.
func readJSON[T any](w http.ResponseWriter, r *http.Request, bodyLimit int64) (T, bool) {
	var v T
	if bodyLimit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	}
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "", "request body too large")
		} else {
			writeError(w, http.StatusBadRequest, "", "invalid request body")
		}
		return v, false
	}
	return v, true
}

type errorResponse struct {
	Error  string                      `json:"error"`
	Kind   string                      `json:"kind,omitempty"`
	Issues []zonemerge.ValidationIssue `json:"issues,omitempty"`
	Line   int                         `json:"line,omitempty"`
	Column int                         `json:"column,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zonemerge.GetLogger().WithField("error", err).Error("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorResponse{Error: message, Kind: kind})
}

// writeMergeError maps engine errors to responses. Template and input
// problems are the client's; anything else is logged and hidden.
func writeMergeError(w http.ResponseWriter, logger *zonemerge.Logger, err error) {
	var (
		parseErr *zonemerge.ParseError
		valErr   *zonemerge.ValidationError
		ioErr    *zonemerge.IOError
	)
	switch {
	case errors.As(err, &parseErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  parseErr.Error(),
			Kind:   "parse",
			Line:   parseErr.Line,
			Column: parseErr.Column,
		})
	case errors.As(err, &valErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  valErr.Error(),
			Kind:   "validation",
			Issues: valErr.Issues,
		})
	case errors.As(err, &ioErr):
		writeError(w, http.StatusBadRequest, "decode", ioErr.Error())
	case zonemerge.IsNotLoadedError(err):
		writeError(w, http.StatusUnprocessableEntity, "not_loaded", err.Error())
	default:
		logger.WithField("error", err).Error("request failed")
		writeError(w, http.StatusInternalServerError, "", "internal server error")
	}
}
