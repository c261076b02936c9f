package ui

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"energydash/app"
	"energydash/domain/core"
	"energydash/internal/errors"
)

// errorResponse is the JSON body of every failed API call.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status code and JSON body. Settings validation
// failures are returned field by field.
func (a *App) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fields app.FieldErrors
	if stderrors.As(err, &fields) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": fields})
		return
	}

	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if core.IsValidationError(err) && !errors.IsAppError(err) {
		code = errors.CodeValidationError
		status = http.StatusBadRequest
	}

	if status >= http.StatusInternalServerError {
		a.logger.Error("%s %s: %v", r.Method, r.URL.Path, err)
	} else {
		a.logger.Debug("%s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, errorResponse{Error: sentence(errors.Message(err)), Code: code})
}

// sentence upper-cases the first letter of an error message for display.
func sentence(msg string) string {
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return core.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	return nil
}

// queryTime parses an optional date or timestamp query parameter.
func queryTime(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	t, err := core.ParseTimestamp(raw)
	if err != nil {
		return nil, core.NewValidationError(key, "invalid date "+strconv.Quote(raw))
	}
	return &t, nil
}

// queryRange reads a start and end parameter pair. Missing values default to
// the defaultDays days ending today.
func (a *App) queryRange(r *http.Request, startKey, endKey string, defaultDays int) (time.Time, time.Time, error) {
	start, err := queryTime(r, startKey)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := queryTime(r, endKey)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if end == nil {
		today := a.now().UTC()
		end = &today
	}
	if start == nil {
		s := end.AddDate(0, 0, -(defaultDays - 1))
		start = &s
	}
	if end.Before(*start) {
		return time.Time{}, time.Time{}, core.NewValidationError(endKey, "must not be before "+startKey)
	}
	return *start, *end, nil
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, core.NewValidationError(key, "must be an integer")
	}
	return n, nil
}

func queryFloat(r *http.Request, key string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, core.NewValidationError(key, "must be a number")
	}
	return v, nil
}

func queryInt64(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, core.NewValidationError(key, "must be an integer")
	}
	return n, nil
}

func attachment(w http.ResponseWriter, contentType, name string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
}
