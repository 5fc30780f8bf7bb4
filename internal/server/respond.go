package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dentflow/dentflow/pkg/errors"
	"github.com/dentflow/dentflow/pkg/store"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// pagedBody wraps a result page in the list envelope.
type pagedBody struct {
	Results any `json:"results"`
	store.PageInfo
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to its HTTP status and emits the error envelope.
// Server-side failures are logged with their cause; the body only
// carries the user-facing message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		loggerFromContext(r.Context()).Error("request failed", "error", err)
	}

	var body errorBody
	body.Error.Code = string(errors.GetCode(err))
	body.Error.Message = errors.UserMessage(err)
	writeJSON(w, status, body)
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decoding request body")
	}
	return nil
}

// listOptions parses the page/limit/search query parameters.
func listOptions(r *http.Request) (store.ListOptions, error) {
	opts := store.ListOptions{Search: r.URL.Query().Get("search")}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || page < 1 {
			return opts, errors.New(errors.ErrCodeInvalidPage, "invalid page %q", raw)
		}
		opts.Page = page
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit < 1 {
			return opts, errors.New(errors.ErrCodeInvalidPage, "invalid limit %q", raw)
		}
		opts.Limit = limit
	}
	return opts, nil
}
