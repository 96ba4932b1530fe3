package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/bbx/internal/shared"
)

// APIError is a non-2xx reply from the backend.
//
// It matches [shared.ErrAPIRequest] with [errors.Is], plus [shared.ErrNotAuthenticated] for 401,
// [shared.ErrForbidden] for 403 and [shared.ErrNotFound] for 404.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Detail     string
	Body       []byte
}

func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case shared.ErrAPIRequest:
		return true
	case shared.ErrNotAuthenticated:
		return e.StatusCode == http.StatusUnauthorized
	case shared.ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case shared.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// AsAPIError unwraps err into an [*APIError] when it is one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	return &APIError{
		StatusCode: status,
		Method:     method,
		Path:       path,
		Detail:     parseDetail(body),
		Body:       body,
	}
}

// parseDetail reads FastAPI error bodies: {"detail": "msg"} or {"detail": [{"msg": ...}, ...]}.
// Anything else falls back to the trimmed body text.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return shared.Truncate(strings.TrimSpace(string(body)), 200)
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}

	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil && len(items) > 0 {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if len(item.Loc) > 0 {
				msgs = append(msgs, fmt.Sprintf("%v: %s", item.Loc[len(item.Loc)-1], item.Msg))
			} else {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return string(envelope.Detail)
}
