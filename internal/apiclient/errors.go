package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/diagnosis/luxstay/internal/domain"
)

// RemoteError is a failed call to the service. StatusCode is 0 when no
// response was received (transport failure, timeout, open circuit).
type RemoteError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	switch {
	case e.StatusCode == 0 && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.StatusCode == 0:
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	default:
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
	}
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is maps the HTTP outcome onto the domain error kinds.
func (e *RemoteError) Is(target error) bool {
	switch target {
	case domain.ErrAuth:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case domain.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case domain.ErrRejected:
		return e.StatusCode >= 400 && e.StatusCode < 500 &&
			e.StatusCode != http.StatusUnauthorized &&
			e.StatusCode != http.StatusForbidden &&
			e.StatusCode != http.StatusNotFound
	case domain.ErrNetwork:
		return e.StatusCode == 0 || e.StatusCode >= 500
	}
	return false
}

// errorMessage pulls a human readable message out of an error body. The
// service answers with {"error": ...}, {"detail": ...} or per-field lists.
func errorMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "no details"
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		if len(trimmed) > 200 {
			trimmed = trimmed[:200]
		}
		return trimmed
	}

	for _, key := range []string{"error", "detail", "message"} {
		if raw, ok := fields[key]; ok {
			if msg := flatten(raw); msg != "" {
				return msg
			}
		}
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		if msg := flatten(fields[k]); msg != "" {
			if k == "non_field_errors" {
				parts = append(parts, msg)
			} else {
				parts = append(parts, k+": "+msg)
			}
		}
	}
	if len(parts) == 0 {
		return trimmed
	}
	return strings.Join(parts, "; ")
}

func flatten(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, ", ")
	}
	return ""
}
