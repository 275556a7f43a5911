package apiclient

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/nkiryanov/behubadmin/internal/apperrors"
)

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Error body returned by the BeHub API
// 'errors' holds field level messages, some endpoints send a single message per field
type apiError struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors,omitempty"`
}

// Turn non 2xx response into typed error
func responseError(resp *Response) error {
	var body apiError
	_ = json.Unmarshal(resp.Body, &body) // body may be anything: html from proxy, empty, etc.

	message := strings.TrimSpace(body.Message)
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	fields := parseFieldErrors(body.Errors)
	if resp.StatusCode >= 400 && resp.StatusCode < 500 && len(fields) > 0 {
		return &apperrors.ValidationError{
			StatusCode: resp.StatusCode,
			Message:    message,
			Fields:     fields,
		}
	}

	return &apperrors.NetworkError{StatusCode: resp.StatusCode, Message: message}
}

func parseFieldErrors(raw json.RawMessage) map[string][]string {
	if len(raw) == 0 {
		return nil
	}

	var many map[string][]string
	if err := json.Unmarshal(raw, &many); err == nil {
		return many
	}

	var single map[string]string
	if err := json.Unmarshal(raw, &single); err == nil {
		fields := make(map[string][]string, len(single))
		for k, v := range single {
			fields[k] = []string{v}
		}
		return fields
	}

	return nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}
