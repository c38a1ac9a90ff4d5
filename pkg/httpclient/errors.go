package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// APIError represents an error response from a remote API that uses the
// standard {success, error, details} envelope.
type APIError struct {
	StatusCode int
	Message    string
	Details    any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// envelope mirrors the response body shape used by the platform services.
type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details"`
}

// ParseResponseError reads a non-2xx response body and converts it into an
// *APIError. The body is consumed but not closed.
func ParseResponseError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil || env.Error == "" {
		return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	apiErr := &APIError{StatusCode: resp.StatusCode, Message: env.Error}
	if len(env.Details) > 0 {
		var details any
		if err := json.Unmarshal(env.Details, &details); err == nil {
			apiErr.Details = details
		}
	}
	return apiErr
}
