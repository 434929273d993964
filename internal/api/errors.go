package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Error is a non-2xx application response. Message is the server-supplied
// `error` string, surfaced to the user verbatim when present.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned %s", http.StatusText(e.StatusCode))
}

// errorFromResponse drains the body looking for {"error": "..."}. Bodies
// that are not JSON still produce a usable Error with the status alone.
func errorFromResponse(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return apiErr
	}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		apiErr.Message = payload.Error
	}
	return apiErr
}
