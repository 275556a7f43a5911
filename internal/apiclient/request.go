package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// Request describes an outbound call. It is never modified by the client
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header

	// Encoded as JSON if not nil
	Body any

	// Sent without credential headers and never refreshed on 401
	Anonymous bool
}

// attempt wraps Request with the state of its lifecycle: encoded body, id and whether it was already retried
type attempt struct {
	req       Request
	body      []byte
	requestID string
	retried   bool
}

func newAttempt(req Request) (attempt, error) {
	a := attempt{req: req, requestID: uuid.NewString()}

	if req.Body == nil {
		return a, nil
	}

	body, err := json.Marshal(req.Body)
	if err != nil {
		return a, fmt.Errorf("can't encode request body. Err: %w", err)
	}
	a.body = body

	return a, nil
}

// Same request marked as retried. Original attempt stays untouched
func (a attempt) retry() attempt {
	a.retried = true
	return a
}

// Build fresh http.Request: body reader is consumed on every send, so it can't be reused
func (a attempt) httpRequest(ctx context.Context, baseURL string) (*http.Request, error) {
	target, err := url.JoinPath(baseURL, a.req.Path)
	if err != nil {
		return nil, fmt.Errorf("invalid request path %q. Err: %w", a.req.Path, err)
	}
	if len(a.req.Query) > 0 {
		target += "?" + a.req.Query.Encode()
	}

	var body io.Reader
	if a.body != nil {
		body = bytes.NewReader(a.body)
	}

	r, err := http.NewRequestWithContext(ctx, a.req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for name, values := range a.req.Header {
		for _, v := range values {
			r.Header.Add(name, v)
		}
	}
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Accept", "application/json")
	r.Header.Set(HeaderRequestID, a.requestID)

	return r, nil
}
