// Package gateway wraps every outbound call to the TrulyHelp backend:
// credential attachment, uniform 401 handling and the error taxonomy live
// here so screen-facing code never deals with raw HTTP failures.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/DipuTony/trulyhelp-portal/internal/common"
)

const expiryNotice = "Your session has expired. Please sign in again."

// SessionControl is the slice of the session store the gateway needs:
// the live credential, and the compare-and-swap expiry that guarantees a
// burst of parallel 401s produces exactly one logout.
type SessionControl interface {
	Credential() (token string, gen uint64, ok bool)
	ExpireIfCurrent(gen uint64, notice string) bool
}

// Gateway is safe for concurrent use.
type Gateway struct {
	baseURL string
	client  *http.Client
	session SessionControl
}

func New(baseURL string, session SessionControl) *Gateway {
	return &Gateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		session: session,
	}
}

// envelope is the backend's uniform JSON response shape.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// GetJSON fetches path and decodes the response envelope's data into out.
func (g *Gateway) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, _, err := g.call(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return decodeEnvelope(body, out)
}

// PostJSON posts body as JSON and decodes the response into out. A nil out
// discards the response payload.
func (g *Gateway) PostJSON(ctx context.Context, path string, payload any, out any) error {
	var reqBody []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		reqBody = b
	}
	body, _, err := g.call(ctx, http.MethodPost, path, nil, reqBody)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decodeEnvelope(body, out)
}

// GetRaw fetches path and returns the body verbatim with its content type.
// Used for passthrough artifacts like the 10BD regulatory export.
func (g *Gateway) GetRaw(ctx context.Context, path string, query url.Values) ([]byte, string, error) {
	return g.call(ctx, http.MethodGet, path, query, nil)
}

// call performs one request and classifies the outcome. Transport-level
// failures surface as TransportError; the operation that issued the call
// attaches its own retry capability so a retry re-runs the whole operation,
// state updates included.
func (g *Gateway) call(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, string, error) {
	u := g.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, gen, hasCredential := g.session.Credential()
	if hasCredential {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, "", common.NewTransportError(err, nil)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", common.NewTransportError(err, nil)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if hasCredential {
			g.session.ExpireIfCurrent(gen, expiryNotice)
		}
		return nil, "", &common.AuthorizationError{Message: "credential rejected by backend"}
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, "", common.NewTransportError(fmt.Errorf("backend returned %d for %s %s", resp.StatusCode, method, path), nil)
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, "", &common.ValidationError{Message: backendMessage(respBody, resp.StatusCode)}
	}

	return respBody, resp.Header.Get("Content-Type"), nil
}

func backendMessage(body []byte, status int) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		return env.Message
	}
	return fmt.Sprintf("backend rejected the request (%d)", status)
}

func decodeEnvelope(body []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("malformed backend response: %w", err)
	}
	if env.Data == nil {
		// Some endpoints answer with the object at the top level.
		return json.Unmarshal(body, out)
	}
	return json.Unmarshal(env.Data, out)
}
