package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/zhouzirui/sms-sim/internal/model/chat"
)

// Transport carries exchanges to the backend.
type Transport interface {
	// Send performs one chat request and returns the reply text.
	Send(ctx context.Context, req chat.ChatRequest) (string, error)
	Health(ctx context.Context) (chat.HealthResponse, error)
	// Forget asks the backend to drop a session transcript.
	Forget(ctx context.Context, sessionID string) error
}

// ModelEntry mirrors one item of GET /api/models.
type ModelEntry struct {
	ID        string `json:"id"`
	Provider  string `json:"provider"`
	Available bool   `json:"available"`
}

// ModelList is the body of GET /api/models.
type ModelList struct {
	Default string       `json:"default"`
	Models  []ModelEntry `json:"models"`
}

// StatusError reports a non-2xx answer, or an error frame on the
// websocket (Status 0).
type StatusError struct {
	Status  int
	Details string
}

func (e *StatusError) Error() string {
	if e.Status == 0 {
		return "backend error: " + e.Details
	}
	if e.Details == "" {
		return fmt.Sprintf("backend returned %d", e.Status)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Details)
}

// ErrMalformedResponse 表示响应体无法解析或缺少 response 字段。
var ErrMalformedResponse = errors.New("malformed response")

// HTTPTransport talks to the JSON endpoints under /api.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
}

// NewHTTPTransport targets a backend such as "http://localhost:3000". A nil
// client uses http.DefaultClient, so there is no timeout beyond the
// transport's own.
func NewHTTPTransport(baseURL string, client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// Send posts to /api/chat.
func (t *HTTPTransport) Send(ctx context.Context, req chat.ChatRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", errors.Wrap(err, "encode chat request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "build chat request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return "", errors.Wrap(err, "post chat")
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var body struct {
		Response *string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", errors.Wrap(ErrMalformedResponse, err.Error())
	}
	return replyText(body.Response)
}

// Health fetches /api/health.
func (t *HTTPTransport) Health(ctx context.Context) (chat.HealthResponse, error) {
	var health chat.HealthResponse
	err := t.getJSON(ctx, "/api/health", &health)
	return health, err
}

// Models fetches /api/models.
func (t *HTTPTransport) Models(ctx context.Context) (ModelList, error) {
	var list ModelList
	err := t.getJSON(ctx, "/api/models", &list)
	return list, err
}

// Forget sends DELETE /api/sessions/{id}.
func (t *HTTPTransport) Forget(ctx context.Context, sessionID string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, t.baseURL+"/api/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return errors.Wrap(err, "build delete request")
	}
	resp, err := t.client.Do(httpReq)
	if err != nil {
		return errors.Wrap(err, "delete session")
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

func (t *HTTPTransport) getJSON(ctx context.Context, path string, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+path, nil)
	if err != nil {
		return errors.Wrapf(err, "build request %s", path)
	}
	resp, err := t.client.Do(httpReq)
	if err != nil {
		return errors.Wrapf(err, "get %s", path)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(ErrMalformedResponse, err.Error())
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	var body chat.ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err != nil || body.Details == "" {
		body.Details = strings.TrimSpace(body.Error)
	}
	return &StatusError{Status: resp.StatusCode, Details: body.Details}
}

func replyText(response *string) (string, error) {
	if response == nil || strings.TrimSpace(*response) == "" {
		return "", errors.Wrap(ErrMalformedResponse, "missing response text")
	}
	return *response, nil
}
