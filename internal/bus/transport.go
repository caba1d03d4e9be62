package bus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/spotty118/collaborative-ai-crafters-sub000/internal/store"
	"github.com/spotty118/collaborative-ai-crafters-sub000/pkg/models"
)

// Transport persists published messages and fetches messages written
// by other processes.
type Transport interface {
	// Deliver persists a message.
	Deliver(ctx context.Context, m *models.Message) error
	// Fetch returns recent messages addressed to the recipient,
	// oldest first.
	Fetch(ctx context.Context, projectID, recipient string, limit int) ([]models.Message, error)
}

// StoreTransport delivers messages directly to the durable store. It
// is the fallback transport and also serves as the fetch source for
// the polling loop.
type StoreTransport struct {
	store store.MessageStore
}

// NewStoreTransport creates a StoreTransport over the given store.
func NewStoreTransport(s store.MessageStore) *StoreTransport {
	return &StoreTransport{store: s}
}

// Deliver writes the message to the store.
func (t *StoreTransport) Deliver(ctx context.Context, m *models.Message) error {
	return t.store.CreateMessage(m)
}

// Fetch reads recent messages for the recipient from the store.
func (t *StoreTransport) Fetch(ctx context.Context, projectID, recipient string, limit int) ([]models.Message, error) {
	return t.store.ListMessagesFor(projectID, recipient, limit)
}

// HTTPTransport delivers messages through a request/response style
// remote endpoint. It is the primary transport; the bus falls back to
// direct storage when it fails.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
}

// NewHTTPTransport creates an HTTPTransport for the given base URL.
func NewHTTPTransport(baseURL string) *HTTPTransport {
	return &HTTPTransport{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Deliver posts the message as JSON to the messages endpoint.
func (t *HTTPTransport) Deliver(ctx context.Context, m *models.Message) error {
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("deliver message: status %d", resp.StatusCode)
	}
	return nil
}

// Fetch requests recent messages for the recipient from the endpoint.
func (t *HTTPTransport) Fetch(ctx context.Context, projectID, recipient string, limit int) ([]models.Message, error) {
	u := fmt.Sprintf("%s/messages?project=%s&recipient=%s&limit=%d",
		t.baseURL, url.QueryEscape(projectID), url.QueryEscape(recipient), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch messages: status %d", resp.StatusCode)
	}

	var msgs []models.Message
	if err := json.NewDecoder(resp.Body).Decode(&msgs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return msgs, nil
}

var (
	_ Transport = (*StoreTransport)(nil)
	_ Transport = (*HTTPTransport)(nil)
)
