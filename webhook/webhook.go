package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/use-agent/topchart/models"
)

// Event types, one per run outcome.
const (
	EventCompleted = "scrape.completed"
	EventEmpty     = "scrape.empty"
	EventFailed    = "scrape.failed"
)

// SignatureHeader carries "sha256=<hex>" of the body when a secret is set.
const SignatureHeader = "X-Topchart-Signature"

// Event is the payload sent to webhook endpoints.
type Event struct {
	Type      string `json:"type"`
	SourceURL string `json:"source_url"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data"`
}

// RunData is the event body: the run outcome without the movie list.
type RunData struct {
	Status     string              `json:"status"`
	RowsFound  int                 `json:"rows_found"`
	Extracted  int                 `json:"extracted"`
	Skipped    int                 `json:"skipped"`
	EngineUsed string              `json:"engine_used,omitempty"`
	OutputPath string              `json:"output_path,omitempty"`
	Summary    models.Summary      `json:"summary"`
	Error      *models.ErrorDetail `json:"error,omitempty"`
}

// EventFor builds the event describing resp.
func EventFor(resp *models.ScrapeResponse) *Event {
	typ := EventCompleted
	switch resp.Status {
	case models.StatusEmpty:
		typ = EventEmpty
	case models.StatusFailed:
		typ = EventFailed
	}
	return &Event{
		Type:      typ,
		SourceURL: resp.SourceURL,
		Timestamp: time.Now().Unix(),
		Data: RunData{
			Status:     resp.Status,
			RowsFound:  resp.RowsFound,
			Extracted:  len(resp.Movies),
			Skipped:    resp.Skipped,
			EngineUsed: resp.EngineUsed,
			OutputPath: resp.OutputPath,
			Summary:    resp.Summary,
			Error:      resp.Error,
		},
	}
}

// Notifier posts run events to one endpoint.
type Notifier struct {
	url     string
	secret  string
	timeout time.Duration
	client  *http.Client
	pending sync.WaitGroup
}

// New returns a Notifier, or nil when url is empty. A nil Notifier is a no-op.
func New(url, secret string, timeout time.Duration) *Notifier {
	if url == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		url:     url,
		secret:  secret,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

// Deliver sends an event synchronously.
// The request body is signed with HMAC-SHA256 if a secret is configured.
func (n *Notifier) Deliver(ctx context.Context, event *Event) error {
	if n == nil {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Topchart-Webhook/1.0")
	if n.secret != "" {
		req.Header.Set(SignatureHeader, "sha256="+Sign(n.secret, body))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Notify delivers an event in the background, once. Failures are logged.
func (n *Notifier) Notify(event *Event) {
	if n == nil {
		return
	}
	n.pending.Add(1)
	go func() {
		defer n.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		if err := n.Deliver(ctx, event); err != nil {
			slog.Warn("webhook delivery failed",
				"url", n.url,
				"event", event.Type,
				"error", err,
			)
			return
		}
		slog.Info("webhook delivered", "url", n.url, "event", event.Type)
	}()
}

// Wait blocks until every Notify call has finished its delivery attempt.
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.pending.Wait()
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
