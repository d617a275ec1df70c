package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gmcavallazzi/opthome/pkg/common"
	"github.com/gmcavallazzi/opthome/pkg/log"
	"github.com/gmcavallazzi/opthome/pkg/types"
)

// Client calls the external optimizer over HTTP. A single run may be in
// flight at a time; concurrent calls fail fast with ErrRunInFlight instead
// of racing each other's completions.
type Client struct {
	baseURL string
	client  *http.Client

	mu       sync.Mutex
	inFlight bool
}

// NewClient returns a Client for the optimizer at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  common.HTTPClient(timeout),
	}
}

// optimizeResponse is the optimizer's response envelope: data on success,
// error on failure.
type optimizeResponse struct {
	Success bool                     `json:"success"`
	Data    *types.OptimizedSchedule `json:"data"`
	Error   string                   `json:"error"`
}

// Optimize posts the snapshot to POST /api/optimize and returns the
// extracted schedule, or an UpstreamError carrying the server's message.
func (c *Client) Optimize(ctx context.Context, snap types.Snapshot) (types.OptimizedSchedule, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return types.OptimizedSchedule{}, ErrRunInFlight
	}
	c.inFlight = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	body, err := json.Marshal(snap)
	if err != nil {
		return types.OptimizedSchedule{}, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/optimize", bytes.NewReader(body))
	if err != nil {
		return types.OptimizedSchedule{}, fmt.Errorf("failed to build optimize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Ctx(ctx).InfoContext(ctx, "sending optimization request",
		slog.String("url", c.baseURL),
		slog.Int("appliances", len(snap.Appliances)))

	resp, err := c.client.Do(req)
	if err != nil {
		return types.OptimizedSchedule{}, fmt.Errorf("optimize request failed: %w", err)
	}
	defer resp.Body.Close()

	var envelope optimizeResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&envelope)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := "optimization failed"
		if decodeErr == nil && envelope.Error != "" {
			msg = envelope.Error
		}
		return types.OptimizedSchedule{}, &UpstreamError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return types.OptimizedSchedule{}, fmt.Errorf("failed to decode optimizer response: %w", decodeErr)
	}
	if envelope.Data == nil {
		return types.OptimizedSchedule{}, fmt.Errorf("optimizer response missing data")
	}

	log.Ctx(ctx).InfoContext(ctx, "received optimization result",
		slog.Int("scheduledHours", len(envelope.Data.DailySchedule)))
	return *envelope.Data, nil
}
