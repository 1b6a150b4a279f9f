// Package workflow provides the outbound adapter for the downstream workflow
// engine. Triggers are dispatched strictly after a new row commits; a failed
// dispatch is logged and audited but never fails the committed operation.
package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ledgerline/idemgate/internal/idempotency"
	"github.com/ledgerline/idemgate/internal/platform/httpclient"
	"github.com/ledgerline/idemgate/internal/ports"
)

// Compile-time interface check.
var _ ports.WorkflowNotifier = (*Client)(nil)

const triggerPath = "/api/v1/triggers"

// Client dispatches workflow triggers over HTTP. The underlying
// [httpclient.Client] provides circuit breaking, retry with exponential
// backoff, rate limiting, OpenTelemetry tracing, and health checking
// ([ports.HealthChecker]) for every outbound call.
type Client struct {
	http   *httpclient.Client
	logger *slog.Logger
}

// NewClient creates a workflow Client that sends requests through the given
// [httpclient.Client]. The client's BaseURL should point to the workflow
// engine root (e.g. "http://workflow-engine.internal:8080").
func NewClient(client *httpclient.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{http: client, logger: logger}
}

// triggerRequest is the wire format the workflow engine accepts.
type triggerRequest struct {
	Workflow string         `json:"workflow"`
	EntityID string         `json:"entity_id"`
	TenantID string         `json:"tenant_id"`
	Payload  map[string]any `json:"payload,omitempty"`
}

// Trigger sends a single trigger event via POST /api/v1/triggers. Any 2xx
// response counts as accepted; the engine processes triggers asynchronously.
func (c *Client) Trigger(ctx context.Context, t idempotency.Trigger) error {
	body, err := json.Marshal(triggerRequest{
		Workflow: t.Workflow,
		EntityID: t.EntityID,
		TenantID: t.TenantID,
		Payload:  t.Payload,
	})
	if err != nil {
		return fmt.Errorf("marshaling trigger %s: %w", t.Workflow, err)
	}

	url := c.http.BaseURL() + triggerPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating trigger request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, req)
	if resp != nil {
		defer c.closeBody(ctx, resp)
	}
	if err != nil {
		return fmt.Errorf("dispatching trigger %s: %w", t.Workflow, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("workflow engine rejected trigger %s: status %d", t.Workflow, resp.StatusCode)
	}
	return nil
}

func (c *Client) closeBody(ctx context.Context, resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		c.logger.WarnContext(ctx, "failed to close response body",
			slog.String("error", err.Error()),
		)
	}
}
