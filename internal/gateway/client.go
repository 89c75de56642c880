package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	alerts "tourops-console/internal/alerts/domain"
	comms "tourops-console/internal/comms/domain"
	directory "tourops-console/internal/directory/domain"
	"tourops-console/internal/observability/metrics"
	reports "tourops-console/internal/reports"
	teams "tourops-console/internal/teams/domain"
)

// Client is a minimal REST client for the safety backend. Every call is
// attempted exactly once; there are no retries anywhere in the core.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *log.Logger
	timeout time.Duration
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client (tests).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.client = httpClient
		}
	}
}

// WithTimeout sets the per-request timeout, also used to bound
// fire-and-forget requests after their caller has moved on.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
			c.client.Timeout = timeout
		}
	}
}

// NewClient constructs a backend client.
func NewClient(baseURL, token string, logger *log.Logger, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("gateway: empty base url")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ---- Bulk snapshots ----

// ListAlerts fetches the full alert collection.
func (c *Client) ListAlerts(ctx context.Context) ([]alerts.Alert, error) {
	var out []alerts.Alert
	if err := c.doJSON(ctx, http.MethodGet, "/api/alerts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTeams fetches the full team collection.
func (c *Client) ListTeams(ctx context.Context) ([]teams.Team, error) {
	var out []teams.Team
	if err := c.doJSON(ctx, http.MethodGet, "/api/teams", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListConversations fetches the full conversation collection.
func (c *Client) ListConversations(ctx context.Context) ([]comms.Conversation, error) {
	var out []comms.Conversation
	if err := c.doJSON(ctx, http.MethodGet, "/api/conversations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListBroadcasts fetches the broadcast feed, newest first.
func (c *Client) ListBroadcasts(ctx context.Context) ([]comms.Broadcast, error) {
	var out []comms.Broadcast
	if err := c.doJSON(ctx, http.MethodGet, "/api/broadcasts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListReports fetches the generated report feed, newest first.
func (c *Client) ListReports(ctx context.Context) ([]reports.Report, error) {
	var out []reports.Report
	if err := c.doJSON(ctx, http.MethodGet, "/api/reports", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListProtocols fetches the emergency protocol checklists.
func (c *Client) ListProtocols(ctx context.Context) ([]directory.Protocol, error) {
	var out []directory.Protocol
	if err := c.doJSON(ctx, http.MethodGet, "/api/protocols", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRegions fetches the broadcast target regions.
func (c *Client) ListRegions(ctx context.Context) ([]directory.Region, error) {
	var out []directory.Region
	if err := c.doJSON(ctx, http.MethodGet, "/api/regions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListContactGroups fetches the emergency contact directory.
func (c *Client) ListContactGroups(ctx context.Context) ([]directory.ContactGroup, error) {
	var out []directory.ContactGroup
	if err := c.doJSON(ctx, http.MethodGet, "/api/contacts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTranslators fetches the on-call translator roster.
func (c *Client) ListTranslators(ctx context.Context) ([]directory.Translator, error) {
	var out []directory.Translator
	if err := c.doJSON(ctx, http.MethodGet, "/api/translators", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ---- Fire-and-forget mutations ----
// These return immediately; the response is intentionally ignored beyond
// logging. The console does not patch its stores here; the authoritative
// result arrives through the push channel or not at all.

type statusBody struct {
	Status string `json:"status"`
}

// UpdateAlertStatus requests an alert status transition.
func (c *Client) UpdateAlertStatus(ctx context.Context, id, status string) {
	path := "/api/alerts/" + url.PathEscape(id) + "/status"
	c.fireAndForget(ctx, "alert_status", http.MethodPut, path, statusBody{Status: status})
}

// UpdateTeamStatus requests a team status transition.
func (c *Client) UpdateTeamStatus(ctx context.Context, id, status string) {
	path := "/api/teams/" + url.PathEscape(id) + "/status"
	c.fireAndForget(ctx, "team_status", http.MethodPut, path, statusBody{Status: status})
}

// SendMessage posts an outgoing chat message to a conversation.
func (c *Client) SendMessage(ctx context.Context, conversationID string, msg comms.Message) {
	path := "/api/conversations/" + url.PathEscape(conversationID) + "/messages"
	c.fireAndForget(ctx, "message", http.MethodPost, path, msg)
}

// SendBroadcast posts a new broadcast request.
func (c *Client) SendBroadcast(ctx context.Context, req comms.BroadcastRequest) {
	c.fireAndForget(ctx, "broadcast", http.MethodPost, "/api/broadcast", req)
}

func (c *Client) fireAndForget(ctx context.Context, kind, method, path string, body any) {
	metrics.IncMutationFired(kind)
	detached := context.WithoutCancel(ctx)
	go func() {
		reqCtx, cancel := context.WithTimeout(detached, c.timeout)
		defer cancel()
		if err := c.doJSON(reqCtx, method, path, body, nil); err != nil {
			metrics.IncMutationFailure(kind)
			if c.logger != nil {
				c.logger.Printf("gateway: %s mutation dropped: %v", kind, err)
			}
		}
	}()
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("gateway: http %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
