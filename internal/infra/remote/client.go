// Package remote implements the CRM store contract: an HTTP client for the
// real backend, plus an in-memory simulation with the same wire envelope
// used by cmd/mockcrm and the tests.
package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"context"

	"github.com/xavierca1/seller-console/internal/entity"
	"github.com/xavierca1/seller-console/internal/usecase"
)

// apiResponse is the store's tagged result envelope. Failures travel in
// band: success=false plus a reason string, regardless of HTTP status.
type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) GetLeads(ctx context.Context) ([]entity.Lead, error) {
	var leads []entity.Lead
	if err := c.do(ctx, http.MethodGet, "/leads", nil, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

func (c *Client) GetOpportunities(ctx context.Context) ([]entity.Opportunity, error) {
	var opportunities []entity.Opportunity
	if err := c.do(ctx, http.MethodGet, "/opportunities", nil, &opportunities); err != nil {
		return nil, err
	}
	return opportunities, nil
}

func (c *Client) UpdateLead(ctx context.Context, id string, input usecase.UpdateLeadInput) (*entity.Lead, error) {
	var lead entity.Lead
	if err := c.do(ctx, http.MethodPatch, "/leads/"+id, input, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

func (c *Client) ConvertLead(ctx context.Context, id string, draft entity.OpportunityDraft) (*entity.Opportunity, error) {
	var opportunity entity.Opportunity
	if err := c.do(ctx, http.MethodPost, "/leads/"+id+"/convert", draft, &opportunity); err != nil {
		return nil, err
	}
	return &opportunity, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	op := method + " " + path

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return &usecase.TransportError{Op: op, Err: err}
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &usecase.TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &usecase.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &usecase.TransportError{Op: op, Err: err}
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return &usecase.TransportError{Op: op, Err: fmt.Errorf("undecodable response (%d): %w", resp.StatusCode, err)}
	}

	if !envelope.Success {
		return &usecase.RemoteRejectionError{Op: op, Reason: envelope.Error}
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return &usecase.TransportError{Op: op, Err: err}
		}
	}
	return nil
}
