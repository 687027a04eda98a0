// Package n8n talks to the n8n workflow automation REST API. It exists for
// one job: pushing validation snippet code into the Code nodes of deployed
// workflows so the logic running inside n8n stays in sync with this
// repository.
package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds every API call.
	DefaultTimeout = 30 * time.Second

	// EnvHost and EnvAPIKey name the environment variables the deploy
	// command reads when no explicit configuration is given.
	EnvHost   = "N8N_HOST"
	EnvAPIKey = "N8N_API_KEY"

	codeNodeType = "n8n-nodes-base.code"
)

// Config holds connection settings for one n8n instance.
type Config struct {
	// Host is the instance base URL, e.g. http://localhost:5678.
	Host string

	// APIKey is sent as the X-N8N-API-KEY header.
	APIKey string

	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Client is a minimal n8n API client.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewClient creates a client for the given instance.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("n8n host is required (set %s or configure deploy.host)", EnvHost)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("n8n API key is required (set %s or configure deploy.api_key)", EnvAPIKey)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.Host, "/"),
		apiKey:  cfg.APIKey,
	}, nil
}

// Workflow is one workflow document. The API schema shifts between n8n
// versions, so the document stays loose JSON and only the pieces the
// deployer touches are interpreted. Updates send the document back whole.
type Workflow map[string]any

// ID returns the workflow identifier as a string. Older n8n versions use
// numeric ids.
func (w Workflow) ID() string {
	switch id := w["id"].(type) {
	case string:
		return id
	case float64:
		return strconv.FormatInt(int64(id), 10)
	}
	return ""
}

// Name returns the workflow's display name.
func (w Workflow) Name() string {
	name, _ := w["name"].(string)
	return name
}

type workflowList struct {
	Data []Workflow `json:"data"`
}

// ListWorkflows returns summaries of every workflow on the instance.
func (c *Client) ListWorkflows(ctx context.Context) ([]Workflow, error) {
	var list workflowList
	if err := c.do(ctx, http.MethodGet, "/api/v1/workflows", nil, &list); err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	return list.Data, nil
}

// GetWorkflow fetches one full workflow document.
func (c *Client) GetWorkflow(ctx context.Context, id string) (Workflow, error) {
	var workflow Workflow
	if err := c.do(ctx, http.MethodGet, "/api/v1/workflows/"+id, nil, &workflow); err != nil {
		return nil, fmt.Errorf("failed to get workflow %s: %w", id, err)
	}
	return workflow, nil
}

// UpdateWorkflow replaces a workflow document on the instance.
func (c *Client) UpdateWorkflow(ctx context.Context, id string, workflow Workflow) error {
	if err := c.do(ctx, http.MethodPut, "/api/v1/workflows/"+id, workflow, nil); err != nil {
		return fmt.Errorf("failed to update workflow %s: %w", id, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader = http.NoBody
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-N8N-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call n8n API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("n8n API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
