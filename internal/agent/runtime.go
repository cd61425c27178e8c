package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// RuntimeConfig identifies a hosted agent. Token is optional; when present,
// requests carry it as a bearer credential.
type RuntimeConfig struct {
	AgentID      string
	AgentAliasID string
	Region       string
	Token        string
}

// RuntimeClient talks to a real agent-runtime endpoint. The wire contract is
// a JSON POST of {inputText, enableTrace} answered by {completion, requestId,
// metrics}.
type RuntimeClient struct {
	cfg        RuntimeConfig
	baseURL    string
	httpClient *http.Client
	newID      func() string
}

func NewRuntimeClient(cfg RuntimeConfig) (*RuntimeClient, error) {
	if cfg.AgentID == "" || cfg.AgentAliasID == "" || cfg.Region == "" {
		return nil, fmt.Errorf("agent id, alias id and region are required for the runtime backend")
	}

	httpClient := &http.Client{Timeout: 60 * time.Second}
	if cfg.Token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(context.Background(), src)
		httpClient.Timeout = 60 * time.Second
	}

	return &RuntimeClient{
		cfg:        cfg,
		baseURL:    fmt.Sprintf("https://bedrock-agent-runtime.%s.amazonaws.com", cfg.Region),
		httpClient: httpClient,
		newID:      uuid.NewString,
	}, nil
}

type runtimeRequest struct {
	InputText   string `json:"inputText"`
	EnableTrace bool   `json:"enableTrace"`
}

type runtimeResponse struct {
	Completion string `json:"completion"`
	RequestID  string `json:"requestId"`
	Metrics    *struct {
		PromptTokens     int `json:"promptTokens"`
		CompletionTokens int `json:"completionTokens"`
	} `json:"metrics"`
}

func (c *RuntimeClient) SendMessage(ctx context.Context, req Request) (Response, error) {
	url := fmt.Sprintf("%s/agents/%s/agent-aliases/%s/sessions/%s/text",
		c.baseURL, c.cfg.AgentID, c.cfg.AgentAliasID, req.SessionID)

	body, err := json.Marshal(runtimeRequest{InputText: req.InputText, EnableTrace: false})
	if err != nil {
		return Response{}, fmt.Errorf("encode runtime request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("build runtime request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("agent runtime call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return Response{}, fmt.Errorf("agent runtime returned %d: %s", resp.StatusCode, string(b))
	}

	var parsed runtimeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Response{}, fmt.Errorf("decode runtime response: %w", err)
	}

	out := Response{
		Completion: parsed.Completion,
		SessionID:  req.SessionID,
		RequestID:  parsed.RequestID,
	}
	if out.RequestID == "" {
		out.RequestID = c.newID()
	}
	if parsed.Metrics != nil {
		out.PromptTokens = parsed.Metrics.PromptTokens
		out.CompletionTokens = parsed.Metrics.CompletionTokens
	}
	return out, nil
}
