package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Prediction statuses reported by the media-generation service.
const (
	PredictionSucceeded = "succeeded"
	PredictionFailed    = "failed"
	PredictionCanceled  = "canceled"
	PredictionAborted   = "aborted"
)

// Prediction is one asynchronous media-generation job. Output stays raw
// because the service returns either a bare URL string or a structured
// object depending on the model version.
type Prediction struct {
	ID          string          `json:"id"`
	Status      string          `json:"status"`
	Output      json.RawMessage `json:"output,omitempty"`
	DataRemoved bool            `json:"data_removed,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// Terminated reports whether the job ended without producing output.
func (p *Prediction) Terminated() bool {
	return p.Status == PredictionFailed || p.Status == PredictionCanceled || p.Status == PredictionAborted
}

// OutputURL extracts a playable URL from the job output. It accepts a
// bare string, an object with an "audio" field, or the first element of
// an array.
func (p *Prediction) OutputURL() (string, bool) {
	if len(p.Output) == 0 {
		return "", false
	}

	var s string
	if err := json.Unmarshal(p.Output, &s); err == nil && s != "" {
		return s, true
	}

	var obj struct {
		Audio string `json:"audio"`
	}
	if err := json.Unmarshal(p.Output, &obj); err == nil && obj.Audio != "" {
		return obj.Audio, true
	}

	var arr []string
	if err := json.Unmarshal(p.Output, &arr); err == nil && len(arr) > 0 && arr[0] != "" {
		return arr[0], true
	}

	return "", false
}

// MediaClient is the slice of the media-generation API the audio tracker
// needs. Tests substitute a fake.
type MediaClient interface {
	CreatePrediction(ctx context.Context, input map[string]any) (*Prediction, error)
	GetPrediction(ctx context.Context, id string) (*Prediction, error)
}

// ReplicateClient talks to the Replicate predictions API for a single
// model.
type ReplicateClient struct {
	APIToken   string
	BaseURL    string
	Model      string // "owner/name"
	HTTPClient *http.Client
}

// NewReplicateClient builds a client bound to one model.
func NewReplicateClient(apiToken, baseURL, model string) *ReplicateClient {
	return &ReplicateClient{
		APIToken:   apiToken,
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		Model:      model,
		HTTPClient: &http.Client{},
	}
}

// CreatePrediction submits an asynchronous job and returns it in its
// initial (usually "starting") state.
func (c *ReplicateClient) CreatePrediction(ctx context.Context, input map[string]any) (*Prediction, error) {
	payload, err := json.Marshal(map[string]any{"input": input})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal prediction input: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s/predictions", c.BaseURL, c.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIToken)

	return c.do(req)
}

// GetPrediction fetches the current state of a job.
func (c *ReplicateClient) GetPrediction(ctx context.Context, id string) (*Prediction, error) {
	url := fmt.Sprintf("%s/predictions/%s", c.BaseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIToken)

	return c.do(req)
}

func (c *ReplicateClient) do(req *http.Request) (*Prediction, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("replicate API error (%d): %s", resp.StatusCode, string(body))
	}

	var prediction Prediction
	if err := json.Unmarshal(body, &prediction); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if prediction.ID == "" {
		return nil, fmt.Errorf("unexpected response format: missing prediction id")
	}
	return &prediction, nil
}
