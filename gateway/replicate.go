package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultBaseURL = "https://api.replicate.com/v1"

// ReplicateClient drives Replicate-hosted models through the predictions
// REST API. Run blocks until the prediction reaches a terminal status.
type ReplicateClient struct {
	httpClient *http.Client
	token      string
	baseURL    string
	pollEvery  time.Duration
}

func NewReplicateClient(token string) *ReplicateClient {
	return &ReplicateClient{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		token:      token,
		baseURL:    defaultBaseURL,
		pollEvery:  5 * time.Second,
	}
}

type predictionRequest struct {
	Version string         `json:"version,omitempty"`
	Input   map[string]any `json:"input"`
}

type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  string          `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

// Run creates a prediction for model and polls it to completion. The
// model identifier is either "owner/name" or "owner/name:version".
func (c *ReplicateClient) Run(ctx context.Context, model string, input map[string]any) (Result, error) {
	log.Debug().Str("model", model).Msg("gateway: starting prediction")

	pred, err := c.createPrediction(ctx, model, input)
	if err != nil {
		return Result{}, &Error{Model: model, Err: err}
	}

	for !terminal(pred.Status) {
		select {
		case <-ctx.Done():
			return Result{}, &Error{Model: model, Err: ctx.Err()}
		case <-time.After(c.pollEvery):
		}
		pred, err = c.getPrediction(ctx, pred)
		if err != nil {
			return Result{}, &Error{Model: model, Err: err}
		}
	}

	if pred.Status != "succeeded" {
		msg := pred.Error
		if msg == "" {
			msg = "prediction " + pred.Status
		}
		return Result{}, &Error{Model: model, Err: fmt.Errorf("%s", msg)}
	}

	var raw any
	if len(pred.Output) > 0 {
		if err := json.Unmarshal(pred.Output, &raw); err != nil {
			return Result{}, &Error{Model: model, Err: fmt.Errorf("decode output: %w", err)}
		}
	}
	return Result{Output: Normalize(raw)}, nil
}

func (c *ReplicateClient) createPrediction(ctx context.Context, model string, input map[string]any) (*prediction, error) {
	reqBody := predictionRequest{Input: input}
	endpoint := c.baseURL + "/models/" + model + "/predictions"
	if idx := strings.LastIndex(model, ":"); idx >= 0 {
		// Versioned identifiers go through the generic endpoint.
		reqBody.Version = model[idx+1:]
		endpoint = c.baseURL + "/predictions"
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "wait")

	return c.doPrediction(req)
}

func (c *ReplicateClient) getPrediction(ctx context.Context, pred *prediction) (*prediction, error) {
	pollURL := pred.URLs.Get
	if pollURL == "" {
		pollURL = c.baseURL + "/predictions/" + pred.ID
	}
	req, err := http.NewRequestWithContext(ctx, "GET", pollURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	return c.doPrediction(req)
}

func (c *ReplicateClient) doPrediction(req *http.Request) (*prediction, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(string(respBytes), 200))
	}

	var pred prediction
	if err := json.Unmarshal(respBytes, &pred); err != nil {
		return nil, fmt.Errorf("parse prediction: %w", err)
	}
	return &pred, nil
}

func terminal(status string) bool {
	switch status {
	case "succeeded", "failed", "canceled":
		return true
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
