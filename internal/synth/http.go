package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/motion/internal/adapters/ingest"
	"github.com/okian/motion/internal/domain/classify"
	"github.com/okian/motion/internal/domain/model"
	"github.com/okian/motion/internal/domain/types"
)

// Client talks to a running motion server.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// CheckHealth reports whether the server answers on /healthz.
func (c *Client) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRemote, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: healthz returned %d", ErrRemote, resp.StatusCode)
	}
	return nil
}

// PostLibrary appends records to the server's reference library.
func (c *Client) PostLibrary(ctx context.Context, records []Record) (ingest.Stats, error) {
	var body bytes.Buffer
	if err := WriteRecords(&body, records); err != nil {
		return ingest.Stats{}, err
	}
	var stats ingest.Stats
	err := c.do(ctx, "/library", "text/plain; charset=utf-8", &body, &stats)
	return stats, err
}

// Classify implements classify.Classifier over POST /classify.
func (c *Client) Classify(ctx context.Context, action model.Action) (classify.Result, error) {
	req := types.ClassifyRequest{Samples: make([]types.Sample, 0, action.Len())}
	for _, p := range action.Points() {
		req.Samples = append(req.Samples, types.Sample{p.Velocity, p.Position, p.Effort})
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return classify.Result{}, fmt.Errorf("marshal request: %w", err)
	}

	var out types.Classification
	if err := c.do(ctx, "/classify", "application/json", bytes.NewReader(payload), &out); err != nil {
		return classify.Result{}, err
	}
	res := classify.Result{Label: model.Label(out.Label), Total: out.Total}
	for _, v := range out.Votes {
		res.Votes = append(res.Votes, classify.Vote{Label: model.Label(v.Label), Count: v.Count})
	}
	return res, nil
}

func (c *Client) do(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRemote, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %d: %s", ErrRemote, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
