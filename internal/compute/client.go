package compute

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/san-kum/stepviz/internal/step"
)

var ErrService = errors.New("compute: service error")

// ServiceError is a non-2xx reply from the service.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("compute: service returned %d: %s", e.Status, e.Message)
}

func (e *ServiceError) Unwrap() error { return ErrService }

const maxBody = 32 << 20

type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     logger,
	}
}

type DataRequest struct {
	Size   int    `json:"size"`
	DType  string `json:"dtype"`
	Sorted bool   `json:"sorted"`
}

// Item is one knapsack item. Weights index the DP table, so they are whole.
type Item struct {
	ID     int     `json:"id" yaml:"id,omitempty"`
	Weight int     `json:"weight" yaml:"weight"`
	Value  float64 `json:"value" yaml:"value"`
}

// RunRequest carries the algorithm key plus whichever parameters it reads.
type RunRequest struct {
	Algorithm string          `json:"algorithm"`
	InputData json.RawMessage `json:"input_data,omitempty"`
	Target    *int            `json:"target,omitempty"`
	StartNode string          `json:"start_node,omitempty"`
	N         *int            `json:"n,omitempty"`
	Capacity  *int            `json:"capacity,omitempty"`
	Items     []Item          `json:"items,omitempty"`
	NDisks    *int            `json:"n_disks,omitempty"`
	A         *int            `json:"a,omitempty"`
	B         *int            `json:"b,omitempty"`
}

// GenerateData returns the service's raw initial data for req.DType.
func (c *Client) GenerateData(ctx context.Context, req DataRequest) (json.RawMessage, error) {
	body, err := c.post(ctx, "/generate_data", req)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// Run asks the service for the step list of one algorithm run. A 2xx reply
// of the form {"error": ...} decodes to a single error step.
func (c *Client) Run(ctx context.Context, req RunRequest) ([]step.Step, error) {
	body, err := c.post(ctx, "/run_algorithm", req)
	if err != nil {
		return nil, err
	}
	steps, err := step.DecodeBytes(body)
	if err != nil {
		return nil, fmt.Errorf("compute: %s: %w", req.Algorithm, err)
	}
	return steps, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("compute: %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("compute: %s: read body: %w", path, err)
	}
	c.log.Debug("compute request", "path", path, "status", resp.StatusCode, "bytes", len(body), "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServiceError{Status: resp.StatusCode, Message: errorMessage(body, resp.Status)}
	}
	return body, nil
}

func errorMessage(body []byte, fallback string) string {
	var reply struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &reply) == nil && reply.Error != "" {
		return reply.Error
	}
	if s := strings.TrimSpace(string(body)); s != "" && len(s) < 200 {
		return s
	}
	return fallback
}
