// Package answer is the client for the remote answer service. The service is
// an opaque HTTP collaborator: a GET with the user's query as a URL-encoded
// path segment, answering a JSON object with an "answer" field.
package answer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type queryResponse struct {
	Answer string `json:"answer"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
	meter      metric.Meter
}

// NewClient creates an answer service client. The timeout bounds the whole
// request including the response body read.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tracer:     otel.Tracer("floatchat-core"),
		meter:      otel.Meter("floatchat-core"),
	}
}

// Ask sends the raw query text to the answer service and returns the answer
// field of the response. An empty answer with a nil error means the service
// responded but had nothing to say; the caller decides the fallback wording.
func (c *Client) Ask(ctx context.Context, query string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "answer_service_call")
	defer span.End()

	start := time.Now()

	endpoint := c.baseURL + "/chat-query/" + url.PathEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("API error: %s - %s", resp.Status, string(body))
	}

	var payload queryResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	duration := time.Since(start)
	histogram, err := c.meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
	)
	if err == nil {
		histogram.Record(ctx, float64(duration.Milliseconds()))
	}

	return payload.Answer, nil
}
