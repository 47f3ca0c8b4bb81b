package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/claimreview/claimintake/internal/logger"
	"github.com/claimreview/claimintake/internal/types"
)

var tracer = otel.Tracer("github.com/claimreview/claimintake/submitter/client")

// Non 200 answer from the intake server
type ResponseError struct {
	Body   types.ErrorResponse
	Status int
}

func (e *ResponseError) Error() string {
	if e.Body.Error == "" {
		return fmt.Sprintf("intake server answered %d", e.Status)
	}
	return fmt.Sprintf("intake server answered %d: %s", e.Status, e.Body.Error)
}

type Client struct {
	httpClient *http.Client
	server     string
}

// Submissions are not idempotent so the client never retries. A nil httpClient gets a
// single attempt retryablehttp client.
func New(server string, httpClient *http.Client) *Client {
	if httpClient == nil {
		retryClient := retryablehttp.NewClient()
		retryClient.RetryMax = 0
		retryClient.Logger = logger.For("submitter")
		retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
		httpClient = retryClient.StandardClient()
	}

	return &Client{
		httpClient: httpClient,
		server:     strings.TrimRight(server, "/"),
	}
}

func (c *Client) Submit(ctx context.Context, path string, body any) (*types.SubmitResponse, error) {
	ctx, span := tracer.Start(ctx, "Client.Submit", trace.WithAttributes(
		attribute.String("path", path),
	))
	defer span.End()

	encoded, err := json.Marshal(body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to encode body")
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.server+path, bytes.NewReader(encoded))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to construct request")
		return nil, fmt.Errorf("failed to construct request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send request")
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read response")
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	span.SetAttributes(attribute.Int("status", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		respErr := &ResponseError{Status: resp.StatusCode}
		if err := json.Unmarshal(raw, &respErr.Body); err != nil {
			respErr.Body.Error = strings.TrimSpace(string(raw))
		}
		span.RecordError(respErr)
		span.SetStatus(codes.Error, "submission not accepted")
		return nil, respErr
	}

	var result types.SubmitResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode response")
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "submitted")
	return &result, nil
}
