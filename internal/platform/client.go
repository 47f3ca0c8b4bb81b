package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/claimreview/claimintake/internal/config"
	"github.com/claimreview/claimintake/internal/logger"
	"github.com/claimreview/claimintake/internal/types"
)

// Ensure Client implements Platform interface.
var _ Platform = (*Client)(nil)

// Bearer authenticated client for the platform's claims API
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type attachmentBody struct {
	Filename   string `json:"filename"`
	MimeType   string `json:"mime_type"`
	DataBase64 string `json:"data_base64"`
}

// Single attempt HTTP client. Non 2xx responses are handed back to the caller untouched.
func NewHTTPClient() *http.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = logger.For("platform")
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return retryClient.StandardClient()
}

// Fails with a *config.ConfigurationError when the credential or base url is unusable.
// A nil httpClient gets NewHTTPClient.
func NewClient(cfg *config.PlatformConfig, httpClient *http.Client) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, &config.ConfigurationError{Key: config.PlatformAPIKey, Err: config.ErrMissingAPIKey}
	}

	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, &config.ConfigurationError{Key: config.PlatformBaseURL, Err: err}
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, &config.ConfigurationError{
			Key: config.PlatformBaseURL,
			Err: fmt.Errorf("not an absolute url: %q", cfg.BaseURL),
		}
	}

	if httpClient == nil {
		httpClient = NewHTTPClient()
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
	}, nil
}

func claimPath(claimID string, resource string) string {
	return "/claims/" + url.PathEscape(claimID) + "/" + resource
}

// PATCH /claims/{claim_id}/blocks
func (c *Client) UpdateClaimBlocks(
	ctx context.Context,
	claimID string,
	blocks map[string]string,
) error {
	ctx, span := tracer.Start(ctx, "Client.UpdateClaimBlocks", trace.WithAttributes(
		attribute.String("claim.id", claimID),
		attribute.Int("blocks.count", len(blocks)),
	))
	defer span.End()

	err := c.send(ctx, http.MethodPatch, claimPath(claimID, "blocks"), blocks)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to update claim blocks")
		return err
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "updated claim blocks")
	return nil
}

// POST /claims/{claim_id}/attachments
func (c *Client) UploadAttachment(
	ctx context.Context,
	claimID string,
	attachment types.Attachment,
) error {
	ctx, span := tracer.Start(ctx, "Client.UploadAttachment", trace.WithAttributes(
		attribute.String("claim.id", claimID),
		attribute.String("attachment.name", attachment.Name),
		attribute.String("attachment.type", attachment.Type),
		attribute.Int("attachment.encoded_length", len(attachment.Data)),
	))
	defer span.End()

	body := attachmentBody{
		Filename:   attachment.Name,
		MimeType:   attachment.Type,
		DataBase64: attachment.Data,
	}

	err := c.send(ctx, http.MethodPost, claimPath(claimID, "attachments"), body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to upload attachment")
		return err
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "uploaded attachment")
	return nil
}

func (c *Client) send(ctx context.Context, method string, path string, payload any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("failed to construct request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		body = []byte{}
		logger.Logger.WarnContext(ctx, "failed to read platform response body", "error", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RemoteAPIError{Status: resp.StatusCode, Body: string(body)}
	}

	// the response body is not relied upon, it does not even have to be json
	return nil
}
