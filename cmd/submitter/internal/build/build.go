package build

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/claimreview/claimintake/internal/fetch"
	"github.com/claimreview/claimintake/internal/hash"
	"github.com/claimreview/claimintake/internal/intake"
	"github.com/claimreview/claimintake/internal/types"
)

var tracer = otel.Tracer("github.com/claimreview/claimintake/submitter/build")

// A submission assembled on the operator's machine
type Submission struct {
	Fields      map[string]string
	ClaimID     string
	Form        intake.Form
	Attachments []types.Attachment
}

func New(form intake.Form, claimID string, fields map[string]string) *Submission {
	kept := make(map[string]string, len(fields))
	for k, v := range fields {
		if v != "" {
			kept[k] = v
		}
	}

	return &Submission{
		Fields:  kept,
		ClaimID: claimID,
		Form:    form,
	}
}

// Endpoint path on the intake server
func (s *Submission) Path() string {
	if s.Form.Name == intake.EngineerReviewForm.Name {
		return "/submit-claim/" + url.PathEscape(s.ClaimID)
	}
	return "/submit-claim"
}

// JSON body for the endpoint. The generic form carries the claim id in the body.
func (s *Submission) Body() map[string]any {
	body := make(map[string]any, len(s.Fields)+2)
	for k, v := range s.Fields {
		body[k] = v
	}
	if s.Form.Name != intake.EngineerReviewForm.Name {
		body[s.Form.ClaimField] = s.ClaimID
	}
	if len(s.Attachments) > 0 {
		body["images"] = s.Attachments
	}
	return body
}

// Runs the intake validation locally so a doomed submission never leaves the machine
func (s *Submission) Check() error {
	req := intake.Request{
		ClaimID: s.ClaimID,
		Fields:  s.Fields,
	}

	if len(s.Attachments) > 0 {
		raw, err := json.Marshal(s.Attachments)
		if err != nil {
			return fmt.Errorf("failed to encode attachments: %w", err)
		}
		req.Images = types.NewFromVal(json.RawMessage(raw))
	}

	_, err := intake.Validate(s.Form, req)
	return err
}

type Loaded struct {
	types.Attachment
	SHA256 string
}

// Reads an image from a path or url and encodes it for submission. Reading stops one byte past
// the attachment limit, the declared size then trips the size check in Check.
func LoadAttachment(ctx context.Context, fetcher fetch.Fetcher, source string) (*Loaded, error) {
	ctx, span := tracer.Start(ctx, "LoadAttachment", trace.WithAttributes(
		attribute.String("source", source),
	))
	defer span.End()

	body, err := fetcher.Fetch(ctx, source)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch image")
		return nil, fmt.Errorf("failed to fetch %s: %w", source, err)
	}
	defer body.Close()

	var buf bytes.Buffer
	digest, err := hash.Reader(ctx, io.TeeReader(io.LimitReader(body, types.MaxAttachmentBytes+1), &buf))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read image")
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}

	data := buf.Bytes()
	size := int64(len(data))

	loaded := &Loaded{
		Attachment: types.Attachment{
			Name: nameOf(source),
			Type: mimetype.Detect(data).String(),
			Size: &size,
			Data: base64.StdEncoding.EncodeToString(data),
		},
		SHA256: digest,
	}

	span.SetAttributes(
		attribute.String("attachment.name", loaded.Name),
		attribute.String("attachment.type", loaded.Type),
		attribute.Int64("attachment.size", size),
	)
	span.RecordError(nil)
	span.SetStatus(codes.Ok, "loaded image")
	return loaded, nil
}

func nameOf(source string) string {
	if fetch.IsURL(source) {
		if parsed, err := url.Parse(source); err == nil {
			if base := path.Base(parsed.Path); base != "/" && base != "." {
				return base
			}
			return parsed.Host
		}
	}
	return filepath.Base(source)
}
