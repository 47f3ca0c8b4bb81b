// Package hash fingerprints claim photos so the audit log and the submitter
// can name an image without carrying its bytes around.
package hash

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/claimreview/claimintake/internal/hash")

// Hex sha256 of an image stream. Reads until EOF, so callers that still need
// the bytes tee them off first.
func Reader(ctx context.Context, image io.Reader) (string, error) {
	_, span := tracer.Start(ctx, "hash.Reader")
	defer span.End()

	h := sha256.New()
	n, err := io.Copy(h, image)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read image")
		return "", err
	}

	sum := hex.EncodeToString(h.Sum(nil))

	span.AddEvent("digested", trace.WithAttributes(
		attribute.String("image.sha256", sum),
		attribute.Int64("image.bytes", n),
	))

	return sum, nil
}

func Buffer(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

// Digest of the photo an attachment carries. Payloads that are not valid
// base64 are hashed as sent so a rejected upload can still be matched up.
func Attachment(data string) string {
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return Buffer([]byte(data))
	}
	return Buffer(decoded)
}
