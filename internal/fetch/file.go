package fetch

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Ensure FileFetcher implements Fetcher interface.
var _ Fetcher = (*FileFetcher)(nil)

// Reads images from the local filesystem
type FileFetcher struct{}

func (FileFetcher) Fetch(ctx context.Context, path string) (io.ReadCloser, error) {
	_, span := tracer.Start(ctx, "FileFetcher.Fetch", trace.WithAttributes(
		attribute.String("path", path),
	))
	defer span.End()

	info, err := os.Stat(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to stat file")
		return nil, err
	}
	if info.IsDir() {
		err = fmt.Errorf("%s is a directory", path)
		span.RecordError(err)
		span.SetStatus(codes.Error, "not a regular file")
		return nil, err
	}

	f, err := os.Open(path) // #nosec G304
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open file")
		return nil, err
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "opened file")
	return f, nil
}
