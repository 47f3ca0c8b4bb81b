package fetch

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/claimreview/claimintake/internal/fetch")

// Opens the content behind a source. Callers close the returned reader.
type Fetcher interface {
	Fetch(ctx context.Context, source string) (io.ReadCloser, error)
}
