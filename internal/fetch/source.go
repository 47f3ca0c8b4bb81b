package fetch

import (
	"context"
	"io"
	"net/http"
	"strings"
)

// Ensure SourceFetcher implements Fetcher interface.
var _ Fetcher = (*SourceFetcher)(nil)

// Sends http(s) urls to HTTP and everything else to File
type SourceFetcher struct {
	HTTP Fetcher
	File Fetcher
}

func NewSourceFetcher(client *http.Client) *SourceFetcher {
	return &SourceFetcher{
		HTTP: NewHTTPFetcher(client),
		File: FileFetcher{},
	}
}

func IsURL(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func (f *SourceFetcher) Fetch(ctx context.Context, source string) (io.ReadCloser, error) {
	if IsURL(source) {
		return f.HTTP.Fetch(ctx, source)
	}
	return f.File.Fetch(ctx, source)
}
