package fetcher

import (
	"context"
	"io"
)

// Fetcher defines the interface for downloading remote data. Both the HTTP
// and FTP fetchers satisfy it; conditional-download support is specific to
// HTTPFetcher.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}
