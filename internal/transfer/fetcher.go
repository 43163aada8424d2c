package transfer

import "context"

// Fetcher retrieves the payload behind a resolved URL.
//
// onProgress, when non-nil, is called with the bytes received so far and the
// expected total (-1 when unknown).
//
//go:generate mockgen -source=fetcher.go -destination=mocks/mock_fetcher.go -package=mocks
type Fetcher interface {
	Fetch(ctx context.Context, url string, onProgress func(loaded, total int64)) ([]byte, error)
}
