// Package http provides the default network fetcher for the transfer layer.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Timeout handling
//   - In-memory downloads with progress tracking
//
// # Basic Usage
//
//	client := http.NewClient(http.Options{})
//
//	body, err := client.Fetch(ctx, "https://cdn.example.com/icon.png", func(loaded, total int64) {
//	    fmt.Printf("%d/%d\n", loaded, total)
//	})
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   &buf,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
