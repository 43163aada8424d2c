package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"go.trai.ch/zerr"
)

// ErrStatus is returned for any response other than 200 OK.
var ErrStatus = errors.New("unexpected HTTP status")

// Options configures a Client.
type Options struct {
	// Timeout bounds one request, body included. Zero means 60 seconds.
	Timeout time.Duration

	// UserAgent is sent with every request. Empty means "SpringRollAssets".
	UserAgent string
}

// Client fetches assets over HTTP.
//
// Client provides:
//   - Configured User-Agent header
//   - Timeout handling
//   - In-memory download with progress tracking
//
// Client implements transfer.Fetcher:
//
//	client := NewClient(Options{Timeout: 30 * time.Second})
//	loader := transfer.NewLoader(client, resolver, transfer.Options{}, logger)
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new HTTP client.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "SpringRollAssets"
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		userAgent:  opts.UserAgent,
	}
}

// ProgressWriter wraps a writer to track download progress.
//
// Example:
//
//	pw := &ProgressWriter{
//	    Writer: &buf,
//	    Total:  contentLength,
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
//	io.Copy(pw, response.Body)
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header),
	// or -1 when unknown.
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// Fetch performs a GET request and returns the body.
//
// onProgress, when non-nil, is called as the body arrives with the bytes
// read so far and the Content-Length (-1 if the server did not send one).
func (c *Client) Fetch(ctx context.Context, url string, onProgress func(loaded, total int64)) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to build request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, zerr.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, zerr.With(zerr.With(ErrStatus, "status", resp.StatusCode), "url", url)
	}

	var buf bytes.Buffer
	if resp.ContentLength > 0 {
		buf.Grow(int(resp.ContentLength))
	}

	var w io.Writer = &buf
	if onProgress != nil {
		w = &ProgressWriter{Writer: &buf, Total: resp.ContentLength, OnUpdate: onProgress}
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return nil, zerr.Wrap(err, "failed to read response body")
	}
	return buf.Bytes(), nil
}
