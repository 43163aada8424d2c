package assets

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SpringRoll/SpringRoll-sub000/internal/sizes"
	"github.com/SpringRoll/SpringRoll-sub000/internal/transfer"
	"github.com/SpringRoll/SpringRoll-sub000/internal/transfer/mocks"
	"github.com/SpringRoll/SpringRoll-sub000/internal/urlresolver"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

var errNotFound = errors.New("not found")

// server is a fake asset host: files maps URLs to payloads, delays holds
// per-URL response latency.
type server struct {
	files  map[string][]byte
	delays map[string]time.Duration
}

func (s *server) fetch(ctx context.Context, url string, _ func(int64, int64)) ([]byte, error) {
	if d := s.delays[url]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if data, ok := s.files[url]; ok {
		return data, nil
	}
	return nil, errNotFound
}

type fixture struct {
	m        *Manager
	fetcher  *mocks.MockFetcher
	resolver *urlresolver.Resolver
	srv      *server
}

func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()

	srv := &server{files: make(map[string][]byte), delays: make(map[string]time.Duration)}
	for url, body := range files {
		srv.files[url] = []byte(body)
	}

	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(srv.fetch).AnyTimes()

	resolver := urlresolver.New()
	loader := transfer.NewLoader(fetcher, resolver, transfer.Options{
		RetryCooldown: time.Microsecond,
		RetryExponent: 1,
	}, quiet)

	return &fixture{
		m:        NewManager(loader, sizes.New(), WithLogger(quiet)),
		fetcher:  fetcher,
		resolver: resolver,
		srv:      srv,
	}
}

func (f *fixture) fetch(t *testing.T, request any, opts ...Option) (any, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return f.m.Fetch(ctx, request, opts...)
}

// text converts a loaded raw payload to a string for comparisons.
func text(v any) string {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return "<not bytes>"
}

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// destroyable records Destroy calls.
type destroyable struct {
	name      string
	destroyed int
}

func (d *destroyable) Destroy() { d.destroyed++ }
