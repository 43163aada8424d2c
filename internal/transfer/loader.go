package transfer

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	ioutils "github.com/SpringRoll/SpringRoll-sub000/internal/io"
	"github.com/SpringRoll/SpringRoll-sub000/internal/model"
	"github.com/SpringRoll/SpringRoll-sub000/internal/urlresolver"
	"golang.org/x/sync/semaphore"
)

// MaxRetries is the number of retries after the first failed attempt.
const MaxRetries = 3

// ErrRetriesExhausted is logged when every attempt of a load has failed.
var ErrRetriesExhausted = errors.New("transfer retries exhausted")

// CompleteFunc receives the loaded resource, or nil when the load failed.
type CompleteFunc func(res *model.Resource)

// ProgressFunc receives the fraction of the payload received so far.
type ProgressFunc func(progress float64)

// Options configures a Loader.
type Options struct {
	// MaxConcurrent caps the fetches in flight across all loads. Zero means 4.
	MaxConcurrent int

	// RetryCooldown is the wait before the first retry. Zero means 200ms.
	RetryCooldown time.Duration

	// RetryExponent multiplies the cooldown after every retry. Values below 1
	// mean 4.
	RetryExponent float64

	// Decode fills in ContentType and Content of a fetched resource. Nil means
	// ioutils.ImageService.DecodeResource.
	Decode func(res *model.Resource)
}

func (o Options) withDefaults() Options {
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = 4
	}
	if o.RetryCooldown <= 0 {
		o.RetryCooldown = 200 * time.Millisecond
	}
	if o.RetryExponent < 1 {
		o.RetryExponent = 4
	}
	if o.Decode == nil {
		o.Decode = ioutils.NewImageService().DecodeResource
	}
	return o
}

// item is the bookkeeping for one in-flight load. Items are pooled.
type item struct {
	retries     int
	rawURL      string
	resolvedURL string
	complete    CompleteFunc
	progress    ProgressFunc
	data        any
	cancel      context.CancelFunc
	cancelled   atomic.Bool
}

func (it *item) reset() {
	it.retries = 0
	it.rawURL = ""
	it.resolvedURL = ""
	it.complete = nil
	it.progress = nil
	it.data = nil
	it.cancel = nil
	it.cancelled.Store(false)
}

// Loader runs asset transfers.
type Loader struct {
	fetcher  Fetcher
	resolver *urlresolver.Resolver
	opts     Options
	logger   *slog.Logger
	sem      *semaphore.Weighted
	pool     sync.Pool

	mu     sync.Mutex
	active map[*item]struct{}
	wg     sync.WaitGroup
}

// NewLoader creates a Loader. A nil resolver leaves URLs untouched and a nil
// logger means slog.Default().
func NewLoader(fetcher Fetcher, resolver *urlresolver.Resolver, opts Options, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	opts = opts.withDefaults()
	return &Loader{
		fetcher:  fetcher,
		resolver: resolver,
		opts:     opts,
		logger:   logger,
		sem:      semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		pool:     sync.Pool{New: func() any { return new(item) }},
		active:   make(map[*item]struct{}),
	}
}

// Resolver returns the URL resolver used by the loader.
func (l *Loader) Resolver() *urlresolver.Resolver {
	return l.resolver
}

// Load starts fetching url in the background.
//
// complete is called exactly once with the resource, or with nil after
// MaxRetries+1 failed attempts, unless the load is cancelled first. progress
// may be nil. data is attached to the resource as auxiliary data.
func (l *Loader) Load(ctx context.Context, url string, complete CompleteFunc, progress ProgressFunc, data any) {
	it := l.pool.Get().(*item)
	it.rawURL = url
	it.resolvedURL = l.resolve(url)
	it.complete = complete
	it.progress = progress
	it.data = data

	ctx, cancel := context.WithCancel(ctx)
	it.cancel = cancel

	l.mu.Lock()
	l.active[it] = struct{}{}
	l.mu.Unlock()

	l.wg.Add(1)
	go l.run(ctx, it)
}

// Cancel aborts every in-flight load of url. Cancelled loads never call
// their completion. It reports whether any load was cancelled.
func (l *Loader) Cancel(url string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	found := false
	for it := range l.active {
		if it.rawURL == url {
			it.cancelled.Store(true)
			it.cancel()
			found = true
		}
	}
	return found
}

// CancelAll aborts every in-flight load.
func (l *Loader) CancelAll() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for it := range l.active {
		it.cancelled.Store(true)
		it.cancel()
	}
}

// Active returns the number of loads in flight.
func (l *Loader) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.active)
}

// Wait blocks until every load started so far has finished.
func (l *Loader) Wait() {
	l.wg.Wait()
}

func (l *Loader) resolve(url string) string {
	if l.resolver == nil {
		return url
	}
	return l.resolver.Prepare(url, true)
}

func (l *Loader) run(ctx context.Context, it *item) {
	defer l.release(it)

	body, err := l.fetch(ctx, it)
	if it.cancelled.Load() {
		l.logger.Debug("transfer cancelled", "url", it.rawURL)
		return
	}
	if err != nil {
		l.logger.Warn("transfer failed", "url", it.rawURL, "attempts", it.retries+1, "error", err)
		it.complete(nil)
		return
	}

	res := &model.Resource{
		URL:         it.rawURL,
		ResolvedURL: it.resolvedURL,
		Raw:         body,
		Data:        it.data,
		Checksum:    model.Checksum(body),
	}
	l.opts.Decode(res)

	l.logger.Debug("transfer complete", "url", it.rawURL, "bytes", len(body), "type", res.ContentType)
	it.complete(res)
}

func (l *Loader) fetch(ctx context.Context, it *item) ([]byte, error) {
	var onProgress func(loaded, total int64)
	if it.progress != nil {
		onProgress = func(loaded, total int64) {
			if total > 0 && !it.cancelled.Load() {
				it.progress(float64(loaded) / float64(total))
			}
		}
	}

	for {
		if err := l.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		body, err := l.fetcher.Fetch(ctx, it.resolvedURL, onProgress)
		l.sem.Release(1)
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if it.retries >= MaxRetries {
			return nil, errors.Join(ErrRetriesExhausted, err)
		}

		l.logger.Warn("transfer attempt failed, retrying",
			"url", it.rawURL, "attempt", it.retries+1, "max", MaxRetries+1, "error", err)
		l.waitForRetry(ctx, it.retries)
		it.retries++
	}
}

func (l *Loader) waitForRetry(ctx context.Context, tries int) {
	cooldown := float64(l.opts.RetryCooldown) * math.Pow(l.opts.RetryExponent, float64(tries))
	timer := time.NewTimer(time.Duration(cooldown))
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (l *Loader) release(it *item) {
	l.mu.Lock()
	delete(l.active, it)
	l.mu.Unlock()

	it.cancel()
	it.reset()
	l.pool.Put(it)
	l.wg.Done()
}
