package urlresolver

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// VersionParam is the query parameter carrying a per-file version token.
	VersionParam = "v"

	// CacheBustParam is the query parameter carrying the process-wide token.
	CacheBustParam = "cb"
)

var (
	versionRe   = regexp.MustCompile(`[?&]` + VersionParam + `=`)
	cacheBustRe = regexp.MustCompile(`[?&]` + CacheBustParam + `=`)
	absoluteRe  = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9+.-]*:|//|/)`)
)

// Filter rewrites a URL. Filters run in registration order.
type Filter func(url string) string

// FilterID identifies a registered filter so it can be unregistered.
type FilterID uint64

type registeredFilter struct {
	id FilterID
	fn Filter
}

// Resolver turns asset URLs into the URLs that are actually fetched.
//
// Exactly one of two modes is active: versioning, which appends the token
// registered for a path, or cache busting, which appends one token shared by
// every URL. Switching modes swaps the corresponding filter.
type Resolver struct {
	mu        sync.RWMutex
	filters   []registeredFilter
	nextID    FilterID
	versions  map[string]string
	cacheBust bool
	modeID    FilterID
	token     string
	basePath  string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithBasePath sets the prefix applied to relative URLs.
func WithBasePath(basePath string) Option {
	return func(r *Resolver) { r.basePath = basePath }
}

// WithCacheBust starts the resolver in cache-busting mode.
func WithCacheBust() Option {
	return func(r *Resolver) { r.cacheBust = true }
}

// WithToken overrides the cache-busting token.
func WithToken(token string) Option {
	return func(r *Resolver) { r.token = token }
}

// New creates a Resolver in versioning mode unless WithCacheBust is given.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		versions: make(map[string]string),
		token:    strconv.FormatInt(time.Now().UnixMilli(), 10),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.modeID = r.registerLocked(r.modeFilter())
	return r
}

// RegisterFilter appends a filter to the chain.
func (r *Resolver) RegisterFilter(f Filter) FilterID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerLocked(f)
}

// UnregisterFilter removes a filter. It reports whether the filter was found.
func (r *Resolver) UnregisterFilter(id FilterID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unregisterLocked(id)
}

func (r *Resolver) registerLocked(f Filter) FilterID {
	r.nextID++
	r.filters = append(r.filters, registeredFilter{id: r.nextID, fn: f})
	return r.nextID
}

func (r *Resolver) unregisterLocked(id FilterID) bool {
	for i, f := range r.filters {
		if f.id == id {
			r.filters = append(r.filters[:i], r.filters[i+1:]...)
			return true
		}
	}
	return false
}

// SetCacheBust switches between cache-busting and versioning mode.
func (r *Resolver) SetCacheBust(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cacheBust == on {
		return
	}
	r.unregisterLocked(r.modeID)
	r.cacheBust = on
	r.modeID = r.registerLocked(r.modeFilter())
}

// CacheBust reports whether cache-busting mode is active.
func (r *Resolver) CacheBust() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cacheBust
}

// SetBasePath sets the prefix applied to relative URLs by Prepare.
func (r *Resolver) SetBasePath(basePath string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.basePath = basePath
}

// BasePath returns the current base path.
func (r *Resolver) BasePath() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.basePath
}

// Prepare runs url through the filter chain and, when applyBasePath is set,
// prefixes relative URLs with the base path.
func (r *Resolver) Prepare(url string, applyBasePath bool) string {
	r.mu.RLock()
	filters := make([]Filter, len(r.filters))
	for i, f := range r.filters {
		filters[i] = f.fn
	}
	basePath := r.basePath
	r.mu.RUnlock()

	for _, f := range filters {
		url = f(url)
	}

	if applyBasePath && basePath != "" && !absoluteRe.MatchString(url) && !strings.HasPrefix(url, basePath) {
		url = basePath + url
	}
	return url
}

func (r *Resolver) modeFilter() Filter {
	if r.cacheBust {
		return r.applyCacheBust
	}
	return r.applyVersion
}

func (r *Resolver) applyCacheBust(url string) string {
	if cacheBustRe.MatchString(url) {
		return url
	}
	r.mu.RLock()
	token := r.token
	r.mu.RUnlock()
	return appendParam(url, CacheBustParam, token)
}

func (r *Resolver) applyVersion(url string) string {
	if versionRe.MatchString(url) {
		return url
	}
	r.mu.RLock()
	version, ok := r.versions[stripQuery(url)]
	r.mu.RUnlock()
	if !ok {
		return url
	}
	return appendParam(url, VersionParam, version)
}

// appendParam adds key=value to the query string, keeping any fragment last.
func appendParam(url, key, value string) string {
	fragment := ""
	if i := strings.IndexByte(url, '#'); i >= 0 {
		url, fragment = url[:i], url[i:]
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + key + "=" + value + fragment
}

func stripQuery(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		return url[:i]
	}
	return url
}
