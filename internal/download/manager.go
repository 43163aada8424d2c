package download

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	nethttp "net/http"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/SpringRoll/SpringRoll-sub000/internal/assets"
	"github.com/SpringRoll/SpringRoll-sub000/internal/config"
	"github.com/SpringRoll/SpringRoll-sub000/internal/http"
	ioutils "github.com/SpringRoll/SpringRoll-sub000/internal/io"
	"github.com/SpringRoll/SpringRoll-sub000/internal/manifest"
	"github.com/SpringRoll/SpringRoll-sub000/internal/model"
	"github.com/SpringRoll/SpringRoll-sub000/internal/sizes"
	"github.com/SpringRoll/SpringRoll-sub000/internal/transfer"
	"github.com/SpringRoll/SpringRoll-sub000/internal/urlresolver"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNotInitialized is returned by StartDownloads before a document was
	// loaded with Initialize.
	ErrNotInitialized = errors.New("no asset document loaded")

	errReleased = errors.New("image was released before it could be written")
)

// Options tunes a run on top of the settings.
type Options struct {
	// Width and Height describe the target viewport used to pick size
	// variants. Zero keeps the default variant.
	Width, Height int

	// MaxImageSize bounds the longest edge of written images. Zero writes
	// them at their loaded size.
	MaxImageSize int

	// JPEG encodes decoded images as JPEG instead of PNG.
	JPEG bool
}

// Summary describes a finished run.
type Summary struct {
	Entries int
	Files   int32
	Failed  int32
	Bytes   int64
}

// Progress is a snapshot of a running download.
type Progress struct {
	// Loaded is the session progress in [0, 1].
	Loaded float64
	Files  int32
	Failed int32
	Bytes  int64
}

// Manager loads an asset document and writes every result to disk.
type Manager struct {
	settings *config.Settings
	opts     Options
	logger   *slog.Logger
	assets   *assets.Manager
	images   *ioutils.ImageService

	doc *manifest.Document

	loaded       atomic.Uint64
	filesWritten atomic.Int32
	failed       atomic.Int32
	bytesWritten atomic.Int64
}

// NewManager wires the asset stack described by settings. A nil fetcher
// selects the HTTP client; a nil logger selects slog.Default.
func NewManager(settings *config.Settings, fetcher transfer.Fetcher, opts Options, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if fetcher == nil {
		fetcher = http.NewClient(settings.ToHTTPOptions())
	}

	sz := sizes.New()
	if err := settings.ApplySizes(sz); err != nil {
		return nil, zerr.Wrap(err, "invalid size settings")
	}

	resolver := urlresolver.New(settings.ToResolverOptions()...)
	loader := transfer.NewLoader(fetcher, resolver, settings.ToTransferOptions(), logger)
	am := assets.NewManager(loader, sz, assets.WithLogger(logger))
	if opts.Width > 0 && opts.Height > 0 {
		am.Resize(opts.Width, opts.Height)
	}

	return &Manager{
		settings: settings,
		opts:     opts,
		logger:   logger,
		assets:   am,
		images:   ioutils.NewImageService(),
	}, nil
}

// Assets returns the underlying asset manager.
func (m *Manager) Assets() *assets.Manager {
	return m.assets
}

// Initialize loads the version manifest, if one is configured, and the asset
// document at docPath.
func (m *Manager) Initialize(ctx context.Context, docPath string) error {
	if m.settings.VersionsFile != "" {
		if err := m.assets.LoadVersions(ctx, m.settings.VersionsFile); err != nil {
			return err
		}
		m.logger.Debug("loaded version manifest", "url", m.settings.VersionsFile)
	}

	doc, err := manifest.Load(docPath)
	if err != nil {
		return err
	}
	m.doc = doc
	m.logger.Info("loaded asset document", "path", docPath, "entries", doc.Entries)
	return nil
}

// Entries returns the number of top-level entries in the loaded document.
func (m *Manager) Entries() int {
	if m.doc == nil {
		return 0
	}
	return m.doc.Entries
}

// StartDownloads loads every entry of the document and writes the results
// under the output path.
//
// Entries that fail to load are counted and skipped. The returned error
// joins session errors with write failures; the summary is returned either
// way unless the context was cancelled during loading.
func (m *Manager) StartDownloads(ctx context.Context) (*Summary, error) {
	if m.doc == nil {
		return nil, ErrNotInitialized
	}

	result, loadErr := m.assets.Fetch(ctx, m.doc.Request,
		assets.WithParallel(m.settings.Parallel),
		assets.WithProgress(m.setLoaded),
	)
	if loadErr != nil && ctx.Err() != nil {
		return nil, loadErr
	}
	if loadErr != nil {
		m.logger.Error("asset document loaded with errors", "error", loadErr)
	}

	outputs := flatten("", result, nil)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, m.settings.MaxConcurrentTransfers))

	var (
		mu        sync.Mutex
		writeErrs []error
	)
	for _, out := range outputs {
		g.Go(func() error {
			if err := m.write(ctx, out); err != nil {
				m.failed.Add(1)
				m.logger.Error("failed to write asset", "name", out.name, "error", err)
				mu.Lock()
				writeErrs = append(writeErrs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	summary := &Summary{
		Entries: m.doc.Entries,
		Files:   m.filesWritten.Load(),
		Failed:  m.failed.Load(),
		Bytes:   m.bytesWritten.Load(),
	}
	return summary, errors.Join(loadErr, errors.Join(writeErrs...))
}

// GetProgress returns current download progress.
func (m *Manager) GetProgress() Progress {
	return Progress{
		Loaded: math.Float64frombits(m.loaded.Load()),
		Files:  m.filesWritten.Load(),
		Failed: m.failed.Load(),
		Bytes:  m.bytesWritten.Load(),
	}
}

// Destroy cancels outstanding transfers and releases cached results.
func (m *Manager) Destroy() {
	m.assets.Destroy()
}

func (m *Manager) setLoaded(p float64) {
	m.loaded.Store(math.Float64bits(p))
}

func (m *Manager) write(ctx context.Context, out output) error {
	if out.value == nil {
		m.failed.Add(1)
		m.logger.Warn("asset did not load, nothing written", "name", out.name)
		return nil
	}

	data, contentType, err := m.encode(ctx, out.value)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to encode asset"), "name", out.name)
	}

	name := out.name
	if _, ok := out.value.(*model.Image); ok {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	target := filepath.Join(m.settings.OutputPath, out.dir, ioutils.OutputName(name, contentType))
	if err := ioutils.WriteFile(ctx, target, data); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write file"), "path", target)
	}

	m.filesWritten.Add(1)
	m.bytesWritten.Add(int64(len(data)))
	m.logger.Debug("wrote asset", "path", target, "bytes", len(data))
	return nil
}

// encode turns a loaded value into file contents and a content type.
func (m *Manager) encode(ctx context.Context, value any) ([]byte, string, error) {
	switch v := value.(type) {
	case *model.Image:
		if v.Img == nil {
			return nil, "", errReleased
		}
		img := v.Img
		if m.opts.MaxImageSize > 0 {
			img = m.images.ResizeImage(ctx, img, m.opts.MaxImageSize, m.opts.MaxImageSize)
		}
		if m.opts.JPEG {
			data, err := m.images.EncodeJPEG(ctx, img)
			return data, "image/jpeg", err
		}
		data, err := m.images.EncodePNG(ctx, img)
		return data, "image/png", err
	case *model.Resource:
		return v.Raw, v.ContentType, nil
	case *model.Audio:
		return v.Raw, "audio/mpeg", nil
	case []byte:
		return v, nethttp.DetectContentType(v), nil
	case string:
		return []byte(v), "text/plain; charset=utf-8", nil
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		return data, "application/json", err
	}
}

type output struct {
	dir   string
	name  string
	value any
}

// flatten walks a session result. Map keys name files, list entries are
// numbered, and nested collections become subdirectories.
func flatten(dir string, result any, out []output) []output {
	switch r := result.(type) {
	case map[string]any:
		keys := make([]string, 0, len(r))
		for k := range r {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = appendOutput(out, dir, ioutils.SanitizeFileName(k), r[k])
		}
	case []any:
		for i, v := range r {
			name := fmt.Sprintf("%03d", i)
			if src := sourceName(v); src != "" {
				name += "-" + src
			}
			out = appendOutput(out, dir, name, v)
		}
	default:
		out = appendOutput(out, dir, "asset", r)
	}
	return out
}

func appendOutput(out []output, dir, name string, value any) []output {
	switch value.(type) {
	case map[string]any, []any:
		return flatten(filepath.Join(dir, name), value, out)
	}
	return append(out, output{dir: dir, name: name, value: value})
}

// sourceName returns the base name of the URL a value was loaded from.
func sourceName(value any) string {
	var u string
	switch v := value.(type) {
	case *model.Image:
		u = v.URL
	case *model.Audio:
		u = v.URL
	case *model.Resource:
		u = v.URL
	}
	if u == "" {
		return ""
	}
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return ioutils.SanitizeFileName(path.Base(u))
}
