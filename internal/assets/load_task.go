package assets

import (
	"context"
	"strings"

	"github.com/SpringRoll/SpringRoll-sub000/internal/model"
	"github.com/SpringRoll/SpringRoll-sub000/internal/sizes"
	"github.com/SpringRoll/SpringRoll-sub000/internal/transfer"
	"go.trai.ch/zerr"
)

// LoadKind handles strings and *File descriptors with a single fetch.
func LoadKind() Kind {
	return Kind{
		Name: "load",
		Match: func(asset any) bool {
			switch a := asset.(type) {
			case string:
				return a != ""
			case *File:
				return a.Src != ""
			}
			return false
		},
		New: newLoadTask,
	}
}

// LoadTask fetches one URL through the transfer loader.
type LoadTask struct {
	BaseTask

	src      string
	advanced bool
	data     any
	progress func(float64)
	loader   *transfer.Loader
}

func newLoadTask(h Host, asset any) (Task, error) {
	f, ok := asset.(*File)
	if !ok {
		f = &File{Src: asset.(string)}
	}

	src := f.Src
	if f.Sizes && strings.Contains(src, sizes.Token) {
		variant, err := h.Sizes().Size(f.Supported)
		if err != nil {
			return nil, zerr.With(err, "src", f.Src)
		}
		src = h.Sizes().Filter(src, variant)
	}

	return &LoadTask{
		BaseTask: newBaseTask(asset, &f.Info, src),
		src:      src,
		advanced: f.Advanced,
		data:     f.Data,
		progress: f.Progress,
		loader:   h.Loader(),
	}, nil
}

// URL returns the URL the task fetches, with any size token replaced.
func (t *LoadTask) URL() string {
	return t.src
}

// Start implements Task.
func (t *LoadTask) Start(ctx context.Context, done func(result any)) {
	advanced := t.advanced
	t.loader.Load(ctx, t.src, func(res *model.Resource) {
		switch {
		case res == nil:
			done(nil)
		case advanced:
			done(res)
		default:
			done(res.Content)
		}
	}, t.progress, t.data)
}

// Destroy implements Task.
func (t *LoadTask) Destroy() {
	t.BaseTask.Destroy()
	t.data = nil
	t.progress = nil
}
