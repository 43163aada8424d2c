package assets

import (
	"context"

	ioutils "github.com/SpringRoll/SpringRoll-sub000/internal/io"
	"github.com/SpringRoll/SpringRoll-sub000/internal/model"
	"github.com/SpringRoll/SpringRoll-sub000/internal/transfer"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// ColorAlphaKind handles *ColorAlpha descriptors.
func ColorAlphaKind() Kind {
	return Kind{
		Name: "color-alpha",
		Match: func(asset any) bool {
			a, ok := asset.(*ColorAlpha)
			return ok && a.Color != "" && a.Alpha != ""
		},
		New: newColorAlphaTask,
	}
}

// ColorAlphaTask fetches a color image and an alpha mask and merges them
// into one image.
type ColorAlphaTask struct {
	BaseTask

	color  string
	alpha  string
	loader *transfer.Loader
	images *ioutils.ImageService
	host   Host
}

func newColorAlphaTask(h Host, asset any) (Task, error) {
	ca := asset.(*ColorAlpha)
	return &ColorAlphaTask{
		BaseTask: newBaseTask(asset, &ca.Info, ca.Color),
		color:    ca.Color,
		alpha:    ca.Alpha,
		loader:   h.Loader(),
		images:   ioutils.NewImageService(),
		host:     h,
	}, nil
}

// Start implements Task. The result is a *model.Image, or nil when either
// input could not be loaded as an image.
func (t *ColorAlphaTask) Start(ctx context.Context, done func(result any)) {
	colorURL, alphaURL := t.color, t.alpha
	logger := t.host.Logger()

	go func() {
		var colorImg, alphaImg *model.Image

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			img, err := t.fetchImage(gctx, colorURL)
			colorImg = img
			return err
		})
		g.Go(func() error {
			img, err := t.fetchImage(gctx, alphaURL)
			alphaImg = img
			return err
		})

		if err := g.Wait(); err != nil {
			logger.Warn("color/alpha merge skipped", "color", colorURL, "alpha", alphaURL, "error", err)
			colorImg.Destroy()
			alphaImg.Destroy()
			done(nil)
			return
		}

		merged := t.images.MergeAlpha(colorImg.Img, alphaImg.Img)
		colorImg.Destroy()
		alphaImg.Destroy()
		done(model.NewImage(colorURL, merged))
	}()
}

func (t *ColorAlphaTask) fetchImage(ctx context.Context, url string) (*model.Image, error) {
	ch := make(chan *model.Resource, 1)
	t.loader.Load(ctx, url, func(res *model.Resource) { ch <- res }, nil, nil)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res == nil {
			return nil, zerr.With(errNotLoaded, "url", url)
		}
		img, ok := res.Content.(*model.Image)
		if !ok || img.Released() {
			return nil, zerr.With(errNotAnImage, "url", url)
		}
		return img, nil
	}
}
