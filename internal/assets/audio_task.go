package assets

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/SpringRoll/SpringRoll-sub000/internal/model"
	"github.com/SpringRoll/SpringRoll-sub000/internal/transfer"
	"github.com/bogem/id3v2"
)

// AudioKind handles *Audio descriptors and strings ending in ".mp3".
func AudioKind() Kind {
	return Kind{
		Name: "audio",
		Match: func(asset any) bool {
			switch a := asset.(type) {
			case string:
				return strings.HasSuffix(strings.ToLower(stripQuery(a)), ".mp3")
			case *Audio:
				return a.Src != ""
			}
			return false
		},
		New: newAudioTask,
	}
}

// AudioTask fetches an MP3 file and reads its ID3 tag.
type AudioTask struct {
	BaseTask

	src    string
	data   any
	loader *transfer.Loader
	logger *slog.Logger
}

func newAudioTask(h Host, asset any) (Task, error) {
	a, ok := asset.(*Audio)
	if !ok {
		a = &Audio{Src: asset.(string)}
	}
	return &AudioTask{
		BaseTask: newBaseTask(asset, &a.Info, a.Src),
		src:      a.Src,
		data:     a.Data,
		loader:   h.Loader(),
		logger:   h.Logger(),
	}, nil
}

// Start implements Task. The result is a *model.Audio; files without a tag
// still produce one with empty metadata.
func (t *AudioTask) Start(ctx context.Context, done func(result any)) {
	src, logger := t.src, t.logger
	t.loader.Load(ctx, src, func(res *model.Resource) {
		if res == nil {
			done(nil)
			return
		}
		done(parseAudio(src, res.Raw, logger))
	}, nil, t.data)
}

// Destroy implements Task.
func (t *AudioTask) Destroy() {
	t.BaseTask.Destroy()
	t.data = nil
}

func parseAudio(url string, raw []byte, logger *slog.Logger) *model.Audio {
	audio := &model.Audio{URL: url, Raw: raw}

	tag, err := id3v2.ParseReader(bytes.NewReader(raw), id3v2.Options{Parse: true})
	if err != nil {
		logger.Debug("no readable ID3 tag", "url", url, "error", err)
		return audio
	}

	audio.Title = tag.Title()
	audio.Artist = tag.Artist()
	audio.Album = tag.Album()
	audio.Year = tag.Year()
	audio.Genre = tag.Genre()
	return audio
}

func stripQuery(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		return url[:i]
	}
	return url
}
