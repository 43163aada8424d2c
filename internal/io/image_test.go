package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/SpringRoll/SpringRoll-sub000/internal/model"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeResource_Image(t *testing.T) {
	svc := NewImageService()
	res := &model.Resource{URL: "icon.png", Raw: encodePNG(t, solid(4, 3, color.White))}

	svc.DecodeResource(res)

	if res.ContentType != "image/png" {
		t.Errorf("ContentType = %q, want image/png", res.ContentType)
	}
	img, ok := res.Content.(*model.Image)
	if !ok {
		t.Fatalf("Content = %T, want *model.Image", res.Content)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Errorf("bounds = %v, want 4x3", img.Bounds())
	}
	if img.URL != "icon.png" {
		t.Errorf("URL = %q", img.URL)
	}
}

func TestDecodeResource_Raw(t *testing.T) {
	svc := NewImageService()
	res := &model.Resource{URL: "data.json", Raw: []byte(`{"a":1}`)}

	svc.DecodeResource(res)

	raw, ok := res.Content.([]byte)
	if !ok || string(raw) != `{"a":1}` {
		t.Errorf("Content = %#v, want raw bytes", res.Content)
	}
}

func TestDecodeResource_CorruptImageStaysRaw(t *testing.T) {
	svc := NewImageService()
	data := encodePNG(t, solid(2, 2, color.Black))[:20]
	res := &model.Resource{URL: "broken.png", Raw: data}

	svc.DecodeResource(res)

	if _, ok := res.Content.([]byte); !ok {
		t.Errorf("Content = %T, want []byte", res.Content)
	}
}

func TestMergeAlpha(t *testing.T) {
	svc := NewImageService()
	colorImg := solid(2, 2, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	alphaImg := solid(2, 2, color.RGBA{R: 128, G: 0, B: 0, A: 255})

	out := svc.MergeAlpha(colorImg, alphaImg)

	got := out.NRGBAAt(1, 1)
	want := color.NRGBA{R: 10, G: 20, B: 30, A: 128}
	if got != want {
		t.Errorf("pixel = %v, want %v", got, want)
	}
}

func TestMergeAlpha_ScalesMask(t *testing.T) {
	svc := NewImageService()
	colorImg := solid(8, 8, color.RGBA{R: 200, A: 255})
	alphaImg := solid(2, 2, color.RGBA{R: 255, A: 255})

	out := svc.MergeAlpha(colorImg, alphaImg)

	if out.Bounds().Dx() != 8 || out.Bounds().Dy() != 8 {
		t.Fatalf("bounds = %v, want 8x8", out.Bounds())
	}
	if a := out.NRGBAAt(4, 4).A; a < 250 {
		t.Errorf("alpha = %d, want ~255", a)
	}
}

func TestResizeImage(t *testing.T) {
	svc := NewImageService()
	ctx := context.Background()

	small := solid(10, 10, color.White)
	if got := svc.ResizeImage(ctx, small, 20, 20); got != image.Image(small) {
		t.Error("image within bounds should be returned unchanged")
	}

	got := svc.ResizeImage(ctx, solid(1500, 1000, color.White), 1000, 1000)
	if got.Bounds().Dx() != 1000 || got.Bounds().Dy() != 666 {
		t.Errorf("bounds = %v, want 1000x666", got.Bounds())
	}
}

func TestEncode(t *testing.T) {
	svc := NewImageService()
	ctx := context.Background()
	img := solid(3, 3, color.White)

	pngData, err := svc.EncodePNG(ctx, img)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	if _, err := svc.Decode(pngData); err != nil {
		t.Errorf("decode png: %v", err)
	}

	jpegData, err := svc.EncodeJPEG(ctx, img)
	if err != nil {
		t.Fatalf("EncodeJPEG: %v", err)
	}
	if _, err := svc.Decode(jpegData); err != nil {
		t.Errorf("decode jpeg: %v", err)
	}
}
