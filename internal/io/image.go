package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	_ "image/gif" // GIF decoder registration
	"image/jpeg"
	"image/png"
	"net/http"
	"strings"

	"github.com/SpringRoll/SpringRoll-sub000/internal/model"
	_ "golang.org/x/image/bmp"  // BMP decoder registration
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// ImageService provides the image operations used by the loaders.
//
// ImageService is used to:
//   - Decode fetched payloads into images
//   - Merge a color image with a separate alpha mask
//   - Resize and re-encode images for output
//
// Example usage:
//
//	svc := NewImageService()
//
//	img, err := svc.Decode(payload)
//	merged := svc.MergeAlpha(colorImg, alphaImg)
//	png, _ := svc.EncodePNG(ctx, merged)
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// Decode decodes any registered image format (PNG, JPEG, GIF, BMP, WebP).
func (s *ImageService) Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return img, nil
}

// DecodeResource sniffs the payload of res and fills in ContentType and
// Content.
//
// Decodable images become *model.Image; everything else keeps the raw bytes
// as content. DecodeResource never fails: a payload that looks like an image
// but cannot be decoded is left raw.
func (s *ImageService) DecodeResource(res *model.Resource) {
	res.ContentType = http.DetectContentType(res.Raw)
	res.Content = res.Raw

	if !strings.HasPrefix(res.ContentType, "image/") && !looksLikeWebP(res.Raw) {
		return
	}
	img, err := s.Decode(res.Raw)
	if err != nil {
		return
	}
	res.Content = model.NewImage(res.URL, img)
}

// looksLikeWebP reports a RIFF/WEBP header, which DetectContentType only
// recognises on recent Go versions.
func looksLikeWebP(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP"
}

// MergeAlpha builds an image with the color channels of colorImg and the
// alpha taken from the red channel of alphaImg.
//
// A mask whose dimensions differ from the color image is scaled to fit with
// the Catmull-Rom kernel first.
func (s *ImageService) MergeAlpha(colorImg, alphaImg image.Image) *image.NRGBA {
	bounds := colorImg.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	mask := alphaImg
	if ab := alphaImg.Bounds(); ab.Dx() != width || ab.Dy() != height {
		scaled := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), alphaImg, ab, draw.Src, nil)
		mask = scaled
	}

	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	mb := mask.Bounds()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(colorImg.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			r, _, _, _ := mask.At(mb.Min.X+x, mb.Min.Y+y).RGBA()
			c.A = uint8(r >> 8)
			out.SetNRGBA(x, y, c)
		}
	}
	return out
}

// ResizeImage resizes an image to fit within the specified maximum dimensions.
//
// The aspect ratio is preserved. Images already within bounds are returned
// unchanged. The Catmull-Rom algorithm is used for high-quality resizing.
//
// Example:
//
//	// A 1500x1000 image becomes 1000x667
//	resized := svc.ResizeImage(ctx, img, 1000, 1000)
func (s *ImageService) ResizeImage(ctx context.Context, img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= maxWidth && height <= maxHeight {
		return img
	}

	ratio := float64(width) / float64(height)
	if float64(maxWidth)/float64(maxHeight) > ratio {
		// Height is the limiting factor
		width = int(float64(maxHeight) * ratio)
		height = maxHeight
	} else {
		// Width is the limiting factor
		height = int(float64(maxWidth) / ratio)
		width = maxWidth
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// EncodePNG encodes an image as PNG. PNG keeps the alpha channel produced by
// MergeAlpha.
func (s *ImageService) EncodePNG(ctx context.Context, img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeJPEG encodes an image as JPEG with 90% quality.
func (s *ImageService) EncodeJPEG(ctx context.Context, img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
