package model

import "image"

// Image is a decoded image together with the URL it was loaded from.
type Image struct {
	// URL is the source URL (or a synthetic id for composited images).
	URL string

	// Img is the decoded image. It is nil once the image has been released.
	Img image.Image
}

// NewImage wraps a decoded image.
func NewImage(url string, img image.Image) *Image {
	return &Image{URL: url, Img: img}
}

// Bounds returns the image bounds, or an empty rectangle after release.
func (i *Image) Bounds() image.Rectangle {
	if i == nil || i.Img == nil {
		return image.Rectangle{}
	}
	return i.Img.Bounds()
}

// Released reports whether the decoded image has been dropped.
func (i *Image) Released() bool {
	return i == nil || i.Img == nil
}

// ReleaseImage drops the decoded pixel buffer.
func (i *Image) ReleaseImage() {
	if i != nil {
		i.Img = nil
	}
}

// Destroy implements Destroyer.
func (i *Image) Destroy() {
	i.ReleaseImage()
}
