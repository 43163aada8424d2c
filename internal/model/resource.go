package model

import (
	"github.com/cespare/xxhash/v2"
)

// Destroyer is implemented by loaded values that hold resources worth
// releasing when they leave the cache.
type Destroyer interface {
	Destroy()
}

// ImageReleaser is implemented by values that keep a decoded image alive.
//
// Releasing drops the reference to the pixel buffer so the decoder's memory
// can be reclaimed even if the owning value is still referenced elsewhere.
type ImageReleaser interface {
	ReleaseImage()
}

// Resource is the result of one transfer.
//
// Resource wraps the raw payload together with the URL the caller asked for,
// the URL that was actually fetched and any auxiliary data the caller
// attached to the request:
//
//	res := &Resource{URL: "images/icon.png", Raw: body, Data: meta}
//	res.Checksum = Checksum(res.Raw)
type Resource struct {
	// URL is the URL as requested, before any filter or base path was applied.
	URL string

	// ResolvedURL is the URL that was fetched.
	ResolvedURL string

	// Raw is the undecoded payload.
	Raw []byte

	// ContentType is the sniffed MIME type of Raw.
	ContentType string

	// Content is the decoded payload. It is a *Image for decodable images
	// and Raw otherwise.
	Content any

	// Data is the caller-supplied auxiliary data.
	Data any

	// Checksum is the xxhash64 digest of Raw.
	Checksum uint64
}

// Checksum returns the xxhash64 digest of data.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Destroy releases the payload and anything the decoded content holds.
func (r *Resource) Destroy() {
	if r == nil {
		return
	}
	if d, ok := r.Content.(Destroyer); ok {
		d.Destroy()
	}
	r.Raw = nil
	r.Content = nil
	r.Data = nil
}
