package assets

import (
	"context"
	"fmt"
	"reflect"
)

// CompleteFunc runs when a task finishes. It may return more assets, which
// are added to the running session.
type CompleteFunc func(result any) []any

// AsyncFunc is a caller-supplied asynchronous step. It must call done
// exactly once.
type AsyncFunc func(ctx context.Context, done func(result any))

// Info holds the fields shared by every asset descriptor.
type Info struct {
	// ID names the result in map-mode sessions and in the cache.
	ID string

	// Cache stores the result in the manager's cache under ID.
	Cache bool

	// Complete is called with the task result.
	Complete CompleteFunc
}

// AssetInfo implements Described.
func (i *Info) AssetInfo() *Info {
	return i
}

// Described is implemented by every asset descriptor.
type Described interface {
	AssetInfo() *Info
}

// File describes a single fetched resource. A plain string is shorthand for
// &File{Src: s}.
type File struct {
	Info

	// Src is the URL to load. With Sizes set it may contain sizes.Token.
	Src string

	// Sizes replaces sizes.Token in Src with the preferred size variant.
	Sizes bool

	// Supported marks size variants that exist for this file. Only explicit
	// false entries count.
	Supported map[string]bool

	// Advanced returns the whole *model.Resource instead of its content.
	Advanced bool

	// Data is attached to the resource as auxiliary data.
	Data any

	// Progress receives the fraction of the file received.
	Progress func(progress float64)
}

// Func describes a custom asynchronous step.
type Func struct {
	Info
	Run AsyncFunc
}

// List describes a nested collection loaded by its own session.
type List struct {
	Info

	// Assets is a slice or string-keyed map of assets.
	Assets any

	// Sequential runs the nested assets one at a time.
	Sequential bool

	// CacheAll caches every nested result.
	CacheAll bool
}

// ColorAlpha describes an image composed from a color image and a separate
// alpha mask.
type ColorAlpha struct {
	Info
	Color string
	Alpha string
}

// Audio describes an MP3 file whose ID3 metadata should be parsed. A string
// ending in ".mp3" is shorthand for &Audio{Src: s}.
type Audio struct {
	Info
	Src  string
	Data any
}

// explicitID returns the id carried by an asset, if any.
func explicitID(asset any) string {
	if d, ok := asset.(Described); ok && !isNil(asset) {
		return d.AssetInfo().ID
	}
	return ""
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// label describes an asset for log messages.
func label(asset any) string {
	if isNil(asset) {
		return "<nil>"
	}
	switch a := asset.(type) {
	case string:
		return a
	case *File:
		return a.Src
	case *Audio:
		return a.Src
	case *ColorAlpha:
		return a.Color + "+" + a.Alpha
	}
	if id := explicitID(asset); id != "" {
		return id
	}
	return fmt.Sprintf("%T", asset)
}
