package sizes

import (
	"errors"
	"math"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/zerr"
)

// Token is the placeholder replaced with a variant id by Filter.
const Token = "%SIZE%"

var (
	// ErrNoSupportedSize is returned when the preferred variant and its whole
	// fallback chain are marked unsupported.
	ErrNoSupportedSize = errors.New("no supported size variant")

	// ErrDuplicateSize is returned when a variant id is defined twice.
	ErrDuplicateSize = errors.New("size variant already defined")

	// ErrInvalidSize is returned for a variant with an empty id or a
	// non-positive max size or scale.
	ErrInvalidSize = errors.New("invalid size variant")

	// ErrNoSizes is returned by Size when no variant has been defined.
	ErrNoSizes = errors.New("no size variants defined")
)

// Variant is a named resolution tier.
type Variant struct {
	// ID replaces Token in asset URLs.
	ID string

	// MaxSize is the largest viewport dimension, in device pixels, this
	// variant is meant for.
	MaxSize int

	// Scale is the scale factor of the variant's assets relative to the
	// full-size assets.
	Scale float64

	// Fallback lists the ids to try, in order, when this variant is not
	// supported by an asset.
	Fallback []string
}

// Sizes selects the size variant that best fits the viewport.
type Sizes struct {
	mu           sync.RWMutex
	variants     []*Variant
	preferred    *Variant
	pixelDensity float64
}

// New creates an empty Sizes with a pixel density of 1.
func New() *Sizes {
	return &Sizes{pixelDensity: 1}
}

// Define adds a variant, keeping variants sorted ascending by MaxSize.
// The first variant defined becomes the preferred one until Refresh runs.
func (s *Sizes) Define(id string, maxSize int, scale float64, fallback []string) error {
	if id == "" || maxSize <= 0 || scale <= 0 {
		return zerr.With(ErrInvalidSize, "id", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.byIDLocked(id) != nil {
		return zerr.With(ErrDuplicateSize, "id", id)
	}

	v := &Variant{ID: id, MaxSize: maxSize, Scale: scale, Fallback: slices.Clone(fallback)}
	s.variants = append(s.variants, v)
	slices.SortStableFunc(s.variants, func(a, b *Variant) int {
		return a.MaxSize - b.MaxSize
	})
	if s.preferred == nil {
		s.preferred = v
	}
	return nil
}

// SetPixelDensity sets the device pixel ratio used by Refresh.
// Non-positive values are treated as 1.
func (s *Sizes) SetPixelDensity(density float64) {
	if density <= 0 || math.IsNaN(density) {
		density = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pixelDensity = density
}

// PixelDensity returns the device pixel ratio.
func (s *Sizes) PixelDensity() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pixelDensity
}

// Refresh recomputes the preferred variant for a viewport.
//
// Variants are scanned from the largest down; each one whose
// MaxSize/pixelDensity still exceeds the smaller viewport dimension is
// selected, and the scan stops at the first one that does not. The result is
// the smallest variant that covers the viewport. When the viewport exceeds
// every variant, the largest one is preferred.
func (s *Sizes) Refresh(width, height int) {
	minSize := float64(min(width, height))

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.variants) == 0 {
		return
	}

	var selected *Variant
	for i := len(s.variants) - 1; i >= 0; i-- {
		v := s.variants[i]
		if float64(v.MaxSize)/s.pixelDensity > minSize {
			selected = v
			continue
		}
		break
	}
	if selected == nil {
		selected = s.variants[len(s.variants)-1]
	}
	s.preferred = selected
}

// Preferred returns the current preferred variant, or nil if none is defined.
func (s *Sizes) Preferred() *Variant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preferred
}

// Size returns the variant to load for an asset.
//
// supported maps variant ids to whether the asset exists in that variant.
// Only explicit false entries count as unsupported; missing ids are assumed
// supported. If the preferred variant is unsupported its fallback chain is
// walked in order.
func (s *Sizes) Size(supported map[string]bool) (*Variant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	size := s.preferred
	if size == nil {
		return nil, ErrNoSizes
	}
	if !unsupported(supported, size.ID) {
		return size, nil
	}

	for _, id := range size.Fallback {
		if unsupported(supported, id) {
			continue
		}
		if v := s.byIDLocked(id); v != nil {
			return v, nil
		}
	}
	return nil, zerr.With(ErrNoSupportedSize, "preferred", size.ID)
}

// Filter replaces Token in url with the id of v, or of the preferred
// variant when v is nil.
func (s *Sizes) Filter(url string, v *Variant) string {
	if v == nil {
		v = s.Preferred()
	}
	if v == nil {
		return url
	}
	return strings.ReplaceAll(url, Token, v.ID)
}

// Variant returns the variant with the given id.
func (s *Sizes) Variant(id string) *Variant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byIDLocked(id)
}

// Variants returns the defined variants, smallest first.
func (s *Sizes) Variants() []Variant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Variant, len(s.variants))
	for i, v := range s.variants {
		out[i] = *v
	}
	return out
}

// Reset removes every variant.
func (s *Sizes) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.variants = nil
	s.preferred = nil
}

func (s *Sizes) byIDLocked(id string) *Variant {
	for _, v := range s.variants {
		if v.ID == id {
			return v
		}
	}
	return nil
}

func unsupported(supported map[string]bool, id string) bool {
	ok, present := supported[id]
	return present && !ok
}
