// Package assets loads heterogeneous asset requests and caches their
// results.
//
// A request is one asset, a slice of assets or a string-keyed map of
// assets. An asset is a string URL, an AsyncFunc, or one of the
// descriptors File, Func, List, ColorAlpha and Audio. Registered task kinds
// turn assets into tasks; the first kind, in priority order, whose Match
// accepts an asset wins.
//
// # Result shapes
//
// The shape of a session's result follows the request:
//   - a single asset gives that asset's result
//   - a map, or a slice whose entries all carry an ID, gives map[string]any
//   - any other slice gives []any in completion order
//
// Completion order equals input order only with WithParallel(false).
//
// # Caching
//
// Results of assets with Cache set (or of every asset under WithCacheAll)
// are written to the manager's Cache. Replacing or removing a cached value
// destroys it, including every member of a cached list or map.
//
// # Failures
//
// A transfer that keeps failing gives a nil result; the session still
// completes. Only configuration errors, such as a map-mode asset without an
// id or a size variant with no supported fallback, fail Load.
package assets
