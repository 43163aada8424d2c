// Package urlresolver rewrites asset URLs before they are fetched.
//
// A Resolver holds an ordered chain of filters and one of two mutually
// exclusive modes:
//
//   - versioning: a per-path token from a version manifest is appended as
//     "v=<token>"
//   - cache busting: one process-wide token is appended as "cb=<token>"
//
// Both rewrites are skipped when the parameter is already present, so
// preparing a URL twice is harmless.
//
// # Version manifests
//
// Manifests are plain text, one "path version" pair per line:
//
//	r := urlresolver.New(urlresolver.WithBasePath("https://cdn.example.com/"))
//	if err := r.AddVersions(strings.NewReader("images/icon.png 3\n")); err != nil {
//	    return err
//	}
//	r.Prepare("images/icon.png", true)
//	// https://cdn.example.com/images/icon.png?v=3
package urlresolver
