package urlresolver

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// ErrMalformedVersionLine is returned for a manifest line that is not a
// "path version" pair.
var ErrMalformedVersionLine = errors.New("malformed version line")

// AddVersion registers the version token for a path.
func (r *Resolver) AddVersion(path, version string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.versions[stripQuery(path)] = version
}

// Version returns the token registered for path.
func (r *Resolver) Version(path string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.versions[stripQuery(path)]
	return v, ok
}

// AddVersions parses a version manifest and registers every entry.
// Nothing is registered if the manifest is malformed.
func (r *Resolver) AddVersions(rd io.Reader) error {
	versions, err := ParseVersions(rd)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for path, v := range versions {
		r.versions[path] = v
	}
	return nil
}

// ParseVersions reads a version manifest: one "path version" pair per line,
// blank lines ignored.
//
// Example manifest:
//
//	images/icon.png 3
//	sounds/theme.mp3 a81f
func ParseVersions(rd io.Reader) (map[string]string, error) {
	versions := make(map[string]string)
	scanner := bufio.NewScanner(rd)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, zerr.With(zerr.With(ErrMalformedVersionLine, "line", line), "text", text)
		}
		versions[fields[0]] = fields[1]
	}
	if err := scanner.Err(); err != nil {
		return nil, zerr.Wrap(err, "failed to read version manifest")
	}
	return versions, nil
}

// WriteVersions writes versions in manifest format, sorted by path.
func WriteVersions(w io.Writer, versions map[string]string) error {
	paths := make([]string, 0, len(versions))
	for p := range versions {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	bw := bufio.NewWriter(w)
	for _, p := range paths {
		if _, err := fmt.Fprintf(bw, "%s %s\n", p, versions[p]); err != nil {
			return zerr.Wrap(err, "failed to write version manifest")
		}
	}
	return bw.Flush()
}
