package manifest

import (
	"errors"
	"os"

	"github.com/SpringRoll/SpringRoll-sub000/internal/assets"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Entry types.
const (
	TypeFile       = "file"
	TypeList       = "list"
	TypeColorAlpha = "color-alpha"
	TypeAudio      = "audio"
)

var (
	// ErrUnknownType is returned for an entry with an unrecognised type.
	ErrUnknownType = errors.New("unknown asset type")

	// ErrInvalidDocument is returned when the document or an entry has the
	// wrong shape or lacks a required field.
	ErrInvalidDocument = errors.New("invalid asset document")
)

// Document is a decoded request document.
type Document struct {
	// Request is a []any or map[string]any ready for assets.Manager.Load.
	Request any

	// Entries is the number of top-level entries.
	Entries int
}

type entry struct {
	Type       string          `yaml:"type"`
	ID         string          `yaml:"id"`
	Cache      bool            `yaml:"cache"`
	Src        string          `yaml:"src"`
	Sizes      bool            `yaml:"sizes"`
	Supported  map[string]bool `yaml:"supported"`
	Advanced   bool            `yaml:"advanced"`
	Color      string          `yaml:"color"`
	Alpha      string          `yaml:"alpha"`
	Sequential bool            `yaml:"sequential"`
	CacheAll   bool            `yaml:"cache_all"`
	Assets     yaml.Node       `yaml:"assets"`
}

// Load reads and decodes the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read asset document")
	}
	doc, err := Decode(data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return doc, nil
}

// Decode decodes a request document.
func Decode(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, zerr.Wrap(errors.Join(ErrInvalidDocument, err), "failed to parse asset document")
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, zerr.Wrap(ErrInvalidDocument, "empty document")
	}

	request, n, err := decodeCollection(root.Content[0])
	if err != nil {
		return nil, err
	}
	return &Document{Request: request, Entries: n}, nil
}

func decodeCollection(n *yaml.Node) (any, int, error) {
	switch n.Kind {
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			asset, err := decodeEntry(item)
			if err != nil {
				return nil, 0, err
			}
			out = append(out, asset)
		}
		return out, len(out), nil

	case yaml.MappingNode:
		out := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			asset, err := decodeEntry(n.Content[i+1])
			if err != nil {
				return nil, 0, zerr.With(err, "key", key)
			}
			out[key] = asset
		}
		return out, len(out), nil
	}
	return nil, 0, zerr.With(ErrInvalidDocument, "line", n.Line)
}

func decodeEntry(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Value == "" {
			return nil, zerr.With(ErrInvalidDocument, "line", n.Line)
		}
		return n.Value, nil
	case yaml.MappingNode:
	default:
		return nil, zerr.With(ErrInvalidDocument, "line", n.Line)
	}

	var e entry
	if err := n.Decode(&e); err != nil {
		return nil, zerr.With(errors.Join(ErrInvalidDocument, err), "line", n.Line)
	}
	info := assets.Info{ID: e.ID, Cache: e.Cache}

	switch e.Type {
	case "", TypeFile:
		if e.Src == "" {
			return nil, missing("src", n)
		}
		return &assets.File{
			Info:      info,
			Src:       e.Src,
			Sizes:     e.Sizes,
			Supported: e.Supported,
			Advanced:  e.Advanced,
		}, nil

	case TypeAudio:
		if e.Src == "" {
			return nil, missing("src", n)
		}
		return &assets.Audio{Info: info, Src: e.Src}, nil

	case TypeColorAlpha:
		if e.Color == "" {
			return nil, missing("color", n)
		}
		if e.Alpha == "" {
			return nil, missing("alpha", n)
		}
		return &assets.ColorAlpha{Info: info, Color: e.Color, Alpha: e.Alpha}, nil

	case TypeList:
		if e.Assets.Kind == 0 {
			return nil, missing("assets", n)
		}
		nested, _, err := decodeCollection(&e.Assets)
		if err != nil {
			return nil, err
		}
		return &assets.List{
			Info:       info,
			Assets:     nested,
			Sequential: e.Sequential,
			CacheAll:   e.CacheAll,
		}, nil
	}

	return nil, zerr.With(zerr.With(ErrUnknownType, "type", e.Type), "line", n.Line)
}

func missing(field string, n *yaml.Node) error {
	return zerr.With(zerr.With(ErrInvalidDocument, "missing", field), "line", n.Line)
}
