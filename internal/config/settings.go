package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/SpringRoll/SpringRoll-sub000/internal/http"
	"github.com/SpringRoll/SpringRoll-sub000/internal/sizes"
	"github.com/SpringRoll/SpringRoll-sub000/internal/transfer"
	"github.com/SpringRoll/SpringRoll-sub000/internal/urlresolver"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// SizeSettings defines one size variant.
type SizeSettings struct {
	ID       string   `json:"id" yaml:"id"`
	MaxSize  int      `json:"max_size" yaml:"max_size"`
	Scale    float64  `json:"scale" yaml:"scale"`
	Fallback []string `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// Settings holds all configuration options.
type Settings struct {
	// URL settings
	BasePath     string `json:"base_path" yaml:"base_path"`
	CacheBust    bool   `json:"cache_bust" yaml:"cache_bust"`
	VersionsFile string `json:"versions_file" yaml:"versions_file"`

	// Transfer settings
	MaxConcurrentTransfers int     `json:"max_concurrent_transfers" yaml:"max_concurrent_transfers"`
	RetryCooldown          float64 `json:"retry_cooldown" yaml:"retry_cooldown"` // seconds
	RetryExponent          float64 `json:"retry_exponent" yaml:"retry_exponent"`
	Timeout                float64 `json:"timeout" yaml:"timeout"` // seconds
	UserAgent              string  `json:"user_agent" yaml:"user_agent"`

	// Session settings
	Parallel bool `json:"parallel" yaml:"parallel"`

	// Size settings
	PixelDensity float64        `json:"pixel_density" yaml:"pixel_density"`
	Sizes        []SizeSettings `json:"sizes" yaml:"sizes"`

	// Output settings
	OutputPath string `json:"output_path" yaml:"output_path"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		MaxConcurrentTransfers: 4,
		RetryCooldown:          0.2,
		RetryExponent:          4.0,
		Timeout:                60,
		UserAgent:              "SpringRollAssets",
		Parallel:               true,
		PixelDensity:           1,
		OutputPath:             "assets-out",
	}
}

// Load reads settings from a YAML (.yaml, .yml) or JSON file. A missing file
// yields the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if isYAML(path) {
		err = yaml.Unmarshal(data, settings)
	} else {
		err = json.Unmarshal(data, settings)
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to decode settings"), "path", path)
	}

	return settings, nil
}

// Save writes settings to a file, as YAML or JSON depending on the extension.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// ToTransferOptions converts settings to transfer.Options.
func (s *Settings) ToTransferOptions() transfer.Options {
	return transfer.Options{
		MaxConcurrent: s.MaxConcurrentTransfers,
		RetryCooldown: seconds(s.RetryCooldown),
		RetryExponent: s.RetryExponent,
	}
}

// ToHTTPOptions converts settings to http.Options.
func (s *Settings) ToHTTPOptions() http.Options {
	return http.Options{
		Timeout:   seconds(s.Timeout),
		UserAgent: s.UserAgent,
	}
}

// ToResolverOptions converts settings to urlresolver options.
func (s *Settings) ToResolverOptions() []urlresolver.Option {
	opts := []urlresolver.Option{urlresolver.WithBasePath(s.BasePath)}
	if s.CacheBust {
		opts = append(opts, urlresolver.WithCacheBust())
	}
	return opts
}

// ApplySizes defines the configured size variants and pixel density on sz.
func (s *Settings) ApplySizes(sz *sizes.Sizes) error {
	sz.SetPixelDensity(s.PixelDensity)
	for _, v := range s.Sizes {
		if err := sz.Define(v.ID, v.MaxSize, v.Scale, v.Fallback); err != nil {
			return err
		}
	}
	return nil
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
