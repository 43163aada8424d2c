// Package config provides configuration management for the asset loader.
//
// This package handles:
//   - Loading and saving settings from YAML or JSON files
//   - Default configuration values
//   - Conversion to transfer, HTTP, URL resolver and size options
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// 4 concurrent transfers, retries after 0.2s, 0.8s and 3.2s
//	// parallel sessions, pixel density 1
//
// # Loading from File
//
//	settings, err := config.Load("assets.yaml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Size Variants
//
//	sizes:
//	  - {id: half, max_size: 400, scale: 0.5, fallback: [full]}
//	  - {id: full, max_size: 10000, scale: 1, fallback: [half]}
//
// ApplySizes defines them on a sizes.Sizes.
package config
