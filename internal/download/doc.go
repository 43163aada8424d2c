// Package download loads an asset document and writes the results to disk.
//
// # Manager
//
// The Manager wires the asset stack from config.Settings and runs it:
//
//  1. Load the version manifest, when one is configured
//  2. Decode the asset document
//  3. Load every entry through an assets.Manager session
//  4. Write each result under the output path
//
// # Basic Usage
//
//	manager, err := download.NewManager(settings, nil, download.Options{}, logger)
//	if err != nil {
//	    return err
//	}
//	defer manager.Destroy()
//
//	if err := manager.Initialize(ctx, "assets.yaml"); err != nil {
//	    return err
//	}
//	summary, err := manager.StartDownloads(ctx)
//
// # Output Layout
//
// Map keys name the written files. List entries are numbered in result order
// and carry the base name of their source URL when it is known. Nested lists
// and maps become subdirectories. Decoded images are re-encoded as PNG, or as
// JPEG with Options.JPEG; raw payloads are written unchanged with an extension
// derived from their sniffed content type.
//
// # Concurrency
//
// Loading is bounded by settings.MaxConcurrentTransfers through the transfer
// layer; writes use an errgroup with the same limit.
package download
