// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Decoding fetched payloads into images
//   - Compositing a color image with a separate alpha mask
//   - Image resizing and re-encoding
//   - Writing loaded assets to disk with safe file names
//
// # Decoding
//
// DecodeResource is the default decode hook of the transfer loader:
//
//	svc := ioutils.NewImageService()
//	svc.DecodeResource(res) // res.Content is now a *model.Image for images
//
// # Compositing
//
//	merged := svc.MergeAlpha(colorImg, alphaImg)
//	png, _ := svc.EncodePNG(ctx, merged)
//
// # File Operations
//
//	name := ioutils.OutputName("images/icon", "image/png") // "images_icon.png"
//	err := ioutils.WriteFile(ctx, filepath.Join(out, name), data)
package ioutils
