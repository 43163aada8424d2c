// Package sizes picks device-appropriate resolution variants of assets.
//
// Variants are defined with a maximum viewport dimension, a scale factor and
// a fallback chain:
//
//	s := sizes.New()
//	_ = s.Define("half", 400, 0.5, []string{"full"})
//	_ = s.Define("full", 10000, 1, []string{"half"})
//	s.Refresh(300, 300) // prefers "half"
//
// Asset URLs carry the %SIZE% token, replaced by Filter:
//
//	v, err := s.Size(map[string]bool{"half": false}) // falls back to "full"
//	url := s.Filter("images/%SIZE%/bg.png", v)        // images/full/bg.png
package sizes
