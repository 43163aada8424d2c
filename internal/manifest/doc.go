// Package manifest decodes request documents into assets requests.
//
// A document is a YAML (or JSON) sequence or mapping of entries. An entry is
// either a bare URL or a mapping whose "type" field selects the descriptor:
//
//	icon: images/icon.png
//	hero:
//	  type: color-alpha
//	  color: images/hero.jpg
//	  alpha: images/hero-alpha.png
//	level:
//	  type: list
//	  sequential: true
//	  assets: [data/level1.json, data/level2.json]
//	theme:
//	  type: audio
//	  src: music/theme.mp3
//
// The type defaults to "file". Unknown types are rejected.
package manifest
