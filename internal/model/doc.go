// Package model defines the loaded-value types shared by the transfer
// layer, the task kinds and the result cache.
//
// # Resource
//
// Resource is what one transfer produces: the raw payload, the requested and
// resolved URLs, the caller's auxiliary data and the decoded content:
//
//	res := &model.Resource{URL: "icon.png", Raw: body}
//	res.Checksum = model.Checksum(body)
//
// # Image and Audio
//
// Image wraps a decoded image; Audio carries an MP3 payload with its ID3
// metadata. Both implement Destroyer so the result cache can release them.
//
// # Destruction
//
// Values leaving the cache are checked for Destroyer and ImageReleaser:
//
//	if d, ok := v.(model.Destroyer); ok {
//	    d.Destroy()
//	}
package model
