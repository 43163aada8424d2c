package model

// Audio is a loaded sound file with the metadata found in its ID3 tag.
//
// Metadata fields are empty when the file carries no tag.
type Audio struct {
	URL    string
	Title  string
	Artist string
	Album  string
	Year   string
	Genre  string

	// Raw is the complete file, tag included.
	Raw []byte
}

// HasMetadata reports whether any tag field was found.
func (a *Audio) HasMetadata() bool {
	return a.Title != "" || a.Artist != "" || a.Album != "" || a.Year != "" || a.Genre != ""
}

// Destroy implements Destroyer.
func (a *Audio) Destroy() {
	if a != nil {
		a.Raw = nil
	}
}
