package model

import (
	"image"
	"testing"
)

func TestChecksum(t *testing.T) {
	tests := []struct {
		name string
		a, b []byte
		same bool
	}{
		{"identical payloads", []byte("abc"), []byte("abc"), true},
		{"different payloads", []byte("abc"), []byte("abd"), false},
		{"empty payloads", nil, []byte{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Checksum(tt.a) == Checksum(tt.b)
			if got != tt.same {
				t.Errorf("Checksum equality = %v, want %v", got, tt.same)
			}
		})
	}
}

func TestImage_Destroy(t *testing.T) {
	img := NewImage("icon.png", image.NewRGBA(image.Rect(0, 0, 4, 2)))

	if img.Released() {
		t.Fatal("fresh image should not be released")
	}
	if got := img.Bounds().Dx(); got != 4 {
		t.Errorf("Bounds().Dx() = %d, want 4", got)
	}

	img.Destroy()

	if !img.Released() {
		t.Error("Destroy should release the decoded image")
	}
	if !img.Bounds().Empty() {
		t.Error("released image should report empty bounds")
	}
}

func TestResource_DestroyReleasesContent(t *testing.T) {
	img := NewImage("icon.png", image.NewRGBA(image.Rect(0, 0, 1, 1)))
	res := &Resource{URL: "icon.png", Raw: []byte{1, 2, 3}, Content: img, Data: "aux"}

	res.Destroy()

	if res.Raw != nil || res.Content != nil || res.Data != nil {
		t.Errorf("Destroy left fields set: %+v", res)
	}
	if !img.Released() {
		t.Error("Destroy should release decoded image content")
	}

	var nilRes *Resource
	nilRes.Destroy()
}

func TestAudio_HasMetadata(t *testing.T) {
	if (&Audio{URL: "a.mp3"}).HasMetadata() {
		t.Error("untagged audio should report no metadata")
	}
	a := &Audio{URL: "a.mp3", Title: "Theme", Raw: []byte{1}}
	if !a.HasMetadata() {
		t.Error("tagged audio should report metadata")
	}
	a.Destroy()
	if a.Raw != nil {
		t.Error("Destroy should drop the raw payload")
	}
}
