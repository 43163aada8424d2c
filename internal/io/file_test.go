package ioutils

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"images/icon.png?v=3", "images_icon.png_v=3"},
		{"Track...", "Track"},
		{"Name   with  spaces ", "Name with spaces"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		id, contentType, want string
	}{
		{"icon.png", "image/png", "icon.png"},
		{"images/bg", "image/png", "images_bg.png"},
		{"hero", "image/jpeg", "hero.jpg"},
		{"notes", "text/plain; charset=utf-8", "notes.txt"},
		{"blob", "application/x-unknown-thing", "blob.bin"},
		{"", "", "asset.bin"},
	}
	for _, tt := range tests {
		if got := OutputName(tt.id, tt.contentType); got != tt.want {
			t.Errorf("OutputName(%q, %q) = %q, want %q", tt.id, tt.contentType, got, tt.want)
		}
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.txt")

	if err := WriteFile(context.Background(), path, []byte("hi")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "hi" {
		t.Errorf("ReadFile = %q, %v", got, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := WriteFile(ctx, filepath.Join(dir, "x"), nil); err == nil {
		t.Error("expected error for cancelled context")
	}
}
