package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
	}()

	tests := []struct {
		name         string
		args         func(tmpDir string) []string
		expectedExit int
	}{
		{
			name:         "Help",
			args:         func(string) []string { return []string{"assetload", "--help"} },
			expectedExit: 0,
		},
		{
			name: "Versions of an empty directory",
			args: func(tmpDir string) []string {
				return []string{"assetload", "-c", filepath.Join(tmpDir, "none.yaml"), "versions", tmpDir}
			},
			expectedExit: 0,
		},
		{
			name: "Sizes without variants",
			args: func(tmpDir string) []string {
				return []string{"assetload", "-c", filepath.Join(tmpDir, "none.yaml"), "sizes"}
			},
			expectedExit: 1,
		},
		{
			name: "Load with missing document",
			args: func(tmpDir string) []string {
				return []string{"assetload", "-c", filepath.Join(tmpDir, "none.yaml"), "load", filepath.Join(tmpDir, "missing.yaml")}
			},
			expectedExit: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args(t.TempDir())
			assert.Equal(t, tt.expectedExit, run())
		})
	}
}
