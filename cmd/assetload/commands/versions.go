package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/SpringRoll/SpringRoll-sub000/internal/urlresolver"
	"github.com/cespare/xxhash/v2"
	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

var errTokenLength = errors.New("token length must be between 1 and 16")

func (c *CLI) newVersionsCmd() *cobra.Command {
	var (
		output string
		length int
	)

	cmd := &cobra.Command{
		Use:   "versions <dir>",
		Short: "Write a version manifest with content-derived tokens for every file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			skip := ""
			if output != "" {
				skip, _ = filepath.Abs(output)
			}
			versions, err := hashTree(cmd.Context(), args[0], skip, length)
			if err != nil {
				return err
			}

			if output == "" {
				return urlresolver.WriteVersions(c.out, versions)
			}
			f, err := os.Create(output)
			if err != nil {
				return zerr.Wrap(err, "failed to create version manifest")
			}
			if err := urlresolver.WriteVersions(f, versions); err != nil {
				_ = f.Close()
				return err
			}
			c.logger.Info("wrote version manifest", "path", output, "entries", len(versions))
			return f.Close()
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Manifest file (default stdout)")
	cmd.Flags().IntVar(&length, "length", 8, "Number of hex digits in each token (1-16)")

	return cmd
}

// hashTree maps every regular file under root, by slash-separated relative
// path, to a truncated xxhash of its contents. The file at skip is left out.
func hashTree(ctx context.Context, root, skip string, length int) (map[string]string, error) {
	if length < 1 || length > 16 {
		return nil, zerr.With(errTokenLength, "length", length)
	}

	versions := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if skip != "" {
			if abs, _ := filepath.Abs(path); abs == skip {
				return nil
			}
		}

		sum, err := hashFile(path)
		if err != nil {
			return zerr.With(err, "path", path)
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		versions[filepath.ToSlash(rel)] = fmt.Sprintf("%016x", sum)[:length]
		return nil
	})
	if err != nil {
		return nil, zerr.Wrap(err, "failed to hash asset tree")
	}
	return versions, nil
}

func hashFile(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}
