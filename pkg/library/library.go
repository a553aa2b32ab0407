// Package library files accepted books into the library tree as
// <root>/<author>/<title>/<title><ext>.
package library

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

const (
	unknownSegment = "Unknown"
	maxSegmentLen  = 200
)

var invalidChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f\x7f]`)

// Sanitize makes name safe to use as a single path segment. Reserved and
// control characters are removed, spaces become underscores, and leading or
// trailing underscores are trimmed. A result that is empty or made only of
// dots becomes "Unknown".
func Sanitize(name string) string {
	name = invalidChars.ReplaceAllString(name, "")
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.Trim(name, "_")

	if len(name) > maxSegmentLen {
		name = name[:maxSegmentLen]
		for !utf8.ValidString(name) {
			name = name[:len(name)-1]
		}
		name = strings.Trim(name, "_")
	}

	if strings.Trim(name, ".") == "" {
		return unknownSegment
	}
	return name
}

type Placer struct {
	root string
}

func NewPlacer(root string) *Placer {
	return &Placer{root: root}
}

// Root is the library directory books are placed under.
func (p *Placer) Root() string {
	return p.root
}

// Destination is where a book with the given metadata lands. ext keeps the
// source file's extension, including its case.
func (p *Placer) Destination(title, author, ext string) string {
	t := Sanitize(title)
	return filepath.Join(p.root, Sanitize(author), t, t+ext)
}

// Place copies src to its destination, replacing any file already there, and
// returns the destination path. The source is left untouched.
func (p *Placer) Place(ctx context.Context, src, title, author string) (string, error) {
	log := logger.FromContext(ctx)

	dst := p.Destination(title, author, filepath.Ext(src))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", errors.Wrap(err, "failed to create library directory")
	}

	if _, err := os.Stat(dst); err == nil {
		log.Warn("overwriting existing library file", logger.Data{"destination": dst})
	}

	if err := copyFile(src, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// copyFile writes src to a temporary file beside dst and renames it into
// place, so a failed copy never leaves a truncated book at dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.WithStack(err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return errors.WithStack(err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".paparr-*")
	if err != nil {
		return errors.WithStack(err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return errors.WithStack(err)
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		return errors.WithStack(err)
	}
	if err := tmp.Close(); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(os.Rename(tmpName, dst))
}
