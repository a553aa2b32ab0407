// Package metadata determines the title and author of an ingested file from
// its embedded metadata, falling back to its filename.
package metadata

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/paparr/paparr/pkg/epub"
	"github.com/paparr/paparr/pkg/models"
	"github.com/paparr/paparr/pkg/pdf"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

const (
	mimeEPUB = "application/epub+zip"
	mimePDF  = "application/pdf"
	mimeZip  = "application/zip"
)

// Metadata is the reference title and author for a file. Source is
// models.DataSourceEmbedded or models.DataSourceFilename.
type Metadata struct {
	Title  string
	Author string
	Source string
}

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the file's metadata, or nil when neither the file's
// contents nor its name yield both a title and an author. Unreadable or
// malformed containers are not errors; they fall through to the filename.
func (e *Extractor) Extract(ctx context.Context, path string) (*Metadata, error) {
	log := logger.FromContext(ctx).Data(logger.Data{"path": path})

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var md *Metadata
	switch strings.ToLower(filepath.Ext(path)) {
	case ".epub":
		if !isMIME(mtype, mimeEPUB, mimeZip) {
			log.Warn("epub is not a zip container, skipping embedded metadata", logger.Data{"mimetype": mtype.String()})
			break
		}
		md = e.fromEPUB(log, path)
	case ".pdf":
		if !isMIME(mtype, mimePDF, mimeZip) {
			log.Warn("pdf has unexpected content, skipping embedded metadata", logger.Data{"mimetype": mtype.String()})
			break
		}
		md = e.fromPDF(log, path)
	}
	if md != nil {
		return md, nil
	}

	md = ParseFilename(path)
	if md == nil {
		log.Info("no metadata found in file or filename")
		return nil, nil
	}
	log.Info("using metadata parsed from filename", logger.Data{"title": md.Title, "author": md.Author})
	return md, nil
}

func (e *Extractor) fromEPUB(log logger.Logger, path string) *Metadata {
	opf, err := epub.Parse(path)
	if err != nil {
		log.Err(err).Warn("failed to parse epub metadata")
		return nil
	}
	return embedded(log, opf.Title, opf.Authors)
}

func (e *Extractor) fromPDF(log logger.Logger, path string) *Metadata {
	md, err := pdf.Parse(path)
	if err != nil {
		log.Err(err).Warn("failed to parse pdf metadata")
		return nil
	}
	if md == nil {
		log.Debug("no embedded pdf metadata")
		return nil
	}
	return embedded(log, md.Title, md.Authors)
}

func embedded(log logger.Logger, title string, authors []string) *Metadata {
	title = strings.TrimSpace(title)
	author := strings.TrimSpace(strings.Join(authors, ", "))
	if title == "" || author == "" {
		log.Debug("embedded metadata is incomplete", logger.Data{"title": title, "author": author})
		return nil
	}
	return &Metadata{Title: title, Author: author, Source: models.DataSourceEmbedded}
}

// isMIME reports whether mtype or any of its parents is one of the given
// types.
func isMIME(mtype *mimetype.MIME, types ...string) bool {
	for m := mtype; m != nil; m = m.Parent() {
		for _, t := range types {
			if m.Is(t) {
				return true
			}
		}
	}
	return false
}
