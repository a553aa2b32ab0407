// Package pdf pulls title and author out of PDF files. Three sources are
// tried in order: a zipped metadata.xml sidecar package, an uncompressed XMP
// packet, and the document information dictionary.
package pdf

import (
	"archive/zip"
	"bytes"
	"html"
	"io"
	"os"
	"path"
	"regexp"
	"strings"

	pdfreader "github.com/ledongthuc/pdf"
	"github.com/pkg/errors"
)

const (
	sidecarName = "metadata.xml"
	// XMP packets live near the start or the end of the file. Scanning is
	// bounded so a huge scanned book doesn't get read into memory.
	maxScanBytes = 8 << 20
)

var (
	titleRE   = regexp.MustCompile(`(?s)<dc:title[^>]*>(.*?)</dc:title>`)
	creatorRE = regexp.MustCompile(`(?s)<dc:creator[^>]*>(.*?)</dc:creator>`)
	liRE      = regexp.MustCompile(`(?s)<rdf:li[^>]*>(.*?)</rdf:li>`)
	tagRE     = regexp.MustCompile(`<[^>]+>`)
	packetRE  = regexp.MustCompile(`(?s)<x:xmpmeta.*?</x:xmpmeta>`)
)

// Metadata is what could be recovered from the file. Either field may be
// empty.
type Metadata struct {
	Title   string
	Authors []string
}

// Complete reports whether both a title and at least one author were found.
func (m *Metadata) Complete() bool {
	return m != nil && m.Title != "" && len(m.Authors) > 0
}

// Parse reads metadata from the PDF at path. A nil result with a nil error
// means nothing usable was found.
func Parse(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if zr, err := zip.NewReader(f, stat.Size()); err == nil {
		return parseSidecar(zr)
	}

	head := make([]byte, min(stat.Size(), maxScanBytes))
	if _, err := io.ReadFull(f, head); err != nil {
		return nil, errors.WithStack(err)
	}
	if md := ParseXMP(head); md.Complete() {
		return md, nil
	}

	md, err := parseInfo(f, stat.Size())
	if err != nil {
		return nil, err
	}
	if md.Complete() {
		return md, nil
	}
	return nil, nil
}

func parseSidecar(zr *zip.Reader) (*Metadata, error) {
	for _, file := range zr.File {
		if !strings.EqualFold(path.Base(file.Name), sidecarName) {
			continue
		}
		r, err := file.Open()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		defer r.Close()
		b, err := io.ReadAll(io.LimitReader(r, maxScanBytes))
		if err != nil {
			return nil, errors.WithStack(err)
		}
		md := ParseXMP(b)
		if !md.Complete() {
			return nil, nil
		}
		return md, nil
	}
	return nil, nil
}

// ParseXMP extracts dc:title and dc:creator from XMP or a Dublin Core
// document. Values wrapped in rdf containers take the first title and every
// creator.
func ParseXMP(b []byte) *Metadata {
	if packet := packetRE.Find(b); packet != nil {
		b = packet
	}
	md := &Metadata{}
	if m := titleRE.FindSubmatch(b); m != nil {
		if values := dcValues(m[1]); len(values) > 0 {
			md.Title = values[0]
		}
	}
	for _, m := range creatorRE.FindAllSubmatch(b, -1) {
		md.Authors = append(md.Authors, dcValues(m[1])...)
	}
	return md
}

func dcValues(inner []byte) []string {
	items := liRE.FindAllSubmatch(inner, -1)
	if len(items) == 0 {
		if v := cleanText(inner); v != "" {
			return []string{v}
		}
		return nil
	}
	values := []string{}
	for _, item := range items {
		if v := cleanText(item[1]); v != "" {
			values = append(values, v)
		}
	}
	return values
}

func cleanText(b []byte) string {
	b = tagRE.ReplaceAll(b, nil)
	return strings.TrimSpace(html.UnescapeString(string(bytes.TrimSpace(b))))
}

// parseInfo reads the trailer's Info dictionary. The pdf reader panics on
// some malformed cross-reference tables, which is treated as "no metadata".
func parseInfo(r io.ReaderAt, size int64) (md *Metadata, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			md, err = &Metadata{}, nil
		}
	}()

	reader, err := pdfreader.NewReader(r, size)
	if err != nil {
		return &Metadata{}, nil
	}
	info := reader.Trailer().Key("Info")
	return &Metadata{
		Title:   strings.TrimSpace(info.Key("Title").Text()),
		Authors: splitAuthors(info.Key("Author").Text()),
	}, nil
}

func splitAuthors(s string) []string {
	authors := []string{}
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == '&' }) {
		if p := strings.TrimSpace(part); p != "" {
			authors = append(authors, p)
		}
	}
	return authors
}
