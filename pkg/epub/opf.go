// Package epub reads the title and authors out of an EPUB's OPF package
// document.
package epub

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"path"
	"strings"

	"github.com/pkg/errors"
)

const containerPath = "META-INF/container.xml"

var ErrNoPackageDocument = errors.New("no opf package document found")

// OPF is the subset of package metadata used for matching.
type OPF struct {
	Title   string
	Authors []string
}

type container struct {
	Rootfiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

type Package struct {
	XMLName  xml.Name `xml:"package"`
	Version  string   `xml:"version,attr"`
	Metadata struct {
		Title []struct {
			Text string `xml:",chardata"`
			ID   string `xml:"id,attr"`
		} `xml:"title"`
		Creator []struct {
			Text string `xml:",chardata"`
			ID   string `xml:"id,attr"`
			Role string `xml:"role,attr"`
		} `xml:"creator"`
		Meta []struct {
			Text     string `xml:",chardata"`
			Refines  string `xml:"refines,attr"`
			Property string `xml:"property,attr"`
		} `xml:"meta"`
	} `xml:"metadata"`
}

// Parse opens the EPUB at filePath and parses its package document.
func Parse(filePath string) (*OPF, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer zr.Close()

	return ParseZip(&zr.Reader)
}

// ParseZip locates the package document through container.xml, falling back
// to the first .opf entry in the archive.
func ParseZip(zr *zip.Reader) (*OPF, error) {
	entries := map[string]*zip.File{}
	var firstOPF *zip.File
	for _, f := range zr.File {
		entries[f.Name] = f
		if firstOPF == nil && strings.EqualFold(path.Ext(f.Name), ".opf") {
			firstOPF = f
		}
	}

	opfFile := firstOPF
	if cf, ok := entries[containerPath]; ok {
		if rootfile, err := readRootfile(cf); err == nil {
			if f, ok := entries[rootfile]; ok {
				opfFile = f
			}
		}
	}
	if opfFile == nil {
		return nil, errors.WithStack(ErrNoPackageDocument)
	}

	r, err := opfFile.Open()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer r.Close()

	return ParseOPF(r)
}

func readRootfile(f *zip.File) (string, error) {
	r, err := f.Open()
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer r.Close()

	c := container{}
	if err := xml.NewDecoder(r).Decode(&c); err != nil {
		return "", errors.WithStack(err)
	}
	for _, rf := range c.Rootfiles {
		if rf.FullPath != "" {
			return rf.FullPath, nil
		}
	}
	return "", errors.New("container has no rootfile")
}

// ParseOPF decodes a package document. When there are several titles, the one
// refined with title-type "main" wins, otherwise the first. Creators count as
// authors when their role is "aut" or unset.
func ParseOPF(r io.Reader) (*OPF, error) {
	pkg := &Package{}
	if err := xml.NewDecoder(r).Decode(pkg); err != nil {
		return nil, errors.WithStack(err)
	}

	refinements := map[string]map[string]string{}
	for _, m := range pkg.Metadata.Meta {
		if m.Refines == "" {
			continue
		}
		id := strings.TrimPrefix(m.Refines, "#")
		if refinements[id] == nil {
			refinements[id] = map[string]string{}
		}
		refinements[id][m.Property] = strings.TrimSpace(m.Text)
	}

	title := ""
	for i, t := range pkg.Metadata.Title {
		text := strings.TrimSpace(t.Text)
		if i == 0 {
			title = text
		}
		if t.ID != "" && refinements[t.ID]["title-type"] == "main" {
			title = text
			break
		}
	}

	authors := []string{}
	for _, c := range pkg.Metadata.Creator {
		name := strings.TrimSpace(c.Text)
		if name == "" {
			continue
		}
		role := c.Role
		if role == "" && c.ID != "" {
			role = refinements[c.ID]["role"]
		}
		if role == "" || role == "aut" {
			authors = append(authors, name)
		}
	}

	return &OPF{Title: title, Authors: authors}, nil
}
