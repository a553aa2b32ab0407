package testgen

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// GeneratePDF writes a single-page PDF with a valid cross-reference table.
// Metadata is embedded according to opts.
func GeneratePDF(t *testing.T, dir, filename string, opts PDFOptions) string {
	t.Helper()

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R%s >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
	}

	catalogExtra := ""
	if opts.XMP {
		packet := xmpPacket(opts.Title, opts.Author)
		objects = append(objects, fmt.Sprintf("<< /Type /Metadata /Subtype /XML /Length %d >>\nstream\n%s\nendstream", len(packet), packet))
		catalogExtra = fmt.Sprintf(" /Metadata %d 0 R", len(objects))
	}
	objects[0] = fmt.Sprintf(objects[0], catalogExtra)

	infoRef := ""
	if opts.Info {
		objects = append(objects, fmt.Sprintf("<< /Title (%s) /Author (%s) /Producer (testgen) >>", pdfEscape(opts.Title), pdfEscape(opts.Author)))
		infoRef = fmt.Sprintf(" /Info %d 0 R", len(objects))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	if opts.Body != "" {
		fmt.Fprintf(&buf, "%% %s\n", opts.Body)
	}

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R%s >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, infoRef, xref)

	return WriteFile(t, dir, filename, buf.Bytes())
}

// GeneratePDFPackage writes a zip container holding a metadata.xml Dublin
// Core sidecar next to a PDF, the layout some ebook tools export.
func GeneratePDFPackage(t *testing.T, dir, filename, title, author string) string {
	t.Helper()
	return GeneratePDFPackageWithSidecar(t, dir, filename, "metadata.xml", title, author)
}

// GeneratePDFPackageWithSidecar is GeneratePDFPackage with the sidecar stored
// under sidecarPath inside the zip.
func GeneratePDFPackageWithSidecar(t *testing.T, dir, filename, sidecarPath, title, author string) string {
	t.Helper()

	path := filepath.Join(dir, filename)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create package directory: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create package file: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	defer zw.Close()

	sidecar := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
  <dc:title>%s</dc:title>
  <dc:creator>%s</dc:creator>
</metadata>`, escapeXML(title), escapeXML(author))
	if err := writeZipFile(zw, sidecarPath, []byte(sidecar)); err != nil {
		t.Fatalf("failed to write %s: %v", sidecarPath, err)
	}
	if err := writeZipFile(zw, "book.pdf", []byte("%PDF-1.4\n%%EOF\n")); err != nil {
		t.Fatalf("failed to write book.pdf: %v", err)
	}

	return path
}

func xmpPacket(title, author string) string {
	return fmt.Sprintf(`<?xpacket begin="" id="W5M0MpCehiHzreSzNTczkc9d"?>
<x:xmpmeta xmlns:x="adobe:ns:meta/">
  <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
    <rdf:Description rdf:about="" xmlns:dc="http://purl.org/dc/elements/1.1/">
      <dc:title><rdf:Alt><rdf:li xml:lang="x-default">%s</rdf:li></rdf:Alt></dc:title>
      <dc:creator><rdf:Seq><rdf:li>%s</rdf:li></rdf:Seq></dc:creator>
    </rdf:Description>
  </rdf:RDF>
</x:xmpmeta>
<?xpacket end="w"?>`, escapeXML(title), escapeXML(author))
}

func pdfEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
