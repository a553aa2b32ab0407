package pdf

import (
	"testing"

	"github.com/paparr/paparr/internal/testgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_XMP(t *testing.T) {
	t.Parallel()
	path := testgen.GeneratePDF(t, t.TempDir(), "book.pdf", testgen.PDFOptions{
		Title:  "The Dispossessed",
		Author: "Ursula K. Le Guin",
		XMP:    true,
	})

	md, err := Parse(path)
	require.NoError(t, err)
	require.NotNil(t, md)
	assert.Equal(t, "The Dispossessed", md.Title)
	assert.Equal(t, []string{"Ursula K. Le Guin"}, md.Authors)
}

func TestParse_InfoDictionary(t *testing.T) {
	t.Parallel()
	path := testgen.GeneratePDF(t, t.TempDir(), "book.pdf", testgen.PDFOptions{
		Title:  "Kindred",
		Author: "Octavia E. Butler",
		Info:   true,
	})

	md, err := Parse(path)
	require.NoError(t, err)
	require.NotNil(t, md)
	assert.Equal(t, "Kindred", md.Title)
	assert.Equal(t, []string{"Octavia E. Butler"}, md.Authors)
}

func TestParse_SidecarPackage(t *testing.T) {
	t.Parallel()
	path := testgen.GeneratePDFPackage(t, t.TempDir(), "book.pdf", "Solaris", "Stanisław Lem")

	md, err := Parse(path)
	require.NoError(t, err)
	require.NotNil(t, md)
	assert.Equal(t, "Solaris", md.Title)
	assert.Equal(t, []string{"Stanisław Lem"}, md.Authors)
}

func TestParse_SidecarInSubdirectory(t *testing.T) {
	t.Parallel()
	path := testgen.GeneratePDFPackageWithSidecar(t, t.TempDir(), "book.pdf", "OEBPS/metadata.xml", "Solaris", "Stanisław Lem")

	md, err := Parse(path)
	require.NoError(t, err)
	require.NotNil(t, md)
	assert.Equal(t, "Solaris", md.Title)
	assert.Equal(t, []string{"Stanisław Lem"}, md.Authors)
}

func TestParse_NoMetadata(t *testing.T) {
	t.Parallel()
	path := testgen.GeneratePDF(t, t.TempDir(), "book.pdf", testgen.PDFOptions{})

	md, err := Parse(path)
	require.NoError(t, err)
	assert.Nil(t, md)
}

func TestParse_Garbage(t *testing.T) {
	t.Parallel()
	path := testgen.WriteFile(t, t.TempDir(), "book.pdf", []byte("not a pdf at all"))

	md, err := Parse(path)
	require.NoError(t, err)
	assert.Nil(t, md)
}

func TestParseXMP(t *testing.T) {
	t.Parallel()

	t.Run("plain dublin core", func(t *testing.T) {
		md := ParseXMP([]byte(`<metadata><dc:title> Dune </dc:title><dc:creator>Frank Herbert</dc:creator></metadata>`))
		assert.Equal(t, "Dune", md.Title)
		assert.Equal(t, []string{"Frank Herbert"}, md.Authors)
	})

	t.Run("rdf containers with several creators", func(t *testing.T) {
		md := ParseXMP([]byte(`<x:xmpmeta><dc:title><rdf:Alt><rdf:li xml:lang="x-default">Good Omens</rdf:li></rdf:Alt></dc:title>` +
			`<dc:creator><rdf:Seq><rdf:li>Terry Pratchett</rdf:li><rdf:li>Neil Gaiman</rdf:li></rdf:Seq></dc:creator></x:xmpmeta>`))
		assert.Equal(t, "Good Omens", md.Title)
		assert.Equal(t, []string{"Terry Pratchett", "Neil Gaiman"}, md.Authors)
		assert.True(t, md.Complete())
	})

	t.Run("entities are decoded", func(t *testing.T) {
		md := ParseXMP([]byte(`<dc:title>Pride &amp; Prejudice</dc:title>`))
		assert.Equal(t, "Pride & Prejudice", md.Title)
		assert.False(t, md.Complete())
	})
}
