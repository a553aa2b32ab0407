package metadata

import (
	"path/filepath"
	"strings"

	"github.com/paparr/paparr/pkg/models"
)

// ParseFilename derives a title and author from names shaped like
// "Title - Author". The name is split on every " - " and every bare "-"; the
// first part is the title and the remaining parts, rejoined with "-", are the
// author. The extension, if any, is ignored. Returns nil when there is no
// separator or either side is empty.
func ParseFilename(name string) *Metadata {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	parts := splitName(base)
	if len(parts) < 2 {
		return nil
	}

	title := strings.TrimSpace(parts[0])
	author := strings.TrimSpace(strings.Join(parts[1:], "-"))
	if title == "" || author == "" {
		return nil
	}

	return &Metadata{
		Title:  title,
		Author: author,
		Source: models.DataSourceFilename,
	}
}

func splitName(s string) []string {
	parts := []string{}
	start := 0
	for i := 0; i < len(s); {
		switch {
		case strings.HasPrefix(s[i:], " - "):
			parts = append(parts, s[start:i])
			i += 3
			start = i
		case s[i] == '-':
			parts = append(parts, s[start:i])
			i++
			start = i
		default:
			i++
		}
	}
	return append(parts, s[start:])
}
