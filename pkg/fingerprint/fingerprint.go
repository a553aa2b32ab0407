// Package fingerprint identifies files by their content.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/pkg/errors"
)

// File returns the lower-case hex SHA-256 of the file's full content.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer f.Close()

	sum, err := Reader(f)
	if err != nil {
		return "", errors.Wrapf(err, "failed to hash %s", path)
	}
	return sum, nil
}

// Reader hashes everything read from r until EOF.
func Reader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", errors.WithStack(err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
