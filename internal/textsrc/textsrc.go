// Package textsrc decodes text assets (OBJ files, shader sources) that may
// carry a UTF-8 or UTF-16 byte order mark.
package textsrc

import (
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewReader returns a reader yielding UTF-8 text. A leading BOM selects
// UTF-8 or UTF-16 (either byte order) and is stripped; without one the
// input is read as UTF-8 with invalid bytes replaced by U+FFFD.
func NewReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// ReadString reads all of r through NewReader.
func ReadString(r io.Reader) (string, error) {
	b, err := io.ReadAll(NewReader(r))
	if err != nil {
		return "", fmt.Errorf("textsrc: %w", err)
	}
	return string(b), nil
}
