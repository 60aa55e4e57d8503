// Package ingestion reads export files as text.
package ingestion

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// Encoding identifies how a file's bytes were decoded.
type Encoding string

const (
	UTF8      Encoding = "utf-8"
	UTF8Lossy Encoding = "utf-8-lossy" // invalid sequences replaced with U+FFFD
	UTF16LE   Encoding = "utf-16le"
	UTF16BE   Encoding = "utf-16be"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// ReadText reads path and decodes it with DecodeText.
func ReadText(path string) (string, Encoding, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", "", &ReadError{Path: path, Message: "file not found", Cause: err}
		}
		return "", "", &ReadError{Path: path, Message: "failed to read file", Cause: err}
	}

	text, enc, err := DecodeText(content)
	if err != nil {
		return "", "", &ReadError{Path: path, Message: "failed to decode text", Cause: err}
	}
	return text, enc, nil
}

// DecodeText returns content as a string. Valid UTF-8 without NUL bytes is
// used as is (minus a byte order mark). Content is treated as UTF-16 only with
// evidence for it: a UTF-16 BOM, or NUL bytes. Without a BOM a leading NUL
// means big endian and anything else little endian, which is what Windows
// shells write when output is redirected. Remaining invalid UTF-8 has its bad
// bytes replaced with U+FFFD and is reported as UTF8Lossy.
func DecodeText(content []byte) (string, Encoding, error) {
	hasBOM := bytes.HasPrefix(content, bomUTF16LE) || bytes.HasPrefix(content, bomUTF16BE)
	hasNUL := bytes.IndexByte(content, 0) >= 0

	switch {
	case bytes.HasPrefix(content, bomUTF8), !hasBOM && !hasNUL:
		text := string(bytes.TrimPrefix(content, bomUTF8))
		if utf8.ValidString(text) {
			return text, UTF8, nil
		}
		return strings.ToValidUTF8(text, string(utf8.RuneError)), UTF8Lossy, nil
	case !hasBOM && len(content)%2 != 0:
		return "", "", ErrUnknownEncoding
	}

	enc := UTF16LE
	endian := unicode.LittleEndian
	if bytes.HasPrefix(content, bomUTF16BE) || (content[0] == 0 && !bytes.HasPrefix(content, bomUTF16LE)) {
		enc, endian = UTF16BE, unicode.BigEndian
	}

	decoded, err := unicode.UTF16(endian, unicode.UseBOM).NewDecoder().Bytes(content)
	if err != nil {
		return "", "", fmt.Errorf("utf-16: %w", err)
	}
	return string(decoded), enc, nil
}
