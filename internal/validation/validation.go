// Package validation checks paths and document bytes before they reach the
// ChordPro engine, guarding against traversal, malformed text, and resource
// exhaustion.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Input limits.
const (
	// MaxDocumentSize is the default upper bound on a document (4 MB).
	MaxDocumentSize = 4 << 20
	// MaxFilenameLength is the maximum allowed filename length.
	MaxFilenameLength = 255
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
)

// Common validation errors.
var (
	ErrPathTraversal    = errors.New("path traversal detected")
	ErrInvalidFilename  = errors.New("invalid filename")
	ErrPathTooLong      = errors.New("path too long")
	ErrFilenameTooLong  = errors.New("filename too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrDocumentTooLarge = errors.New("document too large")
	ErrInvalidEncoding  = errors.New("document is not valid UTF-8")
	ErrBinaryContent    = errors.New("document contains binary content")
)

// ValidatePath rejects empty, overlong, and control-character paths.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}

	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}

	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: null byte not allowed", ErrInvalidCharacter)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}

	return nil
}

// ValidateFilename checks that a single path element is safe to create.
func ValidateFilename(filename string) error {
	if filename == "" {
		return ErrInvalidFilename
	}

	if len(filename) > MaxFilenameLength {
		return ErrFilenameTooLong
	}

	if filename == "." || filename == ".." {
		return fmt.Errorf("%w: reserved name", ErrInvalidFilename)
	}

	if strings.ContainsAny(filename, "/\\") {
		return fmt.Errorf("%w: path separator not allowed", ErrInvalidFilename)
	}

	for _, r := range filename {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidFilename)
		}
	}

	// Names starting with a hyphen read as flags on the command line.
	if strings.HasPrefix(filename, "-") {
		return fmt.Errorf("%w: filename cannot start with hyphen", ErrInvalidFilename)
	}

	return nil
}

// ValidateDocumentSize rejects documents larger than limit bytes. A limit of
// zero or less means MaxDocumentSize.
func ValidateDocumentSize(size int64, limit int64) error {
	if limit <= 0 {
		limit = MaxDocumentSize
	}
	if size > limit {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrDocumentTooLarge, size, limit)
	}
	return nil
}

// ValidateUTF8 rejects documents that are not valid UTF-8 text or that carry
// NUL bytes.
func ValidateUTF8(data []byte) error {
	if !utf8.Valid(data) {
		return ErrInvalidEncoding
	}
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return fmt.Errorf("%w: NUL byte at offset %d", ErrBinaryContent, i)
	}
	return nil
}

// FileType is a detected document container.
type FileType string

const (
	FileTypeXZ       FileType = "xz"
	FileTypeChordPro FileType = "chordpro"
	FileTypeText     FileType = "text"
	FileTypeUnknown  FileType = "unknown"
)

var xzMagic = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}

// DetectFileType inspects the header of r together with the filename
// extension. A ".xz" name must carry the xz magic; any other name must look
// like text.
func DetectFileType(r io.Reader, filename string) (FileType, error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FileTypeUnknown, fmt.Errorf("failed to read file header: %w", err)
	}
	buf = buf[:n]

	compressed := bytes.HasPrefix(buf, xzMagic)
	expected := FileTypeFromExtension(filename)

	switch {
	case expected == FileTypeXZ && compressed:
		return FileTypeXZ, nil
	case expected == FileTypeXZ:
		return FileTypeUnknown, fmt.Errorf("file type mismatch: %s has no xz header", filename)
	case compressed:
		return FileTypeUnknown, fmt.Errorf("file type mismatch: %s is xz-compressed", filename)
	case n > 0 && !isLikelyText(buf):
		return FileTypeUnknown, fmt.Errorf("%w: %s", ErrBinaryContent, filename)
	}
	if expected == FileTypeUnknown {
		return FileTypeText, nil
	}
	return expected, nil
}

// FileTypeFromExtension maps a filename to its expected type.
func FileTypeFromExtension(filename string) FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xz":
		return FileTypeXZ
	case ".cho", ".chopro", ".chordpro", ".crd", ".pro":
		return FileTypeChordPro
	case ".txt":
		return FileTypeText
	default:
		return FileTypeUnknown
	}
}

// isLikelyText reports whether buf looks like text: no NUL bytes and at most
// 5% control characters or invalid UTF-8 bytes. A rune cut off at the end of
// buf is ignored.
func isLikelyText(buf []byte) bool {
	if len(buf) == 0 {
		return false
	}

	if bytes.IndexByte(buf, 0) != -1 {
		return false
	}

	printable := 0
	control := 0
	for len(buf) > 0 {
		r, size := utf8.DecodeRune(buf)
		switch {
		case r == utf8.RuneError && size <= 1 && !utf8.FullRune(buf):
			buf = nil
			continue
		case r == utf8.RuneError && size <= 1:
			control++
		case r == '\t' || r == '\n' || r == '\r':
			printable++
		case unicode.IsControl(r):
			control++
		default:
			printable++
		}
		buf = buf[size:]
	}

	return printable > 0 && float64(printable)/float64(printable+control) > 0.95
}
