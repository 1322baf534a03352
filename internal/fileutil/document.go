// Package fileutil reads and writes ChordPro documents on disk, transparently
// handling xz compression and the "-" stdin/stdout convention.
package fileutil

import (
	"bufio"
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	cperrors "github.com/FocuswithJustin/JuniperSongbook/core/errors"
	"github.com/FocuswithJustin/JuniperSongbook/internal/validation"
)

// StdioPath names standard input or output instead of a file.
const StdioPath = "-"

// IsCompressed reports whether path names an xz-compressed document.
func IsCompressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xz")
}

// ReadDocument reads a document from path, or from stdin when path is "-".
// Compressed files are decompressed; the decoded text must be valid UTF-8 and
// no larger than limit bytes (validation.MaxDocumentSize when limit <= 0).
func ReadDocument(path string, stdin io.Reader, limit int64) (string, error) {
	if err := validation.ValidatePath(path); err != nil {
		return "", cperrors.NewValidation("path", err.Error())
	}
	if limit <= 0 {
		limit = validation.MaxDocumentSize
	}

	var src io.Reader
	name := path
	if path == StdioPath {
		src = stdin
		name = "stdin"
	} else {
		f, err := os.Open(path)
		if err != nil {
			if cperrors.Is(err, fs.ErrNotExist) {
				return "", cperrors.NewNotFound("document", path)
			}
			return "", cperrors.NewIO("open", path, err)
		}
		defer f.Close()
		src = f
	}

	br := bufio.NewReader(src)
	header, _ := br.Peek(512)
	kind, err := validation.DetectFileType(bytes.NewReader(header), path)
	if err != nil {
		return "", cperrors.NewParse("chordpro", name, err.Error())
	}

	var r io.Reader = br
	if kind == validation.FileTypeXZ {
		xzr, err := xz.NewReader(br)
		if err != nil {
			return "", cperrors.NewIO("decompress", name, err)
		}
		r = xzr
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", cperrors.NewIO("read", name, err)
	}
	if err := validation.ValidateDocumentSize(int64(len(data)), limit); err != nil {
		return "", cperrors.NewValidation("document", err.Error())
	}
	if err := validation.ValidateUTF8(data); err != nil {
		return "", cperrors.NewValidation("document", err.Error())
	}
	return string(data), nil
}

// WriteDocument writes text to path, or to stdout when path is "-". Paths
// ending in ".xz" are compressed. Files are replaced atomically: the text is
// written to a temporary file in the same directory and renamed into place.
func WriteDocument(path string, stdout io.Writer, text string) error {
	if path == StdioPath {
		if _, err := io.WriteString(stdout, text); err != nil {
			return cperrors.NewIO("write", "stdout", err)
		}
		return nil
	}

	if err := validation.ValidatePath(path); err != nil {
		return cperrors.NewValidation("path", err.Error())
	}
	if err := validation.ValidateFilename(filepath.Base(path)); err != nil {
		return cperrors.NewValidation("path", err.Error())
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return cperrors.NewIO("create directory", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return cperrors.NewIO("create", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := encode(tmp, path, text); err != nil {
		tmp.Close()
		return cperrors.NewIO("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		return cperrors.NewIO("close", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return cperrors.NewIO("chmod", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return cperrors.NewIO("rename", path, err)
	}
	return nil
}

func encode(w io.Writer, path, text string) error {
	if !IsCompressed(path) {
		_, err := io.WriteString(w, text)
		return err
	}
	xw, err := xz.NewWriter(w)
	if err != nil {
		return cperrors.Wrap(err, "xz writer")
	}
	if _, err := io.WriteString(xw, text); err != nil {
		xw.Close()
		return cperrors.Wrap(err, "xz compress")
	}
	return cperrors.Wrap(xw.Close(), "xz flush")
}
