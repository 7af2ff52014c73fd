package loader

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// PackSeparator splits a packed path into the archive on disk and the file inside it, as in
// "character.zip??/char.atlas".
const PackSeparator = "??/"

// splitPacked returns the archive path and the inner path of a packed path.
func splitPacked(p string) (archive, inner string, packed bool) {
	archive, inner, packed = strings.Cut(p, PackSeparator)
	return archive, inner, packed
}

// ReadFile reads a file from disk or, for packed paths, from inside a zip archive.
//
// Parameters:
//   - p: a file path, or "archive.zip??/inner/file"
//
// Returns:
//   - []byte: the file contents
//   - error: an error if the archive or file cannot be read
func ReadFile(p string) ([]byte, error) {
	archive, inner, packed := splitPacked(p)
	if !packed {
		return os.ReadFile(p)
	}

	zr, err := zip.OpenReader(archive)
	if err != nil {
		return nil, fmt.Errorf("failed to open pack %s: %w", archive, err)
	}
	defer zr.Close()

	f, err := zr.Open(inner)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s in pack %s: %w", inner, archive, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

// JoinPacked resolves rel against the directory of base, staying inside the archive for packed
// paths.
//
// Parameters:
//   - base: the path of the referencing file, e.g. the atlas
//   - rel: the referenced name, e.g. a page file name
//
// Returns:
//   - string: the resolved path
func JoinPacked(base, rel string) string {
	archive, inner, packed := splitPacked(base)
	if !packed {
		return filepath.Join(filepath.Dir(base), rel)
	}
	// zip entry names always use forward slashes
	return archive + PackSeparator + path.Join(path.Dir(inner), rel)
}

// MaskPath returns the path of the optional alpha mask of an image: "page.png" becomes
// "page[alpha].png".
func MaskPath(p string) string {
	ext := path.Ext(p)
	return strings.TrimSuffix(p, ext) + "[alpha]" + ext
}
