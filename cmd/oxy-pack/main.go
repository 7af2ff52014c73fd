// oxy-pack writes a character directory into the zip pack read by oxy-widget.
//
// Usage:
//
//	oxy-pack <dir> <out.zip>
package main

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-widget/engine/loader"
	"github.com/schollz/progressbar/v3"
)

// files lists the regular files under dir as slash-separated paths relative to dir.
func files(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	return out, err
}

// pack writes every file under dir into a new zip archive at out.
//
// Parameters:
//   - dir: the character directory, holding char.atlas, char.rig and the atlas pages
//   - out: the archive to create
//   - progress: where the progress bar is drawn
//
// Returns:
//   - error: an error if dir is not a character directory or the archive cannot be written
func pack(dir, out string, progress io.Writer) error {
	for _, required := range []string{loader.AtlasFile, loader.RigFile} {
		if _, err := os.Stat(filepath.Join(dir, required)); err != nil {
			return fmt.Errorf("%s is not a character directory: %w", dir, err)
		}
	}

	names, err := files(dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", dir, err)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}

	bar := progressbar.NewOptions(len(names),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("pack "+filepath.Base(out)),
		progressbar.OptionShowCount(),
	)

	zw := zip.NewWriter(f)
	err = writeEntries(zw, dir, names, bar)
	err = errors.Join(err, zw.Close(), f.Close(), bar.Finish())
	if err != nil {
		os.Remove(out)
		return err
	}
	return nil
}

func writeEntries(zw *zip.Writer, dir string, names []string, bar *progressbar.ProgressBar) error {
	for _, name := range names {
		if err := writeEntry(zw, filepath.Join(dir, filepath.FromSlash(name)), name); err != nil {
			return fmt.Errorf("failed to pack %s: %w", name, err)
		}
		if err := bar.Add(1); err != nil {
			return err
		}
	}
	return nil
}

func writeEntry(zw *zip.Writer, src, name string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: oxy-pack <dir> <out.zip>")
		os.Exit(2)
	}
	if err := pack(os.Args[1], os.Args[2], os.Stderr); err != nil {
		log.Fatal(err)
	}
}
