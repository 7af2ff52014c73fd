package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-widget/engine/loader"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestPackReadableByLoader(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		loader.AtlasFile: "atlas",
		loader.RigFile:   "rig",
		"pages/char.png": "png",
	})
	out := filepath.Join(t.TempDir(), "character.zip")

	if err := pack(dir, out, io.Discard); err != nil {
		t.Fatalf("pack: %v", err)
	}

	for name, want := range map[string]string{
		loader.AtlasFile: "atlas",
		loader.RigFile:   "rig",
		"pages/char.png": "png",
	} {
		got, err := loader.ReadFile(out + loader.PackSeparator + name)
		if err != nil {
			t.Errorf("ReadFile(%s): %v", name, err)
			continue
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestPackRejectsNonCharacterDir(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{loader.AtlasFile: "atlas"})
	out := filepath.Join(t.TempDir(), "character.zip")

	if err := pack(dir, out, io.Discard); err == nil {
		t.Fatal("pack accepted a directory without a rig")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("archive created: %v", err)
	}
}
