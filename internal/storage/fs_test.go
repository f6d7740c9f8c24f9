package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempContent(t *testing.T, files map[string]string) *FS {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestRead(t *testing.T) {
	s := tempContent(t, map[string]string{"post.md": "# Hello\nWorld\n"})
	got, err := s.Read("post.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "# Hello\nWorld\n" {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestReadMissingIsNotExist(t *testing.T) {
	s := tempContent(t, nil)
	_, err := s.Read("missing.md")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want os.ErrNotExist", err)
	}
}

func TestListFiltersExtensions(t *testing.T) {
	s := tempContent(t, map[string]string{
		"b.md":          "b",
		"a.mdx":         "a",
		"sub/c.md":      "c",
		"readme.txt":    "not content",
		".drafts/d.md":  "hidden",
		"image.md.json": "nope",
	})

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var paths []string
	for _, it := range items {
		paths = append(paths, it.Path)
	}
	want := []string{"a.mdx", "b.md", "sub/c.md"}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
	if items[0].Checksum == "" {
		t.Error("checksum should be set")
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempContent(t, nil)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
	}
}

func TestIsContentFile(t *testing.T) {
	cases := map[string]bool{
		"a.md":   true,
		"a.mdx":  true,
		".md":    false,
		"a.txt":  false,
		"a.mdxx": false,
	}
	for name, want := range cases {
		if got := IsContentFile(name); got != want {
			t.Errorf("IsContentFile(%q) = %v, want %v", name, got, want)
		}
	}
}
