// Package testutil provides shared test helpers for content directories,
// stores and the post index.
package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/content"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/index"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/parser"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/storage"
)

// Quiet is a logger that discards everything.
var Quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// TestDB creates a temporary SQLite index that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "aidea-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(context.Background(), dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Post renders a Markdown post with the given title, publish date and
// extra front matter lines.
func Post(title, date string, extra ...string) string {
	s := fmt.Sprintf("---\ntitle: %s\npublishedAt: %s\n", title, date)
	for _, e := range extra {
		s += e + "\n"
	}
	return s + "---\n\nBody of " + title + "\n"
}

// TestContent writes files into a temporary content directory and
// returns the directory with an FS store reading it.
func TestContent(t *testing.T, files map[string]string) (string, *content.FSStore) {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	fsys, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, content.NewFSStore(fsys, parser.NewDefaults(), nil, Quiet)
}
