package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/testutil"
)

func commandConfig(t *testing.T, files map[string]string) *Config {
	t.Helper()
	dir, _ := testutil.TestContent(t, files)
	cfg := NewDefaultConfig()
	cfg.Content.Path = dir
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "index.db")
	return cfg
}

func TestSitemapCommand(t *testing.T) {
	cfg := commandConfig(t, map[string]string{
		"seo.md": testutil.Post("Dental SEO", "2024-05-01"),
	})
	var out bytes.Buffer
	err := Sitemap(context.Background(),
		WithConfig(cfg), WithLogger(testutil.Quiet), WithOutput(&out))
	if err != nil {
		t.Fatalf("Sitemap: %v", err)
	}
	if !strings.Contains(out.String(), "<loc>https://www.aideamed.com/blog/dental-seo</loc>") {
		t.Errorf("sitemap missing post url:\n%s", out.String())
	}
}

func TestCheckCommand(t *testing.T) {
	t.Run("clean", func(t *testing.T) {
		cfg := commandConfig(t, map[string]string{
			"seo.md": testutil.Post("Dental SEO", "2024-05-01"),
		})
		var out bytes.Buffer
		if err := Check(context.Background(),
			WithConfig(cfg), WithLogger(testutil.Quiet), WithOutput(&out)); err != nil {
			t.Fatalf("Check: %v", err)
		}
		var rep struct {
			Posts int `json:"posts"`
		}
		if err := json.Unmarshal(out.Bytes(), &rep); err != nil {
			t.Fatalf("decode report: %v", err)
		}
		if rep.Posts != 1 {
			t.Errorf("posts = %d, want 1", rep.Posts)
		}
	})

	t.Run("problems", func(t *testing.T) {
		cfg := commandConfig(t, map[string]string{
			"seo.md":    testutil.Post("Dental SEO", "2024-05-01"),
			"broken.md": "---\ntitle: [unterminated\n---\n",
		})
		var out bytes.Buffer
		err := Check(context.Background(),
			WithConfig(cfg), WithLogger(testutil.Quiet), WithOutput(&out))
		if !errors.Is(err, ErrContentProblems) {
			t.Fatalf("err = %v, want ErrContentProblems", err)
		}
		if !strings.Contains(out.String(), "broken.md") {
			t.Errorf("report does not name broken.md:\n%s", out.String())
		}
	})
}

func TestRun_RequiresConfig(t *testing.T) {
	if err := Run(context.Background(), WithLogger(testutil.Quiet)); err == nil {
		t.Fatal("expected error without config")
	}
}
