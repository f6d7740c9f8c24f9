// Package parser turns Markdown content files into canonical posts.
package parser

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/apperr"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
)

var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// FrontMatter is the YAML header of a content file.
type FrontMatter struct {
	Title       string         `yaml:"title"`
	Slug        string         `yaml:"slug"`
	Summary     string         `yaml:"summary"`
	Excerpt     string         `yaml:"excerpt"`
	CoverImage  string         `yaml:"coverImage"`
	PublishedAt string         `yaml:"publishedAt"`
	Date        string         `yaml:"date"`
	UpdatedAt   string         `yaml:"updatedAt"`
	Author      AuthorField    `yaml:"author"`
	Tags        StringList     `yaml:"tags"`
	Category    string         `yaml:"category"`
	ReadTime    int            `yaml:"readTime"`
	Gallery     []models.Image `yaml:"gallery"`
	Views       int            `yaml:"views"`
}

// AuthorField accepts either a plain name or a full author mapping.
type AuthorField struct {
	Name        string              `yaml:"name"`
	Avatar      string              `yaml:"avatar"`
	Title       string              `yaml:"title"`
	Bio         string              `yaml:"bio"`
	Credentials string              `yaml:"credentials"`
	Expertise   StringList          `yaml:"expertise"`
	SocialLinks []models.SocialLink `yaml:"socialLinks"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *AuthorField) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		a.Name = strings.TrimSpace(n.Value)
		return nil
	}
	type plain AuthorField
	return n.Decode((*plain)(a))
}

// StringList accepts a YAML sequence or a comma-separated string.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(n *yaml.Node) error {
	var raw []string
	switch n.Kind {
	case yaml.ScalarNode:
		raw = strings.Split(n.Value, ",")
	case yaml.SequenceNode:
		if err := n.Decode(&raw); err != nil {
			return err
		}
	default:
		return fmt.Errorf("line %d: expected list or string", n.Line)
	}
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	*l = out
	return nil
}

// Split separates YAML front matter from the Markdown body. Content
// without a front matter block is returned whole with an empty header.
// An unparsable header is a malformed entry.
func Split(data []byte) (FrontMatter, []byte, error) {
	var fm FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(data), &fm, yamlFormat)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("%w: front matter: %v", apperr.ErrMalformedEntry, err)
	}
	return fm, bytes.TrimLeft(body, "\r\n"), nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate parses the date formats accepted in front matter and CMS documents.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
