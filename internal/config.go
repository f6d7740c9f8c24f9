package internal

import (
	"fmt"
	"log/slog"
	"time"
	_ "time/tzdata" // timezone names must resolve in minimal images

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/parser"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/seo"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Site    SiteConfig        `yaml:"site"`
	Content ContentConfig     `yaml:"content"`
	CMS     CMSConfig         `yaml:"cms"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Mail    MailConfig        `yaml:"mail"`
	Sitemap SitemapConfig     `yaml:"sitemap"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Site.Validate(); err != nil {
		return fmt.Errorf("site: %w", err)
	}
	if err := c.Content.Validate(); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	if c.Content.Source == SourceCMS {
		if err := c.CMS.Validate(); err != nil {
			return fmt.Errorf("cms: %w", err)
		}
	}
	if err := c.SQLite.Validate(); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	if err := c.Mail.Validate(); err != nil {
		return fmt.Errorf("mail: %w", err)
	}
	if err := c.Sitemap.Validate(); err != nil {
		return fmt.Errorf("sitemap: %w", err)
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.ShutdownTimeout, validation.Min(time.Duration(0))),
	)
}

// SiteConfig is the publisher identity used by metadata, JSON-LD,
// sitemap and robots.
type SiteConfig struct {
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	BaseURL       string   `yaml:"base_url"`
	Locale        string   `yaml:"locale"`
	Language      string   `yaml:"language"`
	SocialImage   string   `yaml:"social_image"`
	Logo          string   `yaml:"logo"`
	TwitterHandle string   `yaml:"twitter_handle"`
	Email         string   `yaml:"email"`
	Phone         string   `yaml:"phone"`
	SameAs        []string `yaml:"same_as"`
	// DefaultCategory labels posts without a category.
	DefaultCategory string `yaml:"default_category"`
	// Timezone is used for rendered dates and notification timestamps.
	Timezone string `yaml:"timezone"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.Email, is.EmailFormat),
		validation.Field(&c.Timezone, validation.By(validTimezone)),
	)
}

// Seo converts the configuration to the identity used by the seo package.
func (c *SiteConfig) Seo() seo.Site {
	return seo.Site{
		Name:            c.Name,
		Description:     c.Description,
		BaseURL:         c.BaseURL,
		Locale:          c.Locale,
		Language:        c.Language,
		SocialImage:     c.SocialImage,
		Logo:            c.Logo,
		TwitterHandle:   c.TwitterHandle,
		Email:           c.Email,
		Phone:           c.Phone,
		SameAs:          c.SameAs,
		DefaultCategory: c.DefaultCategory,
	}
}

// Location loads the configured timezone, falling back to UTC.
func (c *SiteConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func validTimezone(v any) error {
	name, _ := v.(string)
	if name == "" {
		return nil
	}
	if _, err := time.LoadLocation(name); err != nil {
		return fmt.Errorf("unknown timezone %q", name)
	}
	return nil
}

// Content sources.
const (
	SourceFS  = models.SourceFS
	SourceCMS = models.SourceCMS
)

// ContentConfig selects and configures the content store.
type ContentConfig struct {
	// Source is "fs" (Markdown directory) or "cms" (headless CMS).
	Source string `yaml:"source"`
	// Path is the Markdown content directory for the fs source.
	Path string `yaml:"path"`
	// ImagesDir is served read-only at /images/. Empty disables it.
	ImagesDir string `yaml:"images_dir"`
	// CasesFile overrides the built-in case-study dataset.
	CasesFile string `yaml:"cases_file"`
	// Categories is the closed category vocabulary of the fs source.
	Categories     []models.Category `yaml:"categories"`
	WordsPerMinute int               `yaml:"words_per_minute"`
	DefaultCover   string            `yaml:"default_cover"`
	DefaultAuthor  string            `yaml:"default_author"`
	// PollInterval is how often the cms source is re-synced into the index.
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Source, validation.Required, validation.In(SourceFS, SourceCMS)),
		validation.Field(&c.Path, validation.When(c.Source == SourceFS, validation.Required)),
		validation.Field(&c.WordsPerMinute, validation.Min(1)),
		validation.Field(&c.PollInterval, validation.When(c.Source == SourceCMS, validation.Min(time.Second))),
		validation.Field(&c.Categories, validation.Each(validation.By(validCategory))),
	)
}

func validCategory(v any) error {
	c, ok := v.(models.Category)
	if !ok {
		return nil
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.Slug, validation.Required),
		validation.Field(&c.Title, validation.Required),
	)
}

// CMSConfig holds headless CMS connection settings.
type CMSConfig struct {
	ProjectID  string        `yaml:"project_id"`
	Dataset    string        `yaml:"dataset"`
	APIVersion string        `yaml:"api_version"`
	Token      string        `yaml:"token"`
	UseCDN     bool          `yaml:"use_cdn"`
	APIHost    string        `yaml:"api_host"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Validate validates the CMS configuration.
func (c *CMSConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ProjectID, validation.When(c.APIHost == "", validation.Required)),
		validation.Field(&c.Dataset, validation.Required),
		validation.Field(&c.APIHost, is.URL),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// MailConfig holds the SMTP relay and the contact notification addresses.
// An empty Host disables delivery; contact submissions then fail.
type MailConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	From     string        `yaml:"from"`
	To       []string      `yaml:"to"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Enabled reports whether an SMTP relay is configured.
func (c *MailConfig) Enabled() bool {
	return c.Host != ""
}

// Validate validates the mail configuration.
func (c *MailConfig) Validate() error {
	enabled := c.Enabled()
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.When(enabled, validation.Required, validation.Min(1), validation.Max(65535))),
		validation.Field(&c.From, validation.When(enabled, validation.Required), is.EmailFormat),
		validation.Field(&c.To, validation.When(enabled, validation.Required), validation.Each(is.EmailFormat)),
	)
}

// SitemapConfig holds the static route table and the keyword policy.
type SitemapConfig struct {
	Routes        []seo.Route `yaml:"routes"`
	HighValueTags []string    `yaml:"high_value_tags"`
	PinnedSlugs   []string    `yaml:"pinned_slugs"`
}

// Validate validates the sitemap configuration.
func (c *SitemapConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Routes, validation.Each(validation.By(validRoute))),
	)
}

func validRoute(v any) error {
	r, ok := v.(seo.Route)
	if !ok {
		return nil
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Path, validation.Required),
		validation.Field(&r.Priority, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&r.ChangeFreq, validation.In("always", "hourly", "daily", "weekly", "monthly", "yearly", "never")),
	)
}

// Seo converts the configuration to the sitemap policy of the seo package.
func (c *SitemapConfig) Seo() seo.SitemapConfig {
	return seo.SitemapConfig{
		Routes:        c.Routes,
		HighValueTags: c.HighValueTags,
		PinnedSlugs:   c.PinnedSlugs,
	}
}

// AuthConfig holds authentication configuration of the admin routes.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled".
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	site := seo.DefaultSite()
	sitemap := seo.DefaultSitemapConfig()
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port:            8080,
				ShutdownTimeout: 10 * time.Second,
			},
		},
		Site: SiteConfig{
			Name:            site.Name,
			Description:     site.Description,
			BaseURL:         site.BaseURL,
			Locale:          site.Locale,
			Language:        site.Language,
			SocialImage:     site.SocialImage,
			Logo:            site.Logo,
			TwitterHandle:   site.TwitterHandle,
			Email:           site.Email,
			Phone:           site.Phone,
			SameAs:          site.SameAs,
			DefaultCategory: site.DefaultCategory,
			Timezone:        "Asia/Taipei",
		},
		Content: ContentConfig{
			Source:         SourceFS,
			Path:           "./content/blog",
			ImagesDir:      "./public/images",
			WordsPerMinute: parser.DefaultWordsPerMinute,
			DefaultCover:   "/images/blog/default.jpg",
			DefaultAuthor:  "團隊編輯",
			PollInterval:   5 * time.Minute,
		},
		CMS: CMSConfig{
			Dataset:    "production",
			APIVersion: "2024-03-06",
			UseCDN:     true,
			Timeout:    10 * time.Second,
		},
		SQLite: SQLiteConfig{
			Path: "./aidea.db",
		},
		Mail: MailConfig{
			Port:    587,
			Timeout: 15 * time.Second,
		},
		Sitemap: SitemapConfig{
			Routes:        sitemap.Routes,
			HighValueTags: sitemap.HighValueTags,
			PinnedSlugs:   sitemap.PinnedSlugs,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
