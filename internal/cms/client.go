// Package cms is a read-only client for the headless CMS query API (GROQ).
package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/apperr"
)

// Config holds the CMS project coordinates.
type Config struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	UseCDN     bool
	// APIHost overrides the project host, e.g. for tests.
	APIHost string
	Timeout time.Duration
}

// Client queries published documents.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a new CMS client.
func NewClient(cfg Config) *Client {
	if cfg.Dataset == "" {
		cfg.Dataset = "production"
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2024-03-06"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

func (c *Client) endpoint() string {
	path := fmt.Sprintf("/v%s/data/query/%s", strings.TrimPrefix(c.cfg.APIVersion, "v"), url.PathEscape(c.cfg.Dataset))
	if c.cfg.APIHost != "" {
		return strings.TrimRight(c.cfg.APIHost, "/") + path
	}
	host := "api.sanity.io"
	// Authenticated reads bypass the CDN.
	if c.cfg.UseCDN && c.cfg.Token == "" {
		host = "apicdn.sanity.io"
	}
	return fmt.Sprintf("https://%s.%s%s", c.cfg.ProjectID, host, path)
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Description string `json:"description"`
	} `json:"error"`
}

// Query runs a GROQ query and decodes its result into out. It returns
// apperr.ErrNotFound when the result is null.
func (c *Client) Query(ctx context.Context, query string, params map[string]any, out any) error {
	q := url.Values{}
	q.Set("query", query)
	for k, v := range params {
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("cms: encode param %s: %w", k, err)
		}
		q.Set("$"+k, string(encoded))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint()+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("cms: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", apperr.ErrSourceUnavailable, err)
	}

	var qr queryResponse
	if err := json.Unmarshal(body, &qr); err != nil {
		return fmt.Errorf("%w: status %d: decode: %v", apperr.ErrSourceUnavailable, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || qr.Error != nil {
		msg := http.StatusText(resp.StatusCode)
		if qr.Error != nil && qr.Error.Description != "" {
			msg = qr.Error.Description
		}
		return fmt.Errorf("%w: status %d: %s", apperr.ErrSourceUnavailable, resp.StatusCode, msg)
	}
	if len(qr.Result) == 0 || string(qr.Result) == "null" {
		return apperr.ErrNotFound
	}
	if err := json.Unmarshal(qr.Result, out); err != nil {
		return fmt.Errorf("%w: decode result: %v", apperr.ErrSourceUnavailable, err)
	}
	return nil
}

// DecodeError reports a listed document whose fields did not decode.
type DecodeError struct {
	Index int
	ID    string
	Err   error
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("cms: document %d (%s): %v", e.Index, e.ID, e.Err)
}

// Posts returns every published post, newest first. Documents that do
// not decode are returned in skipped instead of failing the listing.
func (c *Client) Posts(ctx context.Context) (docs []Document, skipped []DecodeError, err error) {
	return c.documents(ctx, listPostsQuery, nil)
}

// PostsBySlug returns the published posts whose slug equals slug,
// ignoring case, newest first.
func (c *Client) PostsBySlug(ctx context.Context, slug string) (docs []Document, skipped []DecodeError, err error) {
	return c.documents(ctx, postsBySlugQuery, map[string]any{"slug": strings.ToLower(slug)})
}

func (c *Client) documents(ctx context.Context, query string, params map[string]any) ([]Document, []DecodeError, error) {
	var raw []json.RawMessage
	if err := c.Query(ctx, query, params, &raw); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	docs := make([]Document, 0, len(raw))
	var skipped []DecodeError
	for i, r := range raw {
		var d Document
		if err := json.Unmarshal(r, &d); err != nil {
			var head struct {
				ID string `json:"_id"`
			}
			_ = json.Unmarshal(r, &head)
			skipped = append(skipped, DecodeError{Index: i, ID: head.ID, Err: err})
			continue
		}
		docs = append(docs, d)
	}
	return docs, skipped, nil
}

// Categories returns every category ordered by title.
func (c *Client) Categories(ctx context.Context) ([]CategoryRef, error) {
	var cats []CategoryRef
	if err := c.Query(ctx, categoriesQuery, nil, &cats); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return cats, nil
}
