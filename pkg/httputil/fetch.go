package httputil

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/leafstorm/railgen/pkg/buildinfo"
	"github.com/leafstorm/railgen/pkg/cache"
	rgerrors "github.com/leafstorm/railgen/pkg/errors"
	"github.com/leafstorm/railgen/pkg/loader"
)

const (
	// DefaultTTL is how long a fetched document stays cached.
	DefaultTTL = time.Hour

	// MaxDocumentSize bounds the body read from a server.
	MaxDocumentSize = 16 << 20
)

// IsURL reports whether source names an http or https document.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Fetcher downloads documents.
type Fetcher struct {
	Client  *http.Client
	Cache   cache.Cache
	TTL     time.Duration
	Backoff cache.Backoff
	Refresh bool
}

// NewFetcher returns a fetcher with a 30s client timeout. A nil cache
// disables caching.
func NewFetcher(c cache.Cache) *Fetcher {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Fetcher{
		Client:  &http.Client{Timeout: 30 * time.Second},
		Cache:   c,
		TTL:     DefaultTTL,
		Backoff: cache.DefaultBackoff,
	}
}

type entry struct {
	Format loader.Format `json:"format"`
	Data   []byte        `json:"data"`
}

// Fetch returns the document at rawURL and its format.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, loader.Format, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, "", rgerrors.New(rgerrors.ErrCodeInvalidInput, "not an http(s) URL: %q", rawURL)
	}
	key := "remote:" + cache.Hash([]byte(u.String()))

	if !f.Refresh {
		if data, ok, _ := f.Cache.Get(ctx, key); ok {
			var e entry
			if json.Unmarshal(data, &e) == nil {
				return e.Data, e.Format, nil
			}
		}
	}

	var (
		body        []byte
		contentType string
	)
	err = f.Backoff.Retry(ctx, func() error {
		body, contentType, err = f.get(ctx, u.String())
		return err
	})
	if err != nil {
		return nil, "", err
	}

	format, err := formatOf(u, contentType)
	if err != nil {
		return nil, "", err
	}
	if data, err := json.Marshal(entry{Format: format, Data: body}); err == nil {
		_ = f.Cache.Set(ctx, key, data, f.TTL)
	}
	return body, format, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", rgerrors.Wrap(rgerrors.ErrCodeInvalidInput, err, "build request")
	}
	req.Header.Set("User-Agent", buildinfo.Generator())
	req.Header.Set("Accept", "application/yaml, application/toml, application/json, text/plain;q=0.5")

	resp, err := f.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, "", cache.Retryable(rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "fetch %s", rawURL))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, "", rgerrors.New(rgerrors.ErrCodeFileNotFound, "data document %s not found", rawURL)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, "", cache.Retryable(statusErr(rawURL, resp.Status))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, "", statusErr(rawURL, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize+1))
	if err != nil {
		return nil, "", cache.Retryable(rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "read %s", rawURL))
	}
	if len(body) > MaxDocumentSize {
		return nil, "", rgerrors.New(rgerrors.ErrCodeInvalidInput, "%s exceeds %d bytes", rawURL, MaxDocumentSize)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func statusErr(rawURL, status string) error {
	return rgerrors.New(rgerrors.ErrCodeStorage, "fetch %s: %s", rawURL, status)
}

// formatOf prefers the path extension over the Content-Type.
func formatOf(u *url.URL, contentType string) (loader.Format, error) {
	if ext := path.Ext(u.Path); ext != "" {
		if f, err := loader.ParseFormat(ext); err == nil {
			return f, nil
		}
	}
	mt, _, _ := mime.ParseMediaType(contentType)
	switch mt {
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return loader.FormatYAML, nil
	case "application/toml", "text/toml":
		return loader.FormatTOML, nil
	case "application/json":
		return loader.FormatJSON, nil
	}
	return "", rgerrors.New(rgerrors.ErrCodeUnsupported,
		"cannot tell the format of %s (content type %q)", u, contentType)
}

// Source returns a display name for logs: the URL without its query.
func Source(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.RawQuery, u.Fragment = "", ""
	return u.String()
}
