package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leafstorm/railgen/pkg/cache"
	rgerrors "github.com/leafstorm/railgen/pkg/errors"
	"github.com/leafstorm/railgen/pkg/loader"
)

const metroYAML = "name: Metro\nstations:\n  Central: {x: 0, z: 0}\n"

func fastFetcher(c cache.Cache) *Fetcher {
	f := NewFetcher(c)
	f.Backoff = cache.Backoff{Attempts: 3, Delay: time.Millisecond}
	return f
}

func TestFetch(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing User-Agent")
		}
		w.Write([]byte(metroYAML))
	}))
	defer srv.Close()

	f := fastFetcher(cache.NewMemoryCache(0))
	ctx := context.Background()
	for range 2 {
		data, format, err := f.Fetch(ctx, srv.URL+"/maps/metro.yml?rev=3")
		if err != nil {
			t.Fatalf("Fetch() error: %v", err)
		}
		if string(data) != metroYAML || format != loader.FormatYAML {
			t.Errorf("Fetch() = %q, %s", data, format)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1 (second fetch cached)", hits.Load())
	}

	f.Refresh = true
	if _, _, err := f.Fetch(ctx, srv.URL+"/maps/metro.yml?rev=3"); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 2 {
		t.Errorf("refresh did not refetch: %d hits", hits.Load())
	}
}

func TestFetchContentType(t *testing.T) {
	tests := []struct {
		contentType string
		want        loader.Format
		wantErr     bool
	}{
		{"application/json; charset=utf-8", loader.FormatJSON, false},
		{"application/toml", loader.FormatTOML, false},
		{"text/yaml", loader.FormatYAML, false},
		{"text/html", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.Write([]byte("{}"))
			}))
			defer srv.Close()

			_, format, err := fastFetcher(nil).Fetch(context.Background(), srv.URL+"/network")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Fetch() error = %v, wantErr %v", err, tt.wantErr)
			}
			if format != tt.want {
				t.Errorf("format = %q, want %q", format, tt.want)
			}
		})
	}
}

func TestFetchRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(metroYAML))
	}))
	defer srv.Close()

	if _, _, err := fastFetcher(nil).Fetch(context.Background(), srv.URL+"/metro.yaml"); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if hits.Load() != 3 {
		t.Errorf("hits = %d, want 3", hits.Load())
	}
}

func TestFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing.yml":
			http.NotFound(w, r)
		case "/forbidden.yml":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	tests := []struct {
		url  string
		code rgerrors.Code
	}{
		{srv.URL + "/missing.yml", rgerrors.ErrCodeFileNotFound},
		{srv.URL + "/forbidden.yml", rgerrors.ErrCodeStorage},
		{srv.URL + "/down.yml", rgerrors.ErrCodeStorage},
		{"ftp://example.org/metro.yml", rgerrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			_, _, err := fastFetcher(nil).Fetch(context.Background(), tt.url)
			if !rgerrors.Is(err, tt.code) {
				t.Errorf("Fetch() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestIsURL(t *testing.T) {
	for source, want := range map[string]bool{
		"https://example.org/metro.yml": true,
		"http://localhost/metro.toml":   true,
		"metro.yml":                     false,
		"./https/metro.yml":             false,
	} {
		if got := IsURL(source); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", source, got, want)
		}
	}
	if got := Source("https://example.org/metro.yml?token=x#top"); got != "https://example.org/metro.yml" {
		t.Errorf("Source() = %q", got)
	}
}
