package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leafstorm/railgen/pkg/cache"
	rgerrors "github.com/leafstorm/railgen/pkg/errors"
	"github.com/leafstorm/railgen/pkg/loader"
	"github.com/leafstorm/railgen/pkg/observability"
	"github.com/leafstorm/railgen/pkg/snapshot"
)

var metroPath = filepath.Join("..", "loader", "testdata", "metro.yml")

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"html", false},
		{"txt", false},
		{"dot", false},
		{"svg", false},
		{"nodes.js", false},
		{"geojson", false},
		{"json", false},
		{"sqlite", true},
		{"HTML", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !rgerrors.Is(err, rgerrors.ErrCodeUnsupported) {
			t.Errorf("ValidateFormat(%q) code = %s, want UNSUPPORTED", tt.format, rgerrors.GetCode(err))
		}
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if len(o.Formats) != 1 || o.Formats[0] != FormatHTML {
		t.Errorf("Formats = %v, want [html]", o.Formats)
	}
	if o.Stylesheet != "rail-style.css" || o.Scale != 1 || o.PNGScale != 2 || o.Logger == nil {
		t.Errorf("defaults = %+v", o)
	}

	bad := Options{Formats: []string{"html", "bmp"}}
	if err := bad.ValidateAndSetDefaults(); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	base := Options{}
	_ = base.ValidateAndSetDefaults()
	k := cache.NewDefaultKeyer()
	key := func(o Options, format string) string { return k.ArtifactKey("d", o.ArtifactKeyOpts(format)) }

	styled := base
	styled.Stylesheet = "metro.css"
	if key(base, FormatHTML) == key(styled, FormatHTML) {
		t.Error("stylesheet does not change the html key")
	}
	if key(base, FormatDOT) != key(styled, FormatDOT) {
		t.Error("stylesheet changes the dot key")
	}

	scaled := base
	scaled.Scale = 3
	if key(base, FormatSVG) == key(scaled, FormatSVG) {
		t.Error("scale does not change the svg key")
	}

	custom := base
	custom.Template = "{{.Network}}"
	if key(base, FormatHTML) == key(custom, FormatHTML) {
		t.Error("template does not change the html key")
	}

	undirected := base
	undirected.Undirected = true
	if key(base, FormatNodes) == key(undirected, FormatNodes) {
		t.Error("undirected does not change the nodes key")
	}
	if key(base, FormatGeoJSON) != key(undirected, FormatGeoJSON) {
		t.Error("undirected changes the geojson key")
	}
}

func TestExecuteFile(t *testing.T) {
	r := NewRunner(cache.NewMemoryCache(0), nil, nil)
	res, err := r.ExecuteFile(context.Background(), metroPath, Options{
		Formats:   []string{FormatHTML, FormatText, FormatDOT, FormatNodes, FormatGeoJSON, FormatJSON},
		Generator: "railgen test",
	})
	if err != nil {
		t.Fatalf("ExecuteFile error: %v", err)
	}

	if res.Stats.Stations != 3 || res.Stats.Lines != 2 || res.Stats.Waypoints != 1 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if res.CacheInfo.LoadHit || res.CacheInfo.RenderHit {
		t.Errorf("first run hit the cache: %+v", res.CacheInfo)
	}

	checks := map[string]string{
		FormatHTML:    "railgen test",
		FormatText:    "== Metro ==",
		FormatDOT:     `digraph "Metro"`,
		FormatNodes:   `"Old Town"`,
		FormatGeoJSON: `"FeatureCollection"`,
		FormatJSON:    `"digest"`,
	}
	for format, want := range checks {
		if !bytes.Contains(res.Artifacts[format], []byte(want)) {
			t.Errorf("%s artifact missing %q", format, want)
		}
	}

	snap, err := snapshot.Unmarshal(res.Artifacts[FormatJSON])
	if err != nil {
		t.Fatalf("snapshot artifact does not decode: %v", err)
	}
	if snap.Name != "Metro" {
		t.Errorf("snapshot name = %q", snap.Name)
	}
}

func TestExecuteCaches(t *testing.T) {
	ctx := context.Background()
	data, err := os.ReadFile(metroPath)
	if err != nil {
		t.Fatal(err)
	}
	counts := &countingHooks{}
	observability.SetCacheHooks(counts)
	t.Cleanup(observability.Reset)

	r := NewRunner(cache.NewMemoryCache(0), nil, nil)
	opts := Options{Formats: []string{FormatText, FormatDOT}}

	first, err := r.Execute(ctx, "metro.yml", data, loader.FormatYAML, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Execute(ctx, "metro.yml", data, loader.FormatYAML, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.LoadHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v, want all hits", second.CacheInfo)
	}
	if first.Digest != second.Digest {
		t.Error("digest changed between runs")
	}
	if !bytes.Equal(first.Artifacts[FormatText], second.Artifacts[FormatText]) {
		t.Error("cached dump differs from the rendered one")
	}
	if counts.hits != 3 || counts.sets != 3 {
		t.Errorf("hooks saw %d hits and %d sets, want 3 and 3", counts.hits, counts.sets)
	}

	refreshed, err := r.Execute(ctx, "metro.yml", data, loader.FormatYAML, Options{Formats: opts.Formats, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheInfo.LoadHit || refreshed.CacheInfo.RenderHit {
		t.Errorf("refresh run hit the cache: %+v", refreshed.CacheInfo)
	}
}

func TestExecuteSnapshotNotCached(t *testing.T) {
	ctx := context.Background()
	data, _ := os.ReadFile(metroPath)
	r := NewRunner(cache.NewMemoryCache(0), nil, nil)
	opts := Options{Formats: []string{FormatJSON}}

	a, err := r.Execute(ctx, "metro.yml", data, loader.FormatYAML, opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Execute(ctx, "metro.yml", data, loader.FormatYAML, opts)
	if err != nil {
		t.Fatal(err)
	}
	if b.CacheInfo.RenderHit || bytes.Equal(a.Artifacts[FormatJSON], b.Artifacts[FormatJSON]) {
		t.Error("snapshot served from the cache")
	}
}

func TestExecuteCustomTemplate(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.ExecuteFile(context.Background(), metroPath, Options{
		Template:     `{{range .Network.Lines}}{{.}};{{end}}`,
		TemplateName: "lines.tmpl",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := string(res.Artifacts[FormatHTML]); got != "1 - Red;2 - Harbour Shuttle;" {
		t.Errorf("custom template output = %q", got)
	}
}

func TestExecuteErrors(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)

	tests := []struct {
		name string
		run  func() error
		code rgerrors.Code
	}{
		{"missing file", func() error {
			_, err := r.ExecuteFile(ctx, "nope.yml", Options{})
			return err
		}, rgerrors.ErrCodeFileNotFound},
		{"bad yaml", func() error {
			_, err := r.Execute(ctx, "x.yml", []byte("stations: [\n"), loader.FormatYAML, Options{})
			return err
		}, rgerrors.ErrCodeInvalidFormat},
		{"unknown station", func() error {
			doc := "stations: {}\nlines:\n  1: {name: A, direction: north, flow: twoway, level: surface, type: local, stops: [Nowhere]}\n"
			_, err := r.Execute(ctx, "x.yml", []byte(doc), loader.FormatYAML, Options{})
			return err
		}, rgerrors.ErrCodeNotFound},
		{"bad format", func() error {
			_, err := r.ExecuteFile(ctx, metroPath, Options{Formats: []string{"bmp"}})
			return err
		}, rgerrors.ErrCodeUnsupported},
		{"bad template", func() error {
			_, err := r.ExecuteFile(ctx, metroPath, Options{Template: "{{"})
			return err
		}, rgerrors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !rgerrors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(nil, nil, nil).ExecuteFile(ctx, metroPath, Options{})
	if err == nil || !strings.Contains(err.Error(), "cancelled") {
		t.Errorf("error = %v, want cancellation", err)
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		FormatHTML:    "text/html; charset=utf-8",
		FormatSVG:     "image/svg+xml",
		FormatNodes:   "application/json",
		FormatGeoJSON: "application/geo+json",
	}
	for format, want := range tests {
		if got := ContentType(format); got != want {
			t.Errorf("ContentType(%s) = %q, want %q", format, got, want)
		}
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	hits, sets int
}

func (c *countingHooks) OnCacheHit(context.Context, string)      { c.hits++ }
func (c *countingHooks) OnCacheSet(context.Context, string, int) { c.sets++ }
