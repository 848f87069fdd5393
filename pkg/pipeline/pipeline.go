// Package pipeline is the load → render path shared by the CLI and the HTTP
// server.
//
// # Stages
//
//  1. Load: decode document bytes (YAML, TOML or JSON) and build the network.
//     The decoded document is cached under the digest of the raw bytes.
//  2. Render: produce one artifact per requested format. Each artifact is
//     cached under the document digest plus the options that affect it.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(0), nil, logger)
//	result, err := runner.ExecuteFile(ctx, "metro.yml", pipeline.Options{
//	    Formats: []string{pipeline.FormatHTML, pipeline.FormatDOT},
//	})
//	page := result.Artifacts[pipeline.FormatHTML]
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/leafstorm/railgen/pkg/cache"
	rgerrors "github.com/leafstorm/railgen/pkg/errors"
	"github.com/leafstorm/railgen/pkg/network"
	"github.com/leafstorm/railgen/pkg/render/html"
)

// Artifact formats.
const (
	FormatHTML    = "html"
	FormatText    = "txt"
	FormatDOT     = "dot"
	FormatSVG     = "svg"
	FormatPDF     = "pdf"
	FormatPNG     = "png"
	FormatNodes   = "nodes"
	FormatNodesJS = "nodes.js"
	FormatGeoJSON = "geojson"
	FormatJSON    = "json"
)

// Defaults.
const (
	DefaultTTL      = 24 * time.Hour
	DefaultScale    = 1
	DefaultPNGScale = 2.0
)

var validFormats = []string{
	FormatHTML, FormatText, FormatDOT, FormatSVG, FormatPDF, FormatPNG,
	FormatNodes, FormatNodesJS, FormatGeoJSON, FormatJSON,
}

// Formats lists every artifact format.
func Formats() []string { return slices.Clone(validFormats) }

// ValidateFormat reports UNSUPPORTED for an unknown format name.
func ValidateFormat(format string) error {
	if !slices.Contains(validFormats, format) {
		return rgerrors.New(rgerrors.ErrCodeUnsupported,
			"unknown format %q (must be one of: %s)", format, strings.Join(validFormats, ", "))
	}
	return nil
}

// ContentType returns the MIME type served for format.
func ContentType(format string) string {
	switch format {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatText, FormatDOT:
		return "text/plain; charset=utf-8"
	case FormatSVG:
		return "image/svg+xml"
	case FormatPDF:
		return "application/pdf"
	case FormatPNG:
		return "image/png"
	case FormatNodesJS:
		return "text/javascript; charset=utf-8"
	case FormatGeoJSON:
		return "application/geo+json"
	}
	return "application/json"
}

// Options configures a pipeline run.
type Options struct {
	Formats []string `json:"formats,omitempty"`

	// Template is the source of a custom html/template; empty means the
	// built-in listing.
	Template     string `json:"-"`
	TemplateName string `json:"template_name,omitempty"`
	Stylesheet   string `json:"stylesheet,omitempty"`
	Generator    string `json:"generator,omitempty"`

	Scale    int     `json:"scale,omitempty"`
	Detailed bool    `json:"detailed,omitempty"`
	PNGScale float64 `json:"png_scale,omitempty"`
	Indent   bool    `json:"indent,omitempty"`

	// Undirected builds the neighbour map in nodes.Undirected mode.
	Undirected bool `json:"undirected,omitempty"`

	AllowOverwrite bool `json:"allow_overwrite,omitempty"`

	// Refresh skips cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// ValidateAndSetDefaults checks the formats and fills defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatHTML}
	}
	for _, f := range o.Formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	if o.Stylesheet == "" {
		o.Stylesheet = html.DefaultStylesheet
	}
	if o.TemplateName == "" {
		o.TemplateName = "custom"
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.PNGScale <= 0 {
		o.PNGScale = DefaultPNGScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ArtifactKeyOpts returns the cache key options for format. Only options
// that change the bytes of that format are included.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, Overwrite: o.AllowOverwrite}
	switch format {
	case FormatHTML:
		k.Stylesheet = o.Stylesheet
		k.Template = cache.Hash([]byte(o.Template + "\x00" + o.Generator))
	case FormatDOT, FormatSVG, FormatPDF:
		k.Scale, k.Detailed = o.Scale, o.Detailed
	case FormatPNG:
		k.Scale, k.Detailed, k.PNGScale = o.Scale, o.Detailed, o.PNGScale
	case FormatNodes, FormatNodesJS:
		k.Indent, k.Undirected = o.Indent, o.Undirected
	}
	return k
}

// Cacheable reports whether format output depends only on the document
// and options. Snapshots carry a fresh ID and timestamp.
func Cacheable(format string) bool {
	return format != FormatJSON
}

// Result is the outcome of a pipeline run.
type Result struct {
	Network   *network.Network
	Digest    string
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats holds counts and stage timings.
type Stats struct {
	Stations   int
	Lines      int
	Waypoints  int
	LoadTime   time.Duration
	RenderTime time.Duration
}

// CacheInfo records which stages were served from the cache.
type CacheInfo struct {
	LoadHit   bool
	RenderHit bool // every artifact came from the cache
}
