package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/leafstorm/railgen/pkg/cache"
	"github.com/leafstorm/railgen/pkg/loader"
	"github.com/leafstorm/railgen/pkg/network"
	"github.com/leafstorm/railgen/pkg/observability"
)

// Runner executes the pipeline against a cache. It holds no per-run state
// and is safe for concurrent use.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner returns a runner. A nil cache disables caching; a nil keyer
// means [cache.DefaultKeyer].
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger, TTL: DefaultTTL}
}

// ExecuteFile runs the pipeline on the document at path.
func (r *Runner) ExecuteFile(ctx context.Context, path string, opts Options) (*Result, error) {
	data, format, err := loader.ReadSource(path)
	if err != nil {
		return nil, err
	}
	res, err := r.Execute(ctx, path, data, format, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// Execute loads data and renders every requested format. source names the
// document in logs.
func (r *Runner) Execute(ctx context.Context, source string, data []byte, format loader.Format, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	loadStart := time.Now()
	net, digest, loadHit, err := r.LoadWithCacheInfo(ctx, source, data, format, opts)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Network: net,
		Digest:  digest,
		Stats: Stats{
			Stations:  net.StationCount(),
			Lines:     net.LineCount(),
			Waypoints: net.WaypointCount(),
			LoadTime:  time.Since(loadStart),
		},
		CacheInfo: CacheInfo{LoadHit: loadHit},
	}
	r.Logger.Debug("loaded network",
		"name", net.Name(),
		"stations", res.Stats.Stations,
		"lines", res.Stats.Lines,
		"cached", loadHit)

	renderStart := time.Now()
	res.Artifacts, res.CacheInfo.RenderHit, err = r.RenderWithCacheInfo(ctx, net, digest, opts)
	if err != nil {
		return nil, err
	}
	res.Stats.RenderTime = time.Since(renderStart)
	r.Logger.Debug("rendered", "formats", opts.Formats, "cached", res.CacheInfo.RenderHit)
	return res, nil
}

// Load builds the network described by data. See LoadWithCacheInfo.
func (r *Runner) Load(ctx context.Context, source string, data []byte, format loader.Format, opts Options) (*network.Network, string, error) {
	net, digest, _, err := r.LoadWithCacheInfo(ctx, source, data, format, opts)
	return net, digest, err
}

// LoadWithCacheInfo decodes data, consulting the cache for an already
// decoded document, and builds the network. It returns the document digest
// used to key artifacts.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, source string, data []byte, format loader.Format, opts Options) (*network.Network, string, bool, error) {
	if err := contextErr(ctx); err != nil {
		return nil, "", false, err
	}
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)
	start := time.Now()

	digest := cache.Hash(append([]byte(string(format)+"\x00"), data...))
	doc, hit := r.cachedDocument(ctx, digest, opts)
	var err error
	if !hit {
		if doc, err = loader.Decode(data, format); err == nil {
			r.store(ctx, "document", r.Keyer.DocumentKey(digest), doc)
		}
	}

	var net *network.Network
	if err == nil {
		net, err = loader.Load(doc, loader.Options{AllowOverwrite: opts.AllowOverwrite})
	}
	if err != nil {
		hooks.OnLoadComplete(ctx, source, 0, 0, time.Since(start), err)
		return nil, "", false, err
	}
	hooks.OnLoadComplete(ctx, source, net.StationCount(), net.LineCount(), time.Since(start), nil)
	return net, digest, hit, nil
}

func (r *Runner) cachedDocument(ctx context.Context, digest string, opts Options) (*loader.Document, bool) {
	if opts.Refresh {
		return nil, false
	}
	data, ok := r.get(ctx, "document", r.Keyer.DocumentKey(digest))
	if !ok {
		return nil, false
	}
	var doc loader.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false
	}
	return &doc, true
}

func (r *Runner) store(ctx context.Context, kind, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	r.set(ctx, kind, key, data)
}

// Render renders every format in opts. See RenderWithCacheInfo.
func (r *Runner) Render(ctx context.Context, net *network.Network, digest string, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, net, digest, opts)
	return artifacts, err
}

// RenderWithCacheInfo renders every format in opts, serving each from the
// cache when possible. The flag reports whether all of them were cached.
// An empty digest disables the cache for this call.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, net *network.Network, digest string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	artifacts := make(map[string][]byte, len(opts.Formats))
	allHit := true

	for _, format := range opts.Formats {
		if err := contextErr(ctx); err != nil {
			return nil, false, err
		}
		cacheable := digest != "" && Cacheable(format)
		key := r.Keyer.ArtifactKey(digest, opts.ArtifactKeyOpts(format))

		if cacheable && !opts.Refresh {
			if data, ok := r.get(ctx, format, key); ok {
				artifacts[format] = data
				continue
			}
		}
		allHit = false

		data, err := RenderFormat(ctx, net, format, opts)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
		if cacheable {
			r.set(ctx, format, key, data)
		}
	}
	return artifacts, allHit, nil
}

// get reads the cache. Backend errors are reported to the hooks and treated
// as misses.
func (r *Runner) get(ctx context.Context, kind, key string) ([]byte, bool) {
	hooks := observability.Cache()
	data, hit, err := r.Cache.Get(ctx, key)
	switch {
	case err != nil:
		hooks.OnCacheError(ctx, kind, err)
		return nil, false
	case !hit:
		hooks.OnCacheMiss(ctx, kind)
		return nil, false
	}
	hooks.OnCacheHit(ctx, kind)
	return data, true
}

func (r *Runner) set(ctx context.Context, kind, key string, data []byte) {
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		observability.Cache().OnCacheError(ctx, kind, err)
		return
	}
	observability.Cache().OnCacheSet(ctx, kind, len(data))
}

// Close closes the cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}
