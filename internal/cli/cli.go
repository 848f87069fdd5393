package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/leafstorm/railgen/internal/config"
	"github.com/leafstorm/railgen/pkg/buildinfo"
	"github.com/leafstorm/railgen/pkg/cache"
	rgerrors "github.com/leafstorm/railgen/pkg/errors"
	"github.com/leafstorm/railgen/pkg/httputil"
	"github.com/leafstorm/railgen/pkg/loader"
	"github.com/leafstorm/railgen/pkg/network"
	"github.com/leafstorm/railgen/pkg/observability"
	"github.com/leafstorm/railgen/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "railgen"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	out    io.Writer
	errOut io.Writer
	ui     *printer

	configPath     string
	verbose        bool
	allowOverwrite bool
}

// New creates a CLI writing results to out and logs to errw.
func New(out, errw io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(errw, level),
		Config: config.Default(),
		out:    out,
		errOut: errw,
		ui:     newPrinter(out),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "railgen renders rail network documents",
		Long: `railgen reads a rail network described in YAML, TOML or JSON and renders it
as an HTML listing, a text dump, a Graphviz diagram, a station neighbour map,
GeoJSON or SQLite, or serves it over HTTP.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			if cfg.Path != "" {
				c.Logger.Debug("loaded config", "path", cfg.Path)
			}
			observability.NewLogHooks(c.Logger).Register()
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}
	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.out)

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&c.configPath, "config", "", "config file (default $RAILGEN_CONFIG or the user config dir)")
	flags.BoolVar(&c.allowOverwrite, "allow-overwrite", false, "let later stations and lines replace earlier ones with the same key")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.dumpCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.nodesCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.publishCommand())
	root.AddCommand(c.snapshotsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Arguments
// =============================================================================

// requireData accepts DATA plus up to max-1 further arguments. A missing
// DATA fails with the command's usage text.
func requireData(max int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return rgerrors.New(rgerrors.ErrCodeInvalidInput, "missing DATA argument\n\n%s",
				strings.TrimRight(cmd.UsageString(), "\n"))
		}
		return cobra.MaximumNArgs(max)(cmd, args)
	}
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(cc, nil, c.Logger)
	if ttl := c.Config.Cache.TTL.Std(); ttl > 0 {
		r.TTL = ttl
	}
	return r, nil
}

func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Debug("caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// pipelineOptions returns run options for formats with the CLI defaults.
func (c *CLI) pipelineOptions(formats ...string) pipeline.Options {
	return pipeline.Options{
		Formats:        formats,
		Stylesheet:     c.Config.Render.Stylesheet,
		Generator:      buildinfo.Generator(),
		AllowOverwrite: c.allowOverwrite,
		Logger:         c.Logger,
	}
}

// =============================================================================
// Sources
// =============================================================================

// readSource reads a local file or fetches an http(s) URL. The returned
// name identifies the document in logs and errors.
func (c *CLI) readSource(ctx context.Context, source string, cc cache.Cache) ([]byte, loader.Format, string, error) {
	if !httputil.IsURL(source) {
		data, format, err := loader.ReadSource(source)
		return data, format, source, err
	}
	name := httputil.Source(source)
	sp := c.newSpinner(ctx, "Fetching "+name)
	data, format, err := httputil.NewFetcher(cc).Fetch(ctx, source)
	sp.Stop()
	if err != nil {
		return nil, "", name, err
	}
	c.Logger.Debug("fetched", "url", name, "bytes", len(data), "format", format)
	return data, format, name, nil
}

// newSpinner starts a spinner on the log writer. It stays silent at debug
// level.
func (c *CLI) newSpinner(ctx context.Context, message string) *Spinner {
	sp := newSpinnerWithContext(ctx, c.errOut, c.Logger.GetLevel() <= log.DebugLevel, message)
	sp.Start()
	return sp
}

// execute runs the pipeline on source.
func (c *CLI) execute(ctx context.Context, source string, opts pipeline.Options, noCache bool) (*pipeline.Result, error) {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	data, format, name, err := c.readSource(ctx, source, runner.Cache)
	if err != nil {
		return nil, err
	}
	res, err := runner.Execute(ctx, name, data, format, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return res, nil
}

// loaded is a network ready for commands that do not render through the
// pipeline.
type loaded struct {
	net    *network.Network
	digest string
	cached bool
}

// load builds the network at source without rendering.
func (c *CLI) load(ctx context.Context, source string, noCache bool) (*loaded, error) {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	data, format, name, err := c.readSource(ctx, source, runner.Cache)
	if err != nil {
		return nil, err
	}
	opts := c.pipelineOptions()
	net, digest, hit, err := runner.LoadWithCacheInfo(ctx, name, data, format, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &loaded{net: net, digest: digest, cached: hit}, nil
}

// =============================================================================
// Output
// =============================================================================

// writeOutput writes data to path, or to the CLI's output for "" and "-".
func (c *CLI) writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := c.out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "write %s", path)
	}
	return nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, else the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/railgen/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
