package cli

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	rgerrors "github.com/leafstorm/railgen/pkg/errors"
	"github.com/leafstorm/railgen/pkg/httputil"
	"github.com/leafstorm/railgen/pkg/pipeline"
	"github.com/leafstorm/railgen/pkg/render/html"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output     string // output file; derived from the template or data name when empty
	stylesheet string // stylesheet URL linked from the page
	noCache    bool   // bypass the artifact cache
	refresh    bool   // re-render even when cached
}

// renderCommand creates the render command: DATA [TEMPLATE] to HTML.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render DATA [TEMPLATE]",
		Short: "Render a network to HTML",
		Long: `Render a network document to an HTML page.

Without TEMPLATE the built-in listing is used and the page is written to the
data file's base name with .html. With TEMPLATE (a Go html/template file) the
page is written to the template's base name with .html.`,
		Example: `  railgen render metro.yml
  railgen render metro.yml templates/map.html.tmpl -o public/index.html`,
		Args:              requireData(2),
		ValidArgsFunction: completeData(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var template string
			if len(args) == 2 {
				template = args[1]
			}
			return c.runRender(cmd.Context(), args[0], template, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default derived from TEMPLATE or DATA)")
	cmd.Flags().StringVar(&opts.stylesheet, "stylesheet", "", "stylesheet URL (default rail-style.css)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, data, template string, opts renderOpts) error {
	prog := newProgress(c.Logger)

	popts := c.pipelineOptions(pipeline.FormatHTML)
	popts.Refresh = opts.refresh
	if opts.stylesheet != "" {
		popts.Stylesheet = opts.stylesheet
	}
	if template != "" {
		src, err := os.ReadFile(template)
		if err != nil {
			return rgerrors.Wrap(rgerrors.ErrCodeFileNotFound, err, "template %s", template)
		}
		popts.Template = string(src)
		popts.TemplateName = filepath.Base(template)
	}

	res, err := c.execute(ctx, data, popts, opts.noCache)
	if err != nil {
		return err
	}

	out := opts.output
	if out == "" {
		out = html.OutputPath(sourceBase(data), template)
	}
	if err := c.writeOutput(out, res.Artifacts[pipeline.FormatHTML]); err != nil {
		return err
	}
	prog.done("Rendered " + res.Network.Name())
	if out == "-" {
		return nil
	}
	c.ui.success("Rendered %s", StyleHighlight.Render(res.Network.Name()))
	c.ui.stats(res.Stats.Stations, res.Stats.Lines, res.Stats.Waypoints, res.CacheInfo.RenderHit)
	c.ui.file(out)
	return nil
}

// sourceBase strips the query from a URL source so output names derive
// from the document name.
func sourceBase(source string) string {
	if httputil.IsURL(source) {
		return httputil.Source(source)
	}
	return source
}

// =============================================================================
// dot
// =============================================================================

// dotOpts holds the flags of the dot command.
type dotOpts struct {
	output   string
	format   string
	scale    int
	detailed bool
	pngScale float64
	noCache  bool
}

var dotFormats = []string{pipeline.FormatDOT, pipeline.FormatSVG, pipeline.FormatPDF, pipeline.FormatPNG}

// dotCommand creates the dot command for Graphviz diagrams.
func (c *CLI) dotCommand() *cobra.Command {
	opts := dotOpts{format: pipeline.FormatDOT, scale: pipeline.DefaultScale, pngScale: pipeline.DefaultPNGScale}

	cmd := &cobra.Command{
		Use:   "dot DATA",
		Short: "Render a network as a Graphviz diagram",
		Long: `Render a network as a node-link diagram with stations pinned at their
coordinates. DOT source goes to stdout unless -o is given; svg, pdf and png
are written next to the data file by default. pdf and png need rsvg-convert.`,
		Args:              requireData(1),
		ValidArgsFunction: completeData(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(dotFormats, opts.format) {
				return rgerrors.New(rgerrors.ErrCodeUnsupported,
					"invalid format %q (must be one of: %s)", opts.format, strings.Join(dotFormats, ", "))
			}
			return c.runDot(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg, pdf, png")
	cmd.Flags().IntVar(&opts.scale, "scale", opts.scale, "divide coordinates by this factor")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label stations with coordinates and notes")
	cmd.Flags().Float64Var(&opts.pngScale, "png-scale", opts.pngScale, "zoom factor for png output")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runDot(ctx context.Context, data string, opts dotOpts) error {
	prog := newProgress(loggerFromContext(ctx))
	popts := c.pipelineOptions(opts.format)
	popts.Scale, popts.Detailed, popts.PNGScale = opts.scale, opts.detailed, opts.pngScale

	var (
		res *pipeline.Result
		err error
	)
	if opts.format == pipeline.FormatDOT {
		res, err = c.execute(ctx, data, popts, opts.noCache)
	} else {
		sp := c.newSpinner(ctx, "Running Graphviz")
		res, err = c.execute(ctx, data, popts, opts.noCache)
		sp.Stop()
	}
	if err != nil {
		return err
	}

	out := opts.output
	if out == "" && opts.format != pipeline.FormatDOT {
		out = withExt(sourceBase(data), opts.format)
	}
	if err := c.writeOutput(out, res.Artifacts[opts.format]); err != nil {
		return err
	}
	prog.done("Rendered " + opts.format)
	if out != "" && out != "-" {
		c.ui.success("Wrote %s diagram of %s", opts.format, StyleHighlight.Render(res.Network.Name()))
		c.ui.file(out)
	}
	return nil
}

// withExt replaces every extension of path's base name with ext.
func withExt(path, ext string) string {
	base := filepath.Base(path)
	for e := filepath.Ext(base); e != ""; e = filepath.Ext(base) {
		base = strings.TrimSuffix(base, e)
	}
	return base + "." + ext
}
