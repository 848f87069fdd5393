package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	rgerrors "github.com/leafstorm/railgen/pkg/errors"
	"github.com/leafstorm/railgen/pkg/export/sqlite"
	"github.com/leafstorm/railgen/pkg/pipeline"
)

const exportSQLite = "sqlite"

var exportFormats = []string{pipeline.FormatGeoJSON, exportSQLite, pipeline.FormatJSON}

// exportOpts holds the flags of the export command.
type exportOpts struct {
	output  string
	format  string
	noCache bool
}

// exportCommand writes the network in a data interchange format.
func (c *CLI) exportCommand() *cobra.Command {
	opts := exportOpts{format: pipeline.FormatGeoJSON}
	cmd := &cobra.Command{
		Use:   "export DATA",
		Short: "Export a network as GeoJSON, SQLite or a snapshot",
		Long: `Export a network for other tools:

  geojson  a FeatureCollection of station points and line paths
  sqlite   a database with stations, lines and stops tables
  json     a snapshot: the normalized document with an id and digest`,
		Example: `  railgen export metro.yml -f geojson -o metro.geojson
  railgen export metro.yml -f sqlite -o metro.db`,
		Args:              requireData(1),
		ValidArgsFunction: completeData(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case !containsFold(exportFormats, opts.format):
				return rgerrors.New(rgerrors.ErrCodeUnsupported,
					"invalid format %q (must be one of: %s)", opts.format, strings.Join(exportFormats, ", "))
			case opts.format == exportSQLite && (opts.output == "" || opts.output == "-"):
				return rgerrors.New(rgerrors.ErrCodeInvalidInput, "sqlite export needs an output file (-o)")
			}
			return c.runExport(cmd.Context(), args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout; required for sqlite)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "export format: geojson, sqlite, json")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	return cmd
}

func (c *CLI) runExport(ctx context.Context, data string, opts exportOpts) error {
	format := strings.ToLower(opts.format)
	if format == exportSQLite {
		l, err := c.load(ctx, data, opts.noCache)
		if err != nil {
			return err
		}
		if err := sqlite.Export(ctx, l.net, opts.output); err != nil {
			return err
		}
		loggerFromContext(ctx).Debug("exported", "format", exportSQLite, "path", opts.output)
		c.ui.success("Exported %s to SQLite", StyleHighlight.Render(l.net.Name()))
		c.ui.file(opts.output)
		return nil
	}

	res, err := c.execute(ctx, data, c.pipelineOptions(format), opts.noCache)
	if err != nil {
		return err
	}
	if err := c.writeOutput(opts.output, res.Artifacts[format]); err != nil {
		return err
	}
	if opts.output != "" && opts.output != "-" {
		c.ui.success("Exported %s as %s", StyleHighlight.Render(res.Network.Name()), format)
		c.ui.file(opts.output)
	}
	return nil
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
