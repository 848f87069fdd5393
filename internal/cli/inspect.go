package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leafstorm/railgen/pkg/pipeline"
	"github.com/leafstorm/railgen/pkg/render/nodes"
)

// dumpCommand prints the plain-text listing.
func (c *CLI) dumpCommand() *cobra.Command {
	var noCache bool
	cmd := &cobra.Command{
		Use:               "dump DATA",
		Short:             "Print every line and station as plain text",
		Args:              requireData(1),
		ValidArgsFunction: completeData(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.execute(cmd.Context(), args[0], c.pipelineOptions(pipeline.FormatText), noCache)
			if err != nil {
				return err
			}
			return c.writeOutput("", res.Artifacts[pipeline.FormatText])
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

// checkCommand loads a document and reports its size.
func (c *CLI) checkCommand() *cobra.Command {
	var noCache bool
	cmd := &cobra.Command{
		Use:               "check DATA",
		Short:             "Validate a network document",
		Args:              requireData(1),
		ValidArgsFunction: completeData(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := c.load(cmd.Context(), args[0], noCache)
			if err != nil {
				return err
			}
			c.ui.success("%s is valid", StyleHighlight.Render(l.net.Name()))
			c.ui.stats(l.net.StationCount(), l.net.LineCount(), l.net.WaypointCount(), l.cached)
			if x, ok := l.net.XRange(); ok {
				c.ui.detail("x bound [%d, %d]", x.Min, x.Max)
			}
			if z, ok := l.net.ZRange(); ok {
				c.ui.detail("z bound [%d, %d]", z.Min, z.Max)
			}
			c.ui.nextStep("Render it", fmt.Sprintf("%s render %s", appName, args[0]))
			return nil
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

// nodesOpts holds the flags of the nodes command.
type nodesOpts struct {
	output     string
	javascript bool
	quiet      bool
	undirected bool
	noCache    bool
}

// nodesCommand writes the station neighbour map.
func (c *CLI) nodesCommand() *cobra.Command {
	var opts nodesOpts
	cmd := &cobra.Command{
		Use:   "nodes DATA",
		Short: "Write the station neighbour map for route finding",
		Long: `Write a JSON object mapping every station to its coordinates, notes and the
stations reachable from it in one hop. With -o the map is written to the file
and also echoed to stdout unless --quiet is given.`,
		Args:              requireData(1),
		ValidArgsFunction: completeData(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runNodes(cmd.Context(), args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.javascript, "javascript", false, `wrap the JSON as "stations = ...;"`)
	cmd.Flags().BoolVar(&opts.quiet, "quiet", false, "do not echo the map to stdout")
	cmd.Flags().BoolVar(&opts.undirected, "undirected", false, "link previous stops on one-way lines and wrap only two-way loops")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	return cmd
}

func (c *CLI) runNodes(ctx context.Context, data string, opts nodesOpts) error {
	format := pipeline.FormatNodes
	if opts.javascript {
		format = pipeline.FormatNodesJS
	}
	popts := c.pipelineOptions(format)
	popts.Undirected = opts.undirected
	res, err := c.execute(ctx, data, popts, opts.noCache)
	if err != nil {
		return err
	}
	if err := c.writeOutput(opts.output, res.Artifacts[format]); err != nil {
		return err
	}
	if opts.output == "" || opts.output == "-" || opts.quiet {
		return nil
	}

	// The echo is always indented JSON, whatever the file holds.
	mode := nodes.Directed
	if opts.undirected {
		mode = nodes.Undirected
	}
	return nodes.Write(c.out, nodes.BuildMode(res.Network, mode), nodes.Options{Indent: true})
}
