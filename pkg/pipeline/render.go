package pipeline

import (
	"bytes"
	"context"
	"html/template"
	"time"

	rgerrors "github.com/leafstorm/railgen/pkg/errors"
	"github.com/leafstorm/railgen/pkg/network"
	"github.com/leafstorm/railgen/pkg/observability"
	"github.com/leafstorm/railgen/pkg/render"
	"github.com/leafstorm/railgen/pkg/render/geojson"
	"github.com/leafstorm/railgen/pkg/render/html"
	"github.com/leafstorm/railgen/pkg/render/nodelink"
	"github.com/leafstorm/railgen/pkg/render/nodes"
	"github.com/leafstorm/railgen/pkg/render/text"
	"github.com/leafstorm/railgen/pkg/snapshot"
)

// RenderFormat renders net as one artifact, bypassing the cache.
// opts must already have defaults applied.
func RenderFormat(ctx context.Context, net *network.Network, format string, opts Options) ([]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()

	data, err := renderFormat(ctx, net, format, opts)
	hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func renderFormat(ctx context.Context, net *network.Network, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatHTML:
		return renderHTML(net, opts)
	case FormatText:
		var buf bytes.Buffer
		err := text.Dump(&buf, net)
		return buf.Bytes(), err
	case FormatDOT:
		dot, err := toDOT(net, opts)
		return []byte(dot), err
	case FormatSVG, FormatPDF, FormatPNG:
		return renderGraphviz(ctx, net, format, opts)
	case FormatNodes, FormatNodesJS:
		var buf bytes.Buffer
		mode := nodes.Directed
		if opts.Undirected {
			mode = nodes.Undirected
		}
		err := nodes.Write(&buf, nodes.BuildMode(net, mode), nodes.Options{
			JavaScript: format == FormatNodesJS,
			Indent:     opts.Indent,
		})
		return buf.Bytes(), err
	case FormatGeoJSON:
		return geojson.Marshal(net)
	case FormatJSON:
		return snapshot.Marshal(snapshot.New(net))
	}
	return nil, ValidateFormat(format)
}

func renderHTML(net *network.Network, opts Options) ([]byte, error) {
	tmpl := html.DefaultTemplate()
	if opts.Template != "" {
		var err error
		if tmpl, err = html.ParseTemplate(opts.TemplateName, opts.Template); err != nil {
			return nil, err
		}
	}
	return executeHTML(tmpl, net, opts)
}

func executeHTML(tmpl *template.Template, net *network.Network, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	err := html.Render(&buf, tmpl, html.Page{
		Network:    net,
		Stylesheet: opts.Stylesheet,
		Generator:  opts.Generator,
	})
	return buf.Bytes(), err
}

func toDOT(net *network.Network, opts Options) (string, error) {
	return nodelink.ToDOT(net, nodelink.Options{Scale: opts.Scale, Detailed: opts.Detailed})
}

func renderGraphviz(ctx context.Context, net *network.Network, format string, opts Options) ([]byte, error) {
	dot, err := toDOT(net, opts)
	if err != nil {
		return nil, err
	}
	svg, err := nodelink.RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatPDF:
		return render.ToPDF(ctx, svg)
	case FormatPNG:
		return render.ToPNG(ctx, svg, opts.PNGScale)
	}
	return svg, nil
}

// contextErr turns a cancelled context into an error carrying a code.
func contextErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return rgerrors.Wrap(rgerrors.ErrCodeInternal, err, "pipeline cancelled")
	}
	return nil
}
