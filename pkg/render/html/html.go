// Package html renders a rail network through html/template.
//
// The built-in listing template ([DefaultTemplate]) produces one page with a
// section per line and per station, cross-linked by anchor ids. Custom
// templates receive the same [Page] value and can traverse the network
// with range over its iterator methods:
//
//	{{range $line := .Network.Lines}}
//	  <h2 id="{{$line.HTMLID}}">{{$line}}</h2>
//	  {{range $st, $landing := $line.Stops}}{{$st.Name}} {{$landing}}{{end}}
//	{{end}}
//
// Accessors that can fail, such as Line.Color, stop execution with their
// error.
package html

import (
	"bytes"
	"cmp"
	_ "embed"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	rgerrors "github.com/leafstorm/railgen/pkg/errors"
	"github.com/leafstorm/railgen/pkg/network"
)

// DefaultStylesheet is the stylesheet URL pages link when none is given.
const DefaultStylesheet = "rail-style.css"

//go:embed assets/listing.html.tmpl
var listingTemplate string

//go:embed assets/rail-style.css
var railStyle []byte

// Stylesheet returns the bundled stylesheet served as [DefaultStylesheet].
func Stylesheet() []byte {
	return railStyle
}

// Page is the data handed to a template.
type Page struct {
	Network    *network.Network
	Stylesheet string
	Generator  string
}

// Funcs are the helpers available to every template.
var Funcs = template.FuncMap{
	"scaled": func(st *network.Station, axis string, scale int) int {
		if axis == "z" {
			return st.RelativeCoordinate(network.AxisZ, scale)
		}
		return st.RelativeCoordinate(network.AxisX, scale)
	},
	"slug": network.Slugify,
}

var (
	defaultTmpl     *template.Template
	defaultTmplOnce sync.Once
)

// DefaultTemplate returns the built-in listing template. It is parsed once.
func DefaultTemplate() *template.Template {
	defaultTmplOnce.Do(func() {
		defaultTmpl = template.Must(template.New("listing").Funcs(Funcs).Parse(listingTemplate))
	})
	return defaultTmpl
}

// ParseTemplateFile parses a user template. The template is named after the
// file's base name.
func ParseTemplateFile(path string) (*template.Template, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, rgerrors.Wrap(rgerrors.ErrCodeFileNotFound, err, "template %s not found", path)
		}
		return nil, rgerrors.Wrap(rgerrors.ErrCodeInternal, err, "read template %s", path)
	}
	return ParseTemplate(filepath.Base(path), string(src))
}

// ParseTemplate parses template source with [Funcs] installed.
func ParseTemplate(name, src string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(Funcs).Parse(src)
	if err != nil {
		return nil, rgerrors.Wrap(rgerrors.ErrCodeInvalidFormat, err, "parse template %s", name)
	}
	return tmpl, nil
}

// Render executes tmpl for page and writes the result to w. Nothing is
// written if execution fails. A nil tmpl means [DefaultTemplate] and an
// empty stylesheet means [DefaultStylesheet].
func Render(w io.Writer, tmpl *template.Template, page Page) error {
	if tmpl == nil {
		tmpl = DefaultTemplate()
	}
	if page.Stylesheet == "" {
		page.Stylesheet = DefaultStylesheet
	}
	if page.Generator == "" {
		page.Generator = "railgen"
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, page); err != nil {
		return rgerrors.Wrap(cmp.Or(rgerrors.GetCode(err), rgerrors.ErrCodeInternal), err, "execute template %s", tmpl.Name())
	}
	_, err := buf.WriteTo(w)
	return err
}

// OutputPath derives the default output file for a render: the template's
// base name with .html when a template is given, else the data file's.
func OutputPath(dataPath, templatePath string) string {
	base := dataPath
	if templatePath != "" {
		base = templatePath
	}
	base = filepath.Base(base)
	for ext := filepath.Ext(base); ext != ""; ext = filepath.Ext(base) {
		base = strings.TrimSuffix(base, ext)
	}
	return base + ".html"
}
