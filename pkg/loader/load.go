package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	rgerrors "github.com/leafstorm/railgen/pkg/errors"
	"github.com/leafstorm/railgen/pkg/network"
	"github.com/leafstorm/railgen/pkg/vocab"
)

// Format identifies a document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// Formats lists the supported formats.
func Formats() []Format { return []Format{FormatYAML, FormatTOML, FormatJSON} }

// ParseFormat accepts a format name such as "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", rgerrors.New(rgerrors.ErrCodeUnsupported, "unsupported document format %q", s)
}

// FormatFromPath selects a format by file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", rgerrors.New(rgerrors.ErrCodeUnsupported, "cannot tell the format of %s without an extension", path)
	}
	return ParseFormat(ext)
}

// Decode decodes data in the given format.
func Decode(data []byte, format Format) (*Document, error) {
	switch format {
	case FormatYAML:
		return DecodeYAML(data)
	case FormatTOML:
		return DecodeTOML(data)
	case FormatJSON:
		return DecodeJSON(data)
	}
	return nil, rgerrors.New(rgerrors.ErrCodeUnsupported, "unsupported document format %q", format)
}

// Options controls how a document becomes a network.
type Options struct {
	// AllowOverwrite lets a repeated station name or line number replace
	// the earlier definition. By default a repeat is a DUPLICATE_KEY error.
	AllowOverwrite bool
}

// Load builds a network from doc.
//
// Stations are added first, then each line followed by its stops in path
// order. Vocabulary text is parsed as each line is added. The first failure
// aborts the load and no network is returned.
func Load(doc *Document, opts Options) (*network.Network, error) {
	if doc == nil {
		return nil, rgerrors.New(rgerrors.ErrCodeInvalidInput, "no document")
	}
	if err := vocab.CheckTables(); err != nil {
		return nil, err
	}
	if err := validate.Struct(doc); err != nil {
		return nil, invalid(err, "document")
	}

	var bopts []network.Option
	if doc.XRange != nil {
		bopts = append(bopts, network.WithXRange(doc.XRange.Min, doc.XRange.Max))
	}
	if doc.ZRange != nil {
		bopts = append(bopts, network.WithZRange(doc.ZRange.Min, doc.ZRange.Max))
	}
	if opts.AllowOverwrite {
		bopts = append(bopts, network.WithOverwrite())
	}
	b := network.NewBuilder(doc.Name, bopts...)

	for _, st := range doc.Stations {
		if _, err := b.AddStation(st.Name, st.X, st.Z, st.Notes); err != nil {
			return nil, fmt.Errorf("station %q: %w", st.Name, err)
		}
	}
	for _, ln := range doc.Lines {
		if err := addLine(b, ln); err != nil {
			return nil, fmt.Errorf("line %d: %w", ln.Number, err)
		}
	}
	return b.Build()
}

func addLine(b *network.Builder, ln LineSpec) error {
	direction, err := vocab.ParseDirection(ln.Direction)
	if err != nil {
		return err
	}
	flow, err := vocab.ParseFlow(ln.Flow)
	if err != nil {
		return err
	}
	level, err := vocab.ParseLevel(ln.Level)
	if err != nil {
		return err
	}
	typ, err := vocab.ParseType(ln.Type)
	if err != nil {
		return err
	}
	if _, err := b.AddLine(ln.Number, ln.Name, direction, flow, level, typ, ln.Notes); err != nil {
		return err
	}
	for i, stop := range ln.Stops {
		if err := b.AddStop(ln.Number, stop); err != nil {
			return fmt.Errorf("stop %d (%s): %w", i, stop, err)
		}
	}
	return nil
}

// LoadBytes decodes data in format and loads it.
func LoadBytes(data []byte, format Format, opts Options) (*network.Network, error) {
	doc, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return Load(doc, opts)
}

// LoadFile reads, decodes and loads the document at path. The format comes
// from the file extension. A missing file is FILE_NOT_FOUND.
func LoadFile(path string, opts Options) (*network.Network, error) {
	doc, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	net, err := Load(doc, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return net, nil
}

// ReadFile reads and decodes the document at path without building it.
func ReadFile(path string) (*Document, error) {
	data, format, err := ReadSource(path)
	if err != nil {
		return nil, err
	}
	doc, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// ReadSource returns the raw bytes of the document at path and the format
// named by its extension.
func ReadSource(path string) ([]byte, Format, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", rgerrors.Wrap(rgerrors.ErrCodeFileNotFound, err, "data file %s not found", path)
		}
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	return data, format, nil
}
