package loader

import (
	"fmt"

	"gopkg.in/yaml.v3"

	rgerrors "github.com/leafstorm/railgen/pkg/errors"
)

// DecodeYAML decodes a YAML network document.
//
// The document is walked as a node tree rather than unmarshalled into maps,
// so stations and lines keep their declaration order and a repeated key
// yields two entries instead of a decode error. Whether the repetition is
// accepted is decided later by [Load].
func DecodeYAML(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, rgerrors.Wrap(rgerrors.ErrCodeInvalidFormat, err, "parse yaml")
	}
	if len(root.Content) == 0 {
		return nil, rgerrors.New(rgerrors.ErrCodeInvalidInput, "document is empty")
	}

	top := root.Content[0]
	pairs, err := yamlPairs("document", top)
	if err != nil {
		return nil, err
	}

	doc := &Document{}
	for _, kv := range pairs {
		key, val := kv[0].Value, kv[1]
		switch key {
		case "name":
			if err := val.Decode(&doc.Name); err != nil {
				return nil, yamlErr(err, "name")
			}
		case "xrange", "zrange":
			var raw any
			if err := val.Decode(&raw); err != nil {
				return nil, yamlErr(err, key)
			}
			b, err := boundsFrom(key, raw)
			if err != nil {
				return nil, err
			}
			if key == "xrange" {
				doc.XRange = b
			} else {
				doc.ZRange = b
			}
		case "stations":
			if doc.Stations, err = yamlStations(val); err != nil {
				return nil, err
			}
		case "lines":
			if doc.Lines, err = yamlLines(val); err != nil {
				return nil, err
			}
		}
	}
	return doc, nil
}

func yamlStations(node *yaml.Node) ([]StationSpec, error) {
	pairs, err := yamlPairs("stations", node)
	if err != nil {
		return nil, err
	}
	out := make([]StationSpec, 0, len(pairs))
	for _, kv := range pairs {
		name := kv[0].Value
		var f stationFields
		if err := kv[1].Decode(&f); err != nil {
			return nil, yamlErr(err, fmt.Sprintf("station %q", name))
		}
		st, err := f.spec(name)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

func yamlLines(node *yaml.Node) ([]LineSpec, error) {
	pairs, err := yamlPairs("lines", node)
	if err != nil {
		return nil, err
	}
	out := make([]LineSpec, 0, len(pairs))
	for _, kv := range pairs {
		var f lineFields
		if err := kv[1].Decode(&f); err != nil {
			return nil, yamlErr(err, fmt.Sprintf("line %s", kv[0].Value))
		}
		ln, err := f.spec(kv[0].Value)
		if err != nil {
			return nil, err
		}
		out = append(out, ln)
	}
	return out, nil
}

// yamlPairs returns the key/value nodes of a mapping in document order.
// An explicit null counts as an empty mapping.
func yamlPairs(what string, node *yaml.Node) ([][2]*yaml.Node, error) {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, rgerrors.New(rgerrors.ErrCodeInvalidInput,
			"%s must be a mapping (line %d)", what, node.Line)
	}
	pairs := make([][2]*yaml.Node, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		pairs = append(pairs, [2]*yaml.Node{node.Content[i], node.Content[i+1]})
	}
	return pairs, nil
}

func yamlErr(err error, what string) error {
	return rgerrors.Wrap(rgerrors.ErrCodeInvalidFormat, err, "decode %s", what)
}
