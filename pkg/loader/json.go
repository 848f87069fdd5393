package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	rgerrors "github.com/leafstorm/railgen/pkg/errors"
)

// DecodeJSON decodes a JSON network document. Line keys are strings holding
// integers ("1"), as JSON object keys must be strings.
//
// The top level and the stations and lines objects are read token by token
// so declaration order and repeated keys are preserved, as with YAML.
func DecodeJSON(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	doc := &Document{}
	err := eachMember(dec, "document", func(key string) error {
		switch key {
		case "name":
			return jsonValue(dec, key, &doc.Name)
		case "xrange", "zrange":
			var raw any
			if err := jsonValue(dec, key, &raw); err != nil {
				return err
			}
			b, err := boundsFrom(key, raw)
			if key == "xrange" {
				doc.XRange = b
			} else {
				doc.ZRange = b
			}
			return err
		case "stations":
			return eachMember(dec, "stations", func(name string) error {
				var f stationFields
				if err := jsonValue(dec, fmt.Sprintf("station %q", name), &f); err != nil {
					return err
				}
				st, err := f.spec(name)
				if err == nil {
					doc.Stations = append(doc.Stations, st)
				}
				return err
			})
		case "lines":
			return eachMember(dec, "lines", func(number string) error {
				var f lineFields
				if err := jsonValue(dec, "line "+number, &f); err != nil {
					return err
				}
				ln, err := f.spec(number)
				if err == nil {
					doc.Lines = append(doc.Lines, ln)
				}
				return err
			})
		default:
			var skip json.RawMessage
			return jsonValue(dec, key, &skip)
		}
	})
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, rgerrors.New(rgerrors.ErrCodeInvalidFormat, "parse json: trailing data after document")
	}
	return doc, nil
}

// eachMember reads one JSON object, calling fn with each key while the
// decoder is positioned on the matching value. A null counts as an empty
// object.
func eachMember(dec *json.Decoder, what string, fn func(key string) error) error {
	tok, err := dec.Token()
	if err != nil {
		return rgerrors.Wrap(rgerrors.ErrCodeInvalidFormat, err, "parse json %s", what)
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return rgerrors.New(rgerrors.ErrCodeInvalidInput, "%s must be an object", what)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return rgerrors.Wrap(rgerrors.ErrCodeInvalidFormat, err, "parse json %s", what)
		}
		if err := fn(tok.(string)); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return rgerrors.Wrap(rgerrors.ErrCodeInvalidFormat, err, "parse json %s", what)
	}
	return nil
}

func jsonValue(dec *json.Decoder, what string, v any) error {
	if err := dec.Decode(v); err != nil {
		return rgerrors.Wrap(rgerrors.ErrCodeInvalidFormat, err, "decode %s", what)
	}
	return nil
}
