package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/coachme/dsview/internal/dataset"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// jsonBody returns data without a byte order mark and reports whether it
// starts like a JSON array or object.
func jsonBody(data []byte) ([]byte, bool) {
	body := bytes.TrimPrefix(data, utf8BOM)
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 {
		return body, false
	}
	return body, trimmed[0] == '[' || trimmed[0] == '{'
}

// decodeJSON parses a JSON document into the node shapes the YAML decoder
// yields ([]any, yaml.MapSlice, scalars), with numbers kept as json.Number.
func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	doc, err := jsonNode(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			return nil, errors.New("unexpected data after top-level value")
		}
		return nil, err
	}
	return doc, nil
}

func jsonNode(dec *json.Decoder) (any, error) {
	tok, err := nextToken(dec)
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '[':
		items := []any{}
		for dec.More() {
			item, err := jsonNode(dec)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		if _, err := nextToken(dec); err != nil {
			return nil, err
		}
		return items, nil
	case '{':
		ms := yaml.MapSlice{}
		for dec.More() {
			key, err := nextToken(dec)
			if err != nil {
				return nil, err
			}
			value, err := jsonNode(dec)
			if err != nil {
				return nil, fmt.Errorf("%v: %w", key, err)
			}
			ms = append(ms, yaml.MapItem{Key: key, Value: value})
		}
		if _, err := nextToken(dec); err != nil {
			return nil, err
		}
		return ms, nil
	}
	return nil, fmt.Errorf("unexpected delimiter %q", delim)
}

// nextToken treats end of input inside a value as truncation.
func nextToken(dec *json.Decoder) (json.Token, error) {
	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, io.ErrUnexpectedEOF
	}
	return tok, err
}

// numberValue keeps integers as ints and everything with a fraction or an
// exponent as a float.
func numberValue(n json.Number) (dataset.Value, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return dataset.Int(i), nil
		}
	}
	f, err := n.Float64()
	if err != nil {
		return dataset.Value{}, fmt.Errorf("number %s: %w", s, err)
	}
	return dataset.Float(f), nil
}
