package manifest

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// isJSON reports whether data holds a JSON object, ignoring a leading BOM
// and whitespace.
func isJSON(data []byte) bool {
	data = bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	return len(data) > 0 && data[0] == '{'
}

// decodeJSON builds the same node tree yaml.Unmarshal would, from an
// encoding/json token stream. yaml.v3 rejects some valid JSON (the \/
// escape, keys longer than 1024 bytes), so JSON documents never reach it.
// Key order and duplicate keys are kept.
func decodeJSON(data []byte) (*yaml.Node, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	d := &jsonDecoder{src: data, dec: json.NewDecoder(bytes.NewReader(data))}
	d.dec.UseNumber()

	root, err := d.value()
	if err != nil {
		return nil, err
	}
	if _, err := d.dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("line %d: unexpected data after top-level value", d.line())
	}
	return root, nil
}

type jsonDecoder struct {
	src []byte
	dec *json.Decoder
}

// line returns the 1-based line of the next token.
func (d *jsonDecoder) line() int {
	off := min(int(d.dec.InputOffset()), len(d.src))
	for off < len(d.src) && bytes.IndexByte([]byte(" \t\r\n,:"), d.src[off]) >= 0 {
		off++
	}
	return bytes.Count(d.src[:off], []byte("\n")) + 1
}

func (d *jsonDecoder) value() (*yaml.Node, error) {
	line := d.line()
	tok, err := d.dec.Token()
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return d.object(line)
		case '[':
			return d.array(line)
		}
		return nil, fmt.Errorf("line %d: unexpected %q", line, t)
	case string:
		return scalar("!!str", t, line), nil
	case json.Number:
		return scalar("!!float", t.String(), line), nil
	case bool:
		return scalar("!!bool", fmt.Sprint(t), line), nil
	case nil:
		return scalar("!!null", "null", line), nil
	}
	return nil, fmt.Errorf("line %d: unexpected token %v", line, tok)
}

func (d *jsonDecoder) object(line int) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Line: line}
	for d.dec.More() {
		keyLine := d.line()
		tok, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("line %d: object key must be a string", keyLine)
		}
		v, err := d.value()
		if err != nil {
			return nil, err
		}
		n.Content = append(n.Content, scalar("!!str", key, keyLine), v)
	}
	if _, err := d.dec.Token(); err != nil {
		return nil, err
	}
	return n, nil
}

func (d *jsonDecoder) array(line int) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Line: line}
	for d.dec.More() {
		v, err := d.value()
		if err != nil {
			return nil, err
		}
		n.Content = append(n.Content, v)
	}
	if _, err := d.dec.Token(); err != nil {
		return nil, err
	}
	return n, nil
}

func scalar(tag, value string, line int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value, Line: line}
}
