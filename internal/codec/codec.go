// Package codec serializes sale record mappings to and from the two
// supported on-disk formats, JSON and XML.
//
// Decoding never produces a partial mapping: malformed input returns an
// error and the caller rejects the payload outright. Encoding is
// normalizing, so a decoded-then-reencoded file has a canonical layout
// regardless of how the original bytes were arranged.
package codec

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"sort"

	"github.com/salesrecords/salesd/internal/sale"
)

// Format identifies a supported file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// ParseFormat validates a format string from user input.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatXML:
		return FormatXML, nil
	}
	return "", fmt.Errorf("unsupported format: %q", s)
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	return string(f)
}

// Encode serializes a mapping in the given format.
//
// JSON output is indented UTF-8 with non-ASCII and HTML characters kept
// literal. XML output is a single <sale> root with one child element
// per key, children in sorted key order, preceded by an XML declaration.
func Encode(fields map[string]any, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return encodeJSON(fields)
	case FormatXML:
		return encodeXML(fields)
	}
	return nil, fmt.Errorf("unsupported format: %q", format)
}

// Decode parses bytes in the given format into a flat mapping.
// JSON numbers keep their literal form (json.Number); XML values are
// strings, with a missing text node decoded as the empty string.
func Decode(data []byte, format Format) (map[string]any, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatXML:
		return decodeXML(data)
	}
	return nil, fmt.Errorf("unsupported format: %q", format)
}

func encodeJSON(fields map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fields); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeJSON(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("decode json: document is not an object")
	}
	// Trailing non-whitespace after the object is malformed input.
	if err := dec.Decode(new(json.RawMessage)); err != io.EOF {
		return nil, fmt.Errorf("decode json: trailing data after document")
	}
	return fields, nil
}

func encodeXML(fields map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	root := xml.StartElement{Name: xml.Name{Local: "sale"}}
	if err := enc.EncodeToken(root); err != nil {
		return nil, fmt.Errorf("encode xml: %w", err)
	}
	for _, k := range keys {
		child := xml.StartElement{Name: xml.Name{Local: k}}
		if err := enc.EncodeElement(sale.ValueString(fields[k]), child); err != nil {
			return nil, fmt.Errorf("encode xml: %w", err)
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, fmt.Errorf("encode xml: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("encode xml: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// decodeXML reads a single-root document and returns each child
// element's tag as key and its character data as value. Anything other
// than one well-formed root element surrounded by whitespace, comments,
// or declarations is a parse error.
func decodeXML(data []byte) (map[string]any, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	root, err := nextStart(dec)
	if err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}

	fields := make(map[string]any)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("decode xml: unexpected end of document")
		}
		if err != nil {
			return nil, fmt.Errorf("decode xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var text string
			if err := dec.DecodeElement(&text, &t); err != nil {
				return nil, fmt.Errorf("decode xml: %w", err)
			}
			fields[t.Name.Local] = text
		case xml.EndElement:
			if t.Name.Local == root.Name.Local {
				if err := expectEOF(dec); err != nil {
					return nil, fmt.Errorf("decode xml: %w", err)
				}
				return fields, nil
			}
		}
	}
}

// nextStart advances to the document's root element. Non-whitespace
// character data before it is malformed input, not skippable noise.
func nextStart(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return t, nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return xml.StartElement{}, fmt.Errorf("text before document element")
			}
		}
	}
}

// expectEOF fails unless only whitespace and comments remain after the
// root element: trailing text, or a second root, is malformed input.
func expectEOF(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return fmt.Errorf("trailing data after document element")
			}
		case xml.Comment:
		default:
			return fmt.Errorf("trailing data after document element")
		}
	}
}
