package llsd

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNoDocument is returned when the input holds no <llsd> root element.
var ErrNoDocument = errors.New("llsd: no <llsd> root element")

// SyntaxError describes malformed LLSD content inside a well-formed XML document.
type SyntaxError struct {
	Element string
	Msg     string
}

func (e *SyntaxError) Error() string {
	if e.Element == "" {
		return "llsd: " + e.Msg
	}
	return fmt.Sprintf("llsd: <%s>: %s", e.Element, e.Msg)
}

// Unmarshal parses an LLSD XML document and returns the value it holds.
// An empty <llsd/> document decodes to nil.
func Unmarshal(data []byte) (any, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	root, err := findRoot(dec)
	if err != nil {
		return nil, err
	}

	start, end, err := nextElement(dec)
	if err != nil {
		return nil, err
	}
	if end {
		return nil, nil
	}

	value, err := decodeValue(dec, start)
	if err != nil {
		return nil, err
	}

	_, end, err = nextElement(dec)
	if err != nil {
		return nil, err
	}
	if !end {
		return nil, &SyntaxError{Element: root.Name.Local, Msg: "more than one top-level value"}
	}
	return value, nil
}

func findRoot(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return xml.StartElement{}, ErrNoDocument
		}
		if err != nil {
			return xml.StartElement{}, fmt.Errorf("llsd: %w", err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			if se.Name.Local != "llsd" {
				return xml.StartElement{}, &SyntaxError{Element: se.Name.Local, Msg: "expected <llsd> root element"}
			}
			return se, nil
		}
	}
}

// nextElement skips whitespace, comments and processing instructions and
// returns the next start element, or end=true when the enclosing element closes.
func nextElement(dec *xml.Decoder) (xml.StartElement, bool, error) {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return xml.StartElement{}, false, &SyntaxError{Msg: "unexpected end of document"}
		}
		if err != nil {
			return xml.StartElement{}, false, fmt.Errorf("llsd: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return t, false, nil
		case xml.EndElement:
			return xml.StartElement{}, true, nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) != 0 {
				return xml.StartElement{}, false, &SyntaxError{Msg: fmt.Sprintf("unexpected text %q", strings.TrimSpace(string(t)))}
			}
		}
	}
}

// readText collects the character data of a scalar element up to its end tag.
func readText(dec *xml.Decoder, start xml.StartElement) (string, error) {
	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("llsd: <%s>: %w", start.Name.Local, err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			return "", &SyntaxError{Element: start.Name.Local, Msg: fmt.Sprintf("unexpected child <%s>", t.Name.Local)}
		case xml.EndElement:
			return sb.String(), nil
		}
	}
}

func decodeValue(dec *xml.Decoder, start xml.StartElement) (any, error) {
	name := start.Name.Local
	switch name {
	case "map":
		return decodeMap(dec)
	case "array":
		return decodeArray(dec)
	case "undef":
		if _, err := readText(dec, start); err != nil {
			return nil, err
		}
		return nil, nil
	}

	text, err := readText(dec, start)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(text)

	switch name {
	case "string":
		return text, nil
	case "boolean":
		switch strings.ToLower(trimmed) {
		case "1", "true":
			return true, nil
		case "", "0", "false":
			return false, nil
		}
		return nil, &SyntaxError{Element: name, Msg: fmt.Sprintf("invalid boolean %q", trimmed)}
	case "integer":
		if trimmed == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return nil, &SyntaxError{Element: name, Msg: fmt.Sprintf("invalid integer %q", trimmed)}
		}
		return n, nil
	case "real":
		if trimmed == "" {
			return 0.0, nil
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, &SyntaxError{Element: name, Msg: fmt.Sprintf("invalid real %q", trimmed)}
		}
		return f, nil
	case "uuid":
		if trimmed == "" {
			return uuid.Nil, nil
		}
		id, err := uuid.Parse(trimmed)
		if err != nil {
			return nil, &SyntaxError{Element: name, Msg: fmt.Sprintf("invalid uuid %q", trimmed)}
		}
		return id, nil
	case "date":
		if trimmed == "" {
			return time.Time{}, nil
		}
		ts, err := time.Parse(time.RFC3339Nano, trimmed)
		if err != nil {
			return nil, &SyntaxError{Element: name, Msg: fmt.Sprintf("invalid date %q", trimmed)}
		}
		return ts, nil
	case "uri":
		u, err := url.Parse(trimmed)
		if err != nil {
			return nil, &SyntaxError{Element: name, Msg: fmt.Sprintf("invalid uri %q", trimmed)}
		}
		return u, nil
	case "binary":
		return decodeBinary(start, trimmed)
	}
	return nil, &SyntaxError{Element: name, Msg: "unknown element"}
}

func decodeBinary(start xml.StartElement, text string) ([]byte, error) {
	encoding := "base64"
	for _, attr := range start.Attr {
		if attr.Name.Local == "encoding" {
			encoding = strings.ToLower(attr.Value)
		}
	}
	compact := strings.Join(strings.Fields(text), "")
	switch encoding {
	case "base64":
		b, err := base64.StdEncoding.DecodeString(compact)
		if err != nil {
			return nil, &SyntaxError{Element: "binary", Msg: "invalid base64 payload"}
		}
		return b, nil
	case "base16":
		b, err := hex.DecodeString(compact)
		if err != nil {
			return nil, &SyntaxError{Element: "binary", Msg: "invalid base16 payload"}
		}
		return b, nil
	}
	return nil, &SyntaxError{Element: "binary", Msg: fmt.Sprintf("unsupported encoding %q", encoding)}
}

func decodeMap(dec *xml.Decoder) (map[string]any, error) {
	m := make(map[string]any)
	for {
		keyStart, end, err := nextElement(dec)
		if err != nil {
			return nil, err
		}
		if end {
			return m, nil
		}
		if keyStart.Name.Local != "key" {
			return nil, &SyntaxError{Element: "map", Msg: fmt.Sprintf("expected <key>, got <%s>", keyStart.Name.Local)}
		}
		key, err := readText(dec, keyStart)
		if err != nil {
			return nil, err
		}

		valueStart, end, err := nextElement(dec)
		if err != nil {
			return nil, err
		}
		if end {
			return nil, &SyntaxError{Element: "map", Msg: fmt.Sprintf("key %q has no value", key)}
		}
		value, err := decodeValue(dec, valueStart)
		if err != nil {
			return nil, err
		}
		m[key] = value
	}
}

func decodeArray(dec *xml.Decoder) ([]any, error) {
	arr := []any{}
	for {
		start, end, err := nextElement(dec)
		if err != nil {
			return nil, err
		}
		if end {
			return arr, nil
		}
		value, err := decodeValue(dec, start)
		if err != nil {
			return nil, err
		}
		arr = append(arr, value)
	}
}
