package llsd

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const xmlHeader = `<?xml version="1.0" ?>`

// UnsupportedTypeError is returned by Marshal for values with no LLSD form.
type UnsupportedTypeError struct {
	Value any
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("llsd: unsupported type %T", e.Value)
}

// Marshal encodes v as an LLSD XML document.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xmlHeader)
	buf.WriteString("<llsd>")
	if err := encodeValue(&buf, v); err != nil {
		return nil, err
	}
	buf.WriteString("</llsd>")
	return buf.Bytes(), nil
}

func writeScalar(buf *bytes.Buffer, element, text string) {
	if text == "" {
		buf.WriteString("<" + element + " />")
		return
	}
	buf.WriteString("<" + element + ">")
	_ = xml.EscapeText(buf, []byte(text))
	buf.WriteString("</" + element + ">")
}

func encodeValue(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("<undef />")
	case bool:
		if val {
			buf.WriteString("<boolean>true</boolean>")
		} else {
			buf.WriteString("<boolean>false</boolean>")
		}
	case int:
		writeScalar(buf, "integer", strconv.Itoa(val))
	case int32:
		writeScalar(buf, "integer", strconv.FormatInt(int64(val), 10))
	case int64:
		if val > math.MaxInt32 || val < math.MinInt32 {
			return fmt.Errorf("llsd: integer %d overflows 32 bits", val)
		}
		writeScalar(buf, "integer", strconv.FormatInt(val, 10))
	case float32:
		writeScalar(buf, "real", strconv.FormatFloat(float64(val), 'f', -1, 32))
	case float64:
		writeScalar(buf, "real", strconv.FormatFloat(val, 'f', -1, 64))
	case string:
		writeScalar(buf, "string", val)
	case uuid.UUID:
		writeScalar(buf, "uuid", val.String())
	case time.Time:
		writeScalar(buf, "date", val.UTC().Format(time.RFC3339Nano))
	case *url.URL:
		if val == nil {
			buf.WriteString("<undef />")
			return nil
		}
		writeScalar(buf, "uri", val.String())
	case []byte:
		writeScalar(buf, "binary", base64.StdEncoding.EncodeToString(val))
	case []string:
		buf.WriteString("<array>")
		for _, s := range val {
			writeScalar(buf, "string", s)
		}
		buf.WriteString("</array>")
	case []any:
		buf.WriteString("<array>")
		for _, item := range val {
			if err := encodeValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteString("</array>")
	case map[string]string:
		buf.WriteString("<map>")
		for _, k := range sortedKeys(val) {
			writeKey(buf, k)
			writeScalar(buf, "string", val[k])
		}
		buf.WriteString("</map>")
	case map[string]any:
		buf.WriteString("<map>")
		for _, k := range sortedKeys(val) {
			writeKey(buf, k)
			if err := encodeValue(buf, val[k]); err != nil {
				return err
			}
		}
		buf.WriteString("</map>")
	default:
		return &UnsupportedTypeError{Value: v}
	}
	return nil
}

func writeKey(buf *bytes.Buffer, key string) {
	buf.WriteString("<key>")
	_ = xml.EscapeText(buf, []byte(key))
	buf.WriteString("</key>")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
