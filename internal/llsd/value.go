package llsd

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Truthy reports whether a decoded value counts as true.
func Truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case int:
		return val != 0
	case float64:
		return val != 0
	case string:
		return val != ""
	case uuid.UUID:
		return val != uuid.Nil
	case time.Time:
		return !val.IsZero()
	case *url.URL:
		return val != nil && val.String() != ""
	case []byte:
		return len(val) > 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	}
	return true
}

// Format renders a scalar value the way it appears inside its LLSD element.
// Containers are rendered with their Go default formatting.
func Format(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case uuid.UUID:
		return val.String()
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case *url.URL:
		if val == nil {
			return ""
		}
		return val.String()
	}
	return fmt.Sprint(v)
}
