package templating

import (
	"fmt"
	"strings"
)

// HasMarker reports whether a recipient or subject string contains a
// templating marker and needs rendering before use.
func HasMarker(s string) bool {
	return strings.Contains(s, "{")
}

// Render substitutes "{field}" markers with values from the document
// snapshot. Unknown markers are left in place so misconfigured rules are
// visible in the output rather than silently blanked.
func Render(template string, doc map[string]interface{}) string {
	result := template
	for k, v := range doc {
		result = strings.ReplaceAll(result, "{"+k+"}", toString(v))
	}
	return result
}

func toString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		// JSON numbers decode as float64; render integral values without
		// a trailing ".0".
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
