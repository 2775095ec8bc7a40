package extract

import (
	"strings"
	"time"
)

// Raw tracker field access. Custom fields arrive as strings, option objects
// ({"value": ...}), named objects ({"name": ...}), or arrays of any of those;
// these helpers flatten them.

// fieldString resolves a field to a single string value.
func fieldString(fields map[string]any, key string) string {
	if key == "" {
		return ""
	}
	return flattenValue(fields[key])
}

// fieldStrings resolves a field to a list of string values. A scalar value
// becomes a one-element list.
func fieldStrings(fields map[string]any, key string) []string {
	if key == "" {
		return nil
	}
	switch v := fields[key].(type) {
	case nil:
		return nil
	case []any:
		var out []string
		for _, item := range v {
			if s := flattenValue(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := flattenValue(v); s != "" {
			return []string{s}
		}
		return nil
	}
}

// flattenValue extracts the display string from a raw field value.
func flattenValue(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case map[string]any:
		if name, ok := value["name"].(string); ok {
			return name
		}
		if val, ok := value["value"].(string); ok {
			return val
		}
		if display, ok := value["displayName"].(string); ok {
			return display
		}
		return ""
	default:
		return ""
	}
}

// nestedName returns fields[key].name for user/type/resolution objects.
func nestedName(fields map[string]any, key string) string {
	obj, ok := fields[key].(map[string]any)
	if !ok {
		return ""
	}
	if name, ok := obj["name"].(string); ok {
		return name
	}
	return ""
}

// fieldTime parses a tracker datetime. The tracker emits zone-suffixed
// strings like "2025-07-22T12:20:00.000+0200"; the first 19 characters are
// taken as the wall-clock instant, matching how planned windows and live
// intervals are compared.
func fieldTime(fields map[string]any, key string) *time.Time {
	if key == "" {
		return nil
	}
	raw, ok := fields[key].(string)
	if !ok || raw == "" {
		return nil
	}
	return parseTrackerTime(raw)
}

// parseTrackerTime parses the leading date-time portion of a tracker
// timestamp, dropping sub-seconds and zone offset. Returns nil on failure.
func parseTrackerTime(raw string) *time.Time {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) < 19 {
		return nil
	}
	t, err := time.Parse("2006-01-02T15:04:05", trimmed[:19])
	if err != nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
