// File: lixenwraith/fragment/helper.go
package fragment

import (
	"fmt"
	"strings"
)

// flattenInto copies the leaves of table into out, joining nested table keys with dots
func flattenInto(out map[string]any, prefix string, table map[string]any) {
	for key, value := range table {
		if prefix != "" {
			key = prefix + "." + key
		}
		if sub, ok := value.(map[string]any); ok {
			flattenInto(out, key, sub)
			continue
		}
		out[key] = value
	}
}

// ParseArgs processes "--key value", "--key=value" and "--flag" arguments into a flat map.
// Values are kept as strings; conversion happens when the instance is constructed.
// Non-flag arguments and a bare "--" are skipped.
func ParseArgs(args []string) (map[string]any, error) {
	result := make(map[string]any)
	i := 0
	for i < len(args) {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			i++
			continue
		}

		argContent := strings.TrimPrefix(arg, "--")
		if argContent == "" {
			i++
			continue
		}

		var key, valueStr string

		if strings.Contains(argContent, "=") {
			parts := strings.SplitN(argContent, "=", 2)
			key = parts[0]
			valueStr = parts[1]
			i++
		} else {
			key = argContent
			// Boolean flag if the next arg is another flag or there is none
			if i+1 >= len(args) || strings.HasPrefix(args[i+1], "--") {
				valueStr = "true"
				i++
			} else {
				valueStr = args[i+1]
				i += 2
			}
		}

		if key == "" {
			// Skip invalid flags like --=value
			continue
		}

		if !isValidKeySegment(key) {
			return nil, fmt.Errorf("invalid command-line key %q", key)
		}

		result[key] = valueStr
	}

	return result, nil
}

// isValidKeySegment reports whether s is a non-empty run of ASCII letters,
// digits, underscores and hyphens: a TOML bare key that is also a flag name.
func isValidKeySegment(s string) bool {
	return s != "" && strings.IndexFunc(s, func(r rune) bool {
		return !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9' || r == '_' || r == '-')
	}) < 0
}
