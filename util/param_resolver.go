package util

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oliveagle/jsonpath"
)

var tokenPattern = regexp.MustCompile("{(.*?)}")

// ResolveInputParams copies params, replacing every {$.path} token in string values
// with the value found at path in values. A string made of a single token keeps the
// looked-up value's type; tokens that resolve to nothing are left as they are.
func ResolveInputParams(values map[string]any, params map[string]any) map[string]any {
	data := make(map[string]any, len(params))
	resolveParams(values, params, data)
	return data
}

func resolveParams(values map[string]any, params map[string]any, output map[string]any) {
	for k, v := range params {
		output[k] = resolveValue(values, v)
	}
}

func resolveValue(values map[string]any, v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		resolveParams(values, val, out)
		return out
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			out = append(out, resolveValue(values, item))
		}
		return out
	case string:
		return resolveString(values, val)
	default:
		return v
	}
}

func resolveString(values map[string]any, s string) any {
	tokens := tokenPattern.FindAllString(s, -1)
	if len(tokens) == 0 {
		return s
	}
	tokenMap := make(map[string]any)
	for _, token := range tokens {
		path := strings.TrimSuffix(strings.TrimPrefix(token, "{"), "}")
		if !strings.HasPrefix(path, "$") {
			continue
		}
		value, err := jsonpath.JsonPathLookup(values, path)
		if err != nil || value == nil {
			continue
		}
		tokenMap[token] = value
	}
	if len(tokens) == 1 && tokens[0] == s {
		if value, ok := tokenMap[s]; ok {
			return value
		}
		return s
	}
	out := s
	for t, tv := range tokenMap {
		out = strings.ReplaceAll(out, t, fmt.Sprintf("%v", tv))
	}
	return out
}
