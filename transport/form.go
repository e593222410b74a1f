package transport

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"sort"
)

// encodeForm flattens values into form fields. Scalars use fmt.Sprint, slices become
// repeated keys and maps are sent as JSON strings. Nil values are skipped.
func encodeForm(values map[string]any) (url.Values, error) {
	form := url.Values{}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := values[k]
		if v == nil {
			continue
		}
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			if b, ok := v.([]byte); ok {
				form.Add(k, string(b))
				continue
			}
			for i := 0; i < rv.Len(); i++ {
				s, err := formValue(rv.Index(i).Interface())
				if err != nil {
					return nil, fmt.Errorf("field %s: %w", k, err)
				}
				form.Add(k, s)
			}
		default:
			s, err := formValue(v)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", k, err)
			}
			form.Add(k, s)
		}
	}
	return form, nil
}

func formValue(v any) (string, error) {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Struct, reflect.Slice, reflect.Array:
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case reflect.Float32, reflect.Float64:
		f := reflect.ValueOf(v).Float()
		if f == float64(int64(f)) {
			return fmt.Sprint(int64(f)), nil
		}
	}
	return fmt.Sprint(v), nil
}
