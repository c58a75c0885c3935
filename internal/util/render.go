package util

import (
	"fmt"

	"github.com/loykin/apifetch/pkg/env"
)

// RenderAnyTemplate walks arbitrary structures (map[string]any, []any) and renders
// all string values using the provided env with standard Go template syntax ({{...}}).
// Maps and slices are copied; non-string scalars are returned as is. The first
// render failure is returned with the path of the offending value.
func RenderAnyTemplate(in any, e *env.Env) (any, error) {
	var fn func(path string, v any) (any, error)
	fn = func(path string, v any) (any, error) {
		switch t := v.(type) {
		case map[string]any:
			m := make(map[string]any, len(t))
			for k, vv := range t {
				r, err := fn(path+"."+k, vv)
				if err != nil {
					return nil, err
				}
				m[k] = r
			}
			return m, nil
		case []any:
			arr := make([]any, len(t))
			for i := range t {
				r, err := fn(fmt.Sprintf("%s[%d]", path, i), t[i])
				if err != nil {
					return nil, err
				}
				arr[i] = r
			}
			return arr, nil
		case string:
			out, err := e.RenderGoTemplateErr(t)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			return out, nil
		default:
			return v, nil
		}
	}
	return fn("$", in)
}
