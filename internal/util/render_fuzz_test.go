package util

import (
	"encoding/json"
	"testing"

	"github.com/loykin/apifetch/pkg/env"
)

// FuzzRenderAnyTemplate ensures RenderAnyTemplate never panics on arbitrary JSON-like inputs
// and arbitrary environments.
func FuzzRenderAnyTemplate(f *testing.F) {
	f.Add([]byte(`{"a":"{{.env.x}}","b":["{{.env.y}}",1,true],"c":{"d":"z"}}`), "x", "1")
	f.Add([]byte(`not json`), "x", "1")
	f.Fuzz(func(t *testing.T, data []byte, k, v string) {
		if len(data) > 1<<16 {
			data = data[:1<<16]
		}
		var in any
		_ = json.Unmarshal(data, &in)
		e := env.Env{Global: env.FromStringMap(map[string]string{k: v})}
		_, _ = RenderAnyTemplate(in, &e)
	})
}
