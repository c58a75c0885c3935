package endpoint

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValue_Text(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
		ok   bool
	}{
		{"string", String("milk"), "milk", true},
		{"int", Int(42), "42", true},
		{"negative int", Int(-7), "-7", true},
		{"float", Float(1.5), "1.5", true},
		{"whole float", Float(3), "3", true},
		{"bool", Bool(true), "true", true},
		{"null", Null(), "", false},
		{"raw list", Raw([]int{1, 2}), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.v.Text()
			if got != tt.want || ok != tt.ok {
				t.Fatalf("Text() = %q,%v want %q,%v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestValue_MarshalJSON(t *testing.T) {
	b, err := Raw(map[string]any{"a": 1}).MarshalJSON()
	if err != nil || string(b) != `{"a":1}` {
		t.Fatalf("raw marshal: %s %v", b, err)
	}
	if b, err := Null().MarshalJSON(); err != nil || string(b) != "null" {
		t.Fatalf("null marshal: %s %v", b, err)
	}
	if _, err := Float(math.NaN()).MarshalJSON(); err == nil {
		t.Fatalf("expected error for NaN")
	}
	if _, err := Float(math.Inf(1)).MarshalJSON(); err == nil {
		t.Fatalf("expected error for +Inf")
	}
	if _, err := Raw(func() {}).MarshalJSON(); err == nil {
		t.Fatalf("expected error for func raw value")
	}
}

func TestParams_Merge(t *testing.T) {
	base := Params{P("q", String("milk")), P("limit", Int(10))}
	merged := base.Merge(P("limit", Int(20)), P("offset", Int(5)))

	if diff := cmp.Diff([]string{"q", "limit", "offset"}, merged.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if v, _ := merged.Get("limit"); v.String() != "20" {
		t.Fatalf("expected limit=20, got %s", v)
	}
	if v, _ := base.Get("limit"); v.String() != "10" {
		t.Fatalf("base must not be modified, got limit=%s", v)
	}
}

func TestParseMethodAndEncoding(t *testing.T) {
	if m, err := ParseMethod(""); err != nil || m != MethodGet {
		t.Fatalf("empty method: %v %v", m, err)
	}
	if m, err := ParseMethod(" post "); err != nil || m != MethodPost {
		t.Fatalf("post method: %v %v", m, err)
	}
	if _, err := ParseMethod("BREW"); err == nil {
		t.Fatalf("expected error for unknown method")
	}
	if e, err := ParseEncoding("json"); err != nil || e != RequestBody {
		t.Fatalf("json encoding: %v %v", e, err)
	}
	if e, err := ParseEncoding(""); err != nil || e != QueryString {
		t.Fatalf("default encoding: %v %v", e, err)
	}
}

func TestDescriptor_AcceptsAndWith(t *testing.T) {
	d := Descriptor{AcceptStatus: []int{200, 201}, Headers: map[string]string{"X-A": "1"}}
	if !d.Accepts(201) || d.Accepts(404) {
		t.Fatalf("unexpected accepts result")
	}
	if !(Descriptor{}).Accepts(500) {
		t.Fatalf("empty AcceptStatus must accept everything")
	}
	d2 := d.With(P("q", String("x")))
	d2.Headers["X-A"] = "2"
	if d.Headers["X-A"] != "1" {
		t.Fatalf("With must copy headers")
	}
	if len(d.Params) != 0 || len(d2.Params) != 1 {
		t.Fatalf("unexpected params: %v / %v", d.Params, d2.Params)
	}
}

func TestValue_Interface(t *testing.T) {
	raw := []any{"a"}
	tests := []struct {
		v    Value
		want any
	}{
		{String("s"), "s"},
		{Int(3), int64(3)},
		{Float(0.5), 0.5},
		{Bool(false), false},
		{Null(), nil},
		{Raw(raw), raw},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, tt.v.Interface()); diff != "" {
			t.Fatalf("%s: mismatch (-want +got):\n%s", tt.v.Kind(), diff)
		}
	}
}
