package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/loykin/apifetch/pkg/endpoint"
	"github.com/loykin/apifetch/pkg/env"
)

const storeCatalog = `
base_address: "https://{{.env.host}}"
headers:
  Accept: application/json
endpoints:
  - name: search
    path: /search
    params:
      q: "{{.env.term}}"
      limit: 20
      price: 9.5
      fresh: true
      zip: "01234"
      missing: null
      tags: [dairy, "{{.env.term}}"]
  - name: create
    base_address: https://admin.example.com/v1
    path: /items
    method: post
    encoding: body
    accept_status: [200, 201]
    headers:
      X-Token: "{{.env.token}}"
    params:
      name: milk
`

func mustParse(t *testing.T, doc string) *Catalog {
	t.Helper()
	c, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return c
}

func storeEnv() *env.Env {
	return &env.Env{Global: env.FromStringMap(map[string]string{
		"host":  "api.example.com",
		"term":  "milk",
		"token": "abc",
	})}
}

func TestCatalog_NamesAndGet(t *testing.T) {
	c := mustParse(t, storeCatalog)
	if diff := cmp.Diff([]string{"search", "create"}, c.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if _, err := c.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := c.Descriptor("nope", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from Descriptor, got %v", err)
	}
}

func TestCatalog_ParamKindsAndOrder(t *testing.T) {
	c := mustParse(t, storeCatalog)
	ep, _ := c.Get("search")
	want := []struct {
		key  string
		kind endpoint.Kind
	}{
		{"q", endpoint.KindString},
		{"limit", endpoint.KindInt},
		{"price", endpoint.KindFloat},
		{"fresh", endpoint.KindBool},
		{"zip", endpoint.KindString},
		{"missing", endpoint.KindNull},
		{"tags", endpoint.KindRaw},
	}
	if len(ep.Params) != len(want) {
		t.Fatalf("expected %d params, got %d", len(want), len(ep.Params))
	}
	for i, w := range want {
		p := ep.Params[i]
		if p.Key != w.key || p.Value.Kind() != w.kind {
			t.Fatalf("param %d: got %s/%s want %s/%s", i, p.Key, p.Value.Kind(), w.key, w.kind)
		}
	}
	if s, _ := ep.Params[4].Value.Text(); s != "01234" {
		t.Fatalf("quoted scalar must stay a string, got %q", s)
	}
}

func TestCatalog_DescriptorRendersTemplates(t *testing.T) {
	c := mustParse(t, storeCatalog)
	d, err := c.Descriptor("search", storeEnv(), endpoint.P("limit", endpoint.Int(5)), endpoint.P("page", endpoint.Int(2)))
	if err != nil {
		t.Fatalf("Descriptor: %v", err)
	}
	if d.BaseAddress != "https://api.example.com" || d.Path != "/search" || d.Method != endpoint.MethodGet || d.Encoding != endpoint.QueryString {
		t.Fatalf("unexpected descriptor %+v", d)
	}
	if d.Headers["Accept"] != "application/json" {
		t.Fatalf("catalog headers not applied: %v", d.Headers)
	}
	if diff := cmp.Diff([]string{"q", "limit", "price", "fresh", "zip", "missing", "tags", "page"}, d.Params.Keys()); diff != "" {
		t.Fatalf("key order mismatch (-want +got):\n%s", diff)
	}
	if q, _ := d.Params.Get("q"); q.String() != "milk" {
		t.Fatalf("q not rendered: %s", q)
	}
	if tags, _ := d.Params.Get("tags"); tags.Kind() != endpoint.KindRaw {
		t.Fatalf("tags must stay raw, got %s", tags.Kind())
	} else if diff := cmp.Diff([]any{"dairy", "milk"}, tags.Interface()); diff != "" {
		t.Fatalf("raw strings not rendered (-want +got):\n%s", diff)
	}
	if l, _ := d.Params.Get("limit"); l.String() != "5" {
		t.Fatalf("override not applied: %s", l)
	}

	// the catalog itself is untouched
	ep, _ := c.Get("search")
	if s, _ := ep.Params[0].Value.Text(); s != "{{.env.term}}" {
		t.Fatalf("catalog mutated: %q", s)
	}
}

func TestCatalog_DescriptorBodyEndpoint(t *testing.T) {
	c := mustParse(t, storeCatalog)
	d, err := c.Descriptor("create", storeEnv())
	if err != nil {
		t.Fatalf("Descriptor: %v", err)
	}
	if d.BaseAddress != "https://admin.example.com/v1" || d.Method != endpoint.MethodPost || d.Encoding != endpoint.RequestBody {
		t.Fatalf("unexpected descriptor %+v", d)
	}
	if d.Headers["X-Token"] != "abc" {
		t.Fatalf("header template not rendered: %v", d.Headers)
	}
	if !d.Accepts(201) || d.Accepts(404) {
		t.Fatalf("accept_status not applied: %v", d.AcceptStatus)
	}
}

func TestCatalog_DescriptorMissingVariable(t *testing.T) {
	c := mustParse(t, storeCatalog)
	_, err := c.Descriptor("search", env.New())
	if err == nil || !strings.Contains(err.Error(), "render") {
		t.Fatalf("expected render error, got %v", err)
	}
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing name", "base_address: https://a\nendpoints:\n  - path: /x\n"},
		{"duplicate name", "base_address: https://a\nendpoints:\n  - name: a\n  - name: a\n"},
		{"bad method", "base_address: https://a\nendpoints:\n  - name: a\n    method: TRACEX\n"},
		{"bad encoding", "base_address: https://a\nendpoints:\n  - name: a\n    encoding: xml\n"},
		{"no base address", "endpoints:\n  - name: a\n"},
		{"params not mapping", "base_address: https://a\nendpoints:\n  - name: a\n    params: [1, 2]\n"},
		{"field outside env", "base_address: https://a\nendpoints:\n  - name: a\n    path: \"{{.secret}}\"\n"},
		{"unknown function", "base_address: https://a\nendpoints:\n  - name: a\n    headers:\n      X: \"{{exec .env.x}}\"\n"},
		{"nested raw template", "base_address: https://a\nendpoints:\n  - name: a\n    params:\n      tags: [ok, \"{{template \\\"x\\\"}}\"]\n"},
		{"catalog header", "base_address: https://a\nheaders:\n  X: \"{{.}}\"\nendpoints:\n  - name: a\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(p, []byte(storeCatalog), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(c.Endpoints) != 2 {
		t.Fatalf("expected 2 endpoints, got %d", len(c.Endpoints))
	}
	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
