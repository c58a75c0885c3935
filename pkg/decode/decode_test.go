package decode

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type item struct {
	Name  string  `json:"name" yaml:"name"`
	Price float64 `json:"price" yaml:"price"`
	Stock int     `json:"stock" yaml:"stock"`
}

func TestJSON(t *testing.T) {
	got, err := JSON[item]([]byte(`{"name":"milk","price":1.5,"stock":3}`))
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if diff := cmp.Diff(item{"milk", 1.5, 3}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if _, err := JSON[item]([]byte(`{"name":123}`)); err == nil {
		t.Fatalf("expected type mismatch error")
	}
}

func TestYAML(t *testing.T) {
	got, err := YAML[item]([]byte("name: bread\nprice: 2\nstock: 1\n"))
	if err != nil {
		t.Fatalf("YAML: %v", err)
	}
	if got != (item{"bread", 2, 1}) {
		t.Fatalf("unexpected %+v", got)
	}
}

func TestPath(t *testing.T) {
	body := []byte(`{"paging":{"total":2},"results":[{"name":"milk"},{"name":"oat milk"}]}`)

	names, err := Path[[]string]("results.#.name")(body)
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if diff := cmp.Diff([]string{"milk", "oat milk"}, names); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	total, err := Path[int]("paging.total")(body)
	if err != nil || total != 2 {
		t.Fatalf("got %d, %v", total, err)
	}
	if _, err := Path[int]("paging.missing")(body); !errors.Is(err, ErrPathNotFound) {
		t.Fatalf("expected ErrPathNotFound, got %v", err)
	}
	if _, err := Path[int]("a")([]byte("not json")); err == nil {
		t.Fatalf("expected invalid json error")
	}
}

func TestLoose(t *testing.T) {
	got, err := Loose[item]([]byte(`{"name":"milk","price":"1.25","stock":"7"}`))
	if err != nil {
		t.Fatalf("Loose: %v", err)
	}
	if got != (item{"milk", 1.25, 7}) {
		t.Fatalf("unexpected %+v", got)
	}
	if _, err := Loose[item]([]byte(`{"stock":"many"}`)); err == nil {
		t.Fatalf("expected conversion error")
	}
}
