// Package catalog loads named endpoint definitions from YAML and turns them
// into descriptors.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/loykin/apifetch/internal/util"
	"github.com/loykin/apifetch/pkg/endpoint"
	"github.com/loykin/apifetch/pkg/env"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned for unknown endpoint names.
var ErrNotFound = errors.New("endpoint not found")

// Endpoint is one named definition. String fields and string params may
// contain {{.env.name}} references.
type Endpoint struct {
	Name         string            `yaml:"name"`
	BaseAddress  string            `yaml:"base_address"`
	Path         string            `yaml:"path"`
	Method       string            `yaml:"method"`
	Encoding     string            `yaml:"encoding"`
	Headers      map[string]string `yaml:"headers"`
	AcceptStatus []int             `yaml:"accept_status"`
	Params       ParamList         `yaml:"params"`
}

// Catalog is the document root.
type Catalog struct {
	// BaseAddress is used by endpoints that do not set their own.
	BaseAddress string            `yaml:"base_address"`
	Headers     map[string]string `yaml:"headers"`
	Endpoints   []Endpoint        `yaml:"endpoints"`
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads a catalog from r.
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// LoadFile reads a catalog from path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Validate checks names, methods, encodings and template syntax. It does not
// render templates.
func (c *Catalog) Validate() error {
	seen := map[string]bool{}
	for i, ep := range c.Endpoints {
		name := strings.TrimSpace(ep.Name)
		if name == "" {
			return fmt.Errorf("endpoints[%d]: name is required", i)
		}
		if seen[name] {
			return fmt.Errorf("endpoints[%d]: duplicate name %q", i, name)
		}
		seen[name] = true
		if _, err := endpoint.ParseMethod(ep.Method); err != nil {
			return fmt.Errorf("endpoint %s: %w", name, err)
		}
		if _, err := endpoint.ParseEncoding(ep.Encoding); err != nil {
			return fmt.Errorf("endpoint %s: %w", name, err)
		}
		if strings.TrimSpace(ep.BaseAddress) == "" && strings.TrimSpace(c.BaseAddress) == "" {
			return fmt.Errorf("endpoint %s: base_address is required", name)
		}
		if err := validateTemplates(ep); err != nil {
			return fmt.Errorf("endpoint %s: %w", name, err)
		}
	}
	for k, v := range c.Headers {
		if err := env.ValidateTemplate(v); err != nil {
			return fmt.Errorf("header %s: %w", k, err)
		}
	}
	return env.ValidateTemplate(c.BaseAddress)
}

func validateTemplates(ep Endpoint) error {
	fields := map[string]string{"base_address": ep.BaseAddress, "path": ep.Path}
	for k, v := range ep.Headers {
		fields["header "+k] = v
	}
	for field, v := range fields {
		if err := env.ValidateTemplate(v); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}
	for _, p := range ep.Params {
		if err := validateValue(p.Value.Interface()); err != nil {
			return fmt.Errorf("param %s: %w", p.Key, err)
		}
	}
	return nil
}

func validateValue(v any) error {
	switch t := v.(type) {
	case string:
		return env.ValidateTemplate(t)
	case []any:
		for _, item := range t {
			if err := validateValue(item); err != nil {
				return err
			}
		}
	case map[string]any:
		for _, item := range t {
			if err := validateValue(item); err != nil {
				return err
			}
		}
	}
	return nil
}

// Names lists endpoint names in definition order.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.Endpoints))
	for _, ep := range c.Endpoints {
		out = append(out, strings.TrimSpace(ep.Name))
	}
	return out
}

// Get returns the named endpoint.
func (c *Catalog) Get(name string) (Endpoint, error) {
	for _, ep := range c.Endpoints {
		if strings.TrimSpace(ep.Name) == name {
			return ep, nil
		}
	}
	return Endpoint{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Descriptor builds the named endpoint's descriptor, rendering templates
// against e (strings nested in sequences and mappings included) and applying
// overrides on top of the defined params. Override values are taken as given
// and are not rendered.
func (c *Catalog) Descriptor(name string, e *env.Env, overrides ...endpoint.Param) (endpoint.Descriptor, error) {
	ep, err := c.Get(name)
	if err != nil {
		return endpoint.Descriptor{}, err
	}
	render := func(field, s string) (string, error) {
		out, err := e.RenderGoTemplateErr(s)
		if err != nil {
			return "", fmt.Errorf("endpoint %s: render %s: %w", name, field, err)
		}
		return out, nil
	}

	base := ep.BaseAddress
	if strings.TrimSpace(base) == "" {
		base = c.BaseAddress
	}
	d := endpoint.Descriptor{AcceptStatus: append([]int(nil), ep.AcceptStatus...)}
	if d.BaseAddress, err = render("base_address", strings.TrimSpace(base)); err != nil {
		return endpoint.Descriptor{}, err
	}
	if d.Path, err = render("path", ep.Path); err != nil {
		return endpoint.Descriptor{}, err
	}
	if d.Method, err = endpoint.ParseMethod(ep.Method); err != nil {
		return endpoint.Descriptor{}, fmt.Errorf("endpoint %s: %w", name, err)
	}
	if d.Encoding, err = endpoint.ParseEncoding(ep.Encoding); err != nil {
		return endpoint.Descriptor{}, fmt.Errorf("endpoint %s: %w", name, err)
	}

	if len(c.Headers)+len(ep.Headers) > 0 {
		d.Headers = make(map[string]string, len(c.Headers)+len(ep.Headers))
	}
	for _, hs := range []map[string]string{c.Headers, ep.Headers} {
		for k, v := range hs {
			if d.Headers[k], err = render("header "+k, v); err != nil {
				return endpoint.Descriptor{}, err
			}
		}
	}

	d.Params = make(endpoint.Params, 0, len(ep.Params)+len(overrides))
	for _, p := range ep.Params {
		switch p.Value.Kind() {
		case endpoint.KindString:
			s, _ := p.Value.Text()
			rs, err := render("param "+p.Key, s)
			if err != nil {
				return endpoint.Descriptor{}, err
			}
			p = endpoint.P(p.Key, endpoint.String(rs))
		case endpoint.KindRaw:
			rv, err := util.RenderAnyTemplate(p.Value.Interface(), e)
			if err != nil {
				return endpoint.Descriptor{}, fmt.Errorf("endpoint %s: render param %s: %w", name, p.Key, err)
			}
			p = endpoint.P(p.Key, endpoint.Raw(rv))
		}
		d.Params = append(d.Params, p)
	}
	d.Params = d.Params.Merge(overrides...)
	return d, nil
}

// ParamList is an ordered params mapping. Scalar kinds follow the YAML tag,
// so `limit: 20` is an int and `limit: "20"` is a string. Sequences and
// mappings become raw values.
type ParamList endpoint.Params

func (pl *ParamList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: params must be a mapping", node.Line)
	}
	out := make(ParamList, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		val, err := nodeValue(v)
		if err != nil {
			return fmt.Errorf("param %s: %w", k.Value, err)
		}
		out = append(out, endpoint.P(k.Value, val))
	}
	*pl = out
	return nil
}

func nodeValue(n *yaml.Node) (endpoint.Value, error) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind != yaml.ScalarNode {
		var raw any
		if err := n.Decode(&raw); err != nil {
			return endpoint.Value{}, err
		}
		return endpoint.Raw(raw), nil
	}
	switch n.ShortTag() {
	case "!!null":
		return endpoint.Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return endpoint.Value{}, err
		}
		return endpoint.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return endpoint.Value{}, err
		}
		return endpoint.Int(i), nil
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			var yf float64
			if derr := n.Decode(&yf); derr != nil {
				return endpoint.Value{}, derr
			}
			f = yf
		}
		return endpoint.Float(f), nil
	default:
		return endpoint.String(n.Value), nil
	}
}
