package env

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

type Str string

func (s Str) String() string { return string(s) }

func FromStringMap(m map[string]string) Map {
	if m == nil {
		return nil
	}
	out := Map{}
	for k, v := range m {
		out[k] = Str(v)
	}
	return out
}

type Val interface {
	String() string
}

// Map holds template variables. Values are plain strings (Str) or lazily
// resolved values such as FromOS.
type Map map[string]Val

// New returns an Env with both layers initialized.
func New() *Env {
	return &Env{Global: Map{}, Local: Map{}}
}

// Env supports layered variables:
// - Global: variables from config (apply to every endpoint)
// - Local: variables for a single descriptor build
// Lookup and rendering give precedence to Local over Global.
type Env struct {
	mu     sync.RWMutex
	Global Map `yaml:"-" json:"-" mapstructure:"-"`
	Local  Map `yaml:"-" json:"env" mapstructure:"env"`
	sealed bool
}

// Seal marks the Env as immutable for Set operations.
func (e *Env) Seal() {
	if e != nil {
		e.mu.Lock()
		e.sealed = true
		e.mu.Unlock()
	}
}

// Clone copies both layers. The clone is never sealed. Lazy values are
// shared by reference.
func (e *Env) Clone() *Env {
	if e == nil {
		return New()
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := New()
	for k, v := range e.Global {
		out.Global[k] = v
	}
	for k, v := range e.Local {
		out.Local[k] = v
	}
	return out
}

// GetString reads a value from the chosen layer ("global" or "local").
func (e *Env) GetString(layer, key string) string {
	if e == nil {
		return ""
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	m := e.Global
	if normalizeLayer(layer) == "local" {
		m = e.Local
	}
	if v, ok := m[key]; ok && v != nil {
		return v.String()
	}
	return ""
}

// SetString sets a string into the chosen layer. Returns error if sealed.
func (e *Env) SetString(layer, key, val string) error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sealed {
		return fmt.Errorf("env: sealed (immutable)")
	}
	m := &e.Global
	if normalizeLayer(layer) == "local" {
		m = &e.Local
	}
	if *m == nil {
		*m = Map{}
	}
	(*m)[key] = Str(val)
	return nil
}

func normalizeLayer(n string) string {
	if strings.EqualFold(strings.TrimSpace(n), "local") {
		return "local"
	}
	return "global"
}

// UnmarshalYAML decodes a plain mapping directly into Local.
func (e *Env) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		return nil
	}
	var m map[string]string
	if err := value.Decode(&m); err != nil {
		return err
	}
	e.Local = FromStringMap(m)
	return nil
}

// Merged returns Global overridden by Local as plain strings.
func (e *Env) Merged() map[string]string {
	m := map[string]string{}
	if e == nil {
		return m
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	for k, v := range e.Global {
		if v != nil {
			m[k] = v.String()
		}
	}
	for k, v := range e.Local {
		if v != nil {
			m[k] = v.String()
		}
	}
	return m
}

// Lookup searches Local first, then Global.
func (e *Env) Lookup(key string) (string, bool) {
	if e == nil {
		return "", false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if v, ok := e.Local[key]; ok && v != nil {
		return v.String(), true
	}
	if v, ok := e.Global[key]; ok && v != nil {
		return v.String(), true
	}
	return "", false
}

// RenderGoTemplate renders {{.env.name}} references. Any parse or execution
// failure, including a missing key, returns s unchanged.
func (e *Env) RenderGoTemplate(s string) string {
	out, err := e.RenderGoTemplateErr(s)
	if err != nil {
		return s
	}
	return out
}

// RenderGoTemplateErr is RenderGoTemplate but reports failures. Values are
// inserted verbatim; URL and JSON escaping is left to the request client.
func (e *Env) RenderGoTemplateErr(s string) (string, error) {
	if !strings.Contains(s, "{{") {
		return s, nil
	}
	t, err := template.New("gotmpl").Option("missingkey=error").Parse(s)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, map[string]any{"env": e.Merged()}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
