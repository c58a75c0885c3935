package env

import (
	"os"
	"sync"
)

// osVar reads a process environment variable on first use and caches it.
type osVar struct {
	once sync.Once
	name string
	val  string
}

// FromOS returns a Val that resolves to os.Getenv(name) the first time it is
// rendered. Unset variables render as "".
func FromOS(name string) Val {
	return &osVar{name: name}
}

func (v *osVar) String() string {
	v.once.Do(func() { v.val = os.Getenv(v.name) })
	return v.val
}
