package endpoint

// Param is a single key/value pair.
type Param struct {
	Key   string
	Value Value
}

// P is shorthand for Param{Key: key, Value: v}.
func P(key string, v Value) Param { return Param{Key: key, Value: v} }

// Params is an ordered parameter list. Order is preserved by every encoding.
type Params []Param

// Keys returns the keys in order, including duplicates.
func (ps Params) Keys() []string {
	keys := make([]string, 0, len(ps))
	for _, p := range ps {
		keys = append(keys, p.Key)
	}
	return keys
}

// Get returns the first value stored under key.
func (ps Params) Get(key string) (Value, bool) {
	for _, p := range ps {
		if p.Key == key {
			return p.Value, true
		}
	}
	return Value{}, false
}

// Merge returns a new list where each override replaces the first param with
// the same key, or is appended when the key is absent. ps is not modified.
func (ps Params) Merge(overrides ...Param) Params {
	out := make(Params, len(ps), len(ps)+len(overrides))
	copy(out, ps)
	for _, o := range overrides {
		replaced := false
		for i := range out {
			if out[i].Key == o.Key {
				out[i].Value = o.Value
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, o)
		}
	}
	return out
}
