// Package decode provides ready-made decoders for request.FetchObject.
package decode

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// ErrPathNotFound is returned by Path when the expression matches nothing.
var ErrPathNotFound = errors.New("path not found")

// JSON decodes the body into T with encoding/json.
func JSON[T any](body []byte) (T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// YAML decodes the body into T with yaml.v3.
func YAML[T any](body []byte) (T, error) {
	var v T
	if err := yaml.Unmarshal(body, &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// Path returns a decoder that extracts a gjson path from a JSON body and
// decodes only that fragment into T.
func Path[T any](path string) func([]byte) (T, error) {
	return func(body []byte) (T, error) {
		var zero T
		if !gjson.ValidBytes(body) {
			return zero, errors.New("invalid json")
		}
		res := gjson.GetBytes(body, path)
		if !res.Exists() {
			return zero, fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}
		return JSON[T]([]byte(res.Raw))
	}
}

// Loose decodes JSON into T with weak typing, so "42" fills an int field and
// 1 fills a bool. Struct fields are matched by their json tags.
func Loose[T any](body []byte) (T, error) {
	var zero T
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return zero, err
	}
	var v T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &v,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return zero, err
	}
	if err := dec.Decode(raw); err != nil {
		return zero, err
	}
	return v, nil
}
