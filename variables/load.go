/*
Copyright © 2025 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

package variables

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML variable document. An empty document yields an
// empty map; anything but a mapping at the top level is a *LoadError.
func LoadFile(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	m, err := Parse(data)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return m, nil
}

// Parse decodes a YAML variable document from memory.
func Parse(data []byte) (Map, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if doc == nil {
		return Map{}, nil
	}

	v, err := FromAny(doc)
	if err != nil {
		return nil, err
	}
	m, ok := v.(Map)
	if !ok {
		return nil, fmt.Errorf("top-level YAML value must be a mapping, got %s", Format(v))
	}
	return m, nil
}

// LoadAndMerge loads every file in order, folds them together and then folds
// the inline overrides on top with the same conflict rules. It stops at the
// first load error or conflict.
func LoadAndMerge(paths []string, overrides []Map) (Map, error) {
	result := Map{}

	for _, path := range paths {
		m, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		if result, err = mergeSource(result, Source{Name: path, Values: m}); err != nil {
			return nil, err
		}
	}

	for i, m := range overrides {
		var err error
		name := fmt.Sprintf("override[%d]", i)
		if result, err = mergeSource(result, Source{Name: name, Values: m}); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// ErrInvalidOverride is returned for malformed KEY=VALUE overrides.
var ErrInvalidOverride = errors.New("invalid variable override")

// ParseOverride parses a KEY=VALUE string into a one-entry map. The value
// is kept as a string and may be empty.
func ParseOverride(s string) (Map, error) {
	key, value, found := strings.Cut(s, "=")
	if !found {
		return nil, fmt.Errorf("%w %q: expected format KEY=VALUE", ErrInvalidOverride, s)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w %q: key cannot be empty", ErrInvalidOverride, s)
	}
	return Map{key: String(value)}, nil
}

// ParseOverrides parses each KEY=VALUE string into its own source, so two
// overrides that disagree on a key conflict when merged.
func ParseOverrides(values []string) ([]Map, error) {
	out := make([]Map, 0, len(values))
	for _, v := range values {
		m, err := ParseOverride(v)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
