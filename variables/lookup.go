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
	"sort"
	"strings"

	"github.com/cowdogmoo/cdpipelines/logging"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxSuggestions caps the "did you mean" candidates per missing key.
const maxSuggestions = 3

// Lookup walks nested maps along path.
func (m Map) Lookup(path ...string) (Value, bool) {
	var cur Value = m
	for _, key := range path {
		node, ok := cur.(Map)
		if !ok {
			return nil, false
		}
		if cur, ok = node[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// String returns the scalar at key rendered as a string. Nulls, sequences
// and maps report ok=false.
func (m Map) String(key string) (string, bool) {
	s, ok := m[key].(Scalar)
	if !ok || s.IsNull() {
		return "", false
	}
	return s.String(), true
}

// StringOr returns the string at key or def when it is absent.
func (m Map) StringOr(key, def string) string {
	if s, ok := m.String(key); ok {
		return s
	}
	return def
}

// Has reports whether key is present with a non-null value.
func (m Map) Has(key string) bool {
	v, ok := m[key]
	if !ok || v == nil {
		return false
	}
	if s, isScalar := v.(Scalar); isScalar && s.IsNull() {
		return false
	}
	return true
}

// Require returns a *MissingKeysError naming every absent key, with fuzzy
// suggestions taken from the keys that are present.
func (m Map) Require(keys ...string) error {
	var missing []string
	for _, k := range keys {
		if !m.Has(k) {
			missing = append(missing, k)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	present := m.Keys()
	suggestions := make(map[string][]string)
	for _, k := range missing {
		if s := suggest(k, present); len(s) > 0 {
			suggestions[k] = s
		}
	}

	return &MissingKeysError{Keys: missing, Suggestions: suggestions}
}

// suggest ranks present keys that contain the characters of key in order,
// and falls back to the reverse direction for keys that are abbreviations.
func suggest(key string, present []string) []string {
	ranks := fuzzy.RankFindNormalizedFold(key, present)
	for _, alt := range present {
		if len(alt) < len(key) && fuzzy.MatchNormalizedFold(alt, key) {
			ranks = append(ranks, fuzzy.Rank{Source: alt, Target: alt, Distance: len(key) - len(alt)})
		}
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].Target < ranks[j].Target
	})

	var out []string
	seen := make(map[string]bool)
	for _, r := range ranks {
		if seen[r.Target] {
			continue
		}
		seen[r.Target] = true
		out = append(out, r.Target)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

// Redacted returns a copy of m with sensitive variables replaced by
// logging.Redacted and credentials stripped from URL-valued strings.
func Redacted(m Map) Map {
	out := make(Map, len(m))
	for k, v := range m {
		if logging.IsSensitiveKey(k) {
			out[k] = String(logging.Redacted)
			continue
		}
		out[k] = redactValue(v)
	}
	return out
}

func redactValue(v Value) Value {
	switch t := v.(type) {
	case Map:
		return Redacted(t)
	case Sequence:
		out := make(Sequence, len(t))
		for i, item := range t {
			out[i] = redactValue(item)
		}
		return out
	case Scalar:
		if s, ok := t.raw.(string); ok && strings.Contains(s, "://") {
			return String(logging.RedactURL(s))
		}
		return t
	default:
		return v
	}
}
