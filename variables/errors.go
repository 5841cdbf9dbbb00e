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
	"fmt"
	"sort"
	"strings"
)

// MergeConflict reports two sources disagreeing on a non-mapping value.
type MergeConflict struct {
	// Path is the key path from the root to the conflicting value.
	Path []string
	// Left is the value already merged, Right the incoming one.
	Left, Right Value
	// Source names the source that introduced Right, when known.
	Source string
}

func (c *MergeConflict) Error() string {
	msg := fmt.Sprintf("merge conflict at %q: %s != %s", c.Key(), Format(c.Left), Format(c.Right))
	if c.Source != "" {
		msg += fmt.Sprintf(" (from %s)", c.Source)
	}
	return msg
}

// Key returns the dotted key path of the conflict.
func (c *MergeConflict) Key() string {
	return strings.Join(c.Path, ".")
}

// LoadError reports a variable source that could not be read or parsed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load variables from %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// MissingKeysError lists required variables absent from a merged map.
type MissingKeysError struct {
	Keys []string
	// Suggestions maps a missing key to similarly named keys that are present.
	Suggestions map[string][]string
}

func (e *MissingKeysError) Error() string {
	var sb strings.Builder
	sb.WriteString("missing required variables: ")
	sb.WriteString(strings.Join(e.Keys, ", "))

	keys := make([]string, 0, len(e.Suggestions))
	for k := range e.Suggestions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "\n  %s: did you mean %s?", k, strings.Join(e.Suggestions[k], " or "))
	}
	return sb.String()
}
