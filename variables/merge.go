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
)

// Source is one named layer of variables, a file path or an inline override.
type Source struct {
	Name   string
	Values Map
}

// Merge combines a and b into a new map. Keys present on one side are
// copied; keys present on both sides are merged recursively when both values
// are maps, and must otherwise be Equal. Neither input is modified.
func Merge(a, b Map) (Map, error) {
	return mergeAt(nil, a, b)
}

func mergeAt(path []string, a, b Map) (Map, error) {
	out := make(Map, len(a)+len(b))
	for k, v := range a {
		out[k] = clone(v)
	}

	// Sorted so the reported conflict is stable when several keys collide.
	for _, k := range b.Keys() {
		incoming := b[k]
		existing, ok := a[k]
		if !ok {
			out[k] = clone(incoming)
			continue
		}

		keyPath := make([]string, len(path), len(path)+1)
		copy(keyPath, path)
		keyPath = append(keyPath, k)

		existingMap, existingIsMap := existing.(Map)
		incomingMap, incomingIsMap := incoming.(Map)
		if existingIsMap && incomingIsMap {
			merged, err := mergeAt(keyPath, existingMap, incomingMap)
			if err != nil {
				return nil, err
			}
			out[k] = merged
			continue
		}

		if !Equal(existing, incoming) {
			return nil, &MergeConflict{Path: keyPath, Left: existing, Right: incoming}
		}
	}

	return out, nil
}

// MergeAll folds Merge over maps from left to right.
func MergeAll(maps ...Map) (Map, error) {
	sources := make([]Source, 0, len(maps))
	for i, m := range maps {
		sources = append(sources, Source{Name: fmt.Sprintf("source[%d]", i), Values: m})
	}
	return MergeSources(sources...)
}

// MergeSources folds Merge over sources from left to right, starting from
// an empty map. A conflict names the source that introduced it.
func MergeSources(sources ...Source) (Map, error) {
	result := Map{}
	for _, src := range sources {
		var err error
		result, err = mergeSource(result, src)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func mergeSource(acc Map, src Source) (Map, error) {
	merged, err := Merge(acc, src.Values)
	if err != nil {
		var conflict *MergeConflict
		if errors.As(err, &conflict) && conflict.Source == "" {
			conflict.Source = src.Name
		}
		return nil, err
	}
	return merged, nil
}
