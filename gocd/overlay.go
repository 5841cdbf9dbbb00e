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

package gocd

import (
	"github.com/cowdogmoo/cdpipelines/errors"
)

// Overlay renders cfg on top of the published set current. Pipelines in
// cfg replace same-named pipelines in their group's document and are
// dropped from any other group's document; every other published pipeline
// is kept. Files that end up with no pipelines are left out of the result.
func Overlay(current ConfigSet, cfg *Config, formatVersion int) (ConfigSet, error) {
	if formatVersion <= 0 {
		formatVersion = DefaultFormatVersion
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	owner := make(map[string]string)
	for _, g := range cfg.Groups {
		for _, p := range g.Pipelines {
			owner[p.Name] = FileName(g.Name)
		}
	}

	docs := make(map[string]Document, len(current))
	for _, name := range current.Files() {
		doc, err := Decode(current[name])
		if err != nil {
			return nil, errors.Wrap("decode published pipelines", name, err)
		}
		for pipeline := range doc.Pipelines {
			if file, ok := owner[pipeline]; ok && file != name {
				delete(doc.Pipelines, pipeline)
			}
		}
		docs[name] = doc
	}

	for _, g := range cfg.Groups {
		if len(g.Pipelines) == 0 {
			continue
		}
		name := FileName(g.Name)
		fresh := GroupDocument(g, formatVersion)
		doc, ok := docs[name]
		if !ok || doc.Pipelines == nil {
			docs[name] = fresh
			continue
		}
		for pipeline, pdoc := range fresh.Pipelines {
			doc.Pipelines[pipeline] = pdoc
		}
		doc.FormatVersion = formatVersion
		docs[name] = doc
	}

	set := make(ConfigSet, len(docs))
	for name, doc := range docs {
		if len(doc.Pipelines) == 0 {
			continue
		}
		data, err := Encode(doc)
		if err != nil {
			return nil, errors.Wrap("render pipeline group", name, err)
		}
		set[name] = data
	}
	return set, nil
}
