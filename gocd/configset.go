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
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cowdogmoo/cdpipelines/errors"
)

// ConfigSet maps a slash-separated file name to its rendered content.
type ConfigSet map[string][]byte

// Files returns the file names in sorted order.
func (cs ConfigSet) Files() []string {
	names := make([]string, 0, len(cs))
	for name := range cs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Digests maps each file name to the hex SHA256 of its content.
func (cs ConfigSet) Digests() map[string]string {
	out := make(map[string]string, len(cs))
	for name, body := range cs {
		sum := sha256.Sum256(body)
		out[name] = hex.EncodeToString(sum[:])
	}
	return out
}

// Compare checks the files of cs against dir. Files in dir that are not
// part of cs are ignored; unreadable files count as changed.
func (cs ConfigSet) Compare(dir string) (changed, unchanged []string) {
	for _, name := range cs.Files() {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if bytes.Equal(fileDigest(path), blobDigest(cs[name])) {
			unchanged = append(unchanged, name)
		} else {
			changed = append(changed, name)
		}
	}
	return changed, unchanged
}

// Write brings dir in line with cs, creating directories as needed. The
// changed and unchanged lists are valid even when a write fails partway.
func (cs ConfigSet) Write(dir string) (changed, unchanged []string, err error) {
	changed, unchanged = cs.Compare(dir)

	for _, name := range changed {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return changed, unchanged, errors.Wrap("create config directory", filepath.Dir(path), err)
		}
		if err = os.WriteFile(path, cs[name], 0o644); err != nil {
			return changed, unchanged, errors.Wrap("write config file", path, err)
		}
	}
	return changed, unchanged, nil
}

// Changes describes how one ConfigSet differs from another.
type Changes struct {
	Added     []string
	Modified  []string
	Removed   []string
	Unchanged []string
}

// Empty reports whether the two sets were identical.
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Modified) == 0 && len(c.Removed) == 0
}

// Changed returns added, modified and removed files in sorted order.
func (c Changes) Changed() []string {
	out := make([]string, 0, len(c.Added)+len(c.Modified)+len(c.Removed))
	out = append(out, c.Added...)
	out = append(out, c.Modified...)
	out = append(out, c.Removed...)
	sort.Strings(out)
	return out
}

// Diff reports the changes needed to turn before into cs.
func (cs ConfigSet) Diff(before ConfigSet) Changes {
	var c Changes
	for _, name := range cs.Files() {
		old, ok := before[name]
		switch {
		case !ok:
			c.Added = append(c.Added, name)
		case bytes.Equal(old, cs[name]):
			c.Unchanged = append(c.Unchanged, name)
		default:
			c.Modified = append(c.Modified, name)
		}
	}
	for _, name := range before.Files() {
		if _, ok := cs[name]; !ok {
			c.Removed = append(c.Removed, name)
		}
	}
	return c
}

// ReadConfigSet loads every "*.gocd.yaml" file under dir. A missing dir is
// an empty set. Hidden directories such as .git are skipped.
func ReadConfigSet(dir string) (ConfigSet, error) {
	set := ConfigSet{}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return set, nil
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !strings.HasSuffix(d.Name(), FileSuffix) {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		set[filepath.ToSlash(rel)] = content
		return nil
	})
	if err != nil {
		return nil, errors.Wrap("read config set", dir, err)
	}
	return set, nil
}

func fileDigest(path string) []byte {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil
	}
	return h.Sum(nil)
}

func blobDigest(blob []byte) []byte {
	sum := sha256.Sum256(blob)
	return sum[:]
}
