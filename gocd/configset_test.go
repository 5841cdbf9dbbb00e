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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigSetWriteAndCompare(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	set := ConfigSet{
		"a.gocd.yaml":     []byte("a"),
		"sub/b.gocd.yaml": []byte("b"),
	}

	changed, unchanged, err := set.Write(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.gocd.yaml", "sub/b.gocd.yaml"}, changed)
	assert.Empty(t, unchanged)

	data, err := os.ReadFile(filepath.Join(dir, "sub", "b.gocd.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "b", string(data))

	set["a.gocd.yaml"] = []byte("a2")
	changed, unchanged = set.Compare(dir)
	assert.Equal(t, []string{"a.gocd.yaml"}, changed)
	assert.Equal(t, []string{"sub/b.gocd.yaml"}, unchanged)
}

func TestReadConfigSet(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "x.gocd.yaml"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "edxapp.gocd.yaml"), []byte("kept"), 0o644))

	set, err := ReadConfigSet(dir)
	require.NoError(t, err)
	assert.Equal(t, ConfigSet{"edxapp.gocd.yaml": []byte("kept")}, set)

	missing, err := ReadConfigSet(filepath.Join(dir, "nope"))
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestConfigSetDiff(t *testing.T) {
	t.Parallel()

	before := ConfigSet{"same": []byte("1"), "mod": []byte("old"), "gone": []byte("x")}
	after := ConfigSet{"same": []byte("1"), "mod": []byte("new"), "new": []byte("y")}

	changes := after.Diff(before)
	assert.Equal(t, []string{"new"}, changes.Added)
	assert.Equal(t, []string{"mod"}, changes.Modified)
	assert.Equal(t, []string{"gone"}, changes.Removed)
	assert.Equal(t, []string{"same"}, changes.Unchanged)
	assert.Equal(t, []string{"gone", "mod", "new"}, changes.Changed())
	assert.False(t, changes.Empty())

	assert.True(t, before.Diff(before).Empty())
}

func TestDigests(t *testing.T) {
	t.Parallel()

	d := ConfigSet{"f": []byte("")}.Digests()
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", d["f"])
}
