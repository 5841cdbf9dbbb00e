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

package deploy

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cowdogmoo/cdpipelines/errors"
	"github.com/cowdogmoo/cdpipelines/gocd"
)

// DirStore keeps the configuration in a local directory, for example a
// checkout that another process commits.
type DirStore struct {
	Dir string
}

// Current implements Store.
func (s DirStore) Current(context.Context) (gocd.ConfigSet, error) {
	return gocd.ReadConfigSet(s.Dir)
}

// Publish implements Store. The message is ignored.
func (s DirStore) Publish(_ context.Context, set gocd.ConfigSet, removed []string, _ string) error {
	if _, _, err := set.Write(s.Dir); err != nil {
		return err
	}
	for _, name := range removed {
		path := filepath.Join(s.Dir, filepath.FromSlash(name))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return errors.Wrap("remove config file", path, err)
		}
	}
	return nil
}
