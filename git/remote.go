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

package git

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cowdogmoo/cdpipelines/errors"
	"github.com/cowdogmoo/cdpipelines/gocd"
	"github.com/cowdogmoo/cdpipelines/logging"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/storage/memory"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds CheckMaterials when no limit is given.
const DefaultConcurrency = 4

// RemoteHasBranch reports whether the remote at url has branch. An empty
// remote has no branches.
func RemoteHasBranch(ctx context.Context, url, branch string, auth Auth) (bool, error) {
	method, err := auth.Method()
	if err != nil {
		return false, err
	}
	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{Name: remoteName, URLs: []string{url}})
	refs, err := remote.ListContext(ctx, &git.ListOptions{Auth: method})
	if stderrors.Is(err, transport.ErrEmptyRemoteRepository) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap("list remote", url, err)
	}

	want := plumbing.NewBranchReferenceName(branch)
	for _, ref := range refs {
		if ref.Name() == want {
			return true, nil
		}
	}
	return false, nil
}

// MaterialError lists git materials whose branch could not be found.
type MaterialError struct {
	Missing []string
}

func (e *MaterialError) Error() string {
	return fmt.Sprintf("git materials not found: %s", strings.Join(e.Missing, ", "))
}

// CheckMaterials verifies that every git material in cfg points at an
// existing branch, listing up to limit remotes at a time. Materials that
// share a url and branch are checked once.
func CheckMaterials(ctx context.Context, cfg *gocd.Config, auth Auth, limit int) error {
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	type target struct{ url, branch string }
	seen := make(map[target]bool)
	var targets []target
	for _, p := range cfg.Pipelines() {
		for _, m := range p.GitMaterials() {
			branch := m.Branch
			if branch == "" {
				branch = DefaultBranch
			}
			t := target{m.URL, branch}
			if !seen[t] {
				seen[t] = true
				targets = append(targets, t)
			}
		}
	}

	var (
		mu      sync.Mutex
		missing []string
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, t := range targets {
		g.Go(func() error {
			ok, err := RemoteHasBranch(ctx, t.url, t.branch, auth)
			if err != nil {
				return err
			}
			logging.DebugContext(ctx, "Material %s@%s found: %t", t.url, t.branch, ok)
			if !ok {
				mu.Lock()
				missing = append(missing, t.url+"@"+t.branch)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap("check git materials", "", err)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &MaterialError{Missing: missing}
	}
	return nil
}
