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

// Package git keeps the GoCD config repository in step with a rendered
// pipeline configuration and checks that git materials are reachable.
package git

import (
	"context"
	stderrors "errors"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/cowdogmoo/cdpipelines/errors"
	"github.com/cowdogmoo/cdpipelines/gocd"
	"github.com/cowdogmoo/cdpipelines/logging"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

// DefaultBranch is used when a Repo names no branch.
const DefaultBranch = "master"

const remoteName = "origin"

// Repo is a GoCD config repository checked out in Dir. It implements
// deploy.Store.
type Repo struct {
	// URL of the remote.
	URL string
	// Branch GoCD polls.
	Branch string
	// Dir holds the working copy. It is cloned on first use.
	Dir string
	// Subdir is where pipeline files live inside the repository.
	Subdir string
	Auth   Auth
	Author Author

	// now stamps commits.
	now  func() time.Time
	repo *git.Repository
}

// NewRepo returns a Repo for url checked out into dir.
func NewRepo(url, branch, dir string) *Repo {
	if branch == "" {
		branch = DefaultBranch
	}
	return &Repo{URL: url, Branch: branch, Dir: dir, now: time.Now}
}

func (r *Repo) branchRef() plumbing.ReferenceName {
	branch := r.Branch
	if branch == "" {
		branch = DefaultBranch
	}
	return plumbing.NewBranchReferenceName(branch)
}

func (r *Repo) configDir() string {
	return filepath.Join(r.Dir, filepath.FromSlash(r.Subdir))
}

// Open clones the remote into Dir, or pulls when Dir already holds a
// checkout. An empty remote gives a fresh repository on Branch.
func (r *Repo) Open(ctx context.Context) error {
	if r.repo != nil {
		return nil
	}
	auth, err := r.Auth.Method()
	if err != nil {
		return err
	}

	repo, err := git.PlainOpen(r.Dir)
	switch {
	case err == nil:
		if err := r.pull(ctx, repo, auth); err != nil {
			return err
		}
	case stderrors.Is(err, git.ErrRepositoryNotExists):
		repo, err = r.clone(ctx, auth)
		if err != nil {
			return err
		}
	default:
		return errors.Wrap("open config repository", r.Dir, err)
	}

	r.repo = repo
	return nil
}

func (r *Repo) clone(ctx context.Context, auth transport.AuthMethod) (*git.Repository, error) {
	logging.InfoContext(ctx, "Cloning %s (%s) into %s", r.URL, r.branchRef().Short(), r.Dir)
	repo, err := git.PlainCloneContext(ctx, r.Dir, false, &git.CloneOptions{
		URL:           r.URL,
		Auth:          auth,
		RemoteName:    remoteName,
		ReferenceName: r.branchRef(),
		SingleBranch:  true,
	})
	if err == nil {
		return repo, nil
	}
	if !stderrors.Is(err, transport.ErrEmptyRemoteRepository) {
		return nil, errors.WithHint(errors.Wrap("clone config repository", r.URL, err),
			"cannot check out config repository",
			"verify the URL, the branch and the credentials for the config repository")
	}

	logging.DebugContext(ctx, "Remote %s is empty, starting a new history", r.URL)
	// A failed clone may leave a partial .git behind.
	if err := os.RemoveAll(filepath.Join(r.Dir, git.GitDirName)); err != nil {
		return nil, errors.Wrap("reset config repository", r.Dir, err)
	}
	repo, err = git.PlainInitWithOptions(r.Dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: r.branchRef()},
	})
	if err != nil {
		return nil, errors.Wrap("init config repository", r.Dir, err)
	}
	if _, err := repo.CreateRemote(&config.RemoteConfig{Name: remoteName, URLs: []string{r.URL}}); err != nil {
		return nil, errors.Wrap("add remote", r.URL, err)
	}
	return repo, nil
}

func (r *Repo) pull(ctx context.Context, repo *git.Repository, auth transport.AuthMethod) error {
	wt, err := repo.Worktree()
	if err != nil {
		return errors.Wrap("open worktree", r.Dir, err)
	}
	err = wt.PullContext(ctx, &git.PullOptions{
		RemoteName:    remoteName,
		ReferenceName: r.branchRef(),
		SingleBranch:  true,
		Auth:          auth,
	})
	switch {
	case err == nil:
		logging.DebugContext(ctx, "Pulled %s into %s", r.URL, r.Dir)
	case stderrors.Is(err, git.NoErrAlreadyUpToDate), stderrors.Is(err, transport.ErrEmptyRemoteRepository):
	default:
		return errors.Wrap("pull config repository", r.URL, err)
	}
	return nil
}

// Current implements deploy.Store.
func (r *Repo) Current(ctx context.Context) (gocd.ConfigSet, error) {
	if err := r.Open(ctx); err != nil {
		return nil, err
	}
	return gocd.ReadConfigSet(r.configDir())
}

// Publish implements deploy.Store. It writes set, deletes removed, commits
// with message and pushes Branch. Nothing is committed when the worktree
// ends up clean.
func (r *Repo) Publish(ctx context.Context, set gocd.ConfigSet, removed []string, message string) error {
	if err := r.Open(ctx); err != nil {
		return err
	}
	wt, err := r.repo.Worktree()
	if err != nil {
		return errors.Wrap("open worktree", r.Dir, err)
	}

	changed, _, err := set.Write(r.configDir())
	if err != nil {
		return err
	}
	for _, name := range changed {
		if _, err := wt.Add(path.Join(r.Subdir, name)); err != nil {
			return errors.Wrap("stage file", name, err)
		}
	}
	for _, name := range removed {
		if err := r.remove(wt, name); err != nil {
			return err
		}
	}

	status, err := wt.Status()
	if err != nil {
		return errors.Wrap("read worktree status", r.Dir, err)
	}
	if status.IsClean() {
		logging.InfoContext(ctx, "Config repository already matches, nothing to commit")
		return nil
	}

	now := r.now
	if now == nil {
		now = time.Now
	}
	hash, err := wt.Commit(message, &git.CommitOptions{Author: r.Author.Signature(now())})
	if err != nil {
		return errors.Wrap("commit pipeline configuration", "", err)
	}
	logging.InfoContext(ctx, "Committed %s: %s", hash.String()[:7], message)

	return r.push(ctx)
}

func (r *Repo) remove(wt *git.Worktree, name string) error {
	rel := path.Join(r.Subdir, name)
	_, err := wt.Remove(rel)
	if err == nil {
		return nil
	}
	if !stderrors.Is(err, index.ErrEntryNotFound) {
		return errors.Wrap("remove file", name, err)
	}
	// Untracked files only need to leave the worktree.
	if err := os.Remove(filepath.Join(r.Dir, filepath.FromSlash(rel))); err != nil && !os.IsNotExist(err) {
		return errors.Wrap("remove file", name, err)
	}
	return nil
}

func (r *Repo) push(ctx context.Context) error {
	auth, err := r.Auth.Method()
	if err != nil {
		return err
	}
	ref := r.branchRef()
	err = r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{config.RefSpec(ref.String() + ":" + ref.String())},
		Auth:       auth,
	})
	if err != nil && !stderrors.Is(err, git.NoErrAlreadyUpToDate) {
		return errors.WithHint(errors.Wrap("push config repository", r.URL, err),
			"cannot publish pipeline configuration",
			"make sure the credentials allow pushing to "+ref.Short())
	}
	logging.InfoContext(ctx, "Pushed %s to %s", ref.Short(), r.URL)
	return nil
}
