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
	"testing"

	"github.com/cowdogmoo/cdpipelines/gocd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededRemote(t *testing.T) string {
	t.Helper()
	remote := newBareRemote(t)
	r := newTestRepo(t, remote)
	require.NoError(t, r.Publish(context.Background(),
		gocd.ConfigSet{"edxapp.gocd.yaml": []byte("format_version: 10\n")}, nil, "seed"))
	return remote
}

func TestRemoteHasBranch(t *testing.T) {
	t.Parallel()
	requireGit(t)
	ctx := context.Background()

	ok, err := RemoteHasBranch(ctx, newBareRemote(t), "master", Auth{})
	require.NoError(t, err)
	assert.False(t, ok, "empty remote")

	remote := seededRemote(t)
	ok, err = RemoteHasBranch(ctx, remote, "master", Auth{})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = RemoteHasBranch(ctx, remote, "release", Auth{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckMaterials(t *testing.T) {
	t.Parallel()
	requireGit(t)
	ctx := context.Background()
	remote := seededRemote(t)

	cfg := gocd.NewConfig()
	p := cfg.EnsureGroup("edxapp").EnsurePipeline("prod_edxapp_B")
	p.EnsureMaterial(gocd.GitMaterial{Name: "configuration", URL: remote})
	p.EnsureMaterial(gocd.GitMaterial{Name: "secure", URL: remote, Branch: "master"})
	require.NoError(t, CheckMaterials(ctx, cfg, Auth{}, 2))

	p.EnsureMaterial(gocd.GitMaterial{Name: "release", URL: remote, Branch: "release"})
	err := CheckMaterials(ctx, cfg, Auth{}, 0)
	var merr *MaterialError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, []string{remote + "@release"}, merr.Missing)
}
