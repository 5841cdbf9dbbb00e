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

package patterns

import (
	"strings"
	"testing"

	"github.com/cowdogmoo/cdpipelines/gocd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAMI(t *testing.T) {
	t.Parallel()

	p := gocd.NewConfig().EnsureGroup("g").EnsurePipeline("app_B")
	stage := BuildAMI(p, BuildAMIOptions{PlaybookPath: "playbooks/edx-east/edxapp.yml", UseInternal: true})

	assert.Equal(t, BuildAMIStageName, stage.Name)
	assert.Equal(t, gocd.ApprovalSuccess, stage.Approval)
	require.Len(t, stage.Jobs, 1)
	job := stage.Jobs[0]
	assert.Len(t, job.Tasks, 8)
	assert.Equal(t, gocd.RunIfAny, job.Tasks[len(job.Tasks)-1].Condition(), "cleanup runs even after failures")
	assert.Contains(t, sources(job), "target/ami.yml")

	manual := BuildAMI(gocd.NewConfig().EnsureGroup("g").EnsurePipeline("x"), BuildAMIOptions{ManualApproval: true})
	assert.Equal(t, gocd.ApprovalManual, manual.Approval)
	assert.Len(t, manual.Jobs[0].Tasks, 7)
}

func TestApplyMigrationsFetchesFromBuildPipeline(t *testing.T) {
	t.Parallel()

	p := gocd.NewConfig().EnsureGroup("g").EnsurePipeline("app_M-D")
	stage := ApplyMigrations(p, MigrateOptions{BuildPipeline: "app_B", SubApplications: []string{"lms", "cms"}})

	job := stage.Jobs[0]
	fetch, ok := job.Tasks[1].(*gocd.FetchArtifactTask)
	require.True(t, ok)
	assert.Equal(t, "app_B", fetch.Pipeline)
	assert.Equal(t, BuildAMIStageName, fetch.Stage)
	assert.Equal(t, AMIFile, fetch.Source)

	migrations := 0
	for _, task := range job.Tasks {
		if e, ok := task.(*gocd.ExecTask); ok && strings.Contains(e.Arguments[1], "run_migrations.yml") {
			migrations++
		}
	}
	assert.Equal(t, 2, migrations)

	rollback := RollbackMigrations(p, MigrateOptions{SubApplications: []string{"lms", "cms"}})
	assert.Equal(t, gocd.ApprovalManual, rollback.Approval)
	require.Len(t, rollback.Jobs, 2)
	assert.Equal(t, "rollback_migrations_job_lms", rollback.Jobs[0].Name)
	assert.Equal(t, "rollback_migrations_job_cms", rollback.Jobs[1].Name)
}

func TestDeployAMIStage(t *testing.T) {
	t.Parallel()

	p := gocd.NewConfig().EnsureGroup("g").EnsurePipeline("app_B-M-D")
	stage := DeployAMIStage(p, DeployOptions{ManualApproval: true})
	assert.Equal(t, gocd.ApprovalManual, stage.Approval)

	fetch, ok := stage.Jobs[0].Tasks[1].(*gocd.FetchArtifactTask)
	require.True(t, ok)
	assert.Empty(t, fetch.Pipeline, "same pipeline fetches omit the pipeline name")
	assert.Contains(t, sources(stage.Jobs[0]), "target/ami_deploy_info.yml")
}

func TestStagesRenderAsValidConfig(t *testing.T) {
	t.Parallel()

	cfg := gocd.NewConfig()
	p := cfg.EnsureGroup("edxapp").EnsurePipeline("app_B-M-D")
	p.EnsureMaterial(gocd.GitMaterial{Name: "configuration", URL: "https://github.com/edx/configuration.git", Destination: "configuration"})
	BuildAMI(p, BuildAMIOptions{PlaybookPath: "p.yml"})
	ApplyMigrations(p, MigrateOptions{})
	RollbackMigrations(p, MigrateOptions{})
	DeployAMIStage(p, DeployOptions{})

	_, err := gocd.Render(cfg, gocd.DefaultFormatVersion)
	assert.NoError(t, err)
}
