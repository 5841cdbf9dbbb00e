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

func script(t *testing.T, task *gocd.ExecTask) string {
	t.Helper()
	require.Equal(t, "/bin/bash", task.Command)
	require.Len(t, task.Arguments, 2)
	require.Equal(t, "-c", task.Arguments[0])
	return task.Arguments[1]
}

func sources(job *gocd.Job) []string {
	out := make([]string, 0, len(job.Artifacts))
	for _, a := range job.Artifacts {
		out = append(out, a.Source)
	}
	return out
}

func TestRequirementsInstall(t *testing.T) {
	t.Parallel()

	job := &gocd.Job{Name: "j"}
	task := RequirementsInstall(job, "configuration", gocd.RunIfPassed)
	assert.Equal(t, "sudo pip install -r requirements.txt", script(t, task))
	assert.Equal(t, "configuration", task.WorkingDir)
	assert.Len(t, job.Tasks, 1)
}

func TestTargetDirectory(t *testing.T) {
	t.Parallel()

	job := &gocd.Job{Name: "j"}
	assert.Equal(t, `[ -d target ] && echo "Directory Exists" || mkdir target`, script(t, TargetDirectory(job, "", gocd.RunIfPassed)))
	assert.Equal(t, `[ -d out ] && echo "Directory Exists" || mkdir out`, script(t, TargetDirectory(job, "out", gocd.RunIfAny)))
}

func TestLaunchInstance(t *testing.T) {
	t.Parallel()

	job := &gocd.Job{Name: "j"}
	cmd := script(t, LaunchInstance(job, []string{"stage.yml", "extra.yml"}, gocd.RunIfPassed))

	assert.True(t, strings.HasPrefix(cmd, "ansible-playbook -vvvv --module-path=playbooks/library"))
	assert.Contains(t, cmd, "-e base_ami_id=$BASE_AMI_ID")
	assert.Contains(t, cmd, "-e ec2_timeout=900")
	assert.Contains(t, cmd, "-e @../stage.yml -e @../extra.yml playbooks/continuous_delivery/launch_instance.yml")
	assert.Equal(t, []string{"target/ansible_inventory", "target/key.pem", "target/launch_info.yml"}, sources(job))
}

func TestRunAppPlaybookSortsExtraVars(t *testing.T) {
	t.Parallel()

	job := &gocd.Job{Name: "j"}
	cmd := script(t, RunAppPlaybook(job, "configuration-internal", "configuration-secure", "playbooks/edx-east/edxapp.yml",
		map[string]string{"edx_platform_version": "$GO_REVISION_EDX_PLATFORM", "app_version": "1.0"}, gocd.RunIfPassed))

	assert.Contains(t, cmd, "-e @../configuration-internal/ansible/vars/${DEPLOYMENT}.yml")
	assert.Contains(t, cmd, "-e @../configuration-secure/ansible/vars/${EDX_ENVIRONMENT}-${DEPLOYMENT}.yml")
	assert.True(t, strings.HasSuffix(cmd,
		" -e app_version=1.0 -e edx_platform_version=$GO_REVISION_EDX_PLATFORM playbooks/edx-east/edxapp.yml"), cmd)

	withoutInternal := script(t, RunAppPlaybook(job, "", "configuration-secure", "p.yml", nil, gocd.RunIfPassed))
	assert.NotContains(t, withoutInternal, "configuration-internal")
}

func TestCreateAMIAndCleanup(t *testing.T) {
	t.Parallel()

	job := &gocd.Job{Name: "j"}
	cmd := script(t, CreateAMI(job, map[string]string{"version_tags": "x"}, gocd.RunIfPassed))
	assert.Contains(t, cmd, "-e configuration_version=$GO_REVISION_CONFIGURATION")
	assert.True(t, strings.HasSuffix(cmd, "-e version_tags=x playbooks/continuous_delivery/create_ami.yml"))
	assert.Equal(t, []string{"target/ami.yml"}, sources(job))

	cleanup := AMICleanup(job, gocd.RunIfAny)
	assert.Equal(t, gocd.RunIfAny, cleanup.RunIf)
	assert.Contains(t, script(t, cleanup), "playbooks/continuous_delivery/cleanup.yml")
}

func TestRunMigrations(t *testing.T) {
	t.Parallel()

	job := &gocd.Job{Name: "j"}
	cmd := script(t, RunMigrations(job, "lms", gocd.RunIfPassed))
	assert.Contains(t, cmd, "-e SUB_APPLICATION_NAME=lms playbooks/continuous_delivery/run_migrations.yml")
	assert.Contains(t, cmd, "-e DB_MIGRATION_PASS=$DB_MIGRATION_PASS")
	assert.Equal(t, []string{"target/migrations"}, sources(job))

	plain := script(t, RunMigrations(job, "", gocd.RunIfPassed))
	assert.NotContains(t, plain, "SUB_APPLICATION_NAME")

	rollback := script(t, MigrationRollback(job, "cms", gocd.RunIfPassed))
	assert.Contains(t, rollback, "MIGRATION_PLAN_DIR=")
	assert.Contains(t, rollback, "rollback_migrations.yml")
}

func TestFetchSecureConfiguration(t *testing.T) {
	t.Parallel()

	job := &gocd.Job{Name: "j"}
	cmd := script(t, FetchSecureConfiguration(job, "configuration-secure", gocd.RunIfPassed))
	assert.Contains(t, cmd, "/usr/bin/git clone $CONFIGURATION_SECURE_REPO configuration-secure")
	assert.Contains(t, cmd, "/usr/bin/git checkout $CONFIGURATION_SECURE_VERSION")
	assert.Contains(t, cmd, "> ../target/configuration-secure_sha")
}
