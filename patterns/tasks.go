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
	"fmt"
	"sort"
	"strings"

	"github.com/cowdogmoo/cdpipelines/gocd"
)

const (
	ansibleSSHEnv = `export ANSIBLE_HOST_KEY_CHECKING=False; ` +
		`export ANSIBLE_SSH_ARGS="-o ControlMaster=auto -o ControlPersist=30m";`
	localAnsible = `ansible-playbook -vvvv --module-path=playbooks/library -i "localhost," -c local`
)

func artifact(name string) string {
	return ArtifactPath + "/" + name
}

// extraVarArgs renders "-e key=value" pairs sorted by key.
func extraVarArgs(vars map[string]string) string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, " -e %s=%s", k, vars[k])
	}
	return sb.String()
}

func addBash(job *gocd.Job, command, workingDir string, runIf gocd.RunIf) *gocd.ExecTask {
	task := gocd.BashTask(command, workingDir, runIf)
	job.AddTask(task)
	return task
}

// RequirementsInstall installs python requirements in workingDir.
func RequirementsInstall(job *gocd.Job, workingDir string, runIf gocd.RunIf) *gocd.ExecTask {
	return addBash(job, "sudo pip install -r requirements.txt", workingDir, runIf)
}

// TargetDirectory makes sure dir exists in the job's working directory.
func TargetDirectory(job *gocd.Job, dir string, runIf gocd.RunIf) *gocd.ExecTask {
	if dir == "" {
		dir = ArtifactPath
	}
	return addBash(job, fmt.Sprintf(`[ -d %[1]s ] && echo "Directory Exists" || mkdir %[1]s`, dir), "", runIf)
}

// FormatRSAKey writes key to outputPath with owner-only permissions.
func FormatRSAKey(job *gocd.Job, outputPath, key string) *gocd.ExecTask {
	return addBash(job, fmt.Sprintf(
		`touch %[1]s && chmod 600 %[1]s && python tubular/scripts/format_rsa_key.py --key "%[2]s" --output-file %[1]s`,
		outputPath, key), "", gocd.RunIfPassed)
}

// fetchSecureRepo clones a private repository with the GitHub deploy key in
// $PRIVATE_GITHUB_KEY and records the checked out sha as an artifact.
func fetchSecureRepo(job *gocd.Job, dir, repoEnv, versionEnv, repoName string, runIf gocd.RunIf) *gocd.ExecTask {
	command := strings.Join([]string{
		"touch github_key.pem",
		"chmod 600 github_key.pem",
		`python tubular/scripts/format_rsa_key.py --key "$PRIVATE_GITHUB_KEY" --output-file github_key.pem`,
		fmt.Sprintf(`GIT_SSH_COMMAND='/usr/bin/ssh -o StrictHostKeyChecking=no -i github_key.pem' /usr/bin/git clone $%s %s`, repoEnv, dir),
		"cd " + dir,
		fmt.Sprintf("/usr/bin/git checkout $%s", versionEnv),
		fmt.Sprintf(`[ -d ../%[1]s/ ] && echo "Target Directory Exists" || mkdir ../%[1]s/`, ArtifactPath),
		fmt.Sprintf("/usr/bin/git rev-parse HEAD > ../%s/%s_sha", ArtifactPath, repoName),
	}, " && ")
	return addBash(job, command, "", runIf)
}

// FetchSecureConfiguration clones $CONFIGURATION_SECURE_REPO into dir.
func FetchSecureConfiguration(job *gocd.Job, dir string, runIf gocd.RunIf) *gocd.ExecTask {
	return fetchSecureRepo(job, dir, "CONFIGURATION_SECURE_REPO", "CONFIGURATION_SECURE_VERSION", "configuration-secure", runIf)
}

// FetchInternalConfiguration clones $CONFIGURATION_INTERNAL_REPO into dir.
func FetchInternalConfiguration(job *gocd.Job, dir string, runIf gocd.RunIf) *gocd.ExecTask {
	return fetchSecureRepo(job, dir, "CONFIGURATION_INTERNAL_REPO", "CONFIGURATION_INTERNAL_VERSION", "configuration-internal", runIf)
}

// LaunchInstance starts an EC2 instance from $BASE_AMI_ID. The job
// publishes the instance key, an inventory and launch_info.yml.
func LaunchInstance(job *gocd.Job, overrideFiles []string, runIf gocd.RunIf) *gocd.ExecTask {
	job.EnsureArtifacts(
		gocd.BuildArtifact(artifact(KeyPemFile)),
		gocd.BuildArtifact(artifact(AnsibleInventoryFile)),
		gocd.BuildArtifact(artifact(LaunchInfoFile)),
	)

	var sb strings.Builder
	sb.WriteString(localAnsible)
	fmt.Fprintf(&sb, " -e artifact_path=`/bin/pwd`/../%s", ArtifactPath)
	for _, v := range []string{
		"base_ami_id=$BASE_AMI_ID",
		"ec2_vpc_subnet_id=$EC2_VPC_SUBNET_ID",
		"ec2_security_group_id=$EC2_SECURITY_GROUP_ID",
		"ec2_instance_type=$EC2_INSTANCE_TYPE",
		"ec2_instance_profile_name=$EC2_INSTANCE_PROFILE_NAME",
		"ebs_volume_size=$EBS_VOLUME_SIZE",
		"hipchat_token=$HIPCHAT_TOKEN",
		`hipchat_room="$HIPCHAT_ROOM"`,
		"ec2_timeout=900",
	} {
		sb.WriteString(" -e " + v)
	}
	for _, f := range overrideFiles {
		fmt.Fprintf(&sb, " -e @../%s", f)
	}
	sb.WriteString(" playbooks/continuous_delivery/launch_instance.yml")

	return addBash(job, sb.String(), PublicConfigurationDir, runIf)
}

// RunAppPlaybook runs playbookPath against the launched instance with the
// deployment and environment var files from the internal and secure repos.
func RunAppPlaybook(job *gocd.Job, internalDir, secureDir, playbookPath string, extraVars map[string]string, runIf gocd.RunIf) *gocd.ExecTask {
	parts := []string{
		fmt.Sprintf("chmod 600 ../%s;", artifact(KeyPemFile)),
		ansibleSSHEnv,
		fmt.Sprintf("PRIVATE_KEY=$(/bin/pwd)/../%s;", artifact(KeyPemFile)),
		"ansible-playbook -vvvv --private-key=$PRIVATE_KEY --user=ubuntu --module-path=playbooks/library",
		"-i ../" + artifact(AnsibleInventoryFile),
		"-e @../" + artifact(LaunchInfoFile),
	}
	for _, dir := range []string{internalDir, secureDir} {
		if dir == "" {
			continue
		}
		parts = append(parts,
			fmt.Sprintf("-e @../%s/ansible/vars/${DEPLOYMENT}.yml", dir),
			fmt.Sprintf("-e @../%s/ansible/vars/${EDX_ENVIRONMENT}-${DEPLOYMENT}.yml", dir),
		)
	}
	command := strings.Join(parts, " ") + extraVarArgs(extraVars) + " " + playbookPath
	return addBash(job, command, PublicConfigurationDir, runIf)
}

// CreateAMI snapshots the launched instance and publishes ami.yml.
func CreateAMI(job *gocd.Job, extraVars map[string]string, runIf gocd.RunIf) *gocd.ExecTask {
	job.EnsureArtifacts(gocd.BuildArtifact(artifact(AMIFile)))

	var sb strings.Builder
	sb.WriteString(localAnsible)
	fmt.Fprintf(&sb, " -e @../%s", artifact(LaunchInfoFile))
	for _, v := range []string{
		"play=$PLAY",
		"deployment=$DEPLOYMENT",
		"edx_environment=$EDX_ENVIRONMENT",
		"app_repo=$APP_REPO",
		"configuration_repo=$CONFIGURATION_REPO",
		"configuration_version=$GO_REVISION_CONFIGURATION",
		"configuration_secure_repo=$CONFIGURATION_SECURE_REPO",
		"cache_id=$GO_PIPELINE_COUNTER",
		"ec2_region=$EC2_REGION",
		"artifact_path=`/bin/pwd`/../" + ArtifactPath,
		"hipchat_token=$HIPCHAT_TOKEN",
		`hipchat_room="$HIPCHAT_ROOM"`,
		"ami_wait=$AMI_WAIT",
		"no_reboot=$NO_REBOOT",
		"extra_name_identifier=$GO_PIPELINE_COUNTER",
	} {
		sb.WriteString(" -e " + v)
	}
	sb.WriteString(extraVarArgs(extraVars))
	sb.WriteString(" playbooks/continuous_delivery/create_ami.yml")

	return addBash(job, sb.String(), PublicConfigurationDir, runIf)
}

// AMICleanup terminates the instance started by LaunchInstance.
func AMICleanup(job *gocd.Job, runIf gocd.RunIf) *gocd.ExecTask {
	command := fmt.Sprintf(`%s -e @../%s -e ec2_region=$EC2_REGION -e hipchat_token=$HIPCHAT_TOKEN -e hipchat_room="$HIPCHAT_ROOM" playbooks/continuous_delivery/cleanup.yml`,
		localAnsible, artifact(LaunchInfoFile))
	return addBash(job, command, PublicConfigurationDir, runIf)
}

func migrationCommand(playbook, subApplication string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "mkdir -p ../%s;", artifact(MigrationsDir))
	sb.WriteString(ansibleSSHEnv)
	fmt.Fprintf(&sb, "PRIVATE_KEY=`/bin/pwd`/../%s;", artifact(KeyPemFile))
	fmt.Fprintf(&sb, "ansible-playbook -vvvv -i ../%s --private-key=$PRIVATE_KEY --module-path=playbooks/library --user=ubuntu", artifact(AnsibleInventoryFile))
	for _, v := range []string{
		"APPLICATION_PATH=$APPLICATION_PATH",
		"APPLICATION_NAME=$APPLICATION_NAME",
		"APPLICATION_USER=$APPLICATION_USER",
		"ARTIFACT_PATH=`/bin/pwd`/../" + artifact(MigrationsDir),
		"DB_MIGRATION_USER=$DB_MIGRATION_USER",
		"DB_MIGRATION_PASS=$DB_MIGRATION_PASS",
	} {
		sb.WriteString(" -e " + v)
	}
	if subApplication != "" {
		sb.WriteString(" -e SUB_APPLICATION_NAME=" + subApplication)
	}
	sb.WriteString(" " + playbook)
	return sb.String()
}

// RunMigrations applies database migrations on the launched instance and
// publishes their output under target/migrations.
func RunMigrations(job *gocd.Job, subApplication string, runIf gocd.RunIf) *gocd.ExecTask {
	job.EnsureArtifacts(gocd.BuildArtifact(artifact(MigrationsDir)))
	return addBash(job, migrationCommand("playbooks/continuous_delivery/run_migrations.yml", subApplication), PublicConfigurationDir, runIf)
}

// MigrationRollback reverts the migrations recorded under target/migrations.
func MigrationRollback(job *gocd.Job, subApplication string, runIf gocd.RunIf) *gocd.ExecTask {
	command := migrationCommand("playbooks/continuous_delivery/rollback_migrations.yml", subApplication)
	command = strings.Replace(command,
		"ARTIFACT_PATH=`/bin/pwd`/../"+artifact(MigrationsDir),
		"MIGRATION_PLAN_DIR=`/bin/pwd`/../"+artifact(MigrationsDir), 1)
	return addBash(job, command, PublicConfigurationDir, runIf)
}

// DeployAMI rolls the AMI recorded in ami.yml out to the environment.
func DeployAMI(job *gocd.Job, runIf gocd.RunIf) *gocd.ExecTask {
	job.EnsureArtifacts(gocd.BuildArtifact(artifact(DeployInfoFile)))
	command := fmt.Sprintf("python scripts/asgard-deploy.py --config_file ../%s --out_file ../%s",
		artifact(AMIFile), artifact(DeployInfoFile))
	return addBash(job, command, TubularDir, runIf)
}
