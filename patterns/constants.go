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

// Working directories and artifact locations shared by every pattern.
const (
	// ArtifactPath is where jobs collect files they publish or fetch.
	ArtifactPath = "target"
	// PublicConfigurationDir is the checkout of the public Ansible repo.
	PublicConfigurationDir = "configuration"
	// SecureConfigurationDir is where the secure Ansible repo is cloned.
	SecureConfigurationDir = "configuration-secure"
	// InternalConfigurationDir is where the internal Ansible repo is cloned.
	InternalConfigurationDir = "configuration-internal"
	// TubularDir is the checkout of the deployment scripts repo.
	TubularDir = "tubular"
)

// Stage and job names.
const (
	BuildAMIStageName         = "build_ami"
	BuildAMIJobName           = "build_ami_job"
	ApplyMigrationsStageName  = "apply_migrations"
	ApplyMigrationsJobName    = "apply_migrations_job"
	RollbackMigrationsJobName = "rollback_migrations_job"
	RollbackStageName         = "rollback_migrations"
	DeployAMIStageName        = "deploy_ami"
	DeployAMIJobName          = "deploy_ami_job"
)

// Artifact file names.
const (
	KeyPemFile           = "key.pem"
	AnsibleInventoryFile = "ansible_inventory"
	LaunchInfoFile       = "launch_info.yml"
	AMIFile              = "ami.yml"
	MigrationsDir        = "migrations"
	DeployInfoFile       = "ami_deploy_info.yml"
)
