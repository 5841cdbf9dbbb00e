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
	"github.com/cowdogmoo/cdpipelines/gocd"
)

// BuildAMIOptions configures the build stage.
type BuildAMIOptions struct {
	PlaybookPath string
	// OverrideFiles are extra Ansible var files passed to the launch play,
	// relative to the agent working directory.
	OverrideFiles []string
	// PlaybookVars and AMIVars are appended as "-e key=value".
	PlaybookVars   map[string]string
	AMIVars        map[string]string
	ManualApproval bool
	UseInternal    bool
}

// BuildAMI adds the stage that launches an instance, provisions it with the
// application playbook, snapshots it and cleans the instance up.
func BuildAMI(p *gocd.Pipeline, opts BuildAMIOptions) *gocd.Stage {
	stage := p.EnsureStage(BuildAMIStageName)
	stage.CleanWorkingDir = true
	if opts.ManualApproval {
		stage.SetManualApproval()
	}

	job := stage.EnsureJob(BuildAMIJobName)
	RequirementsInstall(job, PublicConfigurationDir, gocd.RunIfPassed)
	TargetDirectory(job, ArtifactPath, gocd.RunIfPassed)
	FetchSecureConfiguration(job, SecureConfigurationDir, gocd.RunIfPassed)
	internalDir := ""
	if opts.UseInternal {
		FetchInternalConfiguration(job, InternalConfigurationDir, gocd.RunIfPassed)
		internalDir = InternalConfigurationDir
	}
	LaunchInstance(job, opts.OverrideFiles, gocd.RunIfPassed)
	RunAppPlaybook(job, internalDir, SecureConfigurationDir, opts.PlaybookPath, opts.PlaybookVars, gocd.RunIfPassed)
	CreateAMI(job, opts.AMIVars, gocd.RunIfPassed)
	AMICleanup(job, gocd.RunIfAny)
	return stage
}

// MigrateOptions configures the migration stage.
type MigrateOptions struct {
	// BuildPipeline owns the build stage; empty means the current pipeline.
	BuildPipeline   string
	SubApplications []string
	ManualApproval  bool
}

// BuildLocation returns where the build stage published name.
func (o MigrateOptions) BuildLocation(name string) gocd.ArtifactLocation {
	return gocd.ArtifactLocation{
		Pipeline: o.BuildPipeline,
		Stage:    BuildAMIStageName,
		Job:      BuildAMIJobName,
		FileName: name,
	}
}

// ApplyMigrations adds the stage that launches an instance from the built
// AMI and runs migrations from it, once per sub-application.
func ApplyMigrations(p *gocd.Pipeline, opts MigrateOptions) *gocd.Stage {
	stage := p.EnsureStage(ApplyMigrationsStageName)
	stage.CleanWorkingDir = true
	if opts.ManualApproval {
		stage.SetManualApproval()
	}

	job := stage.EnsureJob(ApplyMigrationsJobName)
	TargetDirectory(job, ArtifactPath, gocd.RunIfPassed)
	job.AddTask(opts.BuildLocation(AMIFile).FetchFile(ArtifactPath))
	RequirementsInstall(job, PublicConfigurationDir, gocd.RunIfPassed)
	LaunchInstance(job, []string{ArtifactPath + "/" + AMIFile}, gocd.RunIfPassed)

	subApps := opts.SubApplications
	if len(subApps) == 0 {
		subApps = []string{""}
	}
	for _, sub := range subApps {
		RunMigrations(job, sub, gocd.RunIfPassed)
	}
	AMICleanup(job, gocd.RunIfAny)
	return stage
}

// RollbackMigrations adds a manually triggered stage with one rollback job
// per sub-application, reading what ApplyMigrations published.
func RollbackMigrations(p *gocd.Pipeline, opts MigrateOptions) *gocd.Stage {
	stage := p.EnsureStage(RollbackStageName).SetManualApproval()

	from := func(name string) gocd.ArtifactLocation {
		return gocd.ArtifactLocation{
			Stage:    ApplyMigrationsStageName,
			Job:      ApplyMigrationsJobName,
			FileName: name,
		}
	}

	subApps := opts.SubApplications
	if len(subApps) == 0 {
		subApps = []string{""}
	}
	for _, sub := range subApps {
		RollbackMigration(stage, from(AnsibleInventoryFile), from(KeyPemFile), from(MigrationsDir), sub)
	}
	return stage
}

// DeployOptions configures the deploy stage.
type DeployOptions struct {
	BuildPipeline  string
	ManualApproval bool
}

// DeployAMIStage adds the stage that rolls the built AMI out.
func DeployAMIStage(p *gocd.Pipeline, opts DeployOptions) *gocd.Stage {
	stage := p.EnsureStage(DeployAMIStageName)
	if opts.ManualApproval {
		stage.SetManualApproval()
	}

	job := stage.EnsureJob(DeployAMIJobName)
	TargetDirectory(job, ArtifactPath, gocd.RunIfPassed)
	job.AddTask(MigrateOptions{BuildPipeline: opts.BuildPipeline}.BuildLocation(AMIFile).FetchFile(ArtifactPath))
	RequirementsInstall(job, TubularDir, gocd.RunIfPassed)
	DeployAMI(job, gocd.RunIfPassed)
	return stage
}
