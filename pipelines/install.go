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

package pipelines

import (
	"context"
	"fmt"

	"github.com/cowdogmoo/cdpipelines/gocd"
	"github.com/cowdogmoo/cdpipelines/logging"
	"github.com/cowdogmoo/cdpipelines/patterns"
	"github.com/cowdogmoo/cdpipelines/steps"
	"github.com/cowdogmoo/cdpipelines/variables"
)

// BuildMaterialName names the pipeline material an "md" pipeline uses to
// follow its "_B" pipeline.
const BuildMaterialName = "build"

// InstallOptions controls one pipeline installation.
type InstallOptions struct {
	// Variables is the merged variable map.
	Variables variables.Map
	Steps     steps.Steps
	// PipelineName is the base name; suffixes come from Steps.
	PipelineName  string
	PipelineGroup string
	// AutoRun lets the first stage start without approval.
	AutoRun bool
	// AutoDeployAMI lets the deploy stage follow migrations without
	// approval.
	AutoDeployAMI bool
	// OverrideFiles are passed to the instance launch play.
	OverrideFiles []string
}

// Result describes an installed pipeline.
type Result struct {
	Pipeline *gocd.Pipeline
	Group    string
	Steps    steps.Steps
	// BuildPipeline is the pipeline that owns the build stage. It equals
	// Pipeline.Name unless Steps is MigrateDeploy.
	BuildPipeline string
}

// Install builds or replaces the pipeline described by opts in cfg.
func Install(ctx context.Context, cfg *gocd.Config, opts InstallOptions) (*Result, error) {
	if !opts.Steps.Valid() {
		return nil, &steps.InvalidError{Input: opts.Steps.String(), Reason: "steps not set"}
	}
	if opts.PipelineName == "" || opts.PipelineGroup == "" {
		return nil, fmt.Errorf("pipeline name and group are required")
	}

	settings, err := DecodeSettings(opts.Variables, opts.Steps)
	if err != nil {
		return nil, err
	}

	primary, secondary := opts.Steps.PipelineNames(opts.PipelineName)
	logging.InfoContext(ctx, "Installing pipeline %s in group %s (steps %s)", primary, opts.PipelineGroup, opts.Steps)

	p := cfg.EnsureGroup(opts.PipelineGroup).EnsureReplacementOfPipeline(primary)
	p.EnsureEnvironmentVariables(settings.environment())
	p.EnsureSecureVariables(settings.secureEnvironment())

	p.EnsureMaterial(gocd.GitMaterial{
		Name:        patterns.PublicConfigurationDir,
		URL:         settings.ConfigurationRepo,
		Branch:      settings.ConfigurationVersion,
		Destination: patterns.PublicConfigurationDir,
	})
	p.EnsureMaterial(gocd.GitMaterial{
		Name:           patterns.TubularDir,
		URL:            settings.TubularRepo,
		Branch:         settings.TubularVersion,
		Destination:    patterns.TubularDir,
		IgnorePatterns: []string{"**/*"},
	})
	if settings.UpstreamPipeline != "" {
		p.EnsureMaterial(gocd.PipelineMaterial{
			Name:     sanitizeName(settings.UpstreamMaterial),
			Pipeline: settings.UpstreamPipeline,
			Stage:    settings.UpstreamStage,
		})
	}

	buildPipeline := ""
	if secondary != primary {
		p.EnsureMaterial(gocd.PipelineMaterial{
			Name:     BuildMaterialName,
			Pipeline: secondary,
			Stage:    patterns.BuildAMIStageName,
		})
		buildPipeline = secondary
	}

	firstStage := true
	manual := func() bool {
		m := firstStage && !opts.AutoRun
		firstStage = false
		return m
	}

	if opts.Steps.Includes(steps.StageBuild) {
		patterns.BuildAMI(p, patterns.BuildAMIOptions{
			PlaybookPath:   settings.PlaybookPath,
			OverrideFiles:  opts.OverrideFiles,
			PlaybookVars:   settings.PlaybookVars,
			AMIVars:        settings.AMIVars,
			ManualApproval: manual(),
			UseInternal:    settings.ConfigurationInternalRepo != "",
		})
	}
	migrate := patterns.MigrateOptions{
		BuildPipeline:   buildPipeline,
		SubApplications: settings.SubApplications,
	}
	if opts.Steps.Includes(steps.StageMigrate) {
		migrate.ManualApproval = manual()
		patterns.ApplyMigrations(p, migrate)
	}
	if opts.Steps.Includes(steps.StageDeploy) {
		patterns.DeployAMIStage(p, patterns.DeployOptions{
			BuildPipeline:  buildPipeline,
			ManualApproval: !opts.AutoDeployAMI,
		})
	}
	// Rollback is a manual stage and must come after deploy.
	if opts.Steps.Includes(steps.StageMigrate) {
		patterns.RollbackMigrations(p, migrate)
	}

	return &Result{
		Pipeline:      p,
		Group:         opts.PipelineGroup,
		Steps:         opts.Steps,
		BuildPipeline: secondary,
	}, nil
}
