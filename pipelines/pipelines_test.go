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
	"errors"
	"path/filepath"
	"testing"

	"github.com/cowdogmoo/cdpipelines/gocd"
	"github.com/cowdogmoo/cdpipelines/patterns"
	"github.com/cowdogmoo/cdpipelines/steps"
	"github.com/cowdogmoo/cdpipelines/variables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadVars(t *testing.T, overrides ...string) variables.Map {
	t.Helper()
	parsed, err := variables.ParseOverrides(overrides)
	require.NoError(t, err)
	vars, err := variables.LoadAndMerge([]string{
		filepath.Join("testdata", "edxapp.yml"),
		filepath.Join("testdata", "secrets.yml"),
	}, parsed)
	require.NoError(t, err)
	return vars
}

func stageNames(p *gocd.Pipeline) []string {
	out := make([]string, 0, len(p.Stages))
	for _, s := range p.Stages {
		out = append(out, s.Name)
	}
	return out
}

func TestInstallPerSteps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		steps    steps.Steps
		name     string
		build    string
		stages   []string
		upstream bool
	}{
		{
			steps:  steps.BuildMigrateDeploy,
			name:   "STAGE_edxapp_B-M-D",
			build:  "STAGE_edxapp_B-M-D",
			stages: []string{patterns.BuildAMIStageName, patterns.ApplyMigrationsStageName, patterns.DeployAMIStageName, patterns.RollbackStageName},
		},
		{
			steps:  steps.Build,
			name:   "STAGE_edxapp_B",
			build:  "STAGE_edxapp_B",
			stages: []string{patterns.BuildAMIStageName},
		},
		{
			steps:    steps.MigrateDeploy,
			name:     "STAGE_edxapp_M-D",
			build:    "STAGE_edxapp_B",
			stages:   []string{patterns.ApplyMigrationsStageName, patterns.DeployAMIStageName, patterns.RollbackStageName},
			upstream: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.steps.String(), func(t *testing.T) {
			t.Parallel()

			cfg := gocd.NewConfig()
			res, err := Install(context.Background(), cfg, InstallOptions{
				Variables:     loadVars(t),
				Steps:         tt.steps,
				PipelineName:  "STAGE_edxapp",
				PipelineGroup: "edxapp",
				AutoRun:       true,
			})
			require.NoError(t, err)

			assert.Equal(t, tt.name, res.Pipeline.Name)
			assert.Equal(t, tt.build, res.BuildPipeline)
			assert.Equal(t, tt.stages, stageNames(res.Pipeline))

			var build *gocd.PipelineMaterial
			for _, m := range res.Pipeline.Materials {
				if pm, ok := m.(gocd.PipelineMaterial); ok && pm.Name == BuildMaterialName {
					build = &pm
				}
			}
			if tt.upstream {
				require.NotNil(t, build)
				assert.Equal(t, "STAGE_edxapp_B", build.Pipeline)
				assert.Equal(t, patterns.BuildAMIStageName, build.Stage)
			} else {
				assert.Nil(t, build)
			}
		})
	}
}

func TestInstallVariables(t *testing.T) {
	t.Parallel()

	cfg := gocd.NewConfig()
	res, err := Install(context.Background(), cfg, InstallOptions{
		Variables:     loadVars(t, "ec2_instance_type=m5.large"),
		Steps:         steps.Build,
		PipelineName:  "PROD_edx_edxapp",
		PipelineGroup: "edxapp_prod_deploys",
	})
	require.NoError(t, err)

	p := res.Pipeline
	assert.Equal(t, "edx", p.EnvironmentVariables["DEPLOYMENT"])
	assert.Equal(t, "m5.large", p.EnvironmentVariables["EC2_INSTANCE_TYPE"])
	assert.Equal(t, "50", p.EnvironmentVariables["EBS_VOLUME_SIZE"])
	assert.Equal(t, "us-east-1", p.EnvironmentVariables["EC2_REGION"])
	assert.Equal(t, "master", p.EnvironmentVariables["CONFIGURATION_VERSION"])

	assert.Equal(t, "example-secret", p.SecureVariables["AWS_SECRET_ACCESS_KEY"])
	assert.Contains(t, p.SecureVariables["PRIVATE_GITHUB_KEY"], "BEGIN RSA PRIVATE KEY")
	assert.NotContains(t, p.EnvironmentVariables, "AWS_SECRET_ACCESS_KEY")
	assert.NotContains(t, p.EnvironmentVariables, "HIPCHAT_TOKEN")

	assert.Equal(t, gocd.ApprovalManual, p.Stages[0].Approval, "first stage waits without auto run")
}

func TestInstallDeployApproval(t *testing.T) {
	t.Parallel()

	for _, auto := range []bool{true, false} {
		cfg := gocd.NewConfig()
		res, err := Install(context.Background(), cfg, InstallOptions{
			Variables:     loadVars(t),
			Steps:         steps.BuildMigrateDeploy,
			PipelineName:  "app",
			PipelineGroup: "g",
			AutoRun:       true,
			AutoDeployAMI: auto,
		})
		require.NoError(t, err)

		deploy := res.Pipeline.EnsureStage(patterns.DeployAMIStageName)
		if auto {
			assert.Equal(t, gocd.ApprovalSuccess, deploy.Approval)
		} else {
			assert.Equal(t, gocd.ApprovalManual, deploy.Approval)
		}
		assert.Equal(t, gocd.ApprovalSuccess, res.Pipeline.Stages[1].Approval)
	}
}

func TestInstallFullRollout(t *testing.T) {
	t.Parallel()

	cfg := gocd.NewConfig()
	install := func(st steps.Steps, name, group string) *Result {
		res, err := Install(context.Background(), cfg, InstallOptions{
			Variables:     loadVars(t, "upstream_pipeline=prerelease_edxapp_materials_latest", "upstream_stage=select_base_ami", "upstream_material_name=prerelease"),
			Steps:         st,
			PipelineName:  name,
			PipelineGroup: group,
			AutoRun:       true,
		})
		require.NoError(t, err)
		return res
	}

	install(steps.BuildMigrateDeploy, "STAGE_edxapp", "edxapp")
	install(steps.Build, "PROD_edx_edxapp", "edxapp_prod_deploys")
	md := install(steps.MigrateDeploy, "PROD_edx_edxapp", "edxapp_prod_deploys")
	install(steps.Build, "PROD_edx_edxapp", "edxapp_prod_deploys")

	assert.Len(t, cfg.Pipelines(), 3, "reinstalling replaces the existing pipeline")
	assert.Equal(t, "PROD_edx_edxapp_B", md.BuildPipeline)

	var names []string
	for _, m := range md.Pipeline.Materials {
		names = append(names, m.MaterialName())
	}
	assert.ElementsMatch(t, []string{"configuration", "tubular", "prerelease", "build"}, names)

	set, err := gocd.Render(cfg, gocd.DefaultFormatVersion)
	require.NoError(t, err)
	assert.Equal(t, []string{"edxapp.gocd.yaml", "edxapp_prod_deploys.gocd.yaml"}, set.Files())
}

func TestInstallMissingVariables(t *testing.T) {
	t.Parallel()

	vars := variables.Map{"play": variables.String("edxapp")}
	_, err := Install(context.Background(), gocd.NewConfig(), InstallOptions{
		Variables:     vars,
		Steps:         steps.Build,
		PipelineName:  "app",
		PipelineGroup: "g",
	})

	var missing *variables.MissingKeysError
	require.True(t, errors.As(err, &missing))
	assert.Contains(t, missing.Keys, "base_ami_id")
	assert.NotContains(t, missing.Keys, "db_migration_pass")
}

func TestInstallRejectsUnsetSteps(t *testing.T) {
	t.Parallel()

	_, err := Install(context.Background(), gocd.NewConfig(), InstallOptions{
		Variables:     loadVars(t),
		PipelineName:  "app",
		PipelineGroup: "g",
	})
	assert.ErrorIs(t, err, steps.ErrInvalidPermutation)
}

func TestRequiredKeys(t *testing.T) {
	t.Parallel()

	md := RequiredKeys(steps.MigrateDeploy)
	assert.Contains(t, md, "db_migration_pass")
	assert.NotContains(t, md, "base_ami_id")

	b := RequiredKeys(steps.Build)
	assert.Contains(t, b, "base_ami_id")
	assert.NotContains(t, b, "application_path")
}

func TestDecodeSettingsUpstreamPair(t *testing.T) {
	t.Parallel()

	_, err := DecodeSettings(loadVars(t, "upstream_pipeline=prerelease"), steps.Build)
	assert.ErrorContains(t, err, "upstream_pipeline and upstream_stage")

	s, err := DecodeSettings(loadVars(t), steps.BuildMigrateDeploy)
	require.NoError(t, err)
	assert.Equal(t, []string{"lms", "cms"}, s.SubApplications)
	assert.Equal(t, "playbooks/edx-east/edxapp.yml", s.PlaybookPath)
	assert.Equal(t, "$GO_REVISION_EDX_PLATFORM", s.PlaybookVars["edx_platform_version"])
}
