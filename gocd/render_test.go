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

package gocd

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	t.Parallel()

	set, err := Render(sampleConfig(), 0)
	require.NoError(t, err)
	require.Equal(t, []string{"edxapp.gocd.yaml"}, set.Files())

	data := set["edxapp.gocd.yaml"]
	assert.True(t, bytes.HasPrefix(data, []byte("# Generated by cdpipelines.")))
	assert.Contains(t, string(data), "format_version: 10\n")

	doc, err := Decode(data)
	require.NoError(t, err)

	want := Document{
		FormatVersion: DefaultFormatVersion,
		Pipelines: map[string]PipelineDoc{
			"STAGE_edxapp_B-M-D": {
				Group:                "edxapp",
				LabelTemplate:        DefaultLabelTemplate,
				LockBehavior:         "none",
				EnvironmentVariables: map[string]string{"DEPLOYMENT": "edx"},
				SecureVariables:      map[string]string{"AWS_SECRET_ACCESS_KEY": "AES:abc"},
				Materials: map[string]MaterialDoc{
					"configuration": {
						Git:         "https://github.com/edx/configuration.git",
						Branch:      "master",
						Destination: "configuration",
					},
				},
				Stages: []map[string]StageDoc{
					{"build_ami": {
						FetchMaterials: true,
						Jobs: map[string]JobDoc{
							"launch_instance": {
								Artifacts: []map[string]ArtifactDoc{{"build": {Source: "target/launch_info.yml"}}},
								Tasks: []TaskDoc{{Exec: &ExecDoc{
									Command:          "/bin/bash",
									Arguments:        []string{"-c", "echo launch"},
									WorkingDirectory: "configuration",
									RunIf:            "passed",
								}}},
							},
						},
					}},
					{"deploy_ami": {
						FetchMaterials: true,
						Approval:       &ApprovalDoc{Type: "manual"},
						Jobs: map[string]JobDoc{
							"deploy": {
								Tasks: []TaskDoc{{Fetch: &FetchDoc{
									Pipeline:    "STAGE_edxapp_B-M-D",
									Stage:       "build_ami",
									Job:         "launch_instance",
									Source:      "launch_info.yml",
									IsFile:      true,
									Destination: "target",
								}}},
							},
						},
					}},
				},
			},
		},
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("rendered document mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	t.Parallel()

	first, err := Render(sampleConfig(), 10)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Render(sampleConfig(), 10)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRenderOneFilePerGroup(t *testing.T) {
	t.Parallel()

	cfg := sampleConfig()
	p := cfg.EnsureGroup("edxapp_prod_deploys").EnsurePipeline("PROD_edx_edxapp_B")
	p.EnsureMaterial(GitMaterial{URL: "https://github.com/edx/configuration.git", Destination: "configuration"})
	p.EnsureStage("build_ami").EnsureJob("launch").AddTask(BashTask("true", "", RunIfPassed))
	cfg.EnsureGroup("unused")

	set, err := Render(cfg, 9)
	require.NoError(t, err)
	assert.Equal(t, []string{"edxapp.gocd.yaml", "edxapp_prod_deploys.gocd.yaml"}, set.Files())

	doc, err := Decode(set["edxapp_prod_deploys.gocd.yaml"])
	require.NoError(t, err)
	assert.Equal(t, 9, doc.FormatVersion)
	assert.Equal(t, "edxapp_prod_deploys", doc.Pipelines["PROD_edx_edxapp_B"].Group)
}

func TestRenderRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := sampleConfig()
	cfg.Groups[0].Pipelines[0].Stages = nil
	_, err := Render(cfg, 10)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRenderMaterialOptions(t *testing.T) {
	t.Parallel()

	off := false
	got := materialDoc(GitMaterial{URL: "u", ShallowClone: true, PollingDisabled: true, IgnorePatterns: []string{"docs/**"}})
	assert.Equal(t, MaterialDoc{Git: "u", ShallowClone: true, AutoUpdate: &off, Blacklist: []string{"docs/**"}}, got)

	got = materialDoc(PipelineMaterial{Name: "prerelease", Pipeline: "up", Stage: "select_base_ami"})
	assert.Equal(t, MaterialDoc{Pipeline: "up", Stage: "select_base_ami"}, got)
}
