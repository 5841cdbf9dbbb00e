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

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/cowdogmoo/cdpipelines/cli"
	"github.com/cowdogmoo/cdpipelines/gocd"
	"github.com/cowdogmoo/cdpipelines/logging"
	"github.com/cowdogmoo/cdpipelines/steps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRenderRedactsWithoutServer(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	opts := renderOptions{PipelineCLIOptions: testPipelineOptions(steps.BuildMigrateDeploy)}
	opts.OutputDir = outDir

	var out bytes.Buffer
	require.NoError(t, runRender(setupTestContext(t), testConfig(), opts, &out))

	data, err := os.ReadFile(filepath.Join(outDir, "edxapp.gocd.yaml"))
	require.NoError(t, err)
	doc, err := gocd.Decode(data)
	require.NoError(t, err)
	require.Contains(t, doc.Pipelines, "STAGE_edxapp_B-M-D")
	assert.Equal(t, 10, doc.FormatVersion)
	for k, v := range doc.Pipelines["STAGE_edxapp_B-M-D"].SecureVariables {
		assert.Equal(t, logging.Redacted, v, k)
	}

	assert.Contains(t, out.String(), "STAGE_edxapp_B-M-D")
}

func TestRunRenderEncryptsWithServer(t *testing.T) {
	t.Parallel()

	srv := newFakeGoCD(t, "23.1.0")
	outDir := t.TempDir()
	opts := renderOptions{PipelineCLIOptions: testPipelineOptions(steps.Build), GoCDURL: srv.URL}
	opts.OutputDir = outDir
	opts.OutputFormat = cli.FormatJSON

	var out bytes.Buffer
	require.NoError(t, runRender(setupTestContext(t), testConfig(), opts, &out))

	set, err := gocd.ReadConfigSet(outDir)
	require.NoError(t, err)
	doc, err := gocd.Decode(set["edxapp.gocd.yaml"])
	require.NoError(t, err)
	secure := doc.Pipelines["STAGE_edxapp_B"].SecureVariables
	require.NotEmpty(t, secure)
	for k, v := range secure {
		assert.True(t, gocd.IsEncrypted(v), "%s = %q", k, v)
	}

	var summaries []cli.PipelineSummary
	require.NoError(t, json.Unmarshal(out.Bytes(), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "STAGE_edxapp_B", summaries[0].BuildPipeline)
}

func TestRunRenderErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*renderOptions)
		wantErr string
	}{
		{"no output dir", func(o *renderOptions) { o.OutputDir = "" }, "--output-dir"},
		{"missing file", func(o *renderOptions) { o.VariableFiles = []string{"testdata/missing.yml"} }, "missing.yml"},
		{"bad name", func(o *renderOptions) { o.PipelineName = "bad name" }, "--pipeline-name"},
		{"yaml output", func(o *renderOptions) { o.OutputFormat = cli.FormatYAML }, "unknown format"},
		{"missing variables", func(o *renderOptions) {
			o.VariableFiles = []string{filepath.Join("testdata", "edxapp.yml")}
		}, "aws_access_key_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := renderOptions{PipelineCLIOptions: testPipelineOptions(steps.Build)}
			opts.OutputDir = t.TempDir()
			tt.mutate(&opts)

			err := runRender(setupTestContext(t), testConfig(), opts, &bytes.Buffer{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
