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
	"context"

	"github.com/cowdogmoo/cdpipelines/cli"
	"github.com/cowdogmoo/cdpipelines/config"
	"github.com/cowdogmoo/cdpipelines/gocd"
	"github.com/cowdogmoo/cdpipelines/logging"
	"github.com/cowdogmoo/cdpipelines/pipelines"
	"github.com/cowdogmoo/cdpipelines/variables"
	"github.com/spf13/cobra"
)

// addPipelineFlags registers the flags install and render share.
func addPipelineFlags(cmd *cobra.Command, opts *cli.PipelineCLIOptions) {
	f := cmd.Flags()
	f.StringArrayVarP(&opts.VariableFiles, "variable-file", "f", nil, "Variable file to merge (repeatable, merged in order)")
	f.StringArrayVarP(&opts.Variables, "variable", "e", nil, "Override a variable (KEY=VALUE, repeatable)")
	f.VarP(&opts.Steps, "bmd-steps", "s", "Stages to include: b, m, d in that order (e.g. bmd, b, md)")
	f.StringVarP(&opts.PipelineName, "pipeline-name", "n", "", "Base pipeline name")
	f.StringVarP(&opts.PipelineGroup, "pipeline-group", "g", "", "Pipeline group")
	f.BoolVar(&opts.AutoRun, "auto-run", false, "Start the first stage without manual approval")
	f.BoolVar(&opts.AutoDeployAMI, "auto-deploy-ami", false, "Deploy without manual approval once migrations pass")
	f.StringArrayVar(&opts.OverrideFiles, "override-file", nil, "Extra variable file passed to the instance launch play (repeatable)")
	f.StringVarP(&opts.OutputDir, "output-dir", "o", "", "Directory for rendered or saved configuration")
	f.StringVar(&opts.OutputFormat, "format", "", "Output format (text, json)")
}

// applyPipelineDefaults fills options left unset on the command line from
// the bound viper keys under prefix.
func applyPipelineDefaults(cmd *cobra.Command, prefix string, opts *cli.PipelineCLIOptions) {
	v := viperFromContext(cmd)
	if opts.OutputDir == "" {
		opts.OutputDir = v.GetString(prefix + ".output_dir")
	}
	if opts.OutputFormat == "" {
		opts.OutputFormat = v.GetString(prefix + ".format")
	}
}

// mergeVariables loads the variable files and applies the overrides.
func mergeVariables(ctx context.Context, opts cli.PipelineCLIOptions) (variables.Map, error) {
	overrides, err := variables.ParseOverrides(opts.Variables)
	if err != nil {
		return nil, err
	}
	logging.DebugContext(ctx, "Merging %d variable files and %d overrides", len(opts.VariableFiles), len(overrides))
	return variables.LoadAndMerge(opts.VariableFiles, overrides)
}

// assemble builds the pipeline configuration described by opts.
func assemble(ctx context.Context, opts cli.PipelineCLIOptions) (*gocd.Config, *pipelines.Result, variables.Map, error) {
	vars, err := mergeVariables(ctx, opts)
	if err != nil {
		return nil, nil, nil, err
	}

	cfg := gocd.NewConfig()
	res, err := pipelines.Install(ctx, cfg, pipelines.InstallOptions{
		Variables:     vars,
		Steps:         opts.Steps,
		PipelineName:  opts.PipelineName,
		PipelineGroup: opts.PipelineGroup,
		AutoRun:       opts.AutoRun,
		AutoDeployAMI: opts.AutoDeployAMI,
		OverrideFiles: opts.OverrideFiles,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, res, vars, nil
}

// newGoCDClient returns a client for url using the configured credentials.
func newGoCDClient(url string, conf *config.Config) (*gocd.Client, error) {
	var opts []gocd.ClientOption
	switch {
	case conf.GoCD.Token != "":
		opts = append(opts, gocd.WithToken(conf.GoCD.Token))
	case conf.GoCD.Username != "":
		opts = append(opts, gocd.WithBasicAuth(conf.GoCD.Username, conf.GoCD.Password))
	}
	return gocd.NewClient(url, opts...)
}
