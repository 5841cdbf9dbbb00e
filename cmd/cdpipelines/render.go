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
	"fmt"
	"io"

	"github.com/cowdogmoo/cdpipelines/cli"
	"github.com/cowdogmoo/cdpipelines/config"
	"github.com/cowdogmoo/cdpipelines/errors"
	"github.com/cowdogmoo/cdpipelines/gocd"
	"github.com/cowdogmoo/cdpipelines/logging"
	"github.com/cowdogmoo/cdpipelines/pipelines"
	"github.com/spf13/cobra"
)

type renderOptions struct {
	cli.PipelineCLIOptions

	// GoCDURL, when set, encrypts secure variables on that server.
	// Otherwise they are redacted.
	GoCDURL string
}

var renderOpts = &renderOptions{}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render pipeline configuration to a directory",
	Long: `Render builds the pipeline described by the variable files and writes
one <group>.gocd.yaml document per pipeline group to --output-dir.

Secure variables are encrypted when --gocd-url is given and redacted
otherwise.`,
	Example: `  # Render build, migrate and deploy for stage
  cdpipelines render -f edxapp.yml -f stage.yml -s bmd -n STAGE_edxapp -g edxapp -o out/`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf := configFromContext(cmd)
		if conf == nil {
			return fmt.Errorf("configuration not initialized")
		}
		applyPipelineDefaults(cmd, "render", &renderOpts.PipelineCLIOptions)
		if renderOpts.GoCDURL == "" {
			renderOpts.GoCDURL = viperFromContext(cmd).GetString("render.gocd_url")
		}
		return runRender(cmd.Context(), conf, *renderOpts, cmd.OutOrStdout())
	},
}

func init() {
	addPipelineFlags(renderCmd, &renderOpts.PipelineCLIOptions)
	renderCmd.Flags().StringVar(&renderOpts.GoCDURL, "gocd-url", "", "GoCD server used to encrypt secure variables")
}

func runRender(ctx context.Context, conf *config.Config, opts renderOptions, out io.Writer) error {
	if err := cli.NewValidator().ValidatePipelineOptions(opts.PipelineCLIOptions); err != nil {
		return err
	}
	if opts.OutputDir == "" {
		return fmt.Errorf("--output-dir is required")
	}

	cfg, res, _, err := assemble(ctx, opts.PipelineCLIOptions)
	if err != nil {
		return err
	}

	var enc gocd.Encrypter = gocd.RedactingEncrypter{}
	if opts.GoCDURL != "" {
		client, err := newGoCDClient(opts.GoCDURL, conf)
		if err != nil {
			return err
		}
		enc = client
	} else {
		logging.WarnContext(ctx, "No GoCD server given; secure variables are redacted")
	}
	if err := cfg.EncryptSecureVariables(ctx, enc); err != nil {
		return err
	}

	set, err := gocd.Render(cfg, conf.GoCD.YAMLFormatVersion)
	if err != nil {
		return err
	}
	changed, unchanged, err := set.Write(opts.OutputDir)
	if err != nil {
		return errors.Wrap("write pipeline configuration", opts.OutputDir, err)
	}
	logging.InfoContext(ctx, "Wrote %d files to %s (%d unchanged)", len(changed), opts.OutputDir, len(unchanged))

	return cli.NewOutputFormatter(opts.OutputFormat).WithWriter(out).
		DisplayPipelines(cli.Summarize([]*pipelines.Result{res}))
}
