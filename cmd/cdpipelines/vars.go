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
	"github.com/cowdogmoo/cdpipelines/pipelines"
	"github.com/cowdogmoo/cdpipelines/steps"
	"github.com/cowdogmoo/cdpipelines/variables"
	"github.com/spf13/cobra"
)

type varsOptions struct {
	VariableFiles []string
	Variables     []string
	// Steps, when set, checks that every variable those stages need is
	// present.
	Steps       steps.Steps
	Format      string
	ShowSecrets bool
}

var varsOpts = &varsOptions{}

var varsCmd = &cobra.Command{
	Use:   "vars",
	Short: "Show the merged variables",
	Long: `Vars merges the variable files and KEY=VALUE overrides the same way
install does and prints the result. Files may add keys but never change a
value another file set; a conflict names both values and the key.

Sensitive values are redacted unless --show-secrets is given.`,
	Example: `  cdpipelines vars -f edxapp.yml -f stage.yml -e app_version=abc123
  cdpipelines vars -f edxapp.yml -s bmd --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVars(cmd.Context(), *varsOpts, cmd.OutOrStdout())
	},
}

func init() {
	f := varsCmd.Flags()
	f.StringArrayVarP(&varsOpts.VariableFiles, "variable-file", "f", nil, "Variable file to merge (repeatable, merged in order)")
	f.StringArrayVarP(&varsOpts.Variables, "variable", "e", nil, "Override a variable (KEY=VALUE, repeatable)")
	f.VarP(&varsOpts.Steps, "bmd-steps", "s", "Check the variables these stages require")
	f.StringVar(&varsOpts.Format, "format", cli.FormatYAML, "Output format (yaml, json)")
	f.BoolVar(&varsOpts.ShowSecrets, "show-secrets", false, "Print sensitive values")
}

func runVars(ctx context.Context, opts varsOptions, out io.Writer) error {
	if err := cli.ValidateFormat(opts.Format, cli.FormatYAML, cli.FormatJSON); err != nil {
		return err
	}
	if len(opts.VariableFiles) == 0 {
		return fmt.Errorf("at least one --variable-file is required")
	}

	merged, err := mergeVariables(ctx, cli.PipelineCLIOptions{
		VariableFiles: opts.VariableFiles,
		Variables:     opts.Variables,
	})
	if err != nil {
		return err
	}

	if opts.Steps.Valid() {
		if err := merged.Require(pipelines.RequiredKeys(opts.Steps)...); err != nil {
			return err
		}
	}

	if !opts.ShowSecrets {
		merged = variables.Redacted(merged)
	}
	return cli.NewOutputFormatter(opts.Format).WithWriter(out).DisplayVariables(merged)
}
