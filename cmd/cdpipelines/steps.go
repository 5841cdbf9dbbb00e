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
	"fmt"
	"io"

	"github.com/cowdogmoo/cdpipelines/steps"
	"github.com/spf13/cobra"
)

var stepsPipelineName string

var stepsCmd = &cobra.Command{
	Use:   "steps STEPS",
	Short: "Check a stage permutation and show the pipelines it produces",
	Long: `Steps checks that STEPS is a permitted combination of the build (b),
migrate (m) and deploy (d) stages and prints its canonical form and stages.

With --pipeline-name it also prints the names of the pipeline that would be
generated and of the pipeline that owns the build stage.`,
	Example: `  cdpipelines steps bmd
  cdpipelines steps md --pipeline-name STAGE_edxapp`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSteps(cmd.OutOrStdout(), args[0], stepsPipelineName)
	},
}

func init() {
	stepsCmd.Flags().StringVarP(&stepsPipelineName, "pipeline-name", "n", "", "Base pipeline name")
}

func runSteps(out io.Writer, token, base string) error {
	st, err := steps.Parse(token)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "steps: %s\n", st)
	fmt.Fprint(out, "stages:")
	for _, s := range st.Stages() {
		fmt.Fprintf(out, " %s", s)
	}
	fmt.Fprintln(out)

	if base != "" {
		primary, secondary := st.PipelineNames(base)
		fmt.Fprintf(out, "pipeline: %s\n", primary)
		fmt.Fprintf(out, "build pipeline: %s\n", secondary)
	}
	return nil
}
