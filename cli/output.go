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

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/cowdogmoo/cdpipelines/deploy"
	"github.com/cowdogmoo/cdpipelines/pipelines"
	"github.com/cowdogmoo/cdpipelines/variables"
	"gopkg.in/yaml.v3"
)

// OutputFormatter formats command output for display.
type OutputFormatter struct {
	format string
	out    io.Writer
}

// NewOutputFormatter creates a new output formatter writing to stdout.
func NewOutputFormatter(format string) *OutputFormatter {
	return &OutputFormatter{format: format, out: os.Stdout}
}

// WithWriter redirects the output to w.
func (f *OutputFormatter) WithWriter(w io.Writer) *OutputFormatter {
	f.out = w
	return f
}

// PipelineSummary is the printable form of an installed pipeline.
type PipelineSummary struct {
	Name          string   `json:"name"`
	Group         string   `json:"group"`
	Steps         string   `json:"steps"`
	Stages        []string `json:"stages"`
	Materials     []string `json:"materials"`
	BuildPipeline string   `json:"build_pipeline"`
}

// Summarize converts installation results into summaries.
func Summarize(results []*pipelines.Result) []PipelineSummary {
	out := make([]PipelineSummary, 0, len(results))
	for _, r := range results {
		s := PipelineSummary{
			Name:          r.Pipeline.Name,
			Group:         r.Group,
			Steps:         r.Steps.String(),
			BuildPipeline: r.BuildPipeline,
		}
		for _, st := range r.Pipeline.Stages {
			s.Stages = append(s.Stages, st.Name)
		}
		for _, m := range r.Pipeline.Materials {
			s.Materials = append(s.Materials, m.MaterialName())
		}
		out = append(out, s)
	}
	return out
}

// DisplayPipelines prints pipeline summaries as a table or JSON.
func (f *OutputFormatter) DisplayPipelines(summaries []PipelineSummary) error {
	switch f.format {
	case FormatJSON:
		return f.writeJSON(summaries)
	case FormatText, "":
		return f.displayPipelinesTable(summaries)
	default:
		return ValidateFormat(f.format, FormatText, FormatJSON)
	}
}

func (f *OutputFormatter) displayPipelinesTable(summaries []PipelineSummary) error {
	w := tabwriter.NewWriter(f.out, 0, 0, 3, ' ', 0)
	if _, err := fmt.Fprintln(w, "PIPELINE\tGROUP\tSTEPS\tSTAGES\tBUILD PIPELINE"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, s := range summaries {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			s.Name, s.Group, s.Steps, strings.Join(s.Stages, ","), s.BuildPipeline); err != nil {
			return fmt.Errorf("failed to write pipeline row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}

// changeReport is the JSON form of a deploy.Result.
type changeReport struct {
	Added     []string `json:"added"`
	Modified  []string `json:"modified"`
	Removed   []string `json:"removed"`
	Unchanged []string `json:"unchanged"`
	Published bool     `json:"published"`
	Diff      string   `json:"diff,omitempty"`
}

func newChangeReport(res *deploy.Result) changeReport {
	return changeReport{
		Added:     nonNil(res.Changes.Added),
		Modified:  nonNil(res.Changes.Modified),
		Removed:   nonNil(res.Changes.Removed),
		Unchanged: nonNil(res.Changes.Unchanged),
		Published: res.Published,
		Diff:      res.Diff,
	}
}

// DisplayChanges prints what an ensure run changed.
func (f *OutputFormatter) DisplayChanges(res *deploy.Result) error {
	if f.format == FormatJSON {
		return f.writeJSON(newChangeReport(res))
	}

	if res.Changes.Empty() {
		_, err := fmt.Fprintf(f.out, "No changes (%d files up to date)\n", len(res.Changes.Unchanged))
		return err
	}
	var sb strings.Builder
	for _, group := range []struct {
		mark  string
		files []string
	}{{"A", res.Changes.Added}, {"M", res.Changes.Modified}, {"D", res.Changes.Removed}} {
		for _, name := range group.files {
			fmt.Fprintf(&sb, "%s  %s\n", group.mark, name)
		}
	}
	if res.Diff != "" {
		sb.WriteString("\n")
		sb.WriteString(res.Diff)
	}
	_, err := io.WriteString(f.out, sb.String())
	return err
}

// DisplayInstall prints the installed pipelines followed by the
// configuration changes. JSON output is a single object.
func (f *OutputFormatter) DisplayInstall(summaries []PipelineSummary, res *deploy.Result) error {
	if f.format == FormatJSON {
		return f.writeJSON(struct {
			Pipelines []PipelineSummary `json:"pipelines"`
			Changes   changeReport      `json:"changes"`
		}{summaries, newChangeReport(res)})
	}
	if err := f.DisplayPipelines(summaries); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(f.out); err != nil {
		return err
	}
	return f.DisplayChanges(res)
}

// DisplayVariables prints a variable map as YAML (text) or JSON.
func (f *OutputFormatter) DisplayVariables(m variables.Map) error {
	switch f.format {
	case FormatJSON:
		return f.writeJSON(variables.ToAny(m))
	case FormatYAML, FormatText, "":
		enc := yaml.NewEncoder(f.out)
		enc.SetIndent(2)
		if err := enc.Encode(variables.ToAny(m)); err != nil {
			return fmt.Errorf("failed to encode variables: %w", err)
		}
		return enc.Close()
	default:
		return ValidateFormat(f.format, FormatYAML, FormatJSON)
	}
}

func (f *OutputFormatter) writeJSON(v any) error {
	encoder := json.NewEncoder(f.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
