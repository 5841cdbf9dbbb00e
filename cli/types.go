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

import "github.com/cowdogmoo/cdpipelines/steps"

// Output formats accepted by OutputFormatter.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// PipelineCLIOptions are the flags shared by install and render.
type PipelineCLIOptions struct {
	// VariableFiles are merged in order; later files may not contradict
	// earlier ones.
	VariableFiles []string

	// Variables are KEY=VALUE overrides (unparsed).
	Variables []string

	// Steps selects the stages; it is parsed by the flag itself.
	Steps steps.Steps

	PipelineName  string
	PipelineGroup string

	// AutoRun starts the first stage without approval.
	AutoRun bool

	// AutoDeployAMI skips the manual gate on the deploy stage.
	AutoDeployAMI bool

	// OverrideFiles are extra variable files passed to the launch play.
	OverrideFiles []string

	// OutputDir receives rendered or saved configuration.
	OutputDir string

	// OutputFormat is text or json.
	OutputFormat string
}

// InstallCLIOptions defines command-line options for the install command.
type InstallCLIOptions struct {
	PipelineCLIOptions

	// DryRun reports changes without publishing.
	DryRun bool

	// SaveConfig writes config-before/ and config-after/ under OutputDir.
	SaveConfig bool

	// Prune deletes published files that are no longer rendered.
	Prune bool

	// Message is the commit message; a default lists the changed files.
	Message string

	// RepoURL is the GoCD config repository to publish to.
	RepoURL    string
	RepoBranch string

	// RepoDir publishes into a local directory instead of a git remote.
	RepoDir string

	// GoCDURL is the server used to encrypt secure variables and run
	// preflight checks.
	GoCDURL string

	CheckAMI       bool
	CheckMaterials bool
	Preflight      bool
}
