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

// Document is one GoCD YAML config-repo file.
type Document struct {
	FormatVersion int                    `yaml:"format_version" json:"format_version" jsonschema:"required,minimum=1"`
	Pipelines     map[string]PipelineDoc `yaml:"pipelines" json:"pipelines" jsonschema:"required"`
}

// PipelineDoc is the YAML form of a Pipeline.
type PipelineDoc struct {
	Group                string                 `yaml:"group" json:"group" jsonschema:"required"`
	LabelTemplate        string                 `yaml:"label_template,omitempty" json:"label_template,omitempty"`
	LockBehavior         string                 `yaml:"lock_behavior,omitempty" json:"lock_behavior,omitempty" jsonschema:"enum=none,enum=lockOnFailure,enum=unlockWhenFinished"`
	EnvironmentVariables map[string]string      `yaml:"environment_variables,omitempty" json:"environment_variables,omitempty"`
	SecureVariables      map[string]string      `yaml:"secure_variables,omitempty" json:"secure_variables,omitempty"`
	Materials            map[string]MaterialDoc `yaml:"materials" json:"materials" jsonschema:"required,minProperties=1"`
	// Stages is a list of single-entry maps so stage order survives.
	Stages []map[string]StageDoc `yaml:"stages" json:"stages" jsonschema:"required,minItems=1"`
}

// MaterialDoc is the YAML form of a git or pipeline material.
type MaterialDoc struct {
	Git          string   `yaml:"git,omitempty" json:"git,omitempty"`
	Branch       string   `yaml:"branch,omitempty" json:"branch,omitempty"`
	Destination  string   `yaml:"destination,omitempty" json:"destination,omitempty"`
	ShallowClone bool     `yaml:"shallow_clone,omitempty" json:"shallow_clone,omitempty"`
	AutoUpdate   *bool    `yaml:"auto_update,omitempty" json:"auto_update,omitempty"`
	Blacklist    []string `yaml:"blacklist,omitempty" json:"blacklist,omitempty"`
	Pipeline     string   `yaml:"pipeline,omitempty" json:"pipeline,omitempty"`
	Stage        string   `yaml:"stage,omitempty" json:"stage,omitempty"`
}

// StageDoc is the YAML form of a Stage.
type StageDoc struct {
	FetchMaterials bool              `yaml:"fetch_materials" json:"fetch_materials"`
	CleanWorkspace bool              `yaml:"clean_workspace,omitempty" json:"clean_workspace,omitempty"`
	Approval       *ApprovalDoc      `yaml:"approval,omitempty" json:"approval,omitempty"`
	Jobs           map[string]JobDoc `yaml:"jobs" json:"jobs" jsonschema:"required,minProperties=1"`
}

// ApprovalDoc is a stage approval.
type ApprovalDoc struct {
	Type string `yaml:"type" json:"type" jsonschema:"enum=success,enum=manual"`
}

// JobDoc is the YAML form of a Job.
type JobDoc struct {
	Timeout   int                      `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Resources []string                 `yaml:"resources,omitempty" json:"resources,omitempty"`
	Artifacts []map[string]ArtifactDoc `yaml:"artifacts,omitempty" json:"artifacts,omitempty"`
	Tasks     []TaskDoc                `yaml:"tasks" json:"tasks" jsonschema:"required,minItems=1"`
}

// ArtifactDoc is a published artifact keyed by its type.
type ArtifactDoc struct {
	Source      string `yaml:"source" json:"source"`
	Destination string `yaml:"destination,omitempty" json:"destination,omitempty"`
}

// TaskDoc holds exactly one of its fields.
type TaskDoc struct {
	Exec  *ExecDoc  `yaml:"exec,omitempty" json:"exec,omitempty"`
	Fetch *FetchDoc `yaml:"fetch,omitempty" json:"fetch,omitempty"`
}

// ExecDoc is the YAML form of an ExecTask.
type ExecDoc struct {
	Command          string   `yaml:"command" json:"command"`
	Arguments        []string `yaml:"arguments,omitempty" json:"arguments,omitempty"`
	WorkingDirectory string   `yaml:"working_directory,omitempty" json:"working_directory,omitempty"`
	RunIf            string   `yaml:"run_if,omitempty" json:"run_if,omitempty" jsonschema:"enum=passed,enum=failed,enum=any"`
}

// FetchDoc is the YAML form of a FetchArtifactTask.
type FetchDoc struct {
	Pipeline    string `yaml:"pipeline,omitempty" json:"pipeline,omitempty"`
	Stage       string `yaml:"stage" json:"stage"`
	Job         string `yaml:"job" json:"job"`
	Source      string `yaml:"source" json:"source"`
	IsFile      bool   `yaml:"is_file,omitempty" json:"is_file,omitempty"`
	Destination string `yaml:"destination,omitempty" json:"destination,omitempty"`
	RunIf       string `yaml:"run_if,omitempty" json:"run_if,omitempty" jsonschema:"enum=passed,enum=failed,enum=any"`
}
