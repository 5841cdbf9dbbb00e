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
	"sort"
)

// RunIf is the condition under which a task runs.
type RunIf string

// Task run conditions.
const (
	RunIfPassed RunIf = "passed"
	RunIfFailed RunIf = "failed"
	RunIfAny    RunIf = "any"
)

// Valid reports whether r is a known run condition. The empty value means
// passed.
func (r RunIf) Valid() bool {
	switch r {
	case "", RunIfPassed, RunIfFailed, RunIfAny:
		return true
	}
	return false
}

// Approval controls how a stage is triggered once its predecessor passes.
type Approval string

// Stage approval types.
const (
	ApprovalSuccess Approval = "success"
	ApprovalManual  Approval = "manual"
)

// LockBehavior controls whether instances of a pipeline may run
// concurrently.
type LockBehavior string

// Pipeline lock behaviors.
const (
	LockNone           LockBehavior = "none"
	LockOnFailure      LockBehavior = "lockOnFailure"
	UnlockWhenFinished LockBehavior = "unlockWhenFinished"
)

const (
	// DefaultLabelTemplate labels runs with the pipeline counter.
	DefaultLabelTemplate = "${COUNT}"
	// DefaultJobTimeoutInMinutes of zero defers to the server default.
	DefaultJobTimeoutInMinutes = 0
)

// Config is the full set of pipeline groups managed by one config repo.
type Config struct {
	Groups []*Group
}

// NewConfig returns an empty configuration.
func NewConfig() *Config {
	return &Config{}
}

// EnsureGroup returns the named group, creating it when absent.
func (c *Config) EnsureGroup(name string) *Group {
	for _, g := range c.Groups {
		if g.Name == name {
			return g
		}
	}
	g := &Group{Name: name}
	c.Groups = append(c.Groups, g)
	return g
}

// Pipelines returns every pipeline across all groups in declaration order.
func (c *Config) Pipelines() []*Pipeline {
	var out []*Pipeline
	for _, g := range c.Groups {
		out = append(out, g.Pipelines...)
	}
	return out
}

// FindPipeline looks a pipeline up by name across all groups.
func (c *Config) FindPipeline(name string) (*Pipeline, bool) {
	for _, p := range c.Pipelines() {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Group is a named collection of pipelines.
type Group struct {
	Name      string
	Pipelines []*Pipeline
}

// EnsurePipeline returns the named pipeline, creating it when absent.
func (g *Group) EnsurePipeline(name string) *Pipeline {
	for _, p := range g.Pipelines {
		if p.Name == name {
			return p
		}
	}
	p := newPipeline(name)
	g.Pipelines = append(g.Pipelines, p)
	return p
}

// EnsureReplacementOfPipeline returns a fresh pipeline with the given name,
// discarding any existing definition but keeping its position in the group.
func (g *Group) EnsureReplacementOfPipeline(name string) *Pipeline {
	p := newPipeline(name)
	for i, existing := range g.Pipelines {
		if existing.Name == name {
			g.Pipelines[i] = p
			return p
		}
	}
	g.Pipelines = append(g.Pipelines, p)
	return p
}

// Pipeline is a GoCD pipeline definition.
type Pipeline struct {
	Name          string
	LabelTemplate string
	LockBehavior  LockBehavior
	Materials     []Material
	// EnvironmentVariables are rendered in plain text.
	EnvironmentVariables map[string]string
	// SecureVariables hold either plain values awaiting encryption or
	// server-encrypted values; see Config.EncryptSecureVariables.
	SecureVariables map[string]string
	Stages          []*Stage
}

func newPipeline(name string) *Pipeline {
	return &Pipeline{
		Name:                 name,
		LabelTemplate:        DefaultLabelTemplate,
		LockBehavior:         LockNone,
		EnvironmentVariables: map[string]string{},
		SecureVariables:      map[string]string{},
	}
}

// EnsureMaterial adds m unless a material with the same name exists, and
// returns the material held by the pipeline.
func (p *Pipeline) EnsureMaterial(m Material) Material {
	for _, existing := range p.Materials {
		if existing.MaterialName() == m.MaterialName() {
			return existing
		}
	}
	p.Materials = append(p.Materials, m)
	return m
}

// GitMaterials returns the pipeline's git materials.
func (p *Pipeline) GitMaterials() []GitMaterial {
	var out []GitMaterial
	for _, m := range p.Materials {
		if g, ok := m.(GitMaterial); ok {
			out = append(out, g)
		}
	}
	return out
}

// EnsureEnvironmentVariables merges vars into the plain environment.
func (p *Pipeline) EnsureEnvironmentVariables(vars map[string]string) {
	for k, v := range vars {
		p.EnvironmentVariables[k] = v
	}
}

// EnsureSecureVariables merges vars into the secure environment.
func (p *Pipeline) EnsureSecureVariables(vars map[string]string) {
	for k, v := range vars {
		p.SecureVariables[k] = v
	}
}

// EnsureStage returns the named stage, appending it when absent.
func (p *Pipeline) EnsureStage(name string) *Stage {
	for _, s := range p.Stages {
		if s.Name == name {
			return s
		}
	}
	s := &Stage{Name: name, Approval: ApprovalSuccess, FetchMaterials: true}
	p.Stages = append(p.Stages, s)
	return s
}

// Stage is an ordered step of a pipeline. Its jobs run in parallel.
type Stage struct {
	Name            string
	Approval        Approval
	FetchMaterials  bool
	CleanWorkingDir bool
	Jobs            []*Job
}

// SetManualApproval requires an operator to trigger the stage.
func (s *Stage) SetManualApproval() *Stage {
	s.Approval = ApprovalManual
	return s
}

// EnsureJob returns the named job, creating it when absent.
func (s *Stage) EnsureJob(name string) *Job {
	for _, j := range s.Jobs {
		if j.Name == name {
			return j
		}
	}
	j := &Job{Name: name, TimeoutInMinutes: DefaultJobTimeoutInMinutes}
	s.Jobs = append(s.Jobs, j)
	return j
}

// Job is a unit of work run on a single agent.
type Job struct {
	Name             string
	TimeoutInMinutes int
	Resources        []string
	Tasks            []Task
	Artifacts        []Artifact
}

// AddTask appends t and returns it.
func (j *Job) AddTask(t Task) Task {
	j.Tasks = append(j.Tasks, t)
	return t
}

// EnsureArtifacts adds artifacts not already declared, keeping the list
// sorted by source.
func (j *Job) EnsureArtifacts(artifacts ...Artifact) {
	for _, a := range artifacts {
		found := false
		for _, existing := range j.Artifacts {
			if existing == a {
				found = true
				break
			}
		}
		if !found {
			j.Artifacts = append(j.Artifacts, a)
		}
	}
	sort.Slice(j.Artifacts, func(i, k int) bool {
		if j.Artifacts[i].Source != j.Artifacts[k].Source {
			return j.Artifacts[i].Source < j.Artifacts[k].Source
		}
		return j.Artifacts[i].Type < j.Artifacts[k].Type
	})
}

// ArtifactType is the kind of artifact a job publishes.
type ArtifactType string

// Artifact types.
const (
	BuildArtifactType ArtifactType = "build"
	TestArtifactType  ArtifactType = "test"
)

// Artifact is a file or directory a job publishes to the server.
type Artifact struct {
	Type        ArtifactType
	Source      string
	Destination string
}

// BuildArtifact returns a build artifact for source.
func BuildArtifact(source string) Artifact {
	return Artifact{Type: BuildArtifactType, Source: source}
}

// Material is a pipeline trigger source.
type Material interface {
	MaterialName() string
	isMaterial()
}

// GitMaterial triggers a pipeline from a git repository.
type GitMaterial struct {
	Name           string
	URL            string
	Branch         string
	Destination    string
	ShallowClone   bool
	IgnorePatterns []string
	// Polling disabled leaves the material updated only by upstream
	// triggers or webhooks.
	PollingDisabled bool
}

// MaterialName returns the material name, falling back to the destination.
func (g GitMaterial) MaterialName() string {
	if g.Name != "" {
		return g.Name
	}
	return g.Destination
}

func (GitMaterial) isMaterial() {}

// PipelineMaterial triggers a pipeline when an upstream stage passes.
type PipelineMaterial struct {
	Name     string
	Pipeline string
	Stage    string
}

// MaterialName returns the material name, falling back to the upstream
// pipeline name.
func (p PipelineMaterial) MaterialName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Pipeline
}

func (PipelineMaterial) isMaterial() {}

// Task is a single command executed by a job.
type Task interface {
	Condition() RunIf
	isTask()
}

// ExecTask runs a command with arguments.
type ExecTask struct {
	Command    string
	Arguments  []string
	WorkingDir string
	RunIf      RunIf
}

// Condition implements Task.
func (t *ExecTask) Condition() RunIf { return t.RunIf }

func (*ExecTask) isTask() {}

// BashTask wraps command in "/bin/bash -c".
func BashTask(command, workingDir string, runIf RunIf) *ExecTask {
	return &ExecTask{
		Command:    "/bin/bash",
		Arguments:  []string{"-c", command},
		WorkingDir: workingDir,
		RunIf:      runIf,
	}
}

// FetchArtifactTask copies an artifact published by an upstream job.
type FetchArtifactTask struct {
	Pipeline    string
	Stage       string
	Job         string
	Source      string
	IsFile      bool
	Destination string
	RunIf       RunIf
}

// Condition implements Task.
func (t *FetchArtifactTask) Condition() RunIf { return t.RunIf }

func (*FetchArtifactTask) isTask() {}

// ArtifactLocation points at an artifact published by a specific job.
type ArtifactLocation struct {
	Pipeline string
	Stage    string
	Job      string
	FileName string
}

// FetchFile returns a task fetching the location as a single file.
func (l ArtifactLocation) FetchFile(dest string) *FetchArtifactTask {
	return &FetchArtifactTask{
		Pipeline: l.Pipeline, Stage: l.Stage, Job: l.Job,
		Source: l.FileName, IsFile: true, Destination: dest,
	}
}

// FetchDir returns a task fetching the location as a directory.
func (l ArtifactLocation) FetchDir(dest string) *FetchArtifactTask {
	t := l.FetchFile(dest)
	t.IsFile = false
	return t
}
