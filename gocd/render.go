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
	"fmt"

	"github.com/cowdogmoo/cdpipelines/errors"
	"gopkg.in/yaml.v3"
)

// DefaultFormatVersion is the YAML config plugin format version written
// when none is requested.
const DefaultFormatVersion = 10

// FileSuffix is appended to a group name to form its document file name.
const FileSuffix = ".gocd.yaml"

const generatedHeader = "# Generated by cdpipelines. Changes made here will be overwritten.\n"

// FileName returns the config-repo file name for a pipeline group.
func FileName(group string) string {
	return group + FileSuffix
}

// Render validates cfg and encodes one document per group. Output is
// deterministic for a given Config.
func Render(cfg *Config, formatVersion int) (ConfigSet, error) {
	if formatVersion <= 0 {
		formatVersion = DefaultFormatVersion
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	set := make(ConfigSet, len(cfg.Groups))
	for _, g := range cfg.Groups {
		if len(g.Pipelines) == 0 {
			continue
		}
		data, err := Encode(GroupDocument(g, formatVersion))
		if err != nil {
			return nil, errors.Wrap("render pipeline group", g.Name, err)
		}
		set[FileName(g.Name)] = data
	}
	return set, nil
}

// Encode marshals doc with the generated-file header.
func Encode(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(generatedHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses a rendered document.
func Decode(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to decode GoCD document: %w", err)
	}
	return doc, nil
}

// GroupDocument converts a group into its YAML document form.
func GroupDocument(g *Group, formatVersion int) Document {
	doc := Document{
		FormatVersion: formatVersion,
		Pipelines:     make(map[string]PipelineDoc, len(g.Pipelines)),
	}
	for _, p := range g.Pipelines {
		doc.Pipelines[p.Name] = pipelineDoc(g.Name, p)
	}
	return doc
}

func pipelineDoc(group string, p *Pipeline) PipelineDoc {
	doc := PipelineDoc{
		Group:         group,
		LabelTemplate: p.LabelTemplate,
		LockBehavior:  string(p.LockBehavior),
		Materials:     make(map[string]MaterialDoc, len(p.Materials)),
	}
	if len(p.EnvironmentVariables) > 0 {
		doc.EnvironmentVariables = copyStrings(p.EnvironmentVariables)
	}
	if len(p.SecureVariables) > 0 {
		doc.SecureVariables = copyStrings(p.SecureVariables)
	}

	for _, m := range p.Materials {
		doc.Materials[m.MaterialName()] = materialDoc(m)
	}
	for _, s := range p.Stages {
		doc.Stages = append(doc.Stages, map[string]StageDoc{s.Name: stageDoc(s)})
	}
	return doc
}

func materialDoc(m Material) MaterialDoc {
	switch t := m.(type) {
	case GitMaterial:
		doc := MaterialDoc{
			Git:          t.URL,
			Branch:       t.Branch,
			Destination:  t.Destination,
			ShallowClone: t.ShallowClone,
			Blacklist:    t.IgnorePatterns,
		}
		if t.PollingDisabled {
			off := false
			doc.AutoUpdate = &off
		}
		return doc
	case PipelineMaterial:
		return MaterialDoc{Pipeline: t.Pipeline, Stage: t.Stage}
	default:
		panic(fmt.Sprintf("gocd: unhandled material type %T", m))
	}
}

func stageDoc(s *Stage) StageDoc {
	doc := StageDoc{
		FetchMaterials: s.FetchMaterials,
		CleanWorkspace: s.CleanWorkingDir,
		Jobs:           make(map[string]JobDoc, len(s.Jobs)),
	}
	if s.Approval == ApprovalManual {
		doc.Approval = &ApprovalDoc{Type: string(ApprovalManual)}
	}
	for _, j := range s.Jobs {
		doc.Jobs[j.Name] = jobDoc(j)
	}
	return doc
}

func jobDoc(j *Job) JobDoc {
	doc := JobDoc{
		Timeout:   j.TimeoutInMinutes,
		Resources: j.Resources,
	}
	for _, a := range j.Artifacts {
		doc.Artifacts = append(doc.Artifacts, map[string]ArtifactDoc{
			string(a.Type): {Source: a.Source, Destination: a.Destination},
		})
	}
	for _, t := range j.Tasks {
		doc.Tasks = append(doc.Tasks, taskDoc(t))
	}
	return doc
}

func taskDoc(t Task) TaskDoc {
	switch task := t.(type) {
	case *ExecTask:
		return TaskDoc{Exec: &ExecDoc{
			Command:          task.Command,
			Arguments:        task.Arguments,
			WorkingDirectory: task.WorkingDir,
			RunIf:            string(task.RunIf),
		}}
	case *FetchArtifactTask:
		return TaskDoc{Fetch: &FetchDoc{
			Pipeline:    task.Pipeline,
			Stage:       task.Stage,
			Job:         task.Job,
			Source:      task.Source,
			IsFile:      task.IsFile,
			Destination: task.Destination,
			RunIf:       string(task.RunIf),
		}}
	default:
		panic(fmt.Sprintf("gocd: unhandled task type %T", t))
	}
}

func copyStrings(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
