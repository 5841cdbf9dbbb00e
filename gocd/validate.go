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
	"fmt"
	"regexp"
	"strings"
)

// namePattern is the character set GoCD accepts for pipeline, stage, job
// and material names.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9_\-.]+$`)

// maxNameLength is the longest name GoCD accepts.
const maxNameLength = 255

// ValidationError lists every problem found in a Config.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid pipeline configuration: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid pipeline configuration (%d problems):\n  - %s",
		len(e.Problems), strings.Join(e.Problems, "\n  - "))
}

func (e *ValidationError) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// ValidName reports whether name is acceptable to GoCD.
func ValidName(name string) bool {
	return len(name) <= maxNameLength && namePattern.MatchString(name)
}

// Validate checks naming rules and structural requirements. It returns a
// *ValidationError describing every problem, or nil.
func (c *Config) Validate() error {
	verr := &ValidationError{}
	pipelines := make(map[string]string)

	for _, g := range c.Groups {
		if !ValidName(g.Name) {
			verr.add("group %q: invalid name", g.Name)
		}
		for _, p := range g.Pipelines {
			if other, dup := pipelines[p.Name]; dup {
				verr.add("pipeline %q: defined in groups %q and %q", p.Name, other, g.Name)
				continue
			}
			pipelines[p.Name] = g.Name
			validatePipeline(verr, p)
		}
	}

	for _, p := range c.Pipelines() {
		for _, m := range p.Materials {
			pm, ok := m.(PipelineMaterial)
			if !ok {
				continue
			}
			upstream, found := c.FindPipeline(pm.Pipeline)
			if !found {
				// Upstream pipelines may live in another config repo.
				continue
			}
			if !hasStage(upstream, pm.Stage) {
				verr.add("pipeline %q: material %q references missing stage %q of %q",
					p.Name, pm.MaterialName(), pm.Stage, pm.Pipeline)
			}
		}
	}

	if len(verr.Problems) > 0 {
		return verr
	}
	return nil
}

func validatePipeline(verr *ValidationError, p *Pipeline) {
	if !ValidName(p.Name) {
		verr.add("pipeline %q: invalid name", p.Name)
	}
	if len(p.Materials) == 0 {
		verr.add("pipeline %q: at least one material is required", p.Name)
	}
	if len(p.Stages) == 0 {
		verr.add("pipeline %q: at least one stage is required", p.Name)
	}

	materials := make(map[string]bool)
	for _, m := range p.Materials {
		name := m.MaterialName()
		if name == "" {
			verr.add("pipeline %q: material without a name", p.Name)
			continue
		}
		if materials[name] {
			verr.add("pipeline %q: duplicate material %q", p.Name, name)
		}
		materials[name] = true
		switch t := m.(type) {
		case GitMaterial:
			if t.URL == "" {
				verr.add("pipeline %q: git material %q has no url", p.Name, name)
			}
		case PipelineMaterial:
			if t.Pipeline == "" || t.Stage == "" {
				verr.add("pipeline %q: pipeline material %q needs pipeline and stage", p.Name, name)
			}
		}
	}

	for k := range p.EnvironmentVariables {
		if _, both := p.SecureVariables[k]; both {
			verr.add("pipeline %q: variable %q is both plain and secure", p.Name, k)
		}
	}

	stages := make(map[string]bool)
	for _, s := range p.Stages {
		if !ValidName(s.Name) {
			verr.add("pipeline %q: stage %q: invalid name", p.Name, s.Name)
		}
		if stages[s.Name] {
			verr.add("pipeline %q: duplicate stage %q", p.Name, s.Name)
		}
		stages[s.Name] = true
		validateStage(verr, p, s)
	}
}

func validateStage(verr *ValidationError, p *Pipeline, s *Stage) {
	if len(s.Jobs) == 0 {
		verr.add("pipeline %q: stage %q: at least one job is required", p.Name, s.Name)
	}
	jobs := make(map[string]bool)
	for _, j := range s.Jobs {
		where := fmt.Sprintf("pipeline %q: stage %q: job %q", p.Name, s.Name, j.Name)
		if !ValidName(j.Name) {
			verr.add("%s: invalid name", where)
		}
		if jobs[j.Name] {
			verr.add("%s: duplicate job", where)
		}
		jobs[j.Name] = true
		if len(j.Tasks) == 0 {
			verr.add("%s: at least one task is required", where)
		}
		if j.TimeoutInMinutes < 0 {
			verr.add("%s: negative timeout", where)
		}
		for i, t := range j.Tasks {
			if !t.Condition().Valid() {
				verr.add("%s: task %d: unknown run_if %q", where, i, t.Condition())
			}
			if e, ok := t.(*ExecTask); ok && e.Command == "" {
				verr.add("%s: task %d: exec task without a command", where, i)
			}
			if f, ok := t.(*FetchArtifactTask); ok && (f.Stage == "" || f.Job == "" || f.Source == "") {
				verr.add("%s: task %d: fetch task needs stage, job and source", where, i)
			}
		}
	}
}

func hasStage(p *Pipeline, name string) bool {
	for _, s := range p.Stages {
		if s.Name == name {
			return true
		}
	}
	return false
}
