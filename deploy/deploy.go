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

// Package deploy publishes a rendered ConfigSet to wherever GoCD reads its
// pipeline configuration from.
package deploy

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/cowdogmoo/cdpipelines/errors"
	"github.com/cowdogmoo/cdpipelines/gocd"
	"github.com/cowdogmoo/cdpipelines/logging"
	"github.com/pmezard/go-difflib/difflib"
)

// Directory names used when saving configuration locally.
const (
	BeforeDir = "config-before"
	AfterDir  = "config-after"
)

// Store holds the published configuration.
type Store interface {
	// Current returns the configuration as it is published now.
	Current(ctx context.Context) (gocd.ConfigSet, error)
	// Publish replaces the files in set, deletes the files in removed and
	// records the change with message.
	Publish(ctx context.Context, set gocd.ConfigSet, removed []string, message string) error
}

// Options controls Ensure.
type Options struct {
	// DryRun computes and reports changes without publishing.
	DryRun bool
	// SaveConfig writes the before and after sets under OutputDir.
	SaveConfig bool
	OutputDir  string
	// Prune deletes published files that the new set no longer contains.
	Prune bool
	// Message describes the change when publishing.
	Message string
}

// Result reports what Ensure found and did.
type Result struct {
	Changes   gocd.Changes
	Diff      string
	Published bool
}

// Ensure makes the store hold after.
func Ensure(ctx context.Context, store Store, after gocd.ConfigSet, opts Options) (*Result, error) {
	before, err := store.Current(ctx)
	if err != nil {
		return nil, errors.Wrap("read current pipeline configuration", "", err)
	}

	changes := after.Diff(before)
	if !opts.Prune {
		changes.Removed = nil
	}

	if opts.SaveConfig {
		if err := saveConfig(ctx, opts.OutputDir, before, after); err != nil {
			return nil, err
		}
	}

	res := &Result{Changes: changes, Diff: Diff(before, after, changes)}
	if changes.Empty() {
		logging.InfoContext(ctx, "Pipeline configuration is up to date (%d files)", len(changes.Unchanged))
		return res, nil
	}

	logging.InfoContext(ctx, "Pipeline configuration changes: %d added, %d modified, %d removed",
		len(changes.Added), len(changes.Modified), len(changes.Removed))
	for _, line := range strings.Split(strings.TrimRight(res.Diff, "\n"), "\n") {
		logging.DebugContext(ctx, "%s", line)
	}

	if opts.DryRun {
		logging.InfoContext(ctx, "Dry run: not publishing")
		return res, nil
	}

	message := opts.Message
	if message == "" {
		message = "Update pipelines: " + strings.Join(changes.Changed(), ", ")
	}
	if err := store.Publish(ctx, after, changes.Removed, message); err != nil {
		return res, errors.Wrap("publish pipeline configuration", "", err)
	}
	res.Published = true
	logging.InfoContext(ctx, "Published pipeline configuration")
	return res, nil
}

func saveConfig(ctx context.Context, dir string, before, after gocd.ConfigSet) error {
	if dir == "" {
		dir = "."
	}
	for name, set := range map[string]gocd.ConfigSet{BeforeDir: before, AfterDir: after} {
		path := filepath.Join(dir, name)
		if _, _, err := set.Write(path); err != nil {
			return errors.Wrap("save pipeline configuration", path, err)
		}
		logging.InfoContext(ctx, "Saved %d files to %s", len(set), path)
	}
	return nil
}

// Diff renders a unified diff for every changed file in changes.
func Diff(before, after gocd.ConfigSet, changes gocd.Changes) string {
	var sb strings.Builder
	for _, name := range changes.Changed() {
		text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(before[name])),
			B:        difflib.SplitLines(string(after[name])),
			FromFile: "a/" + name,
			ToFile:   "b/" + name,
			Context:  3,
			Eol:      "\n",
		})
		if err != nil {
			// Writing to a strings.Builder cannot fail.
			panic(err)
		}
		sb.WriteString(text)
	}
	return sb.String()
}
