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
	"fmt"
	"os"
	"strings"

	"github.com/cowdogmoo/cdpipelines/gocd"
)

// Validator validates CLI input before passing to business logic.
type Validator struct{}

// NewValidator creates a new CLI validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidatePipelineOptions validates the options shared by install and
// render.
func (v *Validator) ValidatePipelineOptions(opts PipelineCLIOptions) error {
	if len(opts.VariableFiles) == 0 {
		return fmt.Errorf("at least one --variable-file is required")
	}
	for _, path := range append(append([]string(nil), opts.VariableFiles...), opts.OverrideFiles...) {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("variable file %s: %w", path, err)
		}
	}
	for _, variable := range opts.Variables {
		if !ValidateKeyValueFormat(variable) {
			return fmt.Errorf("invalid variable format: %s (expected KEY=VALUE)", variable)
		}
	}

	if !opts.Steps.Valid() {
		return fmt.Errorf("--bmd-steps is required (one of b, md, bmd)")
	}
	if err := validateName("--pipeline-name", opts.PipelineName); err != nil {
		return err
	}
	if err := validateName("--pipeline-group", opts.PipelineGroup); err != nil {
		return err
	}

	return ValidateFormat(opts.OutputFormat, FormatText, FormatJSON)
}

// ValidateInstallOptions validates install command options for
// correctness and consistency.
func (v *Validator) ValidateInstallOptions(opts InstallCLIOptions) error {
	if err := v.ValidatePipelineOptions(opts.PipelineCLIOptions); err != nil {
		return err
	}
	return v.validateInstallDependencies(opts)
}

func (v *Validator) validateInstallDependencies(opts InstallCLIOptions) error {
	switch {
	case opts.RepoURL == "" && opts.RepoDir == "":
		return fmt.Errorf("one of --repo-url or --repo-dir is required")
	case opts.RepoURL != "" && opts.RepoDir != "":
		return fmt.Errorf("only one of --repo-url or --repo-dir can be specified")
	}

	if opts.Preflight && opts.GoCDURL == "" {
		return fmt.Errorf("--preflight requires --gocd-url to be specified")
	}
	if !opts.DryRun && opts.GoCDURL == "" {
		return fmt.Errorf("--gocd-url is required to encrypt secure variables (or use --dry-run)")
	}
	if opts.SaveConfig && opts.OutputDir == "" {
		return fmt.Errorf("--save-config requires --output-dir")
	}
	return nil
}

func validateName(flag, name string) error {
	if name == "" {
		return fmt.Errorf("%s is required", flag)
	}
	if !gocd.ValidName(name) {
		return fmt.Errorf("invalid %s %q (letters, digits, '_', '-' and '.' only)", flag, name)
	}
	return nil
}

// ValidateFormat checks format against the allowed output formats. An
// empty format is allowed and means text.
func ValidateFormat(format string, allowed ...string) error {
	if format == "" {
		return nil
	}
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unknown format: %s (supported: %s)", format, strings.Join(allowed, ", "))
}

// ParseKeyValue parses a single KEY=VALUE string.
func ParseKeyValue(pair string) (string, string, error) {
	key, value, found := strings.Cut(pair, "=")
	if !found {
		return "", "", fmt.Errorf("expected format KEY=VALUE, got %q", pair)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", fmt.Errorf("key cannot be empty")
	}
	return key, value, nil
}

// ValidateKeyValueFormat checks if a string is in KEY=VALUE format without
// parsing.
func ValidateKeyValueFormat(pair string) bool {
	_, _, err := ParseKeyValue(pair)
	return err == nil
}
