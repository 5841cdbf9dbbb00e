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

package steps

import (
	"fmt"
	"strings"
)

// Stage is one of the three pipeline stages a Steps value may include.
type Stage byte

// Stage letters, in canonical order.
const (
	StageBuild   Stage = 'b'
	StageMigrate Stage = 'm'
	StageDeploy  Stage = 'd'
)

// canonicalOrder is the fixed stage order b < m < d.
var canonicalOrder = []Stage{StageBuild, StageMigrate, StageDeploy}

func (s Stage) String() string {
	switch s {
	case StageBuild:
		return "build"
	case StageMigrate:
		return "migrate"
	case StageDeploy:
		return "deploy"
	default:
		return fmt.Sprintf("Stage(%q)", byte(s))
	}
}

// Steps is the closed set of legal stage combinations. The zero value is
// not a valid combination.
type Steps int

// Legal stage combinations.
const (
	invalid Steps = iota
	Build
	MigrateDeploy
	BuildMigrateDeploy
)

// All lists every legal Steps value.
var All = []Steps{Build, MigrateDeploy, BuildMigrateDeploy}

// legalSets is the error-message form of the legal combinations.
const legalSets = "b, md, bmd"

// Parse validates and normalizes a step token. Letters are matched
// case-insensitively and in any order; each may appear at most once.
func Parse(s string) (Steps, error) {
	if s == "" {
		return invalid, &InvalidError{Input: s, Reason: "token is empty"}
	}

	var seen [3]bool
	for _, r := range strings.ToLower(s) {
		idx := strings.IndexRune("bmd", r)
		if idx < 0 {
			return invalid, &InvalidError{Input: s, Reason: fmt.Sprintf("unknown step %q", r)}
		}
		if seen[idx] {
			return invalid, &InvalidError{Input: s, Reason: fmt.Sprintf("step %q repeated", r)}
		}
		seen[idx] = true
	}

	switch seen {
	case [3]bool{true, false, false}:
		return Build, nil
	case [3]bool{false, true, true}:
		return MigrateDeploy, nil
	case [3]bool{true, true, true}:
		return BuildMigrateDeploy, nil
	}
	return invalid, &InvalidError{Input: s, Reason: "unsupported combination of steps"}
}

// MustParse is like Parse but panics on error. For tests and constants.
func MustParse(s string) Steps {
	st, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return st
}

// Validate returns nil iff s is a legal step token.
func Validate(s string) error {
	_, err := Parse(s)
	return err
}

// Canonicalize returns the letters of s in the order b, m, d.
func Canonicalize(s string) (string, error) {
	st, err := Parse(s)
	if err != nil {
		return "", err
	}
	return st.String(), nil
}

// Valid reports whether st is one of the legal combinations.
func (st Steps) Valid() bool {
	return st >= Build && st <= BuildMigrateDeploy
}

// String returns the canonical token, or "" for an invalid value.
func (st Steps) String() string {
	switch st {
	case Build:
		return "b"
	case MigrateDeploy:
		return "md"
	case BuildMigrateDeploy:
		return "bmd"
	default:
		return ""
	}
}

// Stages returns the included stages in canonical order.
func (st Steps) Stages() []Stage {
	var out []Stage
	for _, stage := range canonicalOrder {
		if st.Includes(stage) {
			out = append(out, stage)
		}
	}
	return out
}

// Includes reports whether stage is part of st.
func (st Steps) Includes(stage Stage) bool {
	return strings.IndexByte(st.String(), byte(stage)) >= 0
}

// PipelineNames returns the primary and secondary pipeline names for base.
//
// The primary name is the pipeline this invocation generates. The
// secondary name is the pipeline that owns the build stage: for
// MigrateDeploy that is a separately installed "_B" pipeline, otherwise it
// is the primary itself.
//
// PipelineNames panics if st is not a legal value.
func (st Steps) PipelineNames(base string) (primary, secondary string) {
	switch st {
	case BuildMigrateDeploy:
		return base + "_B-M-D", base + "_B-M-D"
	case MigrateDeploy:
		return base + "_M-D", base + "_B"
	case Build:
		return base + "_B", base + "_B"
	default:
		panic(fmt.Sprintf("steps: PipelineNames called on invalid value %d", int(st)))
	}
}

// DerivePipelineNames is the string form of PipelineNames. canonical must
// already be canonical ("b", "md" or "bmd"); anything else, including a
// legal set in another order, is a *LookupError.
func DerivePipelineNames(base, canonical string) (primary, secondary string, err error) {
	for _, st := range All {
		if st.String() == canonical {
			primary, secondary = st.PipelineNames(base)
			return primary, secondary, nil
		}
	}
	return "", "", &LookupError{Canonical: canonical}
}

// Set implements pflag.Value.
func (st *Steps) Set(s string) error {
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*st = parsed
	return nil
}

// Type implements pflag.Value.
func (st *Steps) Type() string {
	return "steps"
}

// MarshalText implements encoding.TextMarshaler.
func (st Steps) MarshalText() ([]byte, error) {
	if !st.Valid() {
		return nil, fmt.Errorf("steps: cannot marshal invalid value %d", int(st))
	}
	return []byte(st.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (st *Steps) UnmarshalText(text []byte) error {
	return st.Set(string(text))
}
