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
	"errors"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  Steps
	}{
		{"b", Build},
		{"B", Build},
		{"md", MigrateDeploy},
		{"dm", MigrateDeploy},
		{"bmd", BuildMigrateDeploy},
		{"bdm", BuildMigrateDeploy},
		{"dbm", BuildMigrateDeploy},
		{"mbd", BuildMigrateDeploy},
		{"mdb", BuildMigrateDeploy},
		{"dmb", BuildMigrateDeploy},
		{"BmD", BuildMigrateDeploy},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, Validate(tt.input))
		})
	}
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		reason string
	}{
		{"", "token is empty"},
		{"bdmc", `unknown step 'c'`},
		{"bb", `step 'b' repeated`},
		{"mdm", `step 'm' repeated`},
		{"bm", "unsupported combination of steps"},
		{"bd", "unsupported combination of steps"},
		{"m", "unsupported combination of steps"},
		{"d", "unsupported combination of steps"},
		{"b m", `unknown step ' '`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			_, err := Parse(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidPermutation)
			assert.NotErrorIs(t, err, ErrUnknownCanonical)

			var invalidErr *InvalidError
			require.True(t, errors.As(err, &invalidErr))
			assert.Equal(t, tt.input, invalidErr.Input)
			assert.Equal(t, tt.reason, invalidErr.Reason)
			assert.Contains(t, err.Error(), "b, md, bmd")

			assert.ErrorIs(t, Validate(tt.input), ErrInvalidPermutation)
			_, err = Canonicalize(tt.input)
			assert.ErrorIs(t, err, ErrInvalidPermutation)
		})
	}
}

func TestCanonicalize(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]string{
		"bmd": "bmd",
		"dbm": "bmd",
		"mdb": "bmd",
		"dm":  "md",
		"b":   "b",
	} {
		got, err := Canonicalize(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
}

func TestStages(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []Stage{StageBuild}, Build.Stages())
	assert.Equal(t, []Stage{StageMigrate, StageDeploy}, MigrateDeploy.Stages())
	assert.Equal(t, []Stage{StageBuild, StageMigrate, StageDeploy}, BuildMigrateDeploy.Stages())
	assert.Empty(t, Steps(0).Stages())

	assert.True(t, MigrateDeploy.Includes(StageDeploy))
	assert.False(t, MigrateDeploy.Includes(StageBuild))
	assert.Equal(t, "migrate", StageMigrate.String())
}

func TestPipelineNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		steps     Steps
		primary   string
		secondary string
	}{
		{BuildMigrateDeploy, "app_B-M-D", "app_B-M-D"},
		{MigrateDeploy, "app_M-D", "app_B"},
		{Build, "app_B", "app_B"},
	}

	for _, tt := range tests {
		t.Run(tt.steps.String(), func(t *testing.T) {
			t.Parallel()

			primary, secondary := tt.steps.PipelineNames("app")
			assert.Equal(t, tt.primary, primary)
			assert.Equal(t, tt.secondary, secondary)

			primary, secondary, err := DerivePipelineNames("app", tt.steps.String())
			require.NoError(t, err)
			assert.Equal(t, tt.primary, primary)
			assert.Equal(t, tt.secondary, secondary)
		})
	}
}

func TestPipelineNamesPanicsOnInvalidValue(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { Steps(0).PipelineNames("app") })
	assert.Panics(t, func() { Steps(42).PipelineNames("app") })
}

func TestDerivePipelineNamesRejectsNonCanonical(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"dmb", "dm", "", "bm", "BMD", "xyz"} {
		_, _, err := DerivePipelineNames("blah", input)
		var lookupErr *LookupError
		require.True(t, errors.As(err, &lookupErr), input)
		assert.Equal(t, input, lookupErr.Canonical)
		assert.ErrorIs(t, err, ErrUnknownCanonical)
		assert.NotErrorIs(t, err, ErrInvalidPermutation)

		var invalidErr *InvalidError
		assert.False(t, errors.As(err, &invalidErr))
	}
}

func TestFlagValue(t *testing.T) {
	t.Parallel()

	var st Steps
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Var(&st, "bmd-steps", "stages to generate")

	require.NoError(t, fs.Parse([]string{"--bmd-steps", "DMB"}))
	assert.Equal(t, BuildMigrateDeploy, st)
	assert.Equal(t, "bmd", fs.Lookup("bmd-steps").Value.String())
	assert.Equal(t, "steps", fs.Lookup("bmd-steps").Value.Type())

	fs2 := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs2.SetOutput(discard{})
	var bad Steps
	fs2.Var(&bad, "bmd-steps", "")
	err := fs2.Parse([]string{"--bmd-steps=bm"})
	assert.ErrorContains(t, err, "invalid step permutation")
}

func TestTextMarshaling(t *testing.T) {
	t.Parallel()

	text, err := MigrateDeploy.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "md", string(text))

	_, err = Steps(0).MarshalText()
	assert.Error(t, err)

	var st Steps
	require.NoError(t, st.UnmarshalText([]byte("mbd")))
	assert.Equal(t, BuildMigrateDeploy, st)
	assert.Error(t, st.UnmarshalText([]byte("nope")))
	assert.Equal(t, BuildMigrateDeploy, st, "failed Set must leave the value untouched")
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
