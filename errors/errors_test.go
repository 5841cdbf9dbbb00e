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

package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestWrap(t *testing.T) {
	baseErr := errors.New("something went wrong")

	tests := []struct {
		name           string
		action         string
		detail         string
		err            error
		expectedPrefix string
		shouldContain  []string
	}{
		{
			name:           "wrap with action only",
			action:         "render pipelines",
			err:            baseErr,
			expectedPrefix: "failed to render pipelines:",
			shouldContain:  []string{"failed to render pipelines:", "something went wrong"},
		},
		{
			name:           "wrap with action and detail",
			action:         "load variables",
			detail:         "/path/to/vars.yml",
			err:            baseErr,
			expectedPrefix: "failed to load variables (/path/to/vars.yml):",
			shouldContain:  []string{"failed to load variables", "/path/to/vars.yml", "something went wrong"},
		},
		{
			name:   "wrap nil error returns nil",
			action: "do something",
			detail: "details",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Wrap(tt.action, tt.detail, tt.err)

			if tt.err == nil {
				if result != nil {
					t.Errorf("Expected nil error, got: %v", result)
				}
				return
			}

			if result == nil {
				t.Fatal("Expected wrapped error, got nil")
			}

			errMsg := result.Error()
			if !strings.HasPrefix(errMsg, tt.expectedPrefix) {
				t.Errorf("Expected error to start with %q, got: %q", tt.expectedPrefix, errMsg)
			}
			for _, expected := range tt.shouldContain {
				if !strings.Contains(errMsg, expected) {
					t.Errorf("Expected error to contain %q, got: %q", expected, errMsg)
				}
			}
			if !errors.Is(result, baseErr) {
				t.Error("Expected wrapped error to unwrap to original error")
			}
		})
	}
}

func TestWithHint(t *testing.T) {
	t.Parallel()

	if WithHint(nil, "msg", "fix it") != nil {
		t.Fatal("WithHint(nil) should return nil")
	}

	cause := errors.New("InvalidAMIID.NotFound")
	err := WithHint(cause, "base AMI not found", "check the region")

	var hint *HintError
	if !errors.As(err, &hint) {
		t.Fatalf("expected *HintError, got %T", err)
	}
	if !errors.Is(err, cause) {
		t.Error("expected hint error to unwrap to cause")
	}
	msg := err.Error()
	for _, want := range []string{"base AMI not found", "InvalidAMIID.NotFound", "Remediation: check the region"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestHintErrorWithoutRemediation(t *testing.T) {
	t.Parallel()

	err := &HintError{Message: "plain"}
	if err.Error() != "plain" {
		t.Errorf("Error() = %q, want %q", err.Error(), "plain")
	}
}
