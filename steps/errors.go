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
	"fmt"
)

// ErrInvalidPermutation matches every *InvalidError.
var ErrInvalidPermutation = errors.New("invalid step permutation")

// ErrUnknownCanonical matches every *LookupError.
var ErrUnknownCanonical = errors.New("unknown canonical step token")

// InvalidError reports a step token that is not one of the legal sets.
type InvalidError struct {
	Input  string
	Reason string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid step permutation %q: %s (legal sets: %s)", e.Input, e.Reason, legalSets)
}

func (e *InvalidError) Is(target error) bool {
	return target == ErrInvalidPermutation
}

// LookupError reports a string that is not an exact canonical token when
// one is required. It signals a caller bug, not bad user input.
type LookupError struct {
	Canonical string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("no pipeline names for canonical steps %q", e.Canonical)
}

func (e *LookupError) Is(target error) bool {
	return target == ErrUnknownCanonical
}
