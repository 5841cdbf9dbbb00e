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

// Package variables merges layered pipeline variable sources.
//
// A source is a tree of Value nodes: a Scalar, a Sequence or a Map. Sources
// come from YAML variable files and from inline KEY=VALUE overrides, and are
// combined with Merge. Nested maps merge key by key; any other overlap must
// be deeply equal or the merge fails with a *MergeConflict. There is no
// "last writer wins": two sources that disagree are an error regardless of
// the order they are folded in.
//
// Example:
//
//	overrides, err := variables.ParseOverrides([]string{"deployment=edx"})
//	if err != nil {
//	    return err
//	}
//	vars, err := variables.LoadAndMerge([]string{"stage.yml", "edxapp.yml"}, overrides)
//	if err != nil {
//	    return err
//	}
//	url, _ := vars.String("gocd_url")
package variables
