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

//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/l50/goutils/v2/git"
	"github.com/l50/goutils/v2/sys"

	// mage utility functions
	"github.com/magefile/mage/sh"
)

type compileParams struct {
	GOOS   string
	GOARCH string
}

var repoRoot string

func init() {
	var err error
	repoRoot, err = git.RepoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get repo root: %v\n", err)
		os.Exit(1)
	}
}

func (p *compileParams) populateFromEnv() {
	if p.GOOS == "" {
		p.GOOS = os.Getenv("GOOS")
		if p.GOOS == "" {
			p.GOOS = runtime.GOOS
		}
	}

	if p.GOARCH == "" {
		p.GOARCH = os.Getenv("GOARCH")
		if p.GOARCH == "" {
			p.GOARCH = runtime.GOARCH
		}
	}
}

// Compile builds the cdpipelines binary into bin/ for GOOS and GOARCH,
// which default to the current system.
//
// Example usage:
//
// ```go
// mage compile
// GOOS=linux GOARCH=amd64 mage compile
// ```
func Compile() error {
	cwd, err := changeToRepoRoot()
	if err != nil {
		return err
	}
	defer os.Chdir(cwd)

	var p compileParams
	p.populateFromEnv()

	out := filepath.Join("bin", fmt.Sprintf("cdpipelines-%s-%s", p.GOOS, p.GOARCH))
	fmt.Printf("Compiling the cdpipelines binary for %s/%s, please wait.\n", p.GOOS, p.GOARCH)

	env := map[string]string{"GOOS": p.GOOS, "GOARCH": p.GOARCH, "CGO_ENABLED": "0"}
	if err := sh.RunWithV(env, "go", "build", "-o", out, "./cmd/cdpipelines"); err != nil {
		return fmt.Errorf("go build failed: %v", err)
	}
	return nil
}

func changeToRepoRoot() (originalCwd string, err error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %v", err)
	}

	if cwd != repoRoot {
		if err := os.Chdir(repoRoot); err != nil {
			return "", fmt.Errorf("failed to change directory to repo root: %v", err)
		}
	}

	return cwd, nil
}

// RunTests executes all unit tests. Tests that push to local git remotes
// are skipped when the git binary is missing.
//
// Example usage:
//
// ```go
// mage runtests
// ```
func RunTests() error {
	cwd, err := changeToRepoRoot()
	if err != nil {
		return err
	}
	defer os.Chdir(cwd)

	if !sys.CmdExists("git") {
		fmt.Println("git not found; repository publishing tests will be skipped.")
	}
	fmt.Println("Running unit tests.")
	if err := sh.RunV("go", "test", "-race", "-count=1", "./..."); err != nil {
		return fmt.Errorf("failed to run unit tests: %v", err)
	}
	return nil
}
