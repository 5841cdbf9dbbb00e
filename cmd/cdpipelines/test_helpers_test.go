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

package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/cowdogmoo/cdpipelines/cli"
	"github.com/cowdogmoo/cdpipelines/config"
	"github.com/cowdogmoo/cdpipelines/logging"
	"github.com/cowdogmoo/cdpipelines/steps"
)

// setupTestContext creates a context with a logger suitable for testing.
func setupTestContext(t *testing.T) context.Context {
	t.Helper()
	logger := logging.NewCustomLoggerWithOptions("error", "text", true, false)
	return logging.WithLogger(context.Background(), logger)
}

// testConfig returns the built-in defaults without reading any file.
func testConfig() *config.Config {
	return &config.Config{
		Log: config.LogConfig{Level: "error", Format: "text"},
		GoCD: config.GoCDConfig{
			YAMLFormatVersion: 10,
			MinServerVersion:  ">= 20.8.0",
		},
		Repo:   config.RepoConfig{Branch: "main", Subdir: "gocd"},
		Output: config.OutputConfig{Format: cli.FormatText},
	}
}

func testPipelineOptions(st steps.Steps) cli.PipelineCLIOptions {
	return cli.PipelineCLIOptions{
		VariableFiles: []string{
			filepath.Join("testdata", "edxapp.yml"),
			filepath.Join("testdata", "secrets.yml"),
		},
		Steps:         st,
		PipelineName:  "STAGE_edxapp",
		PipelineGroup: "edxapp",
		OutputFormat:  cli.FormatText,
	}
}

// fakeGoCD serves the version, encrypt and preflight endpoints.
type fakeGoCD struct {
	URL       string
	version   string
	preflight string
	encrypts  atomic.Int32
}

func newFakeGoCD(t *testing.T, version string) *fakeGoCD {
	t.Helper()
	f := &fakeGoCD{version: version, preflight: `{"valid":true,"errors":[]}`}
	mux := http.NewServeMux()
	mux.HandleFunc("/go/api/version", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"version":"`+f.version+`","full_version":"`+f.version+` (1234-abc)"}`)
	})
	mux.HandleFunc("/go/api/admin/encrypt", func(w http.ResponseWriter, r *http.Request) {
		f.encrypts.Add(1)
		var req struct {
			Value string `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"encrypted_value": "AES:" + req.Value})
	})
	mux.HandleFunc("/go/api/admin/config_repo_ops/preflight", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, f.preflight)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	f.URL = srv.URL
	return f
}

// requireGit skips tests that push through go-git's file transport, which
// needs the git binary.
func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}
