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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInitConfigCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.PersistentFlags().String("log-level", "", "log level")
	cmd.PersistentFlags().String("log-format", "", "log format")
	cmd.PersistentFlags().Bool("quiet", false, "quiet")
	cmd.PersistentFlags().Bool("verbose", false, "verbose")
	cmd.SetContext(context.Background())
	return cmd
}

func TestInitConfig_WithNonexistentConfigFile(t *testing.T) {
	oldCfgFile := cfgFile
	defer func() { cfgFile = oldCfgFile }()
	cfgFile = "/nonexistent/config/file.yaml"

	err := initConfig(newInitConfigCommand(), []string{})
	if err == nil {
		t.Fatal("expected error for nonexistent config file")
	}
	if !strings.Contains(err.Error(), "failed to read config") {
		t.Errorf("error should mention failed to read config, got: %v", err)
	}
}

func TestInitConfig_DefaultAutoDiscovery(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	oldCfgFile := cfgFile
	defer func() { cfgFile = oldCfgFile }()
	cfgFile = ""

	cmd := newInitConfigCommand()
	_ = cmd.PersistentFlags().Set("quiet", "true")
	if err := initConfig(cmd, []string{}); err != nil {
		t.Fatalf("initConfig() with auto-discovery unexpected error: %v", err)
	}

	cfg := configFromContext(cmd)
	if cfg == nil {
		t.Fatal("config should be set in context after initConfig")
	}
	if cfg.GoCD.YAMLFormatVersion != 10 {
		t.Errorf("YAMLFormatVersion = %d, want 10", cfg.GoCD.YAMLFormatVersion)
	}
}

func TestInitConfig_ConfigFileFeedsFlagDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
gocd:
  url: https://gocd.example.com
repo:
  url: git@github.com:example/gocd-pipelines.git
  branch: pipelines
output:
  format: json
`), 0o644))

	oldCfgFile := cfgFile
	defer func() { cfgFile = oldCfgFile }()
	cfgFile = path

	parent := newInitConfigCommand()
	cmd := &cobra.Command{Use: "install"}
	cmd.Flags().String("repo-branch", "", "")
	parent.AddCommand(cmd)
	cmd.SetContext(context.Background())

	require.NoError(t, initConfig(cmd, nil))

	v := viperFromContext(cmd)
	assert.Equal(t, "git@github.com:example/gocd-pipelines.git", v.GetString("install.repo_url"))
	assert.Equal(t, "pipelines", v.GetString("install.repo_branch"))
	assert.Equal(t, "https://gocd.example.com", v.GetString("install.gocd_url"))
	assert.Equal(t, "json", v.GetString("render.format"))

	require.NoError(t, cmd.Flags().Set("repo-branch", "override"))
	assert.Equal(t, "override", v.GetString("install.repo_branch"))
}

func TestGetCommandPath(t *testing.T) {
	t.Parallel()

	root := &cobra.Command{Use: "cdpipelines"}
	configCmd := &cobra.Command{Use: "config"}
	showCmd := &cobra.Command{Use: "show"}
	root.AddCommand(configCmd)
	configCmd.AddCommand(showCmd)

	assert.Equal(t, "", getCommandPath(root))
	assert.Equal(t, "config", getCommandPath(configCmd))
	assert.Equal(t, "config.show", getCommandPath(showCmd))
}

func TestBindFlagsToViper(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{Use: "render"}
	cmd.Flags().String("output-dir", "", "")
	require.NoError(t, cmd.Flags().Set("output-dir", "out"))

	v := viper.New()
	BindFlagsToViper(v, cmd, "render")
	assert.Equal(t, "out", v.GetString("render.output_dir"))
}

func TestViperFromContextDefault(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{Use: "test"}
	cmd.SetContext(context.Background())
	assert.NotNil(t, viperFromContext(cmd))
	assert.Nil(t, configFromContext(cmd))
}
