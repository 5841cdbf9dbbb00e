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
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/cowdogmoo/cdpipelines/config"
	"github.com/cowdogmoo/cdpipelines/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage cdpipelines configuration",
	Long: `Manage cdpipelines' configuration file.

The configuration file stores defaults such as the GoCD server, the config
repository and the output format.

Configuration precedence (highest to lowest):
1. CLI flags
2. Environment variables (CDPIPELINES_*)
3. Configuration file ($XDG_CONFIG_HOME/cdpipelines/config.yaml)
4. Built-in defaults

Credentials are only read from the environment.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.ConfigFile("config.yaml")
		if err != nil {
			return fmt.Errorf("failed to resolve config path: %w", err)
		}
		return runConfigInit(cmd, path, configForce)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf := configFromContext(cmd)
		if conf == nil {
			return fmt.Errorf("configuration not initialized")
		}
		return runConfigShow(cmd.OutOrStdout(), conf, configFileUsed())
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if path := configFileUsed(); path != "" {
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		}
		path, err := config.ConfigFile("config.yaml")
		if err != nil {
			return fmt.Errorf("failed to resolve config path: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (not created yet)\n", path)
		logging.Info("Run 'cdpipelines config init' to create the config file")
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a configuration value",
	Long: `Get a specific configuration value.

Examples:
  cdpipelines config get gocd.url
  cdpipelines config get repo.branch`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf := configFromContext(cmd)
		if conf == nil {
			return fmt.Errorf("configuration not initialized")
		}
		return runConfigGet(cmd.OutOrStdout(), conf, args[0])
	},
}

var configForce bool

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configGetCmd)

	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite existing config file")
}

// configFileUsed returns the config file in effect, or "" when none
// exists.
func configFileUsed() string {
	if cfgFile != "" {
		return cfgFile
	}
	v := config.NewConfigViper()
	if err := v.ReadInConfig(); err != nil {
		return ""
	}
	return v.ConfigFileUsed()
}

func runConfigInit(cmd *cobra.Command, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	conf, err := config.Load()
	if err != nil && !config.IsNotFoundError(err) {
		return fmt.Errorf("failed to load default config: %w", err)
	}
	data, err := yaml.Marshal(conf)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	logging.InfoContext(cmd.Context(), "Configuration file created at: %s", path)
	return nil
}

func runConfigShow(out io.Writer, conf *config.Config, path string) error {
	data, err := yaml.Marshal(conf)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	fmt.Fprintln(out, "# Current cdpipelines configuration")
	fmt.Fprintln(out, "# Sources: defaults -> config file -> environment variables -> CLI flags")
	fmt.Fprintln(out)
	fmt.Fprint(out, string(data))
	if path != "" {
		fmt.Fprintf(out, "\n# Config file: %s\n", path)
	} else {
		fmt.Fprintln(out, "\n# No config file found (using defaults)")
	}
	return nil
}

func runConfigGet(out io.Writer, conf *config.Config, key string) error {
	data, err := yaml.Marshal(conf)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if !v.IsSet(key) {
		return fmt.Errorf("configuration key %q not found", key)
	}
	fmt.Fprintln(out, v.Get(key))
	return nil
}
