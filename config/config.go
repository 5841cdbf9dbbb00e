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

// Package config loads cdpipelines tool settings: where the GoCD server
// and config repository live and how the CLI logs. Pipeline variables are
// handled by the variables package instead.
package config

import (
	stderrors "errors"
	"os"
	"strings"

	"github.com/cowdogmoo/cdpipelines/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. CDPIPELINES_LOG_LEVEL.
const EnvPrefix = "CDPIPELINES"

// ErrConfigNotFound is returned alongside the defaults when no config
// file exists.
var ErrConfigNotFound = stderrors.New("config file not found")

// Config holds the tool configuration.
type Config struct {
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	GoCD   GoCDConfig   `mapstructure:"gocd" yaml:"gocd"`
	Repo   RepoConfig   `mapstructure:"repo" yaml:"repo"`
	Output OutputConfig `mapstructure:"output" yaml:"output"`
	AWS    AWSConfig    `mapstructure:"aws" yaml:"aws"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// GoCDConfig points at the GoCD server. Credentials come from the
// environment only.
type GoCDConfig struct {
	URL               string `mapstructure:"url" yaml:"url"`
	Username          string `mapstructure:"username" yaml:"username"`
	YAMLFormatVersion int    `mapstructure:"yaml_format_version" yaml:"yaml_format_version"`
	MinServerVersion  string `mapstructure:"min_server_version" yaml:"min_server_version"`
	ConfigRepoID      string `mapstructure:"config_repo_id" yaml:"config_repo_id"`

	Password string `mapstructure:"-" yaml:"-"`
	Token    string `mapstructure:"-" yaml:"-"`
}

// RepoConfig describes the git repository GoCD reads pipelines from.
type RepoConfig struct {
	URL         string `mapstructure:"url" yaml:"url"`
	Branch      string `mapstructure:"branch" yaml:"branch"`
	Dir         string `mapstructure:"dir" yaml:"dir"`
	Subdir      string `mapstructure:"subdir" yaml:"subdir"`
	SSHKeyFile  string `mapstructure:"ssh_key_file" yaml:"ssh_key_file"`
	AuthorName  string `mapstructure:"author_name" yaml:"author_name"`
	AuthorEmail string `mapstructure:"author_email" yaml:"author_email"`

	Token string `mapstructure:"-" yaml:"-"`
}

// OutputConfig controls where and how results are written.
type OutputConfig struct {
	Dir    string `mapstructure:"dir" yaml:"dir"`
	Format string `mapstructure:"format" yaml:"format"`
}

// AWSConfig selects the account used for base image checks. Keys come
// from the environment or the pipeline's secure variables.
type AWSConfig struct {
	Region  string `mapstructure:"region" yaml:"region"`
	Profile string `mapstructure:"profile" yaml:"profile"`

	AccessKeyID     string `mapstructure:"-" yaml:"-"`
	SecretAccessKey string `mapstructure:"-" yaml:"-"`
	SessionToken    string `mapstructure:"-" yaml:"-"`
}

// setDefaults sets the default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "color")

	v.SetDefault("gocd.url", "")
	v.SetDefault("gocd.username", "")
	v.SetDefault("gocd.yaml_format_version", 10)
	v.SetDefault("gocd.min_server_version", ">= 20.8.0")
	v.SetDefault("gocd.config_repo_id", "")

	v.SetDefault("repo.url", "")
	v.SetDefault("repo.branch", "main")
	v.SetDefault("repo.dir", "")
	v.SetDefault("repo.subdir", "")
	v.SetDefault("repo.ssh_key_file", "")
	v.SetDefault("repo.author_name", "")
	v.SetDefault("repo.author_email", "")

	v.SetDefault("output.dir", ".")
	v.SetDefault("output.format", "text")

	v.SetDefault("aws.region", "")
	v.SetDefault("aws.profile", "")
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load searches the config directories and the working directory for
// config.yaml. When none exists it returns the defaults together with
// ErrConfigNotFound.
func Load() (*Config, error) {
	v := NewConfigViper()
	setDefaults(v)
	bindEnv(v)

	var notFound error
	if err := v.ReadInConfig(); err != nil {
		if !IsNotFoundError(err) {
			return nil, errors.Wrap("read config", "", err)
		}
		notFound = ErrConfigNotFound
	}

	cfg, err := unmarshal(v)
	if err != nil {
		return nil, err
	}
	return cfg, notFound
}

// LoadFromPath loads the config file at path.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap("read config", path, err)
	}
	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap("decode config", "", err)
	}
	populateCredentials(&cfg)
	return &cfg, nil
}

// populateCredentials fills secrets from the environment. They are never
// read from the config file.
func populateCredentials(cfg *Config) {
	cfg.GoCD.Password = firstEnv(EnvPrefix+"_GOCD_PASSWORD", "GOCD_PASSWORD")
	cfg.GoCD.Token = firstEnv(EnvPrefix+"_GOCD_TOKEN", "GOCD_TOKEN")
	cfg.Repo.Token = firstEnv(EnvPrefix+"_REPO_TOKEN", "GITHUB_TOKEN")
	cfg.AWS.AccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	cfg.AWS.SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	cfg.AWS.SessionToken = os.Getenv("AWS_SESSION_TOKEN")
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// IsNotFoundError reports whether err means no config file was found.
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, ErrConfigNotFound) {
		return true
	}
	var notFound viper.ConfigFileNotFoundError
	return stderrors.As(err, &notFound)
}
