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

package pipelines

import (
	"fmt"
	"strings"

	"github.com/cowdogmoo/cdpipelines/errors"
	"github.com/cowdogmoo/cdpipelines/steps"
	"github.com/cowdogmoo/cdpipelines/variables"
	"github.com/spf13/viper"
)

// Settings are the pipeline variables the assembly reads from the merged
// variable map.
type Settings struct {
	Play           string `mapstructure:"play"`
	Deployment     string `mapstructure:"deployment"`
	EdxEnvironment string `mapstructure:"edx_environment"`
	AppRepo        string `mapstructure:"app_repo"`
	PlaybookPath   string `mapstructure:"playbook_path"`

	ConfigurationRepo            string `mapstructure:"configuration_repo"`
	ConfigurationVersion         string `mapstructure:"configuration_version"`
	ConfigurationSecureRepo      string `mapstructure:"configuration_secure_repo"`
	ConfigurationSecureVersion   string `mapstructure:"configuration_secure_version"`
	ConfigurationInternalRepo    string `mapstructure:"configuration_internal_repo"`
	ConfigurationInternalVersion string `mapstructure:"configuration_internal_version"`
	TubularRepo                  string `mapstructure:"tubular_repo"`
	TubularVersion               string `mapstructure:"tubular_version"`

	BaseAMIID              string `mapstructure:"base_ami_id"`
	EC2Region              string `mapstructure:"ec2_region"`
	EC2VPCSubnetID         string `mapstructure:"ec2_vpc_subnet_id"`
	EC2SecurityGroupID     string `mapstructure:"ec2_security_group_id"`
	EC2InstanceProfileName string `mapstructure:"ec2_instance_profile_name"`
	EC2InstanceType        string `mapstructure:"ec2_instance_type"`
	EBSVolumeSize          string `mapstructure:"ebs_volume_size"`
	AMIWait                string `mapstructure:"ami_wait"`
	NoReboot               string `mapstructure:"no_reboot"`

	ApplicationName string   `mapstructure:"application_name"`
	ApplicationPath string   `mapstructure:"application_path"`
	ApplicationUser string   `mapstructure:"application_user"`
	SubApplications []string `mapstructure:"sub_applications"`
	DBMigrationUser string   `mapstructure:"db_migration_user"`

	HipchatRoom string `mapstructure:"hipchat_room"`

	// UpstreamPipeline and UpstreamStage add a pipeline material, e.g. a
	// prerelease pipeline that selects the base AMI.
	UpstreamPipeline string `mapstructure:"upstream_pipeline"`
	UpstreamStage    string `mapstructure:"upstream_stage"`
	UpstreamMaterial string `mapstructure:"upstream_material_name"`

	// PlaybookVars and AMIVars are passed through as "-e key=value".
	PlaybookVars map[string]string `mapstructure:"playbook_vars"`
	AMIVars      map[string]string `mapstructure:"ami_vars"`

	Secrets `mapstructure:",squash"`
}

// Secrets are rendered as secure pipeline variables.
type Secrets struct {
	AWSAccessKeyID     string `mapstructure:"aws_access_key_id"`
	AWSSecretAccessKey string `mapstructure:"aws_secret_access_key"`
	GithubPrivateKey   string `mapstructure:"github_private_key"`
	HipchatToken       string `mapstructure:"hipchat_token"`
	DBMigrationPass    string `mapstructure:"db_migration_pass"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("configuration_repo", "https://github.com/edx/configuration.git")
	v.SetDefault("configuration_version", "master")
	v.SetDefault("configuration_secure_version", "master")
	v.SetDefault("configuration_internal_version", "master")
	v.SetDefault("tubular_repo", "https://github.com/edx/tubular.git")
	v.SetDefault("tubular_version", "master")
	v.SetDefault("ec2_region", "us-east-1")
	v.SetDefault("ec2_instance_type", "t2.large")
	v.SetDefault("ebs_volume_size", "50")
	v.SetDefault("ami_wait", "yes")
	v.SetDefault("no_reboot", "no")
	v.SetDefault("hipchat_room", "release")
	v.SetDefault("application_user", "www-data")
	v.SetDefault("db_migration_user", "migrate")
	v.SetDefault("upstream_material_name", "upstream")
}

// RequiredKeys returns the variables a pipeline with st cannot be built
// without.
func RequiredKeys(st steps.Steps) []string {
	keys := []string{"play", "deployment", "edx_environment", "configuration_secure_repo", "github_private_key",
		"aws_access_key_id", "aws_secret_access_key"}
	if st.Includes(steps.StageBuild) || st.Includes(steps.StageMigrate) {
		keys = append(keys, "ec2_vpc_subnet_id", "ec2_security_group_id", "ec2_instance_profile_name", "hipchat_token")
	}
	if st.Includes(steps.StageBuild) {
		keys = append(keys, "base_ami_id", "app_repo")
	}
	if st.Includes(steps.StageMigrate) {
		keys = append(keys, "application_name", "application_path", "db_migration_pass")
	}
	return keys
}

// DecodeSettings checks that vars holds everything st needs and decodes it
// with defaults applied.
func DecodeSettings(vars variables.Map, st steps.Steps) (*Settings, error) {
	if err := vars.Require(RequiredKeys(st)...); err != nil {
		return nil, err
	}

	raw, ok := variables.ToAny(vars).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("variables did not convert to a map")
	}

	v := viper.New()
	setDefaults(v)
	if err := v.MergeConfigMap(raw); err != nil {
		return nil, errors.Wrap("load pipeline variables", "", err)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, errors.Wrap("decode pipeline variables", "", err)
	}
	if s.PlaybookPath == "" {
		s.PlaybookPath = fmt.Sprintf("playbooks/edx-east/%s.yml", s.Play)
	}
	if s.ApplicationName == "" {
		s.ApplicationName = s.Play
	}
	if (s.UpstreamPipeline == "") != (s.UpstreamStage == "") {
		return nil, fmt.Errorf("upstream_pipeline and upstream_stage must be set together")
	}
	return &s, nil
}

// environment returns the plain pipeline variables.
func (s *Settings) environment() map[string]string {
	env := map[string]string{
		"PLAY":                           s.Play,
		"DEPLOYMENT":                     s.Deployment,
		"EDX_ENVIRONMENT":                s.EdxEnvironment,
		"APP_REPO":                       s.AppRepo,
		"CONFIGURATION_REPO":             s.ConfigurationRepo,
		"CONFIGURATION_VERSION":          s.ConfigurationVersion,
		"CONFIGURATION_SECURE_REPO":      s.ConfigurationSecureRepo,
		"CONFIGURATION_SECURE_VERSION":   s.ConfigurationSecureVersion,
		"CONFIGURATION_INTERNAL_REPO":    s.ConfigurationInternalRepo,
		"CONFIGURATION_INTERNAL_VERSION": s.ConfigurationInternalVersion,
		"BASE_AMI_ID":                    s.BaseAMIID,
		"EC2_REGION":                     s.EC2Region,
		"EC2_VPC_SUBNET_ID":              s.EC2VPCSubnetID,
		"EC2_SECURITY_GROUP_ID":          s.EC2SecurityGroupID,
		"EC2_INSTANCE_PROFILE_NAME":      s.EC2InstanceProfileName,
		"EC2_INSTANCE_TYPE":              s.EC2InstanceType,
		"EBS_VOLUME_SIZE":                s.EBSVolumeSize,
		"AMI_WAIT":                       s.AMIWait,
		"NO_REBOOT":                      s.NoReboot,
		"APPLICATION_NAME":               s.ApplicationName,
		"APPLICATION_PATH":               s.ApplicationPath,
		"APPLICATION_USER":               s.ApplicationUser,
		"DB_MIGRATION_USER":              s.DBMigrationUser,
		"HIPCHAT_ROOM":                   s.HipchatRoom,
	}
	for k, v := range env {
		if v == "" {
			delete(env, k)
		}
	}
	return env
}

// secureEnvironment returns the secure pipeline variables.
func (s *Settings) secureEnvironment() map[string]string {
	env := map[string]string{
		"AWS_ACCESS_KEY_ID":     s.Secrets.AWSAccessKeyID,
		"AWS_SECRET_ACCESS_KEY": s.Secrets.AWSSecretAccessKey,
		"PRIVATE_GITHUB_KEY":    s.Secrets.GithubPrivateKey,
		"HIPCHAT_TOKEN":         s.Secrets.HipchatToken,
		"DB_MIGRATION_PASS":     s.Secrets.DBMigrationPass,
	}
	for k, v := range env {
		if v == "" {
			delete(env, k)
		}
	}
	return env
}

// sanitizeName makes s usable as a GoCD material name.
func sanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}
