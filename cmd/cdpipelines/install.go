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
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cowdogmoo/cdpipelines/ami"
	"github.com/cowdogmoo/cdpipelines/cli"
	"github.com/cowdogmoo/cdpipelines/config"
	"github.com/cowdogmoo/cdpipelines/deploy"
	"github.com/cowdogmoo/cdpipelines/errors"
	"github.com/cowdogmoo/cdpipelines/git"
	"github.com/cowdogmoo/cdpipelines/gocd"
	"github.com/cowdogmoo/cdpipelines/logging"
	"github.com/cowdogmoo/cdpipelines/pipelines"
	"github.com/cowdogmoo/cdpipelines/steps"
	"github.com/spf13/cobra"
)

var installOpts = &cli.InstallCLIOptions{}

// newEC2API is replaced in tests.
var newEC2API = func(ctx context.Context, cfg ami.ClientConfig) (ami.EC2API, error) {
	return ami.NewEC2Client(ctx, cfg)
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install a pipeline into a GoCD config repository",
	Long: `Install builds the pipeline described by the variable files and publishes
it to a GoCD config repository. Other pipelines already in the repository are
kept.

Use --dry-run to review the changes without publishing, and --save-config to
keep copies of the configuration before and after the change.`,
	Example: `  # Review the change for a build-only pipeline
  cdpipelines install -f edxapp.yml -s b -n STAGE_edxapp -g edxapp \
    --repo-url git@github.com:example/gocd-pipelines.git --dry-run

  # Publish build, migrate and deploy, checking the base AMI first
  cdpipelines install -f edxapp.yml -f stage.yml -s bmd -n STAGE_edxapp -g edxapp \
    --repo-url git@github.com:example/gocd-pipelines.git \
    --gocd-url https://gocd.example.com --check-ami --preflight`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf := configFromContext(cmd)
		if conf == nil {
			return fmt.Errorf("configuration not initialized")
		}
		applyInstallDefaults(cmd, installOpts)
		return runInstall(cmd.Context(), conf, *installOpts, cmd.OutOrStdout())
	},
}

func init() {
	addPipelineFlags(installCmd, &installOpts.PipelineCLIOptions)

	f := installCmd.Flags()
	f.BoolVar(&installOpts.DryRun, "dry-run", false, "Report changes without publishing")
	f.BoolVar(&installOpts.SaveConfig, "save-config", false, "Save configuration before and after the change under --output-dir")
	f.BoolVar(&installOpts.Prune, "prune", false, "Delete published files that no longer hold any pipeline")
	f.StringVarP(&installOpts.Message, "message", "m", "", "Commit message")
	f.StringVar(&installOpts.RepoURL, "repo-url", "", "GoCD config repository to publish to")
	f.StringVar(&installOpts.RepoBranch, "repo-branch", "", "Branch of the config repository")
	f.StringVar(&installOpts.RepoDir, "repo-dir", "", "Publish into a local directory instead of a git remote")
	f.StringVar(&installOpts.GoCDURL, "gocd-url", "", "GoCD server used to encrypt secure variables")
	f.BoolVar(&installOpts.CheckAMI, "check-ami", false, "Verify the base AMI exists before publishing")
	f.BoolVar(&installOpts.CheckMaterials, "check-materials", false, "Verify every git material branch exists before publishing")
	f.BoolVar(&installOpts.Preflight, "preflight", false, "Validate the result with the GoCD server before publishing")
}

func applyInstallDefaults(cmd *cobra.Command, opts *cli.InstallCLIOptions) {
	applyPipelineDefaults(cmd, "install", &opts.PipelineCLIOptions)
	v := viperFromContext(cmd)
	if opts.RepoURL == "" && opts.RepoDir == "" {
		opts.RepoURL = v.GetString("install.repo_url")
		opts.RepoDir = v.GetString("install.repo_dir")
	}
	if opts.RepoBranch == "" {
		opts.RepoBranch = v.GetString("install.repo_branch")
	}
	if opts.GoCDURL == "" {
		opts.GoCDURL = v.GetString("install.gocd_url")
	}
}

func runInstall(ctx context.Context, conf *config.Config, opts cli.InstallCLIOptions, out io.Writer) error {
	if err := cli.NewValidator().ValidateInstallOptions(opts); err != nil {
		return err
	}

	cfg, res, vars, err := assemble(ctx, opts.PipelineCLIOptions)
	if err != nil {
		return err
	}

	if opts.CheckAMI && opts.Steps.Includes(steps.StageBuild) {
		settings, err := pipelines.DecodeSettings(vars, opts.Steps)
		if err != nil {
			return err
		}
		if err := checkBaseAMI(ctx, conf, settings); err != nil {
			return err
		}
	}

	if opts.CheckMaterials {
		logging.InfoContext(ctx, "Checking git materials")
		if err := git.CheckMaterials(ctx, cfg, repoAuth(conf), git.DefaultConcurrency); err != nil {
			return err
		}
	}

	var client *gocd.Client
	var enc gocd.Encrypter = gocd.RedactingEncrypter{}
	if opts.GoCDURL != "" {
		client, err = newGoCDClient(opts.GoCDURL, conf)
		if err != nil {
			return err
		}
		if conf.GoCD.MinServerVersion != "" {
			if err := client.CheckVersion(ctx, conf.GoCD.MinServerVersion); err != nil {
				return err
			}
		}
		enc = client
	}
	if err := cfg.EncryptSecureVariables(ctx, enc); err != nil {
		return err
	}

	store, cleanup, err := openStore(ctx, conf, opts)
	if err != nil {
		return err
	}
	defer cleanup()

	current, err := store.Current(ctx)
	if err != nil {
		return errors.Wrap("read current pipeline configuration", "", err)
	}
	after, err := gocd.Overlay(current, cfg, conf.GoCD.YAMLFormatVersion)
	if err != nil {
		return err
	}

	if opts.Preflight {
		if err := preflight(ctx, client, after, conf.GoCD.ConfigRepoID); err != nil {
			return err
		}
	}

	result, err := deploy.Ensure(ctx, store, after, deploy.Options{
		DryRun:     opts.DryRun,
		SaveConfig: opts.SaveConfig,
		OutputDir:  opts.OutputDir,
		Prune:      opts.Prune,
		Message:    opts.Message,
	})
	if err != nil {
		return err
	}

	return cli.NewOutputFormatter(opts.OutputFormat).WithWriter(out).
		DisplayInstall(cli.Summarize([]*pipelines.Result{res}), result)
}

func checkBaseAMI(ctx context.Context, conf *config.Config, settings *pipelines.Settings) error {
	region := settings.EC2Region
	if region == "" {
		region = conf.AWS.Region
	}
	client, err := newEC2API(ctx, ami.ClientConfig{
		Region:          region,
		Profile:         conf.AWS.Profile,
		AccessKeyID:     conf.AWS.AccessKeyID,
		SecretAccessKey: conf.AWS.SecretAccessKey,
		SessionToken:    conf.AWS.SessionToken,
	})
	if err != nil {
		return err
	}
	img, err := ami.NewResolver(client).Verify(ctx, settings.BaseAMIID)
	if err != nil {
		return err
	}
	logging.InfoContext(ctx, "Base AMI %s (%s) is %s", img.ID, img.Name, img.State)
	return nil
}

func preflight(ctx context.Context, client *gocd.Client, set gocd.ConfigSet, repoID string) error {
	logging.InfoContext(ctx, "Running GoCD preflight on %d files", len(set))
	result, err := client.Preflight(ctx, set, repoID)
	if err != nil {
		return err
	}
	if !result.Valid {
		return fmt.Errorf("GoCD rejected the pipeline configuration:\n  %s", strings.Join(result.Errors, "\n  "))
	}
	return nil
}

func repoAuth(conf *config.Config) git.Auth {
	return git.Auth{
		Token:      conf.Repo.Token,
		SSHKeyFile: conf.Repo.SSHKeyFile,
	}
}

// openStore returns where the pipeline configuration is published. A git
// checkout without a configured directory lives in a temporary directory
// that cleanup removes.
func openStore(ctx context.Context, conf *config.Config, opts cli.InstallCLIOptions) (deploy.Store, func(), error) {
	noop := func() {}
	if opts.RepoDir != "" {
		return deploy.DirStore{Dir: opts.RepoDir}, noop, nil
	}

	dir := conf.Repo.Dir
	cleanup := noop
	if dir == "" {
		cache, err := config.CacheDir("checkouts")
		if err != nil {
			return nil, nil, err
		}
		dir, err = os.MkdirTemp(cache, "repo-")
		if err != nil {
			return nil, nil, errors.Wrap("create checkout directory", cache, err)
		}
		cleanup = func() {
			if err := os.RemoveAll(dir); err != nil {
				logging.WarnContext(ctx, "Failed to remove checkout %s: %v", dir, err)
			}
		}
	}

	repo := git.NewRepo(opts.RepoURL, opts.RepoBranch, dir)
	repo.Subdir = conf.Repo.Subdir
	repo.Auth = repoAuth(conf)
	repo.Author = git.NewConfigReader().Author(ctx)
	if conf.Repo.AuthorName != "" {
		repo.Author.Name = conf.Repo.AuthorName
	}
	if conf.Repo.AuthorEmail != "" {
		repo.Author.Email = conf.Repo.AuthorEmail
	}
	return repo, cleanup, nil
}
