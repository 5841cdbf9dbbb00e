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

package gocd

// sampleConfig builds a minimal two-stage pipeline in group "edxapp".
func sampleConfig() *Config {
	cfg := NewConfig()
	p := cfg.EnsureGroup("edxapp").EnsurePipeline("STAGE_edxapp_B-M-D")
	p.EnsureMaterial(GitMaterial{
		Name:        "configuration",
		URL:         "https://github.com/edx/configuration.git",
		Branch:      "master",
		Destination: "configuration",
	})
	p.EnsureEnvironmentVariables(map[string]string{"DEPLOYMENT": "edx"})
	p.EnsureSecureVariables(map[string]string{"AWS_SECRET_ACCESS_KEY": "AES:abc"})

	build := p.EnsureStage("build_ami").EnsureJob("launch_instance")
	build.AddTask(BashTask("echo launch", "configuration", RunIfPassed))
	build.EnsureArtifacts(BuildArtifact("target/launch_info.yml"))

	deploy := p.EnsureStage("deploy_ami")
	deploy.SetManualApproval()
	deploy.EnsureJob("deploy").AddTask(ArtifactLocation{
		Pipeline: "STAGE_edxapp_B-M-D", Stage: "build_ami", Job: "launch_instance", FileName: "launch_info.yml",
	}.FetchFile("target"))
	return cfg
}
