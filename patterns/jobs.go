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

package patterns

import (
	"fmt"

	"github.com/cowdogmoo/cdpipelines/gocd"
)

// RollbackMigration adds a job to stage that reverts migrations applied by
// an earlier run. The instance inventory, key and migration output are
// fetched from the given locations.
func RollbackMigration(stage *gocd.Stage, inventory, instanceKey, migrationInfo gocd.ArtifactLocation, subApplication string) *gocd.Job {
	name := RollbackMigrationsJobName
	if subApplication != "" {
		name += "_" + subApplication
	}
	job := stage.EnsureJob(name)

	job.AddTask(inventory.FetchFile(ArtifactPath))
	job.AddTask(instanceKey.FetchFile(ArtifactPath))
	TargetDirectory(job, ArtifactPath, gocd.RunIfPassed)
	job.AddTask(migrationInfo.FetchDir(ArtifactPath))

	addBash(job, fmt.Sprintf("chmod 600 %s", instanceKey.FileName), ArtifactPath, gocd.RunIfPassed)
	RequirementsInstall(job, PublicConfigurationDir, gocd.RunIfPassed)
	MigrationRollback(job, subApplication, gocd.RunIfPassed)
	return job
}
