// Copyright 2025 the hpcrocket authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package application drives one job run end to end: stage inputs,
// submit, poll until terminal, collect outputs, clean temporaries, and
// report a process exit code.
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hpcrocket/hpcrocket/pkg/environment"
	"github.com/hpcrocket/hpcrocket/pkg/executor"
	"github.com/hpcrocket/hpcrocket/pkg/filesystem"
	"github.com/hpcrocket/hpcrocket/pkg/ui"
)

// Exit codes returned by Run. 0 only on full success.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

const defaultPollInterval = 5 * time.Second

// 🔧 Options configures one job run.
type Options struct {
	Job executor.JobOptions

	// Watch enables the poll loop; false submits and returns.
	Watch        bool
	PollInterval time.Duration

	// ContinueIfJobFails collects and cleans even when the job fails.
	// The exit code stays nonzero.
	ContinueIfJobFails bool

	CopyFiles    []environment.CopyInstruction
	CollectFiles []environment.CopyInstruction
	CleanFiles   []string
}

// 🚀 Application is the top-level driver for one job lifecycle.
type Application struct {
	executor executor.Executor
	source   filesystem.Filesystem
	target   filesystem.Filesystem
	ui       ui.UI
}

// New creates an Application over the given collaborators.
func New(exec executor.Executor, source, target filesystem.Filesystem, sink ui.UI) *Application {
	return &Application{
		executor: exec,
		source:   source,
		target:   target,
		ui:       sink,
	}
}

// Run executes the full lifecycle and returns the process exit code.
// Staging is transactional: a failure before submission rolls back every
// staged file and the job is never submitted.
func (a *Application) Run(ctx context.Context, options Options) int {
	logger := zerolog.Ctx(ctx)

	copyFiles, err := environment.ExpandGlobs(a.source, options.CopyFiles)
	if err != nil {
		a.ui.Error(fmt.Sprintf("Error during preparation: %s", err))
		return ExitFailure
	}

	env := environment.New(a.source, a.target, a.ui)
	env.FilesToCopy(copyFiles)
	env.FilesToClean(options.CleanFiles)

	if err := env.Prepare(); err != nil {
		a.ui.Error(fmt.Sprintf("Error during preparation: %s", err))
		if rollbackErr := env.Rollback(); rollbackErr != nil {
			a.ui.Error(fmt.Sprintf("Error during rollback: %s", rollbackErr))
		}
		return ExitFailure
	}

	id, err := a.executor.Submit(ctx, options.Job)
	if err != nil {
		a.ui.Error(fmt.Sprintf("Error during submission: %s", err))
		if rollbackErr := env.Rollback(); rollbackErr != nil {
			a.ui.Error(fmt.Sprintf("Error during rollback: %s", rollbackErr))
		}
		return ExitFailure
	}
	a.ui.Launched(id)

	if !options.Watch {
		logger.Info().Str("job_id", string(id)).Msg("job submitted, not watching")
		return ExitSuccess
	}

	status, err := a.pollUntilTerminal(ctx, id, options.PollInterval)
	if err != nil {
		a.ui.Error(fmt.Sprintf("Error watching job %s: %s", id, err))
		return ExitFailure
	}

	if !status.State.Success() && !options.ContinueIfJobFails {
		a.ui.Error(fmt.Sprintf("Job %s did not complete successfully (%s)", id, status.State))
		if rollbackErr := env.Rollback(); rollbackErr != nil {
			a.ui.Error(fmt.Sprintf("Error during rollback: %s", rollbackErr))
		}
		return ExitFailure
	}

	a.collectAndClean(env, options)

	if !status.State.Success() {
		a.ui.Error(fmt.Sprintf("Job %s did not complete successfully (%s)", id, status.State))
		return ExitFailure
	}
	a.ui.Success(fmt.Sprintf("Job %s completed successfully", id))
	return ExitSuccess
}

// Watch polls an already submitted job until it is terminal and returns
// the process exit code for its final state.
func (a *Application) Watch(ctx context.Context, id executor.JobID, interval time.Duration) int {
	status, err := a.pollUntilTerminal(ctx, id, interval)
	if err != nil {
		a.ui.Error(fmt.Sprintf("Error watching job %s: %s", id, err))
		return ExitFailure
	}
	if !status.State.Success() {
		a.ui.Error(fmt.Sprintf("Job %s did not complete successfully (%s)", id, status.State))
		return ExitFailure
	}
	a.ui.Success(fmt.Sprintf("Job %s completed successfully", id))
	return ExitSuccess
}

// Finalize collects outputs and cleans temporaries for a finished job.
// Both phases are best-effort and never change the exit code.
func (a *Application) Finalize(ctx context.Context, options Options) int {
	env := environment.New(a.source, a.target, a.ui)
	a.collectAndClean(env, options)
	a.ui.Success("Collected results and cleaned remote environment")
	return ExitSuccess
}

// collectAndClean expands collect globs against the target, then runs the
// best-effort collect and clean phases. Outputs only exist after the job,
// so the expansion has to happen here rather than at submit time.
func (a *Application) collectAndClean(env *environment.Preparation, options Options) {
	collectFiles, err := environment.ExpandGlobs(a.target, options.CollectFiles)
	if err != nil {
		a.ui.Error(fmt.Sprintf("Error during collection: %s", err))
		collectFiles = nil
	}
	env.FilesToCollect(collectFiles)
	env.Collect()
	env.Clean()
}

// pollUntilTerminal queries the job status once per interval and pushes
// every observation to the UI, in order, until the state is terminal.
// The sleep between polls is the only scheduling point.
func (a *Application) pollUntilTerminal(ctx context.Context, id executor.JobID, interval time.Duration) (executor.JobStatus, error) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	for {
		status, err := a.executor.Poll(ctx, id)
		if err != nil {
			return executor.JobStatus{}, err
		}
		a.ui.Update(status)
		if status.State.Terminal() {
			return status, nil
		}

		select {
		case <-ctx.Done():
			return executor.JobStatus{}, ctx.Err()
		case <-time.After(interval):
		}
	}
}
