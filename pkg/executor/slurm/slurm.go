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

// Package slurm adapts the generic executor contract to the Slurm
// command line tools (sbatch, sacct, scancel) running on the target.
package slurm

import (
	"context"
	"fmt"

	"github.com/hpcrocket/hpcrocket/pkg/executor"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 CommandRunner executes a command on the target machine. Implemented
// by the ssh client in production and by stubs in tests.
type CommandRunner interface {
	Run(ctx context.Context, command string) (RunResult, error)
}

// RunResult is the outcome of one remote command.
type RunResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// 🎮 Slurm implements executor.Executor over a CommandRunner.
type Slurm struct {
	runner CommandRunner
}

// New creates a Slurm executor running commands through runner.
func New(runner CommandRunner) *Slurm {
	return &Slurm{runner: runner}
}

// Submit runs sbatch and parses the job id from its acknowledgement line.
func (s *Slurm) Submit(ctx context.Context, options executor.JobOptions) (executor.JobID, error) {
	command := fmt.Sprintf("sbatch %s", options.JobFile)
	result, err := s.runner.Run(ctx, command)
	if err != nil {
		return "", errors.Errorf("running sbatch: %w", err)
	}
	if result.ExitCode != 0 {
		return "", errors.Errorf("sbatch exited with code %d: %s", result.ExitCode, result.Stderr)
	}

	id, err := parseSubmission(result.Stdout)
	if err != nil {
		return "", err
	}

	zerolog.Ctx(ctx).Info().Str("job_id", string(id)).Msg("job submitted")
	return id, nil
}

// Poll runs sacct for the job and parses its current state.
func (s *Slurm) Poll(ctx context.Context, id executor.JobID) (executor.JobStatus, error) {
	command := fmt.Sprintf("sacct -j %s -o jobid,jobname%%30,state --noheader -P", id)
	result, err := s.runner.Run(ctx, command)
	if err != nil {
		return executor.JobStatus{}, errors.Errorf("running sacct: %w", err)
	}
	if result.ExitCode != 0 {
		return executor.JobStatus{}, errors.Errorf("sacct exited with code %d: %s", result.ExitCode, result.Stderr)
	}

	status, err := parseStatus(id, result.Stdout)
	if err != nil {
		return executor.JobStatus{}, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("job_id", string(id)).
		Str("state", status.State.String()).
		Msg("job polled")
	return status, nil
}

// Cancel runs scancel for the job.
func (s *Slurm) Cancel(ctx context.Context, id executor.JobID) error {
	result, err := s.runner.Run(ctx, fmt.Sprintf("scancel %s", id))
	if err != nil {
		return errors.Errorf("running scancel: %w", err)
	}
	if result.ExitCode != 0 {
		return errors.Errorf("scancel exited with code %d: %s", result.ExitCode, result.Stderr)
	}
	return nil
}
