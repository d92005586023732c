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

// Package executor defines the scheduler-facing contract the application
// driver submits and polls jobs through.
package executor

import "context"

// JobID identifies a submitted job on the scheduler.
type JobID string

// 📊 JobState is the closed set of scheduler states a job can be in.
type JobState int

const (
	StateUnknown JobState = iota
	StatePending
	StateRunning
	StateCompleted
	StateFailed
	StateCanceled
	StateTimeout
)

// String returns the scheduler-style name of the state.
func (s JobState) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateRunning:
		return "RUNNING"
	case StateCompleted:
		return "COMPLETED"
	case StateFailed:
		return "FAILED"
	case StateCanceled:
		return "CANCELED"
	case StateTimeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no further transition can occur from s.
func (s JobState) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCanceled, StateTimeout:
		return true
	default:
		return false
	}
}

// Success reports whether s is the successful terminal state.
func (s JobState) Success() bool {
	return s == StateCompleted
}

// 📦 JobStatus is one observation of a job's state.
type JobStatus struct {
	ID    JobID
	Name  string
	State JobState
}

// 🔧 JobOptions carries the submission parameters for one job.
type JobOptions struct {
	// JobFile is the path of the batch script on the target filesystem.
	JobFile string
}

// 🎯 Executor submits jobs to a scheduler and reports their status.
type Executor interface {
	// Submit hands the job to the scheduler and returns its id.
	Submit(ctx context.Context, options JobOptions) (JobID, error)

	// Poll queries the current status of a job.
	Poll(ctx context.Context, id JobID) (JobStatus, error)

	// Cancel asks the scheduler to stop a job.
	Cancel(ctx context.Context, id JobID) error
}
