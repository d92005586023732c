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

package testutils

import (
	"context"
	"sync"

	"github.com/hpcrocket/hpcrocket/pkg/executor"
)

// 🧪 ExecutorStub plays back a scripted sequence of job states. The last
// state repeats once the script is exhausted.
type ExecutorStub struct {
	mu sync.Mutex

	// ID is returned by Submit. Defaults to "1234".
	ID executor.JobID
	// States is the scripted poll sequence.
	States []executor.JobState
	// SubmitErr and PollErr short-circuit the respective calls.
	SubmitErr error
	PollErr   error

	SubmitCalls []executor.JobOptions
	PollCalls   int
	CancelCalls []executor.JobID

	cursor int
}

// NewExecutorStub creates a stub that reports the given states in order.
func NewExecutorStub(states ...executor.JobState) *ExecutorStub {
	return &ExecutorStub{ID: "1234", States: states}
}

func (s *ExecutorStub) Submit(ctx context.Context, options executor.JobOptions) (executor.JobID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SubmitCalls = append(s.SubmitCalls, options)
	if s.SubmitErr != nil {
		return "", s.SubmitErr
	}
	return s.ID, nil
}

func (s *ExecutorStub) Poll(ctx context.Context, id executor.JobID) (executor.JobStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.PollCalls++
	if s.PollErr != nil {
		return executor.JobStatus{}, s.PollErr
	}

	state := executor.StateCompleted
	if len(s.States) > 0 {
		if s.cursor >= len(s.States) {
			s.cursor = len(s.States) - 1
		}
		state = s.States[s.cursor]
		s.cursor++
	}
	return executor.JobStatus{ID: id, Name: "test_job", State: state}, nil
}

func (s *ExecutorStub) Cancel(ctx context.Context, id executor.JobID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CancelCalls = append(s.CancelCalls, id)
	return nil
}
