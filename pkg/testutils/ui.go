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
	"sync"

	"github.com/hpcrocket/hpcrocket/pkg/executor"
)

// 🧪 UISpy records every notification the driver pushes into the UI.
type UISpy struct {
	mu sync.Mutex

	Launches  []executor.JobID
	Updates   []executor.JobStatus
	Errors    []string
	Successes []string
	Infos     []string
}

func NewUISpy() *UISpy {
	return &UISpy{}
}

func (s *UISpy) Launched(id executor.JobID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Launches = append(s.Launches, id)
}

func (s *UISpy) Update(status executor.JobStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Updates = append(s.Updates, status)
}

func (s *UISpy) Error(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Errors = append(s.Errors, msg)
}

func (s *UISpy) Success(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Successes = append(s.Successes, msg)
}

func (s *UISpy) Info(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Infos = append(s.Infos, msg)
}
