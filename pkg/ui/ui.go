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

// Package ui presents job progress and errors to the user.
package ui

import "github.com/hpcrocket/hpcrocket/pkg/executor"

// 📢 UI is the sink the driver pushes progress and errors into. There is
// no return contract beyond "displayed or logged".
type UI interface {
	// Launched announces a successfully submitted job.
	Launched(id executor.JobID)

	// Update shows the latest observed job status.
	Update(status executor.JobStatus)

	// Error shows an error message.
	Error(msg string)

	// Success shows a success message.
	Success(msg string)

	// Info shows an informational message.
	Info(msg string)
}
