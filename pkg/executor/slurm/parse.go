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

package slurm

import (
	"strings"

	"github.com/hpcrocket/hpcrocket/pkg/executor"
	"gitlab.com/tozd/go/errors"
)

// parseSubmission extracts the job id from sbatch's acknowledgement,
// e.g. "Submitted batch job 123456".
func parseSubmission(stdout string) (executor.JobID, error) {
	fields := strings.Fields(strings.TrimSpace(stdout))
	if len(fields) == 0 {
		return "", errors.New("sbatch produced no output")
	}
	id := fields[len(fields)-1]
	if !strings.HasPrefix(strings.TrimSpace(stdout), "Submitted batch job") {
		return "", errors.Errorf("unexpected sbatch output: %q", strings.TrimSpace(stdout))
	}
	return executor.JobID(id), nil
}

// parseStatus extracts the status of job id from pipe-separated sacct
// output. Sub-steps like 123456.batch are skipped; the main allocation
// line wins.
func parseStatus(id executor.JobID, stdout string) (executor.JobStatus, error) {
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		columns := strings.Split(line, "|")
		if len(columns) < 3 {
			continue
		}
		if columns[0] != string(id) {
			continue
		}
		return executor.JobStatus{
			ID:    id,
			Name:  strings.TrimSpace(columns[1]),
			State: parseState(columns[2]),
		}, nil
	}
	return executor.JobStatus{}, errors.Errorf("job %s not found in sacct output", id)
}

// parseState maps a Slurm state string onto the executor state enum.
// Cancellations carry a suffix ("CANCELLED by 1234"), so match on prefix.
func parseState(raw string) executor.JobState {
	state := strings.TrimSpace(strings.ToUpper(raw))
	switch {
	case state == "PENDING":
		return executor.StatePending
	case state == "RUNNING", state == "COMPLETING", state == "SUSPENDED":
		return executor.StateRunning
	case state == "COMPLETED":
		return executor.StateCompleted
	case state == "FAILED", state == "NODE_FAIL", state == "BOOT_FAIL", state == "OUT_OF_MEMORY":
		return executor.StateFailed
	case strings.HasPrefix(state, "CANCELLED"):
		return executor.StateCanceled
	case state == "TIMEOUT", state == "DEADLINE":
		return executor.StateTimeout
	default:
		return executor.StateUnknown
	}
}
