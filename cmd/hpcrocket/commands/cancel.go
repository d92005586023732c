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

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/hpcrocket/hpcrocket/pkg/executor"
)

// NewCancelCmd creates the cancel command.
func NewCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <config> <jobid>",
		Short: "Cancel a running job",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := newSession(ctx, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Executor.Cancel(ctx, executor.JobID(args[1])); err != nil {
				return errors.Errorf("canceling job %s: %w", args[1], err)
			}
			s.UI.Success(fmt.Sprintf("Canceled job %s", args[1]))
			return nil
		},
	}
}
