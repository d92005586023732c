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
	"github.com/spf13/cobra"
)

// NewFinalizeCmd creates the finalize command.
func NewFinalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finalize <config>",
		Short: "Collect results and clean staged files for a finished job",
		Long: `Finalize runs the post-job phases of the lifecycle on their own:
collect the result files listed in the config, then delete the staged
temporaries. Useful after launching without --watch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := newSession(ctx, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			return exitCode(s.App.Finalize(ctx, s.Config.Options()))
		},
	}
}
