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

// NewLaunchCmd creates the launch command.
func NewLaunchCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "launch <config>",
		Short: "Stage files, submit the job and optionally watch it",
		Long: `Launch runs the full job lifecycle described by the config file:
1. Copy input files onto the cluster
2. Submit the batch job
3. Watch it until completion (with --watch or watch: true)
4. Collect results and clean staged files`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := newSession(ctx, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			options := s.Config.Options()
			if cmd.Flags().Changed("watch") {
				options.Watch = watch
			}
			return exitCode(s.App.Run(ctx, options))
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "watch the job until it finishes")
	return cmd
}
