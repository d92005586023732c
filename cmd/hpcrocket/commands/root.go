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

// Package commands wires the cobra command tree for the hpcrocket CLI.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

var debug bool

// ExitError carries a process exit code out of a command.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// exitCode converts a driver exit code into a command result.
func exitCode(code int) error {
	if code == 0 {
		return nil
	}
	return &ExitError{Code: code}
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context) int {
	return run(ctx, NewRootCmd())
}

// run executes cmd and maps its outcome to an exit code. Driver exit
// codes pass through silently; every other fatal error is printed to the
// command's error stream so a failed run never exits without a message.
func run(ctx context.Context, cmd *cobra.Command) int {
	if err := cmd.ExecuteContext(ctx); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		pterm.Error.WithWriter(cmd.ErrOrStderr()).Println(err.Error())
		return 1
	}
	return 0
}

// NewRootCmd creates the hpcrocket root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hpcrocket",
		Short: "Launch batch jobs on a remote cluster from your local machine",
		Long: `hpcrocket stages input files onto a remote cluster over SSH,
submits a batch job, watches it until completion, collects the results
and cleans up staged files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if debug {
				level = zerolog.DebugLevel
			}
			logger := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
				w.Out = os.Stderr
			})).Level(level).With().Timestamp().Logger()
			cmd.SetContext(logger.WithContext(cmd.Context()))
		},
	}

	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	cmd.AddCommand(
		NewLaunchCmd(),
		NewWatchCmd(),
		NewStatusCmd(),
		NewCancelCmd(),
		NewFinalizeCmd(),
	)
	return cmd
}
