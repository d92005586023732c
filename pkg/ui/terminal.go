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

package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"github.com/hpcrocket/hpcrocket/pkg/executor"
)

// 🖥️ Terminal renders progress to a console writer and mirrors every
// message to zerolog for machine-readable output.
type Terminal struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex

	success *pterm.PrefixPrinter
	failure *pterm.PrefixPrinter
	info    *pterm.PrefixPrinter
}

// NewTerminal creates a Terminal writing to console.
func NewTerminal(console io.Writer, zlog zerolog.Logger) *Terminal {
	success := pterm.Success.WithWriter(console)
	failure := pterm.Error.WithWriter(console)
	info := pterm.Info.WithWriter(console)
	return &Terminal{
		zlog:    zlog,
		console: console,
		success: success,
		failure: failure,
		info:    info,
	}
}

func (t *Terminal) Launched(id executor.JobID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.info.Printfln("Submitted batch job %s", id)
	t.zlog.Info().Str("job_id", string(id)).Msg("job launched")
}

func (t *Terminal) Update(status executor.JobStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.console, "  %s %s %s\n",
		stateSymbol(status.State),
		fmt.Sprintf("%-30s", status.Name),
		stateColor(status.State).Sprint(status.State.String()))
	t.zlog.Info().
		Str("job_id", string(status.ID)).
		Str("state", status.State.String()).
		Msg("job status")
}

func (t *Terminal) Error(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failure.Println(msg)
	t.zlog.Error().Msg(msg)
}

func (t *Terminal) Success(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.success.Println(msg)
	t.zlog.Info().Msg(msg)
}

func (t *Terminal) Info(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.info.Println(msg)
	t.zlog.Info().Msg(msg)
}

func stateSymbol(state executor.JobState) string {
	switch state {
	case executor.StateCompleted:
		return color.GreenString("✓")
	case executor.StateFailed, executor.StateCanceled, executor.StateTimeout:
		return color.RedString("✗")
	case executor.StateRunning:
		return color.BlueString("⟳")
	default:
		return color.HiBlackString("•")
	}
}

func stateColor(state executor.JobState) *color.Color {
	switch state {
	case executor.StateCompleted:
		return color.New(color.FgGreen)
	case executor.StateFailed, executor.StateCanceled, executor.StateTimeout:
		return color.New(color.FgRed)
	case executor.StateRunning:
		return color.New(color.FgBlue)
	default:
		return color.New(color.FgYellow)
	}
}
