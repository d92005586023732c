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

// Package environment stages job input files onto the target filesystem,
// collects outputs back, and cleans staged temporaries. Staging is a
// fail-fast transaction with ledger-based rollback; collection and
// cleanup are best-effort.
package environment

import (
	"fmt"

	"github.com/hpcrocket/hpcrocket/pkg/filesystem"
	"gitlab.com/tozd/go/errors"
)

// ErrorSink receives error notifications from best-effort operations.
type ErrorSink interface {
	Error(msg string)
}

// 🚀 Preparation orchestrates copy/delete batches between a source and a
// target filesystem. Every successful staging copy is recorded in the
// ledger so a failed run can be rolled back.
type Preparation struct {
	source filesystem.Filesystem
	target filesystem.Filesystem
	ui     ErrorSink

	copyInstructions    []CopyInstruction
	collectInstructions []CopyInstruction
	cleanPaths          []string

	// ledger holds the subset of copyInstructions actually applied,
	// in application order. Rollback drains it.
	ledger []CopyInstruction
}

// New creates a Preparation between source and target. The ui sink is
// optional; a nil sink drops best-effort error reports.
func New(source, target filesystem.Filesystem, ui ErrorSink) *Preparation {
	return &Preparation{
		source: source,
		target: target,
		ui:     ui,
	}
}

// FilesToCopy replaces the staging work list. No side effects until Prepare.
func (p *Preparation) FilesToCopy(instructions []CopyInstruction) {
	p.copyInstructions = append([]CopyInstruction(nil), instructions...)
}

// FilesToCollect replaces the collection work list. No side effects until
// Collect.
func (p *Preparation) FilesToCollect(instructions []CopyInstruction) {
	p.collectInstructions = append([]CopyInstruction(nil), instructions...)
}

// FilesToClean replaces the clean list. No side effects until Clean.
func (p *Preparation) FilesToClean(paths []string) {
	p.cleanPaths = append([]string(nil), paths...)
}

// Prepare copies every staged instruction onto the target, in list order.
// The first failure stops the run and is returned to the caller with the
// ledger preserved; the caller is expected to call Rollback next. A
// partially staged environment is unsafe to run a job against.
func (p *Preparation) Prepare() error {
	for _, instruction := range p.copyInstructions {
		err := p.source.Copy(instruction.Source, instruction.Destination, instruction.Overwrite, p.target)
		if err != nil {
			return errors.Errorf("preparing environment: %w", err)
		}
		p.ledger = append(p.ledger, instruction)
	}
	return nil
}

// Rollback deletes every ledgered destination from the target, in ledger
// order. A destination that is already absent counts as rolled back and
// is drained from the ledger without error. Entries whose deletion fails
// for any other reason stay in the ledger so a later Rollback retries
// them. Calling Rollback with an empty ledger is a no-op.
func (p *Preparation) Rollback() error {
	var firstErr error
	remaining := p.ledger[:0]
	for _, instruction := range p.ledger {
		err := p.target.Delete(instruction.Destination)
		if err == nil || errors.Is(err, filesystem.ErrNotFound) {
			continue
		}
		remaining = append(remaining, instruction)
		if firstErr == nil {
			firstErr = err
		}
	}
	p.ledger = remaining
	if firstErr != nil {
		return errors.Errorf("rolling back environment: %w", firstErr)
	}
	return nil
}

// Collect copies outputs from the target back onto the source, in list
// order. Losing one output file should not prevent collecting the rest,
// so failures are reported to the UI and the loop continues.
func (p *Preparation) Collect() {
	for _, instruction := range p.collectInstructions {
		err := p.target.Copy(instruction.Source, instruction.Destination, instruction.Overwrite, p.source)
		if err != nil {
			p.reportError(fmt.Sprintf("%s: Cannot copy file '%s'", filesystem.ErrorKind(err), instruction.Source))
		}
	}
}

// Clean deletes the staged temporaries from the target, in list order.
// A missing file is reported to the UI and the loop continues.
func (p *Preparation) Clean() {
	for _, path := range p.cleanPaths {
		if err := p.target.Delete(path); err != nil {
			p.reportError(fmt.Sprintf("%s: Cannot delete file '%s'", filesystem.ErrorKind(err), path))
		}
	}
}

func (p *Preparation) reportError(msg string) {
	if p.ui != nil {
		p.ui.Error(msg)
	}
}
