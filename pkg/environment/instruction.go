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

package environment

import (
	"path"
	"strings"

	"github.com/hpcrocket/hpcrocket/pkg/filesystem"
	"gitlab.com/tozd/go/errors"
)

// 📋 CopyInstruction describes one file transfer. The direction is decided
// by the work list it is placed in, not by the instruction itself.
type CopyInstruction struct {
	Source      string
	Destination string
	Overwrite   bool
}

// ExpandGlobs resolves glob patterns in instruction sources against fs.
// An instruction without a glob passes through unchanged. A glob
// instruction expands into one instruction per match, with the original
// destination treated as a directory.
func ExpandGlobs(fs filesystem.Filesystem, instructions []CopyInstruction) ([]CopyInstruction, error) {
	expanded := make([]CopyInstruction, 0, len(instructions))
	for _, instruction := range instructions {
		if !strings.ContainsAny(instruction.Source, "*?[") {
			expanded = append(expanded, instruction)
			continue
		}

		matches, err := fs.Glob(instruction.Source)
		if err != nil {
			return nil, errors.Errorf("expanding %s: %w", instruction.Source, err)
		}

		for _, match := range matches {
			expanded = append(expanded, CopyInstruction{
				Source:      match,
				Destination: path.Join(instruction.Destination, path.Base(match)),
				Overwrite:   instruction.Overwrite,
			})
		}
	}
	return expanded, nil
}
