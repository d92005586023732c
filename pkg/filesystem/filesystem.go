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

// Package filesystem defines the capability interface the staging layer
// copies files through, plus the local and SFTP backends.
package filesystem

import (
	"io"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrNotFound is returned when a path does not exist on a filesystem.
	ErrNotFound = errors.New("file not found")

	// ErrExists is returned when a copy would overwrite an existing
	// destination without the overwrite flag set.
	ErrExists = errors.New("file already exists")
)

// 📁 Filesystem is the minimal capability a staging backend must provide.
// Copy moves a file from the receiver onto any other Filesystem, so local
// and remote backends compose freely in either direction.
type Filesystem interface {
	// Exists reports whether path exists.
	Exists(path string) (bool, error)

	// Copy copies source on the receiver to destination on target.
	// Fails with ErrNotFound if source is absent and with ErrExists if
	// destination exists on target and overwrite is false.
	Copy(source, destination string, overwrite bool, target Filesystem) error

	// Delete removes path. Fails with ErrNotFound if path is absent.
	Delete(path string) error

	// Open opens path for reading.
	Open(path string) (io.ReadCloser, error)

	// Create opens path for writing, truncating any existing file.
	Create(path string) (io.WriteCloser, error)

	// Glob returns the paths matching pattern.
	Glob(pattern string) ([]string, error)
}

// ErrorKind names the error category the way the UI reports it.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "FileNotFoundError"
	case errors.Is(err, ErrExists):
		return "FileExistsError"
	default:
		return "OSError"
	}
}

// copyBetween implements the Copy contract shared by every backend: check
// the source on from, honor the overwrite flag on to, then stream bytes.
func copyBetween(from Filesystem, source, destination string, overwrite bool, to Filesystem) error {
	exists, err := from.Exists(source)
	if err != nil {
		return errors.Errorf("checking source %s: %w", source, err)
	}
	if !exists {
		return errors.Errorf("%w: %s", ErrNotFound, source)
	}

	if !overwrite {
		exists, err := to.Exists(destination)
		if err != nil {
			return errors.Errorf("checking destination %s: %w", destination, err)
		}
		if exists {
			return errors.Errorf("%w: %s", ErrExists, destination)
		}
	}

	reader, err := from.Open(source)
	if err != nil {
		return errors.Errorf("opening %s: %w", source, err)
	}
	defer reader.Close()

	writer, err := to.Create(destination)
	if err != nil {
		return errors.Errorf("creating %s: %w", destination, err)
	}

	if _, err := io.Copy(writer, reader); err != nil {
		writer.Close()
		return errors.Errorf("copying %s to %s: %w", source, destination, err)
	}

	if err := writer.Close(); err != nil {
		return errors.Errorf("closing %s: %w", destination, err)
	}
	return nil
}
