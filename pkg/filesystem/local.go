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

package filesystem

import (
	"io"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// 💾 localFilesystem is the disk-backed Filesystem rooted at a directory.
// Relative paths resolve against the root; the zero root means the
// process working directory.
type localFilesystem struct {
	root string
}

// NewLocal creates a Filesystem over the local disk rooted at dir.
func NewLocal(dir string) Filesystem {
	return &localFilesystem{root: dir}
}

func (fs *localFilesystem) abs(path string) string {
	if filepath.IsAbs(path) || fs.root == "" {
		return path
	}
	return filepath.Join(fs.root, path)
}

func (fs *localFilesystem) Exists(path string) (bool, error) {
	_, err := os.Stat(fs.abs(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Errorf("stating %s: %w", path, err)
}

func (fs *localFilesystem) Copy(source, destination string, overwrite bool, target Filesystem) error {
	return copyBetween(fs, source, destination, overwrite, target)
}

func (fs *localFilesystem) Delete(path string) error {
	if err := os.Remove(fs.abs(path)); err != nil {
		if os.IsNotExist(err) {
			return errors.Errorf("%w: %s", ErrNotFound, path)
		}
		return errors.Errorf("deleting %s: %w", path, err)
	}
	return nil
}

func (fs *localFilesystem) Open(path string) (io.ReadCloser, error) {
	file, err := os.Open(fs.abs(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, errors.Errorf("opening %s: %w", path, err)
	}
	return file, nil
}

func (fs *localFilesystem) Create(path string) (io.WriteCloser, error) {
	abs := fs.abs(path)
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return nil, errors.Errorf("creating parent directories: %w", err)
	}
	file, err := os.Create(abs)
	if err != nil {
		return nil, errors.Errorf("creating %s: %w", path, err)
	}
	return file, nil
}

func (fs *localFilesystem) Glob(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(fs.abs(pattern))
	if err != nil {
		return nil, errors.Errorf("globbing %s: %w", pattern, err)
	}
	if fs.root == "" {
		return matches, nil
	}
	// Report matches relative to the root so instructions stay portable.
	relative := make([]string, 0, len(matches))
	for _, match := range matches {
		rel, err := filepath.Rel(fs.root, match)
		if err != nil {
			return nil, errors.Errorf("relativizing %s: %w", match, err)
		}
		relative = append(relative, rel)
	}
	return relative, nil
}
