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
	"path"

	"github.com/pkg/sftp"
	"gitlab.com/tozd/go/errors"
)

// 🌐 sftpFilesystem is the remote Filesystem backed by an SFTP session.
type sftpFilesystem struct {
	client *sftp.Client
}

// NewSFTP creates a Filesystem over an established SFTP client.
func NewSFTP(client *sftp.Client) Filesystem {
	return &sftpFilesystem{client: client}
}

func (fs *sftpFilesystem) Exists(path string) (bool, error) {
	_, err := fs.client.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, errors.Errorf("stating %s: %w", path, err)
}

func (fs *sftpFilesystem) Copy(source, destination string, overwrite bool, target Filesystem) error {
	return copyBetween(fs, source, destination, overwrite, target)
}

func (fs *sftpFilesystem) Delete(path string) error {
	if err := fs.client.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return errors.Errorf("%w: %s", ErrNotFound, path)
		}
		return errors.Errorf("deleting %s: %w", path, err)
	}
	return nil
}

func (fs *sftpFilesystem) Open(path string) (io.ReadCloser, error) {
	file, err := fs.client.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, errors.Errorf("opening %s: %w", path, err)
	}
	return file, nil
}

func (fs *sftpFilesystem) Create(p string) (io.WriteCloser, error) {
	if dir := path.Dir(p); dir != "." && dir != "/" {
		if err := fs.client.MkdirAll(dir); err != nil {
			return nil, errors.Errorf("creating parent directories: %w", err)
		}
	}
	file, err := fs.client.Create(p)
	if err != nil {
		return nil, errors.Errorf("creating %s: %w", p, err)
	}
	return file, nil
}

// Glob matches with sftp's path.Match globbing. Recursive ** patterns are
// not supported by the protocol walk, single-level globs are.
func (fs *sftpFilesystem) Glob(pattern string) ([]string, error) {
	matches, err := fs.client.Glob(pattern)
	if err != nil {
		return nil, errors.Errorf("globbing %s: %w", pattern, err)
	}
	return matches, nil
}
