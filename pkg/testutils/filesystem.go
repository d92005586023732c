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

// Package testutils provides the in-memory test doubles shared by the
// package tests: a memory filesystem, a recording UI, and scripted
// executors.
package testutils

import (
	"bytes"
	"io"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"

	"github.com/hpcrocket/hpcrocket/pkg/filesystem"
)

// 🧪 MemoryFilesystem is a map-backed Filesystem for tests.
type MemoryFilesystem struct {
	mu    sync.Mutex
	files map[string][]byte

	// DeleteCalls records every Delete invocation in order.
	DeleteCalls []string
	// CopyCalls records every Copy invocation in order.
	CopyCalls []CopyCall

	// FailDeleteWith injects an error for specific paths.
	FailDeleteWith map[string]error
	// FailCopyWith injects an error for specific source paths.
	FailCopyWith map[string]error
}

// CopyCall is one recorded Copy invocation.
type CopyCall struct {
	Source      string
	Destination string
	Overwrite   bool
	Target      filesystem.Filesystem
}

// NewMemoryFilesystem creates a MemoryFilesystem seeded with empty files
// at the given paths.
func NewMemoryFilesystem(paths ...string) *MemoryFilesystem {
	files := make(map[string][]byte, len(paths))
	for _, path := range paths {
		files[path] = []byte(path + " content")
	}
	return &MemoryFilesystem{
		files:          files,
		FailDeleteWith: map[string]error{},
		FailCopyWith:   map[string]error{},
	}
}

// WriteFile seeds or replaces a file.
func (fs *MemoryFilesystem) WriteFile(path string, content []byte) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files[path] = append([]byte(nil), content...)
}

// Content returns a file's bytes, or nil if absent.
func (fs *MemoryFilesystem) Content(path string) []byte {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.files[path]
}

func (fs *MemoryFilesystem) Exists(path string) (bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	_, ok := fs.files[path]
	return ok, nil
}

func (fs *MemoryFilesystem) Copy(source, destination string, overwrite bool, target filesystem.Filesystem) error {
	fs.mu.Lock()
	fs.CopyCalls = append(fs.CopyCalls, CopyCall{source, destination, overwrite, target})
	injected := fs.FailCopyWith[source]
	content, ok := fs.files[source]
	fs.mu.Unlock()

	if injected != nil {
		return injected
	}
	if !ok {
		return errors.Errorf("%w: %s", filesystem.ErrNotFound, source)
	}

	if !overwrite {
		exists, err := target.Exists(destination)
		if err != nil {
			return err
		}
		if exists {
			return errors.Errorf("%w: %s", filesystem.ErrExists, destination)
		}
	}

	writer, err := target.Create(destination)
	if err != nil {
		return err
	}
	if _, err := writer.Write(content); err != nil {
		writer.Close()
		return err
	}
	return writer.Close()
}

func (fs *MemoryFilesystem) Delete(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.DeleteCalls = append(fs.DeleteCalls, path)
	if err := fs.FailDeleteWith[path]; err != nil {
		return err
	}
	if _, ok := fs.files[path]; !ok {
		return errors.Errorf("%w: %s", filesystem.ErrNotFound, path)
	}
	delete(fs.files, path)
	return nil
}

func (fs *MemoryFilesystem) Open(path string) (io.ReadCloser, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	content, ok := fs.files[path]
	if !ok {
		return nil, errors.Errorf("%w: %s", filesystem.ErrNotFound, path)
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (fs *MemoryFilesystem) Create(path string) (io.WriteCloser, error) {
	return &memoryFile{fs: fs, path: path}, nil
}

func (fs *MemoryFilesystem) Glob(pattern string) ([]string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var matches []string
	for path := range fs.files {
		ok, err := doublestar.Match(pattern, path)
		if err != nil {
			return nil, errors.Errorf("globbing %s: %w", pattern, err)
		}
		if ok {
			matches = append(matches, path)
		}
	}
	sort.Strings(matches)
	return matches, nil
}

type memoryFile struct {
	fs   *MemoryFilesystem
	path string
	buf  bytes.Buffer
}

func (f *memoryFile) Write(p []byte) (int, error) {
	return f.buf.Write(p)
}

func (f *memoryFile) Close() error {
	f.fs.WriteFile(f.path, f.buf.Bytes())
	return nil
}
