// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package markitdown

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type sourceKind int

const (
	sourceLocalPath sourceKind = iota + 1
	sourceBuffer
)

// Source is the input handed to a DocumentConverter: either a file on the
// local filesystem or an in-memory buffer. A Source is immutable; Buffer
// copies its input and every accessor hands out a private view.
type Source struct {
	kind sourceKind
	path string
	data []byte
}

// LocalPath returns a Source backed by the file at path.
func LocalPath(path string) Source {
	return Source{kind: sourceLocalPath, path: path}
}

// Buffer returns a Source backed by a copy of data.
func Buffer(data []byte) Source {
	cp := make([]byte, len(data))
	copy(cp, data)
	return Source{kind: sourceBuffer, data: cp}
}

// Path returns the local path when the source is file backed.
func (s Source) Path() (string, bool) {
	return s.path, s.kind == sourceLocalPath
}

// IsBuffer reports whether the source is an in-memory buffer.
func (s Source) IsBuffer() bool {
	return s.kind == sourceBuffer
}

// Name returns the base name of a file-backed source, or "" for buffers.
func (s Source) Name() string {
	if s.kind == sourceLocalPath {
		return filepath.Base(s.path)
	}
	return ""
}

// String is used in error messages.
func (s Source) String() string {
	switch s.kind {
	case sourceLocalPath:
		return s.path
	case sourceBuffer:
		return fmt.Sprintf("<buffer %d bytes>", len(s.data))
	}
	return "<empty source>"
}

type nopReadSeekCloser struct {
	*bytes.Reader
}

func (nopReadSeekCloser) Close() error { return nil }

// Open returns a reader positioned at the start of the source. The caller
// must close it.
func (s Source) Open() (io.ReadSeekCloser, error) {
	switch s.kind {
	case sourceLocalPath:
		f, err := os.Open(s.path)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		return f, nil
	case sourceBuffer:
		return nopReadSeekCloser{bytes.NewReader(s.data)}, nil
	}
	return nil, fmt.Errorf("open source: empty source")
}

// ReadAll returns the full content of the source. For buffers the returned
// slice is a copy.
func (s Source) ReadAll() ([]byte, error) {
	switch s.kind {
	case sourceLocalPath:
		data, err := os.ReadFile(s.path)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		return data, nil
	case sourceBuffer:
		cp := make([]byte, len(s.data))
		copy(cp, s.data)
		return cp, nil
	}
	return nil, fmt.Errorf("read source: empty source")
}

// Size returns the byte length of the source.
func (s Source) Size() (int64, error) {
	switch s.kind {
	case sourceLocalPath:
		fi, err := os.Stat(s.path)
		if err != nil {
			return 0, fmt.Errorf("stat file: %w", err)
		}
		return fi.Size(), nil
	case sourceBuffer:
		return int64(len(s.data)), nil
	}
	return 0, fmt.Errorf("stat source: empty source")
}

// Materialize returns a filesystem path holding the source content with the
// given extension, for libraries that only accept paths. A file-backed
// source whose suffix already matches ext is returned as-is; anything else is
// copied to a uniquely named temp file. cleanup is always non-nil and safe to
// call more than once.
func (s Source) Materialize(ext string) (path string, cleanup func(), err error) {
	noop := func() {}
	if p, ok := s.Path(); ok && (ext == "" || strings.EqualFold(filepath.Ext(p), ext)) {
		return p, noop, nil
	}

	in, err := s.Open()
	if err != nil {
		return "", noop, err
	}
	defer in.Close()

	tmp, err := os.CreateTemp("", "markitdown-*"+ext)
	if err != nil {
		return "", noop, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup = func() { _ = os.Remove(tmpPath) }

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		cleanup()
		return "", noop, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", noop, fmt.Errorf("close temp file: %w", err)
	}
	return tmpPath, cleanup, nil
}
