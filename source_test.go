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
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferSource(t *testing.T) {
	data := []byte("hello")
	src := Buffer(data)
	data[0] = 'j'

	got, err := src.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	got[0] = 'y'
	again, err := src.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(again))

	assert.True(t, src.IsBuffer())
	_, ok := src.Path()
	assert.False(t, ok)
	assert.Empty(t, src.Name())
	assert.Equal(t, "<buffer 5 bytes>", src.String())

	size, err := src.Size()
	require.NoError(t, err)
	assert.EqualValues(t, 5, size)

	r, err := src.Open()
	require.NoError(t, err)
	defer r.Close()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
}

func TestLocalPathSource(t *testing.T) {
	p := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(p, []byte("content"), 0o600))

	src := LocalPath(p)
	got, ok := src.Path()
	assert.True(t, ok)
	assert.Equal(t, p, got)
	assert.Equal(t, "notes.txt", src.Name())
	assert.False(t, src.IsBuffer())

	data, err := src.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))

	_, err = LocalPath(filepath.Join(t.TempDir(), "missing")).ReadAll()
	assert.Error(t, err)
}

func TestEmptySource(t *testing.T) {
	var src Source
	_, err := src.Open()
	assert.Error(t, err)
	_, err = src.ReadAll()
	assert.Error(t, err)
	assert.Equal(t, "<empty source>", src.String())
}

func TestMaterialize(t *testing.T) {
	t.Run("matching file is used in place", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "book.XLS")
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))

		got, cleanup, err := LocalPath(p).Materialize(".xls")
		require.NoError(t, err)
		cleanup()
		assert.Equal(t, p, got)
		assert.FileExists(t, p)
	})

	t.Run("buffer is copied to a temp file", func(t *testing.T) {
		got, cleanup, err := Buffer([]byte("payload")).Materialize(".odt")
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(got, ".odt"))

		data, err := os.ReadFile(got)
		require.NoError(t, err)
		assert.Equal(t, "payload", string(data))

		cleanup()
		cleanup()
		assert.NoFileExists(t, got)
	})

	t.Run("mismatched suffix is copied", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "scratch")
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))

		got, cleanup, err := LocalPath(p).Materialize(".rtf")
		require.NoError(t, err)
		defer cleanup()
		assert.NotEqual(t, p, got)
		assert.FileExists(t, p)
	})
}
