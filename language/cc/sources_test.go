// Copyright 2026 EngFlow Inc. All rights reserved.
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

package cc

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

func compress(t *testing.T, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestFileKind(t *testing.T) {
	testCases := map[string]FileKind{
		"a.h":      HeaderKind,
		"a.HPP":    HeaderKind,
		"a.h.xz":   HeaderKind,
		"a.c":      SourceKind,
		"a.cc":     SourceKind,
		"a.cpp.xz": SourceKind,
		"a.txt":    UnknownKind,
		"a.xz":     UnknownKind,
		"Makefile": UnknownKind,
	}
	for name, expected := range testCases {
		assert.Equal(t, expected, fileKindOf(name), name)
	}
}

func TestFindSources(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"src/a.c", "src/b.h", "src/nested/c.cc", "src/nested/d.h.xz", "src/notes.txt", "other/e.h"} {
		writeFile(t, filepath.Join(dir, name), nil)
	}
	path := func(name string) string { return filepath.Join(dir, name) }

	files, err := FindSources([]string{path("src/**/*"), path("other/e.h"), path("src/a.c"), path("src/notes.txt")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		path("src/a.c"),
		path("src/b.h"),
		path("src/nested/c.cc"),
		path("src/nested/d.h.xz"),
		path("other/e.h"),
		path("src/notes.txt"),
	}, files)

	_, err = FindSources([]string{path("missing/**/*.h")})
	assert.Error(t, err)

	_, err = FindSources([]string{path("src/[")})
	assert.Error(t, err)
}

func TestReadSource(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain.h")
	compressed := filepath.Join(dir, "compressed.h.xz")
	writeFile(t, plain, []byte("#define A 1\n"))
	writeFile(t, compressed, compress(t, "#define B 2\n"))

	content, err := ReadSource(plain)
	require.NoError(t, err)
	assert.Equal(t, "#define A 1\n", string(content))

	content, err = ReadSource(compressed)
	require.NoError(t, err)
	assert.Equal(t, "#define B 2\n", string(content))

	broken := filepath.Join(dir, "broken.h.xz")
	writeFile(t, broken, []byte("not xz"))
	_, err = ReadSource(broken)
	assert.Error(t, err)

	_, err = ReadSource(filepath.Join(dir, "missing.h"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
