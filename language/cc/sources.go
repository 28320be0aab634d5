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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ulikunitz/xz"
)

var sourceExtensions = []string{".c", ".cc", ".cpp", ".cxx", ".c++", ".S"}
var headerExtensions = []string{".h", ".hh", ".hpp", ".hxx", ".inc"}
var ccExtensions = slices.Concat(sourceExtensions, headerExtensions)

// Compressed sources are read transparently.
const xzExtension = ".xz"

// sourceName strips the compression suffix from name.
func sourceName(name string) string {
	return strings.TrimSuffix(name, xzExtension)
}

func hasMatchingExtension(filename string, extensions []string) bool {
	ext := filepath.Ext(sourceName(filename))
	for _, validExt := range extensions {
		if strings.EqualFold(ext, validExt) { // Case-insensitive comparison
			return true
		}
	}
	return false
}

func fileNameIsHeader(name string) bool {
	return hasMatchingExtension(name, headerExtensions)
}

// FindSources resolves the given paths and doublestar patterns (e.g.
// "src/**/*.h") to the C and C++ files they name, in a stable order without
// duplicates. Paths naming existing files are kept whatever their
// extension; pattern matches are filtered by extension.
func FindSources(patterns []string) ([]string, error) {
	var files []string
	seen := map[string]bool{}
	add := func(file string) {
		if !seen[file] {
			seen[file] = true
			files = append(files, file)
		}
	}

	for _, pattern := range patterns {
		if info, err := os.Stat(pattern); err == nil && !info.IsDir() {
			add(pattern)
			continue
		}
		if !doublestar.ValidatePathPattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to expand %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", pattern)
		}
		slices.Sort(matches)
		for _, match := range matches {
			if hasMatchingExtension(match, ccExtensions) {
				add(match)
			}
		}
	}
	return files, nil
}

// ReadSource reads a source file, decompressing it when its name ends with
// ".xz".
func ReadSource(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, xzExtension) {
		xzr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		r = xzr
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return buf.Bytes(), nil
}
