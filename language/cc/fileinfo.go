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
	"fmt"

	"github.com/EngFlow/ccexpand/language/internal/cc/diagnostic"
	"github.com/EngFlow/ccexpand/language/internal/cc/lexer"
	"github.com/EngFlow/ccexpand/language/internal/cc/preprocessor"
)

// FileKind tells headers from implementation files, based on the file
// extension.
type FileKind byte

const (
	// UnknownKind is assigned to files without a C or C++ extension.
	UnknownKind FileKind = iota

	// HeaderKind is a header file (.h).
	HeaderKind

	// SourceKind is an implementation file (.c, .cc).
	SourceKind
)

func (k FileKind) String() string {
	switch k {
	case HeaderKind:
		return "header"
	case SourceKind:
		return "source"
	default:
		return "unknown"
	}
}

func fileKindOf(name string) FileKind {
	switch {
	case fileNameIsHeader(name):
		return HeaderKind
	case hasMatchingExtension(name, sourceExtensions):
		return SourceKind
	default:
		return UnknownKind
	}
}

// Include is a file included from an active region of a processed file.
type Include struct {
	Path     string
	IsSystem bool
	IsNext   bool
	// Line of the #include directive.
	Line int
}

func (i Include) String() string {
	if i.IsSystem {
		return "<" + i.Path + ">"
	}
	return `"` + i.Path + `"`
}

// FileInfo is the outcome of preprocessing one file.
type FileInfo struct {
	Name string
	Kind FileKind
	// Preprocessed text, with directives replaced by empty lines.
	Output   string
	Includes []Include
	Warnings int
	Errors   int
}

func (fi FileInfo) String() string {
	return fmt.Sprintf("%s (%v): %d includes, %d warnings, %d errors", fi.Name, fi.Kind, len(fi.Includes), fi.Warnings, fi.Errors)
}

func newFileInfo(name string, result preprocessor.Result) FileInfo {
	info := FileInfo{
		Name:     name,
		Kind:     fileKindOf(name),
		Output:   lexer.Concat(result.Tokens),
		Includes: make([]Include, len(result.Includes)),
	}
	for i, include := range result.Includes {
		info.Includes[i] = Include{
			Path:     include.Path,
			IsSystem: include.IsSystem,
			IsNext:   include.IsNext,
			Line:     include.Directive.Location.Line,
		}
	}
	for _, d := range result.Diagnostics {
		if d.Severity == diagnostic.Severity_Error {
			info.Errors++
		} else {
			info.Warnings++
		}
	}
	return info
}
