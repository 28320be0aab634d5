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

// Package cc preprocesses C and C++ source files: it runs their directives
// and expands their macros against a configurable set of predefined macros.
package cc

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/EngFlow/ccexpand/internal/logging"
	"github.com/EngFlow/ccexpand/language/internal/cc/diagnostic"
	"github.com/EngFlow/ccexpand/language/internal/cc/lexer"
	"github.com/EngFlow/ccexpand/language/internal/cc/macro"
	"github.com/EngFlow/ccexpand/language/internal/cc/parser"
	"github.com/EngFlow/ccexpand/language/internal/cc/platform"
	"github.com/EngFlow/ccexpand/language/internal/cc/preprocessor"
)

// HostPlatform selects the platform this program runs on.
const HostPlatform = "host"

var (
	ErrInvalidDefine   = errors.New("invalid macro definition")
	ErrInvalidPlatform = errors.New("invalid platform")
	// Processing of a file stopped on an error diagnostic.
	ErrPreprocessing = errors.New("preprocessing failed")
)

type Options struct {
	// Macros in -D syntax: NAME, NAME=value or NAME(args)=body.
	Defines []string
	// Names of macros removed after Platform and Defines are applied.
	Undefines []string
	// Target platform as "os/arch" or "os", HostPlatform, or empty for no
	// predefined platform macros.
	Platform string
	// Receives diagnostics and, with Trace, every macro expansion at debug
	// level. The default logger is used when nil.
	Logger *log.Logger
	Trace  bool
}

// Engine preprocesses files independently of each other: every file starts
// from the same predefined macros. It is safe for concurrent use.
type Engine struct {
	macros *macro.MacroTable
	logger *log.Logger
	trace  bool
}

func NewEngine(opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	sink := diagnostic.NewLogSink(logger)
	table := macro.NewMacroTable()

	if opts.Platform != "" {
		target := platform.Host()
		if opts.Platform != HostPlatform {
			var err error
			if target, err = platform.Parse(opts.Platform); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidPlatform, err)
			}
		}
		platform.Install(target, table, sink)
		logger.Debug("predefined platform macros", logging.FieldPlatform, target, logging.FieldMacros, len(platform.MacroNames(target)))
	}

	defines, err := parser.ParseMacros(opts.Defines)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDefine, err)
	}
	for _, def := range defines {
		table.Define(def, sink)
	}
	for _, name := range opts.Undefines {
		if !parser.IsMacroIdentifier(name) {
			return nil, fmt.Errorf("%w: cannot undefine %q", ErrInvalidDefine, name)
		}
		table.Undefine(name)
	}

	return &Engine{macros: table, logger: logger, trace: opts.Trace}, nil
}

// MacroNames lists the macros every file starts with.
func (e *Engine) MacroNames() []string {
	return e.macros.Names()
}

// ProcessFile reads and preprocesses the file at path; see ReadSource.
func (e *Engine) ProcessFile(ctx context.Context, path string) (FileInfo, error) {
	source, err := ReadSource(path)
	if err != nil {
		return FileInfo{Name: path}, err
	}
	return e.Process(ctx, sourceName(path), source)
}

// Process preprocesses source, reporting it as the file name. When an error
// diagnostic stops processing, the returned error wraps ErrPreprocessing and
// FileInfo holds the output produced so far.
func (e *Engine) Process(ctx context.Context, name string, source []byte) (FileInfo, error) {
	tokens, err := lexer.Tokenize(name, source)
	if err != nil {
		return FileInfo{Name: name, Kind: fileKindOf(name)}, fmt.Errorf("%s: %w", name, err)
	}

	opts := preprocessor.Options{
		Macros:      e.macros.Clone(),
		Diagnostics: diagnostic.NewLogSink(e.logger),
	}
	if e.trace {
		opts.Observer = macro.NewTraceObserver(e.logger)
	}
	result, err := preprocessor.New(opts).Process(logging.WithLogger(ctx, e.logger), name, tokens)
	info := newFileInfo(name, result)
	if err != nil {
		if preprocessor.IsFatal(err) {
			return info, fmt.Errorf("%w: %w", ErrPreprocessing, err)
		}
		return info, err
	}
	return info, nil
}
