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

// Package preprocessor runs the directives of a tokenized C source file and
// expands the macros of its text lines.
//
// Lines are processed in order. Directive lines maintain the macro table and
// the stack of conditional blocks; they are replaced by a single newline in the
// output so that line structure is kept. Consecutive active text lines are
// expanded together, which lets a macro invocation span several lines. Text in
// inactive conditional branches is dropped, again keeping its newlines.
//
// Included files are recorded but never read.
package preprocessor

import (
	"context"
	"errors"
	"fmt"

	"github.com/EngFlow/ccexpand/internal/collections"
	"github.com/EngFlow/ccexpand/internal/logging"
	"github.com/EngFlow/ccexpand/language/internal/cc/diagnostic"
	"github.com/EngFlow/ccexpand/language/internal/cc/lexer"
	"github.com/EngFlow/ccexpand/language/internal/cc/macro"
	"github.com/EngFlow/ccexpand/language/internal/cc/parser"
)

type Options struct {
	// Macros visible from the start of every file; changed by #define and
	// #undef. A table with only the builtin macros is used when nil.
	Macros *macro.MacroTable
	// Receives every diagnostic as it is found, in addition to Result.
	Diagnostics diagnostic.Sink
	// Notified around macro body expansions.
	Observer macro.Observer
}

// Include is an #include or #include_next directive met in an active region.
type Include struct {
	Path     string
	IsSystem bool
	IsNext   bool
	// The directive keyword, locating the directive in the source.
	Directive lexer.Token
}

func (i Include) String() string {
	if i.IsSystem {
		return "<" + i.Path + ">"
	}
	return `"` + i.Path + `"`
}

type Result struct {
	Tokens      []lexer.Token
	Includes    []Include
	Diagnostics []diagnostic.Diagnostic
}

// Preprocessor processes files against one macro table. Definitions made by
// a file stay visible to files processed later. It is not safe for
// concurrent use.
type Preprocessor struct {
	macros   *macro.MacroTable
	sink     diagnostic.Sink
	observer macro.Observer
}

func New(opts Options) *Preprocessor {
	p := &Preprocessor{
		macros:   opts.Macros,
		sink:     opts.Diagnostics,
		observer: opts.Observer,
	}
	if p.macros == nil {
		p.macros = macro.NewMacroTable()
	}
	if p.sink == nil {
		p.sink = diagnostic.Discard
	}
	return p
}

// Macros returns the macro table, including definitions made so far.
func (p *Preprocessor) Macros() *macro.MacroTable {
	return p.macros
}

// Process preprocesses the tokens of one file. The returned error is the
// fatal diagnostic that stopped processing, or the error of ctx; Result then
// holds the output produced up to that point.
func (p *Preprocessor) Process(ctx context.Context, fileName string, tokens []lexer.Token) (Result, error) {
	collector := &diagnostic.Collector{}
	sink := diagnostic.Tee(collector, p.sink)
	arena := lexer.NewArena()
	state := &run{
		macros: p.macros,
		sink:   sink,
		tokens: arena,
		expander: macro.NewExpander(p.macros, macro.Options{
			Tokens:      arena,
			Diagnostics: sink,
			Observer:    p.observer,
		}),
	}

	logger := logging.FromContext(ctx).With(logging.FieldPath, fileName)
	logger.Debug("preprocessing", logging.FieldTokens, len(tokens))

	err := state.process(ctx, tokens)
	result := Result{Tokens: state.output, Includes: state.includes, Diagnostics: collector.Diagnostics}
	if err != nil {
		return result, err
	}
	logger.Debug("preprocessed",
		logging.FieldTokens, len(result.Tokens),
		logging.FieldIncludes, len(result.Includes),
		logging.FieldDiagnostics, len(result.Diagnostics))
	return result, nil
}

// run is the state of a single Process call.
type run struct {
	macros   *macro.MacroTable
	expander *macro.Expander
	tokens   lexer.TokenFactory
	sink     diagnostic.Sink

	conditions collections.Stack[*conditionalBlock]
	// active text lines not yet expanded
	pending  []lexer.Token
	output   []lexer.Token
	includes []Include
}

func (r *run) process(ctx context.Context, tokens []lexer.Token) error {
	for line := range logicalLines(tokens) {
		hash, isDirective := directiveStart(line.tokens)
		if !isDirective {
			if r.active() {
				r.pending = append(r.pending, line.tokens...)
				r.pending = appendNewline(r.pending, line)
			} else {
				r.output = appendNewline(r.output, line)
			}
			continue
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.flush(); err != nil {
			return err
		}
		if err := r.directive(line.tokens, hash); err != nil {
			return err
		}
		r.output = appendNewline(r.output, line)
	}

	if err := r.flush(); err != nil {
		return err
	}
	if !r.conditions.Empty() {
		block := r.conditions.Peek()
		return r.fail(diagnostic.Kind_InvalidDirective, block.keyword, "unterminated conditional directive #%s", block.keyword.Content)
	}
	return nil
}

// flush expands the pending text lines into the output.
func (r *run) flush() error {
	if len(r.pending) == 0 {
		return nil
	}
	expanded, err := r.expander.Expand(r.pending)
	r.pending = nil
	if err != nil {
		return err
	}
	r.output = append(r.output, expanded...)
	return nil
}

func (r *run) active() bool {
	return r.conditions.Empty() || r.conditions.Peek().active
}

// directive handles a directive line, hash is the index of its '#'.
func (r *run) directive(line []lexer.Token, hash int) error {
	operands := line[hash+1:]
	if !r.active() {
		return r.inactiveDirective(operands)
	}

	parsed, err := parser.ParseDirective(operands)
	if err != nil {
		return r.fail(diagnostic.Kind_InvalidDirective, directiveKeyword(operands), "%v", err)
	}

	switch d := parsed.(type) {
	case parser.DefineDirective:
		r.macros.Define(d.Macro, r.sink)
	case parser.UndefineDirective:
		r.macros.Undefine(d.Name.Content)
	case parser.ConditionalDirective:
		return r.conditional(d)
	case parser.IncludeDirective:
		return r.include(d, directiveKeyword(operands))
	case parser.MessageDirective:
		keyword := directiveKeyword(operands)
		if d.IsError {
			return r.fail(diagnostic.Kind_UserError, keyword, "#error %s", d.Message)
		}
		r.warn(diagnostic.Kind_UserWarning, keyword, "#warning %s", d.Message)
	case parser.PragmaDirective:
		r.output = append(r.output, line...)
	case parser.UnknownDirective:
		r.warn(diagnostic.Kind_InvalidDirective, d.Name, "invalid preprocessing directive #%s", d.Name.Content)
		r.output = append(r.output, line...)
	case parser.EmptyDirective, parser.IgnoredDirective:
	default:
		panic(fmt.Errorf("unhandled directive %T", parsed))
	}
	return nil
}

// inactiveDirective only follows the nesting of conditional blocks; other
// directives in a skipped region are not even parsed.
func (r *run) inactiveDirective(operands []lexer.Token) error {
	keyword := directiveKeyword(operands)
	switch keyword.Content {
	case "if", "ifdef", "ifndef":
		r.conditions.Push(&conditionalBlock{keyword: keyword, parentActive: false, taken: true})
		return nil
	case "elif", "elifdef", "elifndef", "else", "endif":
		parsed, err := parser.ParseDirective(operands)
		if err != nil {
			return r.fail(diagnostic.Kind_InvalidDirective, keyword, "%v", err)
		}
		return r.conditional(parsed.(parser.ConditionalDirective))
	default:
		return nil
	}
}

func (r *run) include(d parser.IncludeDirective, keyword lexer.Token) error {
	if d.Computed != nil {
		expanded, err := r.expander.Expand(d.Computed)
		if err != nil {
			return err
		}
		path, isSystem, ok := parser.ParseIncludePath(expanded)
		if !ok {
			return r.fail(diagnostic.Kind_InvalidDirective, keyword,
				"#%s expects \"FILENAME\" or <FILENAME>, got %s", keyword.Content, lexer.Concat(expanded))
		}
		d.Path, d.IsSystem = path, isSystem
	}
	r.includes = append(r.includes, Include{Path: d.Path, IsSystem: d.IsSystem, IsNext: d.IsNext, Directive: keyword})
	return nil
}

func directiveKeyword(operands []lexer.Token) lexer.Token {
	for _, token := range operands {
		if !token.IsWhitespace() {
			return token
		}
	}
	return lexer.TokenEOF
}

func (r *run) warn(kind diagnostic.Kind, token lexer.Token, format string, args ...any) {
	r.sink.Report(diagnostic.New(diagnostic.Severity_Warning, kind, token, format, args...))
}

func (r *run) fail(kind diagnostic.Kind, token lexer.Token, format string, args ...any) error {
	d := diagnostic.New(diagnostic.Severity_Error, kind, token, format, args...)
	r.sink.Report(d)
	return d
}

// IsFatal reports whether err stopped processing because of a diagnostic,
// as opposed to a cancelled context.
func IsFatal(err error) bool {
	var d diagnostic.Diagnostic
	return errors.As(err, &d)
}
