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

// Package macro implements expansion of C preprocessor macros over a stream of
// lexer tokens.
//
// Expansion is repeated until the token stream no longer changes. A macro found
// while its own expansion is in progress is emitted with
// lexer.TokenFlag_NoFurtherExpansion and never considered again, which
// guarantees termination for self-referencing macros. Function-like macros
// are substituted in three stages: stringification ('#'), token pasting
// ('##') and insertion of the macro-expanded arguments.
package macro

import (
	"strconv"

	"github.com/EngFlow/ccexpand/internal/collections"
	"github.com/EngFlow/ccexpand/language/internal/cc/diagnostic"
	"github.com/EngFlow/ccexpand/language/internal/cc/lexer"
)

const (
	// Expansion fails when the stream still changes after this many passes
	// following the first two.
	MaxExpansionIterations = 10
	// A warning is reported once when more passes are needed.
	WarnExpansionIterations = 2
)

type Options struct {
	// Creates stringified, pasted and other synthesized tokens. A fresh
	// lexer.Arena is used when nil.
	Tokens lexer.TokenFactory
	// Receives warnings and errors. Errors are also returned from Expand.
	Diagnostics diagnostic.Sink
	// Notified around every macro body expansion.
	Observer Observer
}

// Expander expands macros of a Table. It keeps state between calls (the
// location used by __FILE__ and __LINE__), so one Expander serves one
// translation unit. It is not safe for concurrent use.
type Expander struct {
	macros   Table
	tokens   lexer.TokenFactory
	sink     diagnostic.Sink
	observer Observer

	active collections.Set[string]
	frames collections.Stack[*argumentFrame]
	depth  int
	// set while later passes of an outermost Expand run
	rescanning bool

	currentFile string
	currentLine int
}

func NewExpander(macros Table, opts Options) *Expander {
	e := &Expander{
		macros:   macros,
		tokens:   opts.Tokens,
		sink:     opts.Diagnostics,
		observer: opts.Observer,
		active:   make(collections.Set[string]),
	}
	if e.tokens == nil {
		e.tokens = lexer.NewArena()
	}
	if e.sink == nil {
		e.sink = diagnostic.Discard
	}
	if e.observer == nil {
		e.observer = nopObserver{}
	}
	return e
}

// IsExpanding reports whether the named macro is currently being expanded.
func (e *Expander) IsExpanding(name string) bool {
	return e.active.Contains(name)
}

// Location returns the file and line of the most recent source token seen at
// the outermost level, which are the values of __FILE__ and __LINE__. Only the
// first pass of an outermost Expand moves the location: later passes see
// replacement list tokens that carry the location of their definition.
func (e *Expander) Location() (file string, line int) {
	return e.currentFile, e.currentLine
}

// Expand replaces macros in input until the result no longer changes. At least
// two passes are made. Fatal problems are returned as a diagnostic.Diagnostic
// error after being reported to the sink.
func (e *Expander) Expand(input []lexer.Token) ([]lexer.Token, error) {
	current, err := e.ExpandOnce(input)
	if err != nil {
		return nil, err
	}
	if e.depth == 0 && !e.rescanning {
		e.rescanning = true
		defer func() { e.rescanning = false }()
	}
	warned := false
	for iterations := 0; ; {
		next, err := e.ExpandOnce(current)
		if err != nil {
			return nil, err
		}
		if lexer.EquivalentSlices(current, next) {
			return next, nil
		}

		iterations++
		origin := lexer.TokenEOF
		if len(input) > 0 {
			origin = input[0]
		}
		if iterations > MaxExpansionIterations {
			return nil, e.fail(diagnostic.Kind_MacroExpansionDivergence, origin,
				"macro expansion did not reach a fixed point after %d iterations", iterations+1)
		}
		if iterations > WarnExpansionIterations && !warned {
			e.warn(diagnostic.Kind_ExcessiveIterations, origin,
				"macro expansion needed more than %d iterations", WarnExpansionIterations+1)
			warned = true
		}
		current = next
	}
}

// ExpandOnce makes a single left-to-right pass over input, expanding every
// macro invocation found. Replacement lists are expanded fully (with Expand)
// before being inserted.
func (e *Expander) ExpandOnce(input []lexer.Token) ([]lexer.Token, error) {
	output := make([]lexer.Token, 0, len(input))
	for i := 0; i < len(input); i++ {
		token := input[i]
		if e.depth == 0 && !e.rescanning {
			e.trackLocation(token)
		}
		if token.Type != lexer.TokenType_Identifier || token.HasFlag(lexer.TokenFlag_NoFurtherExpansion) {
			output = append(output, token)
			continue
		}
		def, found := e.macros.Find(token.Content)
		if !found {
			output = append(output, token)
			continue
		}

		var err error
		if !def.IsFunctionLike {
			if output, err = e.expandObjectMacro(def, token, output); err != nil {
				return nil, err
			}
			continue
		}

		// a function-like macro name not followed by '(' is an ordinary identifier
		open := skipWhitespace(input, i+1)
		if open == len(input) || input[open].Type != lexer.TokenType_ParenthesisLeft {
			output = append(output, token)
			continue
		}
		args, closeIndex, ok := extractArguments(input, open)
		if !ok {
			e.warn(diagnostic.Kind_UnterminatedInvocation, token,
				"unterminated argument list invoking macro %s", token.Content)
			output = append(output, token)
			continue
		}
		if output, err = e.expandFunctionMacro(def, token, normalizeArguments(def, args), output); err != nil {
			return nil, err
		}
		i = closeIndex
	}
	return output, nil
}

func (e *Expander) trackLocation(token lexer.Token) {
	if token.Location.Line <= 0 {
		return
	}
	e.currentFile = token.File
	e.currentLine = token.Location.Line
}

func (e *Expander) expandObjectMacro(def *Definition, invocation lexer.Token, output []lexer.Token) ([]lexer.Token, error) {
	name := def.Name.Content
	if e.active.Contains(name) {
		return append(output, e.paint(invocation)), nil
	}
	switch name {
	case BuiltinFile:
		file := e.currentFile
		if file == "" {
			file = invocation.File
		}
		literal := `"` + stringLiteralEscaper.Replace(file) + `"`
		return append(output, e.tokens.CreateCustomToken(invocation, lexer.TokenType_LiteralString, literal, 0)), nil
	case BuiltinLine:
		line := e.currentLine
		if line == 0 {
			line = invocation.Location.Line
		}
		return append(output, e.tokens.CreateCustomToken(invocation, lexer.TokenType_LiteralInteger, strconv.Itoa(line), 0)), nil
	}

	guard := e.acquire(def, invocation)
	defer guard.release()

	body := def.Body
	if containsPaste(body) {
		var err error
		if body, err = e.concatenate(def, body); err != nil {
			return nil, err
		}
	}
	expanded, err := e.Expand(body)
	if err != nil {
		return nil, err
	}
	return append(output, expanded...), nil
}

func (e *Expander) expandFunctionMacro(def *Definition, invocation lexer.Token, args Arguments, output []lexer.Token) ([]lexer.Token, error) {
	if e.active.Contains(def.Name.Content) {
		// the invocation is kept, with the name marked to never expand again
		output = append(output, e.paint(invocation),
			e.tokens.CreateCustomToken(invocation, lexer.TokenType_ParenthesisLeft, "(", 0))
		output = append(output, e.joinArguments(args, invocation)...)
		return append(output, e.tokens.CreateCustomToken(invocation, lexer.TokenType_ParenthesisRight, ")", 0)), nil
	}

	if !def.HasVariadicTail && len(args) > def.ParameterCount {
		e.warn(diagnostic.Kind_ExcessArguments, invocation,
			"macro %s passed %d arguments, but takes just %d", def.Name.Content, len(args), def.ParameterCount)
	}

	expandedArgs, err := e.expandArguments(args)
	if err != nil {
		return nil, err
	}
	e.frames.Push(&argumentFrame{raw: args, expanded: expandedArgs})
	defer e.frames.Pop()

	guard := e.acquire(def, invocation)
	defer guard.release()

	body, err := e.substitute(def, invocation)
	if err != nil {
		return nil, err
	}
	expanded, err := e.Expand(body)
	if err != nil {
		return nil, err
	}
	return append(output, expanded...), nil
}

// expandArguments macro-expands each argument on its own, before the macro
// they are passed to is marked as being expanded.
func (e *Expander) expandArguments(args Arguments) (Arguments, error) {
	e.depth++
	defer func() { e.depth-- }()

	expanded := make(Arguments, len(args))
	for i, arg := range args {
		var err error
		if expanded[i], err = e.Expand(arg); err != nil {
			return nil, err
		}
	}
	return expanded, nil
}

// paint returns a copy of the macro name excluded from further expansion.
func (e *Expander) paint(name lexer.Token) lexer.Token {
	return e.tokens.CreateCustomToken(name, name.Type, name.Content, name.Flags|lexer.TokenFlag_NoFurtherExpansion)
}

func containsPaste(body []lexer.Token) bool {
	for _, token := range body {
		if token.Type == lexer.TokenType_HashHash {
			return true
		}
	}
	return false
}

// expansionGuard marks a macro as being expanded until released.
type expansionGuard struct {
	expander   *Expander
	name       string
	invocation lexer.Token
}

func (e *Expander) acquire(def *Definition, invocation lexer.Token) expansionGuard {
	e.active.Add(def.Name.Content)
	e.depth++
	e.observer.BeginExpansion(invocation)
	return expansionGuard{expander: e, name: def.Name.Content, invocation: invocation}
}

func (g expansionGuard) release() {
	g.expander.observer.EndExpansion(g.invocation)
	g.expander.depth--
	g.expander.active.Remove(g.name)
}

func (e *Expander) warn(kind diagnostic.Kind, token lexer.Token, format string, args ...any) {
	e.sink.Report(diagnostic.New(diagnostic.Severity_Warning, kind, token, format, args...))
}

// fail reports an error and returns it for propagation.
func (e *Expander) fail(kind diagnostic.Kind, token lexer.Token, format string, args ...any) error {
	d := diagnostic.New(diagnostic.Severity_Error, kind, token, format, args...)
	e.sink.Report(d)
	return d
}
