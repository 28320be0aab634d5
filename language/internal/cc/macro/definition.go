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

package macro

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/EngFlow/ccexpand/internal/collections"
	"github.com/EngFlow/ccexpand/language/internal/cc/diagnostic"
	"github.com/EngFlow/ccexpand/language/internal/cc/lexer"
)

// Names of the macros whose replacement is computed by the expander.
const (
	BuiltinFile = "__FILE__"
	BuiltinLine = "__LINE__"
)

// Definition is a stored macro. Parameters are not kept by name: every
// occurrence of a parameter in Body is replaced with a placeholder token of
// type lexer.MacroParameterType(index). For variadic macros the last parameter
// (index ParameterCount-1) collects all trailing arguments.
type Definition struct {
	Name            lexer.Token
	IsFunctionLike  bool
	ParameterCount  int
	HasVariadicTail bool
	Body            []lexer.Token
}

// NewObjectMacro creates the definition of an object-like macro.
func NewObjectMacro(name lexer.Token, body []lexer.Token) *Definition {
	return &Definition{Name: name, Body: body}
}

// NewFunctionMacro creates the definition of a function-like macro. When
// variadic is set, the last of parameterCount parameters is the variadic one.
func NewFunctionMacro(name lexer.Token, parameterCount int, variadic bool, body []lexer.Token) *Definition {
	return &Definition{
		Name:            name,
		IsFunctionLike:  true,
		ParameterCount:  parameterCount,
		HasVariadicTail: variadic,
		Body:            body,
	}
}

// VariadicIndex returns the index of the parameter collecting trailing
// arguments, or -1 if the macro is not variadic.
func (d *Definition) VariadicIndex() int {
	if !d.HasVariadicTail || d.ParameterCount == 0 {
		return -1
	}
	return d.ParameterCount - 1
}

func (d *Definition) isVariadicParameter(index int) bool {
	return d.HasVariadicTail && index == d.ParameterCount-1
}

// Equivalent reports whether both definitions would expand identically.
// Parameter names and the amount of whitespace in the bodies are irrelevant,
// but the presence of whitespace between tokens is not.
func (d *Definition) Equivalent(other *Definition) bool {
	return d.Name.Content == other.Name.Content &&
		d.IsFunctionLike == other.IsFunctionLike &&
		d.ParameterCount == other.ParameterCount &&
		d.HasVariadicTail == other.HasVariadicTail &&
		slices.Equal(normalizedBody(d.Body), normalizedBody(other.Body))
}

func normalizedBody(body []lexer.Token) []string {
	var normalized []string
	pendingSpace := false
	for _, token := range collections.TrimSlice(body, lexer.Token.IsWhitespace) {
		if token.IsWhitespace() {
			pendingSpace = true
			continue
		}
		if pendingSpace {
			normalized = append(normalized, " ")
			pendingSpace = false
		}
		if token.Type.IsMacroParameter() {
			// parameters are compared by position, not by name
			normalized = append(normalized, token.Type.String())
			continue
		}
		normalized = append(normalized, token.Type.String()+token.Content)
	}
	return normalized
}

// String renders the definition the way it would be written in a #define,
// with placeholders shown as $0, $1, ...
func (d *Definition) String() string {
	var sb strings.Builder
	sb.WriteString(d.Name.Content)
	if d.IsFunctionLike {
		sb.WriteByte('(')
		for i := range d.ParameterCount {
			if i > 0 {
				sb.WriteString(", ")
			}
			if d.isVariadicParameter(i) {
				sb.WriteString("...")
			} else {
				sb.WriteByte('$')
				sb.WriteString(strconv.Itoa(i))
			}
		}
		sb.WriteByte(')')
	}
	if len(d.Body) > 0 {
		sb.WriteByte(' ')
	}
	for _, token := range d.Body {
		if index, ok := token.Type.ParameterIndex(); ok {
			if d.isVariadicParameter(index) {
				sb.WriteString("__VA_ARGS__")
			} else {
				sb.WriteByte('$')
				sb.WriteString(strconv.Itoa(index))
			}
			continue
		}
		sb.WriteString(token.Content)
	}
	return sb.String()
}

// Table provides the macro definitions visible to the expander.
type Table interface {
	Find(name string) (*Definition, bool)
}

// MacroTable is the mutable Table maintained by the preprocessor. It always
// knows the builtin macros __FILE__ and __LINE__.
type MacroTable struct {
	macros map[string]*Definition
}

var _ Table = (*MacroTable)(nil)

func NewMacroTable() *MacroTable {
	t := &MacroTable{macros: make(map[string]*Definition)}
	for _, name := range []string{BuiltinFile, BuiltinLine} {
		t.macros[name] = NewObjectMacro(lexer.Token{Type: lexer.TokenType_Identifier, Content: name}, nil)
	}
	return t
}

func (t *MacroTable) Find(name string) (*Definition, bool) {
	def, ok := t.macros[name]
	return def, ok
}

// Define adds or replaces a macro. Replacing a macro by a different
// definition is reported as a warning to sink; the new definition wins.
func (t *MacroTable) Define(def *Definition, sink diagnostic.Sink) {
	name := def.Name.Content
	if previous, exists := t.macros[name]; exists && !previous.Equivalent(def) {
		sink.Report(diagnostic.New(diagnostic.Severity_Warning, diagnostic.Kind_MacroRedefinitionConflict, def.Name,
			"%q redefined, previous definition at %s", name, previous.Name.Position()))
	}
	t.macros[name] = def
}

// Undefine removes a macro, returns false if it was not defined.
func (t *MacroTable) Undefine(name string) bool {
	_, exists := t.macros[name]
	delete(t.macros, name)
	return exists
}

// Names returns the names of all defined macros in lexical order.
func (t *MacroTable) Names() []string {
	names := make([]string, 0, len(t.macros))
	for name := range t.macros {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (t *MacroTable) Len() int {
	return len(t.macros)
}

// Clone returns an independent copy of the table. Definitions are shared,
// they are never modified.
func (t *MacroTable) Clone() *MacroTable {
	return &MacroTable{macros: maps.Clone(t.macros)}
}
