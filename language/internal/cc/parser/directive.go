// Copyright 2025 EngFlow Inc. All rights reserved.
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

package parser

import (
	"fmt"
	"strings"

	"github.com/EngFlow/ccexpand/internal/collections"
	"github.com/EngFlow/ccexpand/language/internal/cc/lexer"
	"github.com/EngFlow/ccexpand/language/internal/cc/macro"
)

type (
	// Directive represents a single preprocessor directive line.
	Directive interface {
		fmt.Stringer
	}
	// EmptyDirective is the null directive, a line containing only '#'.
	EmptyDirective struct{}
	// IncludeDirective represents a `#include` or `#include_next` preprocessor directive.
	// If IsSystem is true, angle brackets were used (<...>), otherwise quotes ("...").
	IncludeDirective struct {
		Path     string        // Path of the included file
		IsSystem bool          // True if system include (angle brackets), false if user include (quotes)
		IsNext   bool          // True for #include_next
		Computed []lexer.Token // Operand tokens when the path is given by macros; Path is empty then
	}
	// DefineDirective represents a `#define` preprocessor directive.
	DefineDirective struct {
		Macro *macro.Definition
	}
	// UndefineDirective represents a `#undef` preprocessor directive i.e., the removal of a macro definition.
	UndefineDirective struct {
		Name lexer.Token // Name of the macro to undefine
	}
	// ConditionalDirective represents one line of a conditional compilation block: #if, #ifdef, #ifndef, #elif,
	// #elifdef, #elifndef, #else or #endif.
	ConditionalDirective struct {
		Kind      BranchKind
		Keyword   lexer.Token   // The directive name, e.g. "ifdef"
		Name      string        // Macro tested by the #ifdef family
		Negated   bool          // True for #ifndef and #elifndef
		Condition []lexer.Token // Unexpanded condition of #if and #elif
	}
	// MessageDirective represents `#error` and `#warning`.
	MessageDirective struct {
		IsError bool
		Message string
	}
	// PragmaDirective represents `#pragma`, which is passed through to the output.
	PragmaDirective struct {
		Tokens []lexer.Token
	}
	// IgnoredDirective is a known directive without effect on macro expansion, such as `#line` or `#ident`.
	IgnoredDirective struct {
		Name string
	}
	// UnknownDirective is a directive name the preprocessor does not understand.
	UnknownDirective struct {
		Name lexer.Token
	}
	// BranchKind identifies which kind of branch in a conditional preprocessor block.
	BranchKind int
)

const (
	IfBranch    BranchKind = iota // #if, #ifdef, #ifndef
	ElifBranch                    // #elif, #elifdef, #elifndef
	ElseBranch                    // #else
	EndifBranch                   // #endif
)

func (EmptyDirective) String() string { return "#" }
func (d IncludeDirective) String() string {
	keyword := "include"
	if d.IsNext {
		keyword = "include_next"
	}
	switch {
	case d.Computed != nil:
		return fmt.Sprintf("#%s %s", keyword, lexer.Concat(d.Computed))
	case d.IsSystem:
		return fmt.Sprintf("#%s <%s>", keyword, d.Path)
	default:
		return fmt.Sprintf("#%s \"%s\"", keyword, d.Path)
	}
}
func (d DefineDirective) String() string   { return "#define " + d.Macro.String() }
func (d UndefineDirective) String() string { return fmt.Sprintf("#undef %s", d.Name.Content) }
func (d ConditionalDirective) String() string {
	switch {
	case d.Condition != nil:
		return fmt.Sprintf("#%s %s", d.Keyword.Content, strings.TrimSpace(lexer.Concat(d.Condition)))
	case d.Name != "":
		return fmt.Sprintf("#%s %s", d.Keyword.Content, d.Name)
	default:
		return "#" + d.Keyword.Content
	}
}
func (d MessageDirective) String() string {
	if d.IsError {
		return "#error " + d.Message
	}
	return "#warning " + d.Message
}
func (d PragmaDirective) String() string  { return "#pragma " + lexer.Concat(d.Tokens) }
func (d IgnoredDirective) String() string { return "#" + d.Name }
func (d UnknownDirective) String() string { return "#" + d.Name.Content }

// ParseDirective parses the tokens of a directive line following the leading '#', without the terminating newline.
// Line continuations are treated as whitespace.
func ParseDirective(line []lexer.Token) (Directive, error) {
	line = collections.TrimSlice(line, lexer.Token.IsWhitespace)
	if len(line) == 0 {
		return EmptyDirective{}, nil
	}
	keyword, operands := line[0], line[1:]
	if keyword.Type != lexer.TokenType_Identifier {
		return UnknownDirective{Name: keyword}, nil
	}

	switch keyword.Content {
	case "define":
		def, err := ParseDefine(operands)
		if err != nil {
			return nil, err
		}
		return DefineDirective{Macro: def}, nil
	case "undef":
		name, err := parseSingleName(keyword, operands)
		if err != nil {
			return nil, err
		}
		return UndefineDirective{Name: name}, nil
	case "include", "include_next":
		return parseIncludeDirective(keyword, operands)
	case "if", "elif":
		operands = collections.TrimSlice(operands, lexer.Token.IsWhitespace)
		if len(operands) == 0 {
			return nil, fmt.Errorf("%s: #%s with no expression: %w", keyword.Position(), keyword.Content, ErrUnexpectedEnd)
		}
		return ConditionalDirective{Kind: branchKind(keyword.Content), Keyword: keyword, Condition: operands}, nil
	case "ifdef", "ifndef", "elifdef", "elifndef":
		name, err := parseSingleName(keyword, operands)
		if err != nil {
			return nil, err
		}
		return ConditionalDirective{
			Kind:    branchKind(keyword.Content),
			Keyword: keyword,
			Name:    name.Content,
			Negated: strings.HasSuffix(keyword.Content, "ndef"),
		}, nil
	case "else":
		return ConditionalDirective{Kind: ElseBranch, Keyword: keyword}, nil
	case "endif":
		return ConditionalDirective{Kind: EndifBranch, Keyword: keyword}, nil
	case "error", "warning":
		message := strings.TrimSpace(lexer.Concat(collections.TrimSlice(operands, lexer.Token.IsWhitespace)))
		return MessageDirective{IsError: keyword.Content == "error", Message: message}, nil
	case "pragma":
		return PragmaDirective{Tokens: collections.TrimSlice(operands, lexer.Token.IsWhitespace)}, nil
	case "line", "ident", "sccs", "assert", "unassert":
		return IgnoredDirective{Name: keyword.Content}, nil
	default:
		return UnknownDirective{Name: keyword}, nil
	}
}

func branchKind(keyword string) BranchKind {
	if strings.HasPrefix(keyword, "elif") {
		return ElifBranch
	}
	return IfBranch
}

// parseSingleName reads the macro name operand of #undef and the #ifdef family. Tokens after the name are ignored.
func parseSingleName(keyword lexer.Token, operands []lexer.Token) (lexer.Token, error) {
	p := newParser(operands)
	name := p.next()
	switch {
	case name.Type == lexer.TokenType_EOF:
		return name, fmt.Errorf("%s: no macro name given in #%s directive: %w", keyword.Position(), keyword.Content, ErrMacroNameMissing)
	case name.Type != lexer.TokenType_Identifier:
		return name, fmt.Errorf("%s: %q: %w", name.Position(), name.Content, ErrMacroNameInvalid)
	default:
		return name, nil
	}
}

// parseIncludeDirective parses an #include or #include_next directive, extracting its path and kind (system/user).
func parseIncludeDirective(keyword lexer.Token, operands []lexer.Token) (Directive, error) {
	operands = collections.TrimSlice(operands, lexer.Token.IsWhitespace)
	if len(operands) == 0 {
		return nil, fmt.Errorf("%s: #%s expects \"FILENAME\" or <FILENAME>: %w", keyword.Position(), keyword.Content, ErrUnexpectedEnd)
	}
	isNext := keyword.Content == "include_next"
	if path, isSystem, ok := ParseIncludePath(operands); ok {
		return IncludeDirective{Path: path, IsSystem: isSystem, IsNext: isNext}, nil
	}
	if operands[0].Type == lexer.TokenType_Identifier {
		return IncludeDirective{IsNext: isNext, Computed: operands}, nil
	}
	return nil, fmt.Errorf("%s: malformed #%s path %q: %w", operands[0].Position(), keyword.Content, lexer.Concat(operands), ErrUnexpectedToken)
}

// ParseIncludePath extracts the file name from the operand of #include: either a string literal or everything between
// '<' and '>'.
func ParseIncludePath(operands []lexer.Token) (path string, isSystem bool, ok bool) {
	operands = collections.TrimSlice(operands, lexer.Token.IsWhitespace)
	if len(operands) == 0 {
		return "", false, false
	}
	first := operands[0]
	switch {
	// Handle #include "local_include.h"
	case first.Type == lexer.TokenType_LiteralString:
		unquoted := strings.TrimSuffix(strings.TrimPrefix(first.Content, `"`), `"`)
		return unquoted, false, unquoted != ""
	// Handle #include <system_include.h>
	case first.Content == "<":
		for i := 1; i < len(operands); i++ {
			if operands[i].Content == ">" {
				path := lexer.Concat(operands[1:i])
				return path, true, path != ""
			}
		}
		return "", false, false
	default:
		return "", false, false
	}
}
