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

package parser

import (
	"errors"
	"fmt"
	"slices"

	"github.com/EngFlow/ccexpand/internal/collections"
	"github.com/EngFlow/ccexpand/language/internal/cc/lexer"
	"github.com/EngFlow/ccexpand/language/internal/cc/macro"
)

const variadicParameterName = "__VA_ARGS__"

var (
	ErrMacroNameMissing        = errors.New("macro name missing")
	ErrMacroNameInvalid        = errors.New("macro name must be an identifier")
	ErrParameterListMalformed  = errors.New("malformed macro parameter list")
	ErrParameterDuplicated     = errors.New("duplicate macro parameter")
	ErrDefinedCannotBeAMacro   = errors.New(`"defined" cannot be used as a macro name`)
	ErrParameterListUnfinished = errors.New("missing ')' in macro parameter list")
)

// ParseDefine parses the operands of a #define directive: the tokens following the `define` keyword up to the end of
// the line. A macro is function-like only if '(' immediately follows its name. Occurrences of the parameters in the
// replacement list are replaced with placeholder tokens; the variadic parameter is named __VA_ARGS__ unless the GNU
// form `name...` gives it a name.
func ParseDefine(tokens []lexer.Token) (*macro.Definition, error) {
	tokens = collections.TrimSlice(tokens, lexer.Token.IsWhitespace)
	if len(tokens) == 0 {
		return nil, ErrMacroNameMissing
	}
	name := tokens[0]
	if name.Type != lexer.TokenType_Identifier {
		return nil, fmt.Errorf("%s: %q: %w", name.Position(), name.Content, ErrMacroNameInvalid)
	}
	if name.Content == "defined" {
		return nil, fmt.Errorf("%s: %w", name.Position(), ErrDefinedCannotBeAMacro)
	}

	rest := tokens[1:]
	if len(rest) == 0 || rest[0].Type != lexer.TokenType_ParenthesisLeft {
		return macro.NewObjectMacro(name, collections.TrimSlice(rest, lexer.Token.IsWhitespace)), nil
	}

	parameters, variadic, bodyStart, err := parseParameterList(rest)
	if err != nil {
		return nil, err
	}
	body := replaceParameters(collections.TrimSlice(rest[bodyStart:], lexer.Token.IsWhitespace), parameters)
	return macro.NewFunctionMacro(name, len(parameters), variadic, body), nil
}

// ParseDefineString lexes and parses a definition written as in a #define directive, e.g. "MAX(a, b) ((a) > (b) ?
// (a) : (b))".
func ParseDefineString(fileName, definition string) (*macro.Definition, error) {
	tokens, err := lexer.Tokenize(fileName, []byte(definition))
	if err != nil {
		return nil, err
	}
	return ParseDefine(tokens)
}

// parseParameterList reads the parameter names following the '(' at tokens[0] and returns the index of the first
// token after the closing ')'.
func parseParameterList(tokens []lexer.Token) (parameters []string, variadic bool, end int, err error) {
	open := tokens[0]
	expectName := true
	for i := 1; i < len(tokens); i++ {
		token := tokens[i]
		switch {
		case token.IsWhitespace():
			continue
		case token.Type == lexer.TokenType_ParenthesisRight:
			if expectName && len(parameters) > 0 {
				return nil, false, 0, fmt.Errorf("%s: expected parameter name before ')': %w", token.Position(), ErrParameterListMalformed)
			}
			return parameters, variadic, i + 1, nil
		case variadic:
			return nil, false, 0, fmt.Errorf("%s: expected ')' after \"...\": %w", token.Position(), ErrParameterListMalformed)
		case token.Type == lexer.TokenType_Ellipsis:
			if expectName {
				parameters = append(parameters, variadicParameterName)
			}
			variadic = true
			expectName = false
		case token.Type == lexer.TokenType_Comma && !expectName:
			expectName = true
		case token.Type == lexer.TokenType_Identifier && expectName:
			if slices.Contains(parameters, token.Content) {
				return nil, false, 0, fmt.Errorf("%s: %q: %w", token.Position(), token.Content, ErrParameterDuplicated)
			}
			parameters = append(parameters, token.Content)
			expectName = false
		default:
			return nil, false, 0, fmt.Errorf("%s: %q: %w", token.Position(), token.Content, ErrParameterListMalformed)
		}
	}
	return nil, false, 0, fmt.Errorf("%s: %w", open.Position(), ErrParameterListUnfinished)
}

// replaceParameters substitutes parameter names in body with placeholders. The placeholder keeps the location and
// spelling of the name it replaces.
func replaceParameters(body []lexer.Token, parameters []string) []lexer.Token {
	replaced := make([]lexer.Token, len(body))
	for i, token := range body {
		replaced[i] = token
		if token.Type != lexer.TokenType_Identifier {
			continue
		}
		if index := slices.Index(parameters, token.Content); index >= 0 {
			replaced[i].Type = lexer.MacroParameterType(index)
		}
	}
	return replaced
}
