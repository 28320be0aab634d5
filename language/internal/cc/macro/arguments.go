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
	"github.com/EngFlow/ccexpand/internal/collections"
	"github.com/EngFlow/ccexpand/language/internal/cc/lexer"
)

// Arguments of a single invocation, one token list per comma-separated
// argument, trimmed of surrounding whitespace. Arguments matching the
// variadic parameter are kept apart; see Trailing.
type Arguments [][]lexer.Token

// Trailing returns the arguments starting at the variadic parameter index.
func (a Arguments) Trailing(index int) Arguments {
	if index >= len(a) {
		return nil
	}
	return a[index:]
}

// Argument at index, or nil when the invocation supplied fewer arguments.
func (a Arguments) At(index int) []lexer.Token {
	if index >= len(a) {
		return nil
	}
	return a[index]
}

// argumentFrame holds the arguments of the function-like macro being
// substituted, both as written and fully macro-expanded.
type argumentFrame struct {
	raw      Arguments
	expanded Arguments
}

func skipWhitespace(tokens []lexer.Token, index int) int {
	for index < len(tokens) && tokens[index].IsWhitespace() {
		index++
	}
	return index
}

// extractArguments splits the argument list of an invocation. open is the
// index of the opening parenthesis. Commas nested in parentheses do not
// separate arguments. Returns the index of the closing parenthesis, ok is false
// when the input ends first.
func extractArguments(tokens []lexer.Token, open int) (args Arguments, closeIndex int, ok bool) {
	depth := 0
	var current []lexer.Token
	for i := open + 1; i < len(tokens); i++ {
		token := tokens[i]
		switch token.Type {
		case lexer.TokenType_ParenthesisLeft:
			depth++
		case lexer.TokenType_ParenthesisRight:
			if depth == 0 {
				args = append(args, collections.TrimSlice(current, lexer.Token.IsWhitespace))
				return args, i, true
			}
			depth--
		case lexer.TokenType_Comma:
			if depth == 0 {
				args = append(args, collections.TrimSlice(current, lexer.Token.IsWhitespace))
				current = nil
				continue
			}
		}
		current = append(current, token)
	}
	return nil, 0, false
}

// normalizeArguments maps the empty argument list of f() to zero arguments for
// macros without parameters; any other macro sees a single empty argument.
func normalizeArguments(def *Definition, args Arguments) Arguments {
	if def.ParameterCount == 0 && len(args) == 1 && len(args[0]) == 0 {
		return nil
	}
	return args
}
