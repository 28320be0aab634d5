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
	"strings"

	"github.com/EngFlow/ccexpand/internal/collections"
	"github.com/EngFlow/ccexpand/language/internal/cc/diagnostic"
	"github.com/EngFlow/ccexpand/language/internal/cc/lexer"
)

var stringLiteralEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Spell returns the source text of tokens as it appears in a stringified
// argument: surrounding whitespace is dropped, every inner run of whitespace
// and comments becomes a single space, backslashes and double quotes are
// escaped.
func Spell(tokens []lexer.Token) string {
	var sb strings.Builder
	pendingSpace := false
	for _, token := range collections.TrimSlice(tokens, lexer.Token.IsWhitespace) {
		if token.IsWhitespace() {
			pendingSpace = true
			continue
		}
		if pendingSpace {
			sb.WriteByte(' ')
			pendingSpace = false
		}
		stringLiteralEscaper.WriteString(&sb, token.Content)
	}
	return sb.String()
}

// insertStringifiedParameters replaces every parameter preceded by an odd
// number of '#' with a string literal holding the raw argument. Whitespace
// between the '#' and the parameter is dropped with them. A run of an even
// number of '#' is kept as is.
func (e *Expander) insertStringifiedParameters(def *Definition, body []lexer.Token) ([]lexer.Token, error) {
	output := make([]lexer.Token, 0, len(body))
	hashCount := 0
	runStart := 0
	var lastHash lexer.Token
	for _, token := range body {
		switch {
		case token.Type == lexer.TokenType_Hash:
			if hashCount == 0 {
				runStart = len(output)
			}
			hashCount++
			lastHash = token
			output = append(output, token)
		case token.IsWhitespace():
			output = append(output, token)
		case hashCount%2 == 1:
			index, ok := token.Type.ParameterIndex()
			if !ok {
				return nil, e.fail(diagnostic.Kind_InvalidStringifyTarget, token,
					"'#' is not followed by a macro parameter in %s", def.Name.Content)
			}
			output = append(output[:runStart], e.stringifyParameter(def, index, token))
			hashCount = 0
		default:
			hashCount = 0
			output = append(output, token)
		}
	}
	if hashCount%2 == 1 {
		return nil, e.fail(diagnostic.Kind_InvalidStringifyTarget, lastHash,
			"'#' at the end of %s is not followed by a macro parameter", def.Name.Content)
	}
	return output, nil
}

// stringifyParameter creates the string literal for a parameter from the raw
// arguments of the current frame. The variadic parameter yields all trailing
// arguments joined with ", ".
func (e *Expander) stringifyParameter(def *Definition, index int, template lexer.Token) lexer.Token {
	frame := e.frames.Peek()
	var text string
	if def.isVariadicParameter(index) {
		parts := collections.MapSlice(frame.raw.Trailing(index), Spell)
		text = strings.TrimRight(strings.Join(parts, ", "), " ")
	} else {
		text = Spell(frame.raw.At(index))
	}
	return e.tokens.CreateCustomToken(template, lexer.TokenType_LiteralString, `"`+text+`"`, 0)
}
