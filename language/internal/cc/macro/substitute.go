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
	"github.com/EngFlow/ccexpand/language/internal/cc/diagnostic"
	"github.com/EngFlow/ccexpand/language/internal/cc/lexer"
)

// substitute turns the body of a function-like macro into its replacement for
// the arguments of the current frame. The stages run in a fixed order:
// stringification, pasting, then insertion of the expanded arguments.
func (e *Expander) substitute(def *Definition, invocation lexer.Token) ([]lexer.Token, error) {
	stringified, err := e.insertStringifiedParameters(def, def.Body)
	if err != nil {
		return nil, err
	}
	concatenated, err := e.concatenate(def, stringified)
	if err != nil {
		return nil, err
	}
	return e.insertExpandedParameters(def, concatenated, invocation), nil
}

// insertExpandedParameters replaces the remaining placeholders with the
// macro-expanded arguments. The variadic parameter receives all trailing
// arguments separated by commas, possibly none.
func (e *Expander) insertExpandedParameters(def *Definition, body []lexer.Token, invocation lexer.Token) []lexer.Token {
	frame := e.frames.Peek()
	output := make([]lexer.Token, 0, len(body))
	for _, token := range body {
		index, ok := token.Type.ParameterIndex()
		switch {
		case !ok:
			output = append(output, token)
		case def.isVariadicParameter(index):
			output = append(output, e.joinArguments(frame.expanded.Trailing(index), token)...)
		case index >= len(frame.expanded):
			e.warn(diagnostic.Kind_MissingParameterAccess, invocation,
				"macro %s requires argument #%d which was not provided", def.Name.Content, index+1)
			output = append(output, e.tokens.CreateCustomToken(token, lexer.TokenType_Whitespace, "", 0))
		default:
			output = append(output, frame.expanded[index]...)
		}
	}
	return output
}
