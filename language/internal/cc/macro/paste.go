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
	"github.com/EngFlow/ccexpand/language/internal/cc/diagnostic"
	"github.com/EngFlow/ccexpand/language/internal/cc/lexer"
)

// pasteOperand is one side of a '##' after parameters were resolved to their
// raw arguments. token is nil when the side is empty.
type pasteOperand struct {
	token *lexer.Token
	rest  []lexer.Token // tokens of the argument not taking part in the paste
}

// concatenate performs all '##' operations of a macro body. Parameters next to
// '##' are replaced by their raw, not macro-expanded, arguments; only the
// adjacent token of such argument is merged. Other parameters are left for
// insertExpandedParameters.
func (e *Expander) concatenate(def *Definition, body []lexer.Token) ([]lexer.Token, error) {
	output := make([]lexer.Token, 0, len(body))
	// Length of output right after a paste of two empty operands. Such a paste
	// yields nothing but can still be the left side of the next '##'.
	placemarker := -1
	for i := 0; i < len(body); i++ {
		token := body[i]
		if token.Type != lexer.TokenType_HashHash {
			output = append(output, token)
			continue
		}

		output = collections.TrimSliceRight(output, lexer.Token.IsWhitespace)
		var left lexer.Token
		leftEmpty := false
		switch {
		case placemarker >= 0 && placemarker == len(output):
			leftEmpty = true
		case len(output) == 0:
			return nil, e.fail(diagnostic.Kind_PasteAtBoundary, token,
				"'##' cannot appear at the beginning of %s", def.Name.Content)
		default:
			left = output[len(output)-1]
			output = output[:len(output)-1]
		}

		// a run of '##' acts as a single one
		next := i + 1
		for next < len(body) && (body[next].IsWhitespace() || body[next].Type == lexer.TokenType_HashHash) {
			next++
		}
		if next == len(body) {
			return nil, e.fail(diagnostic.Kind_PasteAtBoundary, token,
				"'##' cannot appear at the end of %s", def.Name.Content)
		}
		right := body[next]
		i = next

		if !leftEmpty && e.elidesComma(def, left, right) {
			placemarker = -1
			continue
		}

		var leftOperand pasteOperand
		if !leftEmpty {
			leftOperand = e.resolveLeftOperand(def, left)
		}
		rightOperand := e.resolveRightOperand(def, right)

		before := len(output)
		output = append(output, leftOperand.rest...)
		output = append(output, e.merge(leftOperand.token, rightOperand.token)...)
		output = append(output, rightOperand.rest...)
		placemarker = -1
		if len(output) == before {
			placemarker = len(output)
		}
	}
	return output, nil
}

// elidesComma implements the GNU extension: in ", ## __VA_ARGS__" the comma is
// removed when no variadic arguments were given.
func (e *Expander) elidesComma(def *Definition, left, right lexer.Token) bool {
	if left.Type != lexer.TokenType_Comma {
		return false
	}
	index, ok := right.Type.ParameterIndex()
	if !ok || !def.isVariadicParameter(index) {
		return false
	}
	trailing := e.frames.Peek().raw.Trailing(index)
	return len(trailing) == 0 || (len(trailing) == 1 && len(trailing[0]) == 0)
}

// resolveLeftOperand returns the last token of the argument as the operand,
// the preceding tokens are emitted before the paste result.
func (e *Expander) resolveLeftOperand(def *Definition, token lexer.Token) pasteOperand {
	index, ok := token.Type.ParameterIndex()
	if !ok {
		return pasteOperand{token: &token}
	}
	tokens := e.rawParameter(def, index, token)
	if len(tokens) == 0 {
		return pasteOperand{}
	}
	last := tokens[len(tokens)-1]
	return pasteOperand{token: &last, rest: tokens[:len(tokens)-1]}
}

// resolveRightOperand returns the first token of the argument as the operand,
// the following tokens are emitted after the paste result.
func (e *Expander) resolveRightOperand(def *Definition, token lexer.Token) pasteOperand {
	index, ok := token.Type.ParameterIndex()
	if !ok {
		return pasteOperand{token: &token}
	}
	tokens := e.rawParameter(def, index, token)
	if len(tokens) == 0 {
		return pasteOperand{}
	}
	first := tokens[0]
	if first.IsWhitespace() {
		return pasteOperand{rest: tokens}
	}
	return pasteOperand{token: &first, rest: tokens[1:]}
}

// rawParameter returns the unexpanded argument of a parameter. The variadic
// parameter yields the trailing arguments separated by commas.
func (e *Expander) rawParameter(def *Definition, index int, template lexer.Token) []lexer.Token {
	frame := e.frames.Peek()
	if !def.isVariadicParameter(index) {
		return frame.raw.At(index)
	}
	return e.joinArguments(frame.raw.Trailing(index), template)
}

// joinArguments concatenates arguments separated by commas created from
// template.
func (e *Expander) joinArguments(args Arguments, template lexer.Token) []lexer.Token {
	var joined []lexer.Token
	for i, arg := range args {
		if i > 0 {
			joined = append(joined, e.tokens.CreateCustomToken(template, lexer.TokenType_Comma, ",", 0))
		}
		joined = append(joined, arg...)
	}
	return joined
}

// merge pastes two operands. Identifiers and numbers are joined into a single
// token; the type follows the left operand. Any other pair is left adjacent
// unchanged.
func (e *Expander) merge(left, right *lexer.Token) []lexer.Token {
	switch {
	case left == nil && right == nil:
		return nil
	case left == nil:
		return []lexer.Token{*right}
	case right == nil:
		return []lexer.Token{*left}
	case isMergeable(*left) && isMergeable(*right):
		tokenType := lexer.TokenType_LiteralInteger
		if left.Type == lexer.TokenType_Identifier {
			tokenType = lexer.TokenType_Identifier
		}
		return []lexer.Token{e.tokens.CreateCustomToken(*left, tokenType, left.Content+right.Content, 0)}
	default:
		return []lexer.Token{*left, *right}
	}
}

func isMergeable(token lexer.Token) bool {
	return token.Type == lexer.TokenType_Identifier || token.Type == lexer.TokenType_LiteralInteger
}
