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

package preprocessor

import (
	"iter"

	"github.com/EngFlow/ccexpand/language/internal/cc/lexer"
)

// logicalLine is a source line with its line continuations still in place.
type logicalLine struct {
	tokens []lexer.Token
	// Terminating newline; TokenType_EOF on the last line of a file without
	// one.
	newline lexer.Token
}

// logicalLines splits tokens at newline tokens. Line continuations and
// multi-line comments do not end a line.
func logicalLines(tokens []lexer.Token) iter.Seq[logicalLine] {
	return func(yield func(logicalLine) bool) {
		start := 0
		for i, token := range tokens {
			if token.Type != lexer.TokenType_Newline {
				continue
			}
			if !yield(logicalLine{tokens: tokens[start:i], newline: token}) {
				return
			}
			start = i + 1
		}
		if start < len(tokens) {
			yield(logicalLine{tokens: tokens[start:], newline: lexer.TokenEOF})
		}
	}
}

// directiveStart returns the index of the '#' starting a directive line.
func directiveStart(line []lexer.Token) (int, bool) {
	for i, token := range line {
		if token.IsWhitespace() {
			continue
		}
		return i, token.Type == lexer.TokenType_Hash
	}
	return 0, false
}

func appendNewline(tokens []lexer.Token, line logicalLine) []lexer.Token {
	if line.newline.Type != lexer.TokenType_Newline {
		return tokens
	}
	return append(tokens, line.newline)
}
