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

// Package lexer provides a lexical analyzer for the C/C++ source code. It breaks the input into a sequence of
// preprocessing tokens, which can then be processed by the preprocessor and the macro expander.
//
// Lexer classifies tokens into several types (for e.g., easier filtering comments or whitespace) and tracks their
// location in the source code (for accurate error reporting). Whitespace and comments are kept as tokens, so
// concatenating the contents of all tokens reproduces the input exactly.
package lexer

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// Lexer breaks the input C/C++ source code into a sequence of tokens.
type Lexer struct {
	scanner  *bufio.Scanner
	fileName string
	cursor   Cursor
}

// NewLexer creates a lexer for in-memory source code. fileName is recorded in
// every token and used in error messages.
func NewLexer(fileName string, sourceCode []byte) *Lexer {
	return NewReaderLexer(fileName, bytes.NewReader(sourceCode))
}

// NewReaderLexer creates a lexer consuming r lazily.
func NewReaderLexer(fileName string, r io.Reader) *Lexer {
	return &Lexer{scanner: newScanner(r), fileName: fileName, cursor: CursorInit}
}

// Return the next token extracted from the input. If no more tokens are left,
// returns TokenEOF.
func (lx *Lexer) NextToken() (Token, error) {
	if !lx.scanner.Scan() {
		if err := lx.scanner.Err(); err != nil {
			return TokenEOF, fmt.Errorf("%s:%v: %w", lx.fileName, lx.cursor, err)
		}
		return TokenEOF, nil
	}

	content := lx.scanner.Bytes()
	token := Token{
		Type:     classifyToken(content),
		Location: lx.cursor,
		File:     lx.fileName,
		Content:  string(content),
	}
	lx.cursor = lx.cursor.AdvancedBy(token.Content)
	return token, nil
}

// Return all tokens extracted from the input data.
func (lx *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		token, err := lx.NextToken()
		if err != nil {
			return tokens, err
		}
		if token.Type == TokenType_EOF {
			return tokens, nil
		}
		tokens = append(tokens, token)
	}
}

// Tokenize is a shorthand for NewLexer(fileName, sourceCode).Tokenize().
func Tokenize(fileName string, sourceCode []byte) ([]Token, error) {
	return NewLexer(fileName, sourceCode).Tokenize()
}
