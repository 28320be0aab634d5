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

package lexer

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

var (
	ErrCharLiteralUnterminated      = errors.New("unterminated character literal")
	ErrMultiLineCommentUnterminated = errors.New("unterminated multi-line comment")
	ErrStringLiteralUnterminated    = errors.New("unterminated string literal")
)

// Returned by prequalifyToken when more data is needed to decide.
const tokenType_Incomplete TokenType = -1

// Upper bound for a single token, large enough for generated sources with huge
// comments or string tables.
const maxTokenSize = 16 * 1024 * 1024

type chunk struct {
	data     []byte // chunk of the data to be tokenized, may be too short to form a complete token
	complete bool   // whether there is no more data to be read after this chunk
}

// Operators and punctuation longer than one byte, longest first.
var multiBytePunctuators = [][]byte{
	[]byte("<<="), []byte(">>="), []byte("..."), []byte("->*"),
	[]byte("->"), []byte("++"), []byte("--"), []byte("<<"), []byte(">>"),
	[]byte("<="), []byte(">="), []byte("=="), []byte("!="), []byte("&&"),
	[]byte("||"), []byte("*="), []byte("/="), []byte("%="), []byte("+="),
	[]byte("-="), []byte("&="), []byte("^="), []byte("|="), []byte("::"),
	[]byte(".*"),
}

func isHorizontalSpace(char byte) bool {
	switch char {
	case '\t', '\v', '\f', '\r', ' ':
		return true
	default:
		return false
	}
}

func isDigit(char byte) bool { return '0' <= char && char <= '9' }

func isIdentifierStart(char byte) bool {
	return char == '_' || ('a' <= char && char <= 'z') || ('A' <= char && char <= 'Z')
}

func isIdentifierChar(char byte) bool { return isIdentifierStart(char) || isDigit(char) }

func prequalifyToken(ch chunk) TokenType {
	if len(ch.data) == 0 {
		return tokenType_Incomplete
	}

	switch first := ch.data[0]; {
	case first == '\n':
		return TokenType_Newline
	case isHorizontalSpace(first):
		return TokenType_Whitespace
	case first == '\\':
		// a backslash is a line continuation only if nothing but whitespace separates it from the newline
		for i := 1; i < len(ch.data); i++ {
			switch {
			case ch.data[i] == '\n':
				return TokenType_ContinueLine
			case !isHorizontalSpace(ch.data[i]):
				return TokenType_Punctuator
			}
		}
		if ch.complete {
			return TokenType_Punctuator
		}
		return tokenType_Incomplete
	case first == '/':
		switch {
		case bytes.HasPrefix(ch.data, []byte("//")):
			return TokenType_CommentSingleLine
		case bytes.HasPrefix(ch.data, []byte("/*")):
			return TokenType_CommentMultiLine
		case len(ch.data) >= 2 || ch.complete:
			return TokenType_Punctuator
		default:
			return tokenType_Incomplete
		}
	case first == '.':
		switch {
		case len(ch.data) >= 2 && isDigit(ch.data[1]):
			return TokenType_LiteralInteger
		case len(ch.data) >= 2 || ch.complete:
			return TokenType_Punctuator
		default:
			return tokenType_Incomplete
		}
	case first == '"':
		return TokenType_LiteralString
	case first == '\'':
		return TokenType_LiteralChar
	case first == '#':
		return TokenType_Hash
	case first == ',':
		return TokenType_Comma
	case first == '(':
		return TokenType_ParenthesisLeft
	case first == ')':
		return TokenType_ParenthesisRight
	case isIdentifierStart(first):
		return TokenType_Identifier
	case isDigit(first):
		return TokenType_LiteralInteger
	default:
		return TokenType_Punctuator
	}
}

// Returns the longest prefix of ch.data whose bytes satisfy accept, or nil when
// the prefix may continue in data not read yet.
func extractWhile(ch chunk, accept func(prev, char byte) bool) []byte {
	for i := 1; i < len(ch.data); i++ {
		if !accept(ch.data[i-1], ch.data[i]) {
			return ch.data[:i]
		}
	}
	if ch.complete {
		return ch.data
	}
	return nil
}

func extractIdentifierToken(ch chunk) []byte {
	return extractWhile(ch, func(_, char byte) bool { return isIdentifierChar(char) })
}

// Preprocessing numbers are more permissive than C number literals: digits,
// letters, underscores, dots and signs following an exponent marker.
func extractNumberToken(ch chunk) []byte {
	return extractWhile(ch, func(prev, char byte) bool {
		switch {
		case isIdentifierChar(char) || char == '.':
			return true
		case char == '+' || char == '-':
			return prev == 'e' || prev == 'E' || prev == 'p' || prev == 'P'
		default:
			return false
		}
	})
}

func extractWhitespaceToken(ch chunk) []byte {
	return extractWhile(ch, func(_, char byte) bool { return isHorizontalSpace(char) })
}

func extractContinueLineToken(ch chunk) []byte {
	// prequalifyToken has already verified that a newline follows
	newline := bytes.IndexByte(ch.data, '\n')
	return ch.data[:newline+1]
}

func extractSingleLineCommentToken(ch chunk) []byte {
	if newlineIndex := bytes.IndexByte(ch.data, '\n'); newlineIndex >= 0 {
		return ch.data[:newlineIndex]
	}

	if ch.complete {
		return ch.data
	}
	return nil
}

func extractMultiLineCommentToken(ch chunk) ([]byte, error) {
	if endIndex := bytes.Index(ch.data[2:], []byte("*/")); endIndex >= 0 {
		return ch.data[:2+endIndex+2], nil
	}

	if ch.complete {
		return nil, ErrMultiLineCommentUnterminated
	}
	return nil, nil
}

// Extracts a string or character literal delimited by quote. Literals must fit
// in one line; escaped quotes do not terminate the literal.
func extractQuotedToken(ch chunk, quote byte, errUnterminated error) ([]byte, error) {
	for i := 1; i < len(ch.data); i++ {
		switch ch.data[i] {
		case '\\':
			i++ // skip escaped character
		case '\n':
			return nil, errUnterminated
		case quote:
			return ch.data[:i+1], nil
		}
	}

	if ch.complete {
		return nil, errUnterminated
	}
	return nil, nil
}

func extractHashToken(ch chunk) []byte {
	switch {
	case len(ch.data) >= 2 && ch.data[1] == '#':
		return ch.data[:2]
	case len(ch.data) >= 2 || ch.complete:
		return ch.data[:1]
	default:
		return nil
	}
}

func extractPunctuatorToken(ch chunk) []byte {
	if len(ch.data) < 3 && !ch.complete {
		return nil
	}
	for _, punctuator := range multiBytePunctuators {
		if bytes.HasPrefix(ch.data, punctuator) {
			return ch.data[:len(punctuator)]
		}
	}
	_, size := utf8.DecodeRune(ch.data)
	return ch.data[:size]
}

func extractToken(ch chunk) ([]byte, error) {
	switch tokenType := prequalifyToken(ch); tokenType {
	case tokenType_Incomplete:
		return nil, nil
	case TokenType_Newline, TokenType_Comma, TokenType_ParenthesisLeft, TokenType_ParenthesisRight:
		return ch.data[:1], nil
	case TokenType_Whitespace:
		return extractWhitespaceToken(ch), nil
	case TokenType_ContinueLine:
		return extractContinueLineToken(ch), nil
	case TokenType_CommentSingleLine:
		return extractSingleLineCommentToken(ch), nil
	case TokenType_CommentMultiLine:
		return extractMultiLineCommentToken(ch)
	case TokenType_LiteralString:
		return extractQuotedToken(ch, '"', ErrStringLiteralUnterminated)
	case TokenType_LiteralChar:
		return extractQuotedToken(ch, '\'', ErrCharLiteralUnterminated)
	case TokenType_Identifier:
		return extractIdentifierToken(ch), nil
	case TokenType_LiteralInteger:
		return extractNumberToken(ch), nil
	case TokenType_Hash:
		return extractHashToken(ch), nil
	case TokenType_Punctuator:
		return extractPunctuatorToken(ch), nil
	default:
		panic(fmt.Errorf("unhandled token type %v", tokenType))
	}
}

// Determines the final type of a complete token returned by the scanner.
func classifyToken(content []byte) TokenType {
	tokenType := prequalifyToken(chunk{data: content, complete: true})
	switch {
	case tokenType == TokenType_Hash && len(content) == 2:
		return TokenType_HashHash
	case tokenType == TokenType_Punctuator && string(content) == "...":
		return TokenType_Ellipsis
	default:
		return tokenType
	}
}

func tokenizer(data []byte, atEOF bool) (advance int, token []byte, err error) {
	token, err = extractToken(chunk{data: data, complete: atEOF})
	advance = len(token)
	return
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxTokenSize)
	scanner.Split(tokenizer)
	return scanner
}
