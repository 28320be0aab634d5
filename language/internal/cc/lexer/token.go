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

import "fmt"

type TokenType int

const (
	// Special token type indicating the end of the input stream (or default
	// value when an error is returned).
	TokenType_EOF TokenType = iota

	// Single newline character '\n'. Newlines require special handling because
	// they mark the end of a preprocessor directive.
	TokenType_Newline

	// One or more whitespace characters, other than newlines.
	TokenType_Whitespace

	// Line continuation sequence, a backslash '\' followed by a newline
	// character '\n' (with optional whitespace characters between).
	TokenType_ContinueLine

	// Single-line comment, starting with // and ending at the end of the line.
	TokenType_CommentSingleLine

	// Multi-line comment, starting with /* and ending with */.
	TokenType_CommentMultiLine

	// Identifier or keyword, a letter or underscore followed by letters, digits
	// or underscores.
	TokenType_Identifier

	// Preprocessing number: integer literals in any base and everything else
	// starting with a digit (or a dot followed by a digit), e.g. 123, 0x1A3F,
	// 10UL, 1.5e+3.
	TokenType_LiteralInteger

	// String literal, enclosed in double quotes, e.g. "example".
	TokenType_LiteralString

	// Character literal, enclosed in single quotes, e.g. 'a'.
	TokenType_LiteralChar

	// Stringification operator '#', also the leading symbol of a directive.
	TokenType_Hash

	// Token pasting operator '##'.
	TokenType_HashHash

	// Symbols with a special meaning in macro invocations.

	TokenType_Comma
	TokenType_ParenthesisLeft
	TokenType_ParenthesisRight
	TokenType_Ellipsis

	// Every other operator or punctuation symbol, e.g. '+', '->', '<<='. Also
	// used for stray characters the lexer cannot classify.
	TokenType_Punctuator
)

// TokenType_MacroParameter is the first of the token types reserved for
// parameter placeholders inside a stored macro body. The placeholder of the
// N-th parameter (0-based) has type TokenType_MacroParameter + N. Placeholders
// never appear in the lexer output or in the result of a macro expansion.
const TokenType_MacroParameter TokenType = 1 << 16

// MacroParameterType returns the placeholder type for the parameter at index.
func MacroParameterType(index int) TokenType {
	if index < 0 {
		panic(fmt.Errorf("negative macro parameter index %d", index))
	}
	return TokenType_MacroParameter + TokenType(index)
}

// ParameterIndex reports whether t is a parameter placeholder and if so,
// which parameter it refers to.
func (t TokenType) ParameterIndex() (int, bool) {
	if t < TokenType_MacroParameter {
		return 0, false
	}
	return int(t - TokenType_MacroParameter), true
}

// IsMacroParameter reports whether t is a parameter placeholder.
func (t TokenType) IsMacroParameter() bool {
	return t >= TokenType_MacroParameter
}

func (t TokenType) String() string {
	if index, ok := t.ParameterIndex(); ok {
		return fmt.Sprintf("macro parameter #%d", index)
	}
	switch t {
	case TokenType_EOF:
		return "end of file"
	case TokenType_Newline:
		return "newline"
	case TokenType_Whitespace:
		return "whitespace"
	case TokenType_ContinueLine:
		return `line continuation backslash '\'`
	case TokenType_CommentSingleLine:
		return "single-line comment"
	case TokenType_CommentMultiLine:
		return "multi-line comment"
	case TokenType_Identifier:
		return "identifier"
	case TokenType_LiteralInteger:
		return "integer literal"
	case TokenType_LiteralString:
		return `"string literal"`
	case TokenType_LiteralChar:
		return "'char literal'"
	case TokenType_Hash:
		return "symbol '#'"
	case TokenType_HashHash:
		return "symbol '##'"
	case TokenType_Comma:
		return "symbol ','"
	case TokenType_ParenthesisLeft:
		return "symbol '('"
	case TokenType_ParenthesisRight:
		return "symbol ')'"
	case TokenType_Ellipsis:
		return "symbol '...'"
	case TokenType_Punctuator:
		return "punctuator"
	default:
		return "unknown token"
	}
}

// IsWhitespace reports whether tokens of this type separate other tokens
// without carrying meaning of their own. Newlines are included.
func (t TokenType) IsWhitespace() bool {
	switch t {
	case TokenType_Newline, TokenType_Whitespace, TokenType_ContinueLine, TokenType_CommentSingleLine, TokenType_CommentMultiLine:
		return true
	default:
		return false
	}
}

// TokenFlags carries per-token markers set during macro expansion.
type TokenFlags uint8

const (
	// The identifier must not be considered for macro expansion again. Set on
	// the name of a macro that was found while that macro was already being
	// expanded.
	TokenFlag_NoFurtherExpansion TokenFlags = 1 << iota
)

// Token is a lexeme together with its origin. Tokens are passed by value.
// Tokens synthesized during macro expansion come from a TokenFactory.
type Token struct {
	Type     TokenType
	Location Cursor
	File     string
	Content  string
	Flags    TokenFlags
}

var TokenEOF = Token{Type: TokenType_EOF}

func (t Token) String() string {
	if t.File == "" {
		return fmt.Sprintf("%v %q", t.Location, t.Content)
	}
	return fmt.Sprintf("%s:%v %q", t.File, t.Location, t.Content)
}

// Position formats the origin of the token for error messages, e.g.
// "main.c:12:3".
func (t Token) Position() string {
	if t.File == "" {
		return t.Location.String()
	}
	return t.File + ":" + t.Location.String()
}

// IsWhitespace reports whether the token is whitespace, a newline, a line
// continuation or a comment.
func (t Token) IsWhitespace() bool { return t.Type.IsWhitespace() }

// HasFlag reports whether all bits of flag are set.
func (t Token) HasFlag(flag TokenFlags) bool { return t.Flags&flag == flag }

// Equivalent reports whether both tokens have the same type, content and flags.
// The origin of the tokens is ignored.
func (t Token) Equivalent(other Token) bool {
	return t.Type == other.Type && t.Content == other.Content && t.Flags == other.Flags
}

// EquivalentSlices reports whether both slices have the same length and
// pairwise Equivalent tokens.
func EquivalentSlices(a, b []Token) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equivalent(b[i]) {
			return false
		}
	}
	return true
}

// Concat joins the contents of the tokens into the text they were lexed from.
func Concat(tokens []Token) string {
	size := 0
	for _, token := range tokens {
		size += len(token.Content)
	}
	buf := make([]byte, 0, size)
	for _, token := range tokens {
		buf = append(buf, token.Content...)
	}
	return string(buf)
}
