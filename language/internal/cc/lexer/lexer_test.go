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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextToken(t *testing.T) {
	testCases := []struct {
		input    string
		expected Token
	}{
		{
			input:    "",
			expected: TokenEOF,
		},
		{
			input:    "&&",
			expected: Token{Type: TokenType_Punctuator, Location: CursorInit, File: "test.c", Content: "&&"},
		},
		{
			input:    "#include \"file.h\"",
			expected: Token{Type: TokenType_Hash, Location: CursorInit, File: "test.c", Content: "#"},
		},
		{
			input:    "##__VA_ARGS__",
			expected: Token{Type: TokenType_HashHash, Location: CursorInit, File: "test.c", Content: "##"},
		},
		{
			input:    "\n\n",
			expected: Token{Type: TokenType_Newline, Location: CursorInit, File: "test.c", Content: "\n"},
		},
		{
			input:    "\\    \n MACRO_CONTINUED",
			expected: Token{Type: TokenType_ContinueLine, Location: CursorInit, File: "test.c", Content: "\\    \n"},
		},
		{
			input:    "/*\n  This is a multi line comment\n*/\nint main()",
			expected: Token{Type: TokenType_CommentMultiLine, Location: CursorInit, File: "test.c", Content: "/*\n  This is a multi line comment\n*/"},
		},
		{
			input:    `"This is a string literal"`,
			expected: Token{Type: TokenType_LiteralString, Location: CursorInit, File: "test.c", Content: `"This is a string literal"`},
		},
		{
			input:    "identifier123;",
			expected: Token{Type: TokenType_Identifier, Location: CursorInit, File: "test.c", Content: "identifier123"},
		},
		{
			input:    "0755UL",
			expected: Token{Type: TokenType_LiteralInteger, Location: CursorInit, File: "test.c", Content: "0755UL"},
		},
		{
			input:    "...",
			expected: Token{Type: TokenType_Ellipsis, Location: CursorInit, File: "test.c", Content: "..."},
		},
	}

	for _, tc := range testCases {
		lx := NewLexer("test.c", []byte(tc.input))
		token, err := lx.NextToken()
		require.NoError(t, err, "input: %q", tc.input)
		assert.Equal(t, tc.expected, token, "input: %q", tc.input)
	}
}

func TestTokenize(t *testing.T) {
	token := func(tokenType TokenType, line, column int, content string) Token {
		return Token{Type: tokenType, Location: Cursor{Line: line, Column: column}, File: "test.h", Content: content}
	}

	testCases := []struct {
		input    string
		expected []Token
	}{
		{
			input:    "",
			expected: nil,
		},
		{
			input: "#define ADD(a, b) a##b\n",
			expected: []Token{
				token(TokenType_Hash, 1, 1, "#"),
				token(TokenType_Identifier, 1, 2, "define"),
				token(TokenType_Whitespace, 1, 8, " "),
				token(TokenType_Identifier, 1, 9, "ADD"),
				token(TokenType_ParenthesisLeft, 1, 12, "("),
				token(TokenType_Identifier, 1, 13, "a"),
				token(TokenType_Comma, 1, 14, ","),
				token(TokenType_Whitespace, 1, 15, " "),
				token(TokenType_Identifier, 1, 16, "b"),
				token(TokenType_ParenthesisRight, 1, 17, ")"),
				token(TokenType_Whitespace, 1, 18, " "),
				token(TokenType_Identifier, 1, 19, "a"),
				token(TokenType_HashHash, 1, 20, "##"),
				token(TokenType_Identifier, 1, 22, "b"),
				token(TokenType_Newline, 1, 23, "\n"),
			},
		},
		{
			input: "a\\\nb // tail",
			expected: []Token{
				token(TokenType_Identifier, 1, 1, "a"),
				token(TokenType_ContinueLine, 1, 2, "\\\n"),
				token(TokenType_Identifier, 2, 1, "b"),
				token(TokenType_Whitespace, 2, 2, " "),
				token(TokenType_CommentSingleLine, 2, 3, "// tail"),
			},
		},
	}

	for _, tc := range testCases {
		tokens, err := Tokenize("test.h", []byte(tc.input))
		require.NoError(t, err, "input: %q", tc.input)
		assert.Equal(t, tc.expected, tokens, "input: %q", tc.input)
	}
}

func TestTokenizeRoundTrip(t *testing.T) {
	input := `#define STR(x) #x
/* comment */ int main(void) {
	printf("%s\n", STR(a  +  b)); // done
	return 'c' + .5e-1 ... 0x1F;
}
`
	tokens, err := Tokenize("main.c", []byte(input))
	require.NoError(t, err)
	assert.Equal(t, input, Concat(tokens))
}

func TestTokenizeErrors(t *testing.T) {
	testCases := []struct {
		input       string
		expectedErr error
		expectedMsg string
	}{
		{input: "int /* never closed", expectedErr: ErrMultiLineCommentUnterminated, expectedMsg: "test.c:1:5"},
		{input: "\nputs(\"oops\n\");", expectedErr: ErrStringLiteralUnterminated, expectedMsg: "test.c:2:6"},
		{input: "char c = 'x;", expectedErr: ErrCharLiteralUnterminated, expectedMsg: "test.c:1:10"},
	}

	for _, tc := range testCases {
		_, err := Tokenize("test.c", []byte(tc.input))
		assert.ErrorIs(t, err, tc.expectedErr, "input: %q", tc.input)
		assert.ErrorContains(t, err, tc.expectedMsg, "input: %q", tc.input)
	}
}

func TestArena(t *testing.T) {
	arena := NewArena()
	template := Token{Type: TokenType_Identifier, Location: Cursor{Line: 3, Column: 7}, File: "a.h", Content: "x"}

	custom := arena.CreateCustomToken(template, TokenType_LiteralString, `"x"`, 0)
	painted := arena.CreateCustomToken(template, TokenType_Identifier, "x", TokenFlag_NoFurtherExpansion)

	assert.Equal(t, Token{Type: TokenType_LiteralString, Location: template.Location, File: "a.h", Content: `"x"`}, custom)
	assert.True(t, painted.HasFlag(TokenFlag_NoFurtherExpansion))
	assert.False(t, painted.Equivalent(template))
	assert.Equal(t, 2, arena.Len())
	assert.Equal(t, []Token{custom, painted}, arena.Tokens())
}

func TestMacroParameterType(t *testing.T) {
	placeholder := MacroParameterType(3)
	index, ok := placeholder.ParameterIndex()
	assert.True(t, ok)
	assert.Equal(t, 3, index)
	assert.True(t, placeholder.IsMacroParameter())
	assert.Equal(t, "macro parameter #3", placeholder.String())

	_, ok = TokenType_Identifier.ParameterIndex()
	assert.False(t, ok)
	assert.Panics(t, func() { MacroParameterType(-1) })
}
