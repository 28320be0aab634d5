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

package parser

import (
	"testing"

	"github.com/EngFlow/ccexpand/language/internal/cc/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenize(t *testing.T, input string) []lexer.Token {
	t.Helper()
	tokens, err := lexer.Tokenize("test.c", []byte(input))
	require.NoError(t, err)
	return tokens
}

func TestParseExpr(t *testing.T) {
	testCases := []struct {
		input    string
		expected Expr
	}{
		{
			input:    "defined(LINUX) && SHARED_FLAG != 0 || defined WIN32",
			expected: Or{And{Defined{"LINUX"}, Compare{Ident("SHARED_FLAG"), "!=", ConstantInt(0)}}, Defined{"WIN32"}},
		},
		{
			input:    "!defined X",
			expected: Not{Defined{"X"}},
		},
		{
			input:    "!A == B",
			expected: Compare{Not{Ident("A")}, "==", Ident("B")},
		},
		{
			input:    "1 + 2 * 3",
			expected: Binary{ConstantInt(1), "+", Binary{ConstantInt(2), "*", ConstantInt(3)}},
		},
		{
			input:    "1 - 2 - 3",
			expected: Binary{Binary{ConstantInt(1), "-", ConstantInt(2)}, "-", ConstantInt(3)},
		},
		{
			input:    "-1 < 0",
			expected: Compare{Unary{"-", ConstantInt(1)}, "<", ConstantInt(0)},
		},
		{
			input:    "(1 || 0) && 0",
			expected: And{Or{ConstantInt(1), ConstantInt(0)}, ConstantInt(0)},
		},
		{
			input:    "A ? B : C ? D : E",
			expected: Conditional{Ident("A"), Ident("B"), Conditional{Ident("C"), Ident("D"), Ident("E")}},
		},
		{
			input:    "__has_include(<sys/types.h>) || __has_feature(x, y)",
			expected: Or{Apply{"__has_include", []string{"<sys/types.h>"}}, Apply{"__has_feature", []string{"x", "y"}}},
		},
		{
			input: `/* comment */ 0x10 >= 'a' \
				// trailing comment`,
			expected: Compare{ConstantInt(16), ">=", ConstantInt('a')},
		},
	}

	for _, tc := range testCases {
		expr, err := ParseExpr(tokenize(t, tc.input))
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.expected, expr, tc.input)
	}
}

func TestParseExprErrors(t *testing.T) {
	testCases := []struct {
		input    string
		expected error
	}{
		{input: "", expected: ErrUnexpectedEnd},
		{input: "1 +", expected: ErrUnexpectedEnd},
		{input: "(1", expected: ErrUnexpectedEnd},
		{input: "1 2", expected: ErrUnexpectedToken},
		{input: "defined(1)", expected: ErrUnexpectedToken},
		{input: "defined(X", expected: ErrUnexpectedEnd},
		{input: "1 ? 2", expected: ErrUnexpectedEnd},
		{input: "\"text\"", expected: ErrUnexpectedToken},
		{input: "3(4)", expected: ErrUnexpectedToken},
		{input: "f(1", expected: ErrUnexpectedEnd},
	}

	for _, tc := range testCases {
		_, err := ParseExpr(tokenize(t, tc.input))
		assert.ErrorIs(t, err, tc.expected, tc.input)
	}
}

func TestParseIntLiteral(t *testing.T) {
	valid := map[string]int64{
		"0":                    0,
		"123":                  123,
		"0x2A":                 42,
		"0755":                 493,
		"0b101":                5,
		"10UL":                 10,
		"7ull":                 7,
		"0xFFFFFFFFFFFFFFFF":   -1,
		"9223372036854775807":  9223372036854775807,
		"0x7fffffffffffffffLL": 9223372036854775807,
	}
	for literal, expected := range valid {
		value, err := parseIntLiteral(literal)
		require.NoError(t, err, literal)
		assert.Equal(t, expected, value, literal)
	}

	for _, literal := range []string{"3.14", "1e5", "0x1.8p3", "123XYZ", "08"} {
		_, err := parseIntLiteral(literal)
		assert.Error(t, err, literal)
	}
}
