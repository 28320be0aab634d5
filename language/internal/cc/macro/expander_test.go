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

package macro_test

import (
	"strings"
	"testing"

	"github.com/EngFlow/ccexpand/internal/collections"
	"github.com/EngFlow/ccexpand/language/internal/cc/diagnostic"
	"github.com/EngFlow/ccexpand/language/internal/cc/lexer"
	"github.com/EngFlow/ccexpand/language/internal/cc/macro"
	"github.com/EngFlow/ccexpand/language/internal/cc/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	table       *macro.MacroTable
	diagnostics *diagnostic.Collector
	arena       *lexer.Arena
	expander    *macro.Expander
}

func newFixture(t *testing.T, definitions ...string) *fixture {
	t.Helper()
	f := &fixture{
		table:       macro.NewMacroTable(),
		diagnostics: &diagnostic.Collector{},
		arena:       lexer.NewArena(),
	}
	for _, definition := range definitions {
		def, err := parser.ParseDefineString("defs.h", definition)
		require.NoError(t, err, definition)
		f.table.Define(def, f.diagnostics)
	}
	f.expander = macro.NewExpander(f.table, macro.Options{Tokens: f.arena, Diagnostics: f.diagnostics})
	return f
}

func (f *fixture) expandTokens(t *testing.T, input string) ([]lexer.Token, error) {
	t.Helper()
	tokens, err := lexer.Tokenize("main.c", []byte(input))
	require.NoError(t, err)
	return f.expander.Expand(tokens)
}

func (f *fixture) expand(t *testing.T, input string) string {
	t.Helper()
	output, err := f.expandTokens(t, input)
	require.NoError(t, err, input)
	return lexer.Concat(output)
}

func significant(tokens []lexer.Token) []lexer.Token {
	return collections.FilterSlice(tokens, func(token lexer.Token) bool { return !token.IsWhitespace() })
}

func contents(tokens []lexer.Token) []string {
	return collections.MapSlice(significant(tokens), func(token lexer.Token) string { return token.Content })
}

func TestExpandObjectMacros(t *testing.T) {
	f := newFixture(t,
		"VERSION 3",
		"EMPTY",
		"PAIR VERSION, VERSION",
		"NESTED PAIR + EMPTY VERSION",
	)
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "int x = VERSION;", expected: "int x = 3;"},
		{input: "a EMPTY b", expected: "a  b"},
		{input: "f(PAIR)", expected: "f(3, 3)"},
		{input: "NESTED", expected: "3, 3 +  3"},
		{input: "VERSIONS VERSION_ _VERSION", expected: "VERSIONS VERSION_ _VERSION"},
		{input: `"VERSION" 'V' /* VERSION */`, expected: `"VERSION" 'V' /* VERSION */`},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, f.expand(t, tc.input), tc.input)
	}
	assert.Empty(t, f.diagnostics.Diagnostics)
}

func TestExpandFunctionMacros(t *testing.T) {
	f := newFixture(t,
		"ADD(a,b) ((a)+(b))",
		"ID(x) x",
		"NOARGS() nothing",
		"TWICE(x) x x",
		"APPLY(f, x) f(x)",
		"NEG(x) -x",
	)
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "ADD(1,2)", expected: "((1)+(2))"},
		{input: "ADD( 1 , 2 )", expected: "((1)+(2))"},
		{input: "ADD((1,2), f(3, 4))", expected: "(((1,2))+(f(3, 4)))"},
		{input: "ADD(ADD(1,2),3)", expected: "((((1)+(2)))+(3))"},
		{input: "ADD\n  (1, 2)", expected: "((1)+(2))"},
		{input: "ID()", expected: ""},
		{input: "NOARGS()", expected: "nothing"},
		{input: "NOARGS ( )", expected: "nothing"},
		{input: "TWICE(ID(a))", expected: "a a"},
		{input: "APPLY(NEG, 5)", expected: "-5"},
		{input: "ID(ADD)(1, 2)", expected: "((1)+(2))"},
		{input: "int ADD = 1;", expected: "int ADD = 1;"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, f.expand(t, tc.input), tc.input)
	}
	assert.Empty(t, f.diagnostics.Diagnostics)
}

func TestFunctionMacroTokenSequence(t *testing.T) {
	f := newFixture(t, "ADD(a,b) ((a)+(b))")
	output, err := f.expandTokens(t, "ADD(1,2)")
	require.NoError(t, err)
	assert.Equal(t, []string{"(", "(", "1", ")", "+", "(", "2", ")", ")"}, contents(output))
}

func TestSelfRecursion(t *testing.T) {
	f := newFixture(t, "A A")
	output, err := f.expandTokens(t, "A")
	require.NoError(t, err)
	require.Len(t, output, 1)
	assert.Equal(t, "A", output[0].Content)
	assert.Equal(t, lexer.TokenType_Identifier, output[0].Type)
	assert.True(t, output[0].HasFlag(lexer.TokenFlag_NoFurtherExpansion))
	assert.Empty(t, f.diagnostics.Diagnostics)
	assert.False(t, f.expander.IsExpanding("A"))
}

func TestMutualRecursion(t *testing.T) {
	f := newFixture(t, "A B", "B A")
	output, err := f.expandTokens(t, "A B")
	require.NoError(t, err)
	tokens := significant(output)
	require.Len(t, tokens, 2)
	// A is still guarded while B expands, so the inner A is painted and A
	// yields A rather than B. Each name stops at its own second occurrence.
	assert.Equal(t, "A", tokens[0].Content)
	assert.Equal(t, "B", tokens[1].Content)
	for _, token := range tokens {
		assert.True(t, token.HasFlag(lexer.TokenFlag_NoFurtherExpansion))
	}
	assert.Empty(t, f.diagnostics.Diagnostics)
}

func TestRecursiveFunctionMacro(t *testing.T) {
	f := newFixture(t,
		"foo(x) bar x",
		"bar foo(1)",
		"f(x) f(x + 1)",
	)
	assert.Equal(t, "foo(1) 2", f.expand(t, "foo(2)"))
	assert.Equal(t, "f(0 + 1)", f.expand(t, "f(0)"))

	output, err := f.expandTokens(t, "f(0)")
	require.NoError(t, err)
	assert.True(t, output[0].HasFlag(lexer.TokenFlag_NoFurtherExpansion))
	assert.Empty(t, f.diagnostics.Diagnostics)
}

func TestExpandIsIdempotent(t *testing.T) {
	f := newFixture(t,
		"A A",
		"B C",
		"C B",
		"ADD(a,b) ((a)+(b))",
		"STR(x) #x",
		"CAT(a,b) a##b",
		"LOG(fmt, ...) printf(fmt, ##__VA_ARGS__)",
		"REC(x) REC(x)",
	)
	for _, input := range []string{
		"A B C",
		"ADD(A, B)",
		"STR(A B) CAT(A, B)",
		"LOG(\"%d\", ADD(1, 2)) LOG(\"x\")",
		"REC(REC(1))",
	} {
		once, err := f.expandTokens(t, input)
		require.NoError(t, err, input)
		twice, err := f.expander.Expand(once)
		require.NoError(t, err, input)
		assert.True(t, lexer.EquivalentSlices(once, twice), "%s: %v != %v", input, once, twice)
	}
}

func TestStringification(t *testing.T) {
	f := newFixture(t,
		"STR(x) #x",
		"XSTR(x) STR(x)",
		"VALUE 42",
		"SHOW(x) # x",
		"VSTR(...) #__VA_ARGS__",
	)
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "STR(hello world)", expected: `"hello world"`},
		{input: "STR()", expected: `""`},
		{input: "STR(  spaced   out  )", expected: `"spaced out"`},
		{input: "STR(a /* comment */ b)", expected: `"a b"`},
		{input: `STR("quoted" \n)`, expected: `"\"quoted\" \\n"`},
		{input: `STR('"')`, expected: `"'\"'"`},
		{input: "STR(VALUE)", expected: `"VALUE"`},
		{input: "XSTR(VALUE)", expected: `"42"`},
		{input: "SHOW(a+b)", expected: `"a+b"`},
		{input: "VSTR(a, b,c)", expected: `"a, b, c"`},
		{input: "VSTR()", expected: `""`},
	}

	for _, tc := range testCases {
		output, err := f.expandTokens(t, tc.input)
		require.NoError(t, err, tc.input)
		require.Len(t, output, 1, tc.input)
		assert.Equal(t, lexer.TokenType_LiteralString, output[0].Type, tc.input)
		assert.Equal(t, tc.expected, output[0].Content, tc.input)
	}
	assert.Empty(t, f.diagnostics.Diagnostics)
}

func TestStringificationErrors(t *testing.T) {
	for _, definition := range []string{"BAD(x) #y", "END(x) x #", "NUM(x) #1"} {
		f := newFixture(t, definition)
		name, _, _ := strings.Cut(definition, "(")
		_, err := f.expandTokens(t, name+"(1)")
		assert.ErrorIs(t, err, diagnostic.ErrInvalidStringifyTarget, definition)
		assert.Equal(t, []diagnostic.Kind{diagnostic.Kind_InvalidStringifyTarget}, f.diagnostics.Kinds(), definition)
		assert.False(t, f.expander.IsExpanding(name), definition)
	}
}

func TestConcatenation(t *testing.T) {
	f := newFixture(t,
		"CAT(a,b) a##b",
		"CAT2(a,b) a ## b",
		"CAT3(a,b,c) a##b##c",
		"PREFIX(x) prefix_##x",
		"SUFFIX(x) x##_suffix",
		"VALUE 42",
		"foobar expanded",
		"GLUE foo ## bar",
	)
	testCases := []struct {
		input    string
		expected []string
	}{
		{input: "CAT(foo,bar)", expected: []string{"expanded"}},
		{input: "CAT(foo,baz)", expected: []string{"foobaz"}},
		{input: "CAT2(1,2)", expected: []string{"12"}},
		{input: "CAT2(x,1)", expected: []string{"x1"}},
		{input: "CAT2(+,+)", expected: []string{"+", "+"}},
		{input: "CAT3(a,b,c)", expected: []string{"abc"}},
		{input: "CAT3(,,c)", expected: []string{"c"}},
		{input: "CAT3(a,,)", expected: []string{"a"}},
		{input: "CAT3(,,)", expected: nil},
		{input: "PREFIX(VALUE)", expected: []string{"prefix_VALUE"}},
		{input: "SUFFIX(VALUE)", expected: []string{"VALUE_suffix"}},
		{input: "CAT(x y, z w)", expected: []string{"x", "yz", "w"}},
		{input: "CAT(, z)", expected: []string{"z"}},
		{input: "CAT(VAL, UE)", expected: []string{"42"}},
		{input: "GLUE", expected: []string{"expanded"}},
	}

	for _, tc := range testCases {
		output, err := f.expandTokens(t, tc.input)
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.expected, nilIfEmpty(contents(output)), tc.input)
	}
	assert.Empty(t, f.diagnostics.Diagnostics)

	output, err := f.expandTokens(t, "CAT(foo,baz)")
	require.NoError(t, err)
	require.Len(t, output, 1)
	assert.Equal(t, lexer.TokenType_Identifier, output[0].Type)

	output, err = f.expandTokens(t, "CAT2(1,2)")
	require.NoError(t, err)
	require.Len(t, output, 1)
	assert.Equal(t, lexer.TokenType_LiteralInteger, output[0].Type)
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func TestPasteAtBoundary(t *testing.T) {
	for _, definition := range []string{"LEFT(x) ## x", "RIGHT(x) x ##", "OBJ ## a", "OBJ2 a ## "} {
		f := newFixture(t, definition)
		name, _, _ := strings.Cut(strings.Fields(definition)[0], "(")
		input := name
		if strings.Contains(definition, "(") {
			input += "(1)"
		}
		_, err := f.expandTokens(t, input)
		assert.ErrorIs(t, err, diagnostic.ErrPasteAtBoundary, definition)
		assert.True(t, f.diagnostics.HasErrors(), definition)
	}
}

func TestVariadicMacros(t *testing.T) {
	f := newFixture(t,
		"LOG(fmt, ...) printf(fmt, ##__VA_ARGS__)",
		"CALL(f, ...) f(__VA_ARGS__)",
		"COUNT(...) count(__VA_ARGS__)",
		"NAMED(fmt, args...) printf(fmt, args)",
		"FIRST(x, ...) x",
		"VALUE 7",
	)
	testCases := []struct {
		input    string
		expected string
	}{
		{input: `LOG("x")`, expected: `printf("x")`},
		{input: `LOG("x",)`, expected: `printf("x")`},
		{input: `LOG("%d %d", 1, 2)`, expected: `printf("%d %d",1,2)`},
		{input: `LOG("%d", VALUE)`, expected: `printf("%d",7)`},
		{input: "CALL(g)", expected: "g()"},
		{input: "CALL(g, VALUE, (a, b))", expected: "g(7,(a, b))"},
		{input: "COUNT()", expected: "count()"},
		{input: "COUNT(a, b, c)", expected: "count(a,b,c)"},
		{input: "NAMED(\"s\", x, y)", expected: `printf("s", x,y)`},
		{input: "FIRST(1, 2, 3)", expected: "1"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, f.expand(t, tc.input), tc.input)
	}
	assert.Empty(t, f.diagnostics.Diagnostics)
}

func TestArgumentPreExpansion(t *testing.T) {
	f := newFixture(t,
		"ID(x) x",
		"LPAREN (",
		"f(x) [x]",
		"AFTERX(x) X_ ## x",
		"XAFTERX(x) AFTERX(x)",
		"TABLESIZE 1024",
		"BUFSIZE TABLESIZE",
	)
	assert.Equal(t, "[1024]", f.expand(t, "f(BUFSIZE)"))
	assert.Equal(t, "X_BUFSIZE", f.expand(t, "AFTERX(BUFSIZE)"))
	assert.Equal(t, "X_1024", f.expand(t, "XAFTERX(BUFSIZE)"))
	assert.Equal(t, "(", f.expand(t, "ID(LPAREN)"))
}

func TestMissingParameter(t *testing.T) {
	f := newFixture(t, "ADD(a, b) a + b")
	assert.Equal(t, "1 + ", f.expand(t, "ADD(1)"))
	assert.Equal(t, []diagnostic.Kind{diagnostic.Kind_MissingParameterAccess}, f.diagnostics.Kinds())
	assert.Equal(t, "main.c:1:1", f.diagnostics.Diagnostics[0].Token.Position())
}

func TestExcessArguments(t *testing.T) {
	f := newFixture(t, "ONE(a) [a]", "NONE() none")
	assert.Equal(t, "[1]", f.expand(t, "ONE(1, 2)"))
	assert.Equal(t, "none", f.expand(t, "NONE(x)"))
	assert.Equal(t, []diagnostic.Kind{diagnostic.Kind_ExcessArguments, diagnostic.Kind_ExcessArguments}, f.diagnostics.Kinds())
}

func TestUnterminatedInvocation(t *testing.T) {
	f := newFixture(t, "ID(x) x")
	assert.Equal(t, "ID(a, b", f.expand(t, "ID(a, b"))
	assert.Contains(t, f.diagnostics.Kinds(), diagnostic.Kind_UnterminatedInvocation)
	assert.False(t, f.diagnostics.HasErrors())
}

func TestFunctionMacroWithoutArguments(t *testing.T) {
	f := newFixture(t, "f(x) x", "g f")
	assert.Equal(t, "f + 1", f.expand(t, "f + 1"))
	assert.Equal(t, "f", f.expand(t, "f"))
	assert.Equal(t, "y", f.expand(t, "g(y)"))
	assert.Empty(t, f.diagnostics.Diagnostics)
}

func TestDivergenceCap(t *testing.T) {
	f := newFixture(t, "f() f")
	_, err := f.expandTokens(t, "f"+strings.Repeat("()", 20))
	require.ErrorIs(t, err, diagnostic.ErrMacroExpansionDivergence)

	var d diagnostic.Diagnostic
	require.ErrorAs(t, err, &d)
	assert.Equal(t, diagnostic.Severity_Error, d.Severity)
	assert.True(t, f.diagnostics.HasErrors())
	assert.False(t, f.expander.IsExpanding("f"))
}

func TestIterationLimits(t *testing.T) {
	testCases := []struct {
		pairs         int
		expectWarning bool
		expectError   bool
	}{
		{pairs: 1},
		{pairs: 3},
		{pairs: 4, expectWarning: true},
		{pairs: 11, expectWarning: true},
		{pairs: 12, expectWarning: true, expectError: true},
	}

	for _, tc := range testCases {
		f := newFixture(t, "f() f")
		output, err := f.expandTokens(t, "f"+strings.Repeat("()", tc.pairs))
		if tc.expectError {
			assert.ErrorIs(t, err, diagnostic.ErrMacroExpansionDivergence, "pairs: %d", tc.pairs)
		} else {
			require.NoError(t, err, "pairs: %d", tc.pairs)
			assert.Equal(t, "f", lexer.Concat(output), "pairs: %d", tc.pairs)
		}
		warnings := collections.FilterSlice(f.diagnostics.Kinds(), func(kind diagnostic.Kind) bool {
			return kind == diagnostic.Kind_ExcessiveIterations
		})
		if tc.expectWarning {
			assert.Len(t, warnings, 1, "pairs: %d", tc.pairs)
		} else {
			assert.Empty(t, warnings, "pairs: %d", tc.pairs)
		}
	}
}

func TestLineAndFile(t *testing.T) {
	f := newFixture(t,
		"L __LINE__",
		"ID(x) x",
		"WHERE __FILE__ : __LINE__",
	)
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "__LINE__", expected: "1"},
		{input: "\n\n\n__LINE__", expected: "\n\n\n4"},
		{input: "\n\nID(ID(L))", expected: "\n\n3"},
		{input: "a\nb L", expected: "a\nb 2"},
		{input: "__FILE__", expected: `"main.c"`},
		{input: "\nWHERE", expected: "\n\"main.c\" : 2"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, f.expand(t, tc.input), tc.input)
	}

	output, err := f.expandTokens(t, "\n\n\n\nL")
	require.NoError(t, err)
	line := output[len(output)-1]
	assert.Equal(t, lexer.TokenType_LiteralInteger, line.Type)
	assert.Equal(t, "5", line.Content)

	file, lineNumber := f.expander.Location()
	assert.Equal(t, "main.c", file)
	assert.Equal(t, 5, lineNumber)
}

func TestCustomTokensKeepOrigin(t *testing.T) {
	f := newFixture(t, "STR(x) #x")
	output, err := f.expandTokens(t, "  STR(abc)")
	require.NoError(t, err)
	str := significant(output)[0]
	assert.Equal(t, "defs.h", str.File)
	assert.Equal(t, lexer.Cursor{Line: 1, Column: 9}, str.Location)
	assert.Positive(t, f.arena.Len())
}

type recordingObserver struct {
	events []string
}

func (o *recordingObserver) BeginExpansion(invocation lexer.Token) {
	o.events = append(o.events, "begin "+invocation.Content)
}

func (o *recordingObserver) EndExpansion(invocation lexer.Token) {
	o.events = append(o.events, "end "+invocation.Content)
}

func TestObserverEventsAreNested(t *testing.T) {
	table := macro.NewMacroTable()
	for _, definition := range []string{"OUTER(x) INNER x", "INNER 1", "SELF SELF"} {
		def, err := parser.ParseDefineString("defs.h", definition)
		require.NoError(t, err)
		table.Define(def, diagnostic.Discard)
	}
	observer := &recordingObserver{}
	expander := macro.NewExpander(table, macro.Options{Observer: observer})

	tokens, err := lexer.Tokenize("main.c", []byte("OUTER(2) SELF"))
	require.NoError(t, err)
	_, err = expander.Expand(tokens)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"begin OUTER", "begin INNER", "end INNER", "end OUTER",
		"begin SELF", "end SELF",
	}, observer.events)
}
