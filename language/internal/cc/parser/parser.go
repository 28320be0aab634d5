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

// Package parser turns lexer tokens of preprocessor directives into structured values:
//
//   - `#define` lines become macro definitions, with parameters replaced by placeholder tokens,
//   - `#if` / `#elif` conditions become an Expr AST declared in the same package, which can be evaluated once the
//     condition has been macro-expanded,
//   - every other directive is classified and its operands extracted (see Directive).
//
// The parser does not evaluate anything on its own; the preprocessor package drives it.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/EngFlow/ccexpand/internal/collections"
	"github.com/EngFlow/ccexpand/language/internal/cc/lexer"
)

var (
	ErrUnexpectedEnd   = errors.New("unexpected end of directive")
	ErrUnexpectedToken = errors.New("unexpected token")
)

type (
	parseRule struct {
		precedence   precedence
		prefixParser prefixParseFn
		infixParser  infixParserFn
	}
	prefixParseFn func(p *parser, token lexer.Token) (Expr, error)
	infixParserFn func(p *parser, token lexer.Token, left Expr) (Expr, error)
	precedence    int
)

const (
	precedenceLowest      precedence = iota
	precedenceConditional            // ?:
	precedenceOr                     // ||
	precedenceAnd                    // &&
	precedenceBitOr                  // |
	precedenceBitXor                 // ^
	precedenceBitAnd                 // &
	precedenceEquality               // ==, !=
	precedenceRelational             // <, <=, >, >=
	precedenceShift                  // <<, >>
	precedenceAdditive               // +, -
	precedenceMultiplicative         // *, /, %
	precedencePrefix                 // !, ~, unary - and + (prefix)
	precedenceParens                 // (
)

// exprKeywordsPrecedence maps operator tokens to their precedence and parser functions.
// This is initialized in init() to avoid cyclic reference errors at package init time.
var exprKeywordsPrecedence map[string]parseRule

func init() {
	binary := func(prec precedence) parseRule {
		return parseRule{precedence: prec, infixParser: parseBinaryOperator}
	}
	arithmetic := func(prec precedence) parseRule {
		return parseRule{precedence: prec, prefixParser: parseUnaryOperator, infixParser: parseBinaryOperator}
	}
	compare := func(prec precedence) parseRule {
		return parseRule{precedence: prec, infixParser: parseBinaryCompareOperator}
	}
	exprKeywordsPrecedence = map[string]parseRule{
		"!":       {precedence: precedencePrefix, prefixParser: parseUnaryBangOperator},
		"~":       {precedence: precedencePrefix, prefixParser: parseUnaryOperator},
		"(":       {precedence: precedenceParens, prefixParser: parseUnaryOpenParenthesis, infixParser: parseBinaryApplyOperator},
		"defined": {precedence: precedenceLowest, prefixParser: parseDefinedExpr},
		"?":       {precedence: precedenceConditional, infixParser: parseConditionalOperator},
		"||":      {precedence: precedenceOr, infixParser: parseBinaryLogicOrOperator},
		"&&":      {precedence: precedenceAnd, infixParser: parseBinaryLogicAndOperator},
		"|":       binary(precedenceBitOr),
		"^":       binary(precedenceBitXor),
		"&":       binary(precedenceBitAnd),
		"==":      compare(precedenceEquality),
		"!=":      compare(precedenceEquality),
		">":       compare(precedenceRelational),
		">=":      compare(precedenceRelational),
		"<":       compare(precedenceRelational),
		"<=":      compare(precedenceRelational),
		"<<":      binary(precedenceShift),
		">>":      binary(precedenceShift),
		"+":       arithmetic(precedenceAdditive),
		"-":       arithmetic(precedenceAdditive),
		"*":       binary(precedenceMultiplicative),
		"/":       binary(precedenceMultiplicative),
		"%":       binary(precedenceMultiplicative),
	}
}

// getPrefixParseFn returns a prefix parser for a token, or a default parser for identifiers/literals.
func getPrefixParseFn(token lexer.Token) prefixParseFn {
	if token.Type != lexer.TokenType_Identifier || token.Content == "defined" {
		if rule, exists := exprKeywordsPrecedence[token.Content]; exists && rule.prefixParser != nil {
			return rule.prefixParser
		}
	}
	// Fallback: treat as identifier or literal
	return func(p *parser, token lexer.Token) (Expr, error) {
		return parseValue(token)
	}
}

// ParseExpr parses a preprocessor expression (#if/#elif condition) as an Expr AST. The whole input has to form a
// single expression; whitespace and comments are ignored.
func ParseExpr(tokens []lexer.Token) (Expr, error) {
	p := newParser(tokens)
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if token := p.peek(); token.Type != lexer.TokenType_EOF {
		return nil, p.unexpected(token)
	}
	return expr, nil
}

// parseExprPrecedence implements Pratt parsing for expressions, handling C preprocessor conditionals.
// minPrecedence controls operator binding (precedence climbing).
func (p *parser) parseExprPrecedence(minPrecedence precedence) (Expr, error) {
	token, err := p.nextDirectiveToken()
	if err != nil {
		return nil, err
	}

	parsePrefix := getPrefixParseFn(token)
	result, err := parsePrefix(p, token)
	if err != nil {
		return nil, err
	}

	for {
		token := p.peek()
		if token.Type == lexer.TokenType_EOF {
			return result, nil // end of input
		}

		rule, exists := exprKeywordsPrecedence[token.Content]
		if !exists || rule.infixParser == nil || rule.precedence < minPrecedence {
			return result, nil // current operator binds less – stop and return
		}
		p.next()
		result, err = rule.infixParser(p, token, result)
		if err != nil {
			return nil, err
		}
	}
}

func parseBinaryLogicOrOperator(p *parser, _ lexer.Token, lhs Expr) (Expr, error) {
	rhs, err := p.parseExprPrecedence(precedenceOr + 1)
	if err != nil {
		return nil, err
	}
	return Or{lhs, rhs}, nil
}

func parseBinaryLogicAndOperator(p *parser, _ lexer.Token, lhs Expr) (Expr, error) {
	rhs, err := p.parseExprPrecedence(precedenceAnd + 1)
	if err != nil {
		return nil, err
	}
	return And{lhs, rhs}, nil
}

func parseBinaryCompareOperator(p *parser, token lexer.Token, lhs Expr) (Expr, error) {
	op := token.Content
	switch op {
	case "==", "!=", ">", ">=", "<", "<=":
		rhs, err := p.parseExprPrecedence(exprKeywordsPrecedence[op].precedence + 1)
		if err != nil {
			return nil, err
		}
		return Compare{lhs, op, rhs}, nil
	default:
		panic(fmt.Sprintf("unknown binary compare operator %q", op))
	}
}

func parseBinaryOperator(p *parser, token lexer.Token, lhs Expr) (Expr, error) {
	rhs, err := p.parseExprPrecedence(exprKeywordsPrecedence[token.Content].precedence + 1)
	if err != nil {
		return nil, err
	}
	return Binary{Left: lhs, Op: token.Content, Right: rhs}, nil
}

// parseConditionalOperator parses `cond ? then : else`, which is right associative.
func parseConditionalOperator(p *parser, _ lexer.Token, cond Expr) (Expr, error) {
	then, err := p.parseExprPrecedence(precedenceLowest)
	if err != nil {
		return nil, err
	}
	if err := p.expectNext(":"); err != nil {
		return nil, err
	}
	otherwise, err := p.parseExprPrecedence(precedenceConditional)
	if err != nil {
		return nil, err
	}
	return Conditional{Cond: cond, Then: then, Else: otherwise}, nil
}

// parseBinaryApplyOperator parses a call of a function-like name left after macro expansion, e.g.
// `__has_include(<file.h>)`. The arguments are kept as text.
func parseBinaryApplyOperator(p *parser, token lexer.Token, lhs Expr) (Expr, error) {
	ident, ok := lhs.(Ident)
	if !ok {
		return nil, fmt.Errorf("%s: expected identifier for apply operator, got %v: %w", token.Position(), lhs, ErrUnexpectedToken)
	}

	var args []string
	var current strings.Builder
	depth := 0
	for {
		token := p.next()
		switch {
		case token.Type == lexer.TokenType_EOF:
			return nil, fmt.Errorf("%s: parsing arguments of %q: %w", p.last.Position(), ident, ErrUnexpectedEnd)
		case token.Type == lexer.TokenType_ParenthesisRight && depth == 0:
			return Apply{Name: ident, Args: append(args, current.String())}, nil
		case token.Type == lexer.TokenType_Comma && depth == 0:
			args = append(args, current.String())
			current.Reset()
			continue
		case token.Type == lexer.TokenType_ParenthesisLeft:
			depth++
		case token.Type == lexer.TokenType_ParenthesisRight:
			depth--
		}
		current.WriteString(token.Content)
	}
}

func parseUnaryBangOperator(p *parser, _ lexer.Token) (Expr, error) {
	inner, err := p.parseExprPrecedence(precedencePrefix)
	if err != nil {
		return nil, err
	}
	return Not{inner}, nil
}

func parseUnaryOperator(p *parser, token lexer.Token) (Expr, error) {
	inner, err := p.parseExprPrecedence(precedencePrefix)
	if err != nil {
		return nil, err
	}
	return Unary{Op: token.Content, X: inner}, nil
}

func parseUnaryOpenParenthesis(p *parser, _ lexer.Token) (Expr, error) {
	expr, err := p.parseExprPrecedence(precedenceLowest)
	if err != nil {
		return nil, err
	}
	if err := p.expectNext(")"); err != nil {
		return nil, err
	}
	return expr, nil
}

// parseDefinedExpr parses the `defined` operator for macro checks in #if expressions.
func parseDefinedExpr(p *parser, _ lexer.Token) (Expr, error) {
	var name Ident
	var err error
	switch {
	case p.peek().Type == lexer.TokenType_ParenthesisLeft:
		p.next()
		name, err = p.parseIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expectNext(")"); err != nil {
			return nil, err
		}
	default:
		name, err = p.parseIdent()
		if err != nil {
			return nil, err
		}
	}
	return Defined{Name: name}, nil
}

type parser struct {
	tokensLeft []lexer.Token // Tokens yet to be processed
	last       lexer.Token   // Most recently consumed token, the position of errors at the end of input
}

func isSignificant(token lexer.Token) bool { return !token.IsWhitespace() }

func newParser(tokens []lexer.Token) *parser {
	return &parser{tokensLeft: collections.FilterSlice(tokens, isSignificant)}
}

// Drop n tokens from the front of the input stream (or all if number of tokens < n).
func (p *parser) drop(n int) {
	p.tokensLeft = p.tokensLeft[min(n, len(p.tokensLeft)):]
}

// Return the next token without consuming it, or TokenEOF if no tokens are left.
func (p *parser) peek() lexer.Token {
	if len(p.tokensLeft) == 0 {
		return lexer.TokenEOF
	}
	return p.tokensLeft[0]
}

// Return the next token and consume it, or TokenEOF if no tokens are left.
func (p *parser) next() lexer.Token {
	token := p.peek()
	if token.Type != lexer.TokenType_EOF {
		p.last = token
	}
	p.drop(1)
	return token
}

// Check if the next token matches the expected content, returning error otherwise.
func (p *parser) expectNext(expected string) error {
	token := p.next()
	if token.Type == lexer.TokenType_EOF {
		return fmt.Errorf("%s: expected %q: %w", p.last.Position(), expected, ErrUnexpectedEnd)
	}
	if token.Content != expected {
		return fmt.Errorf("%s: expected %q but found %q: %w", token.Position(), expected, token.Content, ErrUnexpectedToken)
	}
	return nil
}

func (p *parser) unexpected(token lexer.Token) error {
	return fmt.Errorf("%s: %q: %w", token.Position(), token.Content, ErrUnexpectedToken)
}

// parseExpr parses a preprocessor expression (#if/#elif condition) as an Expr AST.
func (p *parser) parseExpr() (Expr, error) {
	return p.parseExprPrecedence(precedenceLowest)
}

// Similar to next(), but returns an error if no tokens are left.
func (p *parser) nextDirectiveToken() (lexer.Token, error) {
	token := p.next()
	if token.Type == lexer.TokenType_EOF {
		return token, fmt.Errorf("%s: expected token: %w", p.last.Position(), ErrUnexpectedEnd)
	}
	return token, nil
}

// parseIdent reads the next identifier token.
func (p *parser) parseIdent() (Ident, error) {
	token, err := p.nextDirectiveToken()
	if err != nil {
		return "", err
	}
	if token.Type != lexer.TokenType_Identifier {
		return "", fmt.Errorf("%s: expected identifier but found %q: %w", token.Position(), token.Content, ErrUnexpectedToken)
	}
	return Ident(token.Content), nil
}

// parseValue parses a token as an identifier, integer or character literal, for use in #if/#elif expressions.
func parseValue(token lexer.Token) (Value, error) {
	switch token.Type {
	case lexer.TokenType_Identifier:
		return Ident(token.Content), nil
	case lexer.TokenType_LiteralInteger:
		v, err := parseIntLiteral(token.Content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", token.Position(), err)
		}
		return ConstantInt(v), nil
	case lexer.TokenType_LiteralChar:
		v, err := parseCharLiteral(token.Content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", token.Position(), err)
		}
		return ConstantInt(v), nil
	default:
		return nil, fmt.Errorf("%s: token %q is neither identifier nor integer literal: %w", token.Position(), token.Content, ErrUnexpectedToken)
	}
}

// parseIntLiteral parses an integer literal in decimal, octal, binary or hex form. The C suffixes u, l, ll (in any
// case and combination) are accepted and ignored.
func parseIntLiteral(literal string) (int64, error) {
	digits := strings.TrimRight(literal, "uUlL")
	isHex := strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X")
	if !isHex && strings.ContainsAny(digits, ".eEpP") {
		return 0, fmt.Errorf("floating point literal %q in preprocessor expression", literal)
	}
	if v, err := strconv.ParseInt(digits, 0, 64); err == nil {
		return v, nil
	}
	v, err := strconv.ParseUint(digits, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer literal %q", literal)
	}
	return int64(v), nil
}

// parseCharLiteral returns the value of a single character literal such as 'a', '\n', '\0' or '\x7f'.
func parseCharLiteral(literal string) (int64, error) {
	inner := strings.TrimSuffix(strings.TrimPrefix(literal, "'"), "'")
	if inner == "" {
		return 0, fmt.Errorf("empty character literal %s", literal)
	}
	if inner[0] != '\\' {
		r := []rune(inner)
		return int64(r[0]), nil
	}
	if len(inner) < 2 {
		return 0, fmt.Errorf("invalid escape in character literal %s", literal)
	}
	switch escape := inner[1]; escape {
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case 'a':
		return '\a', nil
	case 'b':
		return '\b', nil
	case 'f':
		return '\f', nil
	case 'v':
		return '\v', nil
	case 'x':
		v, err := strconv.ParseInt(inner[2:], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid hex escape in character literal %s", literal)
		}
		return v, nil
	case '0', '1', '2', '3', '4', '5', '6', '7':
		v, err := strconv.ParseInt(inner[1:min(len(inner), 4)], 8, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid octal escape in character literal %s", literal)
		}
		return v, nil
	default:
		return int64(escape), nil
	}
}
