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
	"errors"
	"fmt"
	"strings"

	"github.com/EngFlow/ccexpand/language/internal/cc/macro"
)

var ErrDivisionByZero = errors.New("division by zero in preprocessor expression")

type (
	// Expr represents an abstract syntax tree (AST) node for a C/C++ preprocessor #if condition.
	// Each Expr node implements fmt.Stringer for debugging and round-tripping.
	Expr interface {
		// Eval computes the integer value of the expression. Conditions are meant to be macro-expanded before
		// parsing, so the macros are only consulted by the defined operator; any other identifier is 0.
		Eval(macros macro.Table) (int64, error)
		String() string
	}

	// Defined represents the defined(X) operator in #if expressions,
	// checking if a macro identifier is defined.
	Defined struct {
		Name Ident
	}

	// Not represents logical negation of a condition: !X
	Not struct {
		X Expr
	}

	// And represents a logical AND (X && Y) in #if expressions.
	And struct {
		L, R Expr
	}

	// Or represents a logical OR (X || Y) in #if expressions.
	Or struct {
		L, R Expr
	}

	// Compare represents a comparison between two values, e.g. A == B, A < B.
	Compare struct {
		Left  Expr   // Left-hand side of the comparison
		Op    string // Comparison operator: "==", "!=", "<", "<=", ">", ">="
		Right Expr   // Right-hand side of the comparison
	}

	// Unary represents the arithmetic prefix operators -X, +X and ~X.
	Unary struct {
		Op string
		X  Expr
	}

	// Binary represents arithmetic and bitwise operators, e.g. A + B, A << B, A & B.
	Binary struct {
		Left  Expr
		Op    string
		Right Expr
	}

	// Conditional represents the ternary operator Cond ? Then : Else.
	Conditional struct {
		Cond, Then, Else Expr
	}

	// Apply represents a function-like name with arguments that is not a macro, e.g. __has_include(<x.h>).
	Apply struct {
		Name Ident
		Args []string
	}
)

type (
	// Value is a sub-interface of Expr, representing a single operand in a #if expression.
	Value interface {
		Expr
		isValue()
	}
	// Ident is an identifier that is not a macro, such as an unknown _WIN32. It evaluates to 0.
	Ident string
	// ConstantInt is an integer or character constant (e.g., 42, 'a').
	ConstantInt int64
)

func (Ident) isValue()       {}
func (ConstantInt) isValue() {}

func (expr Defined) String() string     { return fmt.Sprintf("defined(%s)", expr.Name) }
func (expr Compare) String() string     { return fmt.Sprintf("%s %s %s", expr.Left, expr.Op, expr.Right) }
func (expr Not) String() string         { return "!(" + expr.X.String() + ")" }
func (expr And) String() string         { return expr.L.String() + " && " + expr.R.String() }
func (expr Or) String() string          { return expr.L.String() + " || " + expr.R.String() }
func (expr Unary) String() string       { return expr.Op + "(" + expr.X.String() + ")" }
func (expr Binary) String() string      { return fmt.Sprintf("(%s %s %s)", expr.Left, expr.Op, expr.Right) }
func (expr Ident) String() string       { return string(expr) }
func (expr ConstantInt) String() string { return fmt.Sprintf("%d", expr) }
func (expr Conditional) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", expr.Cond, expr.Then, expr.Else)
}
func (expr Apply) String() string {
	return fmt.Sprintf("%s(%s)", expr.Name, strings.Join(expr.Args, ", "))
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (expr Defined) Eval(macros macro.Table) (int64, error) {
	_, exists := macros.Find(string(expr.Name))
	return boolToInt(exists), nil
}

func (expr Compare) Eval(macros macro.Table) (int64, error) {
	lv, err := expr.Left.Eval(macros)
	if err != nil {
		return 0, err
	}
	rv, err := expr.Right.Eval(macros)
	if err != nil {
		return 0, err
	}
	switch expr.Op {
	case "==":
		return boolToInt(lv == rv), nil
	case "!=":
		return boolToInt(lv != rv), nil
	case "<":
		return boolToInt(lv < rv), nil
	case "<=":
		return boolToInt(lv <= rv), nil
	case ">":
		return boolToInt(lv > rv), nil
	case ">=":
		return boolToInt(lv >= rv), nil
	default:
		panic(fmt.Sprintf("unknown compare operation type: %v", expr))
	}
}

func (expr Not) Eval(macros macro.Table) (int64, error) {
	v, err := expr.X.Eval(macros)
	return boolToInt(v == 0), err
}

// And and Or short-circuit: the right operand is not evaluated (and cannot fail) when the left one decides.
func (expr And) Eval(macros macro.Table) (int64, error) {
	if l, err := expr.L.Eval(macros); err != nil || l == 0 {
		return 0, err
	}
	r, err := expr.R.Eval(macros)
	return boolToInt(r != 0), err
}

func (expr Or) Eval(macros macro.Table) (int64, error) {
	if l, err := expr.L.Eval(macros); err != nil || l != 0 {
		return boolToInt(err == nil), err
	}
	r, err := expr.R.Eval(macros)
	return boolToInt(r != 0), err
}

func (expr Unary) Eval(macros macro.Table) (int64, error) {
	v, err := expr.X.Eval(macros)
	if err != nil {
		return 0, err
	}
	switch expr.Op {
	case "-":
		return -v, nil
	case "+":
		return v, nil
	case "~":
		return ^v, nil
	default:
		panic(fmt.Sprintf("unknown unary operation type: %v", expr))
	}
}

func (expr Binary) Eval(macros macro.Table) (int64, error) {
	lv, err := expr.Left.Eval(macros)
	if err != nil {
		return 0, err
	}
	rv, err := expr.Right.Eval(macros)
	if err != nil {
		return 0, err
	}
	switch expr.Op {
	case "+":
		return lv + rv, nil
	case "-":
		return lv - rv, nil
	case "*":
		return lv * rv, nil
	case "/", "%":
		if rv == 0 {
			return 0, fmt.Errorf("%v: %w", expr, ErrDivisionByZero)
		}
		if expr.Op == "/" {
			return lv / rv, nil
		}
		return lv % rv, nil
	case "<<":
		return lv << uint64(rv&63), nil
	case ">>":
		return lv >> uint64(rv&63), nil
	case "&":
		return lv & rv, nil
	case "^":
		return lv ^ rv, nil
	case "|":
		return lv | rv, nil
	default:
		panic(fmt.Sprintf("unknown binary operation type: %v", expr))
	}
}

func (expr Conditional) Eval(macros macro.Table) (int64, error) {
	cond, err := expr.Cond.Eval(macros)
	if err != nil {
		return 0, err
	}
	if cond != 0 {
		return expr.Then.Eval(macros)
	}
	return expr.Else.Eval(macros)
}

// Apply evaluates to 0: no feature-test function is known to be supported.
func (expr Apply) Eval(macro.Table) (int64, error) { return 0, nil }

func (expr Ident) Eval(macro.Table) (int64, error) { return 0, nil }

func (expr ConstantInt) Eval(macro.Table) (int64, error) { return int64(expr), nil }

// Holds reports whether the condition evaluates to a non-zero value.
func Holds(expr Expr, macros macro.Table) (bool, error) {
	v, err := expr.Eval(macros)
	return v != 0, err
}
