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
	"slices"

	"github.com/EngFlow/ccexpand/language/internal/cc/diagnostic"
	"github.com/EngFlow/ccexpand/language/internal/cc/lexer"
	"github.com/EngFlow/ccexpand/language/internal/cc/parser"
)

// conditionalBlock tracks one #if ... #endif block. Blocks nested in an
// inactive region are never active.
type conditionalBlock struct {
	keyword      lexer.Token // opening directive
	parentActive bool
	active       bool // lines of the current branch are processed
	taken        bool // an earlier or the current branch was active
	inElse       bool
}

func (r *run) conditional(d parser.ConditionalDirective) error {
	if d.Kind == parser.IfBranch {
		holds, err := r.holds(d)
		if err != nil {
			return err
		}
		r.conditions.Push(&conditionalBlock{keyword: d.Keyword, parentActive: true, active: holds, taken: holds})
		return nil
	}

	if r.conditions.Empty() {
		return r.fail(diagnostic.Kind_InvalidDirective, d.Keyword, "#%s without #if", d.Keyword.Content)
	}
	block := r.conditions.Peek()
	switch d.Kind {
	case parser.ElifBranch:
		if block.inElse {
			return r.fail(diagnostic.Kind_InvalidDirective, d.Keyword, "#%s after #else", d.Keyword.Content)
		}
		if !block.parentActive || block.taken {
			block.active = false
			return nil
		}
		holds, err := r.holds(d)
		if err != nil {
			return err
		}
		block.active, block.taken = holds, holds
	case parser.ElseBranch:
		if block.inElse {
			return r.fail(diagnostic.Kind_InvalidDirective, d.Keyword, "#else after #else")
		}
		block.inElse = true
		block.active = block.parentActive && !block.taken
		block.taken = true
	case parser.EndifBranch:
		r.conditions.Pop()
	}
	return nil
}

// holds evaluates the condition of an #if family directive against the
// current macro table.
func (r *run) holds(d parser.ConditionalDirective) (bool, error) {
	if d.Condition == nil {
		_, defined := r.macros.Find(d.Name)
		return defined != d.Negated, nil
	}

	expanded, err := r.expander.Expand(r.protectDefinedOperands(d.Condition))
	if err != nil {
		return false, err
	}
	expr, err := parser.ParseExpr(expanded)
	if err != nil {
		return false, r.fail(diagnostic.Kind_InvalidCondition, d.Keyword,
			"#%s %s: %v", d.Keyword.Content, lexer.Concat(d.Condition), err)
	}
	holds, err := parser.Holds(expr, r.macros)
	if err != nil {
		return false, r.fail(diagnostic.Kind_InvalidCondition, d.Keyword,
			"#%s %s: %v", d.Keyword.Content, lexer.Concat(d.Condition), err)
	}
	return holds, nil
}

// protectDefinedOperands marks the operands of 'defined' so that macro
// expansion leaves them alone.
func (r *run) protectDefinedOperands(condition []lexer.Token) []lexer.Token {
	protected := slices.Clone(condition)
	for i := 0; i < len(protected); i++ {
		if protected[i].Type != lexer.TokenType_Identifier || protected[i].Content != "defined" {
			continue
		}
		j := nextSignificant(protected, i+1)
		if j < len(protected) && protected[j].Type == lexer.TokenType_ParenthesisLeft {
			j = nextSignificant(protected, j+1)
		}
		if j < len(protected) && protected[j].Type == lexer.TokenType_Identifier {
			operand := protected[j]
			protected[j] = r.tokens.CreateCustomToken(operand, operand.Type, operand.Content,
				operand.Flags|lexer.TokenFlag_NoFurtherExpansion)
			i = j
		}
	}
	return protected
}

func nextSignificant(tokens []lexer.Token, index int) int {
	for index < len(tokens) && tokens[index].IsWhitespace() {
		index++
	}
	return index
}
