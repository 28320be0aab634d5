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

package lexer

// TokenFactory manufactures tokens that do not come from the lexer, e.g. the
// result of stringification or token pasting. The new token takes its origin
// (file and location) from template.
type TokenFactory interface {
	CreateCustomToken(template Token, tokenType TokenType, content string, flags TokenFlags) Token
}

// Arena is a TokenFactory owning every custom token created during one
// preprocessing run. It is not safe for concurrent use.
type Arena struct {
	custom []Token
}

var _ TokenFactory = (*Arena)(nil)

func NewArena() *Arena {
	return &Arena{}
}

func (a *Arena) CreateCustomToken(template Token, tokenType TokenType, content string, flags TokenFlags) Token {
	token := Token{
		Type:     tokenType,
		Location: template.Location,
		File:     template.File,
		Content:  content,
		Flags:    flags,
	}
	a.custom = append(a.custom, token)
	return token
}

// Len returns the number of custom tokens created so far. It never decreases.
func (a *Arena) Len() int {
	return len(a.custom)
}

// Tokens returns the custom tokens in creation order.
func (a *Arena) Tokens() []Token {
	return a.custom
}
