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
	"fmt"
	"strings"
	"unicode/utf8"
)

// Cursor is a 1-based line/column position in a source file. Columns count
// runes, not bytes.
type Cursor struct {
	Line, Column int
}

var (
	// Initial cursor position, at the beginning of the file or string.
	CursorInit = Cursor{Line: 1, Column: 1}
	// Special cursor value for tokens without a position in the source.
	CursorEOF = Cursor{}
)

func (c Cursor) String() string {
	if c == CursorEOF {
		return "EOF"
	}
	return fmt.Sprintf("%d:%d", c.Line, c.Column)
}

// AdvancedBy returns the position right after lookAhead, assuming lookAhead
// starts at c.
func (c Cursor) AdvancedBy(lookAhead string) Cursor {
	newlinesCount := strings.Count(lookAhead, "\n")
	if newlinesCount == 0 {
		c.Column += utf8.RuneCountInString(lookAhead)
		return c
	}

	tail := lookAhead[strings.LastIndexByte(lookAhead, '\n')+1:]
	c.Line += newlinesCount
	c.Column = 1 + utf8.RuneCountInString(tail)
	return c
}
