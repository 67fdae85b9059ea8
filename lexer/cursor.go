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

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

// Position in the source. Line and Column are 1-based, which is natural for humans. Columns count UTF-8 runes, so
// a multi-byte character advances the column by one.
type Cursor struct {
	Line, Column int
}

// Initial cursor position, at the beginning of the source.
var CursorInit = Cursor{Line: 1, Column: 1}

func (c Cursor) String() string {
	return fmt.Sprintf("%d:%d", c.Line, c.Column)
}

// Return a new Cursor advanced over consumed, which must start at the current cursor position.
//
// Newlines in consumed increment the line number and reset the column; other characters increment the column.
func (c Cursor) AdvancedBy(consumed []byte) Cursor {
	newlinesCount := bytes.Count(consumed, []byte("\n"))
	tailBegin := 1 + bytes.LastIndexByte(consumed, '\n')
	tailLength := utf8.RuneCount(consumed[tailBegin:])

	if newlinesCount == 0 {
		c.Column += tailLength
	} else {
		c.Line += newlinesCount
		c.Column = 1 + tailLength
	}

	return c
}
