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
	"fmt"

	"github.com/EngFlow/bytelex/token"
)

type Token struct {
	Kind token.Kind
	// Byte offsets of the token in the source, End exclusive.
	Start, End int
	Location   Cursor
	Content    string
}

// Format renders the token with the kind names of vocabulary, e.g.
// `Identifier "foo" at 1:5`.
func (t Token) Format(vocabulary token.Vocabulary) string {
	return fmt.Sprintf("%s %q at %v", vocabulary.Name(t.Kind), t.Content, t.Location)
}
