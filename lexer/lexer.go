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

// Package lexer runs a compiled matcher program over a source, breaking it
// into a sequence of tokens in a single left-to-right pass.
//
// A Lexer always holds a current token, starting with the first one. Input
// no pattern recognizes becomes tokens of the error kind, so every byte
// sequence can be scanned to the end without failing.
package lexer

import (
	"iter"
	"slices"

	"github.com/EngFlow/bytelex/program"
	"github.com/EngFlow/bytelex/token"
)

// Lexer scans one source with one program. Lexers sharing a program are
// independent, but a single Lexer must not be used concurrently.
type Lexer struct {
	program *program.Program
	source  []byte

	kind       token.Kind
	start, end int
	location   Cursor
	// Position right after the current token.
	cursor Cursor
}

// New returns a Lexer positioned at the first token of source. The program
// must be valid, as returned by the compiler or the program decoders.
func New(p *program.Program, source []byte) *Lexer {
	lx := &Lexer{program: p}
	lx.Reset(source)
	return lx
}

func NewString(p *program.Program, source string) *Lexer {
	return New(p, []byte(source))
}

// Reset restarts scanning with a new source, reusing the Lexer.
func (lx *Lexer) Reset(source []byte) {
	lx.source = source
	lx.start, lx.end = 0, 0
	lx.location, lx.cursor = CursorInit, CursorInit
	lx.Advance()
}

func (lx *Lexer) Vocabulary() token.Vocabulary {
	return lx.program.Vocabulary
}

// Token returns the kind of the current token.
func (lx *Lexer) Token() token.Kind {
	return lx.kind
}

// Slice returns the source bytes of the current token.
func (lx *Lexer) Slice() []byte {
	return lx.source[lx.start:lx.end]
}

func (lx *Lexer) Text() string {
	return string(lx.Slice())
}

// Loc returns the byte offsets of the current token, end exclusive.
func (lx *Lexer) Loc() (start, end int) {
	return lx.start, lx.end
}

// Location returns the line and column the current token starts at.
func (lx *Lexer) Location() Cursor {
	return lx.location
}

func (lx *Lexer) Current() Token {
	return Token{Kind: lx.kind, Start: lx.start, End: lx.end, Location: lx.location, Content: lx.Text()}
}

// Advance scans the next token. Once the source is exhausted, the current
// token stays the end kind with an empty slice at the end of the source.
func (lx *Lexer) Advance() {
	nodes := lx.program.Nodes
	pos := lx.end
	start := pos
	node := program.Root
	for {
		var action program.Action
		if pos < len(lx.source) {
			action = nodes[node].Table[lx.source[pos]]
		} else {
			action = nodes[node].EOF
		}

		switch action.Op {
		case program.OpGoto:
			pos++
			node = action.Target
		case program.OpSkip:
			pos++
			start = pos
		case program.OpFail:
			lx.emit(action.Kind, start, pos+1)
			return
		default:
			lx.emit(action.Kind, start, pos)
			return
		}
	}
}

func (lx *Lexer) emit(kind token.Kind, start, end int) {
	lx.location = lx.cursor.AdvancedBy(lx.source[lx.end:start])
	lx.cursor = lx.location.AdvancedBy(lx.source[start:end])
	lx.kind, lx.start, lx.end = kind, start, end
}

// Consume returns the current token and advances to the next one.
func (lx *Lexer) Consume() Token {
	current := lx.Current()
	lx.Advance()
	return current
}

// Return the remaining tokens, up to but excluding the end of the source.
func (lx *Lexer) AllTokens() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for lx.kind != lx.program.Vocabulary.End {
			if !yield(lx.Consume()) {
				return
			}
		}
	}
}

// Return all remaining tokens extracted from the source.
func (lx *Lexer) Tokenize() []Token {
	return slices.Collect(lx.AllTokens())
}
