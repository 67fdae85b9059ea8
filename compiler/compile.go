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

// Package compiler turns token declarations into a matcher program.
//
// Compilation runs in three stages. Every pattern is parsed into steps, all
// step sequences are merged into one shared trie whose edges are disjoint
// byte ranges, and the trie is flattened into per-byte decision tables. The
// resulting scanner always extends a token as far as the patterns allow
// (longest match) and never backtracks.
package compiler

import (
	"fmt"

	"github.com/EngFlow/bytelex/decl"
	"github.com/EngFlow/bytelex/pattern"
	"github.com/EngFlow/bytelex/program"
	"github.com/EngFlow/bytelex/token"
)

type Config struct {
	// Merge nodes that behave identically, producing a smaller program with
	// the same behavior.
	Minimize bool
}

// Compile builds the matcher program for d. It fails on the first malformed
// pattern or ambiguity; no partial program is ever returned.
func Compile(d *decl.Declarations, cfg Config) (*program.Program, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	v := d.Vocabulary

	t := newTrie()
	for _, p := range d.Patterns {
		steps, err := pattern.Parse(p.Source, p.Dialect)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", v.Name(p.Kind), err)
		}
		t.insert(steps, terminal{kind: p.Kind, literal: p.Dialect == pattern.Literal, source: p.Source})
	}

	if err := t.finish(v); err != nil {
		return nil, err
	}
	if cfg.Minimize {
		t.minimize()
	}
	return flatten(t, v, d.Skip), nil
}

// Derive the action tables of every trie node. At each node and byte, an
// edge containing the byte wins (longest match), then the node's accepted
// kind, which leaves the byte to the next token. At the root, bytes of skip
// are discarded and any other byte becomes a one-byte error token; inside a
// partial match, the bytes consumed so far become the error token.
func flatten(t *trie, v token.Vocabulary, skip pattern.ByteSet) *program.Program {
	nodes := make([]program.Node, len(t.nodes))
	for i, n := range t.nodes {
		isRoot := nodeID(i) == t.root
		node := &nodes[i]

		var fallback program.Action
		switch {
		case n.accepting:
			fallback = program.Accept(n.accept)
			node.EOF = program.Accept(n.accept)
		case isRoot:
			fallback = program.Fail(v.Error)
			node.EOF = program.Accept(v.End)
		default:
			fallback = program.Accept(v.Error)
			node.EOF = program.Accept(v.Error)
		}

		for b := range node.Table {
			node.Table[b] = fallback
			if isRoot && skip.Contains(byte(b)) {
				node.Table[b] = program.Skip()
			}
		}
		for _, e := range n.edges {
			for b := int(e.rng.Lo); b <= int(e.rng.Hi); b++ {
				node.Table[b] = program.Goto(program.NodeID(e.target))
			}
		}
	}
	return &program.Program{Vocabulary: v, Nodes: nodes}
}
