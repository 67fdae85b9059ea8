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

package compiler

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/EngFlow/bytelex/pattern"
	"github.com/EngFlow/bytelex/token"
)

var ErrAmbiguousPattern = errors.New("ambiguous patterns")

type (
	nodeID int

	// Records that a pattern ends at a node.
	terminal struct {
		kind    token.Kind
		literal bool
		source  string
	}

	edge struct {
		rng    pattern.ByteRange
		target nodeID
	}

	trieNode struct {
		// Sorted by range, pairwise disjoint.
		edges []edge
		// Every pattern ending here, in insertion order.
		terminals []terminal
		// Resolved outcome, set once all patterns are inserted.
		accept    token.Kind
		accepting bool
	}

	// Shared decision structure of all patterns. Nodes live in an arena and
	// are never modified once built: inserting a pattern produces new nodes
	// for every path it changes and reuses the untouched ones, so a node may
	// be the target of several edges, including its own.
	trie struct {
		nodes []trieNode
		root  nodeID
	}
)

const noNode nodeID = -1

func newTrie() *trie {
	t := &trie{}
	t.root = t.newNode()
	return t
}

func (t *trie) newNode() nodeID {
	t.nodes = append(t.nodes, trieNode{})
	return nodeID(len(t.nodes) - 1)
}

// Return the target of the edge of n containing b, or noNode.
func (t *trie) target(n nodeID, b byte) nodeID {
	if n == noNode {
		return noNode
	}
	edges := t.nodes[n].edges
	i, found := slices.BinarySearchFunc(edges, b, func(e edge, b byte) int {
		switch {
		case e.rng.Hi < b:
			return -1
		case e.rng.Lo > b:
			return 1
		default:
			return 0
		}
	})
	if !found {
		return noNode
	}
	return edges[i].target
}

// Append an edge, extending the last one when it is adjacent and leads to the
// same node.
func appendEdge(edges []edge, rng pattern.ByteRange, target nodeID) []edge {
	if n := len(edges); n > 0 {
		last := &edges[n-1]
		if last.target == target && int(last.rng.Hi)+1 == int(rng.Lo) {
			last.rng.Hi = rng.Hi
			return edges
		}
	}
	return append(edges, edge{rng: rng, target: target})
}

// Split 0-255 at every boundary of the given ranges. Within each returned
// range, every byte is either inside or outside each of the input ranges.
func elementaryRanges(ranges []pattern.ByteRange) []pattern.ByteRange {
	var cuts [257]bool
	cuts[0], cuts[256] = true, true
	for _, r := range ranges {
		cuts[r.Lo] = true
		cuts[int(r.Hi)+1] = true
	}

	var result []pattern.ByteRange
	lo := 0
	for i := 1; i <= 256; i++ {
		if cuts[i] {
			result = append(result, pattern.ByteRange{Lo: byte(lo), Hi: byte(i - 1)})
			lo = i
		}
	}
	return result
}

// inserter merges one pattern into the trie.
//
// A pattern is tracked as a set of positions within its steps: position i
// means steps[:i] have been consumed, position len(steps) means the pattern
// matched. A zero-or-more step keeps its position when consuming a byte and
// may also be skipped without consuming anything, so a set can hold several
// positions at once.
type inserter struct {
	t     *trie
	steps []pattern.Step
	term  terminal
	// Already merged (existing node, position set) pairs. Revisiting a pair
	// closes a loop, which is how repeated steps end up as self-loops.
	memo map[memoKey]nodeID
}

type memoKey struct {
	existing  nodeID
	positions string
}

// The new root is built outside of the memo: a pattern starting with a
// repeated step loops on a copy of the root, never on the root itself, which
// the compiled program treats differently from any other node.
func (t *trie) insert(steps []pattern.Step, term terminal) {
	ins := &inserter{t: t, steps: steps, term: term, memo: make(map[memoKey]nodeID)}
	root := t.newNode()
	ins.build(root, t.root, ins.closure(nil, 0))
	t.root = root
}

// Add position p to positions, along with every position reachable from it
// by skipping zero-or-more steps.
func (ins *inserter) closure(positions []int, p int) []int {
	for {
		positions = append(positions, p)
		if p == len(ins.steps) || !ins.steps[p].Repeat {
			return positions
		}
		p++
	}
}

// Return the positions reached from positions by consuming b.
func (ins *inserter) advance(positions []int, b byte) []int {
	var next []int
	for _, p := range positions {
		if p == len(ins.steps) || !ins.steps[p].Set.Contains(b) {
			continue
		}
		if ins.steps[p].Repeat {
			next = ins.closure(next, p)
		} else {
			next = ins.closure(next, p+1)
		}
	}
	slices.Sort(next)
	return slices.Compact(next)
}

func positionsKey(positions []int) string {
	var sb strings.Builder
	for _, p := range positions {
		sb.WriteString(strconv.Itoa(p))
		sb.WriteByte(',')
	}
	return sb.String()
}

// Build the node accepting everything the existing node accepts plus the rest
// of the pattern from positions. The existing node may be noNode.
func (ins *inserter) merge(existing nodeID, positions []int) nodeID {
	key := memoKey{existing: existing, positions: positionsKey(positions)}
	if id, ok := ins.memo[key]; ok {
		return id
	}
	id := ins.t.newNode()
	ins.memo[key] = id
	ins.build(id, existing, positions)
	return id
}

// Fill in node id as the merge of existing and positions.
func (ins *inserter) build(id, existing nodeID, positions []int) {
	t := ins.t
	var (
		terminals []terminal
		bounds    []pattern.ByteRange
	)
	if existing != noNode {
		terminals = slices.Clone(t.nodes[existing].terminals)
		for _, e := range t.nodes[existing].edges {
			bounds = append(bounds, e.rng)
		}
	}
	for _, p := range positions {
		if p == len(ins.steps) {
			if !slices.Contains(terminals, ins.term) {
				terminals = append(terminals, ins.term)
			}
			continue
		}
		bounds = append(bounds, ins.steps[p].Set...)
	}

	var edges []edge
	for _, rng := range elementaryRanges(bounds) {
		old := t.target(existing, rng.Lo)
		next := ins.advance(positions, rng.Lo)
		switch {
		case len(next) == 0 && old == noNode:
			continue
		case len(next) == 0:
			// The pattern does not continue on these bytes, keep the
			// existing subtree as it is.
			edges = appendEdge(edges, rng, old)
		default:
			edges = appendEdge(edges, rng, ins.merge(old, next))
		}
	}

	t.nodes[id].edges = edges
	t.nodes[id].terminals = terminals
}

// finish drops the nodes no longer reachable from the root, renumbering the
// rest in breadth-first order (the root becomes 0), and resolves the outcome
// of every node where patterns end.
//
// A literal pattern outranks a regex pattern ending at the same node, so the
// keyword "in" wins over an identifier class matching the same bytes. Two
// patterns of equal rank and different kinds ending at the same node cannot
// be told apart and fail with ErrAmbiguousPattern, independently of the order
// they were declared in.
func (t *trie) finish(vocabulary token.Vocabulary) error {
	order := []nodeID{t.root}
	renumbered := map[nodeID]nodeID{t.root: 0}
	// Shortest input reaching each node, for error messages.
	witness := map[nodeID]string{t.root: ""}
	for i := 0; i < len(order); i++ {
		for _, e := range t.nodes[order[i]].edges {
			if _, seen := renumbered[e.target]; !seen {
				renumbered[e.target] = nodeID(len(order))
				witness[e.target] = witness[order[i]] + string([]byte{e.rng.Lo})
				order = append(order, e.target)
			}
		}
	}

	nodes := make([]trieNode, len(order))
	for i, old := range order {
		n := t.nodes[old]
		edges := make([]edge, len(n.edges))
		for j, e := range n.edges {
			edges[j] = edge{rng: e.rng, target: renumbered[e.target]}
		}
		nodes[i] = trieNode{edges: edges, terminals: n.terminals}

		kind, err := resolveTerminals(n.terminals, vocabulary)
		switch {
		case err != nil:
			return fmt.Errorf("%w: both match %q", err, witness[old])
		case kind != nil:
			nodes[i].accept, nodes[i].accepting = *kind, true
		}
	}

	t.nodes = nodes
	t.root = 0
	return nil
}

func resolveTerminals(terminals []terminal, vocabulary token.Vocabulary) (*token.Kind, error) {
	if len(terminals) == 0 {
		return nil, nil
	}

	candidates := terminals
	if slices.ContainsFunc(terminals, func(t terminal) bool { return t.literal }) {
		candidates = slices.DeleteFunc(slices.Clone(terminals), func(t terminal) bool { return !t.literal })
	}
	winner := candidates[0]
	for _, other := range candidates[1:] {
		if other.kind != winner.kind {
			return nil, fmt.Errorf("%w: %s (%q) and %s (%q)",
				ErrAmbiguousPattern,
				vocabulary.Name(winner.kind), winner.source,
				vocabulary.Name(other.kind), other.source)
		}
	}
	return &winner.kind, nil
}

// minimize merges nodes that behave identically on every input, by
// partition refinement. The root keeps its own class because the compiled
// program treats it differently (skipped bytes, errors consuming a byte).
// Must be called after finish.
func (t *trie) minimize() {
	classes := make([]int, len(t.nodes))
	count := t.refine(classes, func(id nodeID) string {
		n := t.nodes[id]
		return fmt.Sprintf("%t/%t/%d", id == t.root, n.accepting, n.accept)
	})
	for {
		previous := slices.Clone(classes)
		next := t.refine(classes, func(id nodeID) string {
			var sb strings.Builder
			fmt.Fprintf(&sb, "%d:", previous[id])
			for _, e := range t.classEdges(id, previous) {
				fmt.Fprintf(&sb, "%d-%d>%d,", e.rng.Lo, e.rng.Hi, e.target)
			}
			return sb.String()
		})
		if next == count {
			break
		}
		count = next
	}

	nodes := make([]trieNode, count)
	built := make([]bool, count)
	for id := range t.nodes {
		class := classes[id]
		if built[class] {
			continue
		}
		built[class] = true
		n := t.nodes[id]
		nodes[class] = trieNode{
			edges:     t.classEdges(nodeID(id), classes),
			terminals: n.terminals,
			accept:    n.accept,
			accepting: n.accepting,
		}
	}
	t.nodes = nodes
	t.root = nodeID(classes[t.root])
}

// Assign classes by signature, numbered in order of first appearance so the
// root (node 0) stays in class 0. Returns the number of classes.
func (t *trie) refine(classes []int, signature func(nodeID) string) int {
	ids := make(map[string]int)
	for id := range t.nodes {
		sig := signature(nodeID(id))
		class, ok := ids[sig]
		if !ok {
			class = len(ids)
			ids[sig] = class
		}
		classes[id] = class
	}
	return len(ids)
}

// Edges of id with targets replaced by their classes, coalesced.
func (t *trie) classEdges(id nodeID, classes []int) []edge {
	var edges []edge
	for _, e := range t.nodes[id].edges {
		edges = appendEdge(edges, e.rng, nodeID(classes[e.target]))
	}
	return edges
}
