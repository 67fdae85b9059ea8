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

// Package program defines the matcher program: the flattened decision
// tables a compiled scanner executes one input byte at a time.
//
// Every node of a program defines exactly one action for each of the 256
// byte values and for the end of the input. Programs are immutable once
// built and safe to share between any number of concurrent lexers.
package program

import (
	"errors"
	"fmt"

	"github.com/EngFlow/bytelex/token"
)

type (
	NodeID int32

	Op uint8

	// Action is what a node does with the next input byte (or with the end
	// of the input).
	Action struct {
		Op Op
		// Node to continue at, for OpGoto.
		Target NodeID
		// Kind of the token, for OpAccept and OpFail.
		Kind token.Kind
	}

	Node struct {
		Table [256]Action
		EOF   Action
	}

	Program struct {
		Vocabulary token.Vocabulary
		Nodes      []Node
	}

	// Transition is a run of consecutive bytes sharing the same action.
	Transition struct {
		Lo, Hi byte
		Action Action
	}
)

// Root is both the initial node and the node re-entered after every token.
const Root NodeID = 0

const (
	// Zero value, never part of a valid program.
	OpNone Op = iota
	// Consume the byte and continue at Target.
	OpGoto
	// Stop and emit Kind without consuming the byte, which belongs to the
	// next token.
	OpAccept
	// Consume the byte and emit Kind (the error kind). Root only, so an
	// unrecognized byte always makes progress.
	OpFail
	// Consume the byte and start the token anew after it. Root only.
	OpSkip
)

var ErrInvalidProgram = errors.New("invalid matcher program")

func (op Op) String() string {
	switch op {
	case OpGoto:
		return "goto"
	case OpAccept:
		return "accept"
	case OpFail:
		return "fail"
	case OpSkip:
		return "skip"
	default:
		return "none"
	}
}

func parseOp(s string) (Op, error) {
	for _, op := range []Op{OpGoto, OpAccept, OpFail, OpSkip} {
		if op.String() == s {
			return op, nil
		}
	}
	return OpNone, fmt.Errorf("%w: unknown op %q", ErrInvalidProgram, s)
}

func Goto(target NodeID) Action {
	return Action{Op: OpGoto, Target: target}
}

func Accept(kind token.Kind) Action {
	return Action{Op: OpAccept, Kind: kind}
}

func Fail(kind token.Kind) Action {
	return Action{Op: OpFail, Kind: kind}
}

func Skip() Action {
	return Action{Op: OpSkip}
}

// Format renders the action using the kind names of vocabulary.
func (a Action) Format(vocabulary token.Vocabulary) string {
	switch a.Op {
	case OpGoto:
		return fmt.Sprintf("goto %d", a.Target)
	case OpAccept, OpFail:
		return fmt.Sprintf("%v %s", a.Op, vocabulary.Name(a.Kind))
	default:
		return a.Op.String()
	}
}

// Ranges compresses the table of node id into runs of equal actions,
// covering 0-255 in order.
func (p *Program) Ranges(id NodeID) []Transition {
	table := &p.Nodes[id].Table
	var result []Transition
	for b := 0; b < len(table); b++ {
		if n := len(result); n > 0 && result[n-1].Action == table[b] {
			result[n-1].Hi = byte(b)
			continue
		}
		result = append(result, Transition{Lo: byte(b), Hi: byte(b), Action: table[b]})
	}
	return result
}

// Validate checks that the program is total and can only make progress:
// every node defines a valid action for every byte and for the end of the
// input, the root never accepts a token without consuming a byte and ends
// the input with the end kind.
func (p *Program) Validate() error {
	v := p.Vocabulary
	if len(p.Nodes) == 0 {
		return fmt.Errorf("%w: no nodes", ErrInvalidProgram)
	}
	if !v.Contains(v.Error) || !v.Contains(v.End) || v.Error == v.End {
		return fmt.Errorf("%w: invalid sentinel kinds %v and %v for %d kinds", ErrInvalidProgram, v.Error, v.End, v.Size())
	}
	seen := make(map[string]bool, v.Size())
	for _, name := range v.Names {
		if seen[name] {
			return fmt.Errorf("%w: kind %q declared twice", ErrInvalidProgram, name)
		}
		seen[name] = true
	}

	for i := range p.Nodes {
		id := NodeID(i)
		node := &p.Nodes[i]
		for b, action := range node.Table {
			if err := p.checkAction(id, action, false); err != nil {
				return fmt.Errorf("%w: node %d, byte %#02x: %v", ErrInvalidProgram, id, b, err)
			}
		}
		if err := p.checkAction(id, node.EOF, true); err != nil {
			return fmt.Errorf("%w: node %d, end of input: %v", ErrInvalidProgram, id, err)
		}
	}

	if eof := p.Nodes[Root].EOF; eof != Accept(v.End) {
		return fmt.Errorf("%w: root must end the input with %q, got %s", ErrInvalidProgram, v.Name(v.End), eof.Format(v))
	}
	return nil
}

func (p *Program) checkAction(id NodeID, a Action, eof bool) error {
	v := p.Vocabulary
	switch a.Op {
	case OpGoto:
		if eof {
			return errors.New("goto without input")
		}
		if a.Target < 0 || int(a.Target) >= len(p.Nodes) {
			return fmt.Errorf("goto to unknown node %d", a.Target)
		}
	case OpAccept:
		if !v.Contains(a.Kind) {
			return fmt.Errorf("accept of unknown %v", a.Kind)
		}
		if id == Root && !eof {
			return errors.New("root accepts an empty token")
		}
	case OpFail:
		if eof || id != Root {
			return errors.New("fail outside of the root")
		}
		if a.Kind != v.Error {
			return fmt.Errorf("fail emits %s instead of the error kind", v.Name(a.Kind))
		}
	case OpSkip:
		if eof || id != Root {
			return errors.New("skip outside of the root")
		}
	default:
		return errors.New("undefined action")
	}
	return nil
}
