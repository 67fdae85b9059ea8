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

package program

import (
	"encoding/json"
	"fmt"

	"github.com/EngFlow/bytelex/token"
)

type (
	jsonAction struct {
		Op     string  `json:"op"`
		Target *NodeID `json:"target,omitempty"`
		Kind   string  `json:"kind,omitempty"`
	}

	jsonTransition struct {
		Lo byte `json:"lo"`
		Hi byte `json:"hi"`
		jsonAction
	}

	jsonNode struct {
		EOF   jsonAction       `json:"eof"`
		Table []jsonTransition `json:"table"`
	}

	jsonProgram struct {
		Kinds []string   `json:"kinds"`
		Error string     `json:"error"`
		End   string     `json:"end"`
		Nodes []jsonNode `json:"nodes"`
	}
)

var (
	_ json.Marshaler   = (*Program)(nil)
	_ json.Unmarshaler = (*Program)(nil)
)

func (p *Program) toJSONAction(a Action) jsonAction {
	result := jsonAction{Op: a.Op.String()}
	switch a.Op {
	case OpGoto:
		target := a.Target
		result.Target = &target
	case OpAccept, OpFail:
		result.Kind = p.Vocabulary.Name(a.Kind)
	}
	return result
}

func fromJSONAction(ja jsonAction, vocabulary token.Vocabulary) (Action, error) {
	op, err := parseOp(ja.Op)
	if err != nil {
		return Action{}, err
	}
	action := Action{Op: op}
	switch op {
	case OpGoto:
		if ja.Target == nil {
			return Action{}, fmt.Errorf("%w: goto without target", ErrInvalidProgram)
		}
		action.Target = *ja.Target
	case OpAccept, OpFail:
		kind, ok := vocabulary.Lookup(ja.Kind)
		if !ok {
			return Action{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidProgram, ja.Kind)
		}
		action.Kind = kind
	}
	return action, nil
}

// MarshalJSON encodes the program with kind names and range-compressed
// tables.
func (p *Program) MarshalJSON() ([]byte, error) {
	result := jsonProgram{
		Kinds: p.Vocabulary.Names,
		Error: p.Vocabulary.Name(p.Vocabulary.Error),
		End:   p.Vocabulary.Name(p.Vocabulary.End),
		Nodes: make([]jsonNode, len(p.Nodes)),
	}
	for i := range p.Nodes {
		node := jsonNode{EOF: p.toJSONAction(p.Nodes[i].EOF)}
		for _, tr := range p.Ranges(NodeID(i)) {
			node.Table = append(node.Table, jsonTransition{Lo: tr.Lo, Hi: tr.Hi, jsonAction: p.toJSONAction(tr.Action)})
		}
		result.Nodes[i] = node
	}
	return json.Marshal(result)
}

func (p *Program) UnmarshalJSON(data []byte) error {
	var input jsonProgram
	if err := json.Unmarshal(data, &input); err != nil {
		return err
	}

	vocabulary := token.Vocabulary{Names: input.Kinds}
	var ok bool
	if vocabulary.Error, ok = vocabulary.Lookup(input.Error); !ok {
		return fmt.Errorf("%w: unknown error kind %q", ErrInvalidProgram, input.Error)
	}
	if vocabulary.End, ok = vocabulary.Lookup(input.End); !ok {
		return fmt.Errorf("%w: unknown end kind %q", ErrInvalidProgram, input.End)
	}

	decoded := Program{Vocabulary: vocabulary, Nodes: make([]Node, len(input.Nodes))}
	for i, node := range input.Nodes {
		eof, err := fromJSONAction(node.EOF, vocabulary)
		if err != nil {
			return fmt.Errorf("node %d: %w", i, err)
		}
		decoded.Nodes[i].EOF = eof

		next := 0
		for _, tr := range node.Table {
			if int(tr.Lo) != next || tr.Hi < tr.Lo {
				return fmt.Errorf("%w: node %d: range %d-%d does not continue at %d", ErrInvalidProgram, i, tr.Lo, tr.Hi, next)
			}
			action, err := fromJSONAction(tr.jsonAction, vocabulary)
			if err != nil {
				return fmt.Errorf("node %d: %w", i, err)
			}
			for b := int(tr.Lo); b <= int(tr.Hi); b++ {
				decoded.Nodes[i].Table[b] = action
			}
			next = int(tr.Hi) + 1
		}
		if next != 256 {
			return fmt.Errorf("%w: node %d: table ends at %d", ErrInvalidProgram, i, next)
		}
	}

	if err := decoded.Validate(); err != nil {
		return err
	}
	*p = decoded
	return nil
}
