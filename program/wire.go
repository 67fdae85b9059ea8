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
	"encoding"
	"fmt"

	"github.com/EngFlow/bytelex/token"
	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the binary encoding, which follows the protobuf wire
// format:
//
//	message Program    { repeated string kinds = 1; int32 error = 2; int32 end = 3; repeated Node nodes = 4; }
//	message Node       { Transition eof = 1; repeated Transition table = 2; }
//	message Transition { int32 lo = 1; int32 hi = 2; int32 op = 3; int32 target = 4; int32 kind = 5; }
//
// The eof transition leaves lo and hi unset.
const (
	fieldProgramKinds protowire.Number = 1
	fieldProgramError protowire.Number = 2
	fieldProgramEnd   protowire.Number = 3
	fieldProgramNodes protowire.Number = 4

	fieldNodeEOF   protowire.Number = 1
	fieldNodeTable protowire.Number = 2

	fieldTransitionLo     protowire.Number = 1
	fieldTransitionHi     protowire.Number = 2
	fieldTransitionOp     protowire.Number = 3
	fieldTransitionTarget protowire.Number = 4
	fieldTransitionKind   protowire.Number = 5
)

var (
	_ encoding.BinaryMarshaler   = (*Program)(nil)
	_ encoding.BinaryUnmarshaler = (*Program)(nil)
)

func appendVarintField(b []byte, num protowire.Number, value uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, value)
}

func appendBytesField(b []byte, num protowire.Number, value []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, value)
}

func appendAction(b []byte, a Action) []byte {
	b = appendVarintField(b, fieldTransitionOp, uint64(a.Op))
	switch a.Op {
	case OpGoto:
		b = appendVarintField(b, fieldTransitionTarget, uint64(a.Target))
	case OpAccept, OpFail:
		b = appendVarintField(b, fieldTransitionKind, uint64(a.Kind))
	}
	return b
}

func (p *Program) MarshalBinary() ([]byte, error) {
	var b []byte
	for _, name := range p.Vocabulary.Names {
		b = protowire.AppendTag(b, fieldProgramKinds, protowire.BytesType)
		b = protowire.AppendString(b, name)
	}
	b = appendVarintField(b, fieldProgramError, uint64(p.Vocabulary.Error))
	b = appendVarintField(b, fieldProgramEnd, uint64(p.Vocabulary.End))

	for i := range p.Nodes {
		var node []byte
		node = appendBytesField(node, fieldNodeEOF, appendAction(nil, p.Nodes[i].EOF))
		for _, tr := range p.Ranges(NodeID(i)) {
			var msg []byte
			msg = appendVarintField(msg, fieldTransitionLo, uint64(tr.Lo))
			msg = appendVarintField(msg, fieldTransitionHi, uint64(tr.Hi))
			msg = appendAction(msg, tr.Action)
			node = appendBytesField(node, fieldNodeTable, msg)
		}
		b = appendBytesField(b, fieldProgramNodes, node)
	}
	return b, nil
}

// Walk the fields of one message, calling visit for each. Unknown fields are
// skipped by returning a negative length from visit.
func consumeFields(data []byte, visit func(num protowire.Number, typ protowire.Type, data []byte) int) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrInvalidProgram, protowire.ParseError(n))
		}
		data = data[n:]

		n = visit(num, typ, data)
		if n == skipField {
			n = protowire.ConsumeFieldValue(num, typ, data)
		}
		if n < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrInvalidProgram, num, protowire.ParseError(n))
		}
		data = data[n:]
	}
	return nil
}

// Returned by field visitors for fields they do not handle.
const skipField = -1 << 30

func consumeVarint(typ protowire.Type, data []byte, value *uint64) int {
	if typ != protowire.VarintType {
		return skipField
	}
	v, n := protowire.ConsumeVarint(data)
	*value = v
	return n
}

func consumeBytes(typ protowire.Type, data []byte, value *[]byte) int {
	if typ != protowire.BytesType {
		return skipField
	}
	v, n := protowire.ConsumeBytes(data)
	*value = v
	return n
}

type wireTransition struct {
	lo, hi, op, target, kind uint64
	hasRange                 bool
}

func decodeTransition(data []byte) (wireTransition, error) {
	var tr wireTransition
	err := consumeFields(data, func(num protowire.Number, typ protowire.Type, data []byte) int {
		switch num {
		case fieldTransitionLo:
			tr.hasRange = true
			return consumeVarint(typ, data, &tr.lo)
		case fieldTransitionHi:
			tr.hasRange = true
			return consumeVarint(typ, data, &tr.hi)
		case fieldTransitionOp:
			return consumeVarint(typ, data, &tr.op)
		case fieldTransitionTarget:
			return consumeVarint(typ, data, &tr.target)
		case fieldTransitionKind:
			return consumeVarint(typ, data, &tr.kind)
		default:
			return skipField
		}
	})
	return tr, err
}

func (tr wireTransition) action() (Action, error) {
	if tr.op > uint64(OpSkip) || tr.target > 1<<31-1 || tr.kind > 1<<31-1 {
		return Action{}, fmt.Errorf("%w: malformed action %+v", ErrInvalidProgram, tr)
	}
	return Action{Op: Op(tr.op), Target: NodeID(tr.target), Kind: token.Kind(tr.kind)}, nil
}

func decodeNode(data []byte) (Node, error) {
	var (
		node  Node
		eof   []byte
		table [][]byte
	)
	err := consumeFields(data, func(num protowire.Number, typ protowire.Type, data []byte) int {
		switch num {
		case fieldNodeEOF:
			return consumeBytes(typ, data, &eof)
		case fieldNodeTable:
			var msg []byte
			n := consumeBytes(typ, data, &msg)
			if n >= 0 {
				table = append(table, msg)
			}
			return n
		default:
			return skipField
		}
	})
	if err != nil {
		return Node{}, err
	}

	eofTransition, err := decodeTransition(eof)
	if err != nil {
		return Node{}, err
	}
	if node.EOF, err = eofTransition.action(); err != nil {
		return Node{}, err
	}

	next := uint64(0)
	for _, msg := range table {
		tr, err := decodeTransition(msg)
		if err != nil {
			return Node{}, err
		}
		if !tr.hasRange || tr.lo != next || tr.hi < tr.lo || tr.hi > 0xff {
			return Node{}, fmt.Errorf("%w: range %d-%d does not continue at %d", ErrInvalidProgram, tr.lo, tr.hi, next)
		}
		action, err := tr.action()
		if err != nil {
			return Node{}, err
		}
		for b := tr.lo; b <= tr.hi; b++ {
			node.Table[b] = action
		}
		next = tr.hi + 1
	}
	if next != 256 {
		return Node{}, fmt.Errorf("%w: table ends at %d", ErrInvalidProgram, next)
	}
	return node, nil
}

func (p *Program) UnmarshalBinary(data []byte) error {
	var (
		decoded    Program
		errorKind  uint64
		endKind    uint64
		nodeErr    error
		nodeFields int
	)
	err := consumeFields(data, func(num protowire.Number, typ protowire.Type, data []byte) int {
		switch num {
		case fieldProgramKinds:
			var name []byte
			n := consumeBytes(typ, data, &name)
			if n >= 0 {
				decoded.Vocabulary.Names = append(decoded.Vocabulary.Names, string(name))
			}
			return n
		case fieldProgramError:
			return consumeVarint(typ, data, &errorKind)
		case fieldProgramEnd:
			return consumeVarint(typ, data, &endKind)
		case fieldProgramNodes:
			var msg []byte
			n := consumeBytes(typ, data, &msg)
			if n >= 0 && nodeErr == nil {
				node, err := decodeNode(msg)
				if err != nil {
					nodeErr = fmt.Errorf("node %d: %w", nodeFields, err)
				}
				decoded.Nodes = append(decoded.Nodes, node)
			}
			nodeFields++
			return n
		default:
			return skipField
		}
	})
	if err != nil {
		return err
	}
	if nodeErr != nil {
		return nodeErr
	}
	if errorKind > 1<<31-1 || endKind > 1<<31-1 {
		return fmt.Errorf("%w: sentinel kinds out of range", ErrInvalidProgram)
	}
	decoded.Vocabulary.Error = token.Kind(errorKind)
	decoded.Vocabulary.End = token.Kind(endKind)

	if err := decoded.Validate(); err != nil {
		return err
	}
	*p = decoded
	return nil
}
