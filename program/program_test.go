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
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/EngFlow/bytelex/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	kindError token.Kind = iota
	kindEnd
	kindPlus
	kindIncrement
)

// A program recognizing "+" and "++", skipping spaces.
func samplePlus() *Program {
	p := &Program{
		Vocabulary: token.Vocabulary{Names: []string{"Error", "End", "Plus", "Increment"}, Error: kindError, End: kindEnd},
		Nodes:      make([]Node, 3),
	}
	root := &p.Nodes[Root]
	for b := range root.Table {
		root.Table[b] = Fail(kindError)
	}
	root.Table[' '] = Skip()
	root.Table['+'] = Goto(1)
	root.EOF = Accept(kindEnd)

	plus := &p.Nodes[1]
	for b := range plus.Table {
		plus.Table[b] = Accept(kindPlus)
	}
	plus.Table['+'] = Goto(2)
	plus.EOF = Accept(kindPlus)

	increment := &p.Nodes[2]
	for b := range increment.Table {
		increment.Table[b] = Accept(kindIncrement)
	}
	increment.EOF = Accept(kindIncrement)
	return p
}

func TestValidate(t *testing.T) {
	require.NoError(t, samplePlus().Validate())

	testCases := []struct {
		name   string
		modify func(p *Program)
	}{
		{name: "no nodes", modify: func(p *Program) { p.Nodes = nil }},
		{name: "undefined action", modify: func(p *Program) { p.Nodes[1].Table['x'] = Action{} }},
		{name: "undefined end of input", modify: func(p *Program) { p.Nodes[2].EOF = Action{} }},
		{name: "goto out of range", modify: func(p *Program) { p.Nodes[1].Table['+'] = Goto(3) }},
		{name: "negative goto", modify: func(p *Program) { p.Nodes[1].Table['+'] = Goto(-1) }},
		{name: "goto at end of input", modify: func(p *Program) { p.Nodes[1].EOF = Goto(2) }},
		{name: "accept of unknown kind", modify: func(p *Program) { p.Nodes[1].Table['x'] = Accept(7) }},
		{name: "root accepts an empty token", modify: func(p *Program) { p.Nodes[Root].Table['x'] = Accept(kindPlus) }},
		{name: "root ends with another kind", modify: func(p *Program) { p.Nodes[Root].EOF = Accept(kindError) }},
		{name: "fail outside of the root", modify: func(p *Program) { p.Nodes[1].Table['x'] = Fail(kindError) }},
		{name: "fail with another kind", modify: func(p *Program) { p.Nodes[Root].Table['x'] = Fail(kindPlus) }},
		{name: "skip outside of the root", modify: func(p *Program) { p.Nodes[2].Table[' '] = Skip() }},
		{name: "skip at end of input", modify: func(p *Program) { p.Nodes[Root].EOF = Skip() }},
		{name: "error kind out of range", modify: func(p *Program) { p.Vocabulary.Error = 4 }},
		{name: "same error and end kind", modify: func(p *Program) { p.Vocabulary.End = kindError }},
		{name: "duplicate kind names", modify: func(p *Program) { p.Vocabulary.Names[3] = "Plus" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := samplePlus()
			tc.modify(p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidProgram)
		})
	}
}

func TestRanges(t *testing.T) {
	p := samplePlus()
	assert.Equal(t, []Transition{
		{Lo: 0, Hi: ' ' - 1, Action: Fail(kindError)},
		{Lo: ' ', Hi: ' ', Action: Skip()},
		{Lo: ' ' + 1, Hi: '+' - 1, Action: Fail(kindError)},
		{Lo: '+', Hi: '+', Action: Goto(1)},
		{Lo: '+' + 1, Hi: 0xff, Action: Fail(kindError)},
	}, p.Ranges(Root))
	assert.Equal(t, []Transition{{Lo: 0, Hi: 0xff, Action: Accept(kindIncrement)}}, p.Ranges(2))
}

func TestActionFormat(t *testing.T) {
	v := samplePlus().Vocabulary
	assert.Equal(t, "goto 2", Goto(2).Format(v))
	assert.Equal(t, "accept Plus", Accept(kindPlus).Format(v))
	assert.Equal(t, "fail Error", Fail(kindError).Format(v))
	assert.Equal(t, "skip", Skip().Format(v))
	assert.Equal(t, "none", Action{}.Format(v))
}

func TestEncodeDecode(t *testing.T) {
	for _, name := range []string{"tokens.json", "tokens.binpb", "tokens.json.xz", "tokens.binpb.xz"} {
		t.Run(name, func(t *testing.T) {
			p := samplePlus()
			data, err := Encode(name, p)
			require.NoError(t, err)

			decoded, err := Decode(name, data)
			require.NoError(t, err)
			assert.Equal(t, p, decoded)
		})
	}
}

func TestEncodeCompresses(t *testing.T) {
	p := samplePlus()
	plain, err := Encode("tokens.json", p)
	require.NoError(t, err)
	compressed, err := Encode("tokens.json.xz", p)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(plain))
	assert.True(t, bytes.HasPrefix(compressed, []byte("\xfd7zXZ\x00")))
}

func TestUnsupportedExtension(t *testing.T) {
	_, err := Encode("tokens.txt", samplePlus())
	assert.Error(t, err)
	_, err = Decode("tokens.xz", []byte{})
	assert.Error(t, err)
}

func TestWriteReadFile(t *testing.T) {
	dir := t.TempDir()
	p := samplePlus()
	for _, name := range []string{"tokens.json", "tokens.binpb.xz"} {
		path := filepath.Join(dir, name)
		require.NoError(t, WriteFile(path, p))
		read, err := ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, p, read)
	}

	_, err := ReadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestMarshalJSON(t *testing.T) {
	data, err := json.Marshal(samplePlus())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []any{"Error", "End", "Plus", "Increment"}, decoded["kinds"])
	assert.Equal(t, "Error", decoded["error"])
	assert.Equal(t, "End", decoded["end"])

	nodes := decoded["nodes"].([]any)
	require.Len(t, nodes, 3)
	increment := nodes[2].(map[string]any)
	assert.Equal(t, map[string]any{"op": "accept", "kind": "Increment"}, increment["eof"])
	assert.Equal(t, []any{map[string]any{"lo": 0.0, "hi": 255.0, "op": "accept", "kind": "Increment"}}, increment["table"])
}

func TestUnmarshalJSONErrors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{
			name:  "unknown error kind",
			input: `{"kinds":["Error","End"],"error":"Oops","end":"End","nodes":[]}`,
		},
		{
			name:  "no nodes",
			input: `{"kinds":["Error","End"],"error":"Error","end":"End","nodes":[]}`,
		},
		{
			name:  "unknown op",
			input: `{"kinds":["Error","End"],"error":"Error","end":"End","nodes":[{"eof":{"op":"accept","kind":"End"},"table":[{"lo":0,"hi":255,"op":"jump"}]}]}`,
		},
		{
			name:  "goto without target",
			input: `{"kinds":["Error","End"],"error":"Error","end":"End","nodes":[{"eof":{"op":"accept","kind":"End"},"table":[{"lo":0,"hi":255,"op":"goto"}]}]}`,
		},
		{
			name:  "gap in the table",
			input: `{"kinds":["Error","End"],"error":"Error","end":"End","nodes":[{"eof":{"op":"accept","kind":"End"},"table":[{"lo":0,"hi":9,"op":"skip"},{"lo":11,"hi":255,"op":"skip"}]}]}`,
		},
		{
			name:  "incomplete table",
			input: `{"kinds":["Error","End"],"error":"Error","end":"End","nodes":[{"eof":{"op":"accept","kind":"End"},"table":[{"lo":0,"hi":254,"op":"skip"}]}]}`,
		},
		{
			name:  "unknown kind",
			input: `{"kinds":["Error","End"],"error":"Error","end":"End","nodes":[{"eof":{"op":"accept","kind":"Word"},"table":[{"lo":0,"hi":255,"op":"skip"}]}]}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var p Program
			assert.ErrorIs(t, json.Unmarshal([]byte(tc.input), &p), ErrInvalidProgram)
		})
	}

	var p Program
	require.NoError(t, json.Unmarshal([]byte(`{"kinds":["Error","End"],"error":"Error","end":"End","nodes":[{"eof":{"op":"accept","kind":"End"},"table":[{"lo":0,"hi":255,"op":"fail","kind":"Error"}]}]}`), &p))
	assert.Len(t, p.Nodes, 1)
}

func TestUnmarshalBinaryErrors(t *testing.T) {
	valid, err := samplePlus().MarshalBinary()
	require.NoError(t, err)

	var p Program
	assert.ErrorIs(t, p.UnmarshalBinary(valid[:len(valid)-1]), ErrInvalidProgram, "truncated")
	assert.ErrorIs(t, p.UnmarshalBinary([]byte{0xff}), ErrInvalidProgram, "garbage")

	extended := protowire.AppendTag(append([]byte(nil), valid...), 15, protowire.VarintType)
	extended = protowire.AppendVarint(extended, 42)
	require.NoError(t, p.UnmarshalBinary(extended), "unknown fields are skipped")
	assert.Equal(t, samplePlus(), &p)

	var empty Program
	assert.ErrorIs(t, empty.UnmarshalBinary(nil), ErrInvalidProgram)
}

func TestDump(t *testing.T) {
	var sb bytes.Buffer
	require.NoError(t, samplePlus().Dump(&sb))
	assert.Equal(t, `program: 3 nodes, 4 kinds (error Error, end End)
node 0:
  \x00-\x1f    fail Error
  \x20         skip
  !-*          fail Error
  +            goto 1
  ,-\xff       fail Error
  EOF          accept End
node 1:
  \x00-*       accept Plus
  +            goto 2
  ,-\xff       accept Plus
  EOF          accept Plus
node 2:
  \x00-\xff    accept Increment
  EOF          accept Increment
`, sb.String())
}
