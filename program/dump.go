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
	"fmt"
	"io"
	"strings"

	"github.com/EngFlow/bytelex/pattern"
)

// Dump writes a listing of every node and its range-compressed table.
func (p *Program) Dump(w io.Writer) error {
	v := p.Vocabulary
	_, err := fmt.Fprintf(w, "program: %d nodes, %d kinds (error %s, end %s)\n", len(p.Nodes), v.Size(), v.Name(v.Error), v.Name(v.End))
	if err != nil {
		return err
	}

	for i := range p.Nodes {
		var sb strings.Builder
		fmt.Fprintf(&sb, "node %d:\n", i)
		for _, tr := range p.Ranges(NodeID(i)) {
			rng := pattern.ByteRange{Lo: tr.Lo, Hi: tr.Hi}
			fmt.Fprintf(&sb, "  %-12s %s\n", rng.String(), tr.Action.Format(v))
		}
		fmt.Fprintf(&sb, "  %-12s %s\n", "EOF", p.Nodes[i].EOF.Format(v))
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}
