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

package pattern

import (
	"fmt"
	"slices"
	"strings"
)

type (
	// ByteRange is an inclusive range of byte values.
	ByteRange struct {
		Lo, Hi byte
	}

	// ByteSet is a finite union of byte ranges, kept sorted, pairwise disjoint
	// and with no two ranges adjacent. The zero value is the empty set.
	ByteSet []ByteRange
)

// Bytes skipped between tokens unless a declaration says otherwise: tab,
// newline, vertical tab, form feed, carriage return and space.
var Whitespace = NewByteSet(ByteRange{Lo: '\t', Hi: '\r'}, ByteRange{Lo: ' ', Hi: ' '})

func Single(b byte) ByteSet {
	return ByteSet{{Lo: b, Hi: b}}
}

func (r ByteRange) Contains(b byte) bool {
	return r.Lo <= b && b <= r.Hi
}

func (r ByteRange) String() string {
	if r.Lo == r.Hi {
		return quoteClassByte(r.Lo)
	}
	return quoteClassByte(r.Lo) + "-" + quoteClassByte(r.Hi)
}

// NewByteSet normalizes the given ranges into a ByteSet. Ranges with Lo > Hi
// are ignored.
func NewByteSet(ranges ...ByteRange) ByteSet {
	sorted := slices.DeleteFunc(slices.Clone(ranges), func(r ByteRange) bool { return r.Lo > r.Hi })
	slices.SortFunc(sorted, func(l, r ByteRange) int { return int(l.Lo) - int(r.Lo) })

	var set ByteSet
	for _, r := range sorted {
		if n := len(set); n > 0 && int(r.Lo) <= int(set[n-1].Hi)+1 {
			set[n-1].Hi = max(set[n-1].Hi, r.Hi)
			continue
		}
		set = append(set, r)
	}
	return set
}

func (s ByteSet) IsEmpty() bool {
	return len(s) == 0
}

func (s ByteSet) Contains(b byte) bool {
	i, found := slices.BinarySearchFunc(s, b, func(r ByteRange, b byte) int {
		switch {
		case r.Hi < b:
			return -1
		case r.Lo > b:
			return 1
		default:
			return 0
		}
	})
	return found && s[i].Contains(b)
}

func (s ByteSet) Union(other ByteSet) ByteSet {
	return NewByteSet(append(slices.Clone(s), other...)...)
}

// Complement returns every byte value 0-255 not in s.
func (s ByteSet) Complement() ByteSet {
	var result ByteSet
	next := 0
	for _, r := range s {
		if int(r.Lo) > next {
			result = append(result, ByteRange{Lo: byte(next), Hi: r.Lo - 1})
		}
		next = int(r.Hi) + 1
	}
	if next <= 0xff {
		result = append(result, ByteRange{Lo: byte(next), Hi: 0xff})
	}
	return result
}

// Len returns the number of byte values in s.
func (s ByteSet) Len() int {
	n := 0
	for _, r := range s {
		n += int(r.Hi) - int(r.Lo) + 1
	}
	return n
}

// String renders s as a bracket class accepted by the Regex dialect.
func (s ByteSet) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for _, r := range s {
		sb.WriteString(r.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

func quoteClassByte(b byte) string {
	switch {
	case b == '\\' || b == ']' || b == '[' || b == '-' || b == '^':
		return `\` + string(rune(b))
	case b > 0x20 && b < 0x7f:
		return string(rune(b))
	default:
		return fmt.Sprintf(`\x%02x`, b)
	}
}
