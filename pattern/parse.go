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

// Package pattern parses token patterns into sequences of byte-acceptance
// steps.
//
// Two dialects are supported. A Literal pattern matches its bytes exactly. A
// Regex pattern is a deliberately small subset of regular expressions: a
// concatenation of bracket classes and single bytes, each optionally followed
// by '*'. Alternation, groups, anchors and the other quantifiers are rejected
// rather than approximated.
package pattern

import (
	"errors"
	"fmt"
	"strconv"
)

type Dialect int

const (
	Literal Dialect = iota
	Regex
)

func (d Dialect) String() string {
	switch d {
	case Literal:
		return "literal"
	case Regex:
		return "regex"
	default:
		return "unknown dialect"
	}
}

// Step is one unit of a parsed pattern: a non-empty set of accepted bytes,
// consumed either exactly once or zero or more times.
type Step struct {
	Set    ByteSet
	Repeat bool
}

func (s Step) String() string {
	if s.Repeat {
		return s.Set.String() + "*"
	}
	return s.Set.String()
}

var (
	ErrMalformedPattern = errors.New("malformed pattern")
	ErrEmptyPattern     = fmt.Errorf("%w: pattern matches the empty string", ErrMalformedPattern)
)

// SyntaxError describes an unsupported construct in a Regex pattern.
type SyntaxError struct {
	Pattern string
	Offset  int
	Msg     string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("malformed pattern %q at offset %d: %s", e.Pattern, e.Offset, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return ErrMalformedPattern
}

// Parse turns src into its step sequence. The result is never empty and
// always consumes at least one byte.
func Parse(src string, d Dialect) ([]Step, error) {
	var (
		steps []Step
		err   error
	)
	switch d {
	case Literal:
		steps = parseLiteral(src)
	case Regex:
		steps, err = parseRegex(src)
	default:
		return nil, fmt.Errorf("%w: unsupported dialect %v", ErrMalformedPattern, d)
	}
	if err != nil {
		return nil, err
	}

	for _, step := range steps {
		if !step.Repeat {
			return steps, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrEmptyPattern, src)
}

func parseLiteral(src string) []Step {
	steps := make([]Step, len(src))
	for i := range len(src) {
		steps[i] = Step{Set: Single(src[i])}
	}
	return steps
}

func parseRegex(src string) ([]Step, error) {
	var steps []Step
	for i := 0; i < len(src); {
		var (
			set ByteSet
			err error
		)
		switch c := src[i]; c {
		case '[':
			set, i, err = parseClass(src, i)
		case '\\':
			var b byte
			b, i, err = parseEscape(src, i)
			set = Single(b)
		case '*':
			return nil, &SyntaxError{Pattern: src, Offset: i, Msg: "'*' must follow a class or a byte"}
		case '|', '(', ')', '?', '+', '{', '}', '.', '^', '$', ']':
			return nil, &SyntaxError{Pattern: src, Offset: i, Msg: fmt.Sprintf("unsupported metacharacter %q", c)}
		default:
			set = Single(c)
			i++
		}
		if err != nil {
			return nil, err
		}

		step := Step{Set: set}
		if i < len(src) && src[i] == '*' {
			step.Repeat = true
			i++
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// Parse the bracket class opened at src[open]. Returns the class and the
// offset right after its closing ']'.
func parseClass(src string, open int) (ByteSet, int, error) {
	i := open + 1
	negate := false
	if i < len(src) && src[i] == '^' {
		negate = true
		i++
	}

	var ranges []ByteRange
	for {
		if i >= len(src) {
			return nil, 0, &SyntaxError{Pattern: src, Offset: open, Msg: "unterminated class"}
		}
		if src[i] == ']' {
			i++
			break
		}

		rangeStart := i
		lo, next, err := parseClassByte(src, i)
		if err != nil {
			return nil, 0, err
		}
		hi := lo
		i = next
		// '-' right before ']' is a literal dash, not a range
		if i+1 < len(src) && src[i] == '-' && src[i+1] != ']' {
			if hi, i, err = parseClassByte(src, i+1); err != nil {
				return nil, 0, err
			}
			if hi < lo {
				return nil, 0, &SyntaxError{Pattern: src, Offset: rangeStart, Msg: fmt.Sprintf("reversed range %q", src[rangeStart:i])}
			}
		}
		ranges = append(ranges, ByteRange{Lo: lo, Hi: hi})
	}

	if len(ranges) == 0 {
		return nil, 0, &SyntaxError{Pattern: src, Offset: open, Msg: "empty class"}
	}
	set := NewByteSet(ranges...)
	if negate {
		set = set.Complement()
	}
	if set.IsEmpty() {
		return nil, 0, &SyntaxError{Pattern: src, Offset: open, Msg: "class matches no byte"}
	}
	return set, i, nil
}

func parseClassByte(src string, i int) (byte, int, error) {
	if src[i] == '\\' {
		return parseEscape(src, i)
	}
	return src[i], i + 1, nil
}

// Parse the escape sequence starting with the backslash at src[i]. Any byte
// may be escaped to stand for itself; \t \n \v \f \r and \xHH denote control
// and arbitrary bytes.
func parseEscape(src string, i int) (byte, int, error) {
	if i+1 >= len(src) {
		return 0, 0, &SyntaxError{Pattern: src, Offset: i, Msg: "trailing backslash"}
	}
	switch c := src[i+1]; c {
	case 't':
		return '\t', i + 2, nil
	case 'n':
		return '\n', i + 2, nil
	case 'v':
		return '\v', i + 2, nil
	case 'f':
		return '\f', i + 2, nil
	case 'r':
		return '\r', i + 2, nil
	case 'x':
		if i+4 > len(src) {
			return 0, 0, &SyntaxError{Pattern: src, Offset: i, Msg: `\x requires two hex digits`}
		}
		value, err := strconv.ParseUint(src[i+2:i+4], 16, 8)
		if err != nil {
			return 0, 0, &SyntaxError{Pattern: src, Offset: i, Msg: fmt.Sprintf("invalid hex escape %q", src[i:i+4])}
		}
		return byte(value), i + 4, nil
	default:
		return c, i + 2, nil
	}
}
