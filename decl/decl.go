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

// Package decl collects token declarations: the kinds of a scanner, the
// patterns bound to them and the two sentinel kinds every scanner needs.
//
// Declarations are usually assembled with a Builder, either directly or
// through one of the file loaders (Starlark or YAML).
package decl

import (
	"errors"
	"fmt"

	"github.com/EngFlow/bytelex/pattern"
	"github.com/EngFlow/bytelex/token"
)

var (
	ErrMissingSentinel   = errors.New("missing sentinel kind")
	ErrDuplicateSentinel = errors.New("duplicate sentinel kind")
	ErrSentinelPattern   = errors.New("pattern bound to a sentinel kind")
)

type (
	// Pattern binds one pattern to the kind it recognizes.
	Pattern struct {
		Kind    token.Kind
		Source  string
		Dialect pattern.Dialect
	}

	// Declarations is the complete, validated input of the compiler.
	Declarations struct {
		Vocabulary token.Vocabulary
		Patterns   []Pattern
		// Bytes discarded between tokens. Nil disables skipping.
		Skip pattern.ByteSet
	}

	// Builder accumulates declarations, interning kinds by name in order of
	// first appearance.
	Builder struct {
		names      []string
		kinds      map[string]token.Kind
		errorKinds []token.Kind
		endKinds   []token.Kind
		patterns   []Pattern
		skip       pattern.ByteSet
		skipSet    bool
	}
)

func NewBuilder() *Builder {
	return &Builder{kinds: make(map[string]token.Kind)}
}

// Kind returns the kind declared under name, declaring it if necessary.
func (b *Builder) Kind(name string) token.Kind {
	if kind, ok := b.kinds[name]; ok {
		return kind
	}
	kind := token.Kind(len(b.names))
	b.names = append(b.names, name)
	b.kinds[name] = kind
	return kind
}

// Error designates name as the kind of unrecognized input.
func (b *Builder) Error(name string) token.Kind {
	kind := b.Kind(name)
	b.errorKinds = append(b.errorKinds, kind)
	return kind
}

// End designates name as the kind reported at the end of the input.
func (b *Builder) End(name string) token.Kind {
	kind := b.Kind(name)
	b.endKinds = append(b.endKinds, kind)
	return kind
}

// Token binds the literal byte string value to name.
func (b *Builder) Token(name, value string) token.Kind {
	kind := b.Kind(name)
	b.patterns = append(b.patterns, Pattern{Kind: kind, Source: value, Dialect: pattern.Literal})
	return kind
}

// Regex binds the restricted regular expression src to name.
func (b *Builder) Regex(name, src string) token.Kind {
	kind := b.Kind(name)
	b.patterns = append(b.patterns, Pattern{Kind: kind, Source: src, Dialect: pattern.Regex})
	return kind
}

// Skip replaces the set of bytes discarded between tokens (by default
// pattern.Whitespace) with the single class described by src, e.g. "[ \t]".
func (b *Builder) Skip(src string) error {
	steps, err := pattern.Parse(src, pattern.Regex)
	if err != nil {
		return fmt.Errorf("invalid skip class: %w", err)
	}
	if len(steps) != 1 {
		return fmt.Errorf("%w: skip class %q must be a single class", pattern.ErrMalformedPattern, src)
	}
	b.skip = steps[0].Set
	b.skipSet = true
	return nil
}

// Build validates the sentinels and returns the collected declarations.
func (b *Builder) Build() (*Declarations, error) {
	if err := checkSentinel("error", b.errorKinds, b.names); err != nil {
		return nil, err
	}
	if err := checkSentinel("end", b.endKinds, b.names); err != nil {
		return nil, err
	}

	vocabulary := token.Vocabulary{
		Names: append([]string(nil), b.names...),
		Error: b.errorKinds[0],
		End:   b.endKinds[0],
	}
	if vocabulary.Error == vocabulary.End {
		return nil, fmt.Errorf("%w: %q is declared both as error and end", ErrDuplicateSentinel, vocabulary.Name(vocabulary.Error))
	}

	d := &Declarations{
		Vocabulary: vocabulary,
		Patterns:   append([]Pattern(nil), b.patterns...),
		Skip:       pattern.Whitespace,
	}
	if b.skipSet {
		d.Skip = b.skip
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func checkSentinel(role string, declared []token.Kind, names []string) error {
	switch len(declared) {
	case 0:
		return fmt.Errorf("%w: no %s kind declared", ErrMissingSentinel, role)
	case 1:
		return nil
	default:
		var kindNames []string
		for _, kind := range declared {
			kindNames = append(kindNames, names[kind])
		}
		return fmt.Errorf("%w: %s kind declared %d times: %q", ErrDuplicateSentinel, role, len(declared), kindNames)
	}
}

// Validate checks declarations assembled without a Builder.
func (d *Declarations) Validate() error {
	v := d.Vocabulary
	if !v.Contains(v.Error) {
		return fmt.Errorf("%w: error kind %v is not declared", ErrMissingSentinel, v.Error)
	}
	if !v.Contains(v.End) {
		return fmt.Errorf("%w: end kind %v is not declared", ErrMissingSentinel, v.End)
	}
	if v.Error == v.End {
		return fmt.Errorf("%w: %q is declared both as error and end", ErrDuplicateSentinel, v.Name(v.Error))
	}
	for _, p := range d.Patterns {
		if !v.Contains(p.Kind) {
			return fmt.Errorf("pattern %q is bound to undeclared %v", p.Source, p.Kind)
		}
		if v.IsSentinel(p.Kind) {
			return fmt.Errorf("%w: %q is bound to %q", ErrSentinelPattern, p.Source, v.Name(p.Kind))
		}
	}
	return nil
}
