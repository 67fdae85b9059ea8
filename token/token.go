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

// Package token defines the kinds a compiled scanner classifies its input
// into. Kinds are dense indices into a Vocabulary, two of which are reserved
// for unrecognized input and for the end of the input.
package token

import "fmt"

// Kind identifies what a recognized lexeme represents.
type Kind int

func (k Kind) String() string {
	return fmt.Sprintf("kind(%d)", int(k))
}

// Vocabulary is the fixed enumeration of token kinds known to a scanner.
type Vocabulary struct {
	// Declared kind names, indexed by Kind.
	Names []string
	// Kind emitted for input no pattern recognizes.
	Error Kind
	// Kind emitted once the input is exhausted.
	End Kind
}

// Size returns the number of distinct kinds.
func (v Vocabulary) Size() int {
	return len(v.Names)
}

func (v Vocabulary) Contains(k Kind) bool {
	return k >= 0 && int(k) < len(v.Names)
}

// Name returns the declared name of k, or the Kind's default representation
// when k is not part of the vocabulary.
func (v Vocabulary) Name(k Kind) string {
	if !v.Contains(k) {
		return k.String()
	}
	return v.Names[k]
}

// Lookup returns the kind declared under name.
func (v Vocabulary) Lookup(name string) (Kind, bool) {
	for i, n := range v.Names {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}

func (v Vocabulary) IsSentinel(k Kind) bool {
	return k == v.Error || k == v.End
}
