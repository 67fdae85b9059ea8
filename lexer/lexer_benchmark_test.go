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

package lexer

import (
	"bytes"
	"testing"
)

func runBenchmark(b *testing.B, input []byte) {
	b.Helper()
	p := compileSample(b, true)
	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = New(p, input).Tokenize()
	}
}

func BenchmarkRepeatedToken(b *testing.B) {
	runBenchmark(b, bytes.Repeat([]byte("+"), 1000))
}

const objectInput = `
{
	private = foobar + 42
	protected => { primitive ... instanceof }
	$counter++ === in
}
`

func BenchmarkObject(b *testing.B) {
	runBenchmark(b, []byte(objectInput))
}

func BenchmarkRepeatedObject(b *testing.B) {
	runBenchmark(b, bytes.Repeat([]byte(objectInput), 100))
}
