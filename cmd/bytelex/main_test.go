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

package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/EngFlow/bytelex/compiler"
	"github.com/EngFlow/bytelex/program"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var declarationFiles = []string{"testdata/keywords.bzl", "testdata/operators.yaml"}

func TestExpandGlobs(t *testing.T) {
	paths, err := expandGlobs([]string{"testdata/*.bzl", "testdata/*.yaml", "testdata/**/*.bzl"})
	require.NoError(t, err)
	assert.Equal(t, declarationFiles, paths)

	_, err = expandGlobs([]string{"testdata/*.bzl", "testdata/*.missing"})
	assert.ErrorContains(t, err, "no declaration files match")

	_, err = expandGlobs([]string{"testdata/["})
	assert.Error(t, err)
}

const expectedScan = `testdata/sample.js:1:1: Let "let"
testdata/sample.js:1:5: Identifier "x"
testdata/sample.js:1:7: OpAssign "="
testdata/sample.js:1:9: BraceOpen "{"
testdata/sample.js:2:3: Ellipsis "..."
testdata/sample.js:2:6: Identifier "rest"
testdata/sample.js:3:1: BraceClose "}"
testdata/sample.js:3:3: Instanceof "instanceof"
testdata/sample.js:3:14: Identifier "y"
testdata/sample.js:3:15: OpIncrement "++"
testdata/sample.js:3:18: Invalid "@"
`

func TestCompileAndScan(t *testing.T) {
	p, err := compileFiles(declarationFiles, compiler.Config{Minimize: true})
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, scanFile(&sb, p, "testdata/sample.js"))
	assert.Equal(t, expectedScan, sb.String())

	// A program written to disk scans the same way.
	path := filepath.Join(t.TempDir(), "tokens.binpb.xz")
	require.NoError(t, program.WriteFile(path, p))
	loaded, err := program.ReadFile(path)
	require.NoError(t, err)

	sb.Reset()
	require.NoError(t, scanFile(&sb, loaded, "testdata/sample.js"))
	assert.Equal(t, expectedScan, sb.String())
}

func TestCompileFilesErrors(t *testing.T) {
	_, err := compileFiles([]string{"testdata/operators.yaml"}, compiler.Config{})
	assert.Error(t, err, "sentinels are declared in the Starlark file")

	_, err = compileFiles([]string{"testdata/keywords.bzl", "testdata/keywords.bzl"}, compiler.Config{})
	assert.Error(t, err, "sentinels declared twice")
}
