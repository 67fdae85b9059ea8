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

package decl

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bazelbuild/bazel-gazelle/rule"
	bzl "github.com/bazelbuild/buildtools/build"
)

// Attributes accepted by each call of a Starlark declaration file.
var starlarkAttrs = map[string][]string{
	"error": {"name"},
	"end":   {"name"},
	"token": {"name", "value"},
	"regex": {"name", "pattern"},
	"skip":  {"pattern"},
}

// LoadStarlark adds the declarations of a Starlark file to b. The file is a
// sequence of calls, for example:
//
//	error(name = "InvalidToken")
//	end(name = "EndOfProgram")
//	skip(pattern = "[ \t\n\r]")
//	regex(name = "Identifier", pattern = "[a-zA-Z$_][a-zA-Z0-9$_]*")
//	token(name = "In", value = "in")
func LoadStarlark(b *Builder, path string, data []byte) error {
	f, err := rule.LoadData(path, "", data)
	if err != nil {
		return fmt.Errorf("failed to parse %v: %w", path, err)
	}

	for _, r := range f.Rules {
		if err := loadStarlarkCall(b, r); err != nil {
			return fmt.Errorf("%v: %w", path, err)
		}
	}
	return nil
}

func loadStarlarkCall(b *Builder, r *rule.Rule) error {
	allowed, known := starlarkAttrs[r.Kind()]
	if !known {
		return fmt.Errorf("unknown declaration %s(), expected one of %v", r.Kind(), slices.Sorted(maps.Keys(starlarkAttrs)))
	}
	for _, key := range r.AttrKeys() {
		if !slices.Contains(allowed, key) {
			return fmt.Errorf("%s(): unexpected attribute %q", r.Kind(), key)
		}
	}

	attrs := make(map[string]string, len(allowed))
	for _, key := range allowed {
		value, err := stringAttr(r, key)
		if err != nil {
			return err
		}
		attrs[key] = value
	}

	switch r.Kind() {
	case "error":
		b.Error(attrs["name"])
	case "end":
		b.End(attrs["name"])
	case "token":
		b.Token(attrs["name"], attrs["value"])
	case "regex":
		b.Regex(attrs["name"], attrs["pattern"])
	case "skip":
		return b.Skip(attrs["pattern"])
	}
	return nil
}

func stringAttr(r *rule.Rule, key string) (string, error) {
	expr := r.Attr(key)
	if expr == nil {
		return "", fmt.Errorf("%s(): missing attribute %q", r.Kind(), key)
	}
	str, ok := expr.(*bzl.StringExpr)
	if !ok {
		start, _ := expr.Span()
		return "", fmt.Errorf("%s(): attribute %q at line %d must be a string literal", r.Kind(), key, start.Line)
	}
	if key == "name" && str.Value == "" {
		return "", fmt.Errorf("%s(): attribute %q must not be empty", r.Kind(), key)
	}
	return str.Value, nil
}

// LoadFile adds the declarations of the file at path to b. Files ending in
// .yaml or .yml are read as YAML, everything else as Starlark.
func LoadFile(b *Builder, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := LoadYAML(b, data); err != nil {
			return fmt.Errorf("%v: %w", path, err)
		}
		return nil
	default:
		return LoadStarlark(b, path, data)
	}
}

// LoadFiles merges the declarations of all given files into one set.
func LoadFiles(paths []string) (*Declarations, error) {
	b := NewBuilder()
	for _, path := range paths {
		if err := LoadFile(b, path); err != nil {
			return nil, err
		}
	}
	return b.Build()
}
