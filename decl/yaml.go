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
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type (
	yamlFile struct {
		Skip  *string    `yaml:"skip"`
		Kinds []yamlKind `yaml:"kinds"`
	}

	// One entry of the kinds list. At most one of Token, Regex, Error and End
	// may be set; an entry with none of them declares a kind no pattern
	// produces.
	yamlKind struct {
		Name  string  `yaml:"name"`
		Token *string `yaml:"token"`
		Regex *string `yaml:"regex"`
		Error bool    `yaml:"error"`
		End   bool    `yaml:"end"`
	}
)

// LoadYAML adds the declarations of a YAML document to b, for example:
//
//	skip: "[ \t\n\r]"
//	kinds:
//	  - {name: InvalidToken, error: true}
//	  - {name: EndOfProgram, end: true}
//	  - {name: Identifier, regex: "[a-zA-Z$_][a-zA-Z0-9$_]*"}
//	  - {name: In, token: in}
func LoadYAML(b *Builder, data []byte) error {
	var file yamlFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse YAML declarations: %w", err)
	}

	if file.Skip != nil {
		if err := b.Skip(*file.Skip); err != nil {
			return err
		}
	}

	for i, kind := range file.Kinds {
		if kind.Name == "" {
			return fmt.Errorf("kinds[%d]: missing name", i)
		}

		roles := 0
		for _, set := range []bool{kind.Token != nil, kind.Regex != nil, kind.Error, kind.End} {
			if set {
				roles++
			}
		}
		if roles > 1 {
			return fmt.Errorf("kinds[%d] %q: token, regex, error and end are mutually exclusive", i, kind.Name)
		}

		switch {
		case kind.Token != nil:
			b.Token(kind.Name, *kind.Token)
		case kind.Regex != nil:
			b.Regex(kind.Name, *kind.Regex)
		case kind.Error:
			b.Error(kind.Name)
		case kind.End:
			b.End(kind.Name)
		default:
			b.Kind(kind.Name)
		}
	}
	return nil
}
