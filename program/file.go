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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

// Encode p in the format selected by the file name: ".json" or ".binpb",
// optionally followed by ".xz" for a compressed file.
func Encode(name string, p *Program) ([]byte, error) {
	base, compressed := strings.CutSuffix(name, ".xz")

	var (
		data []byte
		err  error
	)
	switch filepath.Ext(base) {
	case ".json":
		data, err = json.MarshalIndent(p, "", "  ")
	case ".binpb":
		data, err = p.MarshalBinary()
	default:
		return nil, fmt.Errorf("unsupported program file %q, expected a .json or .binpb extension", name)
	}
	if err != nil || !compressed {
		return data, err
	}

	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode is the inverse of Encode. The decoded program is validated.
func Decode(name string, data []byte) (*Program, error) {
	base, compressed := strings.CutSuffix(name, ".xz")
	if compressed {
		r, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		if data, err = io.ReadAll(r); err != nil {
			return nil, err
		}
	}

	p := &Program{}
	switch filepath.Ext(base) {
	case ".json":
		if err := json.Unmarshal(data, p); err != nil {
			return nil, err
		}
	case ".binpb":
		if err := p.UnmarshalBinary(data); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported program file %q, expected a .json or .binpb extension", name)
	}
	return p, nil
}

func WriteFile(path string, p *Program) error {
	data, err := Encode(filepath.Base(path), p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func ReadFile(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Decode(filepath.Base(path), data)
	if err != nil {
		return nil, fmt.Errorf("failed to read %v: %w", path, err)
	}
	return p, nil
}
