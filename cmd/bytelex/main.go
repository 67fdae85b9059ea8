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
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"slices"

	"github.com/EngFlow/bytelex/compiler"
	"github.com/EngFlow/bytelex/decl"
	"github.com/EngFlow/bytelex/lexer"
	"github.com/EngFlow/bytelex/program"
	"github.com/bmatcuk/doublestar/v4"
)

// Compiles token declarations (Starlark or YAML files) into a matcher program and writes it to a file. The program can
// be loaded back with -program, and used to tokenize a source file with -scan.
func main() {
	verbose := flag.Bool("verbose", false, "Enable verbose logging and print the compiled program")
	output := flag.String("output", "tokens.binpb", "Output file path for the compiled program, .json or .binpb, optionally followed by .xz")
	minimize := flag.Bool("minimize", true, "Merge equivalent nodes of the compiled program")
	programFile := flag.String("program", "", "Use a previously compiled program instead of compiling declarations")
	scan := flag.String("scan", "", "Path to a source file to tokenize, printing one token per line")
	flag.Parse()

	var p *program.Program
	if *programFile != "" {
		if flag.NArg() != 0 {
			flag.Usage()
			log.Fatalf("Declaration files cannot be combined with -program")
		}
		var err error
		if p, err = program.ReadFile(*programFile); err != nil {
			log.Fatalf("Failed to load program: %v", err)
		}
	} else {
		if flag.NArg() == 0 {
			flag.Usage()
			log.Fatalf("Program requires at least 1 argument - a glob of token declaration files. Flags needs to be defined before arguments")
		}
		paths, err := expandGlobs(flag.Args())
		if err != nil {
			log.Fatal(err)
		}
		if *verbose {
			log.Printf("Loading declarations from %v", paths)
		}
		if p, err = compileFiles(paths, compiler.Config{Minimize: *minimize}); err != nil {
			log.Fatal(err)
		}
		if err := program.WriteFile(*output, p); err != nil {
			log.Fatalf("Failed to write program: %v", err)
		}
		if *verbose {
			log.Printf("Compiled %d kinds into %d nodes, written to %v", p.Vocabulary.Size(), len(p.Nodes), *output)
		}
	}

	if *verbose {
		if err := p.Dump(os.Stderr); err != nil {
			log.Fatal(err)
		}
	}
	if *scan != "" {
		if err := scanFile(os.Stdout, p, *scan); err != nil {
			log.Fatal(err)
		}
	}
}

// Expand every glob pattern into the files it matches, in lexical order per pattern. A pattern matching nothing is an
// error, as the declared kinds would silently change.
func expandGlobs(patterns []string) ([]string, error) {
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no declaration files match %q", pattern)
		}
		slices.Sort(matches)
		for _, match := range matches {
			if !slices.Contains(paths, match) {
				paths = append(paths, match)
			}
		}
	}
	return paths, nil
}

func compileFiles(paths []string, cfg compiler.Config) (*program.Program, error) {
	d, err := decl.LoadFiles(paths)
	if err != nil {
		return nil, err
	}
	p, err := compiler.Compile(d, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %v: %w", paths, err)
	}
	return p, nil
}

func scanFile(w io.Writer, p *program.Program, path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	for tok := range lexer.New(p, source).AllTokens() {
		if _, err := fmt.Fprintf(w, "%s:%v: %s %q\n", path, tok.Location, p.Vocabulary.Name(tok.Kind), tok.Content); err != nil {
			return err
		}
	}
	return nil
}
