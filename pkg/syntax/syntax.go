// Copyright 2025 walteh LLC
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

// Package syntax parses and prints the file kinds codemod rewrites: Go
// source, go.mod and go.work.
package syntax

import (
	"bytes"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/mod/modfile"
)

// 📄 Kind selects the parser and formatter for a file
type Kind int

const (
	KindUnknown Kind = iota
	KindGo           // *.go
	KindMod          // go.mod
	KindWork         // go.work
)

// String returns a string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindGo:
		return "go"
	case KindMod:
		return "mod"
	case KindWork:
		return "work"
	default:
		return "unknown"
	}
}

// 🔍 KindOf classifies a path by its name
func KindOf(path string) Kind {
	base := filepath.Base(path)
	switch {
	case base == "go.mod":
		return KindMod
	case base == "go.work":
		return KindWork
	case filepath.Ext(base) == ".go":
		return KindGo
	default:
		return KindUnknown
	}
}

// 🌳 File is a parsed file. Exactly one of Go, Mod or Work is set, matching Kind.
type File struct {
	Path string
	Kind Kind
	Fset *token.FileSet

	Go   *ast.File
	Mod  *modfile.File
	Work *modfile.WorkFile
}

// printerConfig matches the settings gofmt prints with
var printerConfig = &printer.Config{Mode: printer.UseSpaces | printer.TabIndent, Tabwidth: 8}

// 📝 Parse parses src with the parser selected by the kind of path
func Parse(path string, src []byte) (*File, error) {
	file := &File{
		Path: path,
		Kind: KindOf(path),
		Fset: token.NewFileSet(),
	}

	var err error
	switch file.Kind {
	case KindGo:
		file.Go, err = parser.ParseFile(file.Fset, path, src, parser.ParseComments|parser.SkipObjectResolution)
	case KindMod:
		file.Mod, err = modfile.Parse(path, src, nil)
	case KindWork:
		file.Work, err = modfile.ParseWork(path, src, nil)
	default:
		return nil, errors.Errorf("unsupported file kind for %s", path)
	}
	if err != nil {
		return nil, errors.Errorf("parsing %s file: %w", file.Kind, err)
	}

	return file, nil
}

// 🖨️ Print serializes the (possibly mutated) tree back into text.
// Go nodes keep their original positions, so untouched code stays on its
// original lines.
func (f *File) Print() ([]byte, error) {
	switch f.Kind {
	case KindGo:
		if f.Go == nil {
			return nil, errors.New("go file has no syntax tree")
		}
		var buf bytes.Buffer
		if err := printerConfig.Fprint(&buf, f.Fset, f.Go); err != nil {
			return nil, errors.Errorf("printing go file: %w", err)
		}
		return buf.Bytes(), nil
	case KindMod:
		if f.Mod == nil {
			return nil, errors.New("mod file has no syntax tree")
		}
		f.Mod.Cleanup()
		out, err := f.Mod.Format()
		if err != nil {
			return nil, errors.Errorf("printing mod file: %w", err)
		}
		return out, nil
	case KindWork:
		if f.Work == nil {
			return nil, errors.New("work file has no syntax tree")
		}
		f.Work.Cleanup()
		return modfile.Format(f.Work.Syntax), nil
	default:
		return nil, errors.Errorf("unsupported file kind for %s", f.Path)
	}
}

// 🖨️ PrintMode selects what the formatter receives
type PrintMode string

const (
	// PrintReprint formats the text printed from the tree
	PrintReprint PrintMode = "reprint"
	// PrintNode formats the Go syntax tree directly
	PrintNode PrintMode = "node"
)

// 🔍 ParsePrintMode validates a print mode name; empty means PrintReprint
func ParsePrintMode(s string) (PrintMode, error) {
	switch PrintMode(s) {
	case "", PrintReprint:
		return PrintReprint, nil
	case PrintNode:
		return PrintNode, nil
	default:
		return "", errors.Errorf("unknown print mode %q (want reprint or node)", s)
	}
}
