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

// Package format applies the configured code style to printed files.
package format

import (
	"bytes"
	"context"
	goformat "go/format"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/codemod/pkg/syntax"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/mod/modfile"
	"golang.org/x/tools/imports"
	gofumpt "mvdan.cc/gofumpt/format"
)

// 🛠️ Tool names a Go formatter
type Tool string

const (
	ToolGofmt     Tool = "gofmt"
	ToolGoimports Tool = "goimports"
	ToolGofumpt   Tool = "gofumpt"
)

// 🔍 ParseTool validates a formatter name; empty means no preference
func ParseTool(s string) (Tool, error) {
	switch t := Tool(strings.ToLower(strings.TrimSpace(s))); t {
	case "", ToolGofmt, ToolGoimports, ToolGofumpt:
		return t, nil
	default:
		return "", errors.Errorf("unknown formatter %q (want gofmt, goimports or gofumpt)", s)
	}
}

// 🎨 Formatter formats printed files according to their resolved style
type Formatter struct {
	tool Tool
}

// Option configures a Formatter
type Option func(*Formatter)

// WithTool forces the formatter used for Go files
func WithTool(t Tool) Option {
	return func(f *Formatter) {
		f.tool = t
	}
}

// 🏗️ New creates a Formatter
func New(opts ...Option) *Formatter {
	f := &Formatter{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// goimports reads its local prefix from a package variable
var importsMu sync.Mutex

// 📝 Source formats printed text of the given kind
func (f *Formatter) Source(ctx context.Context, kind syntax.Kind, path string, src []byte, style Style) ([]byte, error) {
	zerolog.Ctx(ctx).Trace().Str("file", path).Str("tool", string(style.Tool)).Msg("formatting")

	switch kind {
	case syntax.KindGo:
		return formatGo(path, src, style)
	case syntax.KindMod:
		mf, err := modfile.Parse(path, src, nil)
		if err != nil {
			return nil, errors.Errorf("parsing formatted go.mod: %w", err)
		}
		out, err := mf.Format()
		if err != nil {
			return nil, errors.Errorf("formatting go.mod: %w", err)
		}
		return out, nil
	case syntax.KindWork:
		wf, err := modfile.ParseWork(path, src, nil)
		if err != nil {
			return nil, errors.Errorf("parsing formatted go.work: %w", err)
		}
		return modfile.Format(wf.Syntax), nil
	default:
		return nil, errors.Errorf("unsupported file kind for %s", path)
	}
}

// 🌳 Node formats a parsed file straight from its syntax tree. Go trees go
// through go/format.Node and then the configured tool; go.mod and go.work
// trees are printed canonically.
func (f *Formatter) Node(ctx context.Context, file *syntax.File, style Style) ([]byte, error) {
	if file.Kind != syntax.KindGo {
		out, err := file.Print()
		if err != nil {
			return nil, err
		}
		return f.Source(ctx, file.Kind, file.Path, out, style)
	}

	var buf bytes.Buffer
	if err := goformat.Node(&buf, file.Fset, file.Go); err != nil {
		return nil, errors.Errorf("formatting syntax tree: %w", err)
	}

	if style.Tool == ToolGofmt || style.Tool == "" {
		return buf.Bytes(), nil
	}
	return formatGo(file.Path, buf.Bytes(), style)
}

func formatGo(path string, src []byte, style Style) ([]byte, error) {
	switch style.Tool {
	case ToolGofmt, "":
		out, err := goformat.Source(src)
		if err != nil {
			return nil, errors.Errorf("gofmt: %w", err)
		}
		return out, nil
	case ToolGoimports:
		importsMu.Lock()
		defer importsMu.Unlock()
		imports.LocalPrefix = style.LocalPrefix
		out, err := imports.Process(path, src, &imports.Options{
			Comments:   true,
			TabIndent:  true,
			TabWidth:   8,
			FormatOnly: true,
		})
		if err != nil {
			return nil, errors.Errorf("goimports: %w", err)
		}
		return out, nil
	case ToolGofumpt:
		opts := gofumpt.Options{
			ModulePath: style.ModulePath,
			ExtraRules: style.ExtraRules,
		}
		if style.LangVersion != "" {
			opts.LangVersion = "go" + style.LangVersion
		}
		out, err := gofumpt.Source(src, opts)
		if err != nil {
			return nil, errors.Errorf("gofumpt: %w", err)
		}
		return out, nil
	default:
		return nil, errors.Errorf("unknown formatter %q", style.Tool)
	}
}
