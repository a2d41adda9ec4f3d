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

package ruleset

import (
	"context"
	"go/ast"
	"go/token"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/codemod/pkg/syntax"
	"github.com/walteh/codemod/pkg/text"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/mod/modfile"
	"golang.org/x/tools/go/ast/astutil"
)

// 🏷️ Kind names a rule
type Kind string

const (
	KindRenameIdent   Kind = "rename_ident"   // go: rename identifiers
	KindRewriteImport Kind = "rewrite_import" // go, mod: move an import path
	KindReplaceString Kind = "replace_string" // go: replace inside string literals
	KindSetGoVersion  Kind = "set_go_version" // mod, work: set the go directive
	KindDropRequire   Kind = "drop_require"   // mod: drop a requirement
)

// 📏 Rule is one declarative rewrite
type Rule struct {
	Kind    Kind   `json:"kind" yaml:"kind" toml:"kind"`
	From    string `json:"from,omitempty" yaml:"from,omitempty" toml:"from,omitempty"`
	To      string `json:"to,omitempty" yaml:"to,omitempty" toml:"to,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty" toml:"version,omitempty"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`
	// When names an option that must be truthy for the rule to apply
	When string `json:"when,omitempty" yaml:"when,omitempty" toml:"when,omitempty"`
}

// 📚 RuleSet is a named list of rules resolved against a run's options
type RuleSet struct {
	Name   string
	Source string
	Rules  []Rule
}

// 🔍 Validate checks that the rule has the fields its kind requires
func (r Rule) Validate() error {
	switch r.Kind {
	case KindRenameIdent:
		if r.From == "" || r.To == "" {
			return errors.Errorf("%s requires from and to", r.Kind)
		}
		if !token.IsIdentifier(r.To) {
			return errors.Errorf("%s: %q is not a valid identifier", r.Kind, r.To)
		}
	case KindRewriteImport:
		if r.From == "" || r.To == "" {
			return errors.Errorf("%s requires from and to", r.Kind)
		}
	case KindReplaceString:
		if err := text.NewReplacer().ValidateRules([]text.Rule{{From: r.From, To: r.To}}); err != nil {
			return errors.Errorf("%s: %w", r.Kind, err)
		}
	case KindSetGoVersion:
		if !modfile.GoVersionRE.MatchString(r.Version) {
			return errors.Errorf("%s: invalid go version %q", r.Kind, r.Version)
		}
	case KindDropRequire:
		if r.Path == "" {
			return errors.Errorf("%s requires path", r.Kind)
		}
	default:
		return errors.Errorf("unknown rule kind %q", r.Kind)
	}
	return nil
}

// 🔍 Validate checks every rule
func (rs *RuleSet) Validate() error {
	for i, r := range rs.Rules {
		if err := r.Validate(); err != nil {
			return errors.Errorf("rule %d: %w", i, err)
		}
	}
	return nil
}

// 🏃 Transform applies every rule, in order, to file. Rules that do not
// apply to the file's kind are skipped.
func (rs *RuleSet) Transform(ctx context.Context, file *syntax.File, options map[string]any) error {
	logger := zerolog.Ctx(ctx)

	for i, r := range rs.Rules {
		n, err := r.apply(file)
		if err != nil {
			return errors.Errorf("rule %d (%s): %w", i, r.Kind, err)
		}
		if n > 0 {
			logger.Debug().
				Str("file", file.Path).
				Str("rule", string(r.Kind)).
				Int("edits", n).
				Msg("rule applied")
		}
	}

	return nil
}

// apply runs the rule against file and returns the number of edits
func (r Rule) apply(file *syntax.File) (int, error) {
	switch file.Kind {
	case syntax.KindGo:
		return r.applyGo(file)
	case syntax.KindMod:
		return r.applyMod(file.Mod)
	case syntax.KindWork:
		return r.applyWork(file.Work)
	default:
		return 0, nil
	}
}

func (r Rule) applyGo(file *syntax.File) (int, error) {
	switch r.Kind {
	case KindRenameIdent:
		n := 0
		ast.Inspect(file.Go, func(node ast.Node) bool {
			if id, ok := node.(*ast.Ident); ok && id.Name == r.From {
				id.Name = r.To
				n++
			}
			return true
		})
		return n, nil
	case KindRewriteImport:
		if astutil.RewriteImport(file.Fset, file.Go, r.From, r.To) {
			return 1, nil
		}
		return 0, nil
	case KindReplaceString:
		return replaceStrings(file.Go, []text.Rule{{From: r.From, To: r.To}})
	default:
		return 0, nil
	}
}

// replaceStrings rewrites string literals outside of import specs
func replaceStrings(f *ast.File, rules []text.Rule) (int, error) {
	replacer := text.NewReplacer()
	n := 0
	var err error
	ast.Inspect(f, func(node ast.Node) bool {
		if err != nil {
			return false
		}
		switch x := node.(type) {
		case *ast.ImportSpec:
			return false
		case *ast.BasicLit:
			if x.Kind != token.STRING {
				return true
			}
			lit, result, rerr := replacer.ReplaceLiteral(x.Value, rules)
			if rerr != nil {
				err = rerr
				return false
			}
			if result.WasModified {
				x.Value = lit
				n += result.Count
			}
		}
		return true
	})
	return n, err
}

func (r Rule) applyMod(f *modfile.File) (int, error) {
	switch r.Kind {
	case KindRewriteImport:
		if r.Version == "" || !requires(f, r.From) {
			return 0, nil
		}
		if err := f.DropRequire(r.From); err != nil {
			return 0, errors.Errorf("dropping %s: %w", r.From, err)
		}
		if err := f.AddRequire(r.To, r.Version); err != nil {
			return 0, errors.Errorf("requiring %s@%s: %w", r.To, r.Version, err)
		}
		return 1, nil
	case KindSetGoVersion:
		if f.Go != nil && f.Go.Version == r.Version {
			return 0, nil
		}
		if err := f.AddGoStmt(r.Version); err != nil {
			return 0, errors.Errorf("setting go version: %w", err)
		}
		return 1, nil
	case KindDropRequire:
		if !requires(f, r.Path) {
			return 0, nil
		}
		if err := f.DropRequire(r.Path); err != nil {
			return 0, errors.Errorf("dropping %s: %w", r.Path, err)
		}
		return 1, nil
	default:
		return 0, nil
	}
}

func (r Rule) applyWork(f *modfile.WorkFile) (int, error) {
	if r.Kind != KindSetGoVersion {
		return 0, nil
	}
	if f.Go != nil && f.Go.Version == r.Version {
		return 0, nil
	}
	if err := f.AddGoStmt(r.Version); err != nil {
		return 0, errors.Errorf("setting go version: %w", err)
	}
	return 1, nil
}

// requires reports whether f has a requirement on path
func requires(f *modfile.File, path string) bool {
	for _, req := range f.Require {
		if req.Mod.Path == path {
			return true
		}
	}
	return false
}

// defaultName derives a rule set name from its file name
func defaultName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
