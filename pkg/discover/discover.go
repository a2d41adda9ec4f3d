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

// Package discover expands an input directory into the files codemod should
// rewrite.
package discover

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/codemod/pkg/syntax"
	"gitlab.com/tozd/go/errors"
)

// ErrInvalidInput is returned when the input path is not a directory
var ErrInvalidInput = errors.Base("input path is not a directory")

var (
	// 🗂️ DefaultIncludes is the allow-list of files to rewrite
	DefaultIncludes = []string{"**/*.go", "**/go.mod", "**/go.work"}

	// 🚫 DefaultExcludes skips dependency directories
	DefaultExcludes = []string{"**/vendor/**"}
)

// 🔧 Options controls which files are returned
type Options struct {
	// Include replaces DefaultIncludes when set
	Include []string
	// Exclude is appended to DefaultExcludes
	Exclude []string
}

func (o Options) includes() []string {
	if len(o.Include) > 0 {
		return o.Include
	}
	return DefaultIncludes
}

func (o Options) excludes() []string {
	return append(append([]string{}, DefaultExcludes...), o.Exclude...)
}

// 🔍 Files walks root and returns every regular file that matches the
// include globs and no exclude glob, in lexical walk order. Globs are matched
// against slash-separated paths relative to root.
func Files(ctx context.Context, root string, opts Options) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Errorf("%w: %s: %s", ErrInvalidInput, root, err.Error())
	}
	if !info.IsDir() {
		return nil, errors.Errorf("%w: %s", ErrInvalidInput, root)
	}

	for _, pattern := range append(opts.includes(), opts.excludes()...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid glob pattern %q", pattern)
		}
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return errors.Errorf("relativizing %s: %w", path, err)
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			// match the directory as if it had a child so "**/vendor/**" prunes it
			if matchAny(opts.excludes(), rel+"/_") {
				logger.Debug().Str("dir", rel).Msg("skipping excluded directory")
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if matchAny(opts.excludes(), rel) || !matchAny(opts.includes(), rel) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walking %s: %w", root, err)
	}

	logger.Debug().Str("root", root).Int("files", len(files)).Msg("discovered files")
	return files, nil
}

// matchAny reports whether path matches one of patterns
func matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

// 🔍 KindOf classifies a discovered path
func KindOf(path string) syntax.Kind {
	return syntax.KindOf(path)
}
