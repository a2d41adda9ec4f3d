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

package pipeline

import (
	"context"
	"go/ast"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/codemod/pkg/plugin"
	"github.com/walteh/codemod/pkg/plugin/ruleset"
	"github.com/walteh/codemod/pkg/status"
	"github.com/walteh/codemod/pkg/syntax"
	"gitlab.com/tozd/go/errors"
)

const fooSource = `package p

func foo() int {
	return 1
}

var x = foo()
`

const barSource = `package p

func bar() int {
	return 1
}

var x = bar()
`

func testContext(t *testing.T) context.Context {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func descriptor(fn plugin.TransformerFunc, options map[string]any) *plugin.Descriptor {
	if options == nil {
		options = map[string]any{}
	}
	return &plugin.Descriptor{Name: "test", Transformer: fn, Options: options}
}

func rename(from, to string) plugin.TransformerFunc {
	return func(ctx context.Context, file *syntax.File, options map[string]any) error {
		if file.Go == nil {
			return nil
		}
		ast.Inspect(file.Go, func(n ast.Node) bool {
			if id, ok := n.(*ast.Ident); ok && id.Name == from {
				id.Name = to
			}
			return true
		})
		return nil
	}
}

func noop(ctx context.Context, file *syntax.File, options map[string]any) error {
	return nil
}

// 🧪 TestProcessWritesOnChange tests the rename plugin end to end
func TestProcessWritesOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "p.go", fooSource)

	outcome := Process(testContext(t), path, descriptor(rename("foo", "bar"), nil), Options{})
	require.Equal(t, status.StateChanged, outcome.State, "file should change: %v", outcome.Err)
	assert.Empty(t, outcome.Diff, "diff should only be set when requested")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, barSource, string(got), "file should be rewritten")

	t.Run("idempotent", func(t *testing.T) {
		outcome := Process(testContext(t), path, descriptor(rename("foo", "bar"), nil), Options{})
		assert.Equal(t, status.StateUnchanged, outcome.State, "second run should not change the file")
	})
}

// 🧪 TestProcessNoopPreservesFile tests that an unchanged file is not touched
func TestProcessNoopPreservesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "p.go", fooSource)

	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(path, past, past))

	outcome := Process(testContext(t), path, descriptor(noop, nil), Options{})
	assert.Equal(t, status.StateUnchanged, outcome.State)
	assert.NoError(t, outcome.Err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(past), "mtime should not change")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fooSource, string(got))
}

// 🧪 TestProcessFormatsUnformattedInput tests that a no-op plugin still
// rewrites files the formatter disagrees with
func TestProcessFormatsUnformattedInput(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "p.go", "package p\nfunc f( ) {}\n")

	outcome := Process(testContext(t), path, descriptor(noop, nil), Options{})
	assert.Equal(t, status.StateChanged, outcome.State)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package p\n\nfunc f() {}\n", string(got))
}

// 🧪 TestProcessErrors tests that each stage failure is isolated and typed
func TestProcessErrors(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		content   string
		missing   bool
		fn        plugin.TransformerFunc
		wantStage Stage
		wantErr   error
	}{
		{
			name:      "read",
			file:      "p.go",
			missing:   true,
			fn:        noop,
			wantStage: StageRead,
			wantErr:   ErrRead,
		},
		{
			name:      "parse",
			file:      "p.go",
			content:   "package p\nfunc {",
			fn:        noop,
			wantStage: StageParse,
			wantErr:   ErrParse,
		},
		{
			name:    "transform_error",
			file:    "p.go",
			content: fooSource,
			fn: func(ctx context.Context, file *syntax.File, options map[string]any) error {
				return errors.New("boom")
			},
			wantStage: StageTransform,
			wantErr:   ErrTransform,
		},
		{
			name:    "transform_panic",
			file:    "p.go",
			content: fooSource,
			fn: func(ctx context.Context, file *syntax.File, options map[string]any) error {
				panic("boom")
			},
			wantStage: StageTransform,
			wantErr:   ErrTransform,
		},
		{
			name:      "format",
			file:      "p.go",
			content:   fooSource,
			fn:        rename("foo", "1 +"),
			wantStage: StageFormat,
			wantErr:   ErrFormat,
		},
		{
			name:      "unsupported_kind",
			file:      "notes.txt",
			content:   "hello",
			fn:        noop,
			wantStage: StageParse,
			wantErr:   ErrParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, tt.file)
			if !tt.missing {
				writeFile(t, dir, tt.file, tt.content)
			}

			var outcome status.Outcome
			require.NotPanics(t, func() {
				outcome = Process(testContext(t), path, descriptor(tt.fn, nil), Options{})
			})

			require.Equal(t, status.StateErrored, outcome.State)
			assert.Equal(t, path, outcome.Path)
			assert.NotEmpty(t, outcome.Message())
			assert.True(t, errors.Is(outcome.Err, tt.wantErr), "error should match %v, got %v", tt.wantErr, outcome.Err)

			var stageErr *StageError
			require.True(t, errors.As(outcome.Err, &stageErr), "error should be a StageError")
			assert.Equal(t, tt.wantStage, stageErr.Stage)
			assert.Equal(t, path, stageErr.Path)

			if !tt.missing {
				got, err := os.ReadFile(path)
				require.NoError(t, err)
				assert.Equal(t, tt.content, string(got), "failed files should not be touched")
			}
		})
	}
}

// 🧪 TestProcessDryRun tests that dry runs classify without writing
func TestProcessDryRun(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "p.go", fooSource)

	outcome := Process(testContext(t), path, descriptor(rename("foo", "bar"), nil), Options{DryRun: true, Diff: true})
	assert.Equal(t, status.StateChanged, outcome.State)
	assert.Contains(t, outcome.Diff, "-func foo() int {\n")
	assert.Contains(t, outcome.Diff, "+func bar() int {\n")
	assert.Contains(t, outcome.Diff, "+var x = bar()\n")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fooSource, string(got), "dry run should not write")
}

// 🧪 TestProcessKeepsMode tests that rewritten files keep their permission bits
func TestProcessKeepsMode(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "p.go", fooSource)
	require.NoError(t, os.Chmod(path, 0600))

	outcome := Process(testContext(t), path, descriptor(rename("foo", "bar"), nil), Options{})
	require.Equal(t, status.StateChanged, outcome.State)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files should be left behind")
}

// 🧪 TestProcessPassesOptions tests that the options map reaches the plugin
func TestProcessPassesOptions(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "p.go", fooSource)

	var got map[string]any
	fn := func(ctx context.Context, file *syntax.File, options map[string]any) error {
		got = options
		if options["doMagic"] == true {
			return rename("foo", "magic")(ctx, file, options)
		}
		return nil
	}

	outcome := Process(testContext(t), path, descriptor(fn, map[string]any{"doMagic": true}), Options{})
	require.Equal(t, status.StateChanged, outcome.State)
	assert.Equal(t, map[string]any{"doMagic": true}, got)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "func magic() int")
}

// 🧪 TestProcessPrintNode tests formatting straight from the tree
func TestProcessPrintNode(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "p.go", fooSource)

	outcome := Process(testContext(t), path, descriptor(rename("foo", "bar"), nil), Options{Print: syntax.PrintNode})
	require.Equal(t, status.StateChanged, outcome.State, "file should change: %v", outcome.Err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, barSource, string(got))
}

// 🧪 TestProcessModFile tests a rule set over go.mod
func TestProcessModFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "go.mod", "module example.com/m\n\ngo 1.21\n")

	rs := &ruleset.RuleSet{Name: "bump", Rules: []ruleset.Rule{{Kind: ruleset.KindSetGoVersion, Version: "1.22"}}}
	desc := &plugin.Descriptor{Name: rs.Name, Transformer: rs, Options: map[string]any{}}

	outcome := Process(testContext(t), path, desc, Options{})
	require.Equal(t, status.StateChanged, outcome.State, "file should change: %v", outcome.Err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "module example.com/m\n\ngo 1.22\n", string(got))
}
