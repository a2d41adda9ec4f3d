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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fooSource = "package p\n\nfunc foo() int {\n\treturn 1\n}\n\nvar x = foo()\n"

func setup(t *testing.T) (dir, rules, cfg string) {
	t.Helper()
	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte(fooSource), 0644))

	pluginDir := t.TempDir()
	rules = filepath.Join(pluginDir, "rename.hcl")
	require.NoError(t, os.WriteFile(rules, []byte(`rule "rename_ident" {
  from = "foo"
  to   = try(options.to, "bar")
}
`), 0644))

	cfg = filepath.Join(pluginDir, "missing-config.yaml")
	return dir, rules, cfg
}

func TestRun(t *testing.T) {
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		args     func(dir, rules, cfg string) []string
		wantCode int
		wantOut  []string
		wantErr  string
		wantFile string
	}{
		{
			name: "rename",
			args: func(dir, rules, cfg string) []string {
				return []string{dir, "-p", rules, "--config", cfg, "--color", "never"}
			},
			wantCode: 0,
			wantOut:  []string{"Found 1 files", "1 changed files, 0 errors", "Done in "},
			wantFile: "func bar() int",
		},
		{
			name: "plugin_options",
			args: func(dir, rules, cfg string) []string {
				return []string{dir, "-p", rules, "-o", `{"to":"baz"}`, "--config", cfg, "--color", "never", "--summary", "line"}
			},
			wantCode: 0,
			wantOut:  []string{"1 found files, 1 changed files, 0 errors"},
			wantFile: "func baz() int",
		},
		{
			name: "dry_run_diff",
			args: func(dir, rules, cfg string) []string {
				return []string{dir, "-p", rules, "--config", cfg, "--color", "never", "--dry-run", "--diff"}
			},
			wantCode: 0,
			wantOut:  []string{"-func foo() int {", "+func bar() int {"},
			wantFile: "func foo() int",
		},
		{
			name: "input_not_a_directory",
			args: func(dir, rules, cfg string) []string {
				return []string{filepath.Join(dir, "a.go"), "-p", rules, "--config", cfg}
			},
			wantCode: 1,
			wantErr:  "input path is not a directory",
			wantFile: "func foo() int",
		},
		{
			name: "missing_plugin",
			args: func(dir, rules, cfg string) []string {
				return []string{dir, "-p", filepath.Join(dir, "nope.yaml"), "--config", cfg}
			},
			wantCode: 1,
			wantErr:  "failed to load plugin",
			wantFile: "func foo() int",
		},
		{
			name: "invalid_plugin_options",
			args: func(dir, rules, cfg string) []string {
				return []string{dir, "-p", rules, "-o", "{not json", "--config", cfg}
			},
			wantCode: 1,
			wantErr:  "--pluginOptions must be a JSON object",
			wantFile: "func foo() int",
		},
		{
			name: "no_input",
			args: func(dir, rules, cfg string) []string {
				return []string{"-p", rules, "--config", cfg}
			},
			wantCode: 1,
			wantErr:  "accepts 1 arg(s)",
			wantFile: "func foo() int",
		},
		{
			name: "invalid_formatter",
			args: func(dir, rules, cfg string) []string {
				return []string{dir, "-p", rules, "--config", cfg, "--formatter", "prettier"}
			},
			wantCode: 1,
			wantErr:  "unknown formatter",
			wantFile: "func foo() int",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, rules, cfg := setup(t)

			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args(dir, rules, cfg), &stdout, &stderr)

			assert.Equal(t, tt.wantCode, code, "stderr: %s", stderr.String())
			for _, want := range tt.wantOut {
				assert.Contains(t, stdout.String(), want)
			}
			if tt.wantErr != "" {
				assert.Contains(t, stderr.String(), tt.wantErr)
			}

			content, err := os.ReadFile(filepath.Join(dir, "a.go"))
			require.NoError(t, err)
			assert.True(t, strings.Contains(string(content), tt.wantFile), "file content: %s", content)
		})
	}
}

func TestBuildInfoLog(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	logger.Info().Object("build", readBuildInfo()).Msg("starting codemod")

	out := buf.String()
	assert.Contains(t, out, `"version":"`)
	assert.Contains(t, out, `"go":"go`)
	assert.Contains(t, out, `"platform":"`)
}
