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

// Package pipeline runs a plugin over one file: read, parse, transform,
// print, format, compare and write when the result differs.
package pipeline

import (
	"bytes"
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/walteh/codemod/pkg/format"
	"github.com/walteh/codemod/pkg/plugin"
	"github.com/walteh/codemod/pkg/status"
	"github.com/walteh/codemod/pkg/syntax"
	"gitlab.com/tozd/go/errors"
)

// ⚙️ Options controls how a file is processed
type Options struct {
	// DryRun classifies files without writing them
	DryRun bool
	// Diff attaches a line diff to changed outcomes
	Diff bool
	// Print selects whether the formatter gets printed text or the tree
	Print syntax.PrintMode
	// Formatter formats the result; nil uses format.New()
	Formatter *format.Formatter
}

// 🏃 Process runs desc over the file at path. Failures are reported in the
// returned outcome; Process never panics on plugin errors.
func Process(ctx context.Context, path string, desc *plugin.Descriptor, opts Options) status.Outcome {
	logger := zerolog.Ctx(ctx).With().Str("file", path).Logger()

	fail := func(stage Stage, err error) status.Outcome {
		logger.Debug().Err(err).Str("stage", string(stage)).Msg("pipeline failed")
		return status.Errored(path, &StageError{Stage: stage, Path: path, Err: err})
	}

	formatter := opts.Formatter
	if formatter == nil {
		formatter = format.New()
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return fail(StageRead, err)
	}

	file, err := syntax.Parse(path, src)
	if err != nil {
		return fail(StageParse, err)
	}

	if err := transform(ctx, desc, file); err != nil {
		return fail(StageTransform, err)
	}

	style, err := formatter.Resolve(ctx, path)
	if err != nil {
		return fail(StageFormat, err)
	}

	var out []byte
	switch opts.Print {
	case syntax.PrintNode:
		out, err = formatter.Node(ctx, file, style)
		if err != nil {
			return fail(StageFormat, err)
		}
	default:
		printed, err := file.Print()
		if err != nil {
			return fail(StagePrint, err)
		}
		out, err = formatter.Source(ctx, file.Kind, path, printed, style)
		if err != nil {
			return fail(StageFormat, err)
		}
	}

	if bytes.Equal(src, out) {
		logger.Trace().Msg("unchanged")
		return status.Unchanged(path)
	}

	var diff string
	if opts.Diff {
		diff = lineDiff(path, src, out)
	}

	if opts.DryRun {
		logger.Debug().Msg("changed, not writing (dry run)")
		return status.Changed(path, diff)
	}

	if err := writeFileAtomic(path, out); err != nil {
		return fail(StageWrite, err)
	}

	logger.Debug().Int("bytes", len(out)).Msg("written")
	return status.Changed(path, diff)
}

// transform runs the plugin and turns a panic inside it into an error
func transform(ctx context.Context, desc *plugin.Descriptor, file *syntax.File) (err error) {
	if desc == nil || desc.Transformer == nil {
		return errors.New("no transformer loaded")
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("transformer panicked: %v", r)
		}
	}()

	return desc.Transformer.Transform(ctx, file, desc.Options)
}
