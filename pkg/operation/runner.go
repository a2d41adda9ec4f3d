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

package operation

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/codemod/pkg/discover"
	"github.com/walteh/codemod/pkg/log"
	"github.com/walteh/codemod/pkg/pipeline"
	"github.com/walteh/codemod/pkg/plugin"
	"github.com/walteh/codemod/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// ⚙️ RunOptions describes one run
type RunOptions struct {
	Input         string         // Directory to rewrite
	Plugin        string         // Plugin path
	PluginOptions map[string]any // Options handed to the plugin for every file
	Exclude       []string       // Extra exclude globs
	Pipeline      pipeline.Options
}

// 🏃 Runner executes runs
type Runner struct {
	console *log.Console
}

// 🏗️ NewRunner creates a new runner printing to console
func NewRunner(console *log.Console) *Runner {
	return &Runner{
		console: console,
	}
}

// 🏃 Run loads the plugin, discovers the files under the input directory and
// processes them one at a time. Per-file failures are counted in the summary;
// only an unusable plugin, an invalid input or cancellation return an error.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*status.Summary, error) {
	logger := zerolog.Ctx(ctx)
	start := time.Now()

	desc, err := plugin.Load(ctx, opts.Plugin, opts.PluginOptions)
	if err != nil {
		return nil, errors.Errorf("loading plugin: %w", err)
	}

	files, err := discover.Files(ctx, opts.Input, discover.Options{Exclude: opts.Exclude})
	if err != nil {
		return nil, errors.Errorf("discovering files: %w", err)
	}

	summary := &status.Summary{Found: len(files)}
	r.console.Found(ctx, len(files))

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			summary.Finish(start)
			return summary, errors.Errorf("run cancelled: %w", err)
		}

		outcome := pipeline.Process(ctx, path, desc, opts.Pipeline)
		summary.Add(outcome)
		r.console.File(ctx, outcome)

		logger.Trace().Str("file", path).Msg(status.FormatProgress(i+1, len(files)))
	}

	summary.Finish(start)
	r.console.Summary(ctx, *summary)

	return summary, nil
}
