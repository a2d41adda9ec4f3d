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
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/codemod/pkg/config"
	"github.com/walteh/codemod/pkg/format"
	"github.com/walteh/codemod/pkg/log"
	"github.com/walteh/codemod/pkg/operation"
	"github.com/walteh/codemod/pkg/pipeline"
	"github.com/walteh/codemod/pkg/syntax"
	"gitlab.com/tozd/go/errors"
)

// ErrUsage is returned for invalid command line input
var ErrUsage = errors.Base("invalid usage")

// rootOpts holds the raw command line flags
type rootOpts struct {
	configFile    string
	plugin        string
	pluginOptions string
	verbose       bool
	dryRun        bool
	diff          bool
	summary       string
	print         string
	formatter     string
	exclude       []string
	color         string
	debug         bool
}

// newRootCmd creates the codemod command
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	o := &rootOpts{}

	cmd := &cobra.Command{
		Use:   "codemod <inputPath>",
		Short: "Run a codemod plugin over a Go source tree",
		Long: `codemod parses every .go, go.mod and go.work file under inputPath, applies
the plugin's rewrites, formats the result and writes back only the files
whose formatted output differs from what is on disk.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args[0], stdout, stderr)
		},
	}

	addRootFlags(cmd, o)
	return cmd
}

// addRootFlags adds the flags of the root command
func addRootFlags(cmd *cobra.Command, o *rootOpts) {
	cmd.Flags().StringVar(&o.configFile, "config", "", "user config file (default $XDG_CONFIG_HOME/codemod/config.yaml)")
	cmd.Flags().StringVarP(&o.plugin, "plugin", "p", "", "path to the plugin (.hcl, .yaml, .json, .toml rule set or .so)")
	cmd.Flags().StringVarP(&o.pluginOptions, "pluginOptions", "o", "", "plugin options as a JSON object")
	cmd.Flags().BoolVarP(&o.verbose, "verbose", "v", false, "also print unchanged files")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "report changes without writing files")
	cmd.Flags().BoolVar(&o.diff, "diff", false, "print a diff for every changed file")
	cmd.Flags().StringVar(&o.summary, "summary", "", "summary layout: split or line")
	cmd.Flags().StringVar(&o.print, "print", "", "what gets formatted: reprint (printed text) or node (syntax tree)")
	cmd.Flags().StringVar(&o.formatter, "formatter", "", "force a formatter: gofmt, goimports or gofumpt")
	cmd.Flags().StringSliceVar(&o.exclude, "exclude", nil, "extra glob of paths to skip, relative to inputPath")
	cmd.Flags().StringVar(&o.color, "color", "", "colorize output: auto, always or never")
	cmd.Flags().BoolVarP(&o.debug, "debug", "d", false, "enable debug logging")
}

// overrides returns the settings given explicitly on the command line
func (o *rootOpts) overrides(cmd *cobra.Command, input string) (map[string]any, error) {
	over := map[string]any{"input": input}

	set := func(flag, key string, value any) {
		if cmd.Flags().Changed(flag) {
			over[key] = value
		}
	}
	set("plugin", "plugin", o.plugin)
	set("verbose", "verbose", o.verbose)
	set("dry-run", "dry_run", o.dryRun)
	set("diff", "diff", o.diff)
	set("summary", "summary", o.summary)
	set("print", "print", o.print)
	set("formatter", "formatter", o.formatter)
	set("exclude", "exclude", o.exclude)
	set("color", "color", o.color)
	set("debug", "debug", o.debug)

	if cmd.Flags().Changed("pluginOptions") {
		var options map[string]any
		if err := json.Unmarshal([]byte(o.pluginOptions), &options); err != nil {
			return nil, errors.Errorf("%w: --pluginOptions must be a JSON object: %s", ErrUsage, err.Error())
		}
		if options == nil {
			return nil, errors.Errorf("%w: --pluginOptions must be a JSON object", ErrUsage)
		}
		over["plugin_options"] = options
	}

	return over, nil
}

// run loads the settings and executes the codemod
func (o *rootOpts) run(cmd *cobra.Command, input string, stdout, stderr io.Writer) error {
	level := zerolog.InfoLevel
	if o.debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen}).Level(level).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	over, err := o.overrides(cmd, input)
	if err != nil {
		return err
	}

	settings, err := config.Load(ctx, config.LoadOptions{ConfigFile: o.configFile, Overrides: over})
	if err != nil {
		return errors.Errorf("%w: %s", ErrUsage, err.Error())
	}

	if settings.Debug && level != zerolog.DebugLevel {
		logger = logger.Level(zerolog.DebugLevel)
		ctx = logger.WithContext(ctx)
	}

	logger.Debug().Object("build", readBuildInfo()).Msg("starting codemod")

	runOpts, console, err := buildRun(settings, stdout)
	if err != nil {
		return errors.Errorf("%w: %s", ErrUsage, err.Error())
	}

	_, err = operation.NewRunner(console).Run(ctx, runOpts)
	return err
}

// buildRun turns validated settings into run options and a console
func buildRun(s *config.Settings, stdout io.Writer) (operation.RunOptions, *log.Console, error) {
	layout, err := log.ParseSummaryLayout(s.Summary)
	if err != nil {
		return operation.RunOptions{}, nil, err
	}
	mode, err := syntax.ParsePrintMode(s.Print)
	if err != nil {
		return operation.RunOptions{}, nil, err
	}
	tool, err := format.ParseTool(s.Formatter)
	if err != nil {
		return operation.RunOptions{}, nil, err
	}
	colorMode, err := log.ParseColorMode(s.Color)
	if err != nil {
		return operation.RunOptions{}, nil, err
	}

	log.SetColorMode(colorMode, stdout)

	return operation.RunOptions{
		Input:         s.Input,
		Plugin:        s.Plugin,
		PluginOptions: s.PluginOptions,
		Exclude:       s.Exclude,
		Pipeline: pipeline.Options{
			DryRun:    s.DryRun,
			Diff:      s.Diff,
			Print:     mode,
			Formatter: format.New(format.WithTool(tool)),
		},
	}, log.New(stdout, s.Verbose, layout), nil
}

// run executes the command line and returns the process exit code. Per-file
// errors are reported but do not fail the run.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		log.New(stderr, false, log.SummarySplit).Fatal(err)
		return 1
	}
	return 0
}
