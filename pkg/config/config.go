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

package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"github.com/walteh/codemod/pkg/format"
	"github.com/walteh/codemod/pkg/log"
	"github.com/walteh/codemod/pkg/syntax"
	"gitlab.com/tozd/go/errors"
)

// EnvPrefix is the prefix of environment variables read into Settings
const EnvPrefix = "CODEMOD_"

// 📚 Settings is the complete configuration of one run
type Settings struct {
	Input         string         `koanf:"input"`
	Plugin        string         `koanf:"plugin"`
	PluginOptions map[string]any `koanf:"plugin_options"`
	Verbose       bool           `koanf:"verbose"`
	DryRun        bool           `koanf:"dry_run"`
	Diff          bool           `koanf:"diff"`
	Summary       string         `koanf:"summary"`
	Print         string         `koanf:"print"`
	Formatter     string         `koanf:"formatter"`
	Exclude       []string       `koanf:"exclude"`
	Color         string         `koanf:"color"`
	Debug         bool           `koanf:"debug"`
}

// defaults are the lowest layer of every load
var defaults = map[string]any{
	"summary":   string(log.SummarySplit),
	"print":     string(syntax.PrintReprint),
	"color":     string(log.ColorAuto),
	"formatter": "",
	"verbose":   false,
	"dry_run":   false,
	"diff":      false,
	"debug":     false,
}

// ⚙️ LoadOptions controls where settings are read from
type LoadOptions struct {
	// ConfigFile is the user config file; empty uses DefaultConfigFile
	ConfigFile string
	// Overrides are applied last, usually from command line flags
	Overrides map[string]any
}

// 📁 DefaultConfigFile returns the user config file path under the XDG
// config directory
func DefaultConfigFile() string {
	return filepath.Join(xdg.ConfigHome, "codemod", "config.yaml")
}

// 🎯 Load layers defaults, the user config file, CODEMOD_* environment
// variables and overrides, in that order, and validates the result
func Load(ctx context.Context, opts LoadOptions) (*Settings, error) {
	logger := zerolog.Ctx(ctx)
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, errors.Errorf("loading defaults: %w", err)
	}

	// 2. Load user config if it exists
	cfgPath := opts.ConfigFile
	if cfgPath == "" {
		cfgPath = DefaultConfigFile()
	}
	if _, err := os.Stat(cfgPath); err == nil {
		logger.Debug().Str("path", cfgPath).Msg("loading user config")
		if err := k.Load(file.Provider(cfgPath), yaml.Parser()); err != nil {
			return nil, errors.Errorf("loading config from %s: %w", cfgPath, err)
		}
	}

	// 3. Load env vars
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, errors.Errorf("loading env vars: %w", err)
	}

	// 4. Load overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, ""), nil); err != nil {
			return nil, errors.Errorf("loading overrides: %w", err)
		}
	}

	// 5. Unmarshal
	var s Settings
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &s,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &s, unmarshalConf); err != nil {
		return nil, errors.Errorf("decoding settings: %w", err)
	}

	if s.PluginOptions == nil {
		s.PluginOptions = map[string]any{}
	}

	if err := s.Validate(); err != nil {
		return nil, errors.Errorf("validating settings: %w", err)
	}

	logger.Debug().
		Str("input", s.Input).
		Str("plugin", s.Plugin).
		Str("summary", s.Summary).
		Str("print", s.Print).
		Str("formatter", s.Formatter).
		Msg("settings loaded")

	return &s, nil
}

// 🔍 Validate checks if the settings are usable for a run
func (s *Settings) Validate() error {
	if s.Input == "" {
		return errors.New("input path is required")
	}
	if s.Plugin == "" {
		return errors.New("plugin is required")
	}
	if _, err := log.ParseSummaryLayout(s.Summary); err != nil {
		return err
	}
	if _, err := syntax.ParsePrintMode(s.Print); err != nil {
		return err
	}
	if _, err := format.ParseTool(s.Formatter); err != nil {
		return err
	}
	if _, err := log.ParseColorMode(s.Color); err != nil {
		return err
	}
	return nil
}
