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

package format

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/mod/modfile"
)

// ConfigFile is the name of the style configuration file looked up from
// each file's directory towards the root
const ConfigFile = ".codemod.toml"

// 🎨 Style is the code style resolved for one file
type Style struct {
	Tool        Tool   `koanf:"tool"`
	LocalPrefix string `koanf:"local_prefix"`
	ExtraRules  bool   `koanf:"extra_rules"`
	LangVersion string `koanf:"lang_version"`

	// ModulePath is taken from the nearest go.mod
	ModulePath string `koanf:"-"`
	// ConfigPath is the style file the style was read from, if any
	ConfigPath string `koanf:"-"`
}

// 🔍 Resolve walks up from the directory of path and builds its style from
// the nearest .codemod.toml and the nearest go.mod. The formatter's tool
// override, when set, wins over both.
func (f *Formatter) Resolve(ctx context.Context, path string) (Style, error) {
	logger := zerolog.Ctx(ctx)

	abs, err := filepath.Abs(path)
	if err != nil {
		return Style{}, errors.Errorf("resolving path: %w", err)
	}

	style := Style{}
	foundConfig, foundMod := false, false

	for dir := filepath.Dir(abs); ; {
		if !foundConfig {
			cfgPath := filepath.Join(dir, ConfigFile)
			if _, err := os.Stat(cfgPath); err == nil {
				if err := loadStyle(cfgPath, &style); err != nil {
					return Style{}, err
				}
				style.ConfigPath = cfgPath
				foundConfig = true
			}
		}

		if !foundMod {
			modPath := filepath.Join(dir, "go.mod")
			if data, err := os.ReadFile(modPath); err == nil {
				// a broken go.mod is reported when it is processed itself
				if mf, err := modfile.ParseLax(modPath, data, nil); err != nil {
					logger.Debug().Err(err).Str("go_mod", modPath).Msg("ignoring unparsable go.mod")
				} else {
					if mf.Module != nil {
						style.ModulePath = mf.Module.Mod.Path
					}
					if style.LangVersion == "" && mf.Go != nil {
						style.LangVersion = mf.Go.Version
					}
				}
				foundMod = true
			}
		}

		parent := filepath.Dir(dir)
		if (foundConfig && foundMod) || parent == dir {
			break
		}
		dir = parent
	}

	if f.tool != "" {
		style.Tool = f.tool
	}
	if style.Tool == "" {
		style.Tool = ToolGofmt
	}
	if _, err := ParseTool(string(style.Tool)); err != nil {
		return Style{}, err
	}

	logger.Debug().
		Str("file", path).
		Str("tool", string(style.Tool)).
		Str("module", style.ModulePath).
		Str("config", style.ConfigPath).
		Msg("resolved style")

	return style, nil
}

// loadStyle reads the [format] table of a style file into style
func loadStyle(path string, style *Style) error {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return errors.Errorf("loading %s: %w", path, err)
	}

	var cfg Style
	if err := k.UnmarshalWithConf("format", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return errors.Errorf("decoding %s: %w", path, err)
	}

	cfg.Tool = Tool(strings.ToLower(strings.TrimSpace(string(cfg.Tool))))
	if cfg.LangVersion != "" && !modfile.GoVersionRE.MatchString(strings.TrimPrefix(cfg.LangVersion, "go")) {
		return errors.Errorf("%s: invalid lang_version %q", path, cfg.LangVersion)
	}

	style.Tool = cfg.Tool
	style.LocalPrefix = cfg.LocalPrefix
	style.ExtraRules = cfg.ExtraRules
	if cfg.LangVersion != "" {
		style.LangVersion = strings.TrimPrefix(cfg.LangVersion, "go")
	}
	return nil
}
