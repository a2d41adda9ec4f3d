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

// Package plugin resolves a plugin path into a Transformer codemod runs over
// every file.
package plugin

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/codemod/pkg/plugin/ruleset"
	"github.com/walteh/codemod/pkg/syntax"
	"gitlab.com/tozd/go/errors"
)

// ErrPluginLoad is returned when a plugin cannot be turned into a Transformer
var ErrPluginLoad = errors.Base("failed to load plugin")

// 🔌 Transformer mutates a parsed file in place
type Transformer interface {
	Transform(ctx context.Context, file *syntax.File, options map[string]any) error
}

// TransformerFunc adapts a function to the Transformer interface
type TransformerFunc func(ctx context.Context, file *syntax.File, options map[string]any) error

// Transform calls f
func (f TransformerFunc) Transform(ctx context.Context, file *syntax.File, options map[string]any) error {
	return f(ctx, file, options)
}

// 📦 Descriptor is a loaded plugin. Options are handed to the Transformer
// unchanged for every file.
type Descriptor struct {
	Name        string
	Source      string
	Transformer Transformer
	Options     map[string]any
}

// 🔧 Loader turns a plugin file into a Transformer
type Loader interface {
	// 📝 Load loads the plugin at path
	Load(ctx context.Context, path string, options map[string]any) (name string, t Transformer, err error)

	// 🔍 CanLoad checks if this loader can handle the given file
	CanLoad(path string) bool
}

var (
	// 🗺️ loaders is a list of available loaders
	loaders []Loader
)

// 📝 Register registers a loader
func Register(l Loader) {
	loaders = append(loaders, l)
}

// 🎯 GetLoader returns a loader that can handle the given file
func GetLoader(path string) Loader {
	for _, l := range loaders {
		if l.CanLoad(path) {
			return l
		}
	}
	return nil
}

func init() {
	Register(&ruleSetLoader{})
	Register(&nativeLoader{lookup: openNative})
}

// 🎯 Load resolves path into a Descriptor. A nil options map becomes empty.
func Load(ctx context.Context, path string, options map[string]any) (*Descriptor, error) {
	logger := zerolog.Ctx(ctx)

	if options == nil {
		options = map[string]any{}
	}

	if _, err := os.Stat(path); err != nil {
		return nil, errors.Errorf("%w: %s: %s", ErrPluginLoad, path, err.Error())
	}

	l := GetLoader(path)
	if l == nil {
		return nil, errors.Errorf("%w: %s: unsupported plugin type %q", ErrPluginLoad, path, filepath.Ext(path))
	}

	name, t, err := l.Load(ctx, path, options)
	if err != nil {
		return nil, errors.Errorf("%w: %s: %s", ErrPluginLoad, path, err.Error())
	}
	if t == nil {
		return nil, errors.Errorf("%w: %s: no transformer", ErrPluginLoad, path)
	}

	logger.Debug().Str("plugin", name).Str("path", path).Msg("plugin loaded")

	return &Descriptor{
		Name:        name,
		Source:      path,
		Transformer: t,
		Options:     options,
	}, nil
}

// ruleSetLoader loads declarative rule sets
type ruleSetLoader struct{}

func (l *ruleSetLoader) CanLoad(path string) bool {
	return ruleset.GetParser(path) != nil
}

func (l *ruleSetLoader) Load(ctx context.Context, path string, options map[string]any) (string, Transformer, error) {
	rs, err := ruleset.Load(ctx, path, options)
	if err != nil {
		return "", nil, err
	}
	return rs.Name, rs, nil
}

// pluginName derives a plugin name from its file name
func pluginName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
