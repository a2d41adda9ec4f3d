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

package plugin

import (
	"context"
	goplugin "plugin"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// SymbolName is the symbol a native plugin must export
const SymbolName = "Plugin"

// symbolLookup opens a shared object and looks up one symbol in it
type symbolLookup func(path, symbol string) (any, error)

func openNative(path, symbol string) (any, error) {
	p, err := goplugin.Open(path)
	if err != nil {
		return nil, errors.Errorf("opening plugin: %w", err)
	}
	sym, err := p.Lookup(symbol)
	if err != nil {
		return nil, errors.Errorf("looking up %s: %w", symbol, err)
	}
	return sym, nil
}

// nativeLoader loads Go plugins built with -buildmode=plugin. The plugin
// exports a variable Plugin holding a Transformer:
//
//	var Plugin plugin.TransformerFunc = func(ctx context.Context, f *syntax.File, opts map[string]any) error { ... }
type nativeLoader struct {
	lookup symbolLookup
}

func (l *nativeLoader) CanLoad(path string) bool {
	return strings.HasSuffix(path, ".so")
}

func (l *nativeLoader) Load(ctx context.Context, path string, options map[string]any) (string, Transformer, error) {
	sym, err := l.lookup(path, SymbolName)
	if err != nil {
		return "", nil, err
	}

	switch t := sym.(type) {
	case Transformer:
		return pluginName(path), t, nil
	case *Transformer:
		if t == nil || *t == nil {
			return "", nil, errors.Errorf("symbol %s is nil", SymbolName)
		}
		return pluginName(path), *t, nil
	default:
		return "", nil, errors.Errorf("symbol %s has type %T, which does not implement Transformer", SymbolName, sym)
	}
}
