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

package ruleset

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for rule set parsers
type Parser interface {
	// 📝 Parse parses a rule set and resolves it against options
	Parse(ctx context.Context, data []byte, filename string, options map[string]any) (*RuleSet, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🎯 Load reads a rule set file, resolves its conditional rules against
// options and validates the result
func Load(ctx context.Context, path string, options map[string]any) (*RuleSet, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading rule set")

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading rule set: %w", err)
	}

	rs, err := p.Parse(ctx, data, path, options)
	if err != nil {
		return nil, errors.Errorf("parsing rule set: %w", err)
	}

	if rs.Name == "" {
		rs.Name = defaultName(path)
	}
	rs.Source = path

	if err := rs.Validate(); err != nil {
		return nil, errors.Errorf("validating rule set: %w", err)
	}

	logger.Debug().Str("name", rs.Name).Int("rules", len(rs.Rules)).Msg("rule set loaded")
	return rs, nil
}

// 📄 document is the shape shared by the YAML, JSON and TOML formats
type document struct {
	Name  string `json:"name" yaml:"name" toml:"name"`
	Rules []Rule `json:"rules" yaml:"rules" toml:"rules"`
}

// resolve keeps the rules whose When option is truthy
func (d *document) resolve(options map[string]any) *RuleSet {
	rs := &RuleSet{Name: d.Name}
	for _, r := range d.Rules {
		if r.When != "" && !Truthy(options[r.When]) {
			continue
		}
		rs.Rules = append(rs.Rules, r)
	}
	return rs
}

// 🔦 Truthy reports whether an option value enables a rule
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		s := strings.ToLower(strings.TrimSpace(x))
		return s != "" && s != "false" && s != "0"
	case float64:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	case json.Number:
		f, err := x.Float64()
		return err == nil && f != 0
	default:
		return true
	}
}
