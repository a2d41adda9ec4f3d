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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/tryfunc"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files. Attributes are
// expressions evaluated with the run's options bound to the variable
// "options" and the functions try and can, e.g.
//
//	rule "rename_ident" {
//	  from = "foo"
//	  to   = try(options.newName, "bar")
//	  when = try(options.doMagic, false)
//	}
//
// when accepts any value and follows the same truthiness as the other
// formats, so "1" and 1 enable a rule just like true.
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the rule set from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte, filename string, options map[string]any) (*RuleSet, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	optionsVal, err := optionsValue(options)
	if err != nil {
		return nil, errors.Errorf("converting options: %w", err)
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"options": optionsVal,
		},
		Functions: map[string]function.Function{
			"try": tryfunc.TryFunc,
			"can": tryfunc.CanFunc,
		},
	}

	// Define HCL schema
	type hclRule struct {
		Kind    string    `hcl:"kind,label"`
		From    string    `hcl:"from,optional"`
		To      string    `hcl:"to,optional"`
		Version string    `hcl:"version,optional"`
		Path    string    `hcl:"path,optional"`
		When    cty.Value `hcl:"when,optional"`
	}
	type hclRuleSet struct {
		Name  string    `hcl:"name,optional"`
		Rules []hclRule `hcl:"rule,block"`
	}

	// Decode HCL
	var doc hclRuleSet
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &doc)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	rs := &RuleSet{Name: doc.Name}
	for i, r := range doc.Rules {
		// a rule without when is always active
		if r.When.Type() != cty.NilType {
			when, err := goValue(r.When)
			if err != nil {
				return nil, errors.Errorf("rule %d: when: %w", i, err)
			}
			if !Truthy(when) {
				continue
			}
		}
		rs.Rules = append(rs.Rules, Rule{
			Kind:    Kind(r.Kind),
			From:    r.From,
			To:      r.To,
			Version: r.Version,
			Path:    r.Path,
		})
	}

	return rs, nil
}

// goValue converts a condition into the value Truthy expects
func goValue(v cty.Value) (any, error) {
	if !v.IsKnown() {
		return nil, errors.New("value is not known")
	}
	if v.IsNull() {
		return nil, nil
	}
	switch ty := v.Type(); {
	case ty.Equals(cty.Bool):
		return v.True(), nil
	case ty.Equals(cty.Number):
		f, _ := v.AsBigFloat().Float64()
		return f, nil
	case ty.Equals(cty.String):
		return v.AsString(), nil
	default:
		return true, nil
	}
}

// optionsValue converts the options map into a cty object
func optionsValue(options map[string]any) (cty.Value, error) {
	if len(options) == 0 {
		return cty.EmptyObjectVal, nil
	}

	raw, err := json.Marshal(options)
	if err != nil {
		return cty.NilVal, errors.Errorf("marshaling options: %w", err)
	}

	ty, err := ctyjson.ImpliedType(raw)
	if err != nil {
		return cty.NilVal, errors.Errorf("inferring options type: %w", err)
	}

	val, err := ctyjson.Unmarshal(raw, ty)
	if err != nil {
		return cty.NilVal, errors.Errorf("unmarshaling options: %w", err)
	}

	return val, nil
}
