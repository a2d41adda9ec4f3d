// Package ruleset implements declarative codemod plugins: a file listing
// rewrite rules (rename an identifier, move an import, replace text in string
// literals, edit go.mod/go.work directives) in HCL, YAML, JSON or TOML.
//
// Rules can be switched on by the run's plugin options. In YAML, JSON and
// TOML a rule's "when" names an option that must be truthy. In HCL every
// attribute is an expression over the "options" variable.
//
//	name: errors-migration
//	rules:
//	  - kind: rewrite_import
//	    from: github.com/pkg/errors
//	    to: gitlab.com/tozd/go/errors
//	    version: v0.10.0
//	  - kind: rename_ident
//	    from: Wrapf
//	    to: Errorf
//	    when: renameWrap
package ruleset
