// Package config loads the settings of a codemod run.
//
//	+-----------+   +-------------+   +-----------+   +-----------+
//	| defaults  |-->| config.yaml |-->| CODEMOD_* |-->|   flags   |
//	+-----------+   +-------------+   +-----------+   +-----------+
//
// 🎯 Purpose:
// - Layers run settings from the least to the most specific source
// - Validates enumerated values before a run starts
//
// 📁 Sources:
// 1. Built-in defaults
// 2. $XDG_CONFIG_HOME/codemod/config.yaml
// 3. CODEMOD_* environment variables (CODEMOD_DRY_RUN=true, CODEMOD_EXCLUDE=a/**,b/**)
// 4. Command line flags that were set explicitly
//
// Example config.yaml:
//
//	plugin: /opt/codemods/errors.yaml
//	summary: line
//	formatter: gofumpt
//	exclude:
//	  - "**/testdata/**"
//	plugin_options:
//	  doMagic: true
package config
