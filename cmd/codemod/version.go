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
	"runtime"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// buildInfo describes the running binary for debug logs
type buildInfo struct {
	version  string
	revision string
	modified bool
}

// readBuildInfo reads the module version and vcs stamp of the binary
func readBuildInfo() buildInfo {
	info := buildInfo{version: "dev"}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.version = bi.Main.Version
	}
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.revision = setting.Value
		case "vcs.modified":
			info.modified = setting.Value == "true"
		}
	}
	return info
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler
func (b buildInfo) MarshalZerologObject(e *zerolog.Event) {
	e.Str("version", b.version).
		Str("go", runtime.Version()).
		Str("platform", runtime.GOOS+"/"+runtime.GOARCH)
	if b.revision != "" {
		e.Str("revision", b.revision).Bool("modified", b.modified)
	}
}
