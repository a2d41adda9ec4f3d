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

package pipeline

import (
	"fmt"

	"gitlab.com/tozd/go/errors"
)

// 🚦 Stage names a step of the per-file pipeline
type Stage string

const (
	StageRead      Stage = "read"
	StageParse     Stage = "parse"
	StageTransform Stage = "transform"
	StagePrint     Stage = "print"
	StageFormat    Stage = "format"
	StageWrite     Stage = "write"
)

var (
	ErrRead      = errors.Base("read error")
	ErrParse     = errors.Base("parse error")
	ErrTransform = errors.Base("transform error")
	ErrFormat    = errors.Base("format error")
	ErrWrite     = errors.Base("write error")
)

// ❌ StageError is the error carried by an errored outcome
type StageError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error of the stage. Print failures match ErrFormat.
func (e *StageError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *StageError) sentinel() error {
	switch e.Stage {
	case StageRead:
		return ErrRead
	case StageParse:
		return ErrParse
	case StageTransform:
		return ErrTransform
	case StagePrint, StageFormat:
		return ErrFormat
	case StageWrite:
		return ErrWrite
	default:
		return nil
	}
}
