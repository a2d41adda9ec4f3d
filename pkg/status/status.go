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

package status

import (
	"time"
)

// 📊 State classifies the result of running the pipeline on one file
type State int

const (
	StateUnchanged State = iota // Formatted output equals the original
	StateChanged                // Formatted output differs and was written
	StateErrored                // A pipeline stage failed
)

// String returns a string representation of State
func (s State) String() string {
	switch s {
	case StateUnchanged:
		return "unchanged"
	case StateChanged:
		return "changed"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// 📄 Outcome is the tagged result for one processed file
type Outcome struct {
	Path  string // Path of the processed file
	State State  // Exactly one of the three states
	Err   error  // Set only when State is StateErrored
	Diff  string // Line diff, set only for changed files when requested
}

// Changed returns a changed outcome for path
func Changed(path, diff string) Outcome {
	return Outcome{Path: path, State: StateChanged, Diff: diff}
}

// Unchanged returns an unchanged outcome for path
func Unchanged(path string) Outcome {
	return Outcome{Path: path, State: StateUnchanged}
}

// Errored returns an errored outcome for path carrying err
func Errored(path string, err error) Outcome {
	return Outcome{Path: path, State: StateErrored, Err: err}
}

// Message returns the error message of an errored outcome, or "" otherwise
func (o Outcome) Message() string {
	if o.State != StateErrored || o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// 🧮 Summary accumulates outcomes over a run. It has a single owner and is
// not safe for concurrent use.
type Summary struct {
	Found     int           // Files returned by discovery
	Changed   int           // Files rewritten (or that would be, in dry-run)
	Unchanged int           // Files left as-is
	Errored   int           // Files whose pipeline failed
	Elapsed   time.Duration // Wall-clock time of the run
}

// Add folds one outcome into the summary
func (s *Summary) Add(o Outcome) {
	switch o.State {
	case StateChanged:
		s.Changed++
	case StateErrored:
		s.Errored++
	default:
		s.Unchanged++
	}
}

// Processed returns the number of outcomes folded so far
func (s *Summary) Processed() int {
	return s.Changed + s.Unchanged + s.Errored
}

// Finish records the elapsed time since start
func (s *Summary) Finish(start time.Time) {
	s.Elapsed = time.Since(start)
}
