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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gitlab.com/tozd/go/errors"
)

func TestStateString(t *testing.T) {
	assert.Equal(t, "unchanged", StateUnchanged.String())
	assert.Equal(t, "changed", StateChanged.String())
	assert.Equal(t, "errored", StateErrored.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestOutcomeConstructors(t *testing.T) {
	changed := Changed("a.go", "-x\n+y\n")
	assert.Equal(t, StateChanged, changed.State)
	assert.Equal(t, "-x\n+y\n", changed.Diff)
	assert.Empty(t, changed.Message())

	unchanged := Unchanged("b.go")
	assert.Equal(t, StateUnchanged, unchanged.State)
	assert.NoError(t, unchanged.Err)

	errored := Errored("c.go", errors.New("boom"))
	assert.Equal(t, StateErrored, errored.State)
	assert.Equal(t, "boom", errored.Message())
}

func TestSummary(t *testing.T) {
	sum := Summary{Found: 4}
	start := time.Now().Add(-time.Second)

	sum.Add(Changed("a.go", ""))
	sum.Add(Unchanged("b.go"))
	sum.Add(Errored("c.go", errors.New("bad")))
	sum.Add(Changed("d.go", ""))
	sum.Finish(start)

	assert.Equal(t, 2, sum.Changed)
	assert.Equal(t, 1, sum.Unchanged)
	assert.Equal(t, 1, sum.Errored)
	assert.Equal(t, 4, sum.Processed())
	assert.GreaterOrEqual(t, sum.Elapsed, time.Second)
}
