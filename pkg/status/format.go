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
	"fmt"
	"time"
)

// FormatFound formats the pre-run file count
func FormatFound(found int) string {
	return fmt.Sprintf("Found %d files", found)
}

// FormatLine formats the single-line summary
func FormatLine(s Summary) string {
	return fmt.Sprintf("%d found files, %d changed files, %d errors", s.Found, s.Changed, s.Errored)
}

// FormatTally formats the post-run tally of the split summary
func FormatTally(s Summary) string {
	return fmt.Sprintf("%d changed files, %d errors", s.Changed, s.Errored)
}

// FormatElapsed formats the elapsed time line of the split summary
func FormatElapsed(d time.Duration) string {
	return fmt.Sprintf("Done in %s", d.Round(time.Millisecond))
}

// FormatProgress formats a progress message with percentage
func FormatProgress(current, total int) string {
	var percentage float64
	if total == 0 {
		percentage = 0
		if current > 0 {
			percentage = 100
		}
	} else {
		percentage = float64(current) / float64(total) * 100
	}

	if current >= total {
		return fmt.Sprintf("✅ Progress: %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ Progress: %d/%d (%.0f%%)", current, total, percentage)
}
