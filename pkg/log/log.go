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

package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/codemod/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🎨 Display configuration
const (
	fileIndent = 2 // spaces to indent file entries
)

// 📋 SummaryLayout selects how the end of run summary is printed
type SummaryLayout string

const (
	// SummarySplit prints the found count before the run and the tally and
	// elapsed time after it
	SummarySplit SummaryLayout = "split"
	// SummaryLine prints a single line with all counters after the run
	SummaryLine SummaryLayout = "line"
)

// 🔍 ParseSummaryLayout validates a layout name; empty means SummarySplit
func ParseSummaryLayout(s string) (SummaryLayout, error) {
	switch SummaryLayout(s) {
	case "", SummarySplit:
		return SummarySplit, nil
	case SummaryLine:
		return SummaryLine, nil
	default:
		return "", errors.Errorf("unknown summary layout %q (want split or line)", s)
	}
}

// 🌈 ColorMode selects when output is colored
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// 🔍 ParseColorMode validates a color mode name; empty means ColorAuto
func ParseColorMode(s string) (ColorMode, error) {
	switch ColorMode(s) {
	case "", ColorAuto:
		return ColorAuto, nil
	case ColorAlways, ColorNever:
		return ColorMode(s), nil
	default:
		return "", errors.Errorf("unknown color mode %q (want auto, always or never)", s)
	}
}

// SetColorMode turns colors on or off for all console output. In auto mode
// colors are used only when out is a terminal.
func SetColorMode(mode ColorMode, out io.Writer) {
	enabled := true
	switch mode {
	case ColorNever:
		enabled = false
	case ColorAuto:
		f, ok := out.(*os.File)
		enabled = ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	}

	color.NoColor = !enabled
	if enabled {
		pterm.EnableColor()
	} else {
		pterm.DisableColor()
	}
}

// 🖥️ Console prints the user facing output of a run
type Console struct {
	out     io.Writer
	mu      sync.Mutex
	verbose bool
	layout  SummaryLayout
}

// 🏭 New creates a new console writing to out
func New(out io.Writer, verbose bool, layout SummaryLayout) *Console {
	if layout == "" {
		layout = SummarySplit
	}
	return &Console{
		out:     out,
		verbose: verbose,
		layout:  layout,
	}
}

// 📝 Found prints the number of files about to be processed
func (c *Console) Found(ctx context.Context, n int) {
	zerolog.Ctx(ctx).Debug().Int("files", n).Msg("files found")

	if c.layout != SummarySplit {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, status.FormatFound(n))
}

// 📝 formatOutcome formats one file outcome for display
func formatOutcome(o status.Outcome) string {
	indent := strings.Repeat(" ", fileIndent)
	switch o.State {
	case status.StateErrored:
		return indent + color.New(color.FgRed).Sprintf("✗ %s: %s", o.Path, o.Message())
	case status.StateUnchanged:
		return indent + color.New(color.Faint).Sprintf("- %s", o.Path)
	default:
		return fmt.Sprintf("%s%s %s", indent, color.New(color.FgBlue).Sprint("⟳"), o.Path)
	}
}

// 📝 File prints the line for one processed file. Unchanged files are only
// printed when the console is verbose.
func (c *Console) File(ctx context.Context, o status.Outcome) {
	zerolog.Ctx(ctx).Debug().
		Str("file", o.Path).
		Str("state", o.State.String()).
		Str("error", o.Message()).
		Msg("file processed")

	if o.State == status.StateUnchanged && !c.verbose {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintln(c.out, formatOutcome(o))
	if o.Diff != "" {
		c.printDiff(o.Diff)
	}
}

// printDiff prints a line diff with added and removed lines colored
func (c *Console) printDiff(diff string) {
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			fmt.Fprint(c.out, color.New(color.Bold).Sprint(line))
		case strings.HasPrefix(line, "+"):
			fmt.Fprint(c.out, color.New(color.FgGreen).Sprint(line))
		case strings.HasPrefix(line, "-"):
			fmt.Fprint(c.out, color.New(color.FgRed).Sprint(line))
		case strings.HasPrefix(line, "@@"):
			fmt.Fprint(c.out, color.New(color.FgCyan).Sprint(line))
		default:
			fmt.Fprint(c.out, line)
		}
	}
}

// 📝 Summary prints the end of run summary
func (c *Console) Summary(ctx context.Context, s status.Summary) {
	zerolog.Ctx(ctx).Debug().
		Int("found", s.Found).
		Int("changed", s.Changed).
		Int("unchanged", s.Unchanged).
		Int("errors", s.Errored).
		Dur("elapsed", s.Elapsed).
		Msg("run complete")

	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintln(c.out)
	switch c.layout {
	case SummaryLine:
		fmt.Fprintln(c.out, status.FormatLine(s))
	default:
		fmt.Fprintln(c.out, status.FormatTally(s))
		fmt.Fprintln(c.out, status.FormatElapsed(s.Elapsed))
	}
}

// 📝 Fatal prints an error that stopped the run
func (c *Console) Fatal(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pterm.Error.WithWriter(c.out).Println(err.Error())
}
