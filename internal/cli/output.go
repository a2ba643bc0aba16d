package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tradejournal/pkg/utils"
)

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
	bold   = color.New(color.Bold)
	dim    = color.New(color.Faint)
)

// Output handles formatted output for the CLI.
type Output struct {
	writer   io.Writer
	jsonMode bool
}

// NewOutput creates a new Output instance.
func NewOutput(cmd *cobra.Command) *Output {
	jsonMode, _ := cmd.Flags().GetBool("json")
	if jsonMode || !isTerminal() {
		color.NoColor = true
	}
	return &Output{
		writer:   cmd.OutOrStdout(),
		jsonMode: jsonMode,
	}
}

// isTerminal checks if stdout is a terminal.
func isTerminal() bool {
	fileInfo, _ := os.Stdout.Stat()
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// IsJSON returns true if JSON output mode is enabled.
func (o *Output) IsJSON() bool {
	return o.jsonMode
}

// JSON outputs data as JSON.
func (o *Output) JSON(data interface{}) error {
	encoder := json.NewEncoder(o.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Println prints a message with newline.
func (o *Output) Println(args ...interface{}) {
	fmt.Fprintln(o.writer, args...)
}

// Printf prints a formatted message.
func (o *Output) Printf(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, format, args...)
}

// Success prints a success message in green.
func (o *Output) Success(format string, args ...interface{}) {
	green.Fprintf(o.writer, format+"\n", args...)
}

// Error prints an error message in red.
func (o *Output) Error(format string, args ...interface{}) {
	red.Fprintf(o.writer, format+"\n", args...)
}

// Warning prints a warning message in yellow.
func (o *Output) Warning(format string, args ...interface{}) {
	yellow.Fprintf(o.writer, format+"\n", args...)
}

// Info prints an info message in cyan.
func (o *Output) Info(format string, args ...interface{}) {
	cyan.Fprintf(o.writer, format+"\n", args...)
}

// Bold prints a bold message.
func (o *Output) Bold(format string, args ...interface{}) {
	bold.Fprintf(o.writer, format+"\n", args...)
}

// Dim prints a dimmed message.
func (o *Output) Dim(format string, args ...interface{}) {
	dim.Fprintf(o.writer, format+"\n", args...)
}

// FormatPnL formats P&L with sign and color.
func (o *Output) FormatPnL(pnl float64) string {
	formatted := utils.FormatPnL(pnl)
	switch {
	case pnl > 0:
		return green.Sprint(formatted)
	case pnl < 0:
		return red.Sprint(formatted)
	}
	return formatted
}

// FormatPercent formats a percentage with sign and color.
func (o *Output) FormatPercent(pct float64) string {
	formatted := utils.FormatPercent(pct)
	switch {
	case pct > 0:
		return green.Sprint(formatted)
	case pct < 0:
		return red.Sprint(formatted)
	}
	return formatted
}

// Table represents a simple table for output.
type Table struct {
	headers []string
	rows    [][]string
	output  *Output
}

// NewTable creates a new table.
func NewTable(output *Output, headers ...string) *Table {
	return &Table{
		headers: headers,
		output:  output,
	}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render renders the table.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visibleLen(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				if l := visibleLen(cell); l > widths[i] {
					widths[i] = l
				}
			}
		}
	}

	t.printRow(t.headers, widths, true)
	t.printSeparator(widths)
	for _, row := range t.rows {
		t.printRow(row, widths, false)
	}
}

func (t *Table) printRow(cells []string, widths []int, isHeader bool) {
	var parts []string
	for i, cell := range cells {
		if i >= len(widths) {
			continue
		}
		padding := widths[i] - visibleLen(cell)
		if padding < 0 {
			padding = 0
		}
		padded := cell + strings.Repeat(" ", padding)
		if isHeader {
			padded = bold.Sprint(padded)
		}
		parts = append(parts, padded)
	}
	t.output.Println(strings.Join(parts, "  "))
}

func (t *Table) printSeparator(widths []int) {
	var parts []string
	for _, w := range widths {
		parts = append(parts, strings.Repeat("-", w))
	}
	t.output.Println(dim.Sprint(strings.Join(parts, "--")))
}

// visibleLen returns the length of a string without ANSI escape sequences.
func visibleLen(s string) int {
	n := 0
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			n++
		}
	}
	return n
}
