package cli

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestVisibleLen(t *testing.T) {
	assert.Equal(t, 5, visibleLen("hello"))
	assert.Equal(t, 0, visibleLen(""))
	// ANSI escapes do not count toward width
	assert.Equal(t, 6, visibleLen("\x1b[32m+$5.00\x1b[0m"))
	assert.Equal(t, 7, visibleLen(color.New(color.FgGreen).Sprint("+$40.00")))
}

func TestFormatPnLColoring(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	o := &Output{}
	assert.Equal(t, "+$40.00", o.FormatPnL(40))
	assert.Equal(t, "-$16.00", o.FormatPnL(-16))
	assert.Equal(t, "$0.00", o.FormatPnL(0))
	assert.Equal(t, "+0.37%", o.FormatPercent(0.37))
	assert.Equal(t, "-5.00%", o.FormatPercent(-5))
}
