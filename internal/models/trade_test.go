package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTradeTypeValid(t *testing.T) {
	assert.True(t, TradeBuy.Valid())
	assert.True(t, TradeSell.Valid())
	assert.False(t, TradeType("HOLD").Valid())
	assert.False(t, TradeType("").Valid())
}

func TestTradeStatusTerminal(t *testing.T) {
	assert.False(t, TradePending.Terminal())
	assert.False(t, TradeOpen.Terminal())
	assert.True(t, TradeClosed.Terminal())
	assert.True(t, TradeCancelled.Terminal())
}

func TestTradeIsClosed(t *testing.T) {
	pnl := 40.0

	closed := Trade{Status: TradeClosed, PnL: &pnl}
	assert.True(t, closed.IsClosed())
	assert.Equal(t, 40.0, closed.RealizedPnL())

	// CLOSED without a P&L is not a realized trade
	half := Trade{Status: TradeClosed}
	assert.False(t, half.IsClosed())
	assert.Zero(t, half.RealizedPnL())

	open := Trade{Status: TradeOpen, PnL: &pnl}
	assert.False(t, open.IsClosed())
}
