// Package advisor turns a statistics report into a written performance review
// using an LLM. It is a pure consumer of computed stats; nothing downstream
// depends on it.
package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"tradejournal/internal/models"
	"tradejournal/pkg/utils"
)

const systemPrompt = `You are a trading performance coach reviewing a personal
trading journal. Comment on win rate, profit factor, average win versus average
loss, and drawdown. Be specific, be brief, and suggest at most three concrete
improvements. Do not invent numbers that are not in the report.`

// Advisor produces narrative reviews of journal statistics.
type Advisor struct {
	client *openai.Client
	model  string
}

// New creates an Advisor. The API key must be non-empty.
func New(apiKey, model string) (*Advisor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("advisor requires an API key")
	}
	return &Advisor{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// Review sends the stats report and a sample of recent closed trades to the
// model and returns its written review.
func (a *Advisor) Review(ctx context.Context, stats models.TradeStats, recent []models.Trade) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildReport(stats, recent)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}
	return resp.Choices[0].Message.Content, nil
}

func buildReport(stats models.TradeStats, recent []models.Trade) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Performance report:\n")
	fmt.Fprintf(&b, "- closed trades: %d (%d wins, %d losses)\n", stats.TotalTrades, stats.WinningTrades, stats.LosingTrades)
	fmt.Fprintf(&b, "- win rate: %.2f%%\n", stats.WinRate)
	fmt.Fprintf(&b, "- total P&L: %s\n", utils.FormatPnL(stats.TotalPnL))
	fmt.Fprintf(&b, "- average win: %s, average loss: %s\n", utils.FormatCurrency(stats.AverageWin), utils.FormatCurrency(stats.AverageLoss))
	fmt.Fprintf(&b, "- profit factor: %.2f\n", stats.ProfitFactor)
	fmt.Fprintf(&b, "- max drawdown: %s\n", utils.FormatCurrency(stats.MaxDrawdown))
	fmt.Fprintf(&b, "- capital: %s -> %s (%.2f%% return)\n",
		utils.FormatCurrency(stats.InitialCapital), utils.FormatCurrency(stats.CurrentCapital), stats.TotalReturn)

	if len(recent) > 0 {
		fmt.Fprintf(&b, "\nRecent closed trades:\n")
		for _, t := range recent {
			fmt.Fprintf(&b, "- %s %s qty %s: P&L %s", t.Type, t.Symbol, utils.FormatQuantity(t.Quantity), utils.FormatPnL(t.RealizedPnL()))
			if len(t.Tags) > 0 {
				fmt.Fprintf(&b, " [%s]", strings.Join(t.Tags, ", "))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
