package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-journal/internal/models"
)

func rm(v float64) *float64 { return &v }

func TestBuildReport_Empty(t *testing.T) {
	r := BuildReport(nil)
	assert.Equal(t, 0, r.Trades)
	assert.Nil(t, r.AvgR)
	assert.Empty(t, r.BySymbol)
}

func TestBuildReport(t *testing.T) {
	trades := []models.Trade{
		{Symbol: "EURUSD", PnL: 300, Pips: 30, RMultiple: rm(1.5), EmotionBefore: "calm"},
		{Symbol: "EURUSD", PnL: -100, Pips: -10, RMultiple: rm(-0.5), EmotionBefore: "fomo"},
		{Symbol: "GBPUSD", PnL: 200, Pips: 20, Outcome: models.OutcomeWin, EmotionBefore: "calm"},
		{Symbol: "USDJPY", PnL: 0, Pips: 0},
	}

	r := BuildReport(trades)

	assert.Equal(t, 4, r.Trades)
	assert.Equal(t, 2, r.Wins)
	assert.Equal(t, 1, r.Losses)
	assert.Equal(t, 1, r.Breakeven)
	assert.Equal(t, 50.0, r.WinRate)
	assert.Equal(t, 400.0, r.NetPnL)
	assert.Equal(t, 100.0, r.AvgPnL)
	assert.Equal(t, 100.0, r.MedianPnL)
	assert.Equal(t, 300.0, r.BestTrade)
	assert.Equal(t, -100.0, r.WorstTrade)
	assert.Equal(t, 5.0, r.ProfitFactor)
	assert.Equal(t, 40.0, r.TotalPips)
	require.NotNil(t, r.AvgR)
	assert.Equal(t, 0.5, *r.AvgR)
	assert.InDelta(t, 158.11, r.StdDevPnL, 0.01)

	require.Len(t, r.BySymbol, 3)
	assert.Equal(t, "EURUSD", r.BySymbol[0].Symbol)
	assert.Equal(t, 200.0, r.BySymbol[0].NetPnL)
	assert.Equal(t, 50.0, r.BySymbol[0].WinRate)

	require.Len(t, r.ByEmotion, 2)
	assert.Equal(t, "calm", r.ByEmotion[0].Emotion)
	assert.Equal(t, 250.0, r.ByEmotion[0].AvgPnL)
	assert.Equal(t, 100.0, r.ByEmotion[0].WinRate)
}

func TestBuildReport_EmotionWinRateFollowsOutcome(t *testing.T) {
	trades := []models.Trade{
		// scratch trade closed flat but recorded as a win
		{Symbol: "EURUSD", PnL: 0, Outcome: models.OutcomeWin, EmotionBefore: "calm"},
		{Symbol: "EURUSD", PnL: 5, Outcome: models.OutcomeBreakeven, EmotionBefore: "calm"},
	}

	r := BuildReport(trades)
	require.Len(t, r.ByEmotion, 1)
	assert.Equal(t, 1, r.Wins)
	assert.Equal(t, r.WinRate, r.ByEmotion[0].WinRate)
	assert.Equal(t, 50.0, r.ByEmotion[0].WinRate)
}
