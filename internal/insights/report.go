package insights

import (
	"context"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"trading-journal/internal/models"
	"trading-journal/internal/store"
)

// Report summarizes the distribution of results over a set of trades.
type Report struct {
	Trades       int              `json:"trades"`
	Wins         int              `json:"wins"`
	Losses       int              `json:"losses"`
	Breakeven    int              `json:"breakeven"`
	WinRate      float64          `json:"win_rate"`
	NetPnL       float64          `json:"net_pnl"`
	AvgPnL       float64          `json:"avg_pnl"`
	MedianPnL    float64          `json:"median_pnl"`
	StdDevPnL    float64          `json:"stddev_pnl"`
	BestTrade    float64          `json:"best_trade"`
	WorstTrade   float64          `json:"worst_trade"`
	ProfitFactor float64          `json:"profit_factor"`
	AvgR         *float64         `json:"avg_r"`
	TotalPips    float64          `json:"total_pips"`
	BySymbol     []SymbolSummary  `json:"by_symbol"`
	ByEmotion    []EmotionSummary `json:"by_emotion"`
}

// SymbolSummary is the per-instrument slice of a Report.
type SymbolSummary struct {
	Symbol  string  `json:"symbol"`
	Trades  int     `json:"trades"`
	NetPnL  float64 `json:"net_pnl"`
	WinRate float64 `json:"win_rate"`
}

// EmotionSummary groups results by the pre-trade emotion tag.
type EmotionSummary struct {
	Emotion string  `json:"emotion"`
	Trades  int     `json:"trades"`
	AvgPnL  float64 `json:"avg_pnl"`
	WinRate float64 `json:"win_rate"`
}

// Report loads the trades matching filter and summarizes them.
func (s *Service) Report(ctx context.Context, filter store.TradeFilter) (*Report, error) {
	trades, err := s.source.GetTrades(ctx, filter)
	if err != nil {
		return nil, err
	}
	r := BuildReport(trades)
	return &r, nil
}

// BuildReport summarizes trades. An empty input yields a zero report.
func BuildReport(trades []models.Trade) Report {
	r := Report{Trades: len(trades)}
	if len(trades) == 0 {
		return r
	}

	pnls := make(stats.Float64Data, 0, len(trades))
	var rs stats.Float64Data
	var grossWin, grossLoss float64

	symbols := make(map[string]*SymbolSummary)
	symbolWins := make(map[string]int)
	emotions := make(map[string][]models.Trade)

	for _, t := range trades {
		pnls = append(pnls, t.PnL)
		r.TotalPips += t.Pips
		if t.RMultiple != nil {
			rs = append(rs, *t.RMultiple)
		}

		switch resolvedOutcome(t) {
		case models.OutcomeWin:
			r.Wins++
			symbolWins[t.Symbol]++
		case models.OutcomeLoss:
			r.Losses++
		default:
			r.Breakeven++
		}

		if t.PnL > 0 {
			grossWin += t.PnL
		} else {
			grossLoss -= t.PnL
		}

		sum, ok := symbols[t.Symbol]
		if !ok {
			sum = &SymbolSummary{Symbol: t.Symbol}
			symbols[t.Symbol] = sum
		}
		sum.Trades++
		sum.NetPnL += t.PnL

		if t.EmotionBefore != "" {
			emotions[t.EmotionBefore] = append(emotions[t.EmotionBefore], t)
		}
	}

	r.WinRate = ratio(r.Wins, r.Trades)
	r.NetPnL = round2(mustStat(pnls.Sum()))
	r.AvgPnL = round2(mustStat(pnls.Mean()))
	r.MedianPnL = round2(mustStat(pnls.Median()))
	r.StdDevPnL = round2(mustStat(pnls.StandardDeviation()))
	r.BestTrade = mustStat(pnls.Max())
	r.WorstTrade = mustStat(pnls.Min())
	r.TotalPips = math.Round(r.TotalPips*10) / 10
	if grossLoss > 0 {
		r.ProfitFactor = round2(grossWin / grossLoss)
	}
	if len(rs) > 0 {
		avg := round2(mustStat(rs.Mean()))
		r.AvgR = &avg
	}

	for sym, sum := range symbols {
		sum.NetPnL = round2(sum.NetPnL)
		sum.WinRate = ratio(symbolWins[sym], sum.Trades)
		r.BySymbol = append(r.BySymbol, *sum)
	}
	sort.Slice(r.BySymbol, func(i, j int) bool {
		if r.BySymbol[i].Trades != r.BySymbol[j].Trades {
			return r.BySymbol[i].Trades > r.BySymbol[j].Trades
		}
		return r.BySymbol[i].Symbol < r.BySymbol[j].Symbol
	})

	for emotion, group := range emotions {
		vals := make(stats.Float64Data, len(group))
		wins := 0
		for i, t := range group {
			vals[i] = t.PnL
			if resolvedOutcome(t) == models.OutcomeWin {
				wins++
			}
		}
		r.ByEmotion = append(r.ByEmotion, EmotionSummary{
			Emotion: emotion,
			Trades:  len(group),
			AvgPnL:  round2(mustStat(vals.Mean())),
			WinRate: ratio(wins, len(group)),
		})
	}
	sort.Slice(r.ByEmotion, func(i, j int) bool {
		return r.ByEmotion[i].Emotion < r.ByEmotion[j].Emotion
	})

	return r
}

// resolvedOutcome is the recorded outcome, or the one implied by P&L when
// none was recorded.
func resolvedOutcome(t models.Trade) models.Outcome {
	if t.Outcome == models.OutcomeUnset {
		return models.OutcomeFromPnL(t.PnL)
	}
	return t.Outcome
}

// mustStat drops the error stats returns for empty input; every caller
// passes a non-empty series.
func mustStat(v float64, _ error) float64 {
	return v
}

// ratio returns part/whole as a percentage with one decimal.
func ratio(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)*1000/float64(whole)) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
