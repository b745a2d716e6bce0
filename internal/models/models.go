// Package models provides domain models for the trading journal.
package models

import "strings"

// Direction represents the side of a journaled trade.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// ParseDirection accepts long/short as well as buy/sell, case-insensitively.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "long", "buy":
		return DirectionLong, true
	case "short", "sell":
		return DirectionShort, true
	default:
		return "", false
	}
}

// Outcome represents the result of a closed trade. The zero value means unset.
type Outcome string

const (
	OutcomeUnset     Outcome = ""
	OutcomeWin       Outcome = "win"
	OutcomeLoss      Outcome = "loss"
	OutcomeBreakeven Outcome = "breakeven"
)

// ParseOutcome parses an outcome name; empty input yields OutcomeUnset.
func ParseOutcome(s string) (Outcome, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return OutcomeUnset, true
	case "win":
		return OutcomeWin, true
	case "loss":
		return OutcomeLoss, true
	case "breakeven", "be":
		return OutcomeBreakeven, true
	default:
		return "", false
	}
}

// OutcomeFromPnL derives the outcome of a trade from its realized P&L.
func OutcomeFromPnL(pnl float64) Outcome {
	switch {
	case pnl > 0:
		return OutcomeWin
	case pnl < 0:
		return OutcomeLoss
	default:
		return OutcomeBreakeven
	}
}

// Emotion tags recorded before and after a trade.
const (
	EmotionCalm       = "calm"
	EmotionConfident  = "confident"
	EmotionNeutral    = "neutral"
	EmotionAnxious    = "anxious"
	EmotionFearful    = "fearful"
	EmotionGreedy     = "greedy"
	EmotionFrustrated = "frustrated"
	EmotionExcited    = "excited"
	EmotionBored      = "bored"
	EmotionRevenge    = "revenge"
)

// Emotions lists every emotion tag the journal accepts.
var Emotions = []string{
	EmotionCalm, EmotionConfident, EmotionNeutral, EmotionAnxious, EmotionFearful,
	EmotionGreedy, EmotionFrustrated, EmotionExcited, EmotionBored, EmotionRevenge,
}

// DateLayout is the civil-date layout used for trade and check-in dates.
const DateLayout = "2006-01-02"
