// Package levels maps a cumulative trade count onto the progressive unlock
// ladder.
package levels

// Feature is an application capability gated behind a level.
type Feature string

const (
	FeatureJournal          Feature = "journal"
	FeatureStreaks          Feature = "streaks"
	FeatureConsistencyScore Feature = "consistency_score"
	FeatureRMultiple        Feature = "r_multiple"
	FeatureEmotionInsights  Feature = "emotion_insights"
	FeatureExport           Feature = "export"
	FeatureSetupAnalytics   Feature = "setup_analytics"
	FeatureCustomRules      Feature = "custom_rules"
	FeatureAdvancedReports  Feature = "advanced_reports"
)

// Level is one tier of the ladder.
type Level struct {
	Number    int       `json:"number"`
	Name      string    `json:"name"`
	MinTrades int       `json:"min_trades"`
	Unlocks   []Feature `json:"unlocks"`
}

// ladder is the fixed tier table in ascending MinTrades order. The first
// tier starts at zero trades. It is never handed out; callers get copies.
var ladder = []Level{
	{Number: 1, Name: "Rookie", MinTrades: 0, Unlocks: []Feature{FeatureJournal}},
	{Number: 2, Name: "Apprentice", MinTrades: 10, Unlocks: []Feature{FeatureStreaks}},
	{Number: 3, Name: "Journeyman", MinTrades: 25, Unlocks: []Feature{FeatureConsistencyScore, FeatureRMultiple}},
	{Number: 4, Name: "Analyst", MinTrades: 50, Unlocks: []Feature{FeatureEmotionInsights, FeatureExport}},
	{Number: 5, Name: "Strategist", MinTrades: 100, Unlocks: []Feature{FeatureSetupAnalytics}},
	{Number: 6, Name: "Master", MinTrades: 250, Unlocks: []Feature{FeatureCustomRules, FeatureAdvancedReports}},
}

// Ladder returns a copy of every tier, lowest first.
func Ladder() []Level {
	out := make([]Level, len(ladder))
	for i, l := range ladder {
		out[i] = l.clone()
	}
	return out
}

func (l Level) clone() Level {
	l.Unlocks = append([]Feature(nil), l.Unlocks...)
	return l
}

// Progress is the resolved position of a trade count on the ladder.
type Progress struct {
	TradeCount int   `json:"trade_count"`
	Current    Level `json:"current"`
	// Next is nil at the top of the ladder.
	Next            *Level `json:"next"`
	ProgressPercent int    `json:"progress_percent"`
	// TradesToNext is zero at the top of the ladder.
	TradesToNext int `json:"trades_to_next"`
}

// AtCeiling reports whether the top tier has been reached.
func (p Progress) AtCeiling() bool {
	return p.Next == nil
}

// ForTradeCount resolves the current tier, the next tier and the percentage
// of the way from one to the other. A tier is reached when the count is
// greater than or equal to its threshold. Negative counts are treated as
// zero. Progress is 100 at the ceiling.
func ForTradeCount(count int) Progress {
	if count < 0 {
		count = 0
	}

	idx := 0
	for i, l := range ladder {
		if count >= l.MinTrades {
			idx = i
		}
	}

	p := Progress{TradeCount: count, Current: ladder[idx].clone()}
	if idx == len(ladder)-1 {
		p.ProgressPercent = 100
		return p
	}

	next := ladder[idx+1].clone()
	p.Next = &next
	span := next.MinTrades - p.Current.MinTrades
	done := count - p.Current.MinTrades
	p.ProgressPercent = done * 100 / span
	p.TradesToNext = next.MinTrades - count
	return p
}

// LevelFor returns the tier reached at count.
func LevelFor(count int) Level {
	return ForTradeCount(count).Current
}

// Get returns the tier with the given number.
func Get(number int) (Level, bool) {
	if number < 1 || number > len(ladder) {
		return Level{}, false
	}
	return ladder[number-1].clone(), true
}

// UnlockedFeatures returns every feature available at count, lowest tier first.
func UnlockedFeatures(count int) []Feature {
	current := LevelFor(count)
	var out []Feature
	for _, l := range ladder[:current.Number] {
		out = append(out, l.Unlocks...)
	}
	return out
}

// IsUnlocked reports whether feature is available at count.
func IsUnlocked(count int, feature Feature) bool {
	for _, f := range UnlockedFeatures(count) {
		if f == feature {
			return true
		}
	}
	return false
}

// RequiredLevel returns the tier that unlocks feature.
func RequiredLevel(feature Feature) (Level, bool) {
	for _, l := range ladder {
		for _, f := range l.Unlocks {
			if f == feature {
				return l.clone(), true
			}
		}
	}
	return Level{}, false
}

// LeveledUp reports whether going from before to after trades crosses a tier
// boundary, returning the new tier.
func LeveledUp(before, after int) (Level, bool) {
	prev, cur := LevelFor(before), LevelFor(after)
	if cur.Number > prev.Number {
		return cur, true
	}
	return Level{}, false
}
