// Package scoring computes the consistency score: a weighted 0-100 measure of
// trading discipline over the most recent journal entries.
//
// The score rewards following rules, managing risk, trading from a steady
// emotional state and journaling regularly. P&L is deliberately not scored.
package scoring

import (
	"sort"
	"strings"
	"time"

	"trading-journal/internal/models"
)

// Scoring policy.
const (
	// RecentEntriesLimit is how many of the most recent entries are scored.
	RecentEntriesLimit = 20
	// MinRulesCount is the number of followed rules an entry needs to count as adherent.
	MinRulesCount = 4
	// TargetUniqueDays is the number of distinct journaling days that earns full marks.
	TargetUniqueDays = 14
)

// Weights holds the contribution of each sub-score to the overall score, in
// whole percent. The four weights sum to 100.
type Weights struct {
	RuleAdherence         int
	RiskManagement        int
	EmotionalDiscipline   int
	JournalingConsistency int
}

// DefaultWeights is the fixed weighting policy: 0.40 / 0.25 / 0.20 / 0.15.
var DefaultWeights = Weights{
	RuleAdherence:         40,
	RiskManagement:        25,
	EmotionalDiscipline:   20,
	JournalingConsistency: 15,
}

// Total returns the sum of all weights.
func (w Weights) Total() int {
	return w.RuleAdherence + w.RiskManagement + w.EmotionalDiscipline + w.JournalingConsistency
}

// goodEmotions are the pre-trade states counted as disciplined.
var goodEmotions = map[string]bool{
	models.EmotionCalm:      true,
	models.EmotionConfident: true,
	models.EmotionNeutral:   true,
}

// IsDisciplinedEmotion reports whether a pre-trade emotion tag counts toward
// emotional discipline. Tags compare case-insensitively.
func IsDisciplinedEmotion(emotion string) bool {
	return goodEmotions[strings.ToLower(strings.TrimSpace(emotion))]
}

// Entry is the subset of a journal trade the score reads.
type Entry struct {
	TradeDate     time.Time
	Outcome       models.Outcome
	StopLoss      *float64
	EmotionBefore string
	RulesFollowed []string
}

// EntryFromTrade extracts the scored fields of a journal trade.
func EntryFromTrade(t models.Trade) Entry {
	return Entry{
		TradeDate:     t.TradeDate,
		Outcome:       t.Outcome,
		StopLoss:      t.StopLoss,
		EmotionBefore: t.EmotionBefore,
		RulesFollowed: t.RulesFollowed,
	}
}

// Breakdown is the consistency score with its four sub-scores. Every field
// is an integer in [0, 100]; all are zero for an empty journal.
type Breakdown struct {
	RuleAdherence         int `json:"rule_adherence"`
	RiskManagement        int `json:"risk_management"`
	EmotionalDiscipline   int `json:"emotional_discipline"`
	JournalingConsistency int `json:"journaling_consistency"`
	Overall               int `json:"overall"`
	// EntriesScored is the size of the scored window.
	EntriesScored int `json:"entries_scored"`
}

// Calculate scores entries with DefaultWeights.
func Calculate(entries []Entry) Breakdown {
	return CalculateWithWeights(entries, DefaultWeights)
}

// CalculateWithWeights scores the most recent RecentEntriesLimit entries.
// Each sub-score is rounded half-up before it is weighted, so the overall
// score is derived from exactly the numbers shown to the user. entries is
// not modified.
func CalculateWithWeights(entries []Entry, w Weights) Breakdown {
	window := recentWindow(entries)
	n := len(window)
	if n == 0 || w.Total() <= 0 {
		return Breakdown{}
	}

	var adherent, withStop, disciplined int
	days := make(map[string]struct{}, n)
	for _, e := range window {
		if len(e.RulesFollowed) >= MinRulesCount {
			adherent++
		}
		if e.StopLoss != nil {
			withStop++
		}
		if IsDisciplinedEmotion(e.EmotionBefore) {
			disciplined++
		}
		days[e.TradeDate.Format(models.DateLayout)] = struct{}{}
	}

	b := Breakdown{
		RuleAdherence:       percent(adherent, n),
		RiskManagement:      percent(withStop, n),
		EmotionalDiscipline: percent(disciplined, n),
		EntriesScored:       n,
	}
	b.JournalingConsistency = percent(len(days), TargetUniqueDays)
	if b.JournalingConsistency > 100 {
		b.JournalingConsistency = 100
	}

	weighted := w.RuleAdherence*b.RuleAdherence +
		w.RiskManagement*b.RiskManagement +
		w.EmotionalDiscipline*b.EmotionalDiscipline +
		w.JournalingConsistency*b.JournalingConsistency
	b.Overall = roundDiv(weighted, w.Total())

	return b
}

// recentWindow returns up to RecentEntriesLimit entries, most recent first.
func recentWindow(entries []Entry) []Entry {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TradeDate.After(sorted[j].TradeDate)
	})
	if len(sorted) > RecentEntriesLimit {
		sorted = sorted[:RecentEntriesLimit]
	}
	return sorted
}

// percent returns round(100 * part / whole) with half-up rounding.
func percent(part, whole int) int {
	return roundDiv(100*part, whole)
}

// roundDiv returns num/den rounded half-up for non-negative operands.
func roundDiv(num, den int) int {
	if den <= 0 {
		return 0
	}
	return (2*num + den) / (2 * den)
}
