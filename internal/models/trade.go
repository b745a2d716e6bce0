package models

import "time"

// Trade represents a journaled trade.
type Trade struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Symbol        string    `json:"symbol"`
	Direction     Direction `json:"direction"`
	EntryPrice    float64   `json:"entry_price"`
	ExitPrice     float64   `json:"exit_price"`
	PositionSize  float64   `json:"position_size"` // lots
	StopLoss      *float64  `json:"stop_loss,omitempty"`
	TakeProfit    *float64  `json:"take_profit,omitempty"`
	PnL           float64   `json:"pnl"`
	Pips          float64   `json:"pips"`
	RMultiple     *float64  `json:"r_multiple,omitempty"`
	Outcome       Outcome   `json:"outcome,omitempty"`
	EmotionBefore string    `json:"emotion_before,omitempty"`
	EmotionAfter  string    `json:"emotion_after,omitempty"`
	RulesFollowed []string  `json:"rules_followed,omitempty"`
	Setup         string    `json:"setup,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	TradeDate     time.Time `json:"trade_date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Day returns the civil date of the trade in its own location.
func (t Trade) Day() string {
	return t.TradeDate.Format(DateLayout)
}

// Checkin represents a voluntary check-in on a day without a trade.
type Checkin struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Mood      string    `json:"mood,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
