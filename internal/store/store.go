// Package store provides journal persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"trading-journal/internal/models"
)

// DataStore defines the interface for journal persistence.
type DataStore interface {
	// Trades
	LogTrade(ctx context.Context, trade *models.Trade) error
	GetTrade(ctx context.Context, userID, id string) (*models.Trade, error)
	GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error)
	DeleteTrade(ctx context.Context, userID, id string) error
	CountTrades(ctx context.Context, userID string) (int, error)
	TradeDates(ctx context.Context, userID string, since time.Time) ([]string, error)

	// Check-ins
	SaveCheckin(ctx context.Context, checkin *models.Checkin) error
	GetCheckins(ctx context.Context, filter CheckinFilter) ([]models.Checkin, error)
	CheckinDates(ctx context.Context, userID string, since time.Time) ([]string, error)

	// Lifecycle
	Close() error
}

// TradeFilter represents filters for querying trades. Zero values are ignored.
type TradeFilter struct {
	UserID    string
	Symbol    string
	Direction models.Direction
	Outcome   models.Outcome
	StartDate time.Time
	EndDate   time.Time
	Limit     int
	Offset    int
}

// CheckinFilter represents filters for querying check-ins.
type CheckinFilter struct {
	UserID    string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}
