// Package pnl converts a trade's prices into pips, money and R-multiple.
package pnl

import (
	"math"

	"trading-journal/internal/errors"
	"trading-journal/internal/models"
)

// Input is a single P&L calculation request.
type Input struct {
	Symbol       string           `json:"symbol" validate:"required"`
	Direction    models.Direction `json:"direction" validate:"required,oneof=long short"`
	EntryPrice   float64          `json:"entry_price" validate:"gt=0"`
	ExitPrice    float64          `json:"exit_price" validate:"gt=0"`
	PositionSize float64          `json:"position_size" validate:"gt=0"`
	StopLoss     *float64         `json:"stop_loss,omitempty" validate:"omitempty,gt=0"`
}

// Result holds the computed figures. RMultiple is nil when no usable stop
// loss was supplied.
type Result struct {
	Pips      float64  `json:"pips"`
	PnL       float64  `json:"pnl"`
	RMultiple *float64 `json:"r_multiple"`
}

// Calculator resolves instruments against a catalog and prices trades.
type Calculator struct {
	catalog *Catalog
}

// NewCalculator creates a Calculator. A nil catalog uses DefaultCatalog.
func NewCalculator(catalog *Catalog) *Calculator {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Calculator{catalog: catalog}
}

// Catalog returns the calculator's instrument catalog.
func (c *Calculator) Catalog() *Catalog {
	return c.catalog
}

// Calculate prices one trade. The symbol must be known to the catalog.
func (c *Calculator) Calculate(in Input) (Result, error) {
	inst, err := c.catalog.Lookup(in.Symbol)
	if err != nil {
		return Result{}, err
	}
	return Compute(inst, in)
}

// Compute prices a trade against explicit instrument metadata.
//
// Pips are the signed favorable distance divided by the pip size, reported to
// a tenth of a pip. P&L is pips times pip value times size, reported in cents.
// The R-multiple divides the pip gain by the pip distance between entry and
// stop, reported to two decimals. Only the outputs are rounded.
func Compute(inst Instrument, in Input) (Result, error) {
	dir, ok := models.ParseDirection(string(in.Direction))
	if !ok {
		return Result{}, errors.NewValidationError("direction", in.Direction, "must be long or short")
	}
	if in.PositionSize <= 0 {
		return Result{}, errors.NewValidationError("position_size", in.PositionSize, "must be positive")
	}
	if inst.PipSize <= 0 {
		return Result{}, errors.NewValidationError("pip_size", inst.PipSize, "must be positive")
	}

	move := in.ExitPrice - in.EntryPrice
	if dir == models.DirectionShort {
		move = -move
	}

	pips := move / inst.PipSize
	res := Result{
		Pips: round(pips, 1),
		PnL:  round(pips*inst.PipValue*in.PositionSize, 2),
	}

	if in.StopLoss != nil && *in.StopLoss != in.EntryPrice {
		riskPips := math.Abs(in.EntryPrice-*in.StopLoss) / inst.PipSize
		if riskPips > 0 {
			r := round(pips/riskPips, 2)
			res.RMultiple = &r
		}
	}

	return res, nil
}

// round rounds v half away from zero to the given number of decimals. The
// 1e-9 nudge absorbs binary representation error in price differences.
func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	if v < 0 {
		return -math.Round((-v+1e-9)*p) / p
	}
	return math.Round((v+1e-9)*p) / p
}
