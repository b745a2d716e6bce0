package pnl

import (
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"trading-journal/internal/errors"
)

// Instrument describes how price movement converts to money for one symbol.
type Instrument struct {
	Symbol string `yaml:"symbol" json:"symbol"`
	// PipSize is the price increment of one pip (0.0001 for most FX pairs).
	PipSize float64 `yaml:"pip_size" json:"pip_size"`
	// PipValue is the account-currency value of one pip for one standard lot.
	PipValue float64 `yaml:"pip_value" json:"pip_value"`
}

// builtinInstruments is the default instrument table in USD per standard lot.
var builtinInstruments = []Instrument{
	{Symbol: "EURUSD", PipSize: 0.0001, PipValue: 10},
	{Symbol: "GBPUSD", PipSize: 0.0001, PipValue: 10},
	{Symbol: "AUDUSD", PipSize: 0.0001, PipValue: 10},
	{Symbol: "NZDUSD", PipSize: 0.0001, PipValue: 10},
	{Symbol: "USDCAD", PipSize: 0.0001, PipValue: 7.3},
	{Symbol: "USDCHF", PipSize: 0.0001, PipValue: 11.2},
	{Symbol: "EURGBP", PipSize: 0.0001, PipValue: 12.7},
	{Symbol: "USDJPY", PipSize: 0.01, PipValue: 6.5},
	{Symbol: "EURJPY", PipSize: 0.01, PipValue: 6.5},
	{Symbol: "GBPJPY", PipSize: 0.01, PipValue: 6.5},
	{Symbol: "AUDJPY", PipSize: 0.01, PipValue: 6.5},
	{Symbol: "XAUUSD", PipSize: 0.1, PipValue: 10},
	{Symbol: "XAGUSD", PipSize: 0.01, PipValue: 50},
	{Symbol: "US30", PipSize: 1, PipValue: 1},
	{Symbol: "NAS100", PipSize: 1, PipValue: 1},
	{Symbol: "SPX500", PipSize: 1, PipValue: 1},
	{Symbol: "BTCUSD", PipSize: 1, PipValue: 1},
}

// Catalog is a concurrency-safe instrument lookup keyed by normalized symbol.
type Catalog struct {
	mu          sync.RWMutex
	instruments map[string]Instrument
}

// NewCatalog creates a catalog holding the given instruments.
func NewCatalog(instruments ...Instrument) *Catalog {
	c := &Catalog{instruments: make(map[string]Instrument, len(instruments))}
	for _, inst := range instruments {
		c.instruments[NormalizeSymbol(inst.Symbol)] = inst
	}
	return c
}

// DefaultCatalog returns a catalog preloaded with the built-in instruments.
func DefaultCatalog() *Catalog {
	return NewCatalog(builtinInstruments...)
}

// NormalizeSymbol upper-cases a symbol and strips separators, so "eur/usd"
// and "EUR_USD" both resolve to EURUSD.
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	return strings.NewReplacer("/", "", "_", "", "-", "", " ", "").Replace(s)
}

// Lookup returns the instrument for symbol.
func (c *Catalog) Lookup(symbol string) (Instrument, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	inst, ok := c.instruments[NormalizeSymbol(symbol)]
	if !ok {
		return Instrument{}, errors.NewInstrumentError(symbol)
	}
	return inst, nil
}

// Set adds or replaces an instrument after validating it.
func (c *Catalog) Set(inst Instrument) error {
	key := NormalizeSymbol(inst.Symbol)
	if key == "" {
		return errors.NewValidationError("symbol", inst.Symbol, "symbol is required")
	}
	if inst.PipSize <= 0 {
		return errors.NewValidationError("pip_size", inst.PipSize, "must be positive")
	}
	if inst.PipValue <= 0 {
		return errors.NewValidationError("pip_value", inst.PipValue, "must be positive")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	inst.Symbol = key
	c.instruments[key] = inst
	return nil
}

// Symbols returns all known symbols in sorted order.
func (c *Catalog) Symbols() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.instruments))
	for s := range c.instruments {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// catalogFile is the on-disk layout of an instruments override file.
type catalogFile struct {
	Instruments []Instrument `yaml:"instruments"`
}

// LoadFile merges instruments from a YAML file into the catalog:
//
//	instruments:
//	  - symbol: EURUSD
//	    pip_size: 0.0001
//	    pip_value: 10
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading instruments file %s", path)
	}
	return c.LoadYAML(data)
}

// LoadYAML merges instruments from YAML bytes into the catalog.
func (c *Catalog) LoadYAML(data []byte) error {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return errors.Wrap(err, "parsing instruments")
	}
	for _, inst := range f.Instruments {
		if err := c.Set(inst); err != nil {
			return errors.Wrapf(err, "instrument %q", inst.Symbol)
		}
	}
	return nil
}
