package export

import (
	"io"
	"time"

	"github.com/gocarina/gocsv"

	"trading-journal/internal/errors"
	"trading-journal/internal/models"
)

// WriteCSV writes trades as CSV with a header row.
func WriteCSV(w io.Writer, trades []models.Trade) error {
	records := make([]*record, len(trades))
	for i, t := range trades {
		r := toRecord(t)
		records[i] = &r
	}
	if err := gocsv.Marshal(&records, w); err != nil {
		return errors.Wrap(err, "writing csv")
	}
	return nil
}

// ReadCSV parses trades from CSV for userID. Columns are matched by header
// name; the first invalid row aborts the import.
func ReadCSV(r io.Reader, userID string, loc *time.Location) ([]models.Trade, error) {
	var records []*record
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, errors.Wrap(err, "reading csv")
	}

	trades := make([]models.Trade, 0, len(records))
	for i, rec := range records {
		// row 1 is the header
		t, err := rec.toTrade(userID, loc, i+2)
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, nil
}
