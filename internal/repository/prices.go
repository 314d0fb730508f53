package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"momentumbt/types"
)

const assetByTickerQuery = `
SELECT id FROM assets WHERE ticker = $1`

const dailyClosesQuery = `
SELECT c.timestamp, c.close
FROM candles c
WHERE c.asset_id = $1 AND c.timestamp >= $2 AND c.timestamp < $3
ORDER BY c.timestamp`

// GetPriceTable loads daily closes for the given tickers into a price
// table. The union of all per-asset timestamps forms the index; assets
// without an observation on a day stay undefined there.
func (db *Database) GetPriceTable(ctx context.Context, tickers []string, start, end time.Time) (*types.Table, error) {
	series := make([]map[time.Time]float64, len(tickers))
	union := make(map[time.Time]struct{})

	for i, ticker := range tickers {
		assetID, err := db.getAssetID(ctx, ticker)
		if err != nil {
			return nil, err
		}
		closes, err := db.getDailyCloses(ctx, assetID, ticker, start, end)
		if err != nil {
			return nil, err
		}
		series[i] = closes
		for ts := range closes {
			union[ts] = struct{}{}
		}
	}

	index := make([]time.Time, 0, len(union))
	for ts := range union {
		index = append(index, ts)
	}
	sort.Slice(index, func(i, j int) bool { return index[i].Before(index[j]) })

	table, err := types.NewTable(index, tickers)
	if err != nil {
		return nil, fmt.Errorf("price table: %w", err)
	}
	for r, ts := range index {
		for c := range tickers {
			if v, ok := series[c][ts]; ok {
				table.Set(r, c, v)
			}
		}
	}
	log.Debug().
		Int("rows", table.NumRows()).
		Int("assets", table.NumAssets()).
		Msg("loaded price table from database")
	return table, nil
}

func (db *Database) getAssetID(ctx context.Context, ticker string) (int, error) {
	var id int
	err := db.conn.QueryRow(ctx, assetByTickerQuery, ticker).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("ticker %s %w", ticker, ErrAssetNotFound)
		}
		return 0, err
	}
	return id, nil
}

func (db *Database) getDailyCloses(ctx context.Context, assetID int, ticker string, start, end time.Time) (map[time.Time]float64, error) {
	rows, err := db.conn.Query(ctx, dailyClosesQuery, assetID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	closes := make(map[time.Time]float64)
	for rows.Next() {
		var ts time.Time
		var close decimal.Decimal
		if err := rows.Scan(&ts, &close); err != nil {
			return nil, err
		}
		closes[ts.UTC()] = close.InexactFloat64()
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(closes) == 0 {
		return nil, fmt.Errorf("ticker %s: %w", ticker, ErrNoPrices)
	}
	return closes, nil
}
