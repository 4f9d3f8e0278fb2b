// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package engine

import (
	"hash/fnv"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
)

// Platforms are the sales channels every synthetic day is generated for.
var Platforms = []string{"tiktok", "instagram", "facebook", "youtube"}

var (
	products = []string{"Glow Serum", "Silk Scarf", "Travel Mug", "Desk Lamp", "Yoga Mat", "Phone Grip"}
	hosts    = []string{"amy", "ben", "chloe", "dev", "ella"}
)

// Record is one synthetic fact row: a single (date, platform) pair.
type Record struct {
	Date        time.Time // UTC midnight
	Hour        int       // hour of day, used for timestamp columns
	Platform    string
	ProductName string
	Host        string
	Revenue     decimal.Decimal // two decimal places
}

// Timestamp is Date plus Hour, for tables with timestamp columns.
func (r Record) Timestamp() time.Time {
	return r.Date.Add(time.Duration(r.Hour) * time.Hour)
}

// Columns exposes the record under every column name the built-in datasets
// use. Both date columns carry the calendar date.
func (r Record) Columns() map[string]any {
	return map[string]any{
		"dt":           r.Date,
		"order_ts":     r.Date,
		"live_date":    r.Date,
		"platform":     r.Platform,
		"product_name": r.ProductName,
		"host":         r.Host,
		"revenue":      r.Revenue,
	}
}

// Generator produces deterministic records. The values of a record depend
// only on the seed, the table, the date and the platform, so narrowing a
// query never changes the records it sees.
type Generator struct {
	seed int64
}

// NewGenerator creates a Generator.
func NewGenerator(seed int64) *Generator {
	return &Generator{seed: seed}
}

// Records returns one record per (date, platform) for every date in the
// half-open range [from, to), dates ascending and platforms in Platforms
// order.
func (g *Generator) Records(table string, from, to time.Time) []Record {
	from = truncateDay(from)
	to = truncateDay(to)
	if !from.Before(to) {
		return nil
	}

	days := int(to.Sub(from).Hours() / 24)
	out := make([]Record, 0, days*len(Platforms))
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		for _, p := range Platforms {
			out = append(out, g.record(table, d, p))
		}
	}
	return out
}

func (g *Generator) record(table string, day time.Time, platform string) Record {
	h := fnv.New64a()
	_, _ = h.Write([]byte(table))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(day.Format(time.DateOnly)))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(platform))

	rng := rand.New(rand.NewPCG(h.Sum64(), uint64(g.seed))) //nolint:gosec // demo data, not security sensitive

	// 20.00 to 2000.00 in cents
	cents := 2000 + rng.Int64N(198001)
	return Record{
		Date:        day,
		Hour:        rng.IntN(24),
		Platform:    platform,
		ProductName: products[rng.IntN(len(products))],
		Host:        hosts[rng.IntN(len(hosts))],
		Revenue:     decimal.New(cents, -2),
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
