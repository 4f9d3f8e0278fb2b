// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

// Package query turns untrusted explore requests into parameterized
// aggregation queries.
//
// The pipeline has two stages. The Validator checks a Request against the
// dataset catalog and produces a ValidatedQuery, which cannot be built any
// other way. The Compiler renders a ValidatedQuery into SQL using only the
// expressions stored in the catalog, binding dates and the platform filter
// as parameters:
//
//	vq, err := validator.Validate(req)
//	def, _ := reg.Get(vq.DatasetID())
//	cq, err := query.Compile(vq, def)
package query

import (
	"time"
)

// Order is the sort direction of the dimension column.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// DateLayout is the wire format of date_from and date_to.
const DateLayout = "2006-01-02"

// Request is an explore request exactly as the caller sent it.
//
// A nil Limit or an empty Order means the caller did not specify one and the
// configured default applies. Platform is optional; nil or empty means no
// platform filter.
type Request struct {
	DatasetID string
	Dimension string
	Measure   string
	DateFrom  string
	DateTo    string
	Platform  *string
	Limit     *int
	Order     string
}

// ValidatedQuery is a Request that passed every check. Its fields are
// unexported so that only Validator.Validate can produce one.
type ValidatedQuery struct {
	datasetID string
	dimension string
	measure   string
	dateFrom  time.Time
	dateTo    time.Time
	platform  string
	hasFilter bool
	limit     int
	order     Order
}

func (q *ValidatedQuery) DatasetID() string   { return q.datasetID }
func (q *ValidatedQuery) Dimension() string   { return q.dimension }
func (q *ValidatedQuery) Measure() string     { return q.measure }
func (q *ValidatedQuery) DateFrom() time.Time { return q.dateFrom }
func (q *ValidatedQuery) DateTo() time.Time   { return q.dateTo }
func (q *ValidatedQuery) Limit() int          { return q.limit }
func (q *ValidatedQuery) Order() Order        { return q.order }

// Platform returns the platform filter and whether one was requested.
func (q *ValidatedQuery) Platform() (string, bool) {
	return q.platform, q.hasFilter
}
