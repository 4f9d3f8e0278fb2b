// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package models

// DatasetSummary is one entry of the list_datasets response.
type DatasetSummary struct {
	ID    string `json:"id" example:"orders"`
	Label string `json:"label" example:"Orders"`
}

// DatasetFields is the get_dataset_fields response.
type DatasetFields struct {
	Dimensions []string `json:"dimensions" example:"dt,platform,product_name"`
	Measures   []string `json:"measures" example:"revenue,orders"`
}

// QueryRequest is the execute_query body.
//
// date_from is inclusive and date_to exclusive, both YYYY-MM-DD. limit
// defaults to 500 and order to "asc".
//
// Example:
//
//	{
//	  "dataset_id": "orders",
//	  "dimension": "dt",
//	  "measure": "revenue",
//	  "date_from": "2025-01-01",
//	  "date_to": "2025-01-03",
//	  "platform": "tiktok",
//	  "limit": 500,
//	  "order": "asc"
//	}
type QueryRequest struct {
	DatasetID string  `json:"dataset_id" example:"orders"`
	Dimension string  `json:"dimension" example:"dt"`
	Measure   string  `json:"measure" example:"revenue"`
	DateFrom  string  `json:"date_from" example:"2025-01-01"`
	DateTo    string  `json:"date_to" example:"2025-01-03"`
	Platform  *string `json:"platform,omitempty" example:"tiktok"`
	Limit     *int    `json:"limit,omitempty" example:"500"`
	Order     string  `json:"order,omitempty" example:"asc" enums:"asc,desc"`
}

// QueryResult is the execute_query response. Each row maps the requested
// dimension and measure keys to scalar values.
type QueryResult struct {
	Rows []map[string]interface{} `json:"rows"`
}
