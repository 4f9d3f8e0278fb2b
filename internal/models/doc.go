// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

/*
Package models defines the wire types of the Data Explorer HTTP API.

Every endpoint answers with an APIResponse envelope. Successful responses
carry one of the payload types below in Data; failed ones carry an APIError
whose Code is stable and machine-readable.

Payload types:

  - DatasetSummary: one whitelisted dataset (list_datasets)
  - DatasetFields: dimension and measure names (get_dataset_fields)
  - QueryRequest / QueryResult: aggregation request and its rows (execute_query)
  - HealthStatus / ReadyStatus: health and readiness probes

The package has no dependencies on the rest of the module so that the
swagger generator can document it in isolation.
*/
package models
