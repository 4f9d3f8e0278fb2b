// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

/*
Package services provides suture.Service wrappers for server components.

Each wrapper implements suture's Serve(ctx) error, returns ctx.Err() once the
context is canceled and reports itself through fmt.Stringer.

HTTPServerService translates http.Server's blocking ListenAndServe into Serve
and drains connections with Shutdown on cancellation.

WarehouseMonitorService pings the warehouse on an interval and exports the
warehouse_up gauge, logging only on state changes.
*/
package services
