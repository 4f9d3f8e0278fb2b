// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

/*
Package supervisor provides process supervision using suture v4.

The tree separates the warehouse monitor from the HTTP server so that each
restarts independently:

	RootSupervisor ("dataexplorer")
	├── DataSupervisor ("data-layer")
	│   └── WarehouseMonitorService (ENGINE_BACKEND=warehouse, DB_PING_INTERVAL > 0)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with suture's backoff. Supervisor events are
logged through the zerolog-backed slog adapter from the logging package.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewWarehouseMonitorService(db, db.Driver(), 30*time.Second))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = tree.Serve(ctx)

On cancellation every layer is stopped within TreeConfig.ShutdownTimeout;
UnstoppedServiceReport lists services that overran it.
*/
package supervisor
