// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

// Package main provides the Data Explorer HTTP server
//
// @title Data Explorer API
// @version 1.0
// @description Read-only aggregation queries over whitelisted analytics datasets, gated by share tokens.
// @description
// @description ## Authentication
// @description
// @description Every share endpoint requires a share token, either in the path
// @description (`/share/{token}/...`) or as `Authorization: Bearer <token>` under `/api/v1/share/...`.
// @description Missing, unknown and revoked tokens all answer 401 without further detail.
// @description
// @description ## Rate Limiting
// @description
// @description Default rate limit: 100 requests per minute per IP address.
// @description
// @description ## Error Responses
// @description
// @description All error responses follow this format:
// @description ```json
// @description {
// @description   "status": "error",
// @description   "data": null,
// @description   "error": {
// @description     "code": "INVALID_DIMENSION",
// @description     "message": "Invalid dimension 'city'",
// @description     "details": {"valid_options": ["dt", "platform", "product_name"]}
// @description   },
// @description   "metadata": {
// @description     "timestamp": "2025-11-18T12:34:56Z"
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/dataexplorer/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8000
// @BasePath /
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Share token as "Bearer <token>". Path-token routes need no header.
//
// @tag.name Core
// @tag.description Health and readiness probes
//
// @tag.name Share
// @tag.description Dataset catalog and aggregation queries for share-token holders
package main
