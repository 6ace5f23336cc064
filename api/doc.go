// Package api defines the wire types of the Logomotion HTTP API.
//
// # API Overview
//
// Logomotion drives a two-step wizard:
//   - POST /api/v1/logo generates a PNG and an SVG logo from a description
//   - POST /api/v1/logo/upload accepts an existing raster logo instead
//   - POST /api/v1/video animates the current logo
//   - GET /api/v1/events streams state changes and progress over WebSocket
//   - GET /api/v1/artifacts/{logo.png,logo.svg,video.mp4} downloads results
//
// # Authentication
//
// When API keys are configured, endpoints require the X-API-Key header:
//
//	X-API-Key: your-api-key
//
// Browsers cannot set headers on WebSocket upgrades; enable
// server.allow_query_api_key to pass ?api_key= instead.
package api
