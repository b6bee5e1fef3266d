// Package server exposes the chart service over HTTP.
//
// Routes:
//
//	POST   /v1/charts          compute a chart (?save=false skips the archive)
//	POST   /v1/charts/batch    compute up to MaxBatchSize charts, one result each
//	GET    /v1/charts          list archived charts (?type=&limit=&offset=)
//	GET    /v1/charts/{id}     fetch an archived chart
//	DELETE /v1/charts/{id}     delete an archived chart
//	GET    /v1/gates/{degree}  gate and line for a zodiac degree
//	GET    /healthz
//	GET    /metrics
//
// Errors are returned as {"error": message, "code": code}.
package server
