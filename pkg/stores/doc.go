// Package stores provides the chart archive.
//
// The SQLite implementation runs in WAL mode with embedded migrations and
// keeps two tables: charts, one row per saved chart with its snapshot as
// JSON, and chart_events, an append-only log fed by the telemetry event
// publisher. Events carry no foreign key so they outlive deleted charts.
package stores
