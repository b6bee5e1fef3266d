// Package config loads the bodygraph service configuration.
//
// Configuration is a YAML file decoded over Default and validated with
// go-playground/validator. Durations use Go syntax ("10s", "12h").
//
//	server:
//	  addr: ":8080"
//	chart:
//	  timeout: 10s
//	  search:
//	    fine_step: 1m
//	store:
//	  path: /var/lib/bodygraph/charts.db
//	telemetry:
//	  logging:
//	    level: info
//
// A Watcher reloads the file on change; the serve command uses it to
// apply a new log level and chart timeout without a restart.
package config
