package config

import (
	"time"

	"github.com/openfroyo/bodygraph/pkg/engine"
	"github.com/openfroyo/bodygraph/pkg/stores"
	"github.com/openfroyo/bodygraph/pkg/telemetry"
)

// Config is the bodygraph service configuration file.
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Chart     ChartConfig      `yaml:"chart"`
	Store     stores.Config    `yaml:"store"`
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr" validate:"required"`

	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
}

// ChartConfig configures chart computation.
type ChartConfig struct {
	// Provider selects the ephemeris backend. Only "analytic" is built in.
	Provider string `yaml:"provider" validate:"required,oneof=analytic"`

	// Timeout bounds a single chart computation. Zero disables the bound.
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`

	// Save is the default for persisting computed charts.
	Save bool `yaml:"save"`

	// DefaultListLimit and MaxListLimit bound chart listings.
	DefaultListLimit int `yaml:"default_list_limit" validate:"gt=0,ltefield=MaxListLimit"`
	MaxListLimit     int `yaml:"max_list_limit" validate:"gt=0"`

	// MaxBatchSize bounds the requests in one batch; BatchParallelism bounds
	// the charts computed at once.
	MaxBatchSize     int `yaml:"max_batch_size" validate:"gt=0"`
	BatchParallelism int `yaml:"batch_parallelism" validate:"gt=0"`

	Search engine.SearchConfig `yaml:"search"`
}
