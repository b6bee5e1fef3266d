package ephemeris

import (
	"context"
	"time"

	"github.com/openfroyo/bodygraph/pkg/engine"
	"github.com/openfroyo/bodygraph/pkg/telemetry"
)

// Instrumented records call counts, latency and errors of a provider.
type Instrumented struct {
	name     string
	provider engine.EphemerisProvider
}

// NewInstrumented wraps provider; name labels its metrics.
func NewInstrumented(name string, provider engine.EphemerisProvider) *Instrumented {
	return &Instrumented{name: name, provider: provider}
}

// Positions implements engine.EphemerisProvider.
func (i *Instrumented) Positions(ctx context.Context, instant time.Time, lat, lon float64, tz string) (engine.Positions, error) {
	var out engine.Positions
	err := telemetry.RecordProviderOperation(ctx, i.name, "positions", func() error {
		var err error
		out, err = i.provider.Positions(ctx, instant, lat, lon, tz)
		return err
	})
	return out, err
}
