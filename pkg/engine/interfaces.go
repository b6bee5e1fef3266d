package engine

import (
	"context"
	"errors"
	"time"

	"github.com/openfroyo/bodygraph/pkg/telemetry"
)

// EphemerisProvider reports planetary positions for an instant and place.
//
// Implementations interpret the instant through the civil clock of tz. When
// that clock reading occurs twice in the zone they return an error matching
// ErrAmbiguousLocalTime; an unrecognized tz is treated as UTC. Every planet in
// ProviderPlanets must be present in the result.
type EphemerisProvider interface {
	Positions(ctx context.Context, instant time.Time, lat, lon float64, tz string) (Positions, error)
}

// ProviderFunc adapts an ordinary function to the EphemerisProvider interface.
type ProviderFunc func(ctx context.Context, instant time.Time, lat, lon float64, tz string) (Positions, error)

// Positions calls f.
func (f ProviderFunc) Positions(ctx context.Context, instant time.Time, lat, lon float64, tz string) (Positions, error) {
	return f(ctx, instant, lat, lon, tz)
}

// utcZone is the zone the engine retries with after an ambiguous local time.
const utcZone = "UTC"

// positionsWithFallback queries the provider and retries the same instant in UTC
// when the civil reading in tz is ambiguous.
func positionsWithFallback(ctx context.Context, p EphemerisProvider, instant time.Time, lat, lon float64, tz string) (Positions, error) {
	pos, err := p.Positions(ctx, instant, lat, lon, tz)
	if err == nil {
		return pos, nil
	}
	if tz == utcZone || !isAmbiguous(err) {
		return nil, err
	}
	telemetry.FromContext(ctx).WithField("timezone", tz).Debug("Ambiguous local time, retrying in UTC")
	return p.Positions(ctx, instant, lat, lon, utcZone)
}

func isAmbiguous(err error) bool {
	return err != nil && errors.Is(err, ErrAmbiguousLocalTime)
}
