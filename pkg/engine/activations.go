package engine

import (
	"context"
	"fmt"
	"time"
)

// Assemble computes the personality activations at the birth instant and the
// design activations at the solved imprint instant.
func Assemble(ctx context.Context, p EphemerisProvider, birth BirthData, cfg SearchConfig) (personality, design []GateActivation, designInstant time.Time, err error) {
	personality, err = ActivationsAt(ctx, p, birth.Instant.UTC(), birth, true)
	if err != nil {
		return nil, nil, time.Time{}, err
	}

	designInstant, err = FindDesignInstant(ctx, p, birth, cfg)
	if err != nil {
		return nil, nil, time.Time{}, err
	}

	design, err = ActivationsAt(ctx, p, designInstant, birth, false)
	if err != nil {
		return nil, nil, time.Time{}, err
	}
	return personality, design, designInstant, nil
}

// ActivationsAt maps every planet's longitude at instant to a GateActivation,
// in AllPlanets order.
func ActivationsAt(ctx context.Context, p EphemerisProvider, instant time.Time, birth BirthData, conscious bool) ([]GateActivation, error) {
	pos, err := positionsWithFallback(ctx, p, instant, birth.Latitude, birth.Longitude, birth.Timezone)
	if err != nil {
		return nil, err
	}

	longitudes, err := longitudesOf(pos, instant)
	if err != nil {
		return nil, err
	}

	activations := make([]GateActivation, 0, len(AllPlanets))
	for _, planet := range AllPlanets {
		lon := longitudes[planet]
		gate, line, err := MapDegree(lon)
		if err != nil {
			return nil, err
		}
		activations = append(activations, GateActivation{
			Gate:      gate,
			Line:      line,
			Planet:    planet,
			Conscious: conscious,
			Longitude: lon,
		})
	}
	return activations, nil
}

// longitudesOf decodes provider positions into absolute longitudes for every
// planet, deriving Earth and, when absent, South Node.
func longitudesOf(pos Positions, instant time.Time) (map[Planet]float64, error) {
	out := make(map[Planet]float64, len(AllPlanets))
	for _, planet := range ProviderPlanets {
		p, ok := pos[planet]
		if !ok {
			return nil, NewProviderError(fmt.Sprintf("ephemeris returned no %s position", planet), nil).
				WithDetail("planet", string(planet)).
				WithDetail("instant", instant.Format(time.RFC3339))
		}
		lon, err := p.Longitude()
		if err != nil {
			return nil, err
		}
		out[planet] = lon
	}

	if south, ok := pos[PlanetSouthNode]; ok {
		lon, err := south.Longitude()
		if err != nil {
			return nil, err
		}
		out[PlanetSouthNode] = lon
	} else {
		out[PlanetSouthNode] = NormalizeDegree(out[PlanetNorthNode] + 180)
	}

	out[PlanetEarth] = NormalizeDegree(out[PlanetSun] + 180)
	return out, nil
}
