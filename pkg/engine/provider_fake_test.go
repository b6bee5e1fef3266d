package engine

import (
	"context"
	"errors"
	"sync"
	"time"
)

var fakeEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeProvider moves the Sun at a constant rate from 0 degrees at fakeEpoch and
// parks every other planet at a fixed longitude.
type fakeProvider struct {
	// degreesPerDay is the solar rate; zero freezes the Sun.
	degreesPerDay float64

	// fixed overrides planet longitudes. Planets listed in omit are left out.
	fixed map[Planet]float64
	omit  map[Planet]bool

	// ambiguousZone fails every query made in that zone.
	ambiguousZone string

	// failWith is returned from every query when set.
	failWith error

	mu    sync.Mutex
	zones []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		degreesPerDay: 1,
		fixed: map[Planet]float64{
			PlanetMoon:      GateStart(64) + 0.1,
			PlanetMercury:   10,
			PlanetVenus:     20,
			PlanetMars:      30,
			PlanetJupiter:   40,
			PlanetSaturn:    50,
			PlanetUranus:    60,
			PlanetNeptune:   70,
			PlanetPluto:     80,
			PlanetNorthNode: GateStart(47) + 0.1,
		},
		omit: map[Planet]bool{},
	}
}

func (f *fakeProvider) sunAt(instant time.Time) float64 {
	return NormalizeDegree(instant.Sub(fakeEpoch).Hours() / 24 * f.degreesPerDay)
}

func (f *fakeProvider) Positions(_ context.Context, instant time.Time, _, _ float64, tz string) (Positions, error) {
	f.mu.Lock()
	f.zones = append(f.zones, tz)
	f.mu.Unlock()

	if f.failWith != nil {
		return nil, f.failWith
	}
	if tz == f.ambiguousZone {
		return nil, NewAmbiguousLocalTimeError(instant.Format("2006-01-02 15:04"), tz)
	}

	pos := make(Positions, len(ProviderPlanets))
	if !f.omit[PlanetSun] {
		pos[PlanetSun] = PositionAt(f.sunAt(instant))
	}
	for planet, lon := range f.fixed {
		if !f.omit[planet] {
			pos[planet] = PositionAt(lon)
		}
	}
	return pos, nil
}

func (f *fakeProvider) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.zones...)
}

var errProviderDown = errors.New("provider down")

func birthAtDay(day int, tz string) BirthData {
	return BirthData{
		Instant:   fakeEpoch.Add(time.Duration(day) * 24 * time.Hour),
		Latitude:  51.5,
		Longitude: -0.12,
		Timezone:  tz,
	}
}
