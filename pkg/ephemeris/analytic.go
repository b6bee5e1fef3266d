package ephemeris

import (
	"context"
	"math"
	"time"

	"github.com/openfroyo/bodygraph/pkg/engine"
)

const (
	// unixEpochJD is the Julian Day of 1970-01-01T00:00:00Z.
	unixEpochJD = 2440587.5

	// j2000JD is the Julian Day of the J2000.0 epoch.
	j2000JD = 2451545.0

	// precessionPerCentury is the general precession in longitude, degrees.
	precessionPerCentury = 1.396971
)

// Analytic is a self-contained ephemeris built from low-precision series.
// Sun and Moon follow Meeus; the planets use mean Keplerian elements.
// Accuracy is a few arc minutes for the Sun and inner planets between
// 1800 and 2050, well inside a single line (0.9375 degrees).
type Analytic struct {
	zones *ZoneResolver
}

// NewAnalytic creates an analytic ephemeris with its own zone cache.
func NewAnalytic() *Analytic {
	return &Analytic{zones: NewZoneResolver()}
}

// NewAnalyticWithZones creates an analytic ephemeris sharing a zone resolver.
func NewAnalyticWithZones(zones *ZoneResolver) *Analytic {
	return &Analytic{zones: zones}
}

// Positions implements engine.EphemerisProvider.
func (a *Analytic) Positions(ctx context.Context, instant time.Time, _, _ float64, tz string) (engine.Positions, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	civil, err := a.zones.CivilInstant(instant, tz)
	if err != nil {
		return nil, err
	}

	lon := Longitudes(civil)
	out := make(engine.Positions, len(lon))
	for planet, l := range lon {
		out[planet] = engine.PositionAt(l)
	}
	return out, nil
}

// Longitudes returns the tropical ecliptic longitude of every provider planet
// plus the South Node at an instant.
func Longitudes(instant time.Time) map[engine.Planet]float64 {
	t := julianCenturies(instant)
	precession := precessionPerCentury * t

	node := meanNode(t)
	return map[engine.Planet]float64{
		engine.PlanetSun:       sunLongitude(t),
		engine.PlanetMoon:      moonLongitude(t),
		engine.PlanetMercury:   normalize(geocentricLongitude(elementsMercury, t) + precession),
		engine.PlanetVenus:     normalize(geocentricLongitude(elementsVenus, t) + precession),
		engine.PlanetMars:      normalize(geocentricLongitude(elementsMars, t) + precession),
		engine.PlanetJupiter:   normalize(geocentricLongitude(elementsJupiter, t) + precession),
		engine.PlanetSaturn:    normalize(geocentricLongitude(elementsSaturn, t) + precession),
		engine.PlanetUranus:    normalize(geocentricLongitude(elementsUranus, t) + precession),
		engine.PlanetNeptune:   normalize(geocentricLongitude(elementsNeptune, t) + precession),
		engine.PlanetPluto:     normalize(geocentricLongitude(elementsPluto, t) + precession),
		engine.PlanetNorthNode: node,
		engine.PlanetSouthNode: normalize(node + 180),
	}
}

// SunLongitude returns the apparent longitude of the Sun at an instant.
func SunLongitude(instant time.Time) float64 {
	return sunLongitude(julianCenturies(instant))
}

func julianDay(instant time.Time) float64 {
	return float64(instant.UnixNano())/float64(24*time.Hour) + unixEpochJD
}

func julianCenturies(instant time.Time) float64 {
	return (julianDay(instant) - j2000JD) / 36525
}

// sunLongitude is the apparent geocentric longitude of the Sun (Meeus ch. 25).
func sunLongitude(t float64) float64 {
	l0 := 280.46646 + 36000.76983*t + 0.0003032*t*t
	m := radians(357.52911 + 35999.05029*t - 0.0001537*t*t)
	c := (1.914602-0.004817*t-0.000014*t*t)*math.Sin(m) +
		(0.019993-0.000101*t)*math.Sin(2*m) +
		0.000289*math.Sin(3*m)
	omega := radians(125.04 - 1934.136*t)
	return normalize(l0 + c - 0.00569 - 0.00478*math.Sin(omega))
}

// moonLongitude sums the largest periodic terms of the lunar theory (Meeus ch. 47).
func moonLongitude(t float64) float64 {
	lp := 218.3164477 + 481267.88123421*t
	d := radians(297.8501921 + 445267.1114034*t)
	m := radians(357.5291092 + 35999.0502909*t)
	mp := radians(134.9633964 + 477198.8675055*t)
	f := radians(93.2720950 + 483202.0175233*t)

	sum := 6.288774*math.Sin(mp) +
		1.274027*math.Sin(2*d-mp) +
		0.658314*math.Sin(2*d) +
		0.213618*math.Sin(2*mp) -
		0.185116*math.Sin(m) -
		0.114332*math.Sin(2*f) +
		0.058793*math.Sin(2*d-2*mp) +
		0.057066*math.Sin(2*d-m-mp) +
		0.053322*math.Sin(2*d+mp) +
		0.045758*math.Sin(2*d-m) -
		0.040923*math.Sin(m-mp) -
		0.034720*math.Sin(d) -
		0.030383*math.Sin(m+mp)
	return normalize(lp + sum)
}

// meanNode is the mean longitude of the Moon's ascending node.
func meanNode(t float64) float64 {
	return normalize(125.0445479 - 1934.1362891*t + 0.0020754*t*t)
}
