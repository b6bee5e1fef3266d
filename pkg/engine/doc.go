// Package engine computes bodygraph charts.
//
// A chart is built in five steps:
//
//  1. Coordinate mapping: an absolute zodiac degree maps to one of 64 gates
//     (5.625 degrees each) and one of 6 lines (0.9375 degrees each).
//  2. Imprint search: the design instant is the moment the Sun stood 88 degrees
//     of longitude before its position at birth. It is found by an hourly scan
//     of [birth-95d, birth-80d] followed by a minute scan around the first hit.
//  3. Activation assembly: every planet, plus Earth opposite the Sun, is mapped
//     to a gate and line at the birth instant (personality, conscious) and at
//     the design instant (design, unconscious).
//  4. Bodygraph: a channel is defined when both of its gates are activated; a
//     center is defined when a defined channel joins it to another center.
//  5. Classification: type, strategy, inner authority, profile and
//     incarnation cross follow from the defined centers and the Sun/Earth
//     activations.
//
// Planetary positions come from an EphemerisProvider. Errors are classified
// as *ChartError values; use errors.Is with the Err* sentinels to inspect them.
//
// # Usage
//
//	calc := engine.NewCalculator(ephemeris.NewAnalytic(), engine.DefaultSearchConfig())
//	snap, err := calc.Compute(ctx, engine.BirthData{
//	    Instant:   time.Date(1984, 1, 11, 12, 0, 0, 0, time.UTC),
//	    Latitude:  51.5074,
//	    Longitude: 0.1278,
//	    Timezone:  "Europe/London",
//	})
//
// The gate, center and channel tables are fixed at process start and never
// modified.
package engine
