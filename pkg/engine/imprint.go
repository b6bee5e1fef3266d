package engine

import (
	"context"
	"fmt"
	"time"
)

// SearchConfig controls the two-phase scan for the design instant.
type SearchConfig struct {
	// ArcDegrees is the solar arc between design and birth.
	ArcDegrees float64 `yaml:"arc_degrees" validate:"gt=0,lt=360"`

	// CoarseWindowStart and CoarseWindowEnd bound the coarse scan, measured
	// backwards from the birth instant. Start must be the larger offset.
	CoarseWindowStart time.Duration `yaml:"coarse_window_start" validate:"gtfield=CoarseWindowEnd"`
	CoarseWindowEnd   time.Duration `yaml:"coarse_window_end" validate:"gt=0"`
	CoarseStep        time.Duration `yaml:"coarse_step" validate:"gt=0"`
	CoarseTolerance   float64       `yaml:"coarse_tolerance" validate:"gt=0"`

	// FineRadius is the half-width of the refinement window around the coarse hit.
	FineRadius    time.Duration `yaml:"fine_radius" validate:"gt=0"`
	FineStep      time.Duration `yaml:"fine_step" validate:"gt=0"`
	FineTolerance float64       `yaml:"fine_tolerance" validate:"gt=0,ltfield=CoarseTolerance"`
}

// DefaultSearchConfig returns the standard 88 degree search: hourly over
// [birth-95d, birth-80d] to 0.5 degrees, then every minute within 12h to 0.01 degrees.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		ArcDegrees:        88,
		CoarseWindowStart: 95 * 24 * time.Hour,
		CoarseWindowEnd:   80 * 24 * time.Hour,
		CoarseStep:        time.Hour,
		CoarseTolerance:   0.5,
		FineRadius:        12 * time.Hour,
		FineStep:          time.Minute,
		FineTolerance:     0.01,
	}
}

// ImprintResult describes a solved design instant.
type ImprintResult struct {
	Instant time.Time `json:"instant"`

	// TargetLongitude is the Sun longitude being searched for.
	TargetLongitude float64 `json:"target_longitude"`

	// Distance is the remaining shortest-arc error at Instant.
	Distance float64 `json:"distance"`

	CoarseSteps int `json:"coarse_steps"`
	FineSteps   int `json:"fine_steps"`
}

// FindDesignInstant returns the instant whose Sun longitude lies cfg.ArcDegrees
// before the Sun longitude at the birth instant.
func FindDesignInstant(ctx context.Context, p EphemerisProvider, birth BirthData, cfg SearchConfig) (time.Time, error) {
	res, err := SolveImprint(ctx, p, birth, cfg)
	if err != nil {
		return time.Time{}, err
	}
	return res.Instant, nil
}

// SolveImprint runs the coarse and fine scans and reports search statistics.
func SolveImprint(ctx context.Context, p EphemerisProvider, birth BirthData, cfg SearchConfig) (*ImprintResult, error) {
	birthInstant := birth.Instant.UTC()

	birthSun, err := sunLongitude(ctx, p, birthInstant, birth)
	if err != nil {
		return nil, err
	}
	target := NormalizeDegree(birthSun - cfg.ArcDegrees)
	res := &ImprintResult{TargetLongitude: target}

	// Coarse phase: first candidate inside the coarse tolerance wins.
	windowStart := birthInstant.Add(-cfg.CoarseWindowStart)
	windowEnd := birthInstant.Add(-cfg.CoarseWindowEnd)

	var rough time.Time
	found := false
	for cur := windowStart; !cur.After(windowEnd); cur = cur.Add(cfg.CoarseStep) {
		if err := ctx.Err(); err != nil {
			return nil, searchCancelled(err, "coarse")
		}
		res.CoarseSteps++

		lon, err := sunLongitude(ctx, p, cur, birth)
		if err != nil {
			return nil, err
		}
		if AngularDistance(lon, target) < cfg.CoarseTolerance {
			rough = cur
			found = true
			break
		}
	}
	if !found {
		return nil, newError(ErrorClassSearch, ErrCodeImprintNotFound,
			"could not find approximate design imprint instant for solar arc", nil).
			WithOperation("imprint_coarse").
			WithDetail("window_start", windowStart.Format(time.RFC3339)).
			WithDetail("window_end", windowEnd.Format(time.RFC3339)).
			WithDetail("target_longitude", target)
	}

	// Fine phase: keep the closest candidate, stop once inside the fine tolerance.
	fineStart := rough.Add(-cfg.FineRadius)
	fineEnd := rough.Add(cfg.FineRadius)

	var best time.Time
	haveBest := false
	minDistance := 360.0
	for cur := fineStart; !cur.After(fineEnd); cur = cur.Add(cfg.FineStep) {
		if err := ctx.Err(); err != nil {
			return nil, searchCancelled(err, "fine")
		}
		res.FineSteps++

		lon, err := sunLongitude(ctx, p, cur, birth)
		if err != nil {
			return nil, err
		}
		if d := AngularDistance(lon, target); d < minDistance {
			minDistance = d
			best = cur
			haveBest = true
		}
		if minDistance < cfg.FineTolerance {
			break
		}
	}
	if !haveBest {
		return nil, newError(ErrorClassSearch, ErrCodeImprintPrecisionNotFound,
			"could not find design imprint instant with required precision", nil).
			WithOperation("imprint_fine").
			WithDetail("window_start", fineStart.Format(time.RFC3339)).
			WithDetail("window_end", fineEnd.Format(time.RFC3339)).
			WithDetail("target_longitude", target)
	}

	res.Instant = best
	res.Distance = minDistance
	return res, nil
}

// sunLongitude returns the absolute Sun longitude at an instant.
func sunLongitude(ctx context.Context, p EphemerisProvider, instant time.Time, birth BirthData) (float64, error) {
	pos, err := positionsWithFallback(ctx, p, instant, birth.Latitude, birth.Longitude, birth.Timezone)
	if err != nil {
		return 0, err
	}
	sun, ok := pos[PlanetSun]
	if !ok {
		return 0, NewProviderError("ephemeris returned no Sun position", nil).
			WithDetail("planet", string(PlanetSun)).
			WithDetail("instant", instant.Format(time.RFC3339))
	}
	return sun.Longitude()
}

func searchCancelled(err error, phase string) *ChartError {
	return NewTimeoutError(fmt.Sprintf("imprint search interrupted during %s phase", phase), err).
		WithOperation("imprint_" + phase)
}
