package engine

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/openfroyo/bodygraph/pkg/telemetry"
)

// Calculator turns birth data into a complete bodygraph snapshot.
// It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	provider  EphemerisProvider
	search    SearchConfig
	validator *validator.Validate
}

// NewCalculator creates a calculator backed by an ephemeris provider.
func NewCalculator(provider EphemerisProvider, search SearchConfig) *Calculator {
	return &Calculator{
		provider:  provider,
		search:    search,
		validator: validator.New(),
	}
}

// SearchConfig returns the imprint search settings in use.
func (c *Calculator) SearchConfig() SearchConfig {
	return c.search
}

// Compute runs the whole pipeline. It returns either a complete snapshot or an error.
func (c *Calculator) Compute(ctx context.Context, birth BirthData) (*Snapshot, error) {
	op := telemetry.StartOperation(ctx, "chart.compute",
		telemetry.AttrBirthInstant.String(birth.Instant.UTC().Format(time.RFC3339)),
		telemetry.AttrBirthTimezone.String(birth.Timezone),
	)
	snap, err := c.compute(op.Ctx, birth, op.Logger)
	op.End(err)
	return snap, err
}

func (c *Calculator) compute(ctx context.Context, birth BirthData, logger *telemetry.Logger) (*Snapshot, error) {
	if err := c.Validate(birth); err != nil {
		return nil, err
	}
	birth.Instant = birth.Instant.UTC()

	personality, err := ActivationsAt(ctx, c.provider, birth.Instant, birth, true)
	if err != nil {
		return nil, err
	}

	imprint, err := c.solveImprint(ctx, birth)
	if err != nil {
		return nil, err
	}
	logger.WithFields(map[string]interface{}{
		"design_instant": imprint.Instant.Format(time.RFC3339),
		"distance":       imprint.Distance,
		"coarse_steps":   imprint.CoarseSteps,
		"fine_steps":     imprint.FineSteps,
	}).Debug("Design imprint solved")

	design, err := ActivationsAt(ctx, c.provider, imprint.Instant, birth, false)
	if err != nil {
		return nil, err
	}

	snap := Classify(birth, imprint.Instant, personality, design)
	logger.WithFields(map[string]interface{}{
		"type":     snap.Type,
		"profile":  snap.Profile,
		"channels": len(snap.Channels),
	}).Debug("Chart classified")

	return snap, nil
}

func (c *Calculator) solveImprint(ctx context.Context, birth BirthData) (*ImprintResult, error) {
	op := telemetry.StartOperation(ctx, "chart.imprint")
	res, err := SolveImprint(op.Ctx, c.provider, birth, c.search)
	if err == nil {
		op.SetAttributes(
			telemetry.AttrDesignInstant.String(res.Instant.Format(time.RFC3339)),
			telemetry.AttrImprintCoarseSteps.Int(res.CoarseSteps),
			telemetry.AttrImprintFineSteps.Int(res.FineSteps),
			telemetry.AttrImprintDistance.Float64(res.Distance),
		)
	}
	op.End(err)
	if err != nil {
		return nil, err
	}
	if tel := telemetry.FromTelemetryContext(ctx); tel != nil {
		tel.Metrics.RecordImprintSearch(res.CoarseSteps, res.FineSteps, res.Distance)
	}
	return res, nil
}

// Validate checks birth data before any provider call.
func (c *Calculator) Validate(birth BirthData) error {
	if err := c.validator.Struct(birth); err != nil {
		return NewValidationError("invalid birth data", err)
	}
	return nil
}

// Classify derives channels, centers and the classifier outputs from both
// activation sets.
func Classify(birth BirthData, designInstant time.Time, personality, design []GateActivation) *Snapshot {
	snap := &Snapshot{
		Birth:         birth,
		DesignInstant: designInstant,
		Personality:   personality,
		Design:        design,
	}
	snap.Channels = DefinedChannels(snap.Activations())
	snap.Centers = DefinedCenters(snap.Channels)
	snap.Type, snap.Strategy = TypeAndStrategy(snap.Centers, snap.Channels)
	snap.Authority = InnerAuthority(snap.Centers)
	snap.Profile = Profile(personality, design)
	snap.IncarnationCross = IncarnationCross(personality, design)
	snap.Definition = Definition(snap.Channels)
	return snap
}
