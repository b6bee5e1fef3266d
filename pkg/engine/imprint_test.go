package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSolveImprint_LinearSun(t *testing.T) {
	p := newFakeProvider()
	birth := birthAtDay(200, "UTC")

	res, err := SolveImprint(context.Background(), p, birth, DefaultSearchConfig())
	if err != nil {
		t.Fatalf("SolveImprint() error = %v", err)
	}

	if res.TargetLongitude != 112 {
		t.Errorf("Expected target longitude 112, got %f", res.TargetLongitude)
	}
	if res.Distance >= 0.01 {
		t.Errorf("Expected distance below fine tolerance, got %f", res.Distance)
	}
	if res.CoarseSteps == 0 || res.FineSteps == 0 {
		t.Errorf("Expected both phases to run, got coarse=%d fine=%d", res.CoarseSteps, res.FineSteps)
	}

	want := birth.Instant.Add(-88 * 24 * time.Hour)
	if diff := res.Instant.Sub(want); diff < -15*time.Minute || diff > 15*time.Minute {
		t.Errorf("Expected design instant near %s, got %s", want, res.Instant)
	}

	arc := NormalizeDegree(p.sunAt(birth.Instant) - p.sunAt(res.Instant))
	if arc < 87.9 || arc > 88.1 {
		t.Errorf("Expected solar arc of 88 degrees, got %f", arc)
	}
}

func TestSolveImprint_WrapsThroughAries(t *testing.T) {
	p := newFakeProvider()
	// Sun at 40 degrees; the target 312 sits on the other side of 0.
	birth := birthAtDay(40, "UTC")

	res, err := SolveImprint(context.Background(), p, birth, DefaultSearchConfig())
	if err != nil {
		t.Fatalf("SolveImprint() error = %v", err)
	}
	if res.TargetLongitude != 312 {
		t.Errorf("Expected target longitude 312, got %f", res.TargetLongitude)
	}
	if AngularDistance(p.sunAt(res.Instant), 312) >= 0.01 {
		t.Errorf("Expected Sun within 0.01 of target, got %f", p.sunAt(res.Instant))
	}
}

func TestFindDesignInstant_AmbiguousFallsBackToUTC(t *testing.T) {
	p := newFakeProvider()
	p.ambiguousZone = "Europe/London"

	birth := birthAtDay(200, "Europe/London")
	got, err := FindDesignInstant(context.Background(), p, birth, DefaultSearchConfig())
	if err != nil {
		t.Fatalf("FindDesignInstant() error = %v", err)
	}

	utc := newFakeProvider()
	want, err := FindDesignInstant(context.Background(), utc, birthAtDay(200, "UTC"), DefaultSearchConfig())
	if err != nil {
		t.Fatalf("FindDesignInstant() in UTC error = %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("Expected fallback result %s, got %s", want, got)
	}

	calls := p.calls()
	if len(calls) < 2 || calls[0] != "Europe/London" || calls[1] != "UTC" {
		t.Errorf("Expected local query followed by UTC retry, got %v", calls)
	}
}

func TestFindDesignInstant_NotFound(t *testing.T) {
	p := newFakeProvider()
	p.degreesPerDay = 0

	_, err := FindDesignInstant(context.Background(), p, birthAtDay(200, "UTC"), DefaultSearchConfig())
	if err == nil {
		t.Fatal("Expected error for a Sun that never moves")
	}
	if !errors.Is(err, ErrImprintNotFound) {
		t.Errorf("Expected ErrImprintNotFound, got %v", err)
	}
	if !IsSearchError(err) {
		t.Errorf("Expected search error class, got %s", ClassOf(err))
	}
}

func TestFindDesignInstant_ProviderFailure(t *testing.T) {
	p := newFakeProvider()
	p.failWith = NewProviderError("upstream unavailable", errProviderDown)

	_, err := FindDesignInstant(context.Background(), p, birthAtDay(200, "Europe/London"), DefaultSearchConfig())
	if !errors.Is(err, ErrProviderFailed) {
		t.Fatalf("Expected provider error, got %v", err)
	}
	if !errors.Is(err, errProviderDown) {
		t.Errorf("Expected wrapped cause to be preserved, got %v", err)
	}
	if calls := p.calls(); len(calls) != 1 {
		t.Errorf("Expected no retry for a non-ambiguous error, got %d calls", len(calls))
	}
}

func TestFindDesignInstant_MissingSun(t *testing.T) {
	p := newFakeProvider()
	p.omit[PlanetSun] = true

	_, err := FindDesignInstant(context.Background(), p, birthAtDay(200, "UTC"), DefaultSearchConfig())
	if !errors.Is(err, ErrProviderFailed) {
		t.Fatalf("Expected provider error for missing Sun, got %v", err)
	}
}

func TestFindDesignInstant_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FindDesignInstant(ctx, newFakeProvider(), birthAtDay(200, "UTC"), DefaultSearchConfig())
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Expected timeout error, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled in chain, got %v", err)
	}
}
