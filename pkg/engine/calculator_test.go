package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCalculator_Compute(t *testing.T) {
	calc := NewCalculator(newFakeProvider(), DefaultSearchConfig())
	birth := birthAtDay(200, "UTC")

	snap, err := calc.Compute(context.Background(), birth)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	if len(snap.Personality) != 13 || len(snap.Design) != 13 {
		t.Fatalf("Expected 13+13 activations, got %d+%d", len(snap.Personality), len(snap.Design))
	}
	if len(snap.Centers) != 9 {
		t.Errorf("Expected 9 centers, got %d", len(snap.Centers))
	}

	// Moon and North Node sit on 64 and 47 in both passes.
	found := false
	for _, ch := range snap.Channels {
		if ch.Gate1 == 64 && ch.Gate2 == 47 {
			found = true
			if !ch.Conscious {
				t.Error("Channel 64-47 should be conscious")
			}
		}
	}
	if !found {
		t.Errorf("Expected channel 64-47, got %+v", snap.Channels)
	}

	if snap.Type == "" || snap.Strategy == "" || snap.Authority == "" || snap.Definition == "" {
		t.Errorf("Incomplete classification: %+v", snap)
	}
	if snap.Profile == UnknownProfile {
		t.Error("Expected a known profile")
	}
	if !snap.DesignInstant.Before(snap.Birth.Instant) {
		t.Errorf("Design instant %s should precede birth %s", snap.DesignInstant, snap.Birth.Instant)
	}
}

func TestCalculator_ComputeNormalizesInstant(t *testing.T) {
	calc := NewCalculator(newFakeProvider(), DefaultSearchConfig())
	birth := birthAtDay(200, "UTC")
	birth.Instant = birth.Instant.In(time.FixedZone("UTC+5", 5*3600))

	snap, err := calc.Compute(context.Background(), birth)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if snap.Birth.Instant.Location() != time.UTC {
		t.Errorf("Expected birth instant stored in UTC, got %s", snap.Birth.Instant.Location())
	}
}

func TestCalculator_Validate(t *testing.T) {
	calc := NewCalculator(newFakeProvider(), DefaultSearchConfig())

	tests := []struct {
		name   string
		mutate func(b *BirthData)
	}{
		{"missing instant", func(b *BirthData) { b.Instant = time.Time{} }},
		{"latitude too high", func(b *BirthData) { b.Latitude = 91 }},
		{"latitude too low", func(b *BirthData) { b.Latitude = -90.5 }},
		{"longitude out of range", func(b *BirthData) { b.Longitude = 181 }},
		{"missing timezone", func(b *BirthData) { b.Timezone = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			birth := birthAtDay(200, "UTC")
			tt.mutate(&birth)

			_, err := calc.Compute(context.Background(), birth)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("Expected validation error, got %v", err)
			}
			if !IsInputError(err) {
				t.Errorf("Expected input error class, got %s", ClassOf(err))
			}
		})
	}
}

func TestCalculator_ValidationSkipsProvider(t *testing.T) {
	p := newFakeProvider()
	calc := NewCalculator(p, DefaultSearchConfig())

	birth := birthAtDay(200, "UTC")
	birth.Latitude = 100
	if _, err := calc.Compute(context.Background(), birth); err == nil {
		t.Fatal("Expected validation error")
	}
	if calls := p.calls(); len(calls) != 0 {
		t.Errorf("Expected no provider calls, got %d", len(calls))
	}
}

func TestCalculator_ProviderErrorPropagates(t *testing.T) {
	p := newFakeProvider()
	p.omit[PlanetSaturn] = true
	calc := NewCalculator(p, DefaultSearchConfig())

	snap, err := calc.Compute(context.Background(), birthAtDay(200, "UTC"))
	if snap != nil {
		t.Error("Expected no partial snapshot on error")
	}
	if !errors.Is(err, ErrProviderFailed) {
		t.Fatalf("Expected provider error, got %v", err)
	}
}
