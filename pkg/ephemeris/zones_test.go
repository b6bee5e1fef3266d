package ephemeris

import (
	"errors"
	"testing"
	"time"

	"github.com/openfroyo/bodygraph/pkg/engine"
)

func TestZoneResolverUnknownZone(t *testing.T) {
	r := NewZoneResolver()

	if loc := r.Resolve("Mars/Olympus_Mons"); loc != time.UTC {
		t.Fatalf("Resolve() = %v, want UTC", loc)
	}
	if r.Known("Mars/Olympus_Mons") {
		t.Fatal("Known() = true for unknown zone")
	}
	if !r.Known("UTC") {
		t.Fatal("Known(UTC) = false")
	}
	if !r.Known("America/New_York") {
		t.Fatal("Known(America/New_York) = false")
	}
}

func TestCivilInstant(t *testing.T) {
	r := NewZoneResolver()

	tests := []struct {
		name      string
		instant   time.Time
		tz        string
		want      time.Time
		ambiguous bool
	}{
		{
			name:    "winter london",
			instant: time.Date(1984, 1, 11, 12, 0, 45, 0, time.UTC),
			tz:      "Europe/London",
			want:    time.Date(1984, 1, 11, 12, 0, 0, 0, time.UTC),
		},
		{
			name:    "half hour zone",
			instant: time.Date(2020, 6, 1, 10, 15, 30, 0, time.UTC),
			tz:      "Asia/Kolkata",
			want:    time.Date(2020, 6, 1, 10, 15, 0, 0, time.UTC),
		},
		{
			name:      "london fall back first pass",
			instant:   time.Date(2023, 10, 29, 0, 30, 0, 0, time.UTC),
			tz:        "Europe/London",
			ambiguous: true,
		},
		{
			name:      "london fall back second pass",
			instant:   time.Date(2023, 10, 29, 1, 30, 0, 0, time.UTC),
			tz:        "Europe/London",
			ambiguous: true,
		},
		{
			name:    "after fall back",
			instant: time.Date(2023, 10, 29, 2, 30, 0, 0, time.UTC),
			tz:      "Europe/London",
			want:    time.Date(2023, 10, 29, 2, 30, 0, 0, time.UTC),
		},
		{
			name:    "unknown zone reads as utc",
			instant: time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC),
			tz:      "Nowhere/Special",
			want:    time.Date(2001, 2, 3, 4, 5, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.CivilInstant(tt.instant, tt.tz)
			if tt.ambiguous {
				if !errors.Is(err, engine.ErrAmbiguousLocalTime) {
					t.Fatalf("CivilInstant() error = %v, want ambiguous", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CivilInstant() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("CivilInstant() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAmbiguousSpringForward(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("zone database unavailable: %v", err)
	}

	// Just after the 2023-03-12 gap: every reading occurs once.
	if Ambiguous(time.Date(2023, 3, 12, 7, 30, 0, 0, time.UTC), loc) {
		t.Fatal("spring forward reading reported ambiguous")
	}
	// 01:30 on 2023-11-05 repeats.
	if !Ambiguous(time.Date(2023, 11, 5, 5, 30, 0, 0, time.UTC), loc) {
		t.Fatal("fall back reading not reported ambiguous")
	}
}
