package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestActivationsAt(t *testing.T) {
	p := newFakeProvider()
	birth := birthAtDay(100, "UTC")

	acts, err := ActivationsAt(context.Background(), p, birth.Instant, birth, true)
	if err != nil {
		t.Fatalf("ActivationsAt() error = %v", err)
	}

	if len(acts) != len(AllPlanets) {
		t.Fatalf("Expected %d activations, got %d", len(AllPlanets), len(acts))
	}
	for i, a := range acts {
		if a.Planet != AllPlanets[i] {
			t.Errorf("Activation %d is %s, want %s", i, a.Planet, AllPlanets[i])
		}
		if !a.Conscious {
			t.Errorf("Activation for %s should be conscious", a.Planet)
		}
		if !a.Gate.Valid() || !a.Line.Valid() {
			t.Errorf("Activation for %s out of range: %d.%d", a.Planet, a.Gate, a.Line)
		}
	}

	sun, _ := find(acts, PlanetSun)
	earth, _ := find(acts, PlanetEarth)
	if d := AngularDistance(sun.Longitude, earth.Longitude); d < 179.999 {
		t.Errorf("Expected Earth opposite the Sun, got %f apart", d)
	}
	if sun.Gate != 18 || sun.Line != 5 {
		t.Errorf("Expected Sun at 100 degrees in 18.5, got %d.%d", sun.Gate, sun.Line)
	}

	moon, _ := find(acts, PlanetMoon)
	if moon.Gate != 64 {
		t.Errorf("Expected Moon in gate 64, got %d", moon.Gate)
	}
}

func TestActivationsAt_SouthNode(t *testing.T) {
	p := newFakeProvider()
	birth := birthAtDay(100, "UTC")

	acts, err := ActivationsAt(context.Background(), p, birth.Instant, birth, false)
	if err != nil {
		t.Fatalf("ActivationsAt() error = %v", err)
	}
	north, _ := find(acts, PlanetNorthNode)
	south, _ := find(acts, PlanetSouthNode)
	if d := AngularDistance(north.Longitude, south.Longitude); d < 179.999 {
		t.Errorf("Expected derived South Node opposite North Node, got %f apart", d)
	}
	if south.Conscious {
		t.Error("Design activations should be unconscious")
	}

	// A South Node reported by the provider is used as is.
	p.fixed[PlanetSouthNode] = 5
	acts, err = ActivationsAt(context.Background(), p, birth.Instant, birth, false)
	if err != nil {
		t.Fatalf("ActivationsAt() error = %v", err)
	}
	south, _ = find(acts, PlanetSouthNode)
	if south.Gate != 1 || south.Line != 6 {
		t.Errorf("Expected provider South Node at 1.6, got %d.%d", south.Gate, south.Line)
	}
}

func TestActivationsAt_MissingPlanet(t *testing.T) {
	p := newFakeProvider()
	p.omit[PlanetPluto] = true
	birth := birthAtDay(100, "UTC")

	_, err := ActivationsAt(context.Background(), p, birth.Instant, birth, true)
	if !errors.Is(err, ErrProviderFailed) {
		t.Fatalf("Expected provider error, got %v", err)
	}

	var ce *ChartError
	if !errors.As(err, &ce) {
		t.Fatalf("Expected *ChartError, got %T", err)
	}
	if ce.Details["planet"] != string(PlanetPluto) {
		t.Errorf("Expected planet detail Pluto, got %v", ce.Details["planet"])
	}
}

func TestActivationsAt_InvalidSign(t *testing.T) {
	p := ProviderFunc(func(context.Context, time.Time, float64, float64, string) (Positions, error) {
		pos := make(Positions)
		for _, planet := range ProviderPlanets {
			pos[planet] = Position{DegreeInSign: 1, Sign: "Aries"}
		}
		pos[PlanetMars] = Position{DegreeInSign: 1, Sign: "Serpentarius"}
		return pos, nil
	})
	birth := birthAtDay(100, "UTC")

	_, err := ActivationsAt(context.Background(), p, birth.Instant, birth, true)
	if !errors.Is(err, ErrProviderFailed) {
		t.Fatalf("Expected provider error for unknown sign, got %v", err)
	}
}

func TestAssemble(t *testing.T) {
	p := newFakeProvider()
	birth := birthAtDay(200, "UTC")

	personality, design, designInstant, err := Assemble(context.Background(), p, birth, DefaultSearchConfig())
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if len(personality) != 13 || len(design) != 13 {
		t.Fatalf("Expected 13+13 activations, got %d+%d", len(personality), len(design))
	}
	if !designInstant.Before(birth.Instant) {
		t.Errorf("Expected design instant before birth, got %s", designInstant)
	}

	dSun, _ := find(design, PlanetSun)
	if d := AngularDistance(dSun.Longitude, 112); d >= 0.01 {
		t.Errorf("Expected design Sun at 112, got %f", dSun.Longitude)
	}
}
