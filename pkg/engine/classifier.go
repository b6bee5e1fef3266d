package engine

import (
	"fmt"
	"strconv"
)

// Chart types and strategies.
const (
	TypeReflector  = "Reflector"
	TypeGenerator  = "Generator"
	TypeManifestor = "Manifestor"
	TypeProjector  = "Projector"

	StrategyReflector  = "To Wait a Lunar Cycle"
	StrategyGenerator  = "To Respond"
	StrategyManifestor = "To Inform"
	StrategyProjector  = "To Wait for the Invitation"
)

// Inner authorities.
const (
	AuthorityEmotional = "Emotional"
	AuthoritySacral    = "Sacral"
	AuthoritySplenic   = "Splenic"
	AuthorityEgo       = "Ego (Willpower)"
	AuthoritySelf      = "Self-Projected"
	AuthorityNone      = "No Inner Authority / Environmental"

	UnknownProfile = "Unknown Profile"
)

// throatMotors are the motors whose direct channel to the Throat makes a Manifestor.
var throatMotors = map[Center]bool{
	CenterSolarPlexus: true,
	CenterEgo:         true,
	CenterRoot:        true,
}

// authorityOrder is checked top to bottom; the first defined center wins.
var authorityOrder = []struct {
	center    Center
	authority string
}{
	{CenterSolarPlexus, AuthorityEmotional},
	{CenterSacral, AuthoritySacral},
	{CenterSpleen, AuthoritySplenic},
	{CenterEgo, AuthorityEgo},
	{CenterG, AuthoritySelf},
}

// TypeAndStrategy classifies a chart. Rules are evaluated in order:
// no defined center, defined Sacral, motor joined directly to the Throat, else Projector.
func TypeAndStrategy(centers []DefinedCenter, channels []Channel) (string, string) {
	allUndefined := true
	for _, dc := range centers {
		if dc.Defined {
			allUndefined = false
			break
		}
	}

	switch {
	case allUndefined:
		return TypeReflector, StrategyReflector
	case IsDefined(CenterSacral, centers):
		return TypeGenerator, StrategyGenerator
	case MotorToThroat(channels):
		return TypeManifestor, StrategyManifestor
	default:
		return TypeProjector, StrategyProjector
	}
}

// MotorToThroat reports whether a single defined channel joins the Throat to
// the Solar Plexus, Ego or Root. Paths through other centers do not count.
func MotorToThroat(channels []Channel) bool {
	for _, ch := range channels {
		c1, c2 := CenterOf(ch.Gate1), CenterOf(ch.Gate2)
		if c1 == CenterThroat && throatMotors[c2] || c2 == CenterThroat && throatMotors[c1] {
			return true
		}
	}
	return false
}

// InnerAuthority returns the authority of the highest-priority defined center.
func InnerAuthority(centers []DefinedCenter) string {
	for _, rule := range authorityOrder {
		if IsDefined(rule.center, centers) {
			return rule.authority
		}
	}
	return AuthorityNone
}

// Profile formats the personality Sun line over the design Sun line, e.g. "1/3".
func Profile(personality, design []GateActivation) string {
	p, okP := find(personality, PlanetSun)
	d, okD := find(design, PlanetSun)
	if !okP || !okD {
		return UnknownProfile
	}
	return fmt.Sprintf("%d/%d", p.Line, d.Line)
}

// IncarnationCross lists the Sun and Earth gates of both passes.
func IncarnationCross(personality, design []GateActivation) string {
	return fmt.Sprintf("Conscious Sun: %s, Conscious Earth: %s, Design Sun: %s, Design Earth: %s",
		gateOf(personality, PlanetSun),
		gateOf(personality, PlanetEarth),
		gateOf(design, PlanetSun),
		gateOf(design, PlanetEarth),
	)
}

func find(acts []GateActivation, planet Planet) (GateActivation, bool) {
	for _, a := range acts {
		if a.Planet == planet {
			return a, true
		}
	}
	return GateActivation{}, false
}

func gateOf(acts []GateActivation, planet Planet) string {
	a, ok := find(acts, planet)
	if !ok {
		return "Unknown"
	}
	return strconv.Itoa(int(a.Gate))
}
