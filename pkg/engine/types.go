package engine

import (
	"fmt"
	"time"
)

// Gate is one of the 64 symbolic units of the zodiac wheel, numbered 1..64.
type Gate int

// Valid reports whether g is in 1..64.
func (g Gate) Valid() bool {
	return g >= 1 && g <= GateCount
}

// Label returns the descriptive name of the gate.
func (g Gate) Label() string {
	if !g.Valid() {
		return ""
	}
	return gateLabels[g-1]
}

// String implements fmt.Stringer.
func (g Gate) String() string {
	return fmt.Sprintf("Gate %d", int(g))
}

// Line is a sixth of a gate, numbered 1..6.
type Line int

// Valid reports whether l is in 1..6.
func (l Line) Valid() bool {
	return l >= 1 && l <= LinesPerGate
}

// Planet identifies a body whose longitude produces an activation.
type Planet string

const (
	PlanetSun       Planet = "Sun"
	PlanetEarth     Planet = "Earth"
	PlanetMoon      Planet = "Moon"
	PlanetMercury   Planet = "Mercury"
	PlanetVenus     Planet = "Venus"
	PlanetMars      Planet = "Mars"
	PlanetJupiter   Planet = "Jupiter"
	PlanetSaturn    Planet = "Saturn"
	PlanetUranus    Planet = "Uranus"
	PlanetNeptune   Planet = "Neptune"
	PlanetPluto     Planet = "Pluto"
	PlanetNorthNode Planet = "North Node"
	PlanetSouthNode Planet = "South Node"
)

// AllPlanets lists every planet in activation order.
var AllPlanets = []Planet{
	PlanetSun, PlanetEarth, PlanetMoon, PlanetMercury, PlanetVenus, PlanetMars,
	PlanetJupiter, PlanetSaturn, PlanetUranus, PlanetNeptune, PlanetPluto,
	PlanetNorthNode, PlanetSouthNode,
}

// ProviderPlanets lists the planets an EphemerisProvider must report.
// Earth is always derived; South Node is derived when missing.
var ProviderPlanets = []Planet{
	PlanetSun, PlanetMoon, PlanetMercury, PlanetVenus, PlanetMars, PlanetJupiter,
	PlanetSaturn, PlanetUranus, PlanetNeptune, PlanetPluto, PlanetNorthNode,
}

// Center is one of the nine regions of the bodygraph.
type Center string

const (
	CenterHead        Center = "Head"
	CenterAjna        Center = "Ajna"
	CenterThroat      Center = "Throat"
	CenterG           Center = "G-Center"
	CenterEgo         Center = "Ego"
	CenterSacral      Center = "Sacral"
	CenterSpleen      Center = "Spleen"
	CenterRoot        Center = "Root"
	CenterSolarPlexus Center = "Solar-Plexus"
)

// AllCenters lists the nine centers in reporting order.
var AllCenters = []Center{
	CenterHead, CenterAjna, CenterThroat, CenterG, CenterEgo,
	CenterSacral, CenterSpleen, CenterRoot, CenterSolarPlexus,
}

// GateActivation is a gate and line produced by one planet in one pass.
type GateActivation struct {
	Gate      Gate   `json:"gate"`
	Line      Line   `json:"line"`
	Planet    Planet `json:"planet"`
	Conscious bool   `json:"conscious"`

	// Longitude is the absolute zodiac degree the activation was mapped from.
	Longitude float64 `json:"longitude"`
}

// Channel is a canonical gate pair whose two gates are both activated.
type Channel struct {
	Gate1     Gate   `json:"gate_1"`
	Gate2     Gate   `json:"gate_2"`
	Name      string `json:"name"`
	Conscious bool   `json:"conscious"`
}

// DefinedCenter records whether a center is defined in a chart.
type DefinedCenter struct {
	Center  Center `json:"center"`
	Defined bool   `json:"defined"`
}

// BirthData is the input of a chart computation.
type BirthData struct {
	// Instant is the birth moment; it is normalized to UTC.
	Instant time.Time `json:"instant" validate:"required"`

	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`

	// Timezone is an IANA zone name. Unknown names fall back to UTC.
	Timezone string `json:"timezone" validate:"required"`
}

// Position is a body's place as reported by an ephemeris: degrees within a sign.
type Position struct {
	DegreeInSign float64 `json:"degree_in_sign"`
	Sign         string  `json:"sign"`
}

// Longitude converts the position to an absolute zodiac degree.
func (p Position) Longitude() (float64, error) {
	return AbsoluteLongitude(p.Sign, p.DegreeInSign)
}

// Positions maps planets to their reported positions.
type Positions map[Planet]Position

// Snapshot is a complete computed bodygraph. It has no identity of its own.
type Snapshot struct {
	Birth         BirthData `json:"birth"`
	DesignInstant time.Time `json:"design_instant"`

	Personality []GateActivation `json:"personality"`
	Design      []GateActivation `json:"design"`

	Channels []Channel       `json:"channels"`
	Centers  []DefinedCenter `json:"centers"`

	Type             string `json:"type"`
	Strategy         string `json:"strategy"`
	Authority        string `json:"authority"`
	Profile          string `json:"profile"`
	IncarnationCross string `json:"incarnation_cross"`
	Definition       string `json:"definition"`
}

// Activations returns personality followed by design activations.
func (s *Snapshot) Activations() []GateActivation {
	all := make([]GateActivation, 0, len(s.Personality)+len(s.Design))
	all = append(all, s.Personality...)
	all = append(all, s.Design...)
	return all
}

var gateLabels = [GateCount]string{
	"The Creative",
	"The Receptive",
	"Difficulty at the Beginning",
	"Youthful Folly",
	"Waiting",
	"Conflict",
	"The Army",
	"Holding Together",
	"The Taming Power of the Small",
	"The Treading",
	"Peace",
	"Standstill",
	"The Fellowship of Men",
	"Possession in Great Measure",
	"Modesty",
	"Enthusiasm",
	"Following",
	"Correction",
	"Approach",
	"Contemplation",
	"Biting Through",
	"Grace",
	"Splitting Apart",
	"Returning",
	"Innocence",
	"The Taming Power of the Great",
	"Nourishment",
	"Preponderance of the Great",
	"The Abysmal",
	"The Clinging Fire",
	"Influence",
	"Duration",
	"Retreat",
	"The Power of the Great",
	"Progress",
	"Darkening of the Light",
	"The Family",
	"Opposition",
	"Provocation",
	"Deliverance",
	"Decrease",
	"Increase",
	"Breakthrough",
	"Coming to Meet",
	"Gathering Together",
	"Pushing Upward",
	"Oppression",
	"The Well",
	"Revolution",
	"The Cauldron",
	"The Arousing",
	"Keeping Still",
	"Development",
	"The Marrying Maiden",
	"Abundance",
	"The Wanderer",
	"The Gentle",
	"The Joyous",
	"Dispersion",
	"Limitation",
	"Inner Truth",
	"Preponderance of the Small",
	"After Completion",
	"Before Completion",
}
